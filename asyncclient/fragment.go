package asyncclient

import (
	"strings"

	"golang.org/x/net/html"
)

// ErrorContainerID is the element ID servers use to mark the
// user-facing error fragment inside an HTML error page.
const ErrorContainerID = "error-container"

// extractErrorFragment parses body as HTML and returns the inner HTML
// of the element with the given ID. The second return value is false
// when no such element exists or the body is not parseable HTML.
func extractErrorFragment(body, containerID string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return "", false
	}

	node := findByID(doc, containerID)
	if node == nil {
		return "", false
	}

	var sb strings.Builder
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if err := html.Render(&sb, child); err != nil {
			return "", false
		}
	}

	fragment := strings.TrimSpace(sb.String())
	if fragment == "" {
		return "", false
	}
	return fragment, true
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			if attr.Key == "id" && attr.Val == id {
				return n
			}
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findByID(child, id); found != nil {
			return found
		}
	}
	return nil
}
