package asyncclient

// Presenter owns the visible waiting and error surfaces. All methods
// are side-effect-only and must tolerate repeated calls.
type Presenter interface {
	// ShowWaiting marks the surface as busy and displays the message.
	// Called again while already waiting, it only updates the message.
	ShowWaiting(message string)

	// HideWaiting clears the busy state.
	HideWaiting()

	// ShowError displays terminal error content. The content may be an
	// HTML fragment extracted from a server response.
	ShowError(content string)

	// HideError clears a previously shown error.
	HideError()
}

// Navigator performs browser-style navigation on behalf of the client.
type Navigator interface {
	// Navigate loads the given URL, tearing down the current page.
	Navigate(url string)

	// ReplaceHistory swaps the current history entry for the given URL
	// without navigating, so a reload resumes polling instead of
	// re-submitting.
	ReplaceHistory(url string)
}

// NopPresenter ignores all presentation calls. Useful for headless
// callers that only care about the final outcome.
type NopPresenter struct{}

func (NopPresenter) ShowWaiting(string) {}
func (NopPresenter) HideWaiting()       {}
func (NopPresenter) ShowError(string)   {}
func (NopPresenter) HideError()         {}
