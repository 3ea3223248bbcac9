// Package main implements submitwait, a small CLI that submits a form
// under the asynchronous task contract and waits for the background
// task to finish, printing the final redirect URL on success. It is
// both a diagnostic tool against a running server and a headless
// reference consumer of the asyncclient package.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/boxofficehq/boxoffice-api/asyncclient"
)

// fieldFlags collects repeated -field key=value flags.
type fieldFlags struct {
	values url.Values
}

func (f *fieldFlags) String() string {
	return f.values.Encode()
}

func (f *fieldFlags) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("field %q is not in key=value form", s)
	}
	f.values.Add(key, value)
	return nil
}

// consolePresenter writes waiting and error updates to stderr.
type consolePresenter struct{}

func (consolePresenter) ShowWaiting(message string) {
	fmt.Fprintf(os.Stderr, "... %s\n", message)
}

func (consolePresenter) HideWaiting() {}

func (consolePresenter) ShowError(content string) {
	fmt.Fprintf(os.Stderr, "error: %s\n", content)
}

func (consolePresenter) HideError() {}

// consoleNavigator prints the terminal redirect to stdout; history
// rewrites are meaningless for a one-shot CLI and only logged.
type consoleNavigator struct {
	logger *slog.Logger
}

func (n consoleNavigator) Navigate(url string) {
	fmt.Println(url)
}

func (n consoleNavigator) ReplaceHistory(url string) {
	n.logger.Debug("resume URL", "url", url)
}

func main() {
	var (
		action  = flag.String("action", "", "form action URL to POST to (required)")
		message = flag.String("message", "Processing your request...", "waiting message")
		token   = flag.String("token", "", "bearer token for authenticated endpoints")
		timeout = flag.Duration("timeout", 5*time.Minute, "overall deadline for the task")
		verbose = flag.Bool("v", false, "enable debug logging")
		fields  = fieldFlags{values: url.Values{}}
	)
	flag.Var(&fields, "field", "form field as key=value (repeatable)")
	flag.Parse()

	if *action == "" {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	httpClient := &http.Client{}
	if *token != "" {
		httpClient.Transport = bearerTransport{token: *token, next: http.DefaultTransport}
	}

	client, err := asyncclient.New(
		httpClient,
		asyncclient.DefaultConfig(),
		asyncclient.NewRealScheduler(),
		consolePresenter{},
		consoleNavigator{logger: logger},
		logger,
	)
	if err != nil {
		log.Fatalf("failed to create client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := client.Submit(ctx, *action, fields.values, *message); err != nil {
		var statusErr *asyncclient.StatusError
		switch {
		case errors.As(err, &statusErr):
			os.Exit(1)
		case errors.Is(err, context.DeadlineExceeded):
			fmt.Fprintln(os.Stderr, "error: timed out waiting for the task")
			os.Exit(1)
		default:
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}

// bearerTransport adds an Authorization header to every request.
type bearerTransport struct {
	token string
	next  http.RoundTripper
}

func (t bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+t.token)
	return t.next.RoundTrip(clone)
}
