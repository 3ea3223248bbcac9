package asyncclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Common errors
var (
	// ErrSubmissionInFlight is returned when Submit is called while a
	// previous submission on the same client is still being sent. The
	// attempt is dropped, not queued.
	ErrSubmissionInFlight = errors.New("a submission is already in flight")

	ErrNilHTTPClient = errors.New("http client cannot be nil")
	ErrNilScheduler  = errors.New("scheduler cannot be nil")
	ErrNilPresenter  = errors.New("presenter cannot be nil")
	ErrNilNavigator  = errors.New("navigator cannot be nil")
	ErrNilLogger     = errors.New("logger cannot be nil")
)

// asyncMarker is the form field announcing that the client understands
// the asynchronous task contract.
const asyncMarker = "ajax"

// StatusError is a non-2xx response from the server. Fragment carries
// the user-facing error content extracted from an HTML body, if any.
type StatusError struct {
	Code     int
	Fragment string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned status %d", e.Code)
}

// Message returns the user-facing content for this error: the embedded
// fragment when present, a generic description of the status otherwise.
func (e *StatusError) Message() string {
	if e.Fragment != "" {
		return e.Fragment
	}
	return fmt.Sprintf("An error of type %d occurred", e.Code)
}

// NetworkErrorMessage is shown when a request fails without a usable
// HTTP response, including malformed response bodies.
const NetworkErrorMessage = "We could not reach the server. Please check your connection and try again."

// DegradedWaitMessage replaces the waiting message while the poller
// retries after a server-range error.
const DegradedWaitMessage = "This is taking longer than expected. We keep trying, please do not close this page."

// Config tunes the polling delays. The reference deployments disagree
// on the exact values, so they are configuration rather than constants;
// DefaultConfig picks the faster variant.
type Config struct {
	// InitialPollDelay is the wait between a queued submission response
	// and the first poll.
	InitialPollDelay time.Duration

	// SteadyPollDelay is the wait between polls while the task is still
	// running.
	SteadyPollDelay time.Duration

	// EscalatedPollDelay is the wait before retrying after a poll
	// failed with a server-range status.
	EscalatedPollDelay time.Duration

	// ErrorContainerID is the element ID marking the error fragment in
	// HTML error bodies.
	ErrorContainerID string
}

// DefaultConfig returns the default delay policy: 100ms before the
// first poll, 250ms between polls, 5s after a server error.
func DefaultConfig() Config {
	return Config{
		InitialPollDelay:   100 * time.Millisecond,
		SteadyPollDelay:    250 * time.Millisecond,
		EscalatedPollDelay: 5 * time.Second,
		ErrorContainerID:   ErrorContainerID,
	}
}

// TaskHandle identifies a queued background task on the server.
type TaskHandle struct {
	AsyncID  string
	CheckURL string
}

// Client submits forms under the asynchronous task contract and polls
// queued tasks to completion. A single in-flight flag guards against
// duplicate concurrent submissions; polling itself does not hold the
// flag, matching the server contract where a reload of the check URL
// resumes polling.
type Client struct {
	httpClient *http.Client
	config     Config
	scheduler  Scheduler
	presenter  Presenter
	navigator  Navigator
	logger     *slog.Logger

	mu       sync.Mutex
	inFlight bool
}

// New creates a Client. Zero delay values in cfg fall back to the
// defaults.
func New(
	httpClient *http.Client,
	cfg Config,
	scheduler Scheduler,
	presenter Presenter,
	navigator Navigator,
	logger *slog.Logger,
) (*Client, error) {
	if httpClient == nil {
		return nil, ErrNilHTTPClient
	}
	if scheduler == nil {
		return nil, ErrNilScheduler
	}
	if presenter == nil {
		return nil, ErrNilPresenter
	}
	if navigator == nil {
		return nil, ErrNilNavigator
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	defaults := DefaultConfig()
	if cfg.InitialPollDelay <= 0 {
		cfg.InitialPollDelay = defaults.InitialPollDelay
	}
	if cfg.SteadyPollDelay <= 0 {
		cfg.SteadyPollDelay = defaults.SteadyPollDelay
	}
	if cfg.EscalatedPollDelay <= 0 {
		cfg.EscalatedPollDelay = defaults.EscalatedPollDelay
	}
	if cfg.ErrorContainerID == "" {
		cfg.ErrorContainerID = defaults.ErrorContainerID
	}

	return &Client{
		httpClient: httpClient,
		config:     cfg,
		scheduler:  scheduler,
		presenter:  presenter,
		navigator:  navigator,
		logger:     logger.With("component", "asyncclient"),
	}, nil
}

// InFlight reports whether a submission is currently being sent.
func (c *Client) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// submission is the per-submission context carrying the state machine,
// so concurrent submissions through separate clients never share
// mutable state.
type submission struct {
	client *Client
	state  State
	handle TaskHandle
}

// to performs a state transition, logging invalid ones instead of
// applying them.
func (s *submission) to(next State) {
	if !s.state.CanTransition(next) {
		s.client.logger.Error("invalid state transition",
			"from", s.state,
			"to", next)
		return
	}
	s.client.logger.Debug("state transition", "from", s.state, "to", next)
	s.state = next
}

// submitResponse is the JSON body of a successful submission.
type submitResponse struct {
	Redirect string `json:"redirect"`
	AsyncID  string `json:"async_id"`
	CheckURL string `json:"check_url"`
}

// pollResponse is the JSON body of a successful poll.
type pollResponse struct {
	Ready    bool   `json:"ready"`
	Redirect string `json:"redirect"`
}

// Submit posts the form fields to action with the asynchronous-mode
// marker and drives the task to a terminal state. It blocks until the
// server answered with a final redirect, the queued task completed or
// failed, or ctx was cancelled. Cancelling ctx stops the poll loop
// deterministically.
//
// message is shown through the presenter while the request is being
// processed. If another submission is in flight the call is a no-op
// returning ErrSubmissionInFlight.
func (c *Client) Submit(ctx context.Context, action string, fields url.Values, message string) error {
	if !c.begin() {
		return ErrSubmissionInFlight
	}

	sub := &submission{client: c, state: StateIdle}
	sub.to(StateSubmitting)

	c.presenter.HideError()
	c.presenter.ShowWaiting(message)

	resp, err := c.post(ctx, action, fields)

	// The flag only guards the submission request itself. It is cleared
	// as soon as the response is processed, before any polling starts.
	c.end()

	if err != nil {
		return c.fail(sub, err)
	}

	if resp.Redirect != "" {
		// Completed inline, no task was queued.
		c.presenter.HideWaiting()
		c.navigator.Navigate(resp.Redirect)
		sub.to(StateDone)
		return nil
	}

	if resp.CheckURL == "" {
		// Same failure class as a malformed body.
		return c.fail(sub, errors.New("submission response carries neither redirect nor check_url"))
	}

	// Servers hand out the check URL relative to themselves; resolve it
	// against the action the way a browser would.
	checkURL, err := resolveURL(action, resp.CheckURL)
	if err != nil {
		return c.fail(sub, fmt.Errorf("unresolvable check_url %q: %w", resp.CheckURL, err))
	}

	sub.handle = TaskHandle{AsyncID: resp.AsyncID, CheckURL: checkURL}

	// A reload of the rewritten URL resumes polling instead of
	// re-submitting the form.
	c.navigator.ReplaceHistory(stripAsyncMarker(checkURL))

	sub.to(StatePolling)
	c.logger.Info("task queued, polling",
		"async_id", resp.AsyncID,
		"check_url", checkURL)

	return c.poll(ctx, sub)
}

// begin sets the in-flight flag, reporting false when it was already
// set.
func (c *Client) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		return false
	}
	c.inFlight = true
	return true
}

// end clears the in-flight flag.
func (c *Client) end() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
}

// post sends the submission request and parses its JSON body.
func (c *Client) post(ctx context.Context, action string, fields url.Values) (*submitResponse, error) {
	form := url.Values{}
	for key, values := range fields {
		form[key] = values
	}
	form.Set(asyncMarker, "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, action,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build submission request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json, text/html")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submission request failed: %w", err)
	}
	defer closeBody(httpResp, c.logger)

	if err := c.statusError(httpResp); err != nil {
		return nil, err
	}

	var resp submitResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("malformed submission response: %w", err)
	}
	return &resp, nil
}

// poll queries the task handle until it reaches a terminal state.
func (c *Client) poll(ctx context.Context, sub *submission) error {
	delay := c.config.InitialPollDelay

	for {
		select {
		case <-ctx.Done():
			c.presenter.HideWaiting()
			sub.to(StateFailed)
			return ctx.Err()
		case <-c.scheduler.After(delay):
		}

		resp, err := c.pollOnce(ctx, sub.handle.CheckURL)
		if err != nil {
			var statusErr *StatusError
			if errors.As(err, &statusErr) && statusErr.Code >= http.StatusInternalServerError {
				// Server-range errors while polling are presumed
				// transient: keep the loop alive on the escalated
				// delay and tell the user things are slow.
				c.logger.Warn("poll failed with server error, retrying",
					"status", statusErr.Code,
					"retry_delay", c.config.EscalatedPollDelay)
				c.presenter.ShowWaiting(DegradedWaitMessage)
				delay = c.config.EscalatedPollDelay
				sub.to(StatePolling)
				continue
			}
			return c.fail(sub, err)
		}

		if resp.Ready && resp.Redirect != "" {
			c.presenter.HideWaiting()
			c.navigator.Navigate(resp.Redirect)
			sub.to(StateDone)
			return nil
		}

		delay = c.config.SteadyPollDelay
		sub.to(StatePolling)
	}
}

// pollOnce issues a single status request.
func (c *Client) pollOnce(ctx context.Context, checkURL string) (*pollResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, checkURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build poll request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/html")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll request failed: %w", err)
	}
	defer closeBody(httpResp, c.logger)

	if err := c.statusError(httpResp); err != nil {
		return nil, err
	}

	var resp pollResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("malformed poll response: %w", err)
	}
	return &resp, nil
}

// statusError turns a non-2xx response into a StatusError, extracting
// the error fragment from HTML bodies.
func (c *Client) statusError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	statusErr := &StatusError{Code: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err == nil {
		if fragment, ok := extractErrorFragment(string(body), c.config.ErrorContainerID); ok {
			statusErr.Fragment = fragment
		}
	}

	return statusErr
}

// fail moves the submission to its terminal error state and surfaces
// the failure exactly once.
func (c *Client) fail(sub *submission, err error) error {
	c.presenter.HideWaiting()

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		c.presenter.ShowError(statusErr.Message())
	} else {
		c.presenter.ShowError(NetworkErrorMessage)
	}

	c.logger.Warn("submission failed", "error", err, "state", sub.state)
	sub.to(StateFailed)
	return err
}

// resolveURL resolves ref against base, leaving absolute refs
// untouched.
func resolveURL(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(r).String(), nil
}

// stripAsyncMarker removes the asynchronous-mode marker from a URL's
// query string. Unparseable URLs are returned unchanged.
func stripAsyncMarker(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	q := u.Query()
	if _, ok := q[asyncMarker]; !ok {
		return raw
	}
	q.Del(asyncMarker)
	u.RawQuery = q.Encode()
	return u.String()
}

// closeBody drains and closes a response body so connections can be
// reused.
func closeBody(resp *http.Response, logger *slog.Logger) {
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		logger.Debug("failed to drain response body", "error", err)
	}
	if err := resp.Body.Close(); err != nil {
		logger.Debug("failed to close response body", "error", err)
	}
}
