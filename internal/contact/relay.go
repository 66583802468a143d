package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultRelayURL is the form relay the site posts to unless configured.
const DefaultRelayURL = "https://formspree.io/f/xkooygdp"

const subjectPrefix = "Portfolio Contact from "

// Submission is the JSON body sent to the relay.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Subject string `json:"_subject"`
}

// NewSubmission builds the relay payload from form fields.
func NewSubmission(f Fields) Submission {
	return Submission{
		Name:    f.Name,
		Email:   f.Email,
		Message: f.Message,
		Subject: subjectPrefix + f.Name,
	}
}

// Relay delivers one submission. Implementations return *RelayError
// for non-OK responses and *TransportError when the endpoint could not
// be reached.
type Relay interface {
	Send(ctx context.Context, s Submission) error
}

// HTTPRelay posts submissions to a form-relay service as JSON.
type HTTPRelay struct {
	url    string
	client *http.Client
}

// NewHTTPRelay creates an HTTPRelay with the given request timeout.
func NewHTTPRelay(url string, timeout time.Duration) *HTTPRelay {
	if url == "" {
		url = DefaultRelayURL
	}
	return &HTTPRelay{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// URL returns the endpoint this relay posts to.
func (r *HTTPRelay) URL() string {
	return r.url
}

// Send issues a single POST. It does not retry.
func (r *HTTPRelay) Send(ctx context.Context, s Submission) error {
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return NewTransportError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return NewTransportError(err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return NewRelayError(resp.StatusCode)
	}
	return nil
}

// RelayFunc adapts a function to the Relay interface.
type RelayFunc func(ctx context.Context, s Submission) error

// Send calls f.
func (f RelayFunc) Send(ctx context.Context, s Submission) error {
	return f(ctx, s)
}
