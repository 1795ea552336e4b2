package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 1 << 20

// RawBody is sent untouched with its own content type (multipart uploads).
type RawBody struct {
	ContentType string
	Reader      io.Reader
}

// Client performs credentialed JSON requests against the Rohis backend.
// A single attempt per call; the request context is the only deadline.
type Client struct {
	baseURL string
	http    *http.Client
	now     func() time.Time
}

// NewClient creates a client for baseURL.
// PRE: baseURL is an absolute URL without a trailing path
// POST: a nil transport falls back to http.DefaultTransport
func NewClient(baseURL string, transport http.RoundTripper) *Client {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: transport,
			// Redirects would carry the browser's cookies to arbitrary hosts.
			CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
		},
		now: time.Now,
	}
}

// BaseURL returns the configured backend URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a GET and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Upload posts a single file as multipart/form-data under field.
// PRE: r yields the file content; contentType is the file's MIME type
func (c *Client) Upload(ctx context.Context, path, field, filename, contentType string, r io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return &Error{Message: FallbackMessage, Err: err}
	}
	if _, err := io.Copy(part, r); err != nil {
		return &Error{Message: FallbackMessage, Err: err}
	}
	if err := mw.Close(); err != nil {
		return &Error{Message: FallbackMessage, Err: err}
	}
	return c.Do(ctx, http.MethodPost, path, RawBody{ContentType: mw.FormDataContentType(), Reader: &buf}, out)
}

// Do performs one request. Plain values are sent as JSON; RawBody is passed through.
// PRE: path starts with "/"
// POST: on success the JSON response is decoded into out (when out != nil)
// POST: every failure is a *Error
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return &Error{Message: FallbackMessage, Err: err}
	}

	creds, hasCreds := CredentialsFrom(ctx)
	if hasCreds {
		creds.apply(req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Message: FallbackMessage, Err: fmt.Errorf("%s %s: %w", method, path, err)}
	}
	defer resp.Body.Close()

	if hasCreds {
		creds.absorb(resp.Cookies(), c.now())
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{StatusCode: resp.StatusCode, Message: FallbackMessage, Err: err}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{StatusCode: resp.StatusCode, Message: FallbackMessage, Err: fmt.Errorf("decode %s %s: %w", method, path, err)}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var (
		reader      io.Reader
		contentType string
	)
	switch b := body.(type) {
	case nil:
	case RawBody:
		reader, contentType = b.Reader, b.ContentType
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		reader, contentType = bytes.NewReader(raw), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// errorFromResponse extracts {message} or {error} from a failed response.
// Any body that parses as JSON but carries neither as a non-empty string yields "HTTP <status>";
// only an unparseable body yields FallbackMessage.
func errorFromResponse(resp *http.Response) *Error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &Error{StatusCode: resp.StatusCode, Message: FallbackMessage, Err: err}
	}
	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return &Error{StatusCode: resp.StatusCode, Message: FallbackMessage, Err: err}
	}
	fields, _ := body.(map[string]any)
	message, _ := fields["message"].(string)
	detail, _ := fields["error"].(string)
	switch {
	case message != "":
		return &Error{StatusCode: resp.StatusCode, Message: message}
	case detail != "":
		return &Error{StatusCode: resp.StatusCode, Message: detail}
	default:
		return &Error{StatusCode: resp.StatusCode, Message: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}
}
