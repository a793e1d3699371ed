// Package api wraps every call to the GreenThumb REST backend behind a
// uniform result envelope. Callers never see a transport error or a raw
// *http.Response: each call resolves to success-with-payload,
// success-without-payload, or failure-with-message.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const apiPrefix = "/api"

// Client issues requests against one backend base URL. It holds no mutable
// state and is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given base URL (scheme://host[:port],
// without the /api prefix).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

// NewClientWithHTTP creates a client using a caller-supplied transport.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	c := NewClient(baseURL)
	if httpClient != nil {
		c.http = httpClient
	}
	return c
}

// Request describes one backend call. Body and Form are mutually exclusive:
// Body is serialized as JSON, Form as multipart/form-data.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Form   *Form
	Token  string
}

// Response is the uniform result envelope. Exactly one of Data and Err is
// set; Status is zero when the transport itself failed.
type Response[T any] struct {
	Data   *T
	Status int
	Err    string
}

// Ok reports whether the call succeeded (with or without a payload).
func (r Response[T]) Ok() bool { return r.Err == "" }

// Error converts a failed response into an error value for callers that
// propagate results as (value, error) pairs. It returns nil on success.
func (r Response[T]) Error() error {
	if r.Err == "" {
		return nil
	}
	return &CallError{Status: r.Status, Message: r.Err}
}

// Payload returns the decoded body for callers that require one. A success
// without a payload becomes a CallError, so a nil pointer never escapes with
// a nil error.
func (r Response[T]) Payload() (*T, error) {
	if err := r.Error(); err != nil {
		return nil, err
	}
	if r.Data == nil {
		return nil, &CallError{Status: r.Status, Message: "empty response body"}
	}
	return r.Data, nil
}

// CallError is the error form of a failure envelope.
type CallError struct {
	Status  int
	Message string
}

func (e *CallError) Error() string { return e.Message }

// Call executes one request and classifies the outcome. Network-level
// failures (DNS, refused connection, timeout) are reported through the
// envelope, never returned as Go errors.
func Call[T any](ctx context.Context, c *Client, req Request) Response[T] {
	httpReq, err := c.build(ctx, req)
	if err != nil {
		return Response[T]{Err: err.Error()}
	}

	res, err := c.http.Do(httpReq)
	if err != nil {
		return Response[T]{Err: err.Error()}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return Response[T]{Status: res.StatusCode, Err: failureMessage(res)}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return Response[T]{Status: res.StatusCode, Err: fmt.Sprintf("read response: %v", err)}
	}

	// 204, empty bodies and non-JSON content are success without payload.
	if res.StatusCode == http.StatusNoContent || len(body) == 0 || !isJSON(res.Header.Get("Content-Type")) {
		return Response[T]{Status: res.StatusCode}
	}

	var data T
	if err := json.Unmarshal(body, &data); err != nil {
		return Response[T]{Status: res.StatusCode, Err: fmt.Sprintf("decode response: %v", err)}
	}
	return Response[T]{Data: &data, Status: res.StatusCode}
}

func (c *Client) build(ctx context.Context, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	u := c.baseURL + apiPrefix + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case req.Form != nil:
		buf, ct, err := req.Form.encode()
		if err != nil {
			return nil, fmt.Errorf("encode form: %w", err)
		}
		body = buf
		contentType = ct
	case req.Body != nil:
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	return httpReq, nil
}

// failureMessage extracts a human-readable message from a non-2xx response:
// the JSON "error" field if present, then "message", then the raw text body,
// then the status text.
func failureMessage(res *http.Response) string {
	body, _ := io.ReadAll(res.Body)

	if isJSON(res.Header.Get("Content-Type")) {
		var parsed map[string]any
		if err := json.Unmarshal(body, &parsed); err == nil {
			if msg, ok := parsed["error"].(string); ok && msg != "" {
				return msg
			}
			if msg, ok := parsed["message"].(string); ok && msg != "" {
				return msg
			}
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return fmt.Sprintf("request failed: %s", http.StatusText(res.StatusCode))
}

func isJSON(contentType string) bool {
	return strings.Contains(contentType, "application/json")
}
