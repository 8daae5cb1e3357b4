package function

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// Request represents a generic HTTP request for serverless functions
type Request struct {
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Headers     map[string]string `json:"headers"`
	QueryParams map[string]string `json:"query_params"`
	Body        []byte            `json:"body"`
	PathParams  map[string]string `json:"path_params"`
}

// PathParam returns the named path binding, or "" when absent
func (r *Request) PathParam(name string) string {
	if r == nil || r.PathParams == nil {
		return ""
	}
	return r.PathParams[name]
}

// Header returns the named header using a case-insensitive match
func (r *Request) Header(name string) string {
	if r == nil {
		return ""
	}
	if v, ok := r.Headers[name]; ok {
		return v
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// Response represents a generic HTTP response for serverless functions
type Response struct {
	StatusCode int               `json:"status_code"`
	Headers    map[string]string `json:"headers"`
	Body       []byte            `json:"body"`
}

// HandlerFunc is a framework-agnostic handler interface
type HandlerFunc func(ctx context.Context, req *Request) (*Response, error)

// JSON builds a response with v encoded as the body
func JSON(status int, v any) (*Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
		Body:       body,
	}, nil
}

// Text builds a plain text response
func Text(status int, body string) *Response {
	return &Response{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "text/plain; charset=utf-8"},
		Body:       []byte(body),
	}
}

// NoContent builds a 204 response
func NoContent() *Response {
	return &Response{
		StatusCode: http.StatusNoContent,
		Headers:    map[string]string{},
	}
}

// InternalError is the response sent when a handler fails with an unhandled error
func InternalError() *Response {
	return &Response{
		StatusCode: http.StatusInternalServerError,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       []byte(`{"error":"Internal server error"}`),
	}
}
