package function

import (
	"fmt"
	"io"
	"net/http"
)

// FromHTTPRequest converts a net/http request to a generic request.
// pathParams carries the bindings extracted by the router.
func FromHTTPRequest(r *http.Request, pathParams map[string]string) (*Request, error) {
	var body []byte
	if r.Body != nil {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		body = data
	}

	headers := make(map[string]string, len(r.Header))
	for name := range r.Header {
		headers[name] = r.Header.Get(name)
	}

	query := make(map[string]string)
	for name, values := range r.URL.Query() {
		if len(values) > 0 {
			query[name] = values[0]
		}
	}

	params := make(map[string]string, len(pathParams))
	for name, value := range pathParams {
		if value != "" {
			params[name] = value
		}
	}

	return &Request{
		Method:      r.Method,
		Path:        r.URL.Path,
		Headers:     headers,
		QueryParams: query,
		Body:        body,
		PathParams:  params,
	}, nil
}

// WriteResponse writes a generic response to w
func WriteResponse(w http.ResponseWriter, resp *Response) error {
	for name, value := range resp.Headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(resp.StatusCode)

	if len(resp.Body) == 0 {
		return nil
	}
	_, err := w.Write(resp.Body)
	return err
}
