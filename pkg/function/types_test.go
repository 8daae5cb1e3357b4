package function

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestRequest_Accessors(t *testing.T) {
	req := &Request{
		Headers:    map[string]string{"content-type": "application/json"},
		PathParams: map[string]string{"id": "42"},
	}

	if got := req.PathParam("id"); got != "42" {
		t.Errorf("PathParam(id) = %q", got)
	}
	if got := req.PathParam("other"); got != "" {
		t.Errorf("PathParam(other) = %q, want empty", got)
	}
	if got := req.Header("Content-Type"); got != "application/json" {
		t.Errorf("Header(Content-Type) = %q", got)
	}

	var nilReq *Request
	if nilReq.PathParam("id") != "" || nilReq.Header("X") != "" {
		t.Error("nil request returned values")
	}
}

func TestResponseBuilders(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		resp, err := JSON(http.StatusCreated, map[string]string{"id": "1"})
		if err != nil {
			t.Fatalf("JSON() failed: %v", err)
		}
		if resp.StatusCode != http.StatusCreated || string(resp.Body) != `{"id":"1"}` {
			t.Errorf("resp = %d %s", resp.StatusCode, resp.Body)
		}
	})

	t.Run("JSONUnencodable", func(t *testing.T) {
		if _, err := JSON(http.StatusOK, make(chan int)); err == nil {
			t.Error("JSON() encoded a channel")
		}
	})

	t.Run("Text", func(t *testing.T) {
		resp := Text(http.StatusMethodNotAllowed, "Method not allowed")
		if resp.Headers["Content-Type"] != "text/plain; charset=utf-8" || string(resp.Body) != "Method not allowed" {
			t.Errorf("resp = %+v", resp)
		}
	})

	t.Run("NoContent", func(t *testing.T) {
		resp := NoContent()
		if resp.StatusCode != http.StatusNoContent || len(resp.Body) != 0 || resp.Headers == nil {
			t.Errorf("resp = %+v", resp)
		}
	})

	t.Run("InternalError", func(t *testing.T) {
		resp := InternalError()
		var body map[string]string
		if err := json.Unmarshal(resp.Body, &body); err != nil {
			t.Fatalf("body is not JSON: %v", err)
		}
		if resp.StatusCode != http.StatusInternalServerError || body["error"] != "Internal server error" || len(body) != 1 {
			t.Errorf("resp = %d %v", resp.StatusCode, body)
		}
	})
}
