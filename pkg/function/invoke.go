package function

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Invoke runs h and turns any error it returns into the generic 500 response.
// The error is logged with the request method and path; callers never see its text.
func Invoke(ctx context.Context, h HandlerFunc, req *Request, logger logrus.FieldLogger) *Response {
	resp, err := h(ctx, req)
	if err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"method": req.Method,
			"path":   req.Path,
		}).Error("Function invocation failed")
		return InternalError()
	}
	if resp == nil {
		return NoContent()
	}
	if resp.Headers == nil {
		resp.Headers = map[string]string{}
	}
	return resp
}
