// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package route

import (
	"context"

	"github.com/z5labs/rawhttp/encoding"
	"github.com/z5labs/rawhttp/http1"
)

// UserAgent echoes the User-Agent request header back as plain text.
func UserAgent() Handler {
	return HandlerFunc(func(ctx context.Context, req *http1.Request) (Outcome, error) {
		ua, ok := req.Header.Get("User-Agent")
		if !ok {
			return BadRequest{}, nil
		}

		resp := http1.NewResponse(http1.StatusOK).SetBody("text/plain", []byte(ua))
		return Success{Response: resp}, nil
	})
}

// Root always responds with an empty 200.
func Root() Handler {
	return HandlerFunc(func(ctx context.Context, req *http1.Request) (Outcome, error) {
		return Success{Response: http1.NewResponse(http1.StatusOK)}, nil
	})
}

// Echo responds with the "value" path value, encoded with the first
// coding from Accept-Encoding that the registry supports.
type Echo struct {
	encoders *encoding.Registry
}

// NewEcho returns an [Echo]. A nil registry disables encoding.
func NewEcho(encoders *encoding.Registry) *Echo {
	return &Echo{encoders: encoders}
}

// Handle implements the [Handler] interface.
func (h *Echo) Handle(ctx context.Context, req *http1.Request) (Outcome, error) {
	value := []byte(req.PathValue("value"))

	resp := http1.NewResponse(http1.StatusOK)

	accept, _ := req.Header.Get("Accept-Encoding")
	enc, ok := h.encoders.Negotiate(accept)
	if !ok {
		resp.SetBody("text/plain", value)
		return Success{Response: resp}, nil
	}

	b, err := enc.Encode(value)
	if err != nil {
		return nil, err
	}

	resp.AddHeader("Content-Encoding", enc.Name())
	resp.SetBody("text/plain", b)
	return Success{Response: resp}, nil
}
