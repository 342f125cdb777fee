// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package route

import (
	"github.com/z5labs/rawhttp/encoding"

	"github.com/spf13/afero"
)

// NewDefault returns the [Router] with the server's route table.
func NewDefault(fs afero.Fs, dir string, encoders *encoding.Registry) *Router {
	files := NewFiles(fs, dir)

	r := NewRouter()
	r.Route("GET /files/{name}", HandlerFunc(files.Read))
	r.Route("POST /files/{name}", HandlerFunc(files.Write))
	r.Route("/user-agent", UserAgent())
	r.Route("/echo/{value}", NewEcho(encoders))
	r.Route("/", Root())
	return r
}
