// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package http1

// Status codes the server responds with.
const (
	StatusOK         = 200
	StatusCreated    = 201
	StatusBadRequest = 400
	StatusNotFound   = 404
)

var statusText = map[int]string{
	StatusOK:         "OK",
	StatusCreated:    "Created",
	StatusBadRequest: "Bad Request",
	StatusNotFound:   "Not Found",
}

// StatusText returns the reason phrase for code, or the empty
// string if the code is unknown.
func StatusText(code int) string {
	return statusText[code]
}
