// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package route

import (
	"context"
	"strings"

	"github.com/z5labs/rawhttp/http1"

	"github.com/spf13/afero"
)

// Files serves and stores files under a base directory.
//
// The file path is the base directory concatenated verbatim with the
// requested name, so the directory is expected to end with a separator.
type Files struct {
	fs  afero.Fs
	dir string
}

// NewFiles returns a [Files] rooted at dir on fs.
func NewFiles(fs afero.Fs, dir string) *Files {
	return &Files{
		fs:  fs,
		dir: dir,
	}
}

func (f *Files) path(name string) (string, bool) {
	if name == "." || name == ".." || strings.ContainsAny(name, "\\\x00") {
		return "", false
	}
	return f.dir + name, true
}

// Read responds with the contents of the file named by the "name"
// path value. Any filesystem failure results in [NotFound].
func (f *Files) Read(ctx context.Context, req *http1.Request) (Outcome, error) {
	path, ok := f.path(req.PathValue("name"))
	if !ok {
		return NotFound{}, nil
	}

	b, err := afero.ReadFile(f.fs, path)
	if err != nil {
		return NotFound{}, nil
	}

	resp := http1.NewResponse(http1.StatusOK).SetBody("application/octet-stream", b)
	return Success{Response: resp}, nil
}

// Write creates or overwrites the file named by the "name" path value
// with the request body. A request without a body is a [BadRequest].
func (f *Files) Write(ctx context.Context, req *http1.Request) (Outcome, error) {
	if !req.HasBody {
		return BadRequest{}, nil
	}

	path, ok := f.path(req.PathValue("name"))
	if !ok {
		return NotFound{}, nil
	}

	err := afero.WriteFile(f.fs, path, req.Body, 0o644)
	if err != nil {
		return NotFound{}, nil
	}
	return Success{Response: http1.NewResponse(http1.StatusCreated)}, nil
}
