// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package route

import (
	"context"
	"testing"

	"github.com/z5labs/rawhttp/http1"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

func fileRequest(method, name string, body []byte, hasBody bool) *http1.Request {
	req := newRequest(method, "/files/"+name)
	req.SetPathValue("name", name)
	req.Body = body
	req.HasBody = hasBody
	return req
}

func TestFiles_Read(t *testing.T) {
	t.Run("will return the file contents", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		err := afero.WriteFile(fs, "/tmp/data/report.txt", []byte("héllo"), 0o644)
		if !assert.Nil(t, err) {
			return
		}

		files := NewFiles(fs, "/tmp/data/")
		o, err := files.Read(context.Background(), fileRequest("GET", "report.txt", nil, false))
		if !assert.Nil(t, err) {
			return
		}

		resp := o.Respond()
		assert.Equal(t, http1.StatusOK, resp.StatusCode)
		assert.Equal(t, []http1.Field{
			{Name: "Content-Type", Value: "application/octet-stream"},
			{Name: "Content-Length", Value: "6"},
		}, resp.Header)
		assert.Equal(t, "héllo", string(resp.Body))
	})

	t.Run("will return NotFound", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		err := afero.WriteFile(fs, "/tmp/secret", []byte("secret"), 0o644)
		if !assert.Nil(t, err) {
			return
		}
		files := NewFiles(fs, "/tmp/data/")

		t.Run("if the file does not exist", func(t *testing.T) {
			o, err := files.Read(context.Background(), fileRequest("GET", "missing", nil, false))
			if !assert.Nil(t, err) {
				return
			}
			assert.IsType(t, NotFound{}, o)
		})

		for _, name := range []string{"..", ".", "a\\b", "a\x00b"} {
			t.Run("if the name is "+name, func(t *testing.T) {
				o, err := files.Read(context.Background(), fileRequest("GET", name, nil, false))
				if !assert.Nil(t, err) {
					return
				}
				assert.IsType(t, NotFound{}, o)
			})
		}
	})
}

func TestFiles_Write(t *testing.T) {
	t.Run("will create the file", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		files := NewFiles(fs, "/tmp/data/")

		o, err := files.Write(context.Background(), fileRequest("POST", "new.txt", []byte("12345"), true))
		if !assert.Nil(t, err) {
			return
		}

		resp := o.Respond()
		assert.Equal(t, http1.StatusCreated, resp.StatusCode)
		assert.Empty(t, resp.Header)
		assert.Empty(t, resp.Body)

		b, err := afero.ReadFile(fs, "/tmp/data/new.txt")
		if !assert.Nil(t, err) {
			return
		}
		assert.Equal(t, "12345", string(b))
	})

	t.Run("will overwrite an existing file", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		err := afero.WriteFile(fs, "/tmp/data/a", []byte("a much longer original"), 0o644)
		if !assert.Nil(t, err) {
			return
		}
		files := NewFiles(fs, "/tmp/data/")

		_, err = files.Write(context.Background(), fileRequest("POST", "a", []byte("short"), true))
		if !assert.Nil(t, err) {
			return
		}

		b, err := afero.ReadFile(fs, "/tmp/data/a")
		if !assert.Nil(t, err) {
			return
		}
		assert.Equal(t, "short", string(b))
	})

	t.Run("will round trip with Read", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		files := NewFiles(fs, "/tmp/data/")
		content := []byte{0x00, 0xff, 'a', '\n'}

		_, err := files.Write(context.Background(), fileRequest("POST", "bin", content, true))
		if !assert.Nil(t, err) {
			return
		}

		o, err := files.Read(context.Background(), fileRequest("GET", "bin", nil, false))
		if !assert.Nil(t, err) {
			return
		}
		assert.Equal(t, content, o.Respond().Body)
	})

	t.Run("will return BadRequest", func(t *testing.T) {
		t.Run("if the request has no body", func(t *testing.T) {
			files := NewFiles(afero.NewMemMapFs(), "/tmp/data/")

			o, err := files.Write(context.Background(), fileRequest("POST", "a", nil, false))
			if !assert.Nil(t, err) {
				return
			}
			assert.IsType(t, BadRequest{}, o)
		})
	})

	t.Run("will return NotFound", func(t *testing.T) {
		t.Run("if the filesystem rejects the write", func(t *testing.T) {
			files := NewFiles(afero.NewReadOnlyFs(afero.NewMemMapFs()), "/tmp/data/")

			o, err := files.Write(context.Background(), fileRequest("POST", "a", []byte("x"), true))
			if !assert.Nil(t, err) {
				return
			}
			assert.IsType(t, NotFound{}, o)
		})

		t.Run("if the name is a traversal", func(t *testing.T) {
			files := NewFiles(afero.NewMemMapFs(), "/tmp/data/")

			o, err := files.Write(context.Background(), fileRequest("POST", "..", []byte("x"), true))
			if !assert.Nil(t, err) {
				return
			}
			assert.IsType(t, NotFound{}, o)
		})
	})
}
