// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"text/template"

	"github.com/z5labs/rawhttp/internal/try"
)

// TemplateOption configures a [TemplateReader].
type TemplateOption func(*TemplateReader)

// TemplateFunc makes f callable from the template as name.
func TemplateFunc(name string, f any) TemplateOption {
	return func(tr *TemplateReader) {
		tr.funcs[name] = f
	}
}

// TemplateFuncs registers every function in fs under its key.
func TemplateFuncs(fs map[string]any) TemplateOption {
	return func(tr *TemplateReader) {
		for name, f := range fs {
			tr.funcs[name] = f
		}
	}
}

// TemplateDelims replaces the {{ and }} action delimiters.
// An empty delimiter keeps the default.
func TemplateDelims(left, right string) TemplateOption {
	return func(tr *TemplateReader) {
		tr.left = left
		tr.right = right
	}
}

// TemplatePhase identifies where rendering a template failed.
type TemplatePhase string

const (
	PhaseParse   TemplatePhase = "parse"
	PhaseExecute TemplatePhase = "execute"
)

// TemplateError is returned by [TemplateReader.Read] when the source
// could not be rendered.
type TemplateError struct {
	Phase TemplatePhase
	Cause error
}

// Error implements the [error] interface.
func (e TemplateError) Error() string {
	return fmt.Sprintf("config template: %s: %s", e.Phase, e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e TemplateError) Unwrap() error {
	return e.Cause
}

// TemplateReader is an [io.Reader] over the rendered form of a
// text/template source. The source is read, and closed if it is an
// [io.Closer], on the first call to Read. A rendering failure is
// returned by every Read.
type TemplateReader struct {
	src   io.Reader
	left  string
	right string
	funcs template.FuncMap

	once     sync.Once
	rendered *bytes.Reader
	err      error
}

// RenderTextTemplate returns a [TemplateReader] rendering src.
func RenderTextTemplate(src io.Reader, opts ...TemplateOption) *TemplateReader {
	tr := &TemplateReader{
		src:   src,
		funcs: make(template.FuncMap),
	}
	for _, opt := range opts {
		opt(tr)
	}
	return tr
}

// Read implements the [io.Reader] interface.
func (tr *TemplateReader) Read(b []byte) (int, error) {
	tr.once.Do(func() {
		var out []byte
		out, tr.err = tr.render()
		tr.rendered = bytes.NewReader(out)
	})
	if tr.err != nil {
		return 0, tr.err
	}
	return tr.rendered.Read(b)
}

func (tr *TemplateReader) render() (_ []byte, err error) {
	defer try.Close(&err, tr.src)

	text, err := io.ReadAll(tr.src)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New("config").
		Delims(tr.left, tr.right).
		Funcs(tr.funcs).
		Parse(string(text))
	if err != nil {
		return nil, TemplateError{Phase: PhaseParse, Cause: err}
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, nil)
	if err != nil {
		return nil, TemplateError{Phase: PhaseExecute, Cause: err}
	}
	return buf.Bytes(), nil
}
