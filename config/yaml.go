// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"context"
	"fmt"
	"io"

	"github.com/z5labs/rawhttp/internal/try"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

// InvalidYamlError occurs if the underlying io.Reader contains invalid YAML.
type InvalidYamlError struct {
	Cause error
}

// Error implements the error interface.
func (e InvalidYamlError) Error() string {
	return fmt.Sprintf("invalid yaml: %s", e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e InvalidYamlError) Unwrap() error {
	return e.Cause
}

// DecodeError occurs when parsed YAML cannot be decoded into the target type.
type DecodeError struct {
	Cause error
}

// Error implements the error interface.
func (e DecodeError) Error() string {
	return fmt.Sprintf("failed to decode config: %s", e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e DecodeError) Unwrap() error {
	return e.Cause
}

// Yaml returns a [Reader] which parses the YAML document read from r
// and decodes it into a T. Struct fields are matched using the
// `config` tag. Durations may be written as strings, e.g. "5s".
//
// If r implements [io.Closer] it is closed once fully read.
func Yaml[T any](r Reader[io.Reader]) Reader[T] {
	return Map(r, func(ctx context.Context, src io.Reader) (v T, err error) {
		defer try.Close(&err, src)

		b, err := io.ReadAll(src)
		if err != nil {
			return v, err
		}

		m := make(map[string]any)
		err = yaml.Unmarshal(b, &m)
		if err != nil {
			return v, InvalidYamlError{Cause: err}
		}

		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName: "config",
			Result:  &v,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.TextUnmarshallerHookFunc(),
			),
		})
		if err != nil {
			return v, err
		}

		err = dec.Decode(m)
		if err != nil {
			return v, DecodeError{Cause: err}
		}
		return v, nil
	})
}
