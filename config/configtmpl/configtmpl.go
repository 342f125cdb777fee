// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package configtmpl provides template functions for use in config file templates.
//
// A rawhttp config file may reference the environment like so:
//
//	addr: {{ env "RAWHTTP_ADDR" | default "127.0.0.1:4221" }}
//	encodings: [{{ list "RAWHTTP_ENCODINGS" }}]
//	telemetry:
//	  otlp_endpoint: {{ required "OTEL_COLLECTOR" }}
package configtmpl

import (
	"fmt"
	"os"
	"reflect"
	"strings"
)

// Funcs returns every template function in this package keyed by
// the name it is expected to be registered under.
func Funcs() map[string]any {
	return map[string]any{
		"env":      Env,
		"default":  Default,
		"required": Required,
		"list":     List,
	}
}

// Env returns the value of the environment variable key, or the empty
// string if it is not set.
func Env(key string) string {
	return os.Getenv(key)
}

// MissingEnvError is returned by [Required] for an unset or empty variable.
type MissingEnvError struct {
	Key string
}

// Error implements the [error] interface.
func (e MissingEnvError) Error() string {
	return fmt.Sprintf("environment variable %s must be set", e.Key)
}

// Required is like [Env] but fails rendering if key is unset or empty.
func Required(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", MissingEnvError{Key: key}
	}
	return v, nil
}

// List renders the comma separated environment variable key as the
// items of a YAML flow sequence, e.g. " gzip,,br" becomes "gzip, br".
func List(key string) string {
	var items []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return strings.Join(items, ", ")
}

// Default returns def if v is nil or the zero value of its type.
func Default(def, v any) any {
	if v == nil || reflect.ValueOf(v).IsZero() {
		return def
	}
	return v
}
