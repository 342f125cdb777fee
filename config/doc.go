// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package config provides a functional approach to reading and composing configuration values.
//
// The package is built around [Reader], a source of a configuration value which may
// or may not be present. Readers are composed with combinators like [Or], [Map],
// [Bind] and [Default].
//
// # Basic Usage
//
// Read the listen address from the environment with a default:
//
//	addr, err := config.Read(ctx,
//	    config.Default("127.0.0.1:4221", config.Env("RAWHTTP_ADDR")),
//	)
//
// Read a YAML file, rendering it as a text/template first:
//
//	cfg := config.Yaml[Config](config.Map(
//	    config.ReadFile("rawhttp.yaml"),
//	    func(ctx context.Context, f *os.File) (io.Reader, error) {
//	        return config.RenderTextTemplate(f, config.TemplateFuncs(configtmpl.Funcs())), nil
//	    },
//	))
//
// # Error Handling
//
// Readers distinguish between three states:
//   - Value is set (returns Value with set=true)
//   - Value is not set (returns Value with set=false, no error)
//   - Error occurred (returns error)
//
// The Read function converts "not set" to ErrValueNotSet for convenience.
package config
