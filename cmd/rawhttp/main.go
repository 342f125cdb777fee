// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Command rawhttp serves files, echoes and user agents over raw HTTP/1.1.
package main

import (
	"context"
	"io"
	"os"
	"syscall"

	"github.com/z5labs/rawhttp"
	"github.com/z5labs/rawhttp/internal/app"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func main() {
	err := newCommand(os.Stderr).ExecuteContext(context.Background())
	if err != nil {
		os.Exit(1)
	}
}

func newCommand(logOut io.Writer) *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:           "rawhttp",
		Short:         "Serve a minimal HTTP/1.1 API over TCP",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd.Context(), cmd.Flags(), f)
			if err != nil {
				return err
			}

			log := app.NewLogger(logOut, cfg.LogLevel)

			err = cfg.Validate()
			if err != nil {
				log.ErrorContext(cmd.Context(), "invalid configuration", "error", err)
				return err
			}

			runner := rawhttp.NotifyOnSignal(
				rawhttp.RecoverPanics(rawhttp.DefaultRunner[rawhttp.Runtime]()),
				os.Interrupt,
				syscall.SIGTERM,
			)

			err = runner.Run(cmd.Context(), app.Build(cfg, afero.NewOsFs(), log))
			if err != nil {
				log.ErrorContext(cmd.Context(), "server failed", "error", err)
			}
			return err
		},
	}

	f.register(cmd.Flags())
	return cmd
}
