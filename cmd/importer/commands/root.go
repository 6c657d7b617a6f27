// Package commands implements the importer command line.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/bulkimport/internal/config"
	"github.com/JonMunkholm/bulkimport/internal/core"
	"github.com/JonMunkholm/bulkimport/internal/logging"
	"github.com/JonMunkholm/bulkimport/internal/store/memory"
	"github.com/JonMunkholm/bulkimport/internal/store/postgres"
	"github.com/JonMunkholm/bulkimport/internal/store/sqlite"
)

// Exit codes.
const (
	exitOK         = 0
	exitFailure    = 1
	exitUsage      = 2
	exitParse      = 3
	exitRowsFailed = 4
	exitStore      = 5
)

// codedError carries a process exit code.
type codedError struct {
	code int
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &codedError{code: code, err: err}
}

// ExitCode returns the process exit code for an error from Execute.
func ExitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *codedError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitFailure
}

var (
	envFile string
	cfg     *config.Config
)

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "importer",
		Short:         "Bulk import companies and contacts from delimited files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(envFile); err != nil {
				slog.Debug("no env file loaded", "path", envFile, "error", err)
			}

			loaded, err := config.Load()
			if err != nil {
				return withCode(exitUsage, err)
			}
			cfg = loaded
			logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "env file to load before reading configuration")

	root.AddCommand(submitCmd(), previewCmd(), templateCmd())
	return root
}

// openStore returns the record store selected by cfg.Driver and a func
// that releases it.
func openStore(ctx context.Context, cfg config.StoreConfig) (core.RecordStore, func(), error) {
	switch strings.ToLower(cfg.Driver) {
	case config.DriverMemory:
		return memory.New(), func() {}, nil

	case config.DriverSQLite:
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				slog.Warn("close sqlite store", "error", err)
			}
		}, nil

	case config.DriverPostgres:
		s, err := postgres.New(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// parseKind validates a --kind value.
func parseKind(s string) (core.EntityKind, error) {
	kind := core.EntityKind(strings.ToLower(strings.TrimSpace(s)))
	if _, err := core.Lookup(kind); err != nil {
		return "", withCode(exitUsage, fmt.Errorf("%w: %q (known: %s)", core.ErrUnknownKind, s, kindList()))
	}
	return kind, nil
}

func kindList() string {
	kinds := core.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
