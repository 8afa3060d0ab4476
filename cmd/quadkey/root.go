package main

import (
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/aleksaelezovic/quadkey/internal/config"
	"github.com/aleksaelezovic/quadkey/internal/logging"
	"github.com/aleksaelezovic/quadkey/internal/storage"
	"github.com/aleksaelezovic/quadkey/pkg/quad"
	"github.com/aleksaelezovic/quadkey/pkg/store"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

// env is the state shared by subcommands once the config is loaded.
type env struct {
	stdin  io.Reader
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	e := &env{stdin: stdin}
	var configPath string

	rc := &cobra.Command{
		Use:   "quadkey",
		Short: "Encode, decode and scan order-preserving quad index keys.",
		Long: `quadkey works with index keys built from quads of numeric term
identifiers. Each of the 24 field orders (spoc, posc, cops, ...) gives a
key whose byte order matches the numeric order of its fields.

Codec commands (encode, decode, match, orders) need no store. The load,
scan and count commands open the badger store named by the config.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				var err error
				if cfg, err = config.Load(configPath); err != nil {
					return err
				}
			}
			logger, err := logging.New(stderr, cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			e.cfg, e.logger = cfg, logger
			return nil
		},
	}
	rc.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file to read from.")

	rc.AddCommand(newEncodeCommand())
	rc.AddCommand(newDecodeCommand())
	rc.AddCommand(newMatchCommand())
	rc.AddCommand(newOrdersCommand())
	rc.AddCommand(newConfigCommand(e))
	rc.AddCommand(newLoadCommand(e))
	rc.AddCommand(newScanCommand(e))
	rc.AddCommand(newCountCommand(e))

	rc.SetOut(stdout)
	rc.SetErr(stderr)
	return rc
}

// openStore opens the configured quad store. The caller closes it.
func (e *env) openStore() (*store.QuadStore, error) {
	orders, err := e.cfg.Orders()
	if err != nil {
		return nil, err
	}
	s, err := storage.NewBadgerStorage(storage.Options{
		Dir:        e.cfg.DataDir,
		InMemory:   e.cfg.InMemory,
		SyncWrites: e.cfg.SyncWrites,
		Logger:     e.logger,
	})
	if err != nil {
		return nil, err
	}
	qs, err := store.NewQuadStore(s, store.Options{
		Indexes:   orders,
		CacheSize: e.cfg.CacheSize,
		Logger:    e.logger,
	})
	if err != nil {
		s.Close()
		return nil, err
	}
	return qs, nil
}

// wildcard marks an unbound field in a pattern argument.
const wildcard = "_"

// parseQuad parses four term identifiers. With allowWildcard set, "_"
// leaves a field unbound.
func parseQuad(fields []string, allowWildcard bool) (quad.Quad, error) {
	if len(fields) != 4 {
		return quad.Quad{}, errors.Newf("expected 4 fields (s p o c), got %d", len(fields))
	}
	var q quad.Quad
	for i, s := range fields {
		f := quad.Field(i)
		if allowWildcard && s == wildcard {
			q[f] = quad.Any
			if f == quad.Context {
				q[f] = quad.AnyContext
			}
			continue
		}
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return quad.Quad{}, errors.Wrapf(err, "%s", f)
		}
		q[f] = v
	}
	return q, nil
}

func formatQuad(q quad.Quad) string {
	parts := make([]string, 4)
	for i, v := range q {
		parts[i] = strconv.FormatUint(v, 10)
	}
	return strings.Join(parts, " ")
}
