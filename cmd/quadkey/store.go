package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aleksaelezovic/quadkey/pkg/quad"
	"github.com/aleksaelezovic/quadkey/pkg/store"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func newConfigCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := e.cfg.Marshal()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(buf))
			return nil
		},
	}
}

func newLoadCommand(e *env) *cobra.Command {
	var batchSize int
	cmd := &cobra.Command{
		Use:   "load [file]",
		Short: `Add quads read as "s p o c" lines from a file or stdin.`,
		Long: `Add quads read as whitespace separated "s p o c" lines from a file,
or from stdin when no file or "-" is given. Blank lines and lines starting
with "#" are skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if batchSize <= 0 {
				return errors.Newf("batch size must be positive, got %d", batchSize)
			}
			in := e.stdin
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			qs, err := e.openStore()
			if err != nil {
				return err
			}
			defer qs.Close()

			n, err := loadQuads(qs, in, batchSize)
			if err != nil {
				return err
			}
			if !e.cfg.SyncWrites && !e.cfg.InMemory {
				if err := qs.Sync(); err != nil {
					return err
				}
			}
			e.logger.Info("loaded quads", "count", n)
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d quads\n", n)
			return nil
		},
	}
	cmd.Flags().IntVarP(&batchSize, "batch-size", "b", 1000, "quads per transaction")
	return cmd
}

// loadQuads adds the quads of r to qs in batches and returns how many it read.
func loadQuads(qs *store.QuadStore, r io.Reader, batchSize int) (int, error) {
	var (
		batch []quad.Quad
		total int
		line  int
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := qs.Add(batch...); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		q, err := parseQuad(strings.Fields(text), false)
		if err != nil {
			return total, errors.Wrapf(err, "line %d", line)
		}
		batch = append(batch, q)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return total, err
	}
	return total, flush()
}

func newScanCommand(e *env) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "scan [<s> <p> <o> <c>]",
		Short: "Print the stored quads matching a pattern.",
		Long: `Print the stored quads matching a pattern of four fields in s p o c
order; "_" leaves a field unbound. Without a pattern every quad is printed.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 4 {
				return errors.Newf("expected no pattern or 4 fields, got %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := store.AnyPattern
			if len(args) == 4 {
				p, err := parseQuad(args, true)
				if err != nil {
					return err
				}
				pattern = store.Pattern{
					Subject:   p.Subject(),
					Predicate: p.Predicate(),
					Object:    p.Object(),
					Context:   p.Context(),
				}
			}

			qs, err := e.openStore()
			if err != nil {
				return err
			}
			defer qs.Close()

			it, err := qs.Match(pattern)
			if err != nil {
				return err
			}
			defer it.Close()

			out := bufio.NewWriter(cmd.OutOrStdout())
			n := 0
			for (limit <= 0 || n < limit) && it.Next() {
				fmt.Fprintln(out, formatQuad(it.Quad()))
				n++
			}
			if err := it.Err(); err != nil {
				return err
			}
			return out.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "stop after this many quads; 0 prints all")
	return cmd
}

func newCountCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of stored quads.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			qs, err := e.openStore()
			if err != nil {
				return err
			}
			defer qs.Close()

			n, err := qs.Count()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}
