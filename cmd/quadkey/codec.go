package main

import (
	"encoding/hex"
	"fmt"

	"github.com/aleksaelezovic/quadkey/pkg/keybuf"
	"github.com/aleksaelezovic/quadkey/pkg/match"
	"github.com/aleksaelezovic/quadkey/pkg/quad"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

// noSplit selects full keys instead of split key/value entries.
const noSplit = -1

// codecFlags are the layout flags shared by the codec commands.
type codecFlags struct {
	order string
	split int
}

func (f *codecFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.order, "order", "o", "spoc", "field order tag")
	flags.IntVarP(&f.split, "split", "s", noSplit, "number of fields kept in the key; the rest go to the value")
}

func (f *codecFlags) resolve() (*quad.Order, error) {
	o, err := quad.ForTag(f.order)
	if err != nil {
		return nil, err
	}
	if f.split != noSplit {
		if err := quad.CheckSplit(f.split); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func newEncodeCommand() *cobra.Command {
	var flags codecFlags
	cmd := &cobra.Command{
		Use:   "encode <s> <p> <o> <c>",
		Short: "Print the index key of a quad in hex.",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := flags.resolve()
			if err != nil {
				return err
			}
			q, err := parseQuad(args, false)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if flags.split == noSplit {
				fmt.Fprintln(out, hex.EncodeToString(o.Append(nil, q)))
				return nil
			}
			enc, err := quad.NewSplitEncoder(o, flags.split)
			if err != nil {
				return err
			}
			key, value := enc.Append(nil, nil, q)
			fmt.Fprintf(out, "key:   %s\nvalue: %s\n", hex.EncodeToString(key), hex.EncodeToString(value))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newDecodeCommand() *cobra.Command {
	var flags codecFlags
	cmd := &cobra.Command{
		Use:   "decode <key-hex> [value-hex]",
		Short: "Decode an index key, or a split key and value, into s p o c.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := flags.resolve()
			if err != nil {
				return err
			}
			key, value, err := decodeHexArgs(args, flags.split)
			if err != nil {
				return err
			}

			var q quad.Quad
			if flags.split == noSplit {
				q, err = quad.Decode(o, key, quad.AllUnknown)
			} else {
				var enc *quad.SplitEncoder
				if enc, err = quad.NewSplitEncoder(o, flags.split); err == nil {
					q, err = enc.Decode(key, value, quad.AllUnknown)
				}
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatQuad(q))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newMatchCommand() *cobra.Command {
	var flags codecFlags
	var pattern []string
	cmd := &cobra.Command{
		Use:   "match <key-hex> [value-hex]",
		Short: "Report whether an index key matches a pattern.",
		Long: `Report whether an index key matches a pattern. The pattern holds
four fields in s p o c order; "_" leaves a field unbound.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := flags.resolve()
			if err != nil {
				return err
			}
			p, err := parseQuad(pattern, true)
			if err != nil {
				return errors.Wrap(err, "pattern")
			}
			key, value, err := decodeHexArgs(args, flags.split)
			if err != nil {
				return err
			}

			var ok bool
			if flags.split == noSplit {
				ok = match.ForPattern(o, p).MatchesKey(key)
			} else {
				keyPred, valuePred, err := match.ForSplit(o, flags.split, p)
				if err != nil {
					return err
				}
				ok = keyPred.Matches(keybuf.NewSlice(key)) && valuePred.Matches(keybuf.NewSlice(value))
			}
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringSliceVarP(&pattern, "pattern", "p", []string{"_", "_", "_", "_"}, "s,p,o,c pattern")
	return cmd
}

func newOrdersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List the field order tags.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, o := range quad.Orders() {
				fmt.Fprintln(cmd.OutOrStdout(), o.Tag())
			}
			return nil
		},
	}
}

func decodeHexArgs(args []string, split int) (key, value []byte, err error) {
	if key, err = hex.DecodeString(args[0]); err != nil {
		return nil, nil, errors.Wrap(err, "key")
	}
	if len(args) == 2 {
		if split == noSplit {
			return nil, nil, errors.New("a value is only accepted with --split")
		}
		if value, err = hex.DecodeString(args[1]); err != nil {
			return nil, nil, errors.Wrap(err, "value")
		}
	}
	return key, value, nil
}
