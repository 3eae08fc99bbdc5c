package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ungerik/go-splice"
)

func newAppendCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "append <file> [data]",
		Short: "Append data to a file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := dataArg(cmd, args, 1)
			if err != nil {
				return err
			}
			return o.run(cmd, args[0], func(ctx context.Context, engine *splice.Engine) error {
				return engine.Append(ctx, args[0], data)
			})
		},
	}
}

func newInsertCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "insert <file> <offset> [data]",
		Short: "Insert data before the byte at offset",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			offset, err := parseOffset("offset", args[1])
			if err != nil {
				return err
			}
			data, err := dataArg(cmd, args, 2)
			if err != nil {
				return err
			}
			return o.run(cmd, args[0], func(ctx context.Context, engine *splice.Engine) error {
				return engine.InsertAt(ctx, args[0], offset, data)
			})
		},
	}
}

func newReplaceCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "replace <file> <start> <end> [data]",
		Short: "Replace the bytes from start up to end with data",
		Long: `Replace the bytes from start up to but excluding end with data.
An empty data argument deletes the range.`,
		Args: cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseOffset("start", args[1])
			if err != nil {
				return err
			}
			end, err := parseOffset("end", args[2])
			if err != nil {
				return err
			}
			data, err := dataArg(cmd, args, 3)
			if err != nil {
				return err
			}
			return o.run(cmd, args[0], func(ctx context.Context, engine *splice.Engine) error {
				return engine.ReplaceRange(ctx, args[0], start, end, data)
			})
		},
	}
}

func newAppendLineCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:     "append-line <file> <line>...",
		Aliases: []string{"append-lines"},
		Short:   "Append lines to a file",
		Long: `Append lines to a file.
A line separator is written before the first line
if the file does not end with one.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, args[0], func(ctx context.Context, engine *splice.Engine) error {
				return engine.AppendLines(ctx, args[0], args[1:], splice.LineSeparator(o.separator))
			})
		},
	}
}

func newInsertLinesCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "insert-lines <file> <offset> <line>...",
		Short: "Insert lines before the byte at offset",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			offset, err := parseOffset("offset", args[1])
			if err != nil {
				return err
			}
			return o.run(cmd, args[0], func(ctx context.Context, engine *splice.Engine) error {
				return engine.InsertLines(ctx, args[0], offset, args[2:], splice.LineSeparator(o.separator))
			})
		},
	}
}

func newReadLineCmd(o *options) *cobra.Command {
	var offsets bool
	cmd := &cobra.Command{
		Use:   "read-line <file> <offset>",
		Short: "Print the line starting at offset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			offset, err := parseOffset("offset", args[1])
			if err != nil {
				return err
			}
			return o.run(cmd, args[0], func(ctx context.Context, engine *splice.Engine) error {
				line, err := engine.ReadLineAt(args[0], offset)
				if errors.Is(err, io.EOF) {
					return fmt.Errorf("no line at offset %d: %w", offset, err)
				}
				if err != nil {
					return err
				}
				return printLine(cmd.OutOrStdout(), line, offsets)
			})
		},
	}
	cmd.Flags().BoolVar(&offsets, "offsets", false, "print offset, next offset and separator before the line")
	return cmd
}

func newLinesCmd(o *options) *cobra.Command {
	var (
		offsets  bool
		maxLines int
	)
	cmd := &cobra.Command{
		Use:   "lines <file> [offset]",
		Short: "Print the lines starting at offset",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var offset int64
			if len(args) > 1 {
				var err error
				offset, err = parseOffset("offset", args[1])
				if err != nil {
					return err
				}
			}
			errMaxLines := errors.New("max lines printed")
			return o.run(cmd, args[0], func(ctx context.Context, engine *splice.Engine) error {
				count := 0
				err := engine.ForEachLine(ctx, args[0], offset, func(line splice.Line) error {
					if maxLines > 0 && count >= maxLines {
						return errMaxLines
					}
					count++
					return printLine(cmd.OutOrStdout(), line, offsets)
				})
				if errors.Is(err, errMaxLines) {
					return nil
				}
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&offsets, "offsets", false, "print offset, next offset and separator before every line")
	cmd.Flags().IntVarP(&maxLines, "max", "n", 0, "maximum number of lines to print, 0 for all")
	return cmd
}

func newSeparatorCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "separator <file>",
		Short: "Print the line separator at the end of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, args[0], func(ctx context.Context, engine *splice.Engine) error {
				sep, err := engine.TrailingSeparator(args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), sep)
				return err
			})
		},
	}
}

func parseOffset(name, s string) (int64, error) {
	offset, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return offset, nil
}

// dataArg returns args[i] or reads stdin if there is no args[i]
func dataArg(cmd *cobra.Command, args []string, i int) ([]byte, error) {
	if i < len(args) {
		return []byte(args[i]), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("can't read data from stdin: %w", err)
	}
	return data, nil
}

func printLine(w io.Writer, line splice.Line, offsets bool) error {
	var err error
	if offsets {
		_, err = fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", line.Offset, line.Next, line.Separator, line.Text)
	} else {
		_, err = fmt.Fprintln(w, line.Text)
	}
	return err
}
