package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jacoelho/jpq/internal/config"
	"github.com/jacoelho/jpq/internal/eager"
	"github.com/jacoelho/jpq/internal/output"
)

var errNoExpression = errors.New("expected a JSONPath expression")

func newSelectCommand(s Streams) *cobra.Command {
	return &cobra.Command{
		Use:   "select EXPR [FILE|-]",
		Short: "Evaluate an RFC 9535 JSONPath over fully decoded documents",
		Long: `Evaluate an RFC 9535 JSONPath expression after decoding each document in
memory. Supports filters and slices; use query for documents that do not fit.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errNoExpression
			}
			return cobra.RangeArgs(1, 2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			name := config.Stdin
			if len(args) == 2 {
				name = args[1]
			}

			r, closeFn, err := open(s, name)
			if err != nil {
				return err
			}
			defer func() { _ = closeFn() }()

			values, err := eager.Select(args[0], r)
			if err != nil {
				return err
			}

			w := output.NewWriter(s.Out)
			for _, v := range values {
				if err := w.WriteValue(v); err != nil {
					return err
				}
			}
			return w.Flush()
		},
	}
}
