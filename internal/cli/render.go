package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRenderCmd(e *env) *cobra.Command {
	var (
		flags  tableFlags
		offset float64
		height int
		width  int
	)

	cmd := &cobra.Command{
		Use:   "render [definition.yaml]",
		Short: "Print a single frame of a table",
		Long: `Prints the header and the lines visible at a scroll offset, the way the
interactive view would draw them. One line is one unit of offset.`,
		Example: `  vtable render servers.yaml --offset 40 --height 11
  vtable render --generate 1000000 --offset 500000`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if offset < 0 {
				return fmt.Errorf("--offset must not be negative")
			}
			spec, err := e.loadTable(args, &flags)
			if err != nil {
				return err
			}
			h := height
			if h <= 0 {
				h = spec.rowCount + 1
			}
			return e.printFrame(cmd.Context(), cmd.OutOrStdout(), spec, width, h, offset)
		},
	}

	flags.register(cmd)
	cmd.Flags().Float64Var(&offset, "offset", 0, "scroll offset in lines")
	cmd.Flags().IntVar(&height, "height", 0, "table height in lines including the header (default rows+1)")
	cmd.Flags().IntVar(&width, "width", defaultPrintWidth, "table width in columns")
	return cmd
}
