package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maxviazov/query-explorer/internal/pagination"
)

func newWindowCmd() *cobra.Command {
	var (
		current int
		total   int
		perPage int
		html    bool
	)
	cmd := &cobra.Command{
		Use:   "window",
		Short: "Show the page window and controls for a position",
		Example: `  # Window around page 7 of 20
  explorer window --current 7 --total 20`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := pagination.PageState{
				TableID:        "table",
				CurrentPage:    current,
				TotalPages:     total,
				RecordsPerPage: perPage,
			}
			if err := st.Validate(); err != nil {
				return fmt.Errorf("invalid position: %w", err)
			}
			w := st.Window()
			fmt.Fprintf(cmd.OutOrStdout(), "window: %d-%d of %d\n", w.Start, w.End, total)
			if html {
				out, err := pagination.RenderControls(st)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), FormatControls(pagination.BuildControls(st)))
			return nil
		},
	}
	cmd.Flags().IntVar(&current, "current", 1, "current page (1-based)")
	cmd.Flags().IntVar(&total, "total", 1, "total number of pages")
	cmd.Flags().IntVar(&perPage, "per-page", 10, "records per page, used in rendered links")
	cmd.Flags().BoolVar(&html, "html", false, "print the rendered HTML controls")
	return cmd
}
