package cli

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	applog "github.com/maxviazov/query-explorer/internal/logger"
	"github.com/maxviazov/query-explorer/internal/pager"
	"github.com/maxviazov/query-explorer/internal/pagination"
	"github.com/maxviazov/query-explorer/internal/tabledata"
)

func newPageCmd(g *globalFlags) *cobra.Command {
	var (
		page    int
		perPage int
		html    bool
	)
	cmd := &cobra.Command{
		Use:   "page TABLE",
		Short: "Fetch one page of a result table",
		Example: `  # Third page of "sales", 25 rows per page
  explorer page sales --page 3 --per-page 25`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ccfg, err := g.clientConfig()
			if err != nil {
				return err
			}
			log, err := g.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			pageLog := applog.Component(log, "cli", "page")
			pageLog.Debug().
				Str("base_url", ccfg.BaseURL).
				Str("table", args[0]).
				Int("page", page).
				Msg("fetching table page")
			client, err := tabledata.New(tabledata.Config{BaseURL: ccfg.BaseURL, Timeout: ccfg.Timeout}, log)
			if err != nil {
				return err
			}
			res, err := fetchPage(cmd.Context(), client, args[0], page, perPage, log)
			if err != nil {
				return err
			}
			printPage(cmd, res, html)
			return nil
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number (1-based); values below 1 keep the first page")
	cmd.Flags().IntVar(&perPage, "per-page", 10, "records per page")
	cmd.Flags().BoolVar(&html, "html", false, "print the rendered HTML controls instead of text")
	return cmd
}

type pageResult struct {
	state    pagination.PageState
	slot     pager.Slot
	controls []pagination.Control
}

// fetchPage loads the first page to learn the page count, the way the UI
// shows a fresh table, then navigates to page through the controller. The
// controller ignores pages below 1 and clamps pages past the end.
func fetchPage(ctx context.Context, fetcher pager.Fetcher, table string, page, perPage int, log zerolog.Logger) (pageResult, error) {
	first, err := fetcher.FetchPage(ctx, table, 1, perPage)
	if err != nil {
		return pageResult{}, err
	}

	doc := pager.NewDocument()
	ctl := pager.New(fetcher, doc, log)
	if err := ctl.Mount(table, template.HTML(first.TableHTML), max(1, first.TotalPages), perPage); err != nil {
		return pageResult{}, err
	}
	if page != 1 {
		if err := ctl.RequestPage(ctx, table, page, perPage); err != nil {
			return pageResult{}, err
		}
	}

	st, _ := ctl.PageState(table)
	slot, _ := doc.Slot(table)
	controls, _ := ctl.Controls(table)
	return pageResult{state: st, slot: slot, controls: controls}, nil
}

func printPage(cmd *cobra.Command, res pageResult, html bool) {
	fmt.Fprintln(cmd.OutOrStdout(), string(res.slot.Fragment))
	fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d\n", res.state.CurrentPage, res.state.TotalPages)
	if html {
		fmt.Fprintln(cmd.OutOrStdout(), string(res.slot.Controls))
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), FormatControls(res.controls))
}

// FormatControls renders controls as one line of text: the active page in
// parentheses, disabled arrows in angle brackets, ellipses bare and
// everything else in brackets.
func FormatControls(controls []pagination.Control) string {
	parts := make([]string, 0, len(controls))
	for _, c := range controls {
		switch {
		case c.Kind == pagination.KindEllipsis:
			parts = append(parts, c.Label)
		case c.Active:
			parts = append(parts, "("+c.Label+")")
		case c.Disabled:
			parts = append(parts, "<"+c.Label+">")
		default:
			parts = append(parts, "["+c.Label+"]")
		}
	}
	return strings.Join(parts, " ")
}
