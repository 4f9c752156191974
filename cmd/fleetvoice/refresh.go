package main

import (
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/aleister1102/fleetvoice/internal/models"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

func newRefreshCmd(configPath *string) *cobra.Command {
	var entityIDs []string

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Run one refresh cycle and print the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a := newApp(ctx, cfg, log)
			defer a.close()

			report, err := a.refresher.RunSync(ctx, entityIDs...)
			if report.CycleID != "" || report.Fatal != "" {
				printReport(cmd.OutOrStdout(), report)
			}
			if err != nil {
				return err
			}
			if report.Fatal != "" {
				return errors.New("refresh aborted: " + report.Fatal)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&entityIDs, "entity", "e", nil, "entity ids to refresh (default: all)")
	return cmd
}

// printReport renders one row per entity.
func printReport(w io.Writer, report models.RefreshReport) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Entity", "Outcome", "Source", "Address / Reason"})
	for _, res := range report.Results {
		detail := res.Text
		if !res.IsFound() {
			detail = res.Reason
		}
		t.AppendRow(table.Row{res.EntityID, res.Outcome.String(), res.Source, detail})
	}
	footer := "cycle " + report.CycleID
	if report.Fatal != "" {
		footer = "aborted: " + report.Fatal
	}
	t.AppendFooter(table.Row{footer, "", "found", report.FoundCount()})
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Footer = text.FormatDefault
	t.Render()
}
