package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/naveenspark/finadmin/pkg/client"
	"github.com/naveenspark/finadmin/pkg/domain"
)

type report struct {
	Days     int                    `json:"days"`
	Overview *domain.Overview       `json:"overview"`
	Entries  *domain.EntriesMetrics `json:"entries"`
	AI       *domain.AIMetrics      `json:"ai"`
	System   *domain.SystemMetrics  `json:"system"`
}

func newReportCmd(env *environment) *cobra.Command {
	var (
		days   int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a one-shot metrics summary",
		Long:  "Fetch the overview, entries, AI and system metrics in parallel and print them. Useful in scripts and cron jobs.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return env.with(func(a *app) error {
				if err := requireSession(cmd.Context(), a); err != nil {
					return err
				}
				window := days
				if window <= 0 {
					window = a.cfg.Days
				}

				r, err := fetchReport(cmd.Context(), a.client, window)
				if err != nil {
					return err
				}

				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(r)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), renderReport(r))
				return err
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Metrics window in days (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw metrics as JSON")

	return cmd
}

// fetchReport loads every section concurrently. The first failure cancels
// the rest.
func fetchReport(ctx context.Context, c *client.Client, days int) (*report, error) {
	r := &report{Days: days}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		r.Overview, err = c.Overview(ctx)
		return err
	})
	g.Go(func() (err error) {
		r.Entries, err = c.EntriesMetrics(ctx, days)
		return err
	})
	g.Go(func() (err error) {
		r.AI, err = c.AIMetrics(ctx, days)
		return err
	})
	g.Go(func() (err error) {
		r.System, err = c.SystemMetrics(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return r, nil
}

var (
	reportTitle   = lipgloss.NewStyle().Bold(true)
	reportSection = lipgloss.NewStyle().Bold(true).Underline(true).MarginTop(1)
	reportLabel   = lipgloss.NewStyle().Width(22)
	reportWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)

func reportLine(label, value string) string {
	return "  " + reportLabel.Render(label) + value
}

func brl(v float64) string {
	return "R$ " + humanize.FormatFloat("#.###,##", v)
}

func count(n int) string {
	return humanize.Comma(int64(n))
}

func renderReport(r *report) string {
	lines := []string{reportTitle.Render(fmt.Sprintf("finadmin report, last %d days", r.Days))}

	o := r.Overview
	lines = append(lines,
		reportSection.Render("Overview"),
		reportLine("Total users", count(o.TotalUsers)),
		reportLine("Active (7d)", fmt.Sprintf("%s (%d%%)", count(o.ActiveUsers7d), o.ActivePercent())),
		reportLine("Entries today", count(o.EntriesToday)),
		reportLine("Entries this month", count(o.EntriesMonth)),
		reportLine("Volume this month", brl(o.VolumeMonth)),
	)
	for _, p := range o.Plans() {
		lines = append(lines, reportLine("Plan "+p.Plan, count(p.Count)))
	}

	totals := r.Entries.Totals()
	lines = append(lines,
		reportSection.Render("Entries"),
		reportLine("Entries", count(totals.Count)),
		reportLine("Volume", brl(totals.Value)),
	)
	for _, s := range r.Entries.TypeShares() {
		lines = append(lines, reportLine(s.Type.Label(), fmt.Sprintf("%s  %.0f%% of total", count(s.Count), s.Percent)))
	}

	ai := r.AI
	lines = append(lines,
		reportSection.Render("AI classification"),
		reportLine("Accuracy", fmt.Sprintf("%.1f%%", ai.AccuracyRate)),
		reportLine("Classifications", count(ai.TotalClassifications)),
		reportLine("Patterns learned", count(ai.PatternsLearned)),
		reportLine("Provider", domain.ProviderLabel(ai.Provider)),
	)

	db, usage, errs := r.System.DB(), r.System.AIStats(), r.System.ErrorSummary()
	errCount := count(errs.Count7d)
	if r.System.ErrorsHigh() {
		errCount = reportWarn.Render(errCount)
	}
	lines = append(lines,
		reportSection.Render("System"),
		reportLine("Database rows", count(db.TotalRows)),
		reportLine("AI calls (30d)", count(usage.Calls30d)),
		reportLine("AI tokens (30d)", count(usage.Tokens30d)),
		reportLine("AI cost (30d)", "$"+humanize.FormatFloat("#,###.##", usage.EstimatedCostUSD)),
		reportLine("Errors (7d)", errCount),
	)

	return strings.TrimRight(lipgloss.JoinVertical(lipgloss.Left, lines...), "\n")
}
