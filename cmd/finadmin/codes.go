package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/naveenspark/finadmin/pkg/client"
	"github.com/naveenspark/finadmin/pkg/domain"
)

var copyToClipboard = clipboard.WriteAll

func newCodesCmd(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codes",
		Short: "List and generate beta invitation codes",
	}

	cmd.AddCommand(newCodesListCmd(env), newCodesGenerateCmd(env))

	return cmd
}

func parseCodeStatus(raw string) (domain.CodeStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "all":
		return domain.CodeStatusAll, nil
	case string(domain.CodeStatusUsed):
		return domain.CodeStatusUsed, nil
	case string(domain.CodeStatusAvailable):
		return domain.CodeStatusAvailable, nil
	}
	return "", fmt.Errorf("invalid --status %q: want all, used or available", raw)
}

func newCodesListCmd(env *environment) *cobra.Command {
	var (
		page   int
		status string
		search string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List beta codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := parseCodeStatus(status)
			if err != nil {
				return err
			}
			return env.with(func(a *app) error {
				if err := requireSession(cmd.Context(), a); err != nil {
					return err
				}
				p, err := a.client.ListBetaCodes(cmd.Context(), page, client.DefaultCodesLimit, st)
				if err != nil {
					return err
				}
				pg := p.Normalized()
				codes := domain.FilterCodes(pg.Data, search)
				used, available := domain.CountUsed(pg.Data)

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%d codes (%s), page %d/%d, %d used, %d available on this page\n",
					pg.Pagination.Total, st.Label(), pg.Pagination.Page, pg.Pagination.Pages, used, available)
				for _, c := range codes {
					fmt.Fprintln(out, codeLine(c))
				}
				if len(codes) == 0 {
					fmt.Fprintln(out, "no codes")
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().StringVar(&status, "status", "all", "Filter: all, used or available")
	cmd.Flags().StringVar(&search, "search", "", "Only codes whose code or user matches")

	return cmd
}

func codeLine(c domain.BetaCode) string {
	state := "available"
	who := ""
	if c.Used() {
		state = "used"
		who = c.UserName
		if c.UserUsername != "" {
			who += " @" + c.UserUsername
		}
	}
	created := "-"
	if c.CreatedAt.Set() {
		created = c.CreatedAt.Format("2006-01-02")
	}
	return strings.TrimRight(fmt.Sprintf("%-16s %-10s %-10s %s", c.Code, state, created, strings.TrimSpace(who)), " ")
}

func newCodesGenerateCmd(env *environment) *cobra.Command {
	var (
		count  int
		toClip bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate new beta codes",
		Long:  fmt.Sprintf("Generate between %d and %d beta codes. Out-of-range counts are clamped.", domain.MinGenerateCount, domain.MaxGenerateCount),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := domain.ClampGenerateCount(count)
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", verr)
			}
			return env.with(func(a *app) error {
				if err := requireSession(cmd.Context(), a); err != nil {
					return err
				}
				res, err := a.client.GenerateBetaCodes(cmd.Context(), n)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, c := range res.Codes {
					fmt.Fprintln(out, c)
				}
				if toClip && len(res.Codes) > 0 {
					if err := copyToClipboard(strings.Join(res.Codes, "\n")); err != nil {
						return fmt.Errorf("copy codes: %w", err)
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "copied %d codes to the clipboard\n", len(res.Codes))
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&count, "count", domain.DefaultGenerateCount, "Number of codes to generate")
	cmd.Flags().BoolVar(&toClip, "copy", false, "Also copy the codes to the clipboard")

	return cmd
}
