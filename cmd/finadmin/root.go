package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/naveenspark/finadmin/internal/config"
	"github.com/naveenspark/finadmin/internal/tui"
)

func newRootCmd() *cobra.Command {
	env := &environment{}

	rootCmd := &cobra.Command{
		Use:           "finadmin",
		Short:         "Terminal admin dashboard for the finance bot",
		Long:          "finadmin signs in to the finance bot's admin API and shows users, entries, AI accuracy, system health and beta codes in the terminal. Run it without a command to open the dashboard.",
		SilenceUsage:  true,
		SilenceErrors: false,
		Version:       version,
		Args:          cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return env.with(runDashboard)
		},
	}
	rootCmd.PersistentFlags().StringVar(&env.dir, "config-dir", "", "Settings directory (default ~/"+config.DirName+")")

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(env),
		newLogoutCmd(env),
		newVerifyCmd(env),
		newReportCmd(env),
		newCodesCmd(env),
		newConfigCmd(env),
	)

	return rootCmd
}

func runDashboard(a *app) error {
	p := tea.NewProgram(tui.NewApp(a.services()), tea.WithAltScreen())
	final, err := p.Run()
	if m, ok := final.(tui.App); ok {
		m.Shutdown()
	}
	if err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}
