package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/naveenspark/finadmin/internal/config"
)

func newConfigCmd(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the settings file",
	}

	cmd.AddCommand(newConfigInitCmd(env), newConfigShowCmd(env))

	return cmd
}

func newConfigInitCmd(env *environment) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a settings file with the default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := env.settingsDir()
			if err != nil {
				return err
			}
			path, err := config.Init(dir, force)
			if errors.Is(err, config.ErrExists) {
				return fmt.Errorf("%w (use --force to overwrite)", err)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	return cmd
}

func newConfigShowCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := env.settingsDir()
			if err != nil {
				return err
			}
			cfg, err := config.Load(viper.New(), dir)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			token := "from " + config.DirName + "/token"
			if cfg.Token != "" {
				token = "from FINADMIN_TOKEN"
			}
			out := cmd.OutOrStdout()
			for _, kv := range [][2]string{
				{config.KeyAPIURL, cfg.APIURL},
				{config.KeyWebURL, cfg.WebURL},
				{config.KeyLogLevel, cfg.LogLevel.String()},
				{config.KeyLogFile, cfg.LogFile},
				{config.KeyRefreshInterval, cfg.RefreshInterval.String()},
				{config.KeyStaleTime, cfg.StaleTime.String()},
				{config.KeyHTTPTimeout, cfg.HTTPTimeout.String()},
				{config.KeyDays, fmt.Sprint(cfg.Days)},
				{config.KeyToken, token},
			} {
				fmt.Fprintf(out, "%-18s %s\n", kv[0], kv[1])
			}
			return nil
		},
	}
}
