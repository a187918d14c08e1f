package main

import (
	"fmt"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

func banner() string {
	return figure.NewFigure("finadmin", "cybermedium", true).String()
}

func newVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !short {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), banner()); err != nil {
					return err
				}
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "finadmin "+version)
			return err
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Print only the version line")

	return cmd
}
