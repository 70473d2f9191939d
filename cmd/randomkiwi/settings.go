package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"randomkiwi/internal/app"
	"randomkiwi/internal/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change preferences",
}

var settingsDetailCmd = &cobra.Command{
	Use:       "detail <any|medium|detailed>",
	Short:     "Set the minimum article detail level",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"any", "medium", "detailed"},
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := domain.ParseDetailLevel(args[0])
		if err != nil {
			return err
		}
		if level == domain.DetailUnknown {
			return fmt.Errorf("detail level must be one of any, medium, detailed")
		}
		return withApp(cmd.Context(), func(a *app.Application) error {
			return setDetailLevel(cmd, a, level)
		})
	},
}

func setDetailLevel(cmd *cobra.Command, a *app.Application, level domain.DetailLevel) error {
	out := cmd.OutOrStdout()
	if a.Settings().DetailLevel() == level {
		_, err := fmt.Fprintf(out, "detail level already %s\n", level)
		return err
	}

	res := a.Browser().SetDetailLevel(cmd.Context(), level)
	if res.Failed() {
		return resultError(res)
	}
	_, err := fmt.Fprintf(out, "detail level set to %s\n", level)
	return err
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.Application) error {
			prefs := a.Settings().Preferences()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "language:     %s\n", prefs.Language)
			fmt.Fprintf(out, "detail level: %s\n", prefs.DetailLevel)
			_, err := fmt.Fprintf(out, "storage:      %s %s\n", cfg.Storage.Driver, cfg.Storage.DSN)
			return err
		})
	},
}

func init() {
	settingsCmd.AddCommand(settingsDetailCmd)
	settingsCmd.AddCommand(settingsShowCmd)
}
