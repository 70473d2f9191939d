package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"randomkiwi/internal/app"
)

var bookmarksJSON bool

var bookmarksCmd = &cobra.Command{
	Use:   "bookmarks",
	Short: "Manage bookmarked articles",
}

var bookmarksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bookmarks, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.Application) error {
			list, err := a.Browser().Bookmarks(cmd.Context())
			if err != nil {
				return err
			}
			return newPrinter(cmd.OutOrStdout(), bookmarksJSON).bookmarks(list, time.Now())
		})
	},
}

var bookmarksRemoveCmd = &cobra.Command{
	Use:   "remove <article-id>",
	Short: "Remove the bookmark for an article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid article id %q: %w", args[0], err)
		}
		return withApp(cmd.Context(), func(a *app.Application) error {
			if err := a.Browser().RemoveBookmark(cmd.Context(), id); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "removed bookmark %d\n", id)
			return err
		})
	},
}

func init() {
	bookmarksListCmd.Flags().BoolVar(&bookmarksJSON, "json", false, "Print bookmarks as JSON")

	bookmarksCmd.AddCommand(bookmarksListCmd)
	bookmarksCmd.AddCommand(bookmarksRemoveCmd)
}
