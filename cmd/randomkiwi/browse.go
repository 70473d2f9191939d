package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"randomkiwi/internal/app"
	"randomkiwi/internal/catalog"
	"randomkiwi/internal/domain"
)

var (
	browseCount    int
	browseBack     int
	browseBookmark bool
	browseJSON     bool
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Show random articles, optionally stepping back and bookmarking",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if browseCount < 1 {
			return fmt.Errorf("--count must be at least 1")
		}
		return withApp(cmd.Context(), func(a *app.Application) error {
			return runBrowse(cmd, a)
		})
	},
}

func init() {
	browseCmd.Flags().IntVarP(&browseCount, "count", "n", 1, "Number of articles to move forward through")
	browseCmd.Flags().IntVar(&browseBack, "back", 0, "Steps to go back afterwards")
	browseCmd.Flags().BoolVar(&browseBookmark, "bookmark", false, "Bookmark the article you end on")
	browseCmd.Flags().BoolVar(&browseJSON, "json", false, "Print articles as JSON lines")
}

func runBrowse(cmd *cobra.Command, a *app.Application) error {
	ctx := cmd.Context()
	browser := a.Browser()
	out := newPrinter(cmd.OutOrStdout(), browseJSON)

	if err := browser.StartPrefetch(ctx); err != nil {
		return fmt.Errorf("start prefetch: %w", err)
	}

	res := browser.Start(ctx)
	if res.Failed() {
		return resultError(res)
	}
	if err := out.article("next", res.Article); err != nil {
		return err
	}

	for i := 1; i < browseCount; i++ {
		res = browser.Next(ctx)
		if res.Failed() {
			if res.Article == nil || !errors.Is(res.Err, catalog.ErrReplenish) {
				return resultError(res)
			}
			logger.Warn(res.Message, "error", res.Err)
		}
		if err := out.article("next", res.Article); err != nil {
			return err
		}
	}

	for i := 0; i < browseBack; i++ {
		res = browser.Previous()
		if res.Failed() {
			logger.Warn(res.Message)
			break
		}
		if err := out.article("previous", res.Article); err != nil {
			return err
		}
	}

	if !browseBookmark {
		return nil
	}
	bookmark, added, err := browser.BookmarkCurrent(ctx)
	if err != nil {
		return err
	}
	return out.bookmarked(bookmark, added)
}

func resultError(res catalog.Result) error {
	if res.Err == nil {
		return errors.New(res.Message)
	}
	return fmt.Errorf("%s: %w", res.Message, res.Err)
}

// articleView is the JSON shape of a printed article.
type articleView struct {
	Move        string `json:"move"`
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
}

func newArticleView(move string, a *domain.ArticleMetadata) articleView {
	return articleView{
		Move:        move,
		ID:          a.ID,
		Title:       a.Heading(),
		Description: a.Description,
		URL:         a.URL,
	}
}
