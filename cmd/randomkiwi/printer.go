package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"randomkiwi/internal/domain"
)

type printer struct {
	w      io.Writer
	asJSON bool
}

func newPrinter(w io.Writer, asJSON bool) *printer {
	return &printer{w: w, asJSON: asJSON}
}

func (p *printer) article(move string, a *domain.ArticleMetadata) error {
	if a == nil {
		return nil
	}
	view := newArticleView(move, a)
	if p.asJSON {
		return json.NewEncoder(p.w).Encode(view)
	}

	if _, err := fmt.Fprintf(p.w, "%-8s %s\n", view.Move, view.Title); err != nil {
		return err
	}
	if view.Description != "" {
		if _, err := fmt.Fprintf(p.w, "         %s\n", view.Description); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(p.w, "         %s\n", view.URL)
	return err
}

func (p *printer) bookmarked(b domain.Bookmark, added bool) error {
	if p.asJSON {
		return json.NewEncoder(p.w).Encode(struct {
			ArticleID int  `json:"articleId"`
			Added     bool `json:"added"`
		}{b.ArticleID, added})
	}
	if !added {
		_, err := fmt.Fprintf(p.w, "already bookmarked: %s\n", b.Title)
		return err
	}
	_, err := fmt.Fprintf(p.w, "bookmarked: %s\n", b.Title)
	return err
}

func (p *printer) bookmarks(list []domain.Bookmark, now time.Time) error {
	if p.asJSON {
		return json.NewEncoder(p.w).Encode(list)
	}
	if len(list) == 0 {
		_, err := fmt.Fprintln(p.w, "no bookmarks yet")
		return err
	}

	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tADDED\tURL")
	for _, b := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", b.ArticleID, b.Title, humanize.RelTime(b.AddedAt, now, "ago", "from now"), b.URL)
	}
	return tw.Flush()
}
