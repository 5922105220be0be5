package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/newsline/internal/domain/article"
	chiTransport "github.com/kailas-cloud/newsline/internal/transport/chi"
)

func searchCmd(opts *rootOptions) *cobra.Command {
	var (
		n      int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the backend and print the timeline",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			query := strings.Join(args, " ")
			items, err := a.search.Search(cmd.Context(), query, n)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(chiTransport.NewSearchResponse(query, items))
			}
			return printTimeline(cmd.OutOrStdout(), items)
		},
	}

	cmd.Flags().IntVarP(&n, "results", "n", 0, "number of results (0 = config default)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

func printTimeline(w io.Writer, items []article.Article) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	for i := range items {
		a := &items[i]
		date := "undated   "
		if a.HasDate() {
			date = a.Date.Format("2006-01-02")
		}
		if _, err := fmt.Fprintf(w, "%s  [%s] %s | %s\n    id=%s %s\n",
			date, a.Rating.Label(), a.Title, a.Publisher, a.DocID, a.Link); err != nil {
			return err
		}
	}
	return nil
}
