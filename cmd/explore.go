package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/aq-dashboard/internal/dataset"
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Summarize the dataset before charting it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ds, err := loadDataset(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		summaries, err := dataset.Explore(ds)
		if err != nil {
			return err
		}
		formatSummaries(os.Stdout, summaries)
		return nil
	},
}

func formatSummaries(out io.Writer, summaries []dataset.Summary) {
	for i, s := range summaries {
		if i > 0 {
			_, _ = fmt.Fprintln(out)
		}
		_, _ = fmt.Fprintln(out, s.Title)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for j, row := range s.Table {
			if j == 0 {
				row = upper(row)
			}
			_, _ = fmt.Fprintln(w, strings.Join(row, "\t"))
		}
		_ = w.Flush()
	}
}

func upper(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.ToUpper(c)
	}
	return out
}

func init() {
	rootCmd.AddCommand(exploreCmd)
}
