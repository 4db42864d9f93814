package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/aq-dashboard/internal/aggregate"
)

var rangesCmd = &cobra.Command{
	Use:   "ranges",
	Short: "Print the per-pollutant range table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, _ := cmd.Flags().GetString("format")
		if !validFormat(format) {
			return eris.Errorf("ranges: unknown format %q (want table, json or yaml)", format)
		}

		ds, err := loadDataset(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		return formatRanges(os.Stdout, aggregate.ComputeRanges(ds), format)
	},
}

func validFormat(format string) bool {
	switch format {
	case "table", "json", "yaml":
		return true
	}
	return false
}

func formatRanges(out io.Writer, r aggregate.Ranges, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(r), "ranges: encode json")
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return eris.Wrap(err, "ranges: encode yaml")
		}
		return eris.Wrap(enc.Close(), "ranges: encode yaml")
	case "table":
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "POLLUTANT\tMIN\tMAX")
		_, _ = fmt.Fprintln(w, "---------\t---\t---")
		for _, pr := range r.Pollutants {
			_, _ = fmt.Fprintf(w, "%s\t%.2f\t%.2f\n", pr.Pollutant, pr.Min, pr.Max)
		}
		_, _ = fmt.Fprintf(w, "\nGlobal:\t%.2f\t%.2f\n", r.GlobalMin, r.GlobalMax)
		_, _ = fmt.Fprintf(w, "Highest max:\t%s\t\n", r.MaxPollutant)
		return eris.Wrap(w.Flush(), "ranges: write table")
	default:
		return eris.Errorf("ranges: unknown format %q", format)
	}
}

func init() {
	rangesCmd.Flags().String("format", "table", "output format: table, json or yaml")
	rootCmd.AddCommand(rangesCmd)
}
