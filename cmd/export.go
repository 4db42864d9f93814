package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/aq-dashboard/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the range table, overview means and seasonal changes to an xlsx workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, _ := cmd.Flags().GetString("out")

		ds, err := loadDataset(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		f, err := os.Create(out)
		if err != nil {
			return eris.Wrapf(err, "export: create %s", out)
		}
		if err := export.Write(f, ds); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return eris.Wrapf(err, "export: close %s", out)
		}
		fmt.Fprintln(os.Stderr, "Wrote", out)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("out", "air-quality.xlsx", "output workbook path")
	rootCmd.AddCommand(exportCmd)
}
