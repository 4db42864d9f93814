package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/aq-dashboard/internal/dashboard"
	"github.com/sells-group/aq-dashboard/internal/figure"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Write the overview, detail and comparison charts as SVG files",
	RunE: func(cmd *cobra.Command, _ []string) error {
		pollutant, _ := cmd.Flags().GetString("pollutant")
		location, _ := cmd.Flags().GetString("location")
		outDir, _ := cmd.Flags().GetString("out")

		ds, err := loadDataset(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		d := dashboard.New(ds, dashboard.Options{DefaultPollutant: cfg.Dashboard.DefaultPollutant})
		if pollutant == "" {
			pollutant = d.DefaultPollutant()
		}

		paths, err := renderFigures(cmd.Context(), d, pollutant, location, outDir)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		return nil
	},
}

// renderFigures writes overview.svg, detail.svg and comparison.svg to
// outDir concurrently and returns their paths.
func renderFigures(ctx context.Context, d *dashboard.Dashboard, pollutant, location, outDir string) ([]string, error) {
	overview, err := d.Overview(pollutant)
	if err != nil {
		return nil, eris.Wrap(err, "render: overview")
	}
	u := d.Handle(ctx, dashboard.OverviewClicked{Location: location})
	if u.IsNoUpdate() {
		return nil, eris.Errorf("render: no charts for location %q", location)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "render: create %s", outDir)
	}

	figs := []struct {
		name string
		fig  *figure.Figure
	}{
		{"overview.svg", overview},
		{"detail.svg", u.Detail},
		{"comparison.svg", u.Comparison},
	}
	paths := make([]string, len(figs))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range figs {
		paths[i] = filepath.Join(outDir, f.name)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return writeSVGFile(paths[i], f.fig)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("charts rendered",
		zap.String("pollutant", pollutant),
		zap.String("location", location),
		zap.String("out", outDir),
	)
	return paths, nil
}

func writeSVGFile(path string, fig *figure.Figure) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "render: create %s", path)
	}
	if err := fig.RenderSVG(f); err != nil {
		_ = f.Close()
		return eris.Wrapf(err, "render: %s", path)
	}
	return eris.Wrapf(f.Close(), "render: close %s", path)
}

func init() {
	renderCmd.Flags().String("pollutant", "", "overview pollutant (default from config)")
	renderCmd.Flags().String("location", "", "place whose detail and comparison charts are drawn")
	renderCmd.Flags().String("out", ".", "output directory")
	_ = renderCmd.MarkFlagRequired("location")
	rootCmd.AddCommand(renderCmd)
}
