package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/kaisel-labs/basin-dashboard/internal/render"
)

// Chart-specific flag values.
var (
	chartKind    string
	chartOut     string
	chartDate    string
	chartMeasure string
	chartAbsent  string
	chartWidth   int
	chartHeight  int
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render a dashboard chart to a PNG file",
	Args:  cobra.NoArgs,
	RunE:  runChart,
}

func init() {
	chartCmd.Flags().StringVarP(&chartKind, "kind", "k", render.KindTrends, "chart kind: "+strings.Join(render.Kinds(), ", "))
	chartCmd.Flags().StringVarP(&chartOut, "out", "o", "", "output PNG path")
	chartCmd.Flags().StringVar(&chartDate, "date", "latest", "snapshot date for pollution, status-mix and radar charts")
	chartCmd.Flags().StringVar(&chartMeasure, "measure", "bod5", "measure for status-mix and stacked charts")
	chartCmd.Flags().StringVar(&chartAbsent, "absent", "zero", "how missing cells are drawn: zero, gap or omit")
	chartCmd.Flags().IntVar(&chartWidth, "width", 1024, "image width in pixels")
	chartCmd.Flags().IntVar(&chartHeight, "height", 512, "image height in pixels")
	_ = chartCmd.MarkFlagRequired("out")
}

func runChart(cmd *cobra.Command, _ []string) error {
	policy, err := render.ParseAbsentPolicy(chartAbsent)
	if err != nil {
		return err
	}

	res, err := loadDataset(cmd.Context())
	if err != nil {
		return err
	}

	spec, ok, err := render.Build(chartKind, res.Dataset(), render.BuildOptions{
		Date:    chartDate,
		Measure: chartMeasure,
		Policy:  policy,
		Index:   indexOptions(),
	})
	if err != nil {
		return eris.Wrapf(err, "report: %q", chartKind)
	}
	if !ok || !spec.Drawable() {
		return eris.Errorf("report: nothing to draw for %s (status %s)", chartKind, res.Status)
	}

	surface := render.NewPNGSurface(chartWidth, chartHeight)
	h, err := surface.Render(spec)
	if err != nil {
		return err
	}
	defer func() { _ = surface.Destroy(h) }()

	if err := os.WriteFile(chartOut, h.Image(), 0o644); err != nil {
		return eris.Wrapf(err, "report: write %s", chartOut)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s, %d bytes)\n", chartOut, spec.Type, len(h.Image()))
	return nil
}
