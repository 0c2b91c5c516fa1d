package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kaisel-labs/basin-dashboard/internal/source"
	"github.com/kaisel-labs/basin-dashboard/internal/waterquality"
	"github.com/kaisel-labs/basin-dashboard/services/report/internal/termui"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print clean proportions per year and first-versus-latest statistics",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

func runSummary(cmd *cobra.Command, _ []string) error {
	res, err := loadDataset(cmd.Context())
	if err != nil {
		return err
	}
	return writeSummary(cmd.OutOrStdout(), res, indexOptions()...)
}

func writeSummary(w io.Writer, res source.Result, opts ...waterquality.IndexOption) error {
	fmt.Fprintf(w, "%s\n", termui.SectionTitle("Water quality: "+res.Source))
	fmt.Fprintf(w, "  status %s, %d records, %d skipped rows\n\n",
		termui.ColorStatus(string(res.Status)), len(res.Records), len(res.Warnings))

	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "  skipped %s\n", warn.Error())
	}
	if len(res.Warnings) > 0 {
		fmt.Fprintln(w)
	}

	if res.Status == source.StatusEmpty {
		return nil
	}

	d := res.Dataset()
	measures := waterquality.Measures()

	fmt.Fprintf(w, "%s\n", termui.SectionTitle("Clean proportion by year (%)"))
	cols := []termui.Column{{Header: "Year"}}
	for _, m := range measures {
		cols = append(cols, termui.Column{Header: waterquality.MeasureLabel(m), Align: termui.AlignRight})
	}
	cols = append(cols, termui.Column{Header: "Basins", Align: termui.AlignRight})
	byYear := termui.NewTable(cols...)

	series := make([]waterquality.Series, len(measures))
	for i, m := range measures {
		series[i] = d.CleanSeries(m, opts...)
	}
	for y, date := range d.YearIndex(opts...) {
		row := []string{waterquality.DisplayYear(date)}
		for _, s := range series {
			row = append(row, formatCell(s.Cells[y]))
		}
		if n, ok := d.BasinsMonitored(date); ok {
			row = append(row, fmt.Sprintf("%d", n))
		} else {
			row = append(row, "-")
		}
		byYear.AddRow(row...)
	}
	if err := byYear.Render(w); err != nil {
		return err
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s\n", termui.SectionTitle("First versus latest"))
	summary := termui.NewTable(
		termui.Column{Header: "Measure"},
		termui.Column{Header: "First"},
		termui.Column{Header: "Latest"},
		termui.Column{Header: "Clean first", Align: termui.AlignRight},
		termui.Column{Header: "Clean latest", Align: termui.AlignRight},
		termui.Column{Header: "Change", Align: termui.AlignRight},
		termui.Column{Header: "Basins added", Align: termui.AlignRight},
		termui.Column{Header: "Direction", Color: termui.ColorDirection},
	)
	for _, m := range measures {
		s := d.Summary(m, opts...)
		summary.AddRow(
			waterquality.MeasureLabel(m),
			waterquality.DisplayYear(s.FirstYear),
			waterquality.DisplayYear(s.LatestYear),
			formatFloat(s.FirstClean),
			formatFloat(s.LatestClean),
			formatChange(s.CleanChange),
			formatInt(s.BasinsAdded),
			waterquality.Direction(s.CleanChange),
		)
	}
	return summary.Render(w)
}

func formatCell(c waterquality.Cell) string {
	if !c.Present {
		return "-"
	}
	return fmt.Sprintf("%.2f", c.Value)
}

func formatFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func formatChange(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%+.2f", *v)
}

func formatInt(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%+d", *v)
}
