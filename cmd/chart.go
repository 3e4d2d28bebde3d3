package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/etnz/folio"
	"github.com/google/subcommands"
	"github.com/vicanso/go-charts/v2"
)

type chartCmd struct {
	seriesFlags
	metric string
	output string
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "draw the NAV or IRR history as a PNG" }
func (*chartCmd) Usage() string {
	return `fa chart [-m nav|irr] [-start <date>] [-d <date>] [-p <period>] [-s <scope>] -o <file.png>

  Draws the net asset value, or the IRR since inception, at the end of each period.
`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	c.seriesFlags.SetFlags(f)
	f.StringVar(&c.metric, "m", "nav", "Metric to draw (nav, irr)")
	f.StringVar(&c.output, "o", "chart.png", "Output PNG file")
}

func (c *chartCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.metric != "nav" && c.metric != "irr" {
		fmt.Fprintf(os.Stderr, "unknown metric %q\n", c.metric)
		return subcommands.ExitUsageError
	}
	e, err := openEnv(ctx)
	if err != nil {
		return fail("opening database", err)
	}
	defer e.Close()

	scope, points, err := c.series(e)
	if err != nil {
		return fail("computing history", err)
	}
	png, err := drawChart(scope.Name, c.metric, points)
	if err != nil {
		return fail("drawing chart", err)
	}
	if err := os.WriteFile(c.output, png, 0o644); err != nil {
		return fail("writing chart", err)
	}
	fmt.Printf("chart written to %s\n", c.output)
	return subcommands.ExitSuccess
}

// drawChart renders a line chart of metric over points. Returns that are not
// available are drawn as zero.
func drawChart(scope, metric string, points []folio.NAVPoint) ([]byte, error) {
	if len(points) == 0 {
		return nil, errors.New("no point to draw")
	}
	labels := make([]string, len(points))
	values := make([]float64, len(points))
	title := fmt.Sprintf("%s NAV (%s)", scope, points[0].NAV.Total.Currency())
	for i, pt := range points {
		labels[i] = pt.Date.String()
		switch metric {
		case "irr":
			if pt.IRR.OK() {
				values[i] = pt.IRR.Rate.InexactFloat64() * 100
			}
		default:
			values[i] = pt.NAV.Total.Amount().InexactFloat64()
		}
	}
	if metric == "irr" {
		title = fmt.Sprintf("%s IRR (%%)", scope)
	}

	yMin, yMax := values[0], values[0]
	for _, v := range values {
		yMin, yMax = math.Min(yMin, v), math.Max(yMax, v)
	}
	margin := (yMax - yMin) * 0.05
	if margin == 0 {
		margin = math.Max(math.Abs(yMax)*0.05, 1)
	}
	yMin, yMax = yMin-margin, yMax+margin

	splitNum := len(labels) / 6
	if splitNum < 3 {
		splitNum = 3
	}

	p, err := charts.LineRender(
		[][]float64{values},
		charts.TitleTextOptionFunc(title),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        labels,
			SplitNumber: splitNum,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{
			Min:         &yMin,
			Max:         &yMax,
			DivideCount: 5,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return p.Bytes()
}
