package bench

import (
	"encoding/csv"
	"io"
	"slices"
	"strconv"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

var csvHeader = []string{"index", "size", "operation", "ops", "total_ns", "ns_per_op", "alloc_bytes"}

// WriteCSV writes one row per result after a header row.
func WriteCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range results {
		err := cw.Write([]string{
			r.Index,
			strconv.Itoa(r.Size),
			string(r.Operation),
			strconv.Itoa(r.Ops),
			strconv.FormatInt(r.Total.Nanoseconds(), 10),
			strconv.FormatFloat(r.NsPerOp(), 'f', 1, 64),
			strconv.FormatUint(r.AllocBytes, 10),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Chart saves a grouped bar chart of mean latency per operation, one bar
// per index, for the results at the given size. The image format follows
// the file extension (png, svg, pdf).
func Chart(path string, results []Result, size int) error {
	var indexes []string
	latency := make(map[string]map[Operation]float64)
	for _, r := range results {
		if r.Size != size {
			continue
		}
		if _, ok := latency[r.Index]; !ok {
			indexes = append(indexes, r.Index)
			latency[r.Index] = make(map[Operation]float64)
		}
		latency[r.Index][r.Operation] = r.NsPerOp()
	}
	if len(indexes) == 0 {
		return errors.Newf("no results for size %d", size)
	}

	p := plot.New()
	p.Title.Text = "Mean latency at " + strconv.Itoa(size) + " keys"
	p.Y.Label.Text = "ns/op"
	p.Legend.Top = true

	barWidth := vg.Points(float64(60) / float64(len(indexes)))
	for i, name := range indexes {
		values := make(plotter.Values, len(Operations))
		for j, op := range Operations {
			values[j] = latency[name][op]
		}
		bars, err := plotter.NewBarChart(values, barWidth)
		if err != nil {
			return errors.Wrapf(err, "bars for %s", name)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		bars.Offset = barWidth * vg.Length(float64(i)-float64(len(indexes)-1)/2)
		p.Add(bars)
		p.Legend.Add(name, bars)
	}

	names := make([]string, len(Operations))
	for i, op := range Operations {
		names[i] = string(op)
	}
	p.NominalX(names...)

	return p.Save(vg.Length(max(6, len(indexes)))*vg.Inch, 4*vg.Inch, path)
}

// Indexes returns the distinct index names in results, in first seen
// order.
func Indexes(results []Result) []string {
	var out []string
	for _, r := range results {
		if !slices.Contains(out, r.Index) {
			out = append(out, r.Index)
		}
	}
	return out
}
