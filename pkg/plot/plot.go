// Package plot renders the per-topic timing series of a check run as an
// interactive HTML page.
package plot

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/mcapcheck/pkg/alg/stats"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/config"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/rules/timing"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/series"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/topic"
)

const (
	nsToMs = 1e-6

	// maxIntervalPoints caps the joint-state interval line.
	maxIntervalPoints = 2000

	chartHeight = "420px"
	chartWidth  = "100%"

	colorRate  = "#5470c6"
	colorGap   = "#ee6666"
	colorJoint = "#91cc75"
)

// TopicStat is the timing summary of one topic.
type TopicStat struct {
	Name     string
	Messages int
	RateHz   float64
	MaxGapMs float64
}

// Stats summarizes every topic in first-appearance order. Single-sample
// topics get a zero rate and gap.
func Stats(topics series.Topics) []TopicStat {
	var out []TopicStat

	topics.Each(func(name string, ts []uint64) {
		st := TopicStat{Name: name, Messages: len(ts)}

		if rate, ok := timing.Rate(ts); ok {
			st.RateHz = round(rate)
		}

		st.MaxGapMs = round(stats.Max(stats.Intervals(ts, nsToMs)))
		out = append(out, st)
	})

	return out
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}

// Write renders the page for one file.
func Write(w io.Writer, file string, topics series.Topics, cfg config.Checks) error {
	topicStats := Stats(topics)

	page := components.NewPage()
	page.PageTitle = "mcapcheck: " + file
	page.SetLayout(components.PageFlexLayout)

	page.AddCharts(
		rateChart(topicStats, cfg),
		gapChart(topicStats, cfg),
		intervalChart(topics.Pool(topic.IsJointState)),
	)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render plot: %w", err)
	}

	return nil
}

func baseOpts(title, subtitle, yName string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
	}
}

func names(topicStats []TopicStat) []string {
	out := make([]string, len(topicStats))
	for i, st := range topicStats {
		out[i] = st.Name
	}

	return out
}

func rateChart(topicStats []TopicStat, cfg config.Checks) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(baseOpts("Topic rate",
		fmt.Sprintf("min joint %.1f Hz, min camera %.1f FPS", cfg.MinJointHz, cfg.MinCameraFPS), "Hz")...)
	bar.SetXAxis(names(topicStats))

	data := make([]opts.BarData, len(topicStats))
	for i, st := range topicStats {
		data[i] = opts.BarData{Value: st.RateHz}
	}

	bar.AddSeries("rate", data, charts.WithItemStyleOpts(opts.ItemStyle{Color: colorRate}))

	return bar
}

func gapChart(topicStats []TopicStat, cfg config.Checks) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(baseOpts("Largest gap",
		fmt.Sprintf("threshold %.1f ms", cfg.MaxTimeGapMs), "ms")...)
	bar.SetXAxis(names(topicStats))

	data := make([]opts.BarData, len(topicStats))
	for i, st := range topicStats {
		data[i] = opts.BarData{Value: st.MaxGapMs}
	}

	bar.AddSeries("max gap", data, charts.WithItemStyleOpts(opts.ItemStyle{Color: colorGap}))

	return bar
}

func intervalChart(joints []uint64) *charts.Line {
	intervals := downsample(stats.Intervals(joints, nsToMs), maxIntervalPoints)

	line := charts.NewLine()
	line.SetGlobalOptions(baseOpts("Joint-state interval", "pooled joint_states topics", "ms")...)

	labels := make([]string, len(intervals))
	data := make([]opts.LineData, len(intervals))

	for i, v := range intervals {
		labels[i] = fmt.Sprint(i)
		data[i] = opts.LineData{Value: round(v)}
	}

	line.SetXAxis(labels)
	line.AddSeries("interval", data, charts.WithLineStyleOpts(opts.LineStyle{Color: colorJoint}))

	return line
}

// downsample keeps the maximum of each bucket so spikes stay visible.
func downsample(values []float64, limit int) []float64 {
	if len(values) <= limit {
		return values
	}

	bucket := (len(values) + limit - 1) / limit
	out := make([]float64, 0, limit)

	for start := 0; start < len(values); start += bucket {
		out = append(out, stats.Max(values[start:min(start+bucket, len(values))]))
	}

	return out
}
