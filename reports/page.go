package reports

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/a-h/templ"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kimm528/ringfitmanager/fitlife"
	"github.com/kimm528/ringfitmanager/health"
)

const chartTheme = "macarons"

var printer = message.NewPrinter(language.English)

//go:generate templ generate -f page.templ

type renderer interface {
	Render(w io.Writer) error
}

type pageView struct {
	Name     string
	Period   string
	Overall  string
	Metrics  []metricRow
	Activity string
	Charts   []templ.Component
}

type metricRow struct {
	Metric     string
	Status     string
	Thresholds string
}

// HealthPage is the printable version of the health report.
func HealthPage(r *HealthReport) templ.Component {
	return healthPage(newPageView(r))
}

func newPageView(r *HealthReport) pageView {
	card := r.Current
	activity := card.Snapshot.Activity
	goals := card.Profile.Goals

	view := pageView{
		Name:    card.User.Name,
		Period:  fmt.Sprintf("%s to %s", r.Period.From.Format(timestampLayout), r.Period.To.Format(timestampLayout)),
		Overall: card.Evaluation.Overall.String(),
	}
	view.Activity = printer.Sprintf("Today: %.0f / %.0f steps, %.0f / %.0f kcal, %.1f / %.1f km (%.0f%% of goals)",
		activity.Steps, goals.Steps, activity.Calories, goals.Calories, activity.Distance, goals.Distance, card.Evaluation.Achievement)
	for _, metric := range health.Metrics {
		view.Metrics = append(view.Metrics, metricRow{
			Metric:     string(metric),
			Status:     card.Evaluation.Statuses[metric].String(),
			Thresholds: DescribeThresholds(card.Profile.Thresholds, metric),
		})
	}
	for _, c := range []renderer{vitalsChart(r), activityChart(r), sleepChart(r)} {
		html, err := renderChart(c)
		view.Charts = append(view.Charts, templ.Raw(html, err))
	}
	return view
}

func renderChart(c renderer) (string, error) {
	buf := &bytes.Buffer{}
	if err := c.Render(buf); err != nil {
		return "", fmt.Errorf("unable to render chart: %w", err)
	}
	return buf.String(), nil
}

func vitalsChart(r *HealthReport) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: chartTheme}),
		charts.WithTitleOpts(opts.Title{Title: "Vitals"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "bottom"}),
	)

	xAxis := make([]string, 0, len(r.Readings))
	heartRate := make([]opts.LineData, 0, len(r.Readings))
	oxygen := make([]opts.LineData, 0, len(r.Readings))
	for _, reading := range r.Readings {
		label := ""
		if reading.MeasuredAt != nil {
			label = reading.MeasuredAt.Format("01-02 15:04")
		}
		xAxis = append(xAxis, label)
		heartRate = append(heartRate, lineValue(reading.HeartRate))
		oxygen = append(oxygen, lineValue(reading.Oxygen))
	}

	line.SetXAxis(xAxis).
		AddSeries("Heart rate (bpm)", heartRate).
		AddSeries("Oxygen (%)", oxygen).
		SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return line
}

// activityChart shows the highest step count reported on each day.
func activityChart(r *HealthReport) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: chartTheme}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Steps",
			Subtitle: printer.Sprintf("Goal %.0f steps", r.Current.Profile.Goals.Steps),
		}),
	)

	steps := map[string]float64{}
	for _, reading := range r.Readings {
		if reading.MeasuredAt == nil {
			continue
		}
		day := reading.MeasuredAt.Format(fitlife.DateLayout)
		steps[day] = max(steps[day], reading.Activity.Steps)
	}

	days := make([]string, 0, len(steps))
	for day := range steps {
		days = append(days, day)
	}
	slices.Sort(days)

	data := make([]opts.BarData, 0, len(days))
	for _, day := range days {
		data = append(data, opts.BarData{Value: steps[day]})
	}

	bar.SetXAxis(days).AddSeries("Steps", data)
	return bar
}

func sleepChart(r *HealthReport) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: chartTheme}),
		charts.WithTitleOpts(opts.Title{Title: "Sleep"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Minutes"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "bottom"}),
	)

	days := make([]string, 0, len(r.Nights))
	stages := map[string][]opts.BarData{}
	order := []string{"Deep", "Light", "REM", "Awake"}
	for _, night := range r.Nights {
		days = append(days, night.Date.Format(fitlife.DateLayout))
		b := night.Breakdown
		for i, minutes := range []float64{b.Deep, b.Light, b.REM, b.Awake} {
			stages[order[i]] = append(stages[order[i]], opts.BarData{Value: minutes})
		}
	}

	bar.SetXAxis(days)
	for _, stage := range order {
		bar.AddSeries(stage, stages[stage]).
			SetSeriesOptions(charts.WithBarChartOpts(opts.BarChart{Stack: "sleep"}))
	}
	return bar
}

func lineValue(reading *float64) opts.LineData {
	if reading == nil {
		return opts.LineData{Value: "-"}
	}
	return opts.LineData{Value: *reading}
}

// ReportFilename names a downloaded report after the user and period.
func ReportFilename(r *HealthReport, extension string) string {
	return fmt.Sprintf("health-%s-%s-%s.%s", r.Current.User.IdHex(), r.Period.From.Format("20060102"), r.Period.To.Add(-time.Second).Format("20060102"), extension)
}
