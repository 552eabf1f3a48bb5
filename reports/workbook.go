package reports

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tealeg/xlsx/v3"

	"github.com/kimm528/ringfitmanager/fitlife"
	"github.com/kimm528/ringfitmanager/health"
	"github.com/kimm528/ringfitmanager/pointer"
)

const (
	SheetSummary      = "Summary"
	SheetMeasurements = "Measurements"
	SheetSleep        = "Sleep"
	SheetUsers        = "Users"
	SheetDevices      = "Devices"
	SheetDuplicates   = "Duplicates"

	timestampLayout = "2006-01-02 15:04"
)

// WriteHealthWorkbook writes the report as an xlsx workbook with summary,
// measurements and sleep sheets.
func WriteHealthWorkbook(w io.Writer, r *HealthReport) error {
	file := xlsx.NewFile()

	summary, err := file.AddSheet(SheetSummary)
	if err != nil {
		return err
	}
	writeSummary(summary, r)

	measurements, err := file.AddSheet(SheetMeasurements)
	if err != nil {
		return err
	}
	addRow(measurements, "Measured at", "Heart rate", "Oxygen", "Stress", "Temperature", "Systolic", "Diastolic", "Steps", "Calories", "Distance", "Status")
	for _, reading := range r.Readings {
		row := measurements.AddRow()
		addTimeCell(row, reading.MeasuredAt)
		addReadingCell(row, reading.HeartRate)
		addReadingCell(row, reading.Oxygen)
		addReadingCell(row, reading.Stress)
		addReadingCell(row, reading.Temperature)
		if bp := reading.BloodPressure; bp != nil {
			row.AddCell().SetFloat(bp.Systolic)
			row.AddCell().SetFloat(bp.Diastolic)
		} else {
			row.AddCell()
			row.AddCell()
		}
		row.AddCell().SetFloat(reading.Activity.Steps)
		row.AddCell().SetFloat(reading.Activity.Calories)
		row.AddCell().SetFloat(reading.Activity.Distance)
		row.AddCell().SetString(reading.Evaluation.Overall.String())
	}

	sleep, err := file.AddSheet(SheetSleep)
	if err != nil {
		return err
	}
	addRow(sleep, "Date", "Total (min)", "Deep (min)", "Light (min)", "REM (min)", "Awake (min)", "Score", "Status")
	for _, night := range r.Nights {
		row := sleep.AddRow()
		row.AddCell().SetString(night.Date.Format(fitlife.DateLayout))
		row.AddCell().SetFloat(night.Breakdown.Total)
		row.AddCell().SetFloat(night.Breakdown.Deep)
		row.AddCell().SetFloat(night.Breakdown.Light)
		row.AddCell().SetFloat(night.Breakdown.REM)
		row.AddCell().SetFloat(night.Breakdown.Awake)
		if night.Score != nil {
			row.AddCell().SetInt(*night.Score)
		} else {
			row.AddCell()
		}
		row.AddCell().SetString(night.Status.String())
	}

	return file.Write(w)
}

func writeSummary(sheet *xlsx.Sheet, r *HealthReport) {
	card := r.Current
	device := ""
	if card.Device != nil {
		device = card.Device.Mac
	}
	sleepScore := ""
	if card.Evaluation.SleepScore != nil {
		sleepScore = fmt.Sprint(*card.Evaluation.SleepScore)
	}

	addRow(sheet, "Name", card.User.Name)
	addRow(sheet, "Room", pointer.ToString(card.User.Room))
	addRow(sheet, "Device", device)
	addRow(sheet, "Period", fmt.Sprintf("%s to %s", r.Period.From.Format(timestampLayout), r.Period.To.Format(timestampLayout)))
	addRow(sheet, "Generated", r.GeneratedTime.Format(timestampLayout))
	addRow(sheet, "Overall status", card.Evaluation.Overall.String())
	addRow(sheet, "Sleep score", sleepScore)
	row := sheet.AddRow()
	row.AddCell().SetString("Achievement (%)")
	row.AddCell().SetFloat(card.Evaluation.Achievement)

	sheet.AddRow()
	addRow(sheet, "Metric", "Status", "Thresholds")
	for _, metric := range health.Metrics {
		addRow(sheet, string(metric), card.Evaluation.Statuses[metric].String(), DescribeThresholds(card.Profile.Thresholds, metric))
	}

	sheet.AddRow()
	goals := card.Profile.Goals
	addRow(sheet, "Goal", "Target")
	addFloatRow(sheet, "Steps", goals.Steps)
	addFloatRow(sheet, "Calories (kcal)", goals.Calories)
	addFloatRow(sheet, "Distance (km)", goals.Distance)
}

// WriteRosterWorkbook writes the users, devices and possible duplicate
// users as an xlsx workbook.
func WriteRosterWorkbook(w io.Writer, a *RosterAudit) error {
	file := xlsx.NewFile()

	deviceByUser := map[string]string{}
	for _, d := range a.Devices {
		if d.UserId != nil {
			deviceByUser[*d.UserId] = d.Mac
		}
	}
	nameByUser := map[string]string{}
	for _, u := range a.Users {
		nameByUser[u.IdHex()] = u.Name
	}

	usersSheet, err := file.AddSheet(SheetUsers)
	if err != nil {
		return err
	}
	addRow(usersSheet, "Id", "Name", "Birth date", "Gender", "Room", "Phone", "Device", "Custom thresholds", "Custom goals")
	for _, u := range a.Users {
		addRow(usersSheet,
			u.IdHex(),
			u.Name,
			pointer.ToString(u.BirthDate),
			pointer.ToString(u.Gender),
			pointer.ToString(u.Room),
			pointer.ToString(u.Phone),
			deviceByUser[u.IdHex()],
			yesNo(u.Thresholds != nil),
			yesNo(u.Goals != nil),
		)
	}

	devicesSheet, err := file.AddSheet(SheetDevices)
	if err != nil {
		return err
	}
	addRow(devicesSheet, "Id", "Mac", "Model", "Name", "User", "Assigned at")
	for _, d := range a.Devices {
		row := devicesSheet.AddRow()
		row.AddCell().SetString(d.IdHex())
		row.AddCell().SetString(d.Mac)
		row.AddCell().SetString(d.Model)
		row.AddCell().SetString(d.Name)
		row.AddCell().SetString(nameByUser[pointer.ToString(d.UserId)])
		addTimeCell(row, d.AssignedTime)
	}

	duplicatesSheet, err := file.AddSheet(SheetDuplicates)
	if err != nil {
		return err
	}
	addRow(duplicatesSheet, "Cluster", "Id", "Name", "Birth date", "Phone", "Matches")
	for i, cluster := range a.Duplicates {
		for _, u := range cluster.Users {
			addRow(duplicatesSheet,
				fmt.Sprint(i+1),
				u.IdHex(),
				u.Name,
				pointer.ToString(u.BirthDate),
				pointer.ToString(u.Phone),
				strings.Join(cluster.Matches[u.IdHex()], ", "),
			)
		}
	}

	return file.Write(w)
}

// DescribeThresholds renders the cutoffs of a metric for people.
func DescribeThresholds(t health.Thresholds, metric health.Metric) string {
	describeRange := func(r health.Range) string {
		return fmt.Sprintf("warning <= %v or >= %v, danger <= %v or >= %v", r.WarningLow, r.WarningHigh, r.DangerLow, r.DangerHigh)
	}
	switch metric {
	case health.MetricHeartRate:
		return describeRange(t.HeartRate)
	case health.MetricOxygen:
		return fmt.Sprintf("warning < %v, danger < %v", t.Oxygen.Warning, t.Oxygen.Danger)
	case health.MetricTemperature:
		return fmt.Sprintf("warning > %v, danger > %v", t.Temperature.Warning, t.Temperature.Danger)
	case health.MetricBloodPressure:
		return fmt.Sprintf("systolic %s; diastolic %s", describeRange(t.Systolic), describeRange(t.Diastolic))
	case health.MetricSleepScore:
		return fmt.Sprintf("warning < %v, danger < %v", t.SleepScore.Warning, t.SleepScore.Danger)
	case health.MetricStress:
		return fmt.Sprintf("warning > %v, danger > %v", t.Stress.Warning, t.Stress.Danger)
	default:
		return ""
	}
}

func addRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

func addFloatRow(sheet *xlsx.Sheet, label string, value float64) {
	row := sheet.AddRow()
	row.AddCell().SetString(label)
	row.AddCell().SetFloat(value)
}

func addReadingCell(row *xlsx.Row, reading *float64) {
	cell := row.AddCell()
	if reading != nil {
		cell.SetFloat(*reading)
	}
}

func addTimeCell(row *xlsx.Row, t *time.Time) {
	cell := row.AddCell()
	if t != nil {
		cell.SetString(t.Format(timestampLayout))
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
