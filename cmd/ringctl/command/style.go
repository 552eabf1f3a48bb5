package command

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/kimm528/ringfitmanager/health"
)

const dateLayout = "2006-01-02"

var (
	styleHeader  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleStatus  = map[health.Status]lipgloss.Style{
		health.StatusNoData:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		health.StatusNormal:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		health.StatusWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		health.StatusDanger:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	}
)

func renderStatus(status health.Status) string {
	label := fmt.Sprintf("[%-7s]", status.String())
	if s, ok := styleStatus[status]; ok {
		return s.Render(label)
	}
	return label
}

func orEmpty(s *string) string {
	if s == nil || *s == "" {
		return "(empty)"
	}
	return *s
}

// parseDate reads a calendar day in the local time zone. An empty value
// yields nil.
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return &t, nil
}
