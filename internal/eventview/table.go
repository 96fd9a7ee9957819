package eventview

import (
	"time"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/harunnryd/planpal/internal/calendar"
)

const (
	dayLayout  = "Mon Jan 2"
	timeLayout = "03:04 PM"
)

type TableFormatter struct {
	loc          *time.Location
	headerStyle  lipgloss.Style
	oddRowStyle  lipgloss.Style
	evenRowStyle lipgloss.Style
	borderStyle  lipgloss.Style
}

func NewTableFormatter(loc *time.Location) *TableFormatter {
	purple := lipgloss.Color("99")
	gray := lipgloss.Color("245")
	lightGray := lipgloss.Color("241")

	return &TableFormatter{
		loc: loc,
		headerStyle: lipgloss.NewStyle().
			Foreground(purple).
			Bold(true).
			Align(lipgloss.Center).
			Padding(0, 1),
		oddRowStyle: lipgloss.NewStyle().
			Foreground(gray).
			Padding(0, 1),
		evenRowStyle: lipgloss.NewStyle().
			Foreground(lightGray).
			Padding(0, 1),
		borderStyle: lipgloss.NewStyle().
			Foreground(purple),
	}
}

func (f *TableFormatter) FormatEvents(events []calendar.Event) (string, error) {
	if len(events) == 0 {
		return "No upcoming events", nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(f.borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return f.headerStyle
			case row%2 == 0:
				return f.evenRowStyle
			default:
				return f.oddRowStyle
			}
		}).
		Headers("Day", "Time", "Title", "ID")

	for _, e := range events {
		start := e.Start.In(f.loc)
		span := "all day"
		if !e.AllDay {
			span = start.Format(timeLayout) + " - " + e.End.In(f.loc).Format(timeLayout)
		}
		t.Row(start.Format(dayLayout), span, truncateString(titleOrDefault(e.Summary), 40), e.ID)
	}

	return t.String(), nil
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
