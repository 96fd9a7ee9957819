package eventview

import (
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/harunnryd/planpal/internal/calendar"
)

// ICSFormatter writes an iCalendar feed that other calendar apps can import.
type ICSFormatter struct {
	now func() time.Time
}

func NewICSFormatter() *ICSFormatter {
	return &ICSFormatter{now: time.Now}
}

func (f *ICSFormatter) FormatEvents(events []calendar.Event) (string, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//PlanPal//Calendar Export//EN")

	stamp := f.now().UTC()
	for _, e := range events {
		ev := cal.AddEvent(e.ID)
		ev.SetDtStampTime(stamp)
		ev.SetSummary(titleOrDefault(e.Summary))
		if e.Description != "" {
			ev.SetDescription(e.Description)
		}
		if e.AllDay {
			ev.SetAllDayStartAt(e.Start)
			ev.SetAllDayEndAt(e.End)
		} else {
			ev.SetStartAt(e.Start)
			ev.SetEndAt(e.End)
		}
		if e.Link != "" {
			ev.SetURL(e.Link)
		}
	}

	return strings.TrimSpace(cal.Serialize()), nil
}

func titleOrDefault(summary string) string {
	if strings.TrimSpace(summary) == "" {
		return "No Title"
	}
	return summary
}
