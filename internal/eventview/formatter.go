// Package eventview renders calendar events for the command line.
package eventview

import (
	"fmt"
	"strings"
	"time"

	"github.com/harunnryd/planpal/internal/calendar"
)

type OutputFormat string

const (
	OutputFormatTable OutputFormat = "table"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatYAML  OutputFormat = "yaml"
	OutputFormatICS   OutputFormat = "ics"
)

type EventFormatter interface {
	FormatEvents([]calendar.Event) (string, error)
}

// Record is the serialised shape of an event. Times are RFC3339 in the
// formatter's location.
type Record struct {
	ID      string `json:"id" yaml:"id"`
	Summary string `json:"summary" yaml:"summary"`
	Start   string `json:"start" yaml:"start"`
	End     string `json:"end" yaml:"end"`
	AllDay  bool   `json:"all_day,omitempty" yaml:"all_day,omitempty"`
	Link    string `json:"link,omitempty" yaml:"link,omitempty"`
}

func toRecords(events []calendar.Event, loc *time.Location) []Record {
	records := make([]Record, 0, len(events))
	for _, e := range events {
		records = append(records, Record{
			ID:      e.ID,
			Summary: e.Summary,
			Start:   e.Start.In(loc).Format(time.RFC3339),
			End:     e.End.In(loc).Format(time.RFC3339),
			AllDay:  e.AllDay,
			Link:    e.Link,
		})
	}
	return records
}

type FormatterFactory struct {
	loc *time.Location
}

// NewFormatterFactory renders times in loc; nil means UTC.
func NewFormatterFactory(loc *time.Location) *FormatterFactory {
	if loc == nil {
		loc = time.UTC
	}
	return &FormatterFactory{loc: loc}
}

func (f *FormatterFactory) Create(format OutputFormat) (EventFormatter, error) {
	switch format {
	case OutputFormatTable:
		return NewTableFormatter(f.loc), nil
	case OutputFormatJSON:
		return NewJSONFormatter(f.loc), nil
	case OutputFormatYAML:
		return NewYAMLFormatter(f.loc), nil
	case OutputFormatICS:
		return NewICSFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: table, json, yaml, ics)", format)
	}
}

func ParseOutputFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	switch format {
	case OutputFormatTable, OutputFormatJSON, OutputFormatYAML, OutputFormatICS:
		return format, nil
	default:
		return "", fmt.Errorf("invalid output format: %s (supported: table, json, yaml, ics)", s)
	}
}
