package eventview

import (
	"encoding/json"
	"time"

	"github.com/harunnryd/planpal/internal/calendar"
)

type JSONFormatter struct {
	loc *time.Location
}

func NewJSONFormatter(loc *time.Location) *JSONFormatter {
	return &JSONFormatter{loc: loc}
}

func (f *JSONFormatter) FormatEvents(events []calendar.Event) (string, error) {
	data, err := json.MarshalIndent(toRecords(events, f.loc), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
