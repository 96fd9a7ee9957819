package eventview

import (
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harunnryd/planpal/internal/calendar"
)

type YAMLFormatter struct {
	loc *time.Location
}

func NewYAMLFormatter(loc *time.Location) *YAMLFormatter {
	return &YAMLFormatter{loc: loc}
}

func (f *YAMLFormatter) FormatEvents(events []calendar.Event) (string, error) {
	data, err := yaml.Marshal(toRecords(events, f.loc))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
