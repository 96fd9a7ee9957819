package tool

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	planpalErrors "github.com/harunnryd/planpal/internal/errors"
)

// Field is one argument of a tool. At most one field per schema may be Free,
// meaning it can itself contain the comma delimiter of the positional form.
type Field struct {
	Name        string
	Description string
	Required    bool
	Free        bool
}

// Schema lists the ordered arguments of a tool. Format is the positional
// form shown to the model, e.g. "Summary, Start Time, End Time".
type Schema struct {
	Format string
	Fields []Field
}

// Args holds parsed argument values by field name.
type Args map[string]string

func (a Args) Get(name string) string {
	return a[name]
}

// Parameters renders the schema as a JSON schema object for function calling.
func (s Schema) Parameters() map[string]interface{} {
	properties := make(map[string]interface{}, len(s.Fields))
	required := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		properties[f.Name] = map[string]interface{}{
			"type":        "string",
			"description": f.Description,
		}
		if f.Required {
			required = append(required, f.Name)
		}
	}

	params := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		params["required"] = required
	}
	return params
}

// Parse accepts a JSON object with named fields, a JSON object with a single
// "input" string in positional form, or a bare JSON string in positional form.
// Unparseable JSON is reported as invalid model output; a wrong shape is
// reported as invalid input naming the expected format.
func (s Schema) Parse(raw json.RawMessage) (Args, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return s.fromPositional("")
	}

	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return nil, planpalErrors.InvalidModelOutput(fmt.Sprintf("arguments are not valid JSON: %v", err))
		}
		return s.fromPositional(text)
	case '{':
		var obj map[string]interface{}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, planpalErrors.InvalidModelOutput(fmt.Sprintf("arguments are not valid JSON: %v", err))
		}
		return s.fromObject(obj)
	}

	if !json.Valid(trimmed) {
		return nil, planpalErrors.InvalidModelOutput("arguments are not valid JSON")
	}
	return nil, s.formatError()
}

func (s Schema) fromObject(obj map[string]interface{}) (Args, error) {
	named := false
	for _, f := range s.Fields {
		if _, ok := obj[f.Name]; ok {
			named = true
			break
		}
	}
	if !named {
		if input, ok := obj["input"]; ok {
			text, isString := input.(string)
			if !isString {
				return nil, s.formatError()
			}
			return s.fromPositional(text)
		}
	}

	args := make(Args, len(s.Fields))
	for _, f := range s.Fields {
		value, ok := obj[f.Name]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case string:
			args[f.Name] = cleanValue(v)
		case float64, bool:
			args[f.Name] = fmt.Sprint(v)
		default:
			return nil, s.formatError()
		}
	}
	return args, s.checkRequired(args)
}

func (s Schema) fromPositional(text string) (Args, error) {
	args := make(Args, len(s.Fields))
	n := len(s.Fields)
	text = strings.TrimSpace(text)

	switch {
	case n == 0:
		return args, nil
	case n == 1:
		if v := cleanValue(text); v != "" {
			args[s.Fields[0].Name] = v
		}
		return args, s.checkRequired(args)
	case text == "":
		return args, s.checkRequired(args)
	}

	parts := strings.Split(text, ",")
	if len(parts) == n+1 {
		merged, ok := s.mergeFree(parts)
		if !ok {
			return nil, s.formatError()
		}
		parts = merged
	}
	if len(parts) != n {
		return nil, s.formatError()
	}

	for i, f := range s.Fields {
		if v := cleanValue(parts[i]); v != "" {
			args[f.Name] = v
		}
	}
	return args, s.checkRequired(args)
}

// mergeFree folds one extra comma into the Free field.
func (s Schema) mergeFree(parts []string) ([]string, bool) {
	for i, f := range s.Fields {
		if !f.Free {
			continue
		}
		merged := make([]string, 0, len(s.Fields))
		merged = append(merged, parts[:i]...)
		merged = append(merged, parts[i]+","+parts[i+1])
		merged = append(merged, parts[i+2:]...)
		return merged, true
	}
	return nil, false
}

func (s Schema) checkRequired(args Args) error {
	for _, f := range s.Fields {
		if f.Required && args[f.Name] == "" {
			return s.formatError()
		}
	}
	return nil
}

func (s Schema) formatError() error {
	return planpalErrors.InvalidInput(fmt.Sprintf("Input must be in format '%s'", s.Format))
}

// cleanValue strips surrounding whitespace and quotes.
func cleanValue(v string) string {
	v = strings.TrimSpace(v)
	v = strings.Trim(v, `"'`)
	return strings.TrimSpace(v)
}
