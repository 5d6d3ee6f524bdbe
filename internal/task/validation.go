package task

import (
	"strconv"
	"strings"
	"time"
)

// Required fields in the order their messages are reported.
var requiredFields = []string{"criticality", "target", "recordTime", "description", "state"}

// dateOnly is accepted for recordTime alongside RFC 3339.
const dateOnly = "2006-01-02"

// Validate checks that every required field is present and non-empty and
// returns the problems in field order. An empty result means valid.
//
// Messages are "Missing <field>" for absent, null or blank values,
// "Invalid <field>" for objects and arrays, and "Invalid recordTime" for a
// timestamp that does not parse.
func Validate(input map[string]any) []string {
	_, messages := parse(input)
	return messages
}

// Parse validates input and, when valid, returns the Task holding exactly
// the five domain fields, trimmed, with recordTime normalised to RFC 3339
// UTC. Any id or extra field in input is ignored.
func Parse(input map[string]any) (Task, error) {
	t, messages := parse(input)
	if len(messages) > 0 {
		return Task{}, &ValidationError{Messages: messages}
	}
	return t, nil
}

func parse(input map[string]any) (Task, []string) {
	messages := []string{}
	values := make(map[string]string, len(requiredFields))

	for _, field := range requiredFields {
		value, ok := scalarString(input[field])
		switch {
		case !ok:
			messages = append(messages, "Invalid "+field)
		case value == "":
			messages = append(messages, "Missing "+field)
		case field == "recordTime":
			normalised, err := normaliseRecordTime(value)
			if err != nil {
				messages = append(messages, "Invalid recordTime")
				continue
			}
			values[field] = normalised
		default:
			values[field] = value
		}
	}

	if len(messages) > 0 {
		return Task{}, messages
	}

	return Task{
		Criticality: values["criticality"],
		Target:      values["target"],
		RecordTime:  values["recordTime"],
		Description: values["description"],
		State:       values["state"],
	}, messages
}

// scalarString renders a decoded JSON scalar as trimmed text. Absent and
// null values become "". Objects and arrays report ok=false.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return strings.TrimSpace(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

func normaliseRecordTime(raw string) (string, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		t, err = time.Parse(dateOnly, raw)
		if err != nil {
			return "", err
		}
	}
	return t.UTC().Format(time.RFC3339Nano), nil
}
