package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// TimestampFormat is RFC3339 with millisecond precision, always UTC.
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// NewTimestamp returns the current time formatted for the wire.
func NewTimestamp() string {
	return time.Now().UTC().Format(TimestampFormat)
}

// Composites is the scalar pair carried by every event.
type Composites struct {
	Hope   float64 `json:"hope"`
	Sorrow float64 `json:"sorrow"`
}

// Event is the immutable wire payload fanned out to subscribers. It is never
// mutated after construction.
type Event struct {
	Timestamp  string                 `json:"timestamp"`
	Composites Composites             `json:"composites"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// ValidationError describes why a payload was rejected, naming the offending
// field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// rawPulse mirrors the inbound JSON body. Pointer fields distinguish absent
// from zero; json.Number rejects non-numeric values with a field reason
// instead of a generic decode error.
type rawPulse struct {
	Composites *struct {
		Hope   *json.Number `json:"hope"`
		Sorrow *json.Number `json:"sorrow"`
	} `json:"composites"`
	Metadata  map[string]interface{} `json:"metadata"`
	Timestamp string                 `json:"timestamp"` // ignored, server stamps
}

// Validate parses and checks a raw payload. On success it returns a complete
// Event; on failure a *ValidationError. There is no partial or clamped
// result: an out-of-range value rejects the whole payload.
func Validate(raw []byte) (*Event, error) {
	var p rawPulse
	if err := json.Unmarshal(raw, &p); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			reason := "has the wrong type"
			if strings.HasPrefix(typeErr.Field, "composites.") {
				reason = "must be numeric"
			}
			return nil, &ValidationError{Field: typeErr.Field, Reason: reason}
		}
		return nil, &ValidationError{Field: "body", Reason: "is not valid JSON"}
	}

	if p.Composites == nil {
		return nil, &ValidationError{Field: "composites", Reason: "is required"}
	}

	hope, err := compositeValue("composites.hope", p.Composites.Hope)
	if err != nil {
		return nil, err
	}
	sorrow, err := compositeValue("composites.sorrow", p.Composites.Sorrow)
	if err != nil {
		return nil, err
	}

	return &Event{
		Timestamp:  NewTimestamp(),
		Composites: Composites{Hope: hope, Sorrow: sorrow},
		Metadata:   p.Metadata,
	}, nil
}

// compositeValue checks presence, numeric shape and the [0.0, 1.0] range.
func compositeValue(field string, n *json.Number) (float64, error) {
	if n == nil {
		return 0, &ValidationError{Field: field, Reason: "is required"}
	}
	v, err := n.Float64()
	if err != nil {
		return 0, &ValidationError{Field: field, Reason: "must be numeric"}
	}
	if v < 0.0 || v > 1.0 {
		return 0, &ValidationError{
			Field:  field,
			Reason: fmt.Sprintf("must be within [0.0, 1.0], got %v", n.String()),
		}
	}
	return v, nil
}
