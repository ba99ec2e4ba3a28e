// Package query turns selection state + stored events (or manually pasted
// chart text) into the request sent to the interpretation backend, and
// sequences the authenticated request lifecycle around it.
package query

import (
	"encoding/json"
	"strings"
	"time"

	"pythia-cli/internal/model"
	"pythia-cli/internal/selection"
)

// ValidationError is an unmet compose precondition with a user-facing
// reason. Nothing past this boundary ever panics or throws.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Source is what the chart payload is built from: either the checked saved
// events, or raw pasted text that replaces them entirely. The two are a sum
// type, not independent optional fields, so they cannot be merged by
// accident.
type Source interface {
	isSource()
}

// Selected builds the payload from the checked events in store order.
type Selected struct {
	Events    []model.Event
	Selection *selection.State
}

func (Selected) isSource() {}

// Manual substitutes pasted chart text verbatim for any saved events.
type Manual struct {
	Text string
}

func (Manual) isSource() {}

const blockSeparator = "\n\n---\n\n"

// malformedBlock stands in for one event whose stored chart data does not
// parse. One bad record must not abort the whole composition.
const malformedBlock = "{\n  \"error\": \"Malformed chart data\"\n}"

// Compose builds the QueryRequest for one submission. transit, when non-nil,
// is the caller-chosen instant for an attached transit chart. Composing the
// same inputs twice yields byte-identical payload content.
func Compose(userID string, src Source, question string, transit *time.Time) (model.QueryRequest, error) {
	if strings.TrimSpace(question) == "" {
		return model.QueryRequest{}, &ValidationError{Reason: "Please enter a question."}
	}

	req := model.QueryRequest{
		UserID:              userID,
		UserQuestion:        question,
		ProgressedEventIDs:  []int{},
		ProgressedTimezones: map[int]string{},
	}

	switch s := src.(type) {
	case Manual:
		if strings.TrimSpace(s.Text) == "" {
			return model.QueryRequest{}, &ValidationError{Reason: "Please paste chart data or select at least one event."}
		}
		req.ChartData = s.Text

	case Selected:
		if s.Selection == nil || s.Selection.CheckedCount() == 0 {
			return model.QueryRequest{}, &ValidationError{Reason: "Please select at least one event."}
		}
		blocks := make([]string, 0, s.Selection.CheckedCount())
		for _, ev := range s.Events {
			if !s.Selection.IsChecked(ev.ID) {
				continue
			}
			blocks = append(blocks, "Chart for "+ev.Label+":\n"+renderChartData(ev.Data))
		}
		if len(blocks) == 0 {
			// Checked ids referencing no known event (stale selection).
			return model.QueryRequest{}, &ValidationError{Reason: "Please select at least one event."}
		}
		req.ChartData = strings.Join(blocks, blockSeparator)
		req.ProgressedEventIDs = s.Selection.ProgressedIDs()
		req.ProgressedTimezones = s.Selection.ProgressedTimezones()
		req.Progressed = len(req.ProgressedEventIDs) > 0

	default:
		return model.QueryRequest{}, &ValidationError{Reason: "Please select at least one event."}
	}

	if transit != nil {
		ts := transit.UTC().Format(time.RFC3339)
		req.TransitTimestamp = &ts
	}
	return req, nil
}

// renderChartData serializes one event's stored chart record. Encoding/json
// sorts object keys, so the output is deterministic for identical input.
func renderChartData(raw json.RawMessage) string {
	if len(raw) == 0 {
		return malformedBlock
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return malformedBlock
	}
	// Stored records commonly arrive as a JSON string wrapping the chart
	// object; unwrap one level so the object itself gets pretty-printed.
	if s, ok := v.(string); ok {
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return malformedBlock
		}
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return malformedBlock
	}
	return string(b)
}
