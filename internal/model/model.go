package model

import "encoding/json"

// Event is a saved birth-data record. The server assigns the id and computes
// the chart attributes stored in Data; this client only inspects Data to
// back-fill the edit form and otherwise treats it as opaque JSON.
type Event struct {
	ID    int             `json:"event_id"`
	Label string          `json:"label"`
	Data  json.RawMessage `json:"event_data,omitempty"`
}

// ChartFields is the user-entered half of an event: the raw birth data sent
// to the chart-computation backend on create/update.
type ChartFields struct {
	Label    string `json:"label"`
	Year     int    `json:"year"`
	Month    int    `json:"month"`
	Day      int    `json:"day"`
	Time     string `json:"time"` // HH:MM, 24h; "12:00" when the time is unknown
	Location string `json:"location"`
}

// QueryRequest is the composed payload for one submission to the
// interpretation backend. Built fresh per ask; never persisted.
type QueryRequest struct {
	UserID              string         `json:"userId"`
	ChartData           string         `json:"chartData"`
	UserQuestion        string         `json:"userQuestion"`
	Progressed          bool           `json:"progressed"`
	ProgressedEventIDs  []int          `json:"progressedEventIds"`
	ProgressedTimezones map[int]string `json:"progressedTimezones"`
	TransitTimestamp    *string        `json:"transitTimestamp"`
}

// QueryResponse is the interpretation backend's reply envelope.
type QueryResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Session is the identity boundary's view of the signed-in user.
type Session struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}
