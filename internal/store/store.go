// Package store owns the in-memory collection of saved events and keeps it
// in sync with the backend. All mutations go through here; the UI only ever
// holds event ids.
package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"pythia-cli/internal/model"
)

// Backend is the slice of the API client the store needs.
type Backend interface {
	ListEvents(ctx context.Context, sess model.Session, userID string) ([]model.Event, error)
	CreateEvent(ctx context.Context, sess model.Session, fields model.ChartFields) (model.Event, error)
	UpdateEvent(ctx context.Context, sess model.Session, eventID int, fields model.ChartFields) (model.Event, error)
	DeleteEvent(ctx context.Context, sess model.Session, eventID int) error
}

// ValidationError is invalid user input. The operation is never attempted;
// the reason is surfaced inline next to the form.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Draft stages one event's fields for editing. At most one draft exists at a
// time; mutating the store clears a draft that references the mutated id so
// the UI can never submit against a stale event.
type Draft struct {
	EventID int
	Form    FormInput
}

type Store struct {
	backend Backend
	cache   *Cache

	// The UI serializes mutations by disabling controls while one is in
	// flight; the mutex covers the remaining read-while-fetching window.
	mu     sync.RWMutex
	events []model.Event
	draft  *Draft
}

// New builds a store. cache may be nil (scriptable commands skip it).
func New(backend Backend, cache *Cache) *Store {
	return &Store{backend: backend, cache: cache}
}

// Events returns the current collection in server order.
func (s *Store) Events() []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *Store) EventByID(id int) (model.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eventByIDLocked(id)
}

func (s *Store) eventByIDLocked(id int) (model.Event, bool) {
	for _, ev := range s.events {
		if ev.ID == id {
			return ev, true
		}
	}
	return model.Event{}, false
}

// IDSet returns the ids currently present, for pruning selection state after
// a refresh.
func (s *Store) IDSet() map[int]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make(map[int]bool, len(s.events))
	for _, ev := range s.events {
		ids[ev.ID] = true
	}
	return ids
}

// LoadCached seeds the collection from the local cache so the UI has
// something to show while the fresh fetch is in flight.
func (s *Store) LoadCached(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if events, err := s.cache.Load(ctx, userID); err == nil && len(events) > 0 {
		s.mu.Lock()
		s.events = events
		s.mu.Unlock()
	}
}

// Refresh replaces the collection wholesale from the backend. Selection
// state referencing ids no longer present must be pruned by the caller
// (see IDSet).
func (s *Store) Refresh(ctx context.Context, sess model.Session) error {
	events, err := s.backend.ListEvents(ctx, sess, sess.UserID)
	if err != nil {
		return fmt.Errorf("load saved events: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = events
	if s.draft != nil {
		if _, ok := s.eventByIDLocked(s.draft.EventID); !ok {
			s.draft = nil
		}
	}
	if s.cache != nil {
		// Cache write is best-effort; a broken cache must not fail the fetch.
		_ = s.cache.Save(ctx, sess.UserID, events)
	}
	return nil
}

// Create validates, submits to the chart-computation backend and appends the
// created event. On validation failure no network call is made and the form
// is left intact for correction.
func (s *Store) Create(ctx context.Context, sess model.Session, in FormInput) (model.Event, error) {
	fields, err := in.Normalize()
	if err != nil {
		return model.Event{}, err
	}
	ev, err := s.backend.CreateEvent(ctx, sess, fields)
	if err != nil {
		return model.Event{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	if s.cache != nil {
		_ = s.cache.Save(ctx, sess.UserID, s.events)
	}
	return ev, nil
}

// Update validates and replaces an existing event in place. Clears the draft
// for that id on success.
func (s *Store) Update(ctx context.Context, sess model.Session, eventID int, in FormInput) (model.Event, error) {
	fields, err := in.Normalize()
	if err != nil {
		return model.Event{}, err
	}
	ev, err := s.backend.UpdateEvent(ctx, sess, eventID, fields)
	if err != nil {
		return model.Event{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.events {
		if s.events[i].ID == eventID {
			s.events[i] = ev
			break
		}
	}
	if s.draft != nil && s.draft.EventID == eventID {
		s.draft = nil
	}
	if s.cache != nil {
		_ = s.cache.Save(ctx, sess.UserID, s.events)
	}
	return ev, nil
}

// Delete removes the event from the backend and the collection. The UI must
// confirm before calling; this is irreversible. The caller cascades the
// removal into its selection state.
func (s *Store) Delete(ctx context.Context, sess model.Session, eventID int) error {
	if err := s.backend.DeleteEvent(ctx, sess, eventID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.events[:0]
	for _, ev := range s.events {
		if ev.ID != eventID {
			kept = append(kept, ev)
		}
	}
	s.events = kept
	if s.draft != nil && s.draft.EventID == eventID {
		s.draft = nil
	}
	if s.cache != nil {
		_ = s.cache.Save(ctx, sess.UserID, s.events)
	}
	return nil
}

// SetDraft stages fields for editing one event, replacing any prior draft.
func (s *Store) SetDraft(d Draft) {
	s.mu.Lock()
	s.draft = &d
	s.mu.Unlock()
}

func (s *Store) Draft() (Draft, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.draft == nil {
		return Draft{}, false
	}
	return *s.draft, true
}

func (s *Store) ClearDraft() {
	s.mu.Lock()
	s.draft = nil
	s.mu.Unlock()
}

// FormInput is the raw add/edit form state before normalization: strings as
// typed, 12-hour clock plus AM/PM, and the unknown-time checkbox.
type FormInput struct {
	Label       string
	Year        string
	Month       string
	Day         string
	Hour        string // 1-12
	Minute      string // 0-59
	AMPM        string // "AM" or "PM"
	TimeUnknown bool
	Location    string
}

// Normalize validates the form and produces wire-ready fields. Hour is
// converted to a 24-hour clock; an unknown time substitutes midday.
func (in FormInput) Normalize() (model.ChartFields, error) {
	label := strings.TrimSpace(in.Label)
	location := strings.TrimSpace(in.Location)
	if label == "" || strings.TrimSpace(in.Year) == "" || strings.TrimSpace(in.Month) == "" ||
		strings.TrimSpace(in.Day) == "" || location == "" {
		return model.ChartFields{}, &ValidationError{Reason: "Please fill all required fields for the event."}
	}

	year, err := strconv.Atoi(strings.TrimSpace(in.Year))
	if err != nil {
		return model.ChartFields{}, &ValidationError{Reason: "Year must be a number."}
	}
	month, err := strconv.Atoi(strings.TrimSpace(in.Month))
	if err != nil || month < 1 || month > 12 {
		return model.ChartFields{}, &ValidationError{Reason: "Month must be between 1 and 12."}
	}
	day, err := strconv.Atoi(strings.TrimSpace(in.Day))
	if err != nil || day < 1 || day > 31 {
		return model.ChartFields{}, &ValidationError{Reason: "Day must be between 1 and 31."}
	}

	timeStr := "12:00"
	if !in.TimeUnknown {
		if strings.TrimSpace(in.Hour) == "" || strings.TrimSpace(in.Minute) == "" {
			return model.ChartFields{}, &ValidationError{Reason: "Please fill all required fields for the event."}
		}
		hour, err := strconv.Atoi(strings.TrimSpace(in.Hour))
		if err != nil || hour < 1 || hour > 12 {
			return model.ChartFields{}, &ValidationError{Reason: "Hour must be between 1 and 12."}
		}
		minute, err := strconv.Atoi(strings.TrimSpace(in.Minute))
		if err != nil || minute < 0 || minute > 59 {
			return model.ChartFields{}, &ValidationError{Reason: "Minute must be between 0 and 59."}
		}
		switch strings.ToUpper(strings.TrimSpace(in.AMPM)) {
		case "PM":
			if hour < 12 {
				hour += 12
			}
		case "", "AM":
			if hour == 12 {
				hour = 0
			}
		default:
			return model.ChartFields{}, &ValidationError{Reason: "AM/PM must be AM or PM."}
		}
		timeStr = fmt.Sprintf("%02d:%02d", hour, minute)
	}

	return model.ChartFields{
		Label:    label,
		Year:     year,
		Month:    month,
		Day:      day,
		Time:     timeStr,
		Location: location,
	}, nil
}
