// Package selection tracks which saved events are included in the next
// query, which of those also want a progressed chart, and per-event timezone
// overrides for progressions. Three independent keyed maps rather than
// nested objects, so deleting an event mid-session cannot leave aliases.
package selection

import "sort"

type State struct {
	checked    map[int]bool
	progressed map[int]bool
	tzOverride map[int]string
}

func New() *State {
	return &State{
		checked:    map[int]bool{},
		progressed: map[int]bool{},
		tzOverride: map[int]string{},
	}
}

// ToggleChecked flips inclusion for an event. Unchecking cascades: the event
// must never remain in the progressed set once unchecked.
func (s *State) ToggleChecked(eventID int) {
	if s.checked[eventID] {
		delete(s.checked, eventID)
		delete(s.progressed, eventID)
		return
	}
	s.checked[eventID] = true
}

// ToggleProgressed flips the progressed flag. The transition is rejected
// when the event is not checked; the UI hides the control in that case but
// the state layer still refuses it.
func (s *State) ToggleProgressed(eventID int) bool {
	if !s.checked[eventID] {
		return false
	}
	if s.progressed[eventID] {
		delete(s.progressed, eventID)
	} else {
		s.progressed[eventID] = true
	}
	return true
}

// SetTimezoneOverride sets or clears (empty value) the progression timezone
// for an event. Unconditional: the override is sparse and not validated
// against checked/progressed state.
func (s *State) SetTimezoneOverride(eventID int, tz string) {
	if tz == "" {
		delete(s.tzOverride, eventID)
		return
	}
	s.tzOverride[eventID] = tz
}

func (s *State) IsChecked(eventID int) bool    { return s.checked[eventID] }
func (s *State) IsProgressed(eventID int) bool { return s.progressed[eventID] }

func (s *State) TimezoneOverride(eventID int) (string, bool) {
	tz, ok := s.tzOverride[eventID]
	return tz, ok
}

func (s *State) CheckedCount() int { return len(s.checked) }

// ProgressedIDs returns the progressed set in ascending id order.
func (s *State) ProgressedIDs() []int {
	ids := make([]int, 0, len(s.progressed))
	for id := range s.progressed {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ProgressedTimezones returns the override map restricted to progressed ids.
func (s *State) ProgressedTimezones() map[int]string {
	out := map[int]string{}
	for id := range s.progressed {
		if tz, ok := s.tzOverride[id]; ok {
			out[id] = tz
		}
	}
	return out
}

// Remove drops every trace of an event (checked, progressed, override).
// Called when the event is deleted.
func (s *State) Remove(eventID int) {
	delete(s.checked, eventID)
	delete(s.progressed, eventID)
	delete(s.tzOverride, eventID)
}

// Prune removes state for ids not in keep. Called after a wholesale list
// refresh, which may have dropped events edited elsewhere.
func (s *State) Prune(keep map[int]bool) {
	for id := range s.checked {
		if !keep[id] {
			s.Remove(id)
		}
	}
	for id := range s.progressed {
		if !keep[id] {
			s.Remove(id)
		}
	}
	for id := range s.tzOverride {
		if !keep[id] {
			s.Remove(id)
		}
	}
}
