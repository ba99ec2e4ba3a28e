package tui

import "pythia-cli/internal/query"

type focusArea int

const (
	focusEvents focusArea = iota
	focusManual
	focusQuestion
)

type modalKind int

const (
	modalNone modalKind = iota
	modalEventForm
	modalConfirmDelete
	modalTimezone
	modalTransit
)

type confirmModalFocus int

const (
	confirmFocusConfirm confirmModalFocus = iota
	confirmFocusCancel
)

// flash is one operation category's message channel. Each category (ask /
// save / update / delete / load) keeps its own so one flow's error never
// masks another's success.
type flash struct {
	text  string
	isErr bool
}

func okFlash(text string) flash  { return flash{text: text} }
func errFlash(text string) flash { return flash{text: text, isErr: true} }

type reloadTickMsg struct{}

type eventsLoadedMsg struct {
	out query.Outcome
}

type eventSavedMsg struct {
	label string
	out   query.Outcome
}

type eventUpdatedMsg struct {
	label string
	out   query.Outcome
}

type eventDeletedMsg struct {
	id  int
	out query.Outcome
}

type askDoneMsg struct {
	out query.Outcome
}
