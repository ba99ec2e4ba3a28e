package query

import (
	"context"
	"errors"
	"sync"

	"pythia-cli/internal/api"
	"pythia-cli/internal/model"
	"pythia-cli/internal/session"
)

// ErrBusy means a prior ask has not settled yet. The UI disables the submit
// control while asking, so hitting this means a caller bug; it is still
// rejected rather than racing two asks against shared state.
var ErrBusy = errors.New("a question is already being asked")

// SessionSource is the credential boundary: always a fresh fetch, never a
// cached token.
type SessionSource interface {
	GetSession(ctx context.Context) (model.Session, error)
}

// Asker is the interpretation boundary.
type Asker interface {
	Ask(ctx context.Context, sess model.Session, req model.QueryRequest) (string, error)
}

// Outcome is how one settled ask is published. Exactly one of Answer, Err
// or Redirect is meaningful. Redirect means the session is gone: route the
// user to sign-in instead of showing an inline error.
type Outcome struct {
	Answer   string
	Err      error
	Redirect bool
}

// Orchestrator sequences credential retrieval, the request, and error
// mapping for the ask flow: Idle -> Submitting -> settled -> Idle, always
// returning to Idle so the flow is repeatable.
type Orchestrator struct {
	Sessions SessionSource
	Backend  Asker

	mu         sync.Mutex
	submitting bool
}

func NewOrchestrator(sessions SessionSource, backend Asker) *Orchestrator {
	return &Orchestrator{Sessions: sessions, Backend: backend}
}

// Submitting reports whether an ask is in flight.
func (o *Orchestrator) Submitting() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.submitting
}

// Ask runs one submission to completion. req comes from Compose; its UserID
// is overwritten with the freshly-fetched session's user.
func (o *Orchestrator) Ask(ctx context.Context, req model.QueryRequest) Outcome {
	if !o.begin() {
		return Outcome{Err: ErrBusy}
	}
	defer o.settle()

	sess, err := o.Sessions.GetSession(ctx)
	if err != nil {
		if errors.Is(err, session.ErrUnauthenticated) {
			return Outcome{Redirect: true}
		}
		return Outcome{Err: err}
	}
	req.UserID = sess.UserID

	answer, err := o.Backend.Ask(ctx, sess, req)
	if err != nil {
		if errors.Is(err, session.ErrUnauthenticated) {
			return Outcome{Redirect: true}
		}
		var se *api.StatusError
		if errors.As(err, &se) {
			return Outcome{Err: se}
		}
		return Outcome{Err: err}
	}
	return Outcome{Answer: answer}
}

// WithSession runs a store mutation (save/update/delete) with a fresh
// session. These flows share the acquire-token-then-request shape but
// publish to their own message channel and never touch the ask state.
func (o *Orchestrator) WithSession(ctx context.Context, fn func(model.Session) error) Outcome {
	sess, err := o.Sessions.GetSession(ctx)
	if err != nil {
		if errors.Is(err, session.ErrUnauthenticated) {
			return Outcome{Redirect: true}
		}
		return Outcome{Err: err}
	}
	if err := fn(sess); err != nil {
		if errors.Is(err, session.ErrUnauthenticated) {
			return Outcome{Redirect: true}
		}
		return Outcome{Err: err}
	}
	return Outcome{}
}

func (o *Orchestrator) begin() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.submitting {
		return false
	}
	o.submitting = true
	return true
}

func (o *Orchestrator) settle() {
	o.mu.Lock()
	o.submitting = false
	o.mu.Unlock()
}
