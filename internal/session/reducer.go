// Package session holds the streaming chat transcript state machine.
//
// A Reducer owns one in-memory transcript and applies three kinds of
// events: Send opens a user/assistant turn pair, Fragment merges one
// incremental chunk of assistant text, and Complete/Fail close the
// in-flight exchange. Rendering is someone else's job: subscribers get
// a fresh copy of the transcript after every mutation.
package session

import (
	"strings"
	"sync"

	"github.com/snooooofy/clawdbert/internal/domain"
)

// Token identifies one in-flight send. Fragment, Complete and Fail events
// carrying a token that is no longer current are ignored, so a stream that
// keeps delivering after the user switched conversations cannot touch the
// newer transcript.
type Token uint64

// Subscriber receives a copy of the transcript after each change.
type Subscriber func(domain.Transcript)

// Reducer accumulates streamed assistant text into an ordered transcript.
// Methods are safe for concurrent use; event application itself is
// strictly sequential under the lock.
type Reducer struct {
	mu         sync.Mutex
	transcript domain.Transcript
	sending    bool
	current    Token
	acc        strings.Builder
	subs       []Subscriber
}

// New returns a Reducer over an empty transcript.
func New() *Reducer {
	return &Reducer{}
}

// Load replaces the transcript with previously persisted turns. All loaded
// turns are finalized. Rejected while a send is in flight.
func (r *Reducer) Load(turns []domain.Turn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sending {
		return domain.ErrSendInProgress
	}
	r.transcript = make(domain.Transcript, len(turns))
	for i, t := range turns {
		t.Finalized = true
		r.transcript[i] = t
	}
	r.publishLocked()
	return nil
}

// Subscribe registers a callback invoked with a transcript copy on every
// republish. Callbacks run synchronously while the event is applied and
// must not call back into the Reducer.
func (r *Reducer) Subscribe(fn Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, fn)
}

// Transcript returns a copy of the current transcript.
func (r *Reducer) Transcript() domain.Transcript {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transcript.Clone()
}

// Sending reports whether a send is in flight.
func (r *Reducer) Sending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sending
}

// Send appends a finalized user turn and opens a streaming session.
// The assistant turn is created lazily on the first fragment, so a session
// that never produces text never shows an empty assistant bubble.
//
// Returns domain.ErrEmptyMessage when text trims to nothing and
// domain.ErrSendInProgress when a session is already active; in both cases
// the transcript is untouched.
func (r *Reducer) Send(text string) (Token, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, domain.ErrEmptyMessage
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sending {
		return 0, domain.ErrSendInProgress
	}

	// A partial turn left behind by a failed session is sealed as-is the
	// moment the conversation moves on; it can never be mid-transcript and
	// mutable at the same time.
	if last := r.transcript.Last(); last != nil && !last.Finalized {
		last.Finalized = true
	}

	r.transcript = append(r.transcript, domain.Turn{
		Role:      domain.RoleUser,
		Content:   trimmed,
		Finalized: true,
	})
	r.sending = true
	r.current++
	r.acc.Reset()
	r.publishLocked()
	return r.current, nil
}

// Fragment merges one chunk of assistant text into the transcript. The
// last assistant turn is rebuilt from the full accumulator rather than
// appended to, matching the upstream source's delivery semantics: total
// content stays correct as long as the source delivers each fragment at
// most once. The reducer does not deduplicate.
func (r *Reducer) Fragment(tok Token, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.sending || tok != r.current {
		return
	}

	r.acc.WriteString(text)
	if last := r.transcript.Last(); last != nil && last.Role == domain.RoleAssistant && !last.Finalized {
		last.Content = r.acc.String()
	} else {
		r.transcript = append(r.transcript, domain.Turn{
			Role:    domain.RoleAssistant,
			Content: r.acc.String(),
		})
	}
	r.publishLocked()
}

// Complete finalizes the in-flight exchange and returns the finalized
// {user, assistant} pair for persistence handoff. A session that completed
// with zero fragments is a valid terminal state: no assistant turn exists,
// nothing is finalized, and the returned slice holds only the user turn.
// Stale tokens are ignored and return nil.
func (r *Reducer) Complete(tok Token) []domain.Turn {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.sending || tok != r.current {
		return nil
	}

	r.sending = false
	r.acc.Reset()

	last := r.transcript.Last()
	if last == nil || last.Role != domain.RoleAssistant || last.Finalized {
		// Zero fragments received: only the user turn to hand off.
		if last != nil && last.Role == domain.RoleUser {
			return []domain.Turn{*last}
		}
		return nil
	}

	last.Finalized = true
	r.publishLocked()

	pair := make([]domain.Turn, 0, 2)
	if len(r.transcript) >= 2 {
		if prev := r.transcript[len(r.transcript)-2]; prev.Role == domain.RoleUser {
			pair = append(pair, prev)
		}
	}
	pair = append(pair, *last)
	return pair
}

// Fail closes the session without finalizing. Partial assistant content
// stays in the transcript, visibly non-finalized, so the user keeps what
// already streamed in; a later Send starts a fresh session. Returns the
// reason for external reporting, or nil for stale tokens.
func (r *Reducer) Fail(tok Token, reason error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.sending || tok != r.current {
		return nil
	}

	r.sending = false
	r.acc.Reset()
	r.publishLocked()
	return reason
}

func (r *Reducer) publishLocked() {
	if len(r.subs) == 0 {
		return
	}
	snapshot := r.transcript.Clone()
	for _, fn := range r.subs {
		fn(snapshot)
	}
}
