package session

import (
	"errors"
	"testing"

	"github.com/snooooofy/clawdbert/internal/domain"
)

func TestSendAppendsUserTurn(t *testing.T) {
	r := New()

	tok, err := r.Send("  hello there  ")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if tok == 0 {
		t.Error("Send() returned zero token")
	}

	tr := r.Transcript()
	if len(tr) != 1 {
		t.Fatalf("transcript length = %d, want 1", len(tr))
	}
	if tr[0].Role != domain.RoleUser || tr[0].Content != "hello there" || !tr[0].Finalized {
		t.Errorf("user turn = %+v, want finalized user turn with trimmed content", tr[0])
	}
	if !r.Sending() {
		t.Error("Sending() = false after Send")
	}
}

func TestSendRejectsEmptyInput(t *testing.T) {
	r := New()

	for _, input := range []string{"", "   ", "\n\t "} {
		if _, err := r.Send(input); !errors.Is(err, domain.ErrEmptyMessage) {
			t.Errorf("Send(%q) error = %v, want ErrEmptyMessage", input, err)
		}
	}
	if len(r.Transcript()) != 0 {
		t.Error("transcript changed by rejected sends")
	}
	if r.Sending() {
		t.Error("Sending() = true after rejected sends")
	}
}

func TestSendRejectsWhileInFlight(t *testing.T) {
	r := New()

	tok, err := r.Send("first")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	r.Fragment(tok, "partial")

	if _, err := r.Send("second"); !errors.Is(err, domain.ErrSendInProgress) {
		t.Fatalf("second Send() error = %v, want ErrSendInProgress", err)
	}

	// In-flight session unaffected.
	tr := r.Transcript()
	if len(tr) != 2 {
		t.Fatalf("transcript length = %d, want 2", len(tr))
	}
	if tr[1].Content != "partial" {
		t.Errorf("assistant content = %q, want %q", tr[1].Content, "partial")
	}
	r.Fragment(tok, " more")
	if got := r.Transcript()[1].Content; got != "partial more" {
		t.Errorf("assistant content after rejection = %q, want %q", got, "partial more")
	}
}

func TestFragmentsConcatenateInOrder(t *testing.T) {
	r := New()
	tok, _ := r.Send("question")

	for _, f := range []string{"Hel", "lo ", "world"} {
		r.Fragment(tok, f)
	}

	tr := r.Transcript()
	if len(tr) != 2 {
		t.Fatalf("transcript length = %d, want 2", len(tr))
	}
	if tr[1].Content != "Hello world" {
		t.Errorf("assistant content = %q, want %q", tr[1].Content, "Hello world")
	}
	if tr[1].Finalized {
		t.Error("assistant turn finalized before Complete")
	}
}

func TestNoAssistantBubbleBeforeFirstFragment(t *testing.T) {
	r := New()
	r.Send("question")

	if got := len(r.Transcript()); got != 1 {
		t.Errorf("transcript length = %d, want 1 (no empty assistant bubble)", got)
	}
}

func TestCompleteFinalizesAndReturnsPair(t *testing.T) {
	r := New()
	tok, _ := r.Send("question")
	r.Fragment(tok, "Hel")
	r.Fragment(tok, "lo ")
	r.Fragment(tok, "world")

	pair := r.Complete(tok)
	if len(pair) != 2 {
		t.Fatalf("Complete() returned %d turns, want 2", len(pair))
	}
	if pair[0].Role != domain.RoleUser || pair[0].Content != "question" {
		t.Errorf("pair[0] = %+v, want the user turn", pair[0])
	}
	if pair[1].Role != domain.RoleAssistant || pair[1].Content != "Hello world" || !pair[1].Finalized {
		t.Errorf("pair[1] = %+v, want finalized assistant turn", pair[1])
	}

	tr := r.Transcript()
	if !tr[len(tr)-1].Finalized {
		t.Error("last transcript turn not finalized after Complete")
	}
	if r.Sending() {
		t.Error("Sending() = true after Complete")
	}
}

func TestCompleteWithZeroFragments(t *testing.T) {
	r := New()
	tok, _ := r.Send("question")

	pair := r.Complete(tok)
	if len(pair) != 1 || pair[0].Role != domain.RoleUser {
		t.Errorf("Complete() = %+v, want only the user turn", pair)
	}

	tr := r.Transcript()
	if len(tr) != 1 || tr[0].Role != domain.RoleUser {
		t.Errorf("transcript = %+v, want only the user turn", tr)
	}
	if r.Sending() {
		t.Error("Sending() = true after Complete")
	}
}

func TestFailPreservesPartialContent(t *testing.T) {
	r := New()
	tok, _ := r.Send("question")
	r.Fragment(tok, "partial")

	reason := r.Fail(tok, errors.New("network error"))
	if reason == nil || reason.Error() != "network error" {
		t.Errorf("Fail() reason = %v, want %q", reason, "network error")
	}

	tr := r.Transcript()
	last := tr[len(tr)-1]
	if last.Role != domain.RoleAssistant || last.Content != "partial" {
		t.Errorf("last turn = %+v, want partial assistant turn", last)
	}
	if last.Finalized {
		t.Error("failed turn must stay non-finalized")
	}

	// Sending resets, so a retry succeeds.
	if _, err := r.Send("retry"); err != nil {
		t.Errorf("Send() after Fail error = %v", err)
	}
}

func TestStaleEventsAreIgnored(t *testing.T) {
	r := New()
	stale, _ := r.Send("first")
	r.Fragment(stale, "old ")
	r.Fail(stale, errors.New("abandoned"))

	tok, _ := r.Send("second")
	r.Fragment(tok, "fresh")

	// Late deliveries from the abandoned session must not corrupt the
	// newer transcript.
	r.Fragment(stale, "ghost")
	if got := r.Complete(stale); got != nil {
		t.Errorf("stale Complete() = %+v, want nil", got)
	}
	if reason := r.Fail(stale, errors.New("late")); reason != nil {
		t.Errorf("stale Fail() = %v, want nil", reason)
	}

	tr := r.Transcript()
	last := tr[len(tr)-1]
	if last.Content != "fresh" {
		t.Errorf("assistant content = %q, want %q", last.Content, "fresh")
	}
	if !r.Sending() {
		t.Error("active session closed by stale events")
	}
}

func TestSubscribersSeeEveryRepublish(t *testing.T) {
	r := New()
	var seen []domain.Transcript
	r.Subscribe(func(tr domain.Transcript) {
		seen = append(seen, tr)
	})

	tok, _ := r.Send("q")
	r.Fragment(tok, "a")
	r.Fragment(tok, "b")
	r.Complete(tok)

	// Send, two fragments, finalize.
	if len(seen) != 4 {
		t.Fatalf("subscriber called %d times, want 4", len(seen))
	}
	if got := seen[2][1].Content; got != "ab" {
		t.Errorf("second fragment snapshot content = %q, want %q", got, "ab")
	}

	// Snapshots are copies: mutating one must not leak into the reducer.
	seen[3][1].Content = "tampered"
	if got := r.Transcript()[1].Content; got != "ab" {
		t.Errorf("transcript content = %q after snapshot mutation, want %q", got, "ab")
	}
}

func TestLoadReplacesTranscript(t *testing.T) {
	r := New()
	err := r.Load([]domain.Turn{
		{Role: domain.RoleUser, Content: "old question"},
		{Role: domain.RoleAssistant, Content: "old answer"},
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tr := r.Transcript()
	if len(tr) != 2 {
		t.Fatalf("transcript length = %d, want 2", len(tr))
	}
	for i, turn := range tr {
		if !turn.Finalized {
			t.Errorf("loaded turn %d not finalized", i)
		}
	}

	tok, _ := r.Send("new question")
	r.Fragment(tok, "new answer")
	if got := len(r.Transcript()); got != 4 {
		t.Errorf("transcript length = %d after send, want 4", got)
	}
}

func TestLoadRejectedWhileSending(t *testing.T) {
	r := New()
	r.Send("question")

	err := r.Load(nil)
	if !errors.Is(err, domain.ErrSendInProgress) {
		t.Errorf("Load() error = %v, want ErrSendInProgress", err)
	}
}
