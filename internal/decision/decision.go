// Package decision separates asking the user from acting on the answer.
//
// Components that would mutate the host describe the action in a [Request]
// and ask a [Gate]. Only the command layer implements Gate against the
// terminal; tests use [Scripted].
package decision

import (
	"context"
	"sync"
)

// Request describes one gated action.
type Request struct {
	// ID is a stable key such as "install.apt" used by scripted gates.
	ID string
	// Question is shown to the user.
	Question string
	// Detail is optional context printed before the question, such as the
	// commands that will run or a diff preview.
	Detail string
	// Default is the answer taken on an empty reply.
	Default bool
}

// Gate confirms gated actions. A false answer with a nil error means the
// user declined; an error means the conversation itself failed.
type Gate interface {
	Confirm(ctx context.Context, req Request) (bool, error)
}

// Asker reads free text.
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Prompter is the full console surface the setup flow needs.
type Prompter interface {
	Gate
	Asker
}

// GateFunc adapts a function to Gate.
type GateFunc func(ctx context.Context, req Request) (bool, error)

// Confirm calls f.
func (f GateFunc) Confirm(ctx context.Context, req Request) (bool, error) {
	return f(ctx, req)
}

// Scripted answers by request ID and records every request it saw.
// Unknown IDs get Fallback.
type Scripted struct {
	mu       sync.Mutex
	Answers  map[string]bool
	Fallback bool
	Replies  []string
	seen     []Request
	asked    []string
}

// Yes returns a Scripted gate that accepts everything.
func Yes() *Scripted { return &Scripted{Fallback: true} }

// No returns a Scripted gate that declines everything.
func No() *Scripted { return &Scripted{} }

// Confirm implements Gate.
func (s *Scripted) Confirm(_ context.Context, req Request) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, req)
	if ans, ok := s.Answers[req.ID]; ok {
		return ans, nil
	}
	return s.Fallback, nil
}

// Ask returns the next queued reply, or "q" once the queue is empty.
func (s *Scripted) Ask(_ context.Context, question string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.asked = append(s.asked, question)
	if len(s.Replies) == 0 {
		return "q", nil
	}
	r := s.Replies[0]
	s.Replies = s.Replies[1:]
	return r, nil
}

// Seen returns the IDs of every request confirmed so far.
func (s *Scripted) Seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, len(s.seen))
	for i, r := range s.seen {
		ids[i] = r.ID
	}
	return ids
}

// Requests returns every request confirmed so far.
func (s *Scripted) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.seen...)
}

var _ Prompter = (*Scripted)(nil)
