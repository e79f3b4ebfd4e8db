// Package funnel implements the scripted pre-interview intake flow. The
// question sequence is data-driven; five states carry bespoke behavior
// (name extraction, contact skip, employment branch, document capture,
// interview readiness).
package funnel

import (
	"fmt"
	"regexp"

	"github.com/inboxinfotech/chatbot/pkg/config"
	"github.com/inboxinfotech/chatbot/pkg/session"
)

// Question is one compiled funnel state.
type Question struct {
	State        session.FunnelState
	Prompt       string
	Pattern      *regexp.Regexp // nil accepts anything
	ErrorMessage string
	Field        string // profile field the answer fills, "" for none
	Next         session.FunnelState
	AllowSkip    bool
	SkipTo       session.FunnelState
	NextOn       map[string]session.FunnelState // classified answer -> state
	Capture      bool                           // document-capture gate
}

// Script is the ordered, validated question sequence.
type Script struct {
	ordered []Question
	index   map[session.FunnelState]int

	// lastField is the final state that writes a profile field; leaving it
	// triggers the partial-profile persist.
	lastField session.FunnelState
}

// NewScript compiles the configured question settings.
func NewScript(settings []config.QuestionSetting) (*Script, error) {
	s := &Script{index: make(map[session.FunnelState]int, len(settings))}
	for i, qs := range settings {
		q := Question{
			State:        session.FunnelState(qs.State),
			Prompt:       qs.Prompt,
			ErrorMessage: qs.ErrorMessage,
			Field:        qs.Field,
			Next:         session.FunnelState(qs.Next),
			AllowSkip:    qs.AllowSkip,
			SkipTo:       session.FunnelState(qs.SkipTo),
			Capture:      qs.Capture,
		}
		if qs.Pattern != "" {
			re, err := regexp.Compile(qs.Pattern)
			if err != nil {
				return nil, fmt.Errorf("question %q: bad pattern: %w", qs.State, err)
			}
			q.Pattern = re
		}
		if len(qs.NextOn) > 0 {
			q.NextOn = make(map[string]session.FunnelState, len(qs.NextOn))
			for answer, next := range qs.NextOn {
				q.NextOn[answer] = session.FunnelState(next)
			}
		}
		s.ordered = append(s.ordered, q)
		s.index[q.State] = i
		if q.Field != "" {
			s.lastField = q.State
		}
	}
	if len(s.ordered) == 0 {
		return nil, fmt.Errorf("funnel script is empty")
	}
	return s, nil
}

// First returns the entry question.
func (s *Script) First() Question { return s.ordered[0] }

// Get looks a question up by state id.
func (s *Script) Get(state session.FunnelState) (Question, bool) {
	i, ok := s.index[state]
	if !ok {
		return Question{}, false
	}
	return s.ordered[i], true
}

// Prev returns the question immediately preceding the given state in script
// order. ok is false at the first question.
func (s *Script) Prev(state session.FunnelState) (Question, bool) {
	i, ok := s.index[state]
	if !ok || i == 0 {
		return Question{}, false
	}
	return s.ordered[i-1], true
}

// Len reports the number of questions in the script.
func (s *Script) Len() int { return len(s.ordered) }
