// Package session defines the typed per-candidate conversation state kept
// in the transport session store, replacing the loosely-typed string-keyed
// bag the store offers natively.
package session

import (
	"time"

	"github.com/google/uuid"
)

// FunnelState identifies the active pre-interview question, by the state id
// from the question script. Empty means no funnel is active.
type FunnelState string

const FunnelNone FunnelState = ""

// Turn is one exchanged message pair, buffered until identity resolves.
type Turn struct {
	UserText string    `json:"user"`
	BotText  string    `json:"bot"`
	Provider string    `json:"provider"`
	At       time.Time `json:"at"`
}

// State is the whole per-candidate conversation state. One instance per
// browsing context; at most one concurrent handler mutates it.
type State struct {
	// CandidateID is the transport session id, copied in so repositories
	// can key records by it.
	CandidateID string `json:"candidateId,omitempty"`

	Funnel FunnelState `json:"funnel,omitempty"`

	// Profile fields collected by the funnel so far.
	Name             string `json:"name,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Email            string `json:"email,omitempty"`
	EmploymentStatus string `json:"employmentStatus,omitempty"`
	Experience       string `json:"experience,omitempty"`
	Reason           string `json:"reason,omitempty"`

	SelectedJob string `json:"selectedJob,omitempty"`
	// OfferedJobs is immutable once offered; selection matches against it
	// by 1-based index or case-insensitive substring.
	OfferedJobs []string `json:"offeredJobs,omitempty"`

	InterviewID *uuid.UUID `json:"interviewId,omitempty"`
	// FirstAttemptID remembers the first completed attempt while the
	// one-time retake is pending.
	FirstAttemptID *uuid.UUID `json:"firstAttemptId,omitempty"`
	// AwaitingSubmitChoice is the pending "which attempt to submit"
	// disposition.
	AwaitingSubmitChoice bool `json:"awaitingSubmitChoice,omitempty"`

	Buffered          []Turn `json:"buffered,omitempty"`
	TranscriptFlushed bool   `json:"transcriptFlushed,omitempty"`

	DocumentRetries int  `json:"documentRetries,omitempty"`
	WebcamConsent   bool `json:"webcamConsent,omitempty"`
}

// SetField writes a funnel answer into the matching profile field. Unknown
// field names are ignored; the script validator catches them upfront.
func (s *State) SetField(field, value string) {
	switch field {
	case "name":
		s.Name = value
	case "phone":
		s.Phone = value
	case "email":
		s.Email = value
	case "employment_status":
		s.EmploymentStatus = value
	case "experience":
		s.Experience = value
	case "reason":
		s.Reason = value
	}
}

// ClearFunnel exits the funnel without touching collected fields.
func (s *State) ClearFunnel() {
	s.Funnel = FunnelNone
}

// ClearJob drops the selected job and the offered list.
func (s *State) ClearJob() {
	s.SelectedJob = ""
	s.OfferedJobs = nil
}

// Reset clears funnel, job and interview-adjacent fields. Used by the
// cancel/restart control command; buffered turns and collected profile
// fields survive so the transcript flush still works.
func (s *State) Reset() {
	s.ClearFunnel()
	s.ClearJob()
	s.InterviewID = nil
	s.FirstAttemptID = nil
	s.AwaitingSubmitChoice = false
	s.DocumentRetries = 0
}

// IdentityResolvable reports whether the buffered turns can be tied to a
// person: name plus phone or email.
func (s *State) IdentityResolvable() bool {
	return s.Name != "" && (s.Phone != "" || s.Email != "")
}
