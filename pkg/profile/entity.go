package profile

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Profile stores what the funnel collected about one candidate.
type Profile struct {
	ID               uuid.UUID  `json:"id"`
	CandidateID      string     `json:"candidateId"` // browsing-context session id
	Name             string     `json:"name"`
	Phone            string     `json:"phone,omitempty"`
	Email            string     `json:"email,omitempty"`
	EmploymentStatus string     `json:"employmentStatus,omitempty"`
	Experience       string     `json:"experience,omitempty"`
	Reason           string     `json:"reason,omitempty"`
	BirthDate        *time.Time `json:"birthDate,omitempty"` // derived from the ID document
	DocumentPath     string     `json:"documentPath,omitempty"`
	DocumentType     string     `json:"documentType,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// IdentityKey deduplicates a candidate across browsing sessions for
// attempt-capping. Fields left empty act as wildcards in the count query.
//
// The wildcard semantics can over-match (distinct candidates sharing no
// identifying fields collide) or under-match (a candidate supplying fresh
// contact details each time evades the cap). That is the documented,
// intentional matching policy; do not tighten it here.
type IdentityKey struct {
	Name      string
	Phone     string
	Email     string
	BirthDate *time.Time
}

// Key builds the identity key from the fields known so far.
func (p Profile) Key() IdentityKey {
	return IdentityKey{
		Name:      strings.TrimSpace(p.Name),
		Phone:     strings.TrimSpace(p.Phone),
		Email:     strings.TrimSpace(strings.ToLower(p.Email)),
		BirthDate: p.BirthDate,
	}
}

// Resolvable reports whether enough identity is known to tie stored turns
// to a person: a name plus at least one contact field.
func (k IdentityKey) Resolvable() bool {
	return k.Name != "" && (k.Phone != "" || k.Email != "")
}

var ErrNotFound = errors.New("profile not found")

// Repository is the persistence port for candidate profiles.
type Repository interface {
	Upsert(ctx context.Context, p Profile) error
	GetByCandidate(ctx context.Context, candidateID string) (Profile, error)
	// SetDocument records the verified ID document and the birthdate
	// derived from it.
	SetDocument(ctx context.Context, candidateID, path, docType string, birthDate *time.Time) error
}
