// Package verify implements the identity-document pipeline: a fixed
// sequence of hard gates, each short-circuiting with a distinct reason
// code.
package verify

import "time"

// Reason codes returned to the caller on rejection.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonTooLarge          Reason = "too_large"
	ReasonUnsupportedFormat Reason = "unsupported_format"
	ReasonUnreadableImage   Reason = "unreadable_image"
	ReasonBlurry            Reason = "blurry"
	ReasonNoFace            Reason = "no_face"
	ReasonNoText            Reason = "no_text"
	ReasonUnknownType       Reason = "unknown_document_type"
	ReasonNoName            Reason = "no_name_found"
	ReasonNameMismatch      Reason = "name_mismatch"
)

// Message returns the candidate-facing explanation for a rejection.
func (r Reason) Message() string {
	switch r {
	case ReasonTooLarge:
		return "The file is too large. Please upload an image under 10 MB."
	case ReasonUnsupportedFormat:
		return "Unsupported file type. Please upload a JPG, PNG or PDF."
	case ReasonUnreadableImage:
		return "I couldn't read that image. Please try another photo."
	case ReasonBlurry:
		return "The photo is too blurry. Please take a sharper picture in good light."
	case ReasonNoFace:
		return "I couldn't see a face on the document. Please upload the photo side of your ID."
	case ReasonNoText:
		return "I couldn't read any text on the document. Please upload a clearer photo."
	case ReasonUnknownType:
		return "I couldn't recognize the document type. Please upload a passport, driving licence, Aadhaar or PAN card."
	case ReasonNoName:
		return "I couldn't find a name on the document. Please upload a clearer photo."
	case ReasonNameMismatch:
		return "The name on the document doesn't match the name you gave me. Please upload your own ID."
	default:
		return ""
	}
}

// Verdict is the pipeline outcome.
type Verdict struct {
	Accepted     bool       `json:"accepted"`
	DocumentType string     `json:"documentType,omitempty"`
	Name         string     `json:"name,omitempty"`
	BirthDate    *time.Time `json:"birthDate,omitempty"` // best-effort
	Reason       Reason     `json:"reason,omitempty"`
}

func rejected(r Reason) Verdict { return Verdict{Reason: r} }
