// Package intent classifies inbound messages. Cheap keyword and regex
// heuristics run first; the AI chain is consulted only for ambiguous cases
// to bound latency and cost.
package intent

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// YesNoAsker is the AI-backed fallback classification, implemented by the
// responder chain.
type YesNoAsker interface {
	YesNo(ctx context.Context, question string) bool
}

type Classifier struct {
	jobKeywords     []string
	companyKeywords []string
	ai              YesNoAsker
}

func NewClassifier(jobKeywords, companyKeywords []string, ai YesNoAsker) *Classifier {
	return &Classifier{jobKeywords: jobKeywords, companyKeywords: companyKeywords, ai: ai}
}

var (
	reGreeting  = regexp.MustCompile(`(?i)^\s*(hi|hello|hey|good (morning|afternoon|evening))[\s!.,]*$`)
	reControl   = regexp.MustCompile(`(?i)\b(cancel|stop|restart|start over)\b`)
	reUpload    = regexp.MustCompile(`(?i)\b(upload|send|share|attach)\b.*\b(resume|cv)\b|\b(resume|cv)\b.*\b(upload|send|share|attach)\b`)
	reJobStrong = regexp.MustCompile(`(?i)\b(job|jobs|vacanc(y|ies)|opening|openings|hiring|apply|application)\b`)
	reJobWeak   = regexp.MustCompile(`(?i)\b(work|role|position|career|join|opportunit)`)
	reLocStrong = regexp.MustCompile(`(?i)\b(location|address|located|headquarter)`)
	reLocWeak   = regexp.MustCompile(`(?i)\b(where|office|visit|directions|reach)\b`)
	reYes       = regexp.MustCompile(`(?i)^\s*(yes|yeah|yep|yup|sure|ok(ay)?|of course|definitely|y)\b`)
	reNo        = regexp.MustCompile(`(?i)^\s*(no|nope|nah|not (now|yet|really)|n)\b`)
	reGoBack    = regexp.MustCompile(`(?i)^\s*(go back|back|previous( question)?)\s*$`)
	reRemaining = regexp.MustCompile(`(?i)(how (many|much).*(left|remaining|more))|\b(questions?|time) left\b|\bremaining\b|when .*(finish|done|over)`)
	reSubmit    = regexp.MustCompile(`(?i)\bsubmit\b`)
	reRetake    = regexp.MustCompile(`(?i)\b(retake|redo|try again|one more (try|attempt))\b`)
)

func (c *Classifier) IsGreeting(msg string) bool   { return reGreeting.MatchString(msg) }
func (c *Classifier) IsControl(msg string) bool    { return reControl.MatchString(msg) }
func (c *Classifier) IsResumeOffer(msg string) bool { return reUpload.MatchString(msg) }
func (c *Classifier) IsGoBack(msg string) bool     { return reGoBack.MatchString(msg) }
func (c *Classifier) IsRemaining(msg string) bool  { return reRemaining.MatchString(msg) }
func (c *Classifier) IsSubmit(msg string) bool     { return reSubmit.MatchString(msg) }
func (c *Classifier) IsRetake(msg string) bool     { return reRetake.MatchString(msg) }

func (c *Classifier) IsAffirmative(msg string) bool { return reYes.MatchString(msg) }
func (c *Classifier) IsNegative(msg string) bool    { return reNo.MatchString(msg) }

// IsSkip matches only an explicit, bare skip.
func (c *Classifier) IsSkip(msg string) bool {
	return strings.EqualFold(strings.TrimSpace(msg), "skip")
}

// IsJobIntent reports whether the message is about job openings or applying.
// Strong keywords decide immediately; weak signals defer to the AI chain.
func (c *Classifier) IsJobIntent(ctx context.Context, msg string) bool {
	if reJobStrong.MatchString(msg) || c.containsAny(msg, c.jobKeywords) {
		return true
	}
	if !reJobWeak.MatchString(msg) {
		return false
	}
	if c.ai == nil {
		return false
	}
	return c.ai.YesNo(ctx, fmt.Sprintf(
		"Is this message asking about job openings or applying for a job at Inbox Infotech?\nUser: %s", msg))
}

// IsLocationIntent reports whether the message asks for the company's
// location or address.
func (c *Classifier) IsLocationIntent(ctx context.Context, msg string) bool {
	if reLocStrong.MatchString(msg) {
		return true
	}
	if !reLocWeak.MatchString(msg) {
		return false
	}
	if c.ai == nil {
		return false
	}
	return c.ai.YesNo(ctx, fmt.Sprintf(
		"Is this message asking for the company's location or address?\nUser: %s", msg))
}

// IsCompanyRelated is the generic relatedness keyword heuristic.
func (c *Classifier) IsCompanyRelated(msg string) bool {
	return c.containsAny(msg, c.companyKeywords)
}

func (c *Classifier) containsAny(msg string, keywords []string) bool {
	m := strings.ToLower(msg)
	for _, kw := range keywords {
		if strings.Contains(m, kw) {
			return true
		}
	}
	return false
}
