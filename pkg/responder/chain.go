// Package responder implements the fallback sequence of text-generation
// providers plus deterministic content extraction. Per request each provider
// gets exactly one attempt under its own timeout; there is no retry.
package responder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/inboxinfotech/chatbot/pkg/content"
	"github.com/inboxinfotech/chatbot/pkg/llm"
)

// Provider ids recorded on stored turns.
const (
	ProviderCustom = "custom" // deterministic extraction
	ProviderNone   = "none"   // all providers failed
)

// Apology returned for attempt-sensitive prompts when every provider fails.
// Job-related queries must surface an explicit failure rather than silently
// degraded content.
const Apology = "⚠️ We're having temporary trouble fetching that information. Please try again in a few minutes."

// errorMarker flags provider replies that are error strings rather than
// answers.
const errorMarker = "❌"

type Chain struct {
	primary   llm.ChatModel
	secondary llm.ChatModel

	primaryTimeout   time.Duration
	secondaryTimeout time.Duration

	provider    *content.Provider
	sections    *content.Sections
	jobKeywords []string

	log *zap.Logger
}

func NewChain(
	primary, secondary llm.ChatModel,
	primaryTimeout, secondaryTimeout time.Duration,
	provider *content.Provider,
	sections *content.Sections,
	jobKeywords []string,
	log *zap.Logger,
) *Chain {
	return &Chain{
		primary:          primary,
		secondary:        secondary,
		primaryTimeout:   primaryTimeout,
		secondaryTimeout: secondaryTimeout,
		provider:         provider,
		sections:         sections,
		jobKeywords:      jobKeywords,
		log:              log,
	}
}

// Resolve answers the prompt through the chain: primary under its timeout,
// then secondary under its own, then the deterministic fallback. The second
// result is the id of whichever provider produced the text.
func (c *Chain) Resolve(ctx context.Context, prompt string) (string, string) {
	system := llm.SystemPrompt(c.provider.Current().Text)

	if text, ok := c.tryProvider(ctx, c.primary, c.primaryTimeout, system, prompt); ok {
		return text, c.primary.Name()
	}
	if text, ok := c.tryProvider(ctx, c.secondary, c.secondaryTimeout, system, prompt); ok {
		return text, c.secondary.Name()
	}

	if c.isAttemptSensitive(prompt) {
		return Apology, ProviderNone
	}
	if text, ok := c.sections.ForPrompt(prompt); ok {
		return text, ProviderCustom
	}
	return Apology, ProviderNone
}

func (c *Chain) tryProvider(ctx context.Context, m llm.ChatModel, timeout time.Duration, system, prompt string) (string, bool) {
	if m == nil {
		return "", false
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := m.Ask(ctx, system, prompt)
	if err != nil {
		c.log.Warn("provider failed", zap.String("provider", m.Name()), zap.Error(err))
		return "", false
	}
	text = strings.TrimSpace(text)
	if text == "" || strings.HasPrefix(text, errorMarker) {
		c.log.Warn("provider returned unusable reply", zap.String("provider", m.Name()))
		return "", false
	}
	return text, true
}

func (c *Chain) isAttemptSensitive(prompt string) bool {
	p := strings.ToLower(prompt)
	for _, kw := range c.jobKeywords {
		if strings.Contains(p, kw) {
			return true
		}
	}
	return false
}

// YesNo runs an AI-backed yes/no classification through the chain. Used as
// a last resort after the cheap keyword heuristics in pkg/intent.
func (c *Chain) YesNo(ctx context.Context, question string) bool {
	reply, _ := c.Resolve(ctx, question+"\nAnswer only 'yes' or 'no'.")
	return strings.Contains(strings.ToLower(reply), "yes")
}

// JobOpenings asks the chain for the current job titles listed in the
// content blob.
func (c *Chain) JobOpenings(ctx context.Context) ([]string, string) {
	prompt := "List all current job openings at Inbox Infotech from the website. " +
		"Return only the job titles in a bullet or numbered list."
	reply, model := c.Resolve(ctx, prompt)
	if model == ProviderNone {
		return nil, model
	}
	return ParseList(reply, 0), model
}

// Questions asks the chain for n interview questions for the given role.
func (c *Chain) Questions(ctx context.Context, jobTitle string, n int) ([]string, string, error) {
	prompt := fmt.Sprintf(
		"Pick %d random technical interview questions for the role '%s' using only the website content provided. "+
			"Return only the questions in a plain numbered list without explanation.", n, jobTitle)
	reply, model := c.Resolve(ctx, prompt)
	questions := ParseList(reply, n)
	if model == ProviderNone || len(questions) == 0 {
		return nil, model, fmt.Errorf("no interview questions produced for %q", jobTitle)
	}
	return questions, model, nil
}
