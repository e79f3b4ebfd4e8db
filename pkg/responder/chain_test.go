package responder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/inboxinfotech/chatbot/pkg/content"
)

const testContent = `# ABOUT US
Inbox Infotech builds web and mobile products for clients worldwide.

# OUR SERVICES
- Web development with React and Node
- UI/UX design

# LOCATION
Our office is at 12 MG Road, Pune.
`

type stubModel struct {
	name  string
	reply string
	err   error
	delay time.Duration
	calls int
}

func (s *stubModel) Name() string { return s.name }

func (s *stubModel) Ask(ctx context.Context, _, _ string) (string, error) {
	s.calls++
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.reply, s.err
}

func newTestChain(primary, secondary *stubModel) *Chain {
	provider := content.NewProvider(testContent)
	sections := content.NewSections(provider, []content.Section{
		{Name: "about", Synonyms: []string{"about", "company"}},
		{Name: "services", Synonyms: []string{"service", "services"}},
		{Name: "location", Synonyms: []string{"location", "address"}},
	})
	return NewChain(primary, secondary,
		100*time.Millisecond, 100*time.Millisecond,
		provider, sections,
		[]string{"job", "opening", "vacancy", "apply"},
		zap.NewNop())
}

func TestChainPrimaryWins(t *testing.T) {
	primary := &stubModel{name: "gpt", reply: "We build software."}
	secondary := &stubModel{name: "gemini", reply: "unused"}
	c := newTestChain(primary, secondary)

	text, providerID := c.Resolve(context.Background(), "tell me about the company")
	assert.Equal(t, "We build software.", text)
	assert.Equal(t, "gpt", providerID)
	assert.Zero(t, secondary.calls)
}

func TestChainFallsBackToSecondary(t *testing.T) {
	primary := &stubModel{name: "gpt", err: errors.New("quota exceeded")}
	secondary := &stubModel{name: "gemini", reply: "We are an IT services company."}
	c := newTestChain(primary, secondary)

	text, providerID := c.Resolve(context.Background(), "tell me about the company")
	assert.Equal(t, "We are an IT services company.", text)
	assert.Equal(t, "gemini", providerID)
	assert.Equal(t, 1, primary.calls)
}

func TestChainSlowPrimaryTimesOut(t *testing.T) {
	primary := &stubModel{name: "gpt", reply: "too late", delay: time.Second}
	secondary := &stubModel{name: "gemini", reply: "On time."}
	c := newTestChain(primary, secondary)

	start := time.Now()
	text, providerID := c.Resolve(context.Background(), "tell me about the company")
	assert.Equal(t, "On time.", text)
	assert.Equal(t, "gemini", providerID)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestChainRejectsErrorMarkedReply(t *testing.T) {
	primary := &stubModel{name: "gpt", reply: "❌ upstream failure"}
	secondary := &stubModel{name: "gemini", reply: "Real answer."}
	c := newTestChain(primary, secondary)

	text, providerID := c.Resolve(context.Background(), "tell me about the company")
	assert.Equal(t, "Real answer.", text)
	assert.Equal(t, "gemini", providerID)
}

func TestChainJobPromptNeverFallsBackToExtraction(t *testing.T) {
	primary := &stubModel{name: "gpt", err: errors.New("down")}
	secondary := &stubModel{name: "gemini", err: errors.New("down")}
	c := newTestChain(primary, secondary)

	text, providerID := c.Resolve(context.Background(), "what job openings do you have?")
	assert.Equal(t, Apology, text)
	assert.Equal(t, ProviderNone, providerID)
}

func TestChainExtractionFallback(t *testing.T) {
	primary := &stubModel{name: "gpt", err: errors.New("down")}
	secondary := &stubModel{name: "gemini", err: errors.New("down")}
	c := newTestChain(primary, secondary)

	text, providerID := c.Resolve(context.Background(), "where is your office location?")
	assert.Equal(t, ProviderCustom, providerID)
	assert.Contains(t, text, "12 MG Road, Pune")
}

func TestChainApologyWhenNothingMatches(t *testing.T) {
	primary := &stubModel{name: "gpt", err: errors.New("down")}
	secondary := &stubModel{name: "gemini", err: errors.New("down")}
	c := newTestChain(primary, secondary)

	text, providerID := c.Resolve(context.Background(), "what is the meaning of life?")
	assert.Equal(t, Apology, text)
	assert.Equal(t, ProviderNone, providerID)
}

func TestParseList(t *testing.T) {
	reply := "Here are the openings:\n1. Go Developer\n2) React Developer\n- UI/UX Designer\n\nApply now!"
	items := ParseList(reply, 0)
	assert.Equal(t, []string{"Go Developer", "React Developer", "UI/UX Designer"}, items)

	assert.Len(t, ParseList(reply, 2), 2)
}
