package funnel

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/inboxinfotech/chatbot/pkg/intent"
	"github.com/inboxinfotech/chatbot/pkg/profile"
	"github.com/inboxinfotech/chatbot/pkg/session"
)

// Resolver answers company questions when the candidate interrupts the
// funnel; implemented by the responder chain.
type Resolver interface {
	Resolve(ctx context.Context, prompt string) (string, string)
}

// CapChecker guards interview creation behind the per-identity attempt cap;
// implemented by the interview manager.
type CapChecker interface {
	CanStartInterview(ctx context.Context, key profile.IdentityKey) (bool, error)
}

// Events are the side effects the orchestrator must apply after a step.
type Events struct {
	// PersistProfile fires once, on leaving the last free-text question.
	PersistProfile bool
	// Cancelled: the candidate declined to continue; funnel cleared.
	Cancelled bool
	// FlushTranscript accompanies Cancelled when identity is known.
	FlushTranscript bool
	// ExitToJobs: backtracked out of the first question.
	ExitToJobs bool
	// CapExceeded: the attempt cap refused interview creation.
	CapExceeded bool
}

// Result of one funnel step.
type Result struct {
	Reply    string
	Provider string
	Events   Events
}

const (
	replyCancelled = "No problem — we'll stop here. Feel free to come back whenever you're ready. 👋"
	replyCap       = "You've already used the maximum number of interview attempts. Our team will review your existing responses and get back to you."
	replyStale     = "Sorry, something went wrong with your application. Let's start over — ask me about our openings whenever you're ready."
	replyExitJobs  = "Okay, back to job selection. Please reply with the job title or number you'd like to apply for."
	replyDone      = "Thank you! That's everything I needed."
)

type Engine struct {
	script  *Script
	intents *intent.Classifier
	chain   Resolver
	caps    CapChecker
	log     *zap.Logger
}

func NewEngine(script *Script, intents *intent.Classifier, chain Resolver, caps CapChecker, log *zap.Logger) *Engine {
	return &Engine{script: script, intents: intents, chain: chain, caps: caps, log: log}
}

// Script exposes the compiled question sequence.
func (e *Engine) Script() *Script { return e.script }

// Start enters the funnel and returns the first question's prompt.
func (e *Engine) Start(st *session.State) Result {
	first := e.script.First()
	st.Funnel = first.State
	return custom(first.Prompt)
}

// Step handles one candidate message while a funnel state is active. The
// state is mutated in place; events tell the orchestrator what to persist.
func (e *Engine) Step(ctx context.Context, st *session.State, msg string) Result {
	q, ok := e.script.Get(st.Funnel)
	if !ok {
		// Script changed under an in-flight session: reset to a safe
		// terminal state instead of failing silently.
		e.log.Error("stale funnel state, resetting",
			zap.String("state", string(st.Funnel)))
		st.ClearFunnel()
		return custom(replyStale)
	}

	if e.intents.IsGoBack(msg) {
		return e.back(st, q)
	}

	if q.Capture {
		// Ordinary text never advances the document gate; the capture
		// endpoint does.
		return custom(q.Prompt)
	}

	if q.AllowSkip && e.intents.IsSkip(msg) {
		return e.advance(st, q, q.SkipTo, false)
	}

	switch {
	case q.Field == "name":
		return e.stepName(ctx, st, q, msg)
	case len(q.NextOn) > 0:
		return e.stepBranch(ctx, st, q, msg)
	case e.isReadiness(q):
		return e.stepReadiness(ctx, st, q, msg)
	default:
		return e.stepPattern(ctx, st, q, msg)
	}
}

// stepName extracts a name through the ordered pattern list.
func (e *Engine) stepName(ctx context.Context, st *session.State, q Question, msg string) Result {
	name := extractName(msg)
	if name == "" || (q.Pattern != nil && !q.Pattern.MatchString(name)) {
		return e.interruptOrError(ctx, q, msg)
	}
	st.SetField(q.Field, name)
	return e.advance(st, q, q.Next, q.State == e.script.lastField)
}

// stepBranch classifies the reply as yes/no and follows the question's
// conditional next-state map.
func (e *Engine) stepBranch(ctx context.Context, st *session.State, q Question, msg string) Result {
	var answer, value string
	switch {
	case e.intents.IsAffirmative(msg):
		answer, value = "yes", "Employed"
	case e.intents.IsNegative(msg):
		answer, value = "no", "Unemployed"
	default:
		return e.interruptOrError(ctx, q, msg)
	}
	if q.Field != "" {
		st.SetField(q.Field, value)
	}
	next, ok := q.NextOn[answer]
	if !ok {
		next = q.Next
	}
	return e.advance(st, q, next, q.State == e.script.lastField)
}

// stepReadiness gates the transition into document capture behind the
// attempt cap.
func (e *Engine) stepReadiness(ctx context.Context, st *session.State, q Question, msg string) Result {
	switch {
	case e.intents.IsAffirmative(msg):
		key := profile.Profile{
			Name:  st.Name,
			Phone: st.Phone,
			Email: st.Email,
		}.Key()
		allowed, err := e.caps.CanStartInterview(ctx, key)
		if err != nil {
			e.log.Error("attempt cap check failed",
				zap.String("state", string(q.State)), zap.Error(err))
			return custom(q.ErrorMessage)
		}
		if !allowed {
			st.ClearFunnel()
			return Result{Reply: replyCap, Provider: "custom", Events: Events{CapExceeded: true}}
		}
		return e.advance(st, q, q.Next, false)
	case e.intents.IsNegative(msg):
		st.ClearFunnel()
		return Result{
			Reply:    replyCancelled,
			Provider: "custom",
			Events:   Events{Cancelled: true, FlushTranscript: st.IdentityResolvable()},
		}
	default:
		return custom(q.ErrorMessage)
	}
}

// stepPattern is the generic data-driven transition.
func (e *Engine) stepPattern(ctx context.Context, st *session.State, q Question, msg string) Result {
	answer := strings.TrimSpace(msg)
	if q.Pattern != nil && !q.Pattern.MatchString(answer) {
		return e.interruptOrError(ctx, q, msg)
	}
	if q.Field != "" {
		st.SetField(q.Field, answer)
	}
	return e.advance(st, q, q.Next, q.State == e.script.lastField)
}

// advance moves the cursor to next and emits its prompt. persist marks the
// partial-profile write on leaving the last free-text question.
func (e *Engine) advance(st *session.State, from Question, next session.FunnelState, persist bool) Result {
	ev := Events{PersistProfile: persist}
	if next == "" || next == "end" {
		st.ClearFunnel()
		return Result{Reply: replyDone, Provider: "custom", Events: ev}
	}
	nq, ok := e.script.Get(next)
	if !ok {
		e.log.Error("funnel transition to unknown state",
			zap.String("from", string(from.State)), zap.String("to", string(next)))
		st.ClearFunnel()
		return Result{Reply: replyStale, Provider: "custom", Events: ev}
	}
	st.Funnel = nq.State
	return Result{Reply: nq.Prompt, Provider: "custom", Events: ev}
}

// back moves to the immediately preceding question; from the first question
// it exits to job selection.
func (e *Engine) back(st *session.State, q Question) Result {
	prev, ok := e.script.Prev(q.State)
	if !ok {
		st.ClearFunnel()
		return Result{Reply: replyExitJobs, Provider: "custom", Events: Events{ExitToJobs: true}}
	}
	st.Funnel = prev.State
	return custom(prev.Prompt)
}

// interruptOrError answers a company-related interruption through the chain
// with the current prompt re-appended; otherwise re-emits the error message
// with the cursor unchanged.
func (e *Engine) interruptOrError(ctx context.Context, q Question, msg string) Result {
	if e.intents.IsCompanyRelated(msg) {
		reply, providerID := e.chain.Resolve(ctx, msg)
		return Result{Reply: reply + "\n\n" + q.Prompt, Provider: providerID}
	}
	return custom(q.ErrorMessage)
}

// isReadiness identifies the interview-readiness step: no field to fill and
// the default transition points at the document-capture gate.
func (e *Engine) isReadiness(q Question) bool {
	if q.Field != "" || q.Capture {
		return false
	}
	next, ok := e.script.Get(q.Next)
	return ok && next.Capture
}

func custom(reply string) Result {
	return Result{Reply: reply, Provider: "custom"}
}
