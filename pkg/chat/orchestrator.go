// Package chat routes each candidate message through an ordered guard
// chain: control commands, uploads, greetings, the active interview, the
// pending submit choice, the active funnel, job selection, and finally the
// free-form intents. The first matching guard produces the reply.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/inboxinfotech/chatbot/pkg/funnel"
	"github.com/inboxinfotech/chatbot/pkg/intent"
	"github.com/inboxinfotech/chatbot/pkg/interview"
	"github.com/inboxinfotech/chatbot/pkg/profile"
	"github.com/inboxinfotech/chatbot/pkg/responder"
	"github.com/inboxinfotech/chatbot/pkg/session"
	"github.com/inboxinfotech/chatbot/pkg/verify"
)

// History persists exchanged turns and the one-time transcript flush.
type History interface {
	AppendTurn(ctx context.Context, candidateID string, t session.Turn) error
	AppendTranscript(ctx context.Context, candidateID string, turns []session.Turn) error
}

// Reply is the orchestrator's outcome for one message.
type Reply struct {
	Text           string `json:"text"`
	Provider       string `json:"provider"`
	StartInterview bool   `json:"startInterview,omitempty"`
}

const (
	replyWelcome = "👋 Hello! I'm the official chatbot of Inbox Infotech Pvt. Ltd. " +
		"Ask me about the company, our services, our location, or current job openings."
	replyControlAck = "🔄 Okay, starting over. Ask me about the company or our job openings whenever you're ready."
	replyResumeHint = "📎 Sure! Please use the resume upload button to send me your resume (PDF or DOCX)."
	replyNoJobs     = "❌ Sorry, no job openings found at the moment."
	replyJobNoMatch = "❌ I couldn't match your response to any job. Please reply with the number or exact title from the list."
	replyOffTopic   = "❌ I can only help with information related to Inbox Infotech Pvt. Ltd."
	replyDocLimit   = "You've reached the upload limit for identity documents. Our team will contact you directly."
)

// Orchestrator wires the guard chain over the funnel engine, the interview
// manager and the responder chain.
type Orchestrator struct {
	intents  *intent.Classifier
	chain    *responder.Chain
	engine   *funnel.Engine
	manager  *interview.Manager
	profiles profile.Repository
	history  History
	log      *zap.Logger
}

func NewOrchestrator(
	intents *intent.Classifier,
	chain *responder.Chain,
	engine *funnel.Engine,
	manager *interview.Manager,
	profiles profile.Repository,
	history History,
	log *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		intents:  intents,
		chain:    chain,
		engine:   engine,
		manager:  manager,
		profiles: profiles,
		history:  history,
		log:      log,
	}
}

// Handle routes one message. The session state is mutated in place; the
// caller persists it after a successful return.
func (o *Orchestrator) Handle(ctx context.Context, st *session.State, msg string) (Reply, error) {
	reply, err := o.route(ctx, st, msg)
	if err != nil {
		return Reply{}, err
	}
	o.record(ctx, st, msg, reply)
	return reply, nil
}

func (o *Orchestrator) route(ctx context.Context, st *session.State, msg string) (Reply, error) {
	msg = strings.TrimSpace(msg)

	// 1. Control commands reset everything, no matter what is active.
	if o.intents.IsControl(msg) {
		st.Reset()
		return custom(replyControlAck), nil
	}

	// 2. Resume offers get the upload instruction without touching state.
	if o.intents.IsResumeOffer(msg) {
		return custom(replyResumeHint), nil
	}

	// 3. Greetings abandon any in-flight funnel.
	if o.intents.IsGreeting(msg) {
		st.ClearFunnel()
		return custom(replyWelcome), nil
	}

	// 4. An in-progress interview consumes the message as an answer.
	if active, err := o.manager.Active(ctx, st.CandidateID); err != nil {
		return Reply{}, err
	} else if active != nil && active.StartedAt != nil {
		res, err := o.manager.Answer(ctx, st, active, msg)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: res.Reply, Provider: res.Provider}, nil
	}

	// 5. Pending retake/submit dispositions.
	if res, handled, err := o.manager.Disposition(ctx, st, msg); err != nil {
		return Reply{}, err
	} else if handled {
		st.ClearFunnel()
		return Reply{Text: res.Reply, Provider: res.Provider, StartInterview: res.StartInterview}, nil
	}

	// 6. Active funnel.
	if st.Funnel != session.FunnelNone {
		res := o.engine.Step(ctx, st, msg)
		if err := o.applyFunnelEvents(ctx, st, res.Events); err != nil {
			return Reply{}, err
		}
		return Reply{Text: res.Reply, Provider: res.Provider}, nil
	}

	// 7. A pending job list interprets the message as a selection.
	if len(st.OfferedJobs) > 0 {
		return o.selectJob(ctx, st, msg)
	}

	// 8-10. Free-form intents, cheapest heuristics first.
	if o.intents.IsJobIntent(ctx, msg) {
		return o.offerJobs(ctx, st)
	}
	if o.intents.IsLocationIntent(ctx, msg) {
		text, providerID := o.chain.Resolve(ctx, msg)
		return Reply{Text: text, Provider: providerID}, nil
	}
	if o.intents.IsCompanyRelated(msg) {
		st.ClearJob()
		st.ClearFunnel()
		text, providerID := o.chain.Resolve(ctx, msg)
		return Reply{Text: text, Provider: providerID}, nil
	}

	// 11. Everything else is out of scope.
	return custom(replyOffTopic), nil
}

// selectJob matches the reply against the offered list by 1-based index or
// case-insensitive substring. A match enters the funnel; anything else is
// answered through the chain with the selection re-prompt appended.
func (o *Orchestrator) selectJob(ctx context.Context, st *session.State, msg string) (Reply, error) {
	if job, ok := matchJob(st.OfferedJobs, msg); ok {
		st.SelectedJob = job
		st.OfferedJobs = nil
		res := o.engine.Start(st)
		return Reply{Text: fmt.Sprintf("Great choice! Let's get you set up for %s.\n%s", job, res.Reply), Provider: res.Provider}, nil
	}

	if o.intents.IsCompanyRelated(msg) {
		text, providerID := o.chain.Resolve(ctx, msg)
		return Reply{Text: text + "\n\n" + replyJobNoMatch, Provider: providerID}, nil
	}
	return custom(replyJobNoMatch), nil
}

func matchJob(offered []string, msg string) (string, bool) {
	t := strings.TrimSpace(msg)
	if n, err := strconv.Atoi(t); err == nil {
		if n >= 1 && n <= len(offered) {
			return offered[n-1], true
		}
		return "", false
	}
	lt := strings.ToLower(t)
	for _, job := range offered {
		lj := strings.ToLower(job)
		if strings.Contains(lj, lt) || strings.Contains(lt, lj) {
			return job, true
		}
	}
	return "", false
}

func (o *Orchestrator) offerJobs(ctx context.Context, st *session.State) (Reply, error) {
	jobs, providerID := o.chain.JobOpenings(ctx)
	if len(jobs) == 0 {
		if providerID == responder.ProviderNone {
			return Reply{Text: responder.Apology, Provider: providerID}, nil
		}
		return Reply{Text: replyNoJobs, Provider: providerID}, nil
	}

	st.OfferedJobs = jobs
	var b strings.Builder
	b.WriteString("💼 Here are our current openings:\n")
	for i, job := range jobs {
		fmt.Fprintf(&b, "%d. %s\n", i+1, job)
	}
	b.WriteString("\nReply with the number or title you'd like to apply for.")
	return Reply{Text: b.String(), Provider: providerID}, nil
}

func (o *Orchestrator) applyFunnelEvents(ctx context.Context, st *session.State, ev funnel.Events) error {
	if ev.PersistProfile {
		if err := o.profiles.Upsert(ctx, profileFromState(st)); err != nil {
			return fmt.Errorf("persist profile: %w", err)
		}
	}
	if ev.FlushTranscript {
		o.flushTranscript(ctx, st)
	}
	if ev.Cancelled || ev.ExitToJobs {
		st.ClearFunnel()
	}
	return nil
}

// profileFromState maps the funnel answers collected so far onto the
// profile row. Document fields are set separately once verification
// succeeds.
func profileFromState(st *session.State) profile.Profile {
	return profile.Profile{
		CandidateID:      st.CandidateID,
		Name:             st.Name,
		Phone:            st.Phone,
		Email:            st.Email,
		EmploymentStatus: st.EmploymentStatus,
		Experience:       st.Experience,
		Reason:           st.Reason,
	}
}

// record buffers the turn, appends it to the chat log and performs the
// one-time transcript flush once identity resolves. Persistence failures
// here are logged, not surfaced: the reply already exists and losing a log
// row must not break the conversation.
func (o *Orchestrator) record(ctx context.Context, st *session.State, msg string, r Reply) {
	turn := session.Turn{UserText: msg, BotText: r.Text, Provider: r.Provider, At: time.Now().UTC()}
	if !st.TranscriptFlushed {
		st.Buffered = append(st.Buffered, turn)
	}

	if err := o.history.AppendTurn(ctx, st.CandidateID, turn); err != nil {
		o.log.Warn("append turn failed", zap.Error(err))
	}

	if !st.TranscriptFlushed && st.IdentityResolvable() {
		o.flushTranscript(ctx, st)
	}
}

func (o *Orchestrator) flushTranscript(ctx context.Context, st *session.State) {
	if st.TranscriptFlushed || !st.IdentityResolvable() {
		return
	}
	if err := o.history.AppendTranscript(ctx, st.CandidateID, st.Buffered); err != nil {
		o.log.Warn("transcript flush failed", zap.Error(err))
		return
	}
	st.TranscriptFlushed = true
	st.Buffered = nil
}

// OnDocumentVerified finishes the funnel after an accepted upload: the
// document lands on the profile, the interview session is created with its
// first question, and the funnel clears.
func (o *Orchestrator) OnDocumentVerified(ctx context.Context, st *session.State, storedPath string, v verify.Verdict) (Reply, error) {
	if err := o.profiles.SetDocument(ctx, st.CandidateID, storedPath, v.DocumentType, v.BirthDate); err != nil {
		return Reply{}, fmt.Errorf("record document: %w", err)
	}

	key := profile.Profile{Name: st.Name, Phone: st.Phone, Email: st.Email, BirthDate: v.BirthDate}.Key()
	s, res, err := o.manager.Start(ctx, st.CandidateID, st.SelectedJob, key)
	if err != nil {
		if errors.Is(err, interview.ErrAttemptLimit) {
			st.ClearFunnel()
			reply := custom("You've already used the maximum number of interview attempts. Our team will review your existing responses and get back to you.")
			o.record(ctx, st, "[document upload]", reply)
			return reply, nil
		}
		return Reply{}, err
	}

	id := s.ID
	st.InterviewID = &id
	st.ClearFunnel()
	st.DocumentRetries = 0

	reply := Reply{
		Text:           "✅ Your document has been verified!\n" + res.Reply,
		Provider:       res.Provider,
		StartInterview: true,
	}
	o.record(ctx, st, "[document upload]", reply)
	return reply, nil
}

// OnDocumentRejected counts the failed attempt and returns the reason text,
// or the hard stop once retries run out.
func (o *Orchestrator) OnDocumentRejected(ctx context.Context, st *session.State, v verify.Verdict, maxRetries int) Reply {
	st.DocumentRetries++
	var reply Reply
	if st.DocumentRetries >= maxRetries {
		st.ClearFunnel()
		reply = custom(replyDocLimit)
	} else {
		reply = custom(v.Reason.Message() + fmt.Sprintf(" (%d attempt(s) left)", maxRetries-st.DocumentRetries))
	}
	o.record(ctx, st, "[document upload]", reply)
	return reply
}

func custom(text string) Reply {
	return Reply{Text: text, Provider: responder.ProviderCustom}
}
