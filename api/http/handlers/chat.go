package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	fsession "github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"

	"github.com/inboxinfotech/chatbot/api/http/presenter"
	"github.com/inboxinfotech/chatbot/pkg/chat"
	"github.com/inboxinfotech/chatbot/pkg/interview"
	"github.com/inboxinfotech/chatbot/pkg/session"
)

// ChatHandler serves the conversational endpoints. Each request loads the
// typed state from the transport session, routes the message and saves the
// state back before responding.
type ChatHandler struct {
	store        *fsession.Store
	orchestrator *chat.Orchestrator
	interviews   *interview.Manager
	log          *zap.Logger
}

func NewChatHandler(store *fsession.Store, orchestrator *chat.Orchestrator, interviews *interview.Manager, log *zap.Logger) *ChatHandler {
	return &ChatHandler{store: store, orchestrator: orchestrator, interviews: interviews, log: log}
}

type messageRequest struct {
	Message string `json:"message"`
}

type tabSwitchRequest struct {
	Count int `json:"count"`
}

type webcamConsentRequest struct {
	Consent bool `json:"consent"`
}

// Message routes one candidate message through the guard chain.
// @Summary Send a chat message
// @Tags    chat
// @Accept  json
// @Produce json
// @Param   body body handlers.messageRequest true "Candidate message"
// @Success 200 {object} chat.Reply
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 500 {object} presenter.ErrorResponse
// @Router  /chat/message [post]
func (h *ChatHandler) Message(c *fiber.Ctx) error {
	var req messageRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		return presenter.Error(c, http.StatusBadRequest, "message is required")
	}

	sess, st, err := h.state(c)
	if err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "session unavailable")
	}

	reply, err := h.orchestrator.Handle(c.Context(), st, req.Message)
	if err != nil {
		h.log.Error("message handling failed", zap.Error(err))
		return presenter.Error(c, http.StatusInternalServerError, "something went wrong, please try again")
	}

	if err := session.Save(sess, st); err != nil {
		h.log.Error("session save failed", zap.Error(err))
		return presenter.Error(c, http.StatusInternalServerError, "session unavailable")
	}
	return presenter.JSON(c, http.StatusOK, reply)
}

// TabSwitch stores the proctoring counter reported by the interview page.
// @Summary Report interview tab switches
// @Tags    chat
// @Accept  json
// @Produce json
// @Param   body body handlers.tabSwitchRequest true "Cumulative tab switch count"
// @Success 204 {string} string "no content"
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /chat/tab-switch [post]
func (h *ChatHandler) TabSwitch(c *fiber.Ctx) error {
	var req tabSwitchRequest
	if err := c.BodyParser(&req); err != nil || req.Count < 0 {
		return presenter.Error(c, http.StatusBadRequest, "count is required")
	}

	sess, err := h.store.Get(c)
	if err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "session unavailable")
	}
	if err := h.interviews.RecordTabSwitch(c.Context(), sess.ID(), req.Count); err != nil {
		h.log.Warn("tab switch update failed", zap.Error(err))
	}
	return c.SendStatus(http.StatusNoContent)
}

// WebcamConsent records whether the candidate agreed to webcam recording.
// @Summary Record webcam consent
// @Tags    chat
// @Accept  json
// @Produce json
// @Param   body body handlers.webcamConsentRequest true "Consent flag"
// @Success 204 {string} string "no content"
// @Failure 500 {object} presenter.ErrorResponse
// @Router  /chat/webcam-consent [post]
func (h *ChatHandler) WebcamConsent(c *fiber.Ctx) error {
	var req webcamConsentRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "consent is required")
	}

	sess, st, err := h.state(c)
	if err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "session unavailable")
	}
	st.WebcamConsent = req.Consent
	if err := session.Save(sess, st); err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "session unavailable")
	}
	return c.SendStatus(http.StatusNoContent)
}

// state loads the typed conversation state and stamps the candidate id.
func (h *ChatHandler) state(c *fiber.Ctx) (*fsession.Session, *session.State, error) {
	sess, err := h.store.Get(c)
	if err != nil {
		return nil, nil, err
	}
	st, err := session.Load(sess)
	if err != nil {
		return nil, nil, err
	}
	st.CandidateID = sess.ID()
	return sess, st, nil
}
