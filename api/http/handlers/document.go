package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	fsession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inboxinfotech/chatbot/api/http/presenter"
	"github.com/inboxinfotech/chatbot/pkg/chat"
	"github.com/inboxinfotech/chatbot/pkg/funnel"
	"github.com/inboxinfotech/chatbot/pkg/session"
	"github.com/inboxinfotech/chatbot/pkg/verify"
)

// DocumentHandler accepts the identity-document upload that completes the
// application funnel.
type DocumentHandler struct {
	store        *fsession.Store
	orchestrator *chat.Orchestrator
	pipeline     *verify.Pipeline
	script       *funnel.Script
	baseDir      string
	log          *zap.Logger
}

func NewDocumentHandler(store *fsession.Store, orchestrator *chat.Orchestrator, pipeline *verify.Pipeline, script *funnel.Script, baseDir string, log *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		store:        store,
		orchestrator: orchestrator,
		pipeline:     pipeline,
		script:       script,
		baseDir:      baseDir,
		log:          log,
	}
}

// Capture verifies an uploaded ID document. An accepted document starts the
// interview; a rejected one returns the reason and counts against the retry
// allowance.
// @Summary Upload an identity document
// @Tags    chat
// @Accept  multipart/form-data
// @Produce json
// @Param   file formData file true "ID document (JPG, PNG or PDF)"
// @Success 200 {object} chat.Reply
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 500 {object} presenter.ErrorResponse
// @Router  /chat/document [post]
func (h *DocumentHandler) Capture(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "session unavailable")
	}
	st, err := session.Load(sess)
	if err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "session unavailable")
	}
	st.CandidateID = sess.ID()

	q, ok := h.script.Get(st.Funnel)
	if !ok || !q.Capture {
		return presenter.Error(c, http.StatusBadRequest, "no document is expected right now")
	}

	fh, err := c.FormFile("file")
	if err != nil || fh == nil {
		return presenter.Error(c, http.StatusBadRequest, "file is required (jpg, png or pdf)")
	}
	file, err := fh.Open()
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "failed to open uploaded file")
	}
	defer file.Close()

	data, err := readAtMost(file, int64(h.pipeline.MaxBytes())+1)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "failed to read uploaded file")
	}

	verdict := h.pipeline.Verify(c.Context(), fh.Filename, data, st.Name)

	var reply chat.Reply
	if verdict.Accepted {
		stored, err := h.storeFile(fh.Filename, data)
		if err != nil {
			h.log.Error("document store failed", zap.Error(err))
			return presenter.Error(c, http.StatusInternalServerError, "failed to store document")
		}
		reply, err = h.orchestrator.OnDocumentVerified(c.Context(), st, stored, verdict)
		if err != nil {
			h.log.Error("document acceptance failed", zap.Error(err))
			return presenter.Error(c, http.StatusInternalServerError, "something went wrong, please try again")
		}
	} else {
		reply = h.orchestrator.OnDocumentRejected(c.Context(), st, verdict, h.pipeline.MaxRetries())
	}

	if err := session.Save(sess, st); err != nil {
		h.log.Error("session save failed", zap.Error(err))
		return presenter.Error(c, http.StatusInternalServerError, "session unavailable")
	}
	return presenter.JSON(c, http.StatusOK, reply)
}

func (h *DocumentHandler) storeFile(filename string, data []byte) (string, error) {
	if err := os.MkdirAll(h.baseDir, 0o755); err != nil {
		return "", err
	}
	dst := filepath.Join(h.baseDir, uuid.New().String()+filepath.Ext(filename))
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", err
	}
	return dst, nil
}

func readAtMost(f multipart.File, max int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(f, max))
}
