package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"code.sajari.com/docconv"
	"github.com/gofiber/fiber/v2"
	fsession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inboxinfotech/chatbot/api/http/presenter"
	"github.com/inboxinfotech/chatbot/pkg/responder"
	"github.com/inboxinfotech/chatbot/pkg/session"
)

// ResumeHandler accepts resume uploads, extracts their text and replies
// with the openings that match it so the candidate can pick one.
type ResumeHandler struct {
	store    *fsession.Store
	chain    *responder.Chain
	baseDir  string
	maxBytes int64
	log      *zap.Logger
}

func NewResumeHandler(store *fsession.Store, chain *responder.Chain, baseDir string, log *zap.Logger) *ResumeHandler {
	return &ResumeHandler{store: store, chain: chain, baseDir: baseDir, maxBytes: 15 << 20, log: log}
}

// rankOpenings keeps the openings whose title words appear in the resume
// text, highest overlap first. When nothing overlaps the full list is
// returned unchanged so the candidate still sees what is open.
func rankOpenings(resumeText string, jobs []string) ([]string, bool) {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(resumeText)) {
		words[strings.Trim(w, ".,;:()[]\"'")] = true
	}

	type scored struct {
		job   string
		score int
	}
	var matched []scored
	for _, job := range jobs {
		score := 0
		for _, w := range strings.Fields(strings.ToLower(job)) {
			if words[w] {
				score++
			}
		}
		if score > 0 {
			matched = append(matched, scored{job: job, score: score})
		}
	}
	if len(matched) == 0 {
		return jobs, false
	}

	sort.SliceStable(matched, func(i, j int) bool { return matched[i].score > matched[j].score })
	out := make([]string, len(matched))
	for i, m := range matched {
		out[i] = m.job
	}
	return out, true
}

var resumeMimeByExt = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".doc":  "application/msword",
}

// Upload stores the resume and suggests the openings its text matches.
// @Summary Upload a resume
// @Tags    chat
// @Accept  multipart/form-data
// @Produce json
// @Param   file formData file true "Resume (PDF or DOCX)"
// @Success 200 {object} chat.Reply
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 500 {object} presenter.ErrorResponse
// @Router  /chat/resume [post]
func (h *ResumeHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil || fh == nil {
		return presenter.Error(c, http.StatusBadRequest, "file is required (pdf or docx)")
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	mime, ok := resumeMimeByExt[ext]
	if !ok {
		return presenter.Error(c, http.StatusBadRequest, "unsupported file format: only pdf and docx are allowed")
	}

	file, err := fh.Open()
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "failed to open uploaded file")
	}
	defer file.Close()
	data, err := readAtMost(file, h.maxBytes)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "failed to read uploaded file")
	}

	res, err := docconv.Convert(bytes.NewReader(data), mime, true)
	if err != nil || len(strings.TrimSpace(res.Body)) == 0 {
		return presenter.Error(c, http.StatusBadRequest, "could not extract any text from the resume")
	}

	if err := os.MkdirAll(h.baseDir, 0o755); err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "failed to prepare storage")
	}
	dst := filepath.Join(h.baseDir, uuid.New().String()+ext)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "failed to store file")
	}

	sess, err := h.store.Get(c)
	if err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "session unavailable")
	}
	st, err := session.Load(sess)
	if err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "session unavailable")
	}
	st.CandidateID = sess.ID()

	text := "📄 Thanks, I've received your resume!"
	providerID := responder.ProviderCustom
	if jobs, model := h.chain.JobOpenings(c.Context()); len(jobs) > 0 {
		ranked, matched := rankOpenings(res.Body, jobs)
		st.OfferedJobs = ranked
		providerID = model
		header := " Here are our current openings:\n"
		if matched {
			header = " These openings match your resume:\n"
		}
		var b strings.Builder
		b.WriteString(text + header)
		for i, job := range ranked {
			fmt.Fprintf(&b, "%d. %s\n", i+1, job)
		}
		b.WriteString("\nReply with the number or title you'd like to apply for.")
		text = b.String()
	}

	if err := session.Save(sess, st); err != nil {
		h.log.Error("session save failed", zap.Error(err))
		return presenter.Error(c, http.StatusInternalServerError, "session unavailable")
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{
		"text":     text,
		"provider": providerID,
	})
}
