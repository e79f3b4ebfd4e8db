package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/inboxinfotech/chatbot/api/http/handlers"
)

// Register wires all HTTP routes onto given Fiber app.
func Register(app *fiber.App, chat *handlers.ChatHandler, document *handlers.DocumentHandler, resume *handlers.ResumeHandler, health *handlers.HealthHandler) {
	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Health and readiness endpoints for probes/monitoring
	v1.Get("/health", health.Health)
	v1.Get("/ready", health.Ready)

	ch := v1.Group("/chat")
	ch.Post("/message", chat.Message)
	ch.Post("/resume", resume.Upload)
	ch.Post("/document", document.Capture)
	ch.Post("/tab-switch", chat.TabSwitch)
	ch.Post("/webcam-consent", chat.WebcamConsent)
}
