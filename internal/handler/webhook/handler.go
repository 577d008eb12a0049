package webhook

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/twilio/twilio-go/twiml"

	"github.com/stylemirror/backend/internal/model/message"
	"github.com/stylemirror/backend/internal/service/workflow"
	"github.com/stylemirror/backend/pkg/utils"
)

// Handler turns transport webhooks into workflow events and renders the
// engine's reply as TwiML.
type Handler struct {
	engine *workflow.Service
}

// New creates the webhook handler.
func New(engine *workflow.Service) *Handler {
	return &Handler{engine: engine}
}

// RegisterRoutes mounts the inbound event intake.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/webhook", h.handleInbound)
}

// handleInbound accepts one form-encoded transport event. A missing
// media reference is a handled input, not an error.
func (h *Handler) handleInbound(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	from := r.PostFormValue("From")
	if from == "" {
		utils.RespondError(w, http.StatusBadRequest, "From is required")
		return
	}
	mediaURL := r.PostFormValue("MediaUrl0")
	log.Printf("[webhook] inbound from %s media=%q", from, mediaURL)

	reply := h.engine.Handle(r.Context(), message.Inbound{From: from, MediaURL: mediaURL})

	body, err := twiml.Messages([]twiml.Element{
		&twiml.MessagingMessage{Body: reply.Text},
	})
	if err != nil {
		log.Printf("[webhook] failed to render twiml: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to render reply")
		return
	}
	utils.RespondTwiML(w, body)
}
