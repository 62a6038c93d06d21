package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/lorrc/complaint-desk-backend/internal/adapters/primary/http/middleware"
	"github.com/lorrc/complaint-desk-backend/internal/adapters/primary/validation"
	"github.com/lorrc/complaint-desk-backend/internal/core/domain"
	apperrors "github.com/lorrc/complaint-desk-backend/internal/core/errors"
	"github.com/lorrc/complaint-desk-backend/internal/core/ports"
)

// SupportHandler exposes the REST surface of the support chat: conversation
// history for joining clients and the admin unread counter. Live traffic
// goes over the WebSocket; these endpoints exist for state rebuilds.
type SupportHandler struct {
	messages     ports.MessageService
	unread       ports.UnreadService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewSupportHandler creates a new support chat handler
func NewSupportHandler(messages ports.MessageService, unread ports.UnreadService, errorHandler *ErrorHandler, logger *slog.Logger) *SupportHandler {
	return &SupportHandler{
		messages:     messages,
		unread:       unread,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "support"),
	}
}

// RegisterRoutes sets up the routing for the support chat endpoints.
func (h *SupportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tickets/{ticketID}/messages", h.HandleTicketMessages)
	r.Post("/tickets/{ticketID}/messages", h.HandleSendMessage)

	r.Route("/unread", func(r chi.Router) {
		r.Use(mw.RequireRole(domain.RoleAdmin))
		r.Get("/", h.HandleUnreadSnapshot)
		r.Post("/read", h.HandleMarkAllRead)
	})
}

// SendMessageRequest is the body of a REST message submission. Sender
// identity comes from the token, never from the body.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// HandleTicketMessages handles GET /support/tickets/{ticketID}/messages.
// It returns the stored conversation in order; an optional ?limit=N query
// parameter keeps only the newest N messages.
func (h *SupportHandler) HandleTicketMessages(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketID")

	messages, err := h.messages.History(r.Context(), ticketID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if limit := validation.ParseIntQueryParam(r, "limit", 0); limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}

	response := make([]domain.MessageSnapshot, 0, len(messages))
	for _, m := range messages {
		response = append(response, domain.NewMessageSnapshot(m))
	}

	WriteList(w, response)
}

// HandleSendMessage handles POST /support/tickets/{ticketID}/messages.
// It is the REST fallback for clients without a live socket: same pipeline
// as the send-message envelope, so the message is persisted and broadcast
// to connected members, or nothing happens at all.
func (h *SupportHandler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketID")

	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		h.errorHandler.Handle(w, r, apperrors.ErrUnauthorized)
		return
	}

	req, err := validation.DecodeAndValidate[SendMessageRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	_, roomErr := domain.ParseRoomID(ticketID)
	v := validation.NewValidator().
		Required("content", req.Content).
		MaxLength("content", req.Content, domain.MaxContentLength).
		Custom("ticketID", roomErr == nil, "Must be a numeric ticket id")
	if v.HasErrors() {
		h.errorHandler.Handle(w, r, v.Errors())
		return
	}

	message, err := h.messages.Send(r.Context(), ports.SendMessageParams{
		RoomID:     ticketID,
		Content:    req.Content,
		SenderID:   claims.UserID,
		SenderRole: claims.Role,
		SenderName: claims.DisplayName,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteSuccess(w, domain.NewMessageSnapshot(message))
}

// HandleUnreadSnapshot handles GET /support/unread. The count comes from the
// durable counter, so it is correct even for an admin that has never had a
// live connection.
func (h *SupportHandler) HandleUnreadSnapshot(w http.ResponseWriter, r *http.Request) {
	count, err := h.unread.Snapshot(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, domain.UnreadSnapshotPayload{Count: count})
}

// HandleMarkAllRead handles POST /support/unread/read. The reset is total:
// there is no per-room bookkeeping to unwind. The fresh count is returned so
// callers don't need a second round trip.
func (h *SupportHandler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	count, err := h.unread.MarkAllRead(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, domain.UnreadSnapshotPayload{Count: count})
}
