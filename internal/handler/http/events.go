package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ponto-escolar/ponto-backend-go/internal/domain/user"
	"github.com/ponto-escolar/ponto-backend-go/internal/handler/http/middleware"
	"github.com/ponto-escolar/ponto-backend-go/internal/handler/http/response"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/jwt"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/sse"
)

const keepaliveInterval = 30 * time.Second

type EventsHandler interface {
	Token(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type EventSubscriber interface {
	Subscribe(recipient string) (<-chan sse.Event, func())
}

type StreamTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

type eventsHandlerImpl struct {
	jwtService jwt.Service
	users      middleware.UserLoader
	hub        EventSubscriber
}

func NewEventsHandler(jwtService jwt.Service, users middleware.UserLoader, hub EventSubscriber) EventsHandler {
	return &eventsHandlerImpl{
		jwtService: jwtService,
		users:      users,
		hub:        hub,
	}
}

// Token issues the short-lived credential the stream endpoint expects in its
// query string.
func (h *eventsHandlerImpl) Token(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	token, expiresIn, err := h.jwtService.GenerateStreamToken(actor.ID)
	if err != nil {
		slog.Error("failed to generate stream token", "error", err, "user_id", actor.ID)
		response.InternalServerError(w, "Failed to generate stream token")
		return
	}

	response.Success(w, StreamTokenResponse{Token: token, ExpiresIn: expiresIn})
}

func (h *eventsHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}

	userID, err := h.jwtService.ValidateStreamToken(tokenStr)
	if err != nil {
		response.Unauthorized(w, "Invalid token")
		return
	}

	subscriber, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		response.Unauthorized(w, "Invalid token")
		return
	}
	if subscriber.Status == user.StatusInactive {
		response.Forbidden(w, "Account is inactive")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(subscriber.Email)
	defer cleanup()

	fmt.Fprint(w, "event: connected\ndata: {\"status\":\"connected\"}\n\n")
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				slog.Warn("dropping unencodable event", "event", event.Name, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Name, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
