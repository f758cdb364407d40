package http

import (
	"net/http"
	"strconv"

	"github.com/ponto-escolar/ponto-backend-go/internal/domain/auth"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/user"
	"github.com/ponto-escolar/ponto-backend-go/internal/handler/http/response"
)

// currentUser returns the user loaded by middleware.LoadUser. Handlers behind
// it can rely on ok; the error response is written otherwise.
func currentUser(w http.ResponseWriter, r *http.Request) (user.User, bool) {
	u, ok := user.FromContext(r.Context())
	if !ok {
		response.HandleError(w, auth.ErrInvalidToken)
	}
	return u, ok
}

func sessionFrom(r *http.Request) auth.SessionTrackingRequest {
	return auth.SessionTrackingRequest{
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
}

// queryString returns the query parameter, or nil when absent or empty.
func queryString(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

// pagination reads page and limit. Invalid values fall back to the defaults
// the filters apply.
func pagination(r *http.Request) (page int, limit int) {
	if p := r.URL.Query().Get("page"); p != "" {
		if n, err := strconv.Atoi(p); err == nil && n > 0 {
			page = n
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}
	return page, limit
}
