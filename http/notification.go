package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"antigravity/auth"
	"antigravity/errs"
)

// registerNotificationRoutes is a helper for registering all Notification routes.
func (s *Server) registerNotificationRoutes(r *mux.Router) {
	r.HandleFunc("/notifications", s.requireAuth(s.handleListNotifications)).Methods("GET")
	r.HandleFunc("/notifications/mark-read", s.requireAuth(s.handleMarkNotificationsRead)).Methods("PATCH")
}

// handleListNotifications handles "GET /notifications": the authed user's
// activity feed, newest first.
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	items, err := s.ns.ByUserID(r.Context(), user.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, items)
}

// markReadResponse reports how many notifications were flipped to read.
type markReadResponse struct {
	Count int64 `json:"count"`
}

// handleMarkNotificationsRead handles "PATCH /notifications/mark-read".
// It flips every unread notification of the authed user at once; there
// is no per-notification read state.
func (s *Server) handleMarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	count, err := s.ns.MarkAllRead(r.Context(), user.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, markReadResponse{Count: count})
}
