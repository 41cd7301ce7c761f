package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"antigravity/auth"
	"antigravity/errs"
)

// registerFollowRoutes is a helper for registering all Follow routes.
func (s *Server) registerFollowRoutes(r *mux.Router) {
	r.HandleFunc("/users/{username}/follow", s.requireAuth(s.handleFollow)).Methods("POST")
	r.HandleFunc("/users/{username}/follow", s.requireAuth(s.handleUnfollow)).Methods("DELETE")
}

// handleFollow handles "POST /users/{username}/follow". Following
// yourself or someone you already follow is a Conflict.
func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	user := auth.GetUser(r.Context())

	if err := s.fs.Follow(r.Context(), user.ID, username); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.invalidateFollowStats(r, user.ID, username)
	respondSuccess(w, r, http.StatusCreated)
}

// handleUnfollow handles "DELETE /users/{username}/follow". Unfollowing
// someone you don't follow succeeds quietly.
func (s *Server) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	user := auth.GetUser(r.Context())

	if err := s.fs.Unfollow(r.Context(), user.ID, username); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.invalidateFollowStats(r, user.ID, username)
	respondSuccess(w, r, http.StatusOK)
}

// invalidateFollowStats drops the cached follow counts for both ends of
// the changed edge.
func (s *Server) invalidateFollowStats(r *http.Request, followerID, username string) {
	target, err := s.us.ByUsername(r.Context(), username)
	if err != nil {
		return
	}
	s.stats.Invalidate(r.Context(), followerID, target.ID)
}
