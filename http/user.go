package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"antigravity/auth"
	"antigravity/domain"
	"antigravity/errs"
)

// registerUserRoutes is a helper for registering all User routes.
func (s *Server) registerUserRoutes(r *mux.Router) {
	r.HandleFunc("/users/me", s.requireAuth(s.handleMe)).Methods("GET")
	r.HandleFunc("/users/me", s.requireAuth(s.handleUpdateMe)).Methods("PATCH")
	r.HandleFunc("/users/{username}", s.handleProfile).Methods("GET")
}

// handleMe handles "GET /users/me". It returns the authed user's own
// record (credentials are excluded by the model's json tags).
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, auth.GetUser(r.Context()))
}

type updateUserRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1"`
	Username   *string `json:"username" validate:"omitempty,min=3,max=30"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Password   *string `json:"password" validate:"omitempty,min=8"`
	ProfilePic *string `json:"profile_pic" validate:"omitempty,url"`
}

// handleUpdateMe handles "PATCH /users/me". Nil fields stay untouched; a
// duplicate username or email surfaces as a Conflict.
func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := s.decodeBody(r, &req); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := auth.GetUser(r.Context())
	updated, err := s.us.Update(r.Context(), user.ID, domain.UserUpdate{
		Name:       req.Name,
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		ProfilePic: req.ProfilePic,
	})
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, updated)
}

// profileResponse is the public profile page payload: the reduced
// projection plus aggregate follow counts.
type profileResponse struct {
	domain.Profile
	CreatedAt time.Time           `json:"created_at"`
	Counts    domain.FollowCounts `json:"counts"`
}

// handleProfile handles "GET /users/{username}". Profiles key strictly on
// the current username.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	user, err := s.us.ByUsername(r.Context(), username)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	counts, err := s.stats.Counts(r.Context(), user.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, profileResponse{
		Profile:   user.Profile(),
		CreatedAt: user.CreatedAt,
		Counts:    counts,
	})
}
