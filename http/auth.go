package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"antigravity/auth"
	"antigravity/domain"
	"antigravity/errs"
)

// registerAuthRoutes is a helper for registering registration and login.
func (s *Server) registerAuthRoutes(r *mux.Router) {
	r.HandleFunc("/register", s.handleRegister).Methods("POST")
	r.HandleFunc("/login", s.handleLogin).Methods("POST")
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// tokenResponse carries a fresh bearer token and the account it belongs to.
type tokenResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// handleRegister handles "POST /register". It creates the account and
// signs the new user straight in.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := s.decodeBody(r, &req); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := &domain.User{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
	if err := s.us.Create(r.Context(), user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	token, err := auth.NewToken(s.jwtSecret, user.ID, s.jwtTTL)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, tokenResponse{Token: token, User: user})
}

// handleLogin handles "POST /login". It checks the credentials and issues
// a bearer token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decodeBody(r, &req); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user, err := s.us.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	token, err := auth.NewToken(s.jwtSecret, user.ID, s.jwtTTL)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, tokenResponse{Token: token, User: user})
}
