package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"antigravity/auth"
	"antigravity/domain"
	"antigravity/errs"
)

// registerPostRoutes is a helper for registering all Post routes,
// including likes, retweets and comments. The fixed paths must come
// before the "/posts/{id}" wildcard.
func (s *Server) registerPostRoutes(r *mux.Router) {
	r.HandleFunc("/posts", s.requireAuth(s.handleCreatePost)).Methods("POST")
	r.HandleFunc("/posts", s.handleGlobalFeed).Methods("GET")
	r.HandleFunc("/posts/feed", s.requireAuth(s.handleFeed)).Methods("GET")
	r.HandleFunc("/posts/user/{username}", s.handleProfileFeed).Methods("GET")
	r.HandleFunc("/posts/{id}", s.handleGetPost).Methods("GET")
	r.HandleFunc("/posts/{id}/like", s.requireAuth(s.handleLike)).Methods("POST")
	r.HandleFunc("/posts/{id}/like", s.requireAuth(s.handleUnlike)).Methods("DELETE")
	r.HandleFunc("/posts/{id}/retweet", s.requireAuth(s.handleRetweet)).Methods("POST")
	r.HandleFunc("/posts/{id}/retweet", s.requireAuth(s.handleUnretweet)).Methods("DELETE")
	r.HandleFunc("/posts/{id}/comments", s.handleListComments).Methods("GET")
	r.HandleFunc("/posts/{id}/comments", s.requireAuth(s.handleCreateComment)).Methods("POST")
}

type createPostRequest struct {
	Content string `json:"content" validate:"required,max=140"`
}

// handleCreatePost handles "POST /posts".
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := s.decodeBody(r, &req); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := auth.GetUser(r.Context())
	post := &domain.Post{
		AuthorID: user.ID,
		Content:  req.Content,
	}
	if err := s.ps.Create(r.Context(), post); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	item, err := s.ps.ByID(r.Context(), post.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, item)
}

// handleGlobalFeed handles "GET /posts": every post, newest first.
func (s *Server) handleGlobalFeed(w http.ResponseWriter, r *http.Request) {
	items, err := s.ps.All(r.Context())
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, items)
}

// handleFeed handles "GET /posts/feed": the authed user's personalized feed.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	items, err := s.ps.Feed(r.Context(), user.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, items)
}

// handleProfileFeed handles "GET /posts/user/{username}": the user's
// authored posts merged with their retweets.
func (s *Server) handleProfileFeed(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	user, err := s.us.ByUsername(r.Context(), username)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	items, err := s.ps.ProfileFeed(r.Context(), user.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, items)
}

// handleGetPost handles "GET /posts/{id}".
func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	item, err := s.ps.ByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, item)
}

// handleLike handles "POST /posts/{id}/like". A second like of the same
// post is a Conflict; the client treats that as "already done".
func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if err := s.ls.Like(r.Context(), user.ID, mux.Vars(r)["id"]); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusCreated)
}

// handleUnlike handles "DELETE /posts/{id}/like".
func (s *Server) handleUnlike(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if err := s.ls.Unlike(r.Context(), user.ID, mux.Vars(r)["id"]); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK)
}

// handleRetweet handles "POST /posts/{id}/retweet".
func (s *Server) handleRetweet(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if err := s.rs.Retweet(r.Context(), user.ID, mux.Vars(r)["id"]); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusCreated)
}

// handleUnretweet handles "DELETE /posts/{id}/retweet".
func (s *Server) handleUnretweet(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if err := s.rs.Unretweet(r.Context(), user.ID, mux.Vars(r)["id"]); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK)
}

// handleListComments handles "GET /posts/{id}/comments", newest first.
func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	items, err := s.cs.ByPostID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, items)
}

type createCommentRequest struct {
	Content string `json:"content" validate:"required,max=140"`
}

// handleCreateComment handles "POST /posts/{id}/comments".
func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	var req createCommentRequest
	if err := s.decodeBody(r, &req); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := auth.GetUser(r.Context())
	comment := &domain.Comment{
		PostID:   mux.Vars(r)["id"],
		AuthorID: user.ID,
		Content:  req.Content,
	}
	item, err := s.cs.Create(r.Context(), comment)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, item)
}
