package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"antigravity/auth"
	"antigravity/cache"
	"antigravity/crud"
	"antigravity/domain"
	"antigravity/errs"
)

// Server provides the http functionality of the app: routing, request
// handling and middleware. It authenticates requests before handing
// things over to one of the crud services.
type Server struct {
	router   *mux.Router
	log      *zap.Logger
	validate *validator.Validate

	jwtSecret string
	jwtTTL    time.Duration
	uploadDir string

	us domain.UserService
	ps domain.PostService
	fs domain.FollowService
	ls domain.LikeService
	rs domain.RetweetService
	cs domain.CommentService
	ns domain.NotificationService
	is domain.ImageService

	stats *cache.FollowStats
}

// NewServer returns a new instance of the server, registers all routes
// and gives their handlers access to the services passed in.
func NewServer(
	services *crud.Services,
	is domain.ImageService,
	stats *cache.FollowStats,
	log *zap.Logger,
	jwtSecret string,
	jwtTTL time.Duration,
	uploadDir string,
) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		log:       log,
		validate:  validator.New(),
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
		uploadDir: uploadDir,
		us:        services.User,
		ps:        services.Post,
		fs:        services.Follow,
		ls:        services.Like,
		rs:        services.Retweet,
		cs:        services.Comment,
		ns:        services.Notification,
		is:        is,
		stats:     stats,
	}

	s.registerAuthRoutes(s.router)
	s.registerUserRoutes(s.router)
	s.registerFollowRoutes(s.router)
	s.registerPostRoutes(s.router)
	s.registerNotificationRoutes(s.router)
	s.registerImageRoutes(s.router)

	// Uploaded images are served statically below /uploads/.
	s.router.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.uploadDir))))

	s.router.Use(s.recoverPanic, s.logRequest, setContentTypeJSON, s.authUser)
	return s
}

// Run starts to listen and serve on the specified port.
func (s *Server) Run(port int) {
	addr := ":" + strconv.Itoa(port)
	s.log.Info("listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, s.router); err != nil {
		s.log.Fatal("server stopped", zap.Error(err))
	}
}

// The setContentTypeJSON middleware sets the content type to "application/json".
func setContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// The logRequest middleware logs every request with its method and path.
func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)),
		)
	})
}

// The recoverPanic middleware turns a handler panic into a 500 response
// and reports it to sentry when a DSN is configured.
func (s *Server) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				sentry.CurrentHub().Recover(rec)
				s.log.Error("panic in handler",
					zap.String("path", r.URL.Path),
					zap.Any("panic", rec),
				)
				errs.ReturnError(w, r, errs.Errorf(errs.EINTERNAL, "Internal error."))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// The authUser middleware resolves a bearer token to a user and stores it
// in the request context. Requests without a valid token pass through
// anonymously; requireAuth decides per route whether that is acceptable.
func (s *Server) authUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			next.ServeHTTP(w, r)
			return
		}
		userID, err := auth.ParseToken(s.jwtSecret, header[len(prefix):])
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		user, err := s.us.ByID(r.Context(), userID)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.SetUser(r.Context(), user)))
	})
}

// requireAuth rejects requests that did not resolve to a user.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if auth.GetUser(r.Context()) == nil {
			errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "Authentication required."))
			return
		}
		next.ServeHTTP(w, r)
	}
}

// decodeBody parses the request's json body into dst and runs the
// validator over it.
func (s *Server) decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errs.Errorf(errs.EINVALID, "Invalid json body.")
	}
	if err := s.validate.Struct(dst); err != nil {
		return errs.Errorf(errs.EINVALID, "Invalid request: %s", err.Error())
	}
	return nil
}

// respond writes v as json with the given status code.
func respond(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		errs.LogError(r, err)
	}
}

// successResponse is the uniform acknowledgement for action endpoints.
type successResponse struct {
	Success bool `json:"success"`
}

// respondSuccess writes the uniform {"success":true} acknowledgement.
func respondSuccess(w http.ResponseWriter, r *http.Request, status int) {
	respond(w, r, status, successResponse{Success: true})
}
