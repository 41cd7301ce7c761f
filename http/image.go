package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"antigravity/domain"
	"antigravity/errs"
	"antigravity/storage"
)

// registerImageRoutes is a helper for registering the upload route.
func (s *Server) registerImageRoutes(r *mux.Router) {
	r.HandleFunc("/upload", s.requireAuth(s.handleUpload)).Methods("POST")
}

// handleUpload handles "POST /upload". It accepts a single multipart
// image, validates it by sniffing the bytes, stores it and returns the
// public URL. Non-image content is rejected.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(storage.MaxUploadSize); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Request is not valid multipart form data."))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "No file uploaded."))
		return
	}
	defer file.Close()

	img := &domain.Image{
		File:     file,
		Filename: header.Filename,
	}
	if err := s.is.Create(img); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, img)
}
