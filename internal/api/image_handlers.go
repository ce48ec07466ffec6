package api

import (
	stderrors "errors"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/mriflash/internal/errors"
	"github.com/vytor/mriflash/internal/images"
	"github.com/vytor/mriflash/internal/models"
)

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	cat, err := models.ParseCategory(chi.URLParam(r, "category"))
	if err != nil || s.Images == nil {
		handleError(w, r, errors.NewNotFoundError("image", filename))
		return
	}

	cacheStatus := "MISS"
	if s.Images.Contains(cat, filename) {
		cacheStatus = "HIT"
	}
	data, err := s.Images.Load(r.Context(), cat, filename)
	switch {
	case stderrors.Is(err, images.ErrInvalidPath):
		handleError(w, r, errors.NewBadRequestError("invalid image path"))
		return
	case stderrors.Is(err, fs.ErrNotExist):
		handleError(w, r, errors.NewNotFoundError("image", filename))
		return
	case err != nil:
		handleError(w, r, errors.NewInternalError(err))
		return
	}

	ctype := mime.TypeByExtension(path.Ext(filename))
	if ctype == "" {
		ctype = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
