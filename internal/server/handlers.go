package server

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/mozhi-it/LAN-Transfer/internal/errors"
	"github.com/mozhi-it/LAN-Transfer/internal/types"
)

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.MessagesResponse{Messages: s.messages.Recent(RecentMessages)})
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content *string `json:"content"`
		Sender  string  `json:"sender"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 64*1024)).Decode(&req); err != nil || req.Content == nil {
		writeError(w, http.StatusBadRequest, "No content")
		return
	}

	msg, err := s.messages.Post(req.Sender, *req.Content)
	if err != nil {
		s.fail(w, err)
		return
	}
	MessagesPosted.Inc()
	writeJSON(w, http.StatusOK, types.SendResponse{Success: true, Message: &msg})
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	category, ok := categoryParam(w, r)
	if !ok {
		return
	}
	files, err := s.storage.List(category)
	if err != nil {
		s.fail(w, err)
		return
	}
	if files == nil {
		files = []types.FileRecord{}
	}
	writeJSON(w, http.StatusOK, types.FilesResponse{Files: files, Category: category})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	mr, err := r.MultipartReader()
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file part")
		return
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			writeError(w, http.StatusBadRequest, "No file part")
			return
		}
		if err != nil {
			s.fail(w, err)
			return
		}
		if part.FormName() != "file" {
			part.Close()
			continue
		}
		if part.FileName() == "" {
			writeError(w, http.StatusBadRequest, "No file selected")
			return
		}

		rec, err := s.storage.Save(part.FileName(), part)
		part.Close()
		if err != nil {
			s.fail(w, err)
			return
		}

		FilesUploaded.WithLabelValues(string(rec.Category)).Inc()
		s.log.Info().Str("name", rec.Name).Str("category", string(rec.Category)).Str("size", rec.Size).Msg("file stored")
		writeJSON(w, http.StatusOK, types.UploadResponse{Success: true, File: &rec})
		return
	}
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	category, ok := categoryParam(w, r)
	if !ok {
		return
	}
	name, err := pathParam(r, "filename")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filename")
		return
	}

	f, info, err := s.storage.Open(category, name)
	if err != nil {
		s.fail(w, err)
		return
	}
	defer f.Close()

	FilesDownloaded.WithLabelValues(string(category)).Inc()
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	category, ok := categoryParam(w, r)
	if !ok {
		return
	}
	name, err := pathParam(r, "filename")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filename")
		return
	}

	if err := s.storage.Delete(category, name); err != nil {
		s.fail(w, err)
		return
	}
	FilesDeleted.Inc()
	s.log.Info().Str("name", name).Str("category", string(category)).Msg("file deleted")
	writeJSON(w, http.StatusOK, types.DeleteResponse{Success: true})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.storage.Stats()
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// fail maps an error to a status and writes it as {"error": ...}
func (s *Server) fail(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}

	var e *errors.Error
	if errors.As(err, &e) {
		switch e.Kind {
		case errors.KindValidation:
			writeError(w, http.StatusBadRequest, e.Message)
			return
		case errors.KindNotFound:
			writeError(w, http.StatusNotFound, e.Message)
			return
		}
	}

	s.log.Error().Err(err).Msg("request failed")
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func categoryParam(w http.ResponseWriter, r *http.Request) (types.Category, bool) {
	raw, err := pathParam(r, "category")
	if err == nil {
		if c, ok := types.ParseCategory(raw); ok {
			return c, true
		}
	}
	writeError(w, http.StatusBadRequest, "Invalid category")
	return "", false
}

// pathParam returns a decoded URL parameter. chi matches on RawPath when
// the request carries one, and then the parameter is still escaped.
func pathParam(r *http.Request, key string) (string, error) {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v, nil
	}
	return url.PathUnescape(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
