package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"ourforever/internal/app/media"
	"ourforever/internal/store"
)

type mediaListResponse struct {
	Media []store.Media `json:"media"`
	Total int           `json:"total"`
}

func (s *Server) handleUploadMedia(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, r, formError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	item, err := s.Media.Upload(r.Context(), currentUser(r).ID, media.Upload{Filename: header.Filename, Body: file}, media.Details{
		Category:  r.FormValue("category"),
		Caption:   r.FormValue("caption"),
		DateTaken: r.FormValue("date_taken"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success  bool           `json:"success"`
		ID       string         `json:"id"`
		Filename string         `json:"filename"`
		FileType store.FileType `json:"file_type"`
		Message  string         `json:"message"`
	}{Success: true, ID: item.ID, Filename: item.Filename, FileType: item.FileType, Message: "File uploaded successfully"})
}

func (s *Server) handleUploadMultiple(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, r, formError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeMessage(w, http.StatusBadRequest, "files are required")
		return
	}

	files := make([]media.Upload, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			files = append(files, media.Upload{Filename: header.Filename, Body: errReader{fmt.Errorf("open upload: %w", err)}})
			continue
		}
		defer file.Close()
		files = append(files, media.Upload{Filename: header.Filename, Body: file})
	}

	details := media.Details{Category: r.FormValue("category"), Caption: r.FormValue("caption")}
	results := s.Media.UploadBatch(r.Context(), currentUser(r).ID, files, details)
	writeJSON(w, http.StatusOK, struct {
		Results []media.BatchResult `json:"results"`
	}{Results: results})
}

// errReader reports a part that could not be opened through the normal
// per-file error path.
type errReader struct{ err error }

func (e errReader) Read([]byte) (int, error) { return 0, e.err }

func (s *Server) handleListMedia(fileType store.FileType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := store.MediaFilter{FileType: fileType, Category: r.URL.Query().Get("category")}
		if fileType == "" {
			filter.FileType = store.FileType(r.URL.Query().Get("file_type"))
		}
		items, err := s.Media.List(r.Context(), currentUser(r).ID, filter)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, mediaListResponse{Media: items, Total: len(items)})
	}
}

func (s *Server) handleGetMedia(w http.ResponseWriter, r *http.Request) {
	item, err := s.Media.Get(r.Context(), mux.Vars(r)["id"], currentUser(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleUpdateMedia(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, r, err)
		return
	}

	var patch store.MediaPatch
	patch.Category = formField(r, "category")
	patch.Caption = formField(r, "caption")
	patch.DateTaken = formField(r, "date_taken")
	if raw := formField(r, "is_favorite"); raw != nil {
		fav, err := strconv.ParseBool(*raw)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "is_favorite must be true or false")
			return
		}
		patch.IsFavorite = &fav
	}

	item, err := s.Media.Update(r.Context(), mux.Vars(r)["id"], currentUser(r).ID, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	favorite, err := s.Media.ToggleFavorite(r.Context(), mux.Vars(r)["id"], currentUser(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success    bool `json:"success"`
		IsFavorite bool `json:"is_favorite"`
	}{Success: true, IsFavorite: favorite})
}

func (s *Server) handleDeleteMedia(w http.ResponseWriter, r *http.Request) {
	if err := s.Media.Delete(r.Context(), mux.Vars(r)["id"], currentUser(r).ID); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Media deleted successfully")
}

// formField returns nil when key was not submitted.
func formField(r *http.Request, key string) *string {
	values, ok := r.Form[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}
