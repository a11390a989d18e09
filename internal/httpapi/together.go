package httpapi

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"ourforever/internal/app/media"
	"ourforever/internal/app/notes"
	"ourforever/internal/app/timeline"
	"ourforever/internal/store"
)

// eventResponse is the client view of a timeline event; the blob key stays internal.
type eventResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	EventDate   string          `json:"event_date"`
	Image       *string         `json:"image"`
	CreatedAt   store.Timestamp `json:"created_at"`
	UserID      string          `json:"user_id"`
}

func newEventResponse(e store.Event) eventResponse {
	return eventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		EventDate:   e.EventDate,
		Image:       e.Image,
		CreatedAt:   e.CreatedAt,
		UserID:      e.UserID,
	}
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.Timeline.List(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, newEventResponse(e))
	}
	writeJSON(w, http.StatusOK, struct {
		Events []eventResponse `json:"events"`
	}{Events: out})
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, r, err)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	var image *media.Upload
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		image = &media.Upload{Filename: header.Filename, Body: file}
	}

	event, err := s.Timeline.Create(r.Context(), currentUser(r).ID, timeline.EventInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		EventDate:   r.FormValue("event_date"),
	}, image)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool          `json:"success"`
		ID      string        `json:"id"`
		Event   eventResponse `json:"event"`
	}{Success: true, ID: event.ID, Event: newEventResponse(event)})
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.Timeline.Delete(r.Context(), mux.Vars(r)["id"], currentUser(r).ID); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Event deleted")
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	list, err := s.Notes.List(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Notes []store.Note `json:"notes"`
	}{Notes: list})
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, r, err)
		return
	}
	user := currentUser(r)
	author := strings.TrimSpace(r.FormValue("author"))
	if author == "" {
		author = s.displayName(r, user)
	}
	note, err := s.Notes.Create(r.Context(), user.ID, notes.NoteInput{
		Message: r.FormValue("message"),
		Color:   r.FormValue("color"),
		Author:  author,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool       `json:"success"`
		Note    store.Note `json:"note"`
	}{Success: true, Note: note})
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := s.Notes.Delete(r.Context(), mux.Vars(r)["id"], currentUser(r).ID); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Note deleted")
}

func (s *Server) handleSendKiss(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, r, err)
		return
	}
	user := currentUser(r)
	kiss, err := s.Kisses.Send(r.Context(), user.ID, s.displayName(r, user), r.FormValue("to"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool       `json:"success"`
		Kiss    store.Kiss `json:"kiss"`
	}{Success: true, Kiss: kiss})
}

func (s *Server) handleListKisses(w http.ResponseWriter, r *http.Request) {
	list, err := s.Kisses.List(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Kisses []store.Kiss `json:"kisses"`
	}{Kisses: list})
}

func (s *Server) handleLiveKisses(w http.ResponseWriter, r *http.Request) {
	if s.Live == nil {
		writeMessage(w, http.StatusNotFound, "Not found")
		return
	}
	s.Live.Serve(w, r, currentUser(r).ID)
}

func (s *Server) handleSetMood(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, r, err)
		return
	}
	user := currentUser(r)
	mood, err := s.Moods.Set(r.Context(), user.ID, s.displayName(r, user), r.FormValue("mood"), r.FormValue("message"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool       `json:"success"`
		Mood    store.Mood `json:"mood"`
	}{Success: true, Mood: mood})
}

func (s *Server) handleListMoods(w http.ResponseWriter, r *http.Request) {
	list, err := s.Moods.List(r.Context(), currentUser(r).ID, r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Moods []store.Mood `json:"moods"`
	}{Moods: list})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	summary, err := s.Stats.Summary(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleLoveMeter(w http.ResponseWriter, r *http.Request) {
	meter, err := s.Stats.LoveMeter(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meter)
}
