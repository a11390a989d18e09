package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"ourforever/internal/app/media"
	"ourforever/internal/app/notes"
	"ourforever/internal/app/stats"
	"ourforever/internal/app/timeline"
	"ourforever/internal/app/users"
	"ourforever/internal/store"
)

// UserService captures the account operations needed by the HTTP handlers.
type UserService interface {
	Signup(ctx context.Context, in users.SignupInput) (store.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (store.User, error)
	SetProfileImage(ctx context.Context, user store.User, filename string, body io.Reader) (string, error)
	ProfileImageURL(user store.User) string
}

// MediaService exposes the album workflows.
type MediaService interface {
	List(ctx context.Context, userID string, filter store.MediaFilter) ([]store.Media, error)
	Get(ctx context.Context, id, userID string) (store.Media, error)
	Upload(ctx context.Context, userID string, file media.Upload, details media.Details) (store.Media, error)
	UploadBatch(ctx context.Context, userID string, files []media.Upload, details media.Details) []media.BatchResult
	Update(ctx context.Context, id, userID string, patch store.MediaPatch) (store.Media, error)
	ToggleFavorite(ctx context.Context, id, userID string) (bool, error)
	Delete(ctx context.Context, id, userID string) error
}

// TimelineService manages milestones.
type TimelineService interface {
	List(ctx context.Context, userID string) ([]store.Event, error)
	Create(ctx context.Context, userID string, in timeline.EventInput, image *media.Upload) (store.Event, error)
	Delete(ctx context.Context, id, userID string) error
}

// NoteService manages love notes.
type NoteService interface {
	List(ctx context.Context, userID string) ([]store.Note, error)
	Create(ctx context.Context, userID string, in notes.NoteInput) (store.Note, error)
	Delete(ctx context.Context, id, userID string) error
}

// KissService sends and lists kisses.
type KissService interface {
	List(ctx context.Context, userID string) ([]store.Kiss, error)
	Send(ctx context.Context, userID, from, to string) (store.Kiss, error)
}

// MoodService records daily moods.
type MoodService interface {
	List(ctx context.Context, userID, date string) ([]store.Mood, error)
	Set(ctx context.Context, userID, author, mood, message string) (store.Mood, error)
}

// StatsService computes derived numbers.
type StatsService interface {
	Summary(ctx context.Context, user store.User) (stats.Summary, error)
	LoveMeter(ctx context.Context, userID string) (stats.LoveMeter, error)
}

// IdentitySigner issues and verifies the display-identity token.
type IdentitySigner interface {
	Issue(userID, name string) (string, error)
	Parse(token, userID string) (string, error)
}

// LiveFeed streams new kisses to a connected client.
type LiveFeed interface {
	Serve(w http.ResponseWriter, r *http.Request, userID string)
}

// BlobReader opens stored uploads.
type BlobReader interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Services bundles the dependencies of a Server.
type Services struct {
	Users    UserService
	Media    MediaService
	Timeline TimelineService
	Notes    NoteService
	Kisses   KissService
	Moods    MoodService
	Stats    StatsService
	Identity IdentitySigner
	Live     LiveFeed
	Blobs    BlobReader
}

// Options tunes cookies and request limits.
type Options struct {
	SessionCookie   string
	SessionTTL      time.Duration
	CookieSecure    bool
	DefaultIdentity string
	MaxUploadBytes  int64
}

const (
	identityCookie    = "user_identity"
	identityCookieTTL = 365 * 24 * time.Hour
	multipartMemory   = 32 << 20
)

// Server wires HTTP handlers to the underlying services.
type Server struct {
	Services
	opts Options
}

// New configures a Server.
func New(services Services, opts Options) *Server {
	if opts.SessionCookie == "" {
		opts.SessionCookie = "session_token"
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 7 * 24 * time.Hour
	}
	if opts.DefaultIdentity == "" {
		opts.DefaultIdentity = "prem"
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 512 << 20
	}
	return &Server{Services: services, opts: opts}
}

// Routes exposes the HTTP handlers.
func (s *Server) Routes() http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)
	router.PathPrefix("/uploads/").HandlerFunc(s.handleUpload).Methods(http.MethodGet, http.MethodHead)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(s.limitBody)
	api.HandleFunc("/signup", s.handleSignup).Methods(http.MethodPost)
	api.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)

	private := api.NewRoute().Subrouter()
	private.Use(s.requireUser)

	private.HandleFunc("/me", s.handleMe).Methods(http.MethodGet)
	private.HandleFunc("/profile-image", s.handleGetProfileImage).Methods(http.MethodGet)
	private.HandleFunc("/profile-image", s.handleSetProfileImage).Methods(http.MethodPost)
	private.HandleFunc("/identity", s.handleGetIdentity).Methods(http.MethodGet)
	private.HandleFunc("/identity", s.handleSetIdentity).Methods(http.MethodPost)

	private.HandleFunc("/upload", s.handleUploadMedia).Methods(http.MethodPost)
	private.HandleFunc("/upload-multiple", s.handleUploadMultiple).Methods(http.MethodPost)
	private.HandleFunc("/media", s.handleListMedia("")).Methods(http.MethodGet)
	private.HandleFunc("/images", s.handleListMedia(store.FileTypeImage)).Methods(http.MethodGet)
	private.HandleFunc("/videos", s.handleListMedia(store.FileTypeVideo)).Methods(http.MethodGet)
	private.HandleFunc("/media/{id}", s.handleGetMedia).Methods(http.MethodGet)
	private.HandleFunc("/media/{id}", s.handleUpdateMedia).Methods(http.MethodPatch)
	private.HandleFunc("/media/{id}", s.handleDeleteMedia).Methods(http.MethodDelete)
	private.HandleFunc("/media/{id}/favorite", s.handleToggleFavorite).Methods(http.MethodPost)

	private.HandleFunc("/timeline", s.handleListEvents).Methods(http.MethodGet)
	private.HandleFunc("/timeline", s.handleCreateEvent).Methods(http.MethodPost)
	private.HandleFunc("/timeline/{id}", s.handleDeleteEvent).Methods(http.MethodDelete)

	private.HandleFunc("/notes", s.handleListNotes).Methods(http.MethodGet)
	private.HandleFunc("/notes", s.handleCreateNote).Methods(http.MethodPost)
	private.HandleFunc("/notes/{id}", s.handleDeleteNote).Methods(http.MethodDelete)

	private.HandleFunc("/send-kiss", s.handleSendKiss).Methods(http.MethodPost)
	private.HandleFunc("/kisses", s.handleListKisses).Methods(http.MethodGet)
	private.HandleFunc("/kisses/live", s.handleLiveKisses).Methods(http.MethodGet)

	private.HandleFunc("/mood", s.handleSetMood).Methods(http.MethodPost)
	private.HandleFunc("/moods", s.handleListMoods).Methods(http.MethodGet)

	private.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	private.HandleFunc("/love-meter", s.handleLoveMeter).Methods(http.MethodGet)

	return router
}

func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
		}
		next.ServeHTTP(w, r)
	})
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Success: status < 400, Message: message})
}

// writeError maps service errors onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, store.ErrUnauthorized):
		writeMessage(w, http.StatusUnauthorized, "Not authenticated")
	case errors.Is(err, store.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, store.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Not found")
	case errors.Is(err, store.ErrDuplicateUsername):
		writeMessage(w, http.StatusBadRequest, "Username already exists")
	case errors.Is(err, store.ErrDuplicateEmail):
		writeMessage(w, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, store.ErrInvalidInput), errors.Is(err, media.ErrUnsupportedFileType):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &tooLarge):
		writeMessage(w, http.StatusRequestEntityTooLarge, "Upload too large")
	case errors.Is(err, context.Canceled):
		zerolog.Ctx(r.Context()).Debug().Err(err).Msg("request canceled")
		writeMessage(w, http.StatusServiceUnavailable, "Request canceled")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}
