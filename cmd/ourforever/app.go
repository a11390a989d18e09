package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/rs/zerolog"

	"ourforever/internal/app/kisses"
	"ourforever/internal/app/media"
	"ourforever/internal/app/moods"
	"ourforever/internal/app/notes"
	"ourforever/internal/app/stats"
	"ourforever/internal/app/timeline"
	"ourforever/internal/app/users"
	"ourforever/internal/auth"
	"ourforever/internal/blob"
	"ourforever/internal/config"
	"ourforever/internal/docstore"
	"ourforever/internal/http/middleware"
	"ourforever/internal/httpapi"
	"ourforever/internal/kissfeed"
	"ourforever/internal/store"
)

// uploadsPath is where the API serves files kept by the blob store.
const uploadsPath = "/uploads"

type app struct {
	Handler http.Handler
	db      *sql.DB
}

func (a *app) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{}

	docs, err := a.openDocuments(ctx, cfg.Storage)
	if err != nil {
		a.Close()
		return nil, err
	}

	blobs, err := openBlobs(ctx, cfg.Blob)
	if err != nil {
		a.Close()
		return nil, err
	}

	secret, err := identitySecret(cfg.Identity, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	dataStore := store.New(docs, store.WithSessionTTL(cfg.Session.TTL))
	feed := kissfeed.NewHub(logger, middleware.OriginChecker(cfg.CORS.AllowedOrigins))

	server := httpapi.New(httpapi.Services{
		Users:    users.New(dataStore, blobs),
		Media:    media.New(dataStore, blobs),
		Timeline: timeline.New(dataStore, blobs),
		Notes:    notes.New(dataStore),
		Kisses:   kisses.New(dataStore, feed),
		Moods:    moods.New(dataStore),
		Stats:    stats.New(dataStore),
		Identity: auth.NewIdentity(secret, 0),
		Live:     feed,
		Blobs:    blobs,
	}, httpapi.Options{
		SessionCookie:   cfg.Session.CookieName,
		SessionTTL:      cfg.Session.TTL,
		CookieSecure:    cfg.Session.CookieSecure,
		DefaultIdentity: cfg.Identity.DefaultName,
		MaxUploadBytes:  cfg.Server.MaxUploadBytes,
	})

	handler := middleware.Recovery()(server.Routes())
	handler = middleware.RequestLogging(logger)(handler)
	a.Handler = middleware.CORS(cfg.CORS.AllowedOrigins)(handler)
	return a, nil
}

func (a *app) openDocuments(ctx context.Context, cfg config.StorageConfig) (docstore.Store, error) {
	switch cfg.Backend {
	case config.StorageMemory:
		zerolog.Ctx(ctx).Warn().Msg("memory storage selected; data is lost on restart")
		return docstore.NewMemoryStore(), nil
	case config.StoragePostgres:
		db, err := connectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.db = db
		if err := docstore.Migrate(db); err != nil {
			return nil, err
		}
		return docstore.NewPostgresStore(db), nil
	default:
		files, err := docstore.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		zerolog.Ctx(ctx).Info().Str("dir", files.Dir()).Msg("file storage ready")
		return files, nil
	}
}

func openBlobs(ctx context.Context, cfg config.BlobConfig) (blob.Store, error) {
	if cfg.Backend == config.BlobS3 {
		return blob.NewS3(ctx, blob.S3Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			PublicURL: cfg.S3.PublicURL,
			BaseURL:   uploadsPath,
		})
	}
	dir, err := filepath.Abs(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	return blob.NewLocal(dir, uploadsPath)
}

// identitySecret falls back to a per-process key, which invalidates identity
// cookies on every restart.
func identitySecret(cfg config.IdentityConfig, logger zerolog.Logger) ([]byte, error) {
	if cfg.Secret != "" {
		return []byte(cfg.Secret), nil
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate identity secret: %w", err)
	}
	logger.Warn().Msg("IDENTITY_SECRET not set; using a random key for this process")
	return secret, nil
}
