package users

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ourforever/internal/app/media"
	"ourforever/internal/auth"
	"ourforever/internal/blob"
	"ourforever/internal/store"
)

// Store describes the persistence operations required by the user service.
type Store interface {
	CreateUser(ctx context.Context, user store.User) (store.User, error)
	UserByUsername(ctx context.Context, username string) (store.User, error)
	SetPasswordHash(ctx context.Context, userID, hash string) error
	SetProfileImage(ctx context.Context, userID, filename string) error
	CreateSession(ctx context.Context, userID string) (string, error)
	ResolveSession(ctx context.Context, token string) (store.User, error)
	DeleteSession(ctx context.Context, token string) error
}

// SignupInput carries the registration form.
type SignupInput struct {
	Username    string
	Email       string
	Password    string
	Partner1    string
	Partner2    string
	Anniversary string
}

// Service exposes account and session workflows.
type Service interface {
	Signup(ctx context.Context, in SignupInput) (store.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (store.User, error)
	SetProfileImage(ctx context.Context, user store.User, filename string, body io.Reader) (string, error)
	ProfileImageURL(user store.User) string
}

type service struct {
	store Store
	blobs blob.Store
}

// New wires a Service backed by the provided Store and blob storage.
func New(store Store, blobs blob.Store) Service {
	return &service{store: store, blobs: blobs}
}

func (s *service) Signup(ctx context.Context, in SignupInput) (store.User, error) {
	if err := ctx.Err(); err != nil {
		return store.User{}, err
	}
	if strings.TrimSpace(in.Username) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return store.User{}, fmt.Errorf("%w: username, email and password are required", store.ErrInvalidInput)
	}
	anniversary := strings.TrimSpace(in.Anniversary)
	if anniversary != "" {
		if _, err := time.Parse(time.DateOnly, anniversary); err != nil {
			return store.User{}, fmt.Errorf("%w: anniversary must be YYYY-MM-DD", store.ErrInvalidInput)
		}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return store.User{}, err
	}
	return s.store.CreateUser(ctx, store.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Partner1:     strings.TrimSpace(in.Partner1),
		Partner2:     strings.TrimSpace(in.Partner2),
		Anniversary:  anniversary,
	})
}

func (s *service) Login(ctx context.Context, username, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	user, err := s.store.UserByUsername(ctx, username)
	if errors.Is(err, store.ErrUserNotFound) {
		auth.BurnCompare(password)
		return "", store.ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrMismatch) {
			return "", store.ErrInvalidCredentials
		}
		return "", err
	}

	if auth.NeedsRehash(user.PasswordHash) {
		s.upgradeHash(ctx, user.ID, password)
	}
	return s.store.CreateSession(ctx, user.ID)
}

func (s *service) upgradeHash(ctx context.Context, userID, password string) {
	logger := zerolog.Ctx(ctx)
	hash, err := auth.HashPassword(password)
	if err == nil {
		err = s.store.SetPasswordHash(ctx, userID, hash)
	}
	if err != nil {
		logger.Warn().Err(err).Str("user_id", userID).Msg("upgrade legacy password hash")
		return
	}
	logger.Info().Str("user_id", userID).Msg("upgraded legacy password hash")
}

func (s *service) Logout(ctx context.Context, token string) error {
	return s.store.DeleteSession(ctx, token)
}

func (s *service) Authenticate(ctx context.Context, token string) (store.User, error) {
	if err := ctx.Err(); err != nil {
		return store.User{}, err
	}
	return s.store.ResolveSession(ctx, token)
}

func (s *service) SetProfileImage(ctx context.Context, user store.User, filename string, body io.Reader) (string, error) {
	if !media.IsImage(filename) {
		return "", fmt.Errorf("%w: only image files allowed", media.ErrUnsupportedFileType)
	}

	name := user.ID + media.Ext(filename)
	if _, err := s.blobs.Put(ctx, profileKey(name), body); err != nil {
		return "", fmt.Errorf("save profile image: %w", err)
	}
	if err := s.store.SetProfileImage(ctx, user.ID, name); err != nil {
		// The old record still points at name when the extension is unchanged.
		if name != user.ProfileImage {
			if delErr := s.blobs.Delete(ctx, profileKey(name)); delErr != nil {
				zerolog.Ctx(ctx).Warn().Err(delErr).Str("user_id", user.ID).Msg("remove orphaned profile image")
			}
		}
		return "", err
	}

	if user.ProfileImage != "" && user.ProfileImage != name {
		if err := s.blobs.Delete(ctx, profileKey(user.ProfileImage)); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("user_id", user.ID).Msg("remove previous profile image")
		}
	}
	return s.blobs.URL(profileKey(name)), nil
}

func (s *service) ProfileImageURL(user store.User) string {
	if user.ProfileImage == "" {
		return ""
	}
	return s.blobs.URL(profileKey(user.ProfileImage))
}

func profileKey(name string) string {
	return blob.Key("profiles", name)
}
