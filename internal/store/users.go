package store

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrDuplicateUsername signals the username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrDuplicateEmail signals the email is already registered.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrUserNotFound indicates no user matched the lookup.
	ErrUserNotFound = errors.New("user not found")
)

// User is a registered couple account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password"`
	Partner1     string    `json:"partner1"`
	Partner2     string    `json:"partner2"`
	Anniversary  string    `json:"anniversary"`
	ProfileImage string    `json:"profile_image,omitempty"`
	CreatedAt    Timestamp `json:"created_at"`
}

type usersDoc struct {
	Users []User `json:"users"`
}

// CreateUser registers a new user. Username and email are unique, ignoring case.
func (s *Store) CreateUser(ctx context.Context, user User) (User, error) {
	user.Username = strings.TrimSpace(user.Username)
	user.Email = strings.TrimSpace(user.Email)
	if user.Username == "" || user.Email == "" || user.PasswordHash == "" {
		return User{}, invalid("username, email and password are required")
	}

	err := s.users.update(ctx, func(doc *usersDoc) error {
		for _, existing := range doc.Users {
			if strings.EqualFold(existing.Username, user.Username) {
				return ErrDuplicateUsername
			}
			if strings.EqualFold(existing.Email, user.Email) {
				return ErrDuplicateEmail
			}
		}
		if user.ID == "" {
			user.ID = newID()
		}
		if user.CreatedAt.IsZero() {
			user.CreatedAt = s.timestamp()
		}
		doc.Users = append(doc.Users, user)
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// UserByUsername looks a user up by username, ignoring case.
func (s *Store) UserByUsername(ctx context.Context, username string) (User, error) {
	username = strings.TrimSpace(username)
	return s.findUser(ctx, func(u User) bool { return strings.EqualFold(u.Username, username) })
}

// UserByEmail looks a user up by email, ignoring case.
func (s *Store) UserByEmail(ctx context.Context, email string) (User, error) {
	email = strings.TrimSpace(email)
	return s.findUser(ctx, func(u User) bool { return strings.EqualFold(u.Email, email) })
}

// UserByID looks a user up by id.
func (s *Store) UserByID(ctx context.Context, id string) (User, error) {
	return s.findUser(ctx, func(u User) bool { return u.ID == id })
}

func (s *Store) findUser(ctx context.Context, match func(User) bool) (User, error) {
	doc, err := s.users.read(ctx)
	if err != nil {
		return User{}, err
	}
	for _, u := range doc.Users {
		if match(u) {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

// SetProfileImage records the stored file name of the user's profile picture.
func (s *Store) SetProfileImage(ctx context.Context, userID, filename string) error {
	return s.updateUser(ctx, userID, func(u *User) { u.ProfileImage = filename })
}

// SetPasswordHash replaces the stored password hash.
func (s *Store) SetPasswordHash(ctx context.Context, userID, hash string) error {
	if hash == "" {
		return invalid("password hash is required")
	}
	return s.updateUser(ctx, userID, func(u *User) { u.PasswordHash = hash })
}

func (s *Store) updateUser(ctx context.Context, userID string, fn func(*User)) error {
	return s.users.update(ctx, func(doc *usersDoc) error {
		for i := range doc.Users {
			if doc.Users[i].ID == userID {
				fn(&doc.Users[i])
				return nil
			}
		}
		return ErrUserNotFound
	})
}
