package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ourforever/internal/app/users"
	"ourforever/internal/store"
)

type userResponse struct {
	ID           string  `json:"id"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	Partner1     string  `json:"partner1"`
	Partner2     string  `json:"partner2"`
	Anniversary  string  `json:"anniversary"`
	ProfileImage *string `json:"profile_image"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, r, err)
		return
	}
	_, err := s.Users.Signup(r.Context(), users.SignupInput{
		Username:    r.FormValue("username"),
		Email:       r.FormValue("email"),
		Password:    r.FormValue("password"),
		Partner1:    r.FormValue("partner1"),
		Partner2:    r.FormValue("partner2"),
		Anniversary: r.FormValue("anniversary"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Account created successfully")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, r, err)
		return
	}
	token, err := s.Users.Login(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.setCookie(w, s.opts.SessionCookie, token, s.opts.SessionTTL)
	writeMessage(w, http.StatusOK, "Login successful")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(s.opts.SessionCookie); err == nil && cookie.Value != "" {
		if err := s.Users.Logout(r.Context(), cookie.Value); err != nil {
			writeError(w, r, err)
			return
		}
	}
	s.clearCookie(w, s.opts.SessionCookie)
	writeMessage(w, http.StatusOK, "Logged out")
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	resp := userResponse{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Partner1:    user.Partner1,
		Partner2:    user.Partner2,
		Anniversary: user.Anniversary,
	}
	if url := s.Users.ProfileImageURL(user); url != "" {
		resp.ProfileImage = &url
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool         `json:"success"`
		User    userResponse `json:"user"`
	}{Success: true, User: resp})
}

func (s *Server) handleGetProfileImage(w http.ResponseWriter, r *http.Request) {
	var url *string
	if u := s.Users.ProfileImageURL(currentUser(r)); u != "" {
		url = &u
	}
	writeJSON(w, http.StatusOK, struct {
		ProfileImage *string `json:"profile_image"`
	}{ProfileImage: url})
}

func (s *Server) handleSetProfileImage(w http.ResponseWriter, r *http.Request) {
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

	url, err := s.Users.SetProfileImage(r.Context(), currentUser(r), header.Filename, file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success      bool   `json:"success"`
		ProfileImage string `json:"profile_image"`
		Message      string `json:"message"`
	}{Success: true, ProfileImage: url, Message: "Profile image updated"})
}

type identityResponse struct {
	Success bool   `json:"success"`
	Name    string `json:"name"`
}

func (s *Server) handleGetIdentity(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, identityResponse{Success: true, Name: s.displayName(r, currentUser(r))})
}

func (s *Server) handleSetIdentity(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, r, err)
		return
	}
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		writeMessage(w, http.StatusBadRequest, "name is required")
		return
	}
	token, err := s.Identity.Issue(currentUser(r).ID, name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.setCookie(w, identityCookie, token, identityCookieTTL)
	writeJSON(w, http.StatusOK, identityResponse{Success: true, Name: name})
}

// parseForm accepts url-encoded and multipart bodies.
func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	return formError(err)
}

func formError(err error) error {
	if err == nil {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
}
