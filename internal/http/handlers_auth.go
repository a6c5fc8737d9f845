package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"lotbook/internal/auth"
	"lotbook/internal/core"
)

const minPasswordLen = 8

type registerPayload struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var p registerPayload
	if err := decodeJSON(r, &p); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p.Email = strings.TrimSpace(p.Email)
	ve := &core.ValidationError{}
	if p.Email == "" {
		ve.Fields = append(ve.Fields, core.FieldError{Field: "email", Message: "email is required"})
	} else if !strings.Contains(p.Email, "@") || strings.ContainsAny(p.Email, " \t") || len(p.Email) > 255 {
		ve.Fields = append(ve.Fields, core.FieldError{Field: "email", Message: "email is not valid"})
	}
	if len(p.Password) < minPasswordLen {
		ve.Fields = append(ve.Fields, core.FieldError{Field: "password", Message: "password must be at least 8 characters"})
	}
	if len(ve.Fields) > 0 {
		writeValidationError(w, "Invalid registration data", ve)
		return
	}

	if _, err := s.store.GetUserByEmail(r.Context(), p.Email); err == nil {
		writeMessage(w, http.StatusConflict, "Email already registered")
		return
	} else if !errors.Is(err, core.ErrNotFound) {
		slog.ErrorContext(r.Context(), "Register lookup failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	hash, err := auth.HashPassword(p.Password)
	if err != nil {
		slog.ErrorContext(r.Context(), "Password hashing failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	user, err := s.store.CreateUser(r.Context(), core.NewUser{
		Email:        p.Email,
		PasswordHash: hash,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "User creation failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	s.setSessionCookie(w, s.sessions.Create(user.ID))
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var p loginPayload
	if err := decodeJSON(r, &p); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), strings.TrimSpace(p.Email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		slog.ErrorContext(r.Context(), "Login lookup failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	if !auth.CheckPasswordHash(p.Password, user.PasswordHash) {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	s.setSessionCookie(w, s.sessions.Create(user.ID))
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		s.sessions.Revoke(cookie.Value)
	}
	clearSessionCookie(w)
	writeMessage(w, http.StatusOK, "Logged out")
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request, userID int64) {
	user, err := s.store.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// Session survived the account; treat as logged out.
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		slog.ErrorContext(r.Context(), "Current user lookup failed", "error", err, "user_id", userID)
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, session auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
