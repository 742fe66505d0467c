package http

import (
	"errors"
	"net/http"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

type credentialsView struct {
	Username string
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "register.html", "Register", credentialsView{})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		s.render(w, r, http.StatusBadRequest, "register.html", "Register", credentialsView{},
			Flash{Category: FlashDanger, Message: "Invalid request"})
		return
	}
	username, password := ParseCredentials(r.PostForm)
	view := credentialsView{Username: username}

	user, err := s.auth.Register(ctx, username, password)
	var verr *core.ValidationError
	switch {
	case errors.Is(err, core.ErrDuplicateUsername):
		s.render(w, r, http.StatusConflict, "register.html", "Register", view,
			Flash{Category: FlashWarning, Message: "Username already exists!"})
		return
	case errors.As(err, &verr):
		s.render(w, r, http.StatusUnprocessableEntity, "register.html", "Register", view,
			Flash{Category: FlashDanger, Message: "Registration failed: " + verr.Error()})
		return
	case err != nil:
		applog.FromContext(ctx).ErrorContext(ctx, "Registration failed",
			applog.FieldComponent, applog.ComponentAuth,
			applog.FieldUsername, username,
			applog.FieldError, err)
		s.render(w, r, http.StatusInternalServerError, "register.html", "Register", view,
			Flash{Category: FlashDanger, Message: "Registration failed, please try again."})
		return
	}

	applog.FromContext(ctx).InfoContext(ctx, "User registered",
		applog.FieldComponent, applog.ComponentAuth,
		applog.FieldUserID, user.ID,
		applog.FieldUsername, user.Username)
	s.redirect(w, r, "/login", Flash{Category: FlashSuccess, Message: "Registration successful! You can now log in."})
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login.html", "Login", credentialsView{})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		s.render(w, r, http.StatusBadRequest, "login.html", "Login", credentialsView{},
			Flash{Category: FlashDanger, Message: "Invalid request"})
		return
	}
	username, password := ParseCredentials(r.PostForm)
	view := credentialsView{Username: username}

	user, err := s.auth.Authenticate(ctx, username, password)
	if errors.Is(err, core.ErrInvalidCredentials) {
		applog.FromContext(ctx).WarnContext(ctx, "Login rejected",
			applog.FieldComponent, applog.ComponentAuth,
			applog.FieldUsername, username)
		s.render(w, r, http.StatusUnauthorized, "login.html", "Login", view,
			Flash{Category: FlashDanger, Message: "Invalid credentials"})
		return
	}
	if err != nil {
		s.loginFailed(w, r, view, err)
		return
	}

	sess, err := s.sessions.Start(ctx, w, user)
	if err != nil {
		s.loginFailed(w, r, view, err)
		return
	}

	applog.FromContext(ctx).InfoContext(ctx, "User logged in",
		applog.FieldComponent, applog.ComponentAuth,
		applog.FieldUserID, sess.UserID,
		applog.FieldUsername, sess.Username)
	s.redirect(w, r, "/home", Flash{Category: FlashSuccess, Message: "Login successful!"})
}

func (s *Server) loginFailed(w http.ResponseWriter, r *http.Request, view credentialsView, err error) {
	applog.FromContext(r.Context()).ErrorContext(r.Context(), "Login failed",
		applog.FieldComponent, applog.ComponentAuth,
		applog.FieldUsername, view.Username,
		applog.FieldError, err)
	s.render(w, r, http.StatusInternalServerError, "login.html", "Login", view,
		Flash{Category: FlashDanger, Message: "Login failed, please try again."})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.End(w, r)
	s.redirect(w, r, "/login", Flash{Category: FlashInfo, Message: "Logged out successfully!"})
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "home.html", "Home", nil)
}
