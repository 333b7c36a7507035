package http

import (
	"net/http"

	applog "finance/internal/log"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type loginResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"userId"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	u, err := s.auth.Register(r.Context(), sanitizeInput(req.Username), req.Password)
	if err != nil {
		writeError(w, r, err, applog.OpRegister)
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "User registered",
		applog.FieldComponent, applog.ComponentAuth,
		applog.FieldUserID, u.ID)
	NewJSONResponse().Status(http.StatusCreated).Body(userResponse{ID: u.ID, Username: u.Username}).Write(w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	token, u, err := s.auth.Login(r.Context(), sanitizeInput(req.Username), req.Password)
	if err != nil {
		writeError(w, r, err, applog.OpLogin)
		return
	}
	NewJSONResponse().Body(loginResponse{Token: token, UserID: u.ID}).Write(w)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), bearerToken(r)); err != nil {
		writeError(w, r, err, "logout")
		return
	}
	NoContent().Write(w)
}
