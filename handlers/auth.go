package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"iap-backoffice/middleware"
	"iap-backoffice/models"
	"iap-backoffice/services/auth"
	"iap-backoffice/utils"
)

type Authenticator interface {
	Authenticate(username, password string) (*models.AuthResponse, error)
}

type AuthHandler struct {
	auth     Authenticator
	sessions sessions.Store
	logger   *zap.SugaredLogger
}

func NewAuthHandler(a Authenticator, store sessions.Store, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{auth: a, sessions: store, logger: logger}
}

// Login returns an access token and also stores it in the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	resp, err := h.auth.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.Infof("Failed login for %s from %s", req.Username, r.RemoteAddr)
			utils.SendErrorResponse(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		h.logger.Errorf("Login error for %s: %v", req.Username, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Login failed")
		return
	}

	session, _ := h.sessions.Get(r, middleware.SessionName)
	session.Values[middleware.SessionTokenKey] = resp.Token
	session.Options.MaxAge = int(auth.AccessTokenDuration.Seconds())
	if err := session.Save(r, w); err != nil {
		h.logger.Errorf("Error saving session for %s: %v", req.Username, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Login failed")
		return
	}

	h.logger.Infof("Admin %s logged in", resp.User.Username)
	utils.SendSuccessResponse(w, models.APIResponse{Data: resp})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.sessions.Get(r, middleware.SessionName)
	delete(session.Values, middleware.SessionTokenKey)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		h.logger.Errorf("Error clearing session: %v", err)
	}
	utils.SendSuccessResponse(w, models.APIResponse{Message: "Logged out"})
}
