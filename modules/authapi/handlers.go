package authapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/careerpin/backend/pkg/auth"
	"github.com/careerpin/backend/pkg/clientip"
	"github.com/careerpin/backend/pkg/logger"
)

func decode(r *http.Request, into any) bool {
	return json.NewDecoder(r.Body).Decode(into) == nil
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (m *Module) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decode(r, &req) || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	result, err := m.service.LoginWithPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		status, msg := statusFor(err)
		if status == http.StatusInternalServerError {
			m.log.ErrorContext(r.Context(), "login failed", logger.Error(err))
		} else {
			m.log.InfoContext(r.Context(), "login rejected",
				slog.String("ip", clientip.FromRequest(r)),
				slog.Int("status", status),
			)
		}
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (m *Module) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decode(r, &req) || req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	view, err := m.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		status, msg := statusFor(err)
		if status == http.StatusInternalServerError {
			m.log.ErrorContext(r.Context(), "register failed", logger.Error(err))
		}
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (m *Module) handlePasswordResetRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decode(r, &req) || req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	// Reported uniformly regardless of whether the email is registered.
	if err := m.service.InitiatePasswordReset(r.Context(), req.Email); err != nil {
		m.log.ErrorContext(r.Context(), "password reset request failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusAccepted, nil)
}

func (m *Module) handlePasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if !decode(r, &req) || req.Token == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "token and newPassword are required")
		return
	}

	if err := m.service.CompletePasswordReset(r.Context(), req.Token, req.NewPassword); err != nil {
		status, msg := statusFor(err)
		if status == http.StatusInternalServerError {
			m.log.ErrorContext(r.Context(), "password reset failed", logger.Error(err))
		}
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (m *Module) handleVerificationConfirm(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	if err := m.service.ConfirmVerification(r.Context(), token); err != nil {
		status, msg := statusFor(err)
		if status == http.StatusInternalServerError {
			m.log.ErrorContext(r.Context(), "verification failed", logger.Error(err))
		}
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (m *Module) handleVerificationRequest(w http.ResponseWriter, r *http.Request) {
	account, _ := auth.AccountFromContext(r.Context())

	if _, err := m.service.GenerateVerificationToken(r.Context(), account.Email); err != nil {
		m.log.ErrorContext(r.Context(), "verification request failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusAccepted, nil)
}

func (m *Module) handleOAuthBegin(w http.ResponseWriter, r *http.Request) {
	url, err := m.dispatcher.BeginAuth(providerParam(r), r.URL.Query().Get("state"))
	if err != nil {
		status, msg := statusFor(err)
		writeError(w, status, msg)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

func (m *Module) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	verdict, err := m.dispatcher.Activate(r.Context(), providerParam(r), code, r.URL.Query().Get("state"))
	if err != nil {
		status, msg := statusFor(err)
		if status == http.StatusInternalServerError {
			m.log.ErrorContext(r.Context(), "oauth callback failed", logger.Error(err))
		}
		writeError(w, status, msg)
		return
	}

	result, err := m.service.CompleteOAuth(r.Context(), verdict)
	if err != nil {
		status, msg := statusFor(err)
		if status == http.StatusInternalServerError {
			m.log.ErrorContext(r.Context(), "oauth completion failed", logger.Error(err))
		}
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (m *Module) handleOAuthConnect(w http.ResponseWriter, r *http.Request) {
	account, _ := auth.AccountFromContext(r.Context())

	state, err := m.service.IssueOAuthLinkState(account.ID, providerParam(r))
	if err != nil {
		status, msg := statusFor(err)
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": state})
}

func (m *Module) handleOAuthDisconnect(w http.ResponseWriter, r *http.Request) {
	account, _ := auth.AccountFromContext(r.Context())

	if err := m.service.DisconnectOAuth(r.Context(), account.ID, providerParam(r)); err != nil {
		status, msg := notFoundStatusFor(err)
		if status == http.StatusInternalServerError {
			m.log.ErrorContext(r.Context(), "oauth disconnect failed", logger.Error(err))
		}
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (m *Module) handleProfile(w http.ResponseWriter, r *http.Request) {
	account, _ := auth.AccountFromContext(r.Context())

	profile, err := m.service.Profile(r.Context(), account.ID)
	if err != nil {
		status, msg := notFoundStatusFor(err)
		if status == http.StatusInternalServerError {
			m.log.ErrorContext(r.Context(), "profile load failed", logger.Error(err))
		}
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (m *Module) handlePasswordChange(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if !decode(r, &req) || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "newPassword is required")
		return
	}

	account, _ := auth.AccountFromContext(r.Context())
	if err := m.passwords.Change(r.Context(), account.ID, req.CurrentPassword, req.NewPassword); err != nil {
		status, msg := notFoundStatusFor(err)
		if status == http.StatusInternalServerError {
			m.log.ErrorContext(r.Context(), "password change failed", logger.Error(err))
		}
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (m *Module) handleAccountDelete(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decode(r, &req) || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	account, _ := auth.AccountFromContext(r.Context())
	if err := m.passwords.DeleteAccount(r.Context(), account.ID, req.Email, req.Password); err != nil {
		status, msg := notFoundStatusFor(err)
		if status == http.StatusInternalServerError {
			m.log.ErrorContext(r.Context(), "account deletion failed", logger.Error(err))
		}
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}
