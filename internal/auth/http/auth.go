package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/session"
	"github.com/aussiebroadwan/gatekeeper/pkg/authsdk"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
)

const MsgLoggedOut = "Logged out"

// AuthHandler serves the /api/auth endpoints.
type AuthHandler struct {
	AuthService *service.AuthService
	Secure      bool
	responder
}

// sessionHandle returns the request's session as a service.SessionHandle,
// or nil when no session middleware ran.
func sessionHandle(r *http.Request) service.SessionHandle {
	if h := session.FromContext(r.Context()); h != nil {
		return h
	}
	return nil
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// HandleRegister godoc
//
//	@Summary		Register a new account
//	@Description	Creates a user, sets the token and session cookies and returns the token in the body.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest	true	"Account details"
//	@Success		201		{object}	authsdk.AuthResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"Validation failed or email already in use"
//	@Failure		429		{object}	authsdk.ErrorResponse
//	@Router			/api/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.AuthService.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}, sessionHandle(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	http.SetCookie(w, tokenCookie(res.Token, h.Secure))
	httpx.WriteJSON(w, http.StatusCreated, authsdk.AuthResponse{
		Success: true,
		Token:   res.Token.Value,
		User: authsdk.User{
			ID:        res.User.ID,
			Name:      res.User.Name,
			Email:     res.User.Email,
			CreatedAt: timePtr(res.User.CreatedAt),
		},
	})
}

// HandleLogin godoc
//
//	@Summary		Log in with email and password
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.AuthResponse
//	@Failure		400		{object}	authsdk.ErrorResponse
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid credentials"
//	@Failure		429		{object}	authsdk.ErrorResponse
//	@Router			/api/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.AuthService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, sessionHandle(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	http.SetCookie(w, tokenCookie(res.Token, h.Secure))
	httpx.WriteJSON(w, http.StatusOK, authsdk.AuthResponse{
		Success: true,
		Token:   res.Token.Value,
		User: authsdk.User{
			ID:    res.User.ID,
			Name:  res.User.Name,
			Email: res.User.Email,
		},
	})
}

// HandleMe godoc
//
//	@Summary	Current user
//	@Tags		Auth
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	authsdk.MeResponse
//	@Failure	401	{object}	authsdk.ErrorResponse
//	@Router		/api/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.AuthService.GetMe(r.Context(), UserFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MeResponse{
		Success: true,
		User:    publicUser(u),
	})
}

// HandleChangePassword godoc
//
//	@Summary	Change the current user's password
//	@Tags		Auth
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		authsdk.ChangePasswordRequest	true	"Current and new password"
//	@Success	200		{object}	authsdk.MessageResponse
//	@Failure	400		{object}	authsdk.ErrorResponse
//	@Failure	401		{object}	authsdk.ErrorResponse	"Not authenticated or current password is incorrect"
//	@Router		/api/auth/change-password [put].
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ChangePasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	err := h.AuthService.ChangePassword(r.Context(), UserFromContext(r.Context()), service.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{
		Success: true,
		Message: service.MsgPasswordUpdated,
	})
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Destroys the session and clears both cookies. Always succeeds.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.MessageResponse
//	@Router			/api/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.AuthService.Logout(r.Context(), sessionHandle(r))
	clearTokenCookie(w, h.Secure)

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{
		Success: true,
		Message: MsgLoggedOut,
	})
}

func publicUser(u domain.PublicUser) authsdk.User {
	return authsdk.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role.String(),
		CreatedAt: timePtr(u.CreatedAt),
		UpdatedAt: timePtr(u.UpdatedAt),
	}
}
