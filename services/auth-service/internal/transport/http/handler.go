package handlers

import (
	"errors"
	"net/http"

	"learningcenter/pkg/apierr"
	"learningcenter/pkg/response"
	"learningcenter/pkg/security"
	"learningcenter/services/auth-service/internal/application/usecase"
	"learningcenter/services/auth-service/internal/domain"

	"github.com/gin-gonic/gin"
)

const refreshCookie = "refresh_token"

type AuthHandler struct {
	auth         *usecase.AuthUseCase
	cookieDomain string
	secure       bool
	refreshTTL   int
}

func NewAuthHandler(auth *usecase.AuthUseCase, cookieDomain string, secure bool, refreshTTLSeconds int) *AuthHandler {
	return &AuthHandler{auth: auth, cookieDomain: cookieDomain, secure: secure, refreshTTL: refreshTTLSeconds}
}

type signUpReq struct {
	Username string   `json:"username" binding:"required"`
	Password string   `json:"password" binding:"required,min=6"`
	Roles    []string `json:"roles"`
}

type signInReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type userResource struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

func toUserResource(u *domain.User) userResource {
	return userResource{ID: u.ID.String(), Username: u.Username, Roles: u.Roles}
}

// POST /api/v1/authentication/sign-up
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req signUpReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	user, err := h.auth.SignUp(c.Request.Context(), req.Username, req.Password, req.Roles)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondCreated(c, toUserResource(user))
}

// POST /api/v1/authentication/sign-in
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req signInReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	user, pair, err := h.auth.SignIn(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	h.setRefreshCookie(c, pair.RefreshToken)
	c.JSON(http.StatusOK, gin.H{
		"id":           user.ID.String(),
		"username":     user.Username,
		"roles":        user.Roles,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// POST /api/v1/authentication/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	token := h.refreshToken(c)
	if token == "" {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("refresh token not found"))
		return
	}
	pair, err := h.auth.Refresh(c.Request.Context(), token)
	if err != nil {
		respondError(c, err)
		return
	}
	h.setRefreshCookie(c, pair.RefreshToken)
	c.JSON(http.StatusOK, gin.H{"accessToken": pair.AccessToken, "refreshToken": pair.RefreshToken})
}

// POST /api/v1/authentication/sign-out
func (h *AuthHandler) SignOut(c *gin.Context) {
	token := h.refreshToken(c)
	if token != "" {
		if err := h.auth.SignOut(c.Request.Context(), token); err != nil && !errors.Is(err, security.ErrInvalidToken) {
			respondError(c, err)
			return
		}
	}
	c.SetCookie(refreshCookie, "", -1, "/", h.cookieDomain, h.secure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

func (h *AuthHandler) refreshToken(c *gin.Context) string {
	var req refreshReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
			return req.RefreshToken
		}
	}
	token, _ := c.Cookie(refreshCookie)
	return token
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetCookie(refreshCookie, token, h.refreshTTL, "/", h.cookieDomain, h.secure, true)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrUnknownRole):
		err = apierr.New(http.StatusBadRequest, "validation_failed", err)
	case errors.Is(err, domain.ErrUserAlreadyExists):
		err = apierr.New(http.StatusConflict, "user_already_exists", err)
	case errors.Is(err, domain.ErrInvalidCredentials):
		err = apierr.New(http.StatusUnauthorized, "invalid_credentials", err)
	case errors.Is(err, domain.ErrTokenRevoked), errors.Is(err, security.ErrInvalidToken):
		err = apierr.New(http.StatusUnauthorized, "invalid_refresh_token", errors.New("invalid refresh token"))
	case errors.Is(err, domain.ErrUserNotFound):
		err = apierr.New(http.StatusUnauthorized, "invalid_refresh_token", err)
	}
	response.RespondAPIError(c, err)
}
