package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/atlasimmo/atlas-immo-api/internal/domain"
	"github.com/atlasimmo/atlas-immo-api/internal/service"
	"github.com/atlasimmo/atlas-immo-api/internal/util"
)

// Client-facing auth messages are French; they are deliberately vague where
// precision would allow account enumeration.
const (
	msgInvalidCredentials  = "Identifiants invalides"
	msgDuplicateEmail      = "Cet email est déjà utilisé"
	msgWeakPassword        = "Le mot de passe doit contenir au moins 6 caractères"
	msgResetRequested      = "Si un compte existe avec cet email, un lien de réinitialisation a été envoyé"
	msgInvalidResetToken   = "Lien de réinitialisation invalide ou expiré"
	msgPasswordReset       = "Votre mot de passe a été réinitialisé"
	msgPasswordChanged     = "Votre mot de passe a été modifié"
	msgInvalidRequestBody  = "Requête invalide"
	msgEmailRequired       = "Email requis"
	msgInvalidGoogleToken  = "Jeton Google invalide"
	msgInternalServerError = "Une erreur interne est survenue"
)

type AuthHandler struct {
	auth *service.AuthService
}

func RegisterAuth(e *echo.Echo, auth *service.AuthService) {
	handler := &AuthHandler{auth: auth}

	group := e.Group("/api/auth")
	group.POST("/register", handler.register)
	group.POST("/login", handler.login)
	group.POST("/google", handler.loginWithGoogle)
	group.POST("/reset-password-request", handler.requestPasswordReset)
	group.POST("/verify-reset-token", handler.verifyResetToken)
	group.POST("/reset-password", handler.resetPassword)

	protected := e.Group("/api/auth", RequireAuth(auth))
	protected.GET("/profile", handler.profile)
	protected.PUT("/password", handler.changePassword)
}

func (h *AuthHandler) register(c echo.Context) error {
	var req struct {
		Email     string  `json:"email"`
		Password  string  `json:"password"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail(msgInvalidRequestBody))
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, util.Fail(msgInvalidRequestBody))
	}

	user, err := h.auth.Register(c.Request().Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateEmail):
			return c.JSON(http.StatusBadRequest, util.Fail(msgDuplicateEmail))
		case errors.Is(err, service.ErrWeakPassword):
			return c.JSON(http.StatusBadRequest, util.Fail(msgWeakPassword))
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.JSON(http.StatusBadRequest, util.Fail(msgInvalidRequestBody))
		default:
			return c.JSON(http.StatusInternalServerError, util.Fail(msgInternalServerError))
		}
	}

	return c.JSON(http.StatusCreated, util.Data(userResponse(user)))
}

func (h *AuthHandler) login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail(msgInvalidRequestBody))
	}

	result, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, util.Fail(msgInvalidCredentials))
		}
		return c.JSON(http.StatusInternalServerError, util.Fail(msgInternalServerError))
	}

	return c.JSON(http.StatusOK, loginResponse(result))
}

func (h *AuthHandler) loginWithGoogle(c echo.Context) error {
	var req struct {
		IDToken string `json:"id_token"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail(msgInvalidRequestBody))
	}
	if strings.TrimSpace(req.IDToken) == "" {
		return c.JSON(http.StatusBadRequest, util.Fail(msgInvalidRequestBody))
	}

	result, err := h.auth.LoginWithGoogle(c.Request().Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidGoogleToken) {
			return c.JSON(http.StatusUnauthorized, util.Fail(msgInvalidGoogleToken))
		}
		return c.JSON(http.StatusInternalServerError, util.Fail(msgInternalServerError))
	}

	return c.JSON(http.StatusOK, loginResponse(result))
}

// requestPasswordReset answers with the same generic body for known and
// unknown emails.
func (h *AuthHandler) requestPasswordReset(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail(msgInvalidRequestBody))
	}
	if strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, util.Fail(msgEmailRequired))
	}

	if err := h.auth.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return c.JSON(http.StatusInternalServerError, util.Fail(msgInternalServerError))
	}
	return c.JSON(http.StatusOK, util.OK(msgResetRequested))
}

func (h *AuthHandler) verifyResetToken(c echo.Context) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail(msgInvalidRequestBody))
	}

	email, err := h.auth.VerifyResetToken(c.Request().Context(), req.Token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOrExpiredToken) {
			return c.JSON(http.StatusBadRequest, util.Fail(msgInvalidResetToken))
		}
		return c.JSON(http.StatusInternalServerError, util.Fail(msgInternalServerError))
	}

	return c.JSON(http.StatusOK, util.Envelope{"success": true, "email": email})
}

func (h *AuthHandler) resetPassword(c echo.Context) error {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail(msgInvalidRequestBody))
	}

	if err := h.auth.ApplyPasswordReset(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOrExpiredToken):
			return c.JSON(http.StatusBadRequest, util.Fail(msgInvalidResetToken))
		case errors.Is(err, service.ErrWeakPassword):
			return c.JSON(http.StatusBadRequest, util.Fail(msgWeakPassword))
		default:
			return c.JSON(http.StatusInternalServerError, util.Fail(msgInternalServerError))
		}
	}

	return c.JSON(http.StatusOK, util.OK(msgPasswordReset))
}

func (h *AuthHandler) profile(c echo.Context) error {
	claims, ok := CurrentClaims(c)
	if !ok || claims == nil {
		return c.JSON(http.StatusUnauthorized, util.Fail("authentication required"))
	}

	user, err := h.auth.Profile(c.Request().Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, util.Fail("authentication required"))
		}
		return c.JSON(http.StatusInternalServerError, util.Fail(msgInternalServerError))
	}

	return c.JSON(http.StatusOK, util.Data(userResponse(user)))
}

func (h *AuthHandler) changePassword(c echo.Context) error {
	claims, ok := CurrentClaims(c)
	if !ok || claims == nil {
		return c.JSON(http.StatusUnauthorized, util.Fail("authentication required"))
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Fail(msgInvalidRequestBody))
	}

	if err := h.auth.ChangePassword(c.Request().Context(), claims.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, util.Fail(msgInvalidCredentials))
		case errors.Is(err, service.ErrWeakPassword):
			return c.JSON(http.StatusBadRequest, util.Fail(msgWeakPassword))
		case errors.Is(err, service.ErrUserNotFound):
			return c.JSON(http.StatusUnauthorized, util.Fail("authentication required"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Fail(msgInternalServerError))
		}
	}

	return c.JSON(http.StatusOK, util.OK(msgPasswordChanged))
}

// UserResponse is the public shape of an account; credential and reset fields
// never leave the server.
type UserResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Role      string  `json:"role"`
	CreatedAt string  `json:"created_at"`
}

func userResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Phone:     user.Phone,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func loginResponse(result *service.LoginResult) util.Envelope {
	return util.Envelope{
		"success":    true,
		"token":      result.Token,
		"expires_at": result.ExpiresAt.UTC().Format(time.RFC3339),
		"data":       userResponse(result.User),
	}
}
