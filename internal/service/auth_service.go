package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/api/idtoken"

	"github.com/atlasimmo/atlas-immo-api/internal/domain"
	"github.com/atlasimmo/atlas-immo-api/internal/repository/ports"
	"github.com/atlasimmo/atlas-immo-api/internal/transport/mail"
	"github.com/atlasimmo/atlas-immo-api/internal/util"
)

var (
	ErrDuplicateEmail        = errors.New("email already registered")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired reset token")
	ErrWeakPassword          = errors.New("password below minimum length")
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidGoogleToken    = errors.New("invalid google token")
)

type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthService owns the credential lifecycle: registration, login, bearer
// token issuance and the single-use password-reset flow.
type AuthService struct {
	users           ports.UserRepository
	jwt             *util.JWTManager
	notifier        mail.Notifier
	googleAudience  string
	resetTTL        time.Duration
	frontendBaseURL string
	notifyTimeout   time.Duration
}

func NewAuthService(users ports.UserRepository, jwt *util.JWTManager, notifier mail.Notifier, googleAudience, frontendBaseURL string, resetTTL time.Duration) *AuthService {
	if resetTTL <= 0 {
		resetTTL = time.Hour
	}
	return &AuthService{
		users:           users,
		jwt:             jwt,
		notifier:        notifier,
		googleAudience:  googleAudience,
		resetTTL:        resetTTL,
		frontendBaseURL: strings.TrimRight(frontendBaseURL, "/"),
		notifyTimeout:   15 * time.Second,
	}
}

func (s *AuthService) Register(ctx context.Context, email, password string, firstName, lastName *string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	if err := util.ValidateNewPassword(password); err != nil {
		return nil, ErrWeakPassword
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, email, hash, firstName, lastName)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return user, nil
}

// Login deliberately collapses "unknown email" and "wrong password" into the
// same error so responses cannot be used to enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.PasswordHash == nil || !util.VerifyPassword(password, *user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.jwt.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) LoginWithGoogle(ctx context.Context, idTok string) (*LoginResult, error) {
	payload, err := idtoken.Validate(ctx, idTok, s.googleAudience)
	if err != nil {
		return nil, ErrInvalidGoogleToken
	}
	email, _ := payload.Claims["email"].(string)
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidGoogleToken
	}

	var firstName, lastName *string
	if given, ok := payload.Claims["given_name"].(string); ok && given != "" {
		firstName = &given
	}
	if family, ok := payload.Claims["family_name"].(string); ok && family != "" {
		lastName = &family
	}

	user, err := s.users.UpsertGoogleUser(ctx, email, firstName, lastName)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.jwt.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// RequestPasswordReset succeeds whether or not the email belongs to an
// account; callers always receive the same generic outcome. A fresh token
// replaces any pending one.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return nil
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}

	token, err := util.GenerateResetToken()
	if err != nil {
		return err
	}
	expiresAt := time.Now().Add(s.resetTTL)
	if err := s.users.SetResetToken(ctx, user.ID, token, expiresAt); err != nil {
		return err
	}

	link := s.resetLink(token)
	s.dispatch(user.Email, "Réinitialisation de votre mot de passe",
		fmt.Sprintf(`<p>Bonjour,</p>
<p>Vous avez demandé la réinitialisation de votre mot de passe Atlas Immo.</p>
<p><a href="%s">Cliquez ici pour choisir un nouveau mot de passe</a>. Ce lien expire dans une heure.</p>
<p>Si vous n'êtes pas à l'origine de cette demande, ignorez cet email.</p>`, link))
	return nil
}

func (s *AuthService) VerifyResetToken(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidOrExpiredToken
	}

	user, err := s.users.FindByResetToken(ctx, token, time.Now())
	if err != nil {
		if isNotFound(err) {
			return "", ErrInvalidOrExpiredToken
		}
		return "", err
	}
	return user.Email, nil
}

// ApplyPasswordReset validates the new password before touching the token,
// then swaps hash and token in one conditional repository update so the token
// is single-use even under concurrent calls.
func (s *AuthService) ApplyPasswordReset(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidOrExpiredToken
	}
	if err := util.ValidateNewPassword(newPassword); err != nil {
		return ErrWeakPassword
	}

	hash, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}

	user, err := s.users.ConsumeResetToken(ctx, token, hash, time.Now())
	if err != nil {
		if isNotFound(err) {
			return ErrInvalidOrExpiredToken
		}
		return err
	}

	s.dispatch(user.Email, "Votre mot de passe a été modifié",
		`<p>Bonjour,</p>
<p>Le mot de passe de votre compte Atlas Immo vient d'être modifié.</p>
<p>Si vous n'êtes pas à l'origine de ce changement, contactez le support immédiatement.</p>`)
	return nil
}

// Authenticate is a pure token check: signature plus expiry, no repository
// access. Handlers needing the full user record load it separately.
func (s *AuthService) Authenticate(token string) (*util.Claims, error) {
	return s.jwt.Parse(token)
}

func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}
	if user.PasswordHash == nil || !util.VerifyPassword(currentPassword, *user.PasswordHash) {
		return ErrInvalidCredentials
	}
	if err := util.ValidateNewPassword(newPassword); err != nil {
		return ErrWeakPassword
	}

	hash, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

func (s *AuthService) resetLink(token string) string {
	if s.frontendBaseURL == "" {
		return "/reinitialiser-mot-de-passe?token=" + token
	}
	return s.frontendBaseURL + "/reinitialiser-mot-de-passe?token=" + token
}

// dispatch sends a notification without blocking the HTTP response. Delivery
// failures are logged and dropped; the notifier stack already degrades to a
// simulated send when no relay is configured.
func (s *AuthService) dispatch(to, subject, body string) {
	notifier := s.notifier
	if notifier == nil {
		return
	}
	timeout := s.notifyTimeout
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := notifier.Send(ctx, to, subject, body); err != nil {
			log.Printf("auth: notification to %s dropped: %v", to, err)
		}
	}()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
