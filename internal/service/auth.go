package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"microblog/internal/config"
	"microblog/internal/mail"
	"microblog/internal/model"
	"microblog/internal/repository"
)

// tokenReuseWindow is how much remaining lifetime an existing API token
// needs to be handed out again instead of minting a fresh one.
const tokenReuseWindow = time.Minute

// AuthService manages API bearer tokens and the password-reset flow.
type AuthService struct {
	userRepo repository.UserRepository
	mailer   mail.Mailer

	secretKey        []byte
	apiTokenMaxAge   time.Duration
	resetTokenMaxAge time.Duration
}

func NewAuthService(userRepo repository.UserRepository, mailer mail.Mailer, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		mailer:           mailer,
		secretKey:        []byte(cfg.SecretKey),
		apiTokenMaxAge:   time.Duration(cfg.APITokenMaxAge) * time.Second,
		resetTokenMaxAge: time.Duration(cfg.ResetTokenMaxAge) * time.Second,
	}
}

// GetToken returns the user's API token, reusing the stored one while it has
// more than a minute of life left. A fresh token is random, not derived from
// any account attribute.
func (s *AuthService) GetToken(ctx context.Context, user *model.User) (string, time.Time, error) {
	now := time.Now()

	if user.Token != nil && user.TokenExpiration != nil && user.TokenExpiration.After(now.Add(tokenReuseWindow)) {
		return *user.Token, *user.TokenExpiration, nil
	}

	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
	}
	token := base64.URLEncoding.EncodeToString(raw)
	expiration := now.Add(s.apiTokenMaxAge)

	if err := s.userRepo.UpdateToken(ctx, user.ID, &token, &expiration); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to store token: %w", err)
	}

	user.Token = &token
	user.TokenExpiration = &expiration

	log.Printf("[AuthService] GetToken OK: user=%d expires=%s", user.ID, expiration.Format(time.RFC3339))
	return token, expiration, nil
}

// CheckToken resolves a bearer token to its account. Expired or unknown
// tokens both come back as model.ErrInvalidToken.
func (s *AuthService) CheckToken(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, model.ErrInvalidToken
	}

	user, err := s.userRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, model.ErrInvalidToken
	}

	if !user.TokenValid(time.Now()) {
		return nil, model.ErrInvalidToken
	}

	return user, nil
}

// RevokeToken expires the user's current token immediately. The token value
// stays in place; only the expiration moves into the past.
func (s *AuthService) RevokeToken(ctx context.Context, user *model.User) error {
	if user.Token == nil {
		return nil
	}

	past := time.Now().Add(-time.Second)
	if err := s.userRepo.UpdateToken(ctx, user.ID, user.Token, &past); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	log.Printf("[AuthService] RevokeToken OK: user=%d", user.ID)
	return nil
}

// IssueResetToken signs a short-lived JWT naming the account allowed to
// reset its password.
func (s *AuthService) IssueResetToken(userID int64) (string, error) {
	claims := jwt.MapClaims{
		"reset_password": userID,
		"exp":            time.Now().Add(s.resetTokenMaxAge).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign reset token: %w", err)
	}
	return token, nil
}

// VerifyResetToken validates a reset token and returns the account id it
// was issued for.
func (s *AuthService) VerifyResetToken(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil || !token.Valid {
		return 0, model.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, model.ErrInvalidToken
	}

	// JSON numbers decode as float64
	userID, ok := claims["reset_password"].(float64)
	if !ok {
		return 0, model.ErrInvalidToken
	}

	return int64(userID), nil
}

// RequestPasswordReset mails a reset token to the account behind the email.
// Unknown addresses are silently ignored so the endpoint doesn't reveal
// which emails have accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		log.Printf("[AuthService] RequestPasswordReset: no account for email, ignoring")
		return nil
	}

	token, err := s.IssueResetToken(user.ID)
	if err != nil {
		return err
	}

	msg := &mail.Message{
		To:      []string{user.Email},
		Subject: "Reset Your Password",
		TextBody: fmt.Sprintf(
			"Dear %s,\n\nTo reset your password submit the following token with your new password:\n\n%s\n\nThe token expires in %d minutes. If you have not requested a password reset simply ignore this message.\n",
			user.Username, token, int(s.resetTokenMaxAge.Minutes())),
	}
	mail.SendAsync(s.mailer, msg)

	log.Printf("[AuthService] RequestPasswordReset OK: user=%d", user.ID)
	return nil
}

// ResetPassword redeems a reset token and replaces the account password.
func (s *AuthService) ResetPassword(ctx context.Context, tokenString, newPassword string) error {
	userID, err := s.VerifyResetToken(tokenString)
	if err != nil {
		return err
	}

	if newPassword == "" {
		return fmt.Errorf("password is required")
	}

	hashed, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hashed); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	log.Printf("[AuthService] ResetPassword OK: user=%d", userID)
	return nil
}
