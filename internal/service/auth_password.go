package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/tecnomaub/rupia-wallet-bfa/internal/domain"
)

const minPasswordLength = 8

// ============================================================
// ResetPassword: POST /v1/auth/password/reset
// ============================================================

// ResetPassword sets a new password using the reset token sent by email.
func (s *AuthService) ResetPassword(ctx context.Context, req *domain.PasswordResetRequest) error {
	ctx, span := tracer.Start(ctx, "AuthService.ResetPassword")
	defer span.End()

	token := strings.TrimSpace(req.Token)
	if token == "" {
		return &domain.ErrValidation{Field: "token", Message: "is required"}
	}
	if err := validatePassword(req.Password); err != nil {
		return err
	}
	if req.Password != req.ConfirmPassword {
		return &domain.ErrValidation{Field: "confirmPassword", Message: "passwords do not match"}
	}

	if err := s.auth.ResetPassword(ctx, token, req.Password); err != nil {
		return fmt.Errorf("upstream reset password: %w", err)
	}
	s.logger.Info("password reset")
	return nil
}

// validatePassword requires at least eight characters with an uppercase
// letter, a digit and a special character.
func validatePassword(p string) error {
	if len([]rune(p)) < minPasswordLength {
		return &domain.ErrValidation{Field: "password", Message: fmt.Sprintf("must have at least %d characters", minPasswordLength)}
	}
	var upper, digit, special bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r) && !unicode.IsSpace(r):
			special = true
		}
	}
	switch {
	case !upper:
		return &domain.ErrValidation{Field: "password", Message: "must contain an uppercase letter"}
	case !digit:
		return &domain.ErrValidation{Field: "password", Message: "must contain a digit"}
	case !special:
		return &domain.ErrValidation{Field: "password", Message: "must contain a special character"}
	}
	return nil
}
