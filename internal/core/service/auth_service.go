package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/possuite/backoffice/internal/core/domain"
	"github.com/possuite/backoffice/internal/core/ports"
)

const verificationTTL = 24 * time.Hour

// VerificationSender delivers the email-verification link to a new owner.
type VerificationSender interface {
	SendVerification(ctx context.Context, name, email, token string) error
}

// AuthOptions toggles account policies.
type AuthOptions struct {
	RequireEmailVerification bool
}

// AuthService implements owner registration, email verification and login
// for both principal kinds.
type AuthService struct {
	owners ports.OwnerRepository
	staff  ports.StaffRepository
	tokens ports.TokenCodec
	sender VerificationSender
	opts   AuthOptions
	log    zerolog.Logger
	now    func() time.Time
}

func NewAuthService(
	owners ports.OwnerRepository,
	staff ports.StaffRepository,
	tokens ports.TokenCodec,
	sender VerificationSender,
	opts AuthOptions,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		owners: owners,
		staff:  staff,
		tokens: tokens,
		sender: sender,
		opts:   opts,
		log:    log,
		now:    time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Owner, error) {
	name := strings.TrimSpace(in.Name)
	email, err := normalizeEmail(in.Email)
	if err != nil || name == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	token, err := verificationToken()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	owner := &domain.Owner{
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		EmailVerified: !s.opts.RequireEmailVerification,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if s.opts.RequireEmailVerification {
		owner.VerificationToken = token
		owner.VerificationExpires = now.Add(verificationTTL)
	}

	created, err := s.owners.Create(ctx, owner)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("owner_id", created.ID).Msg("owner registered")

	if s.opts.RequireEmailVerification {
		s.sendVerification(ctx, created)
	}
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.Owner, error) {
	email, err := normalizeEmail(email)
	if err != nil || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	owner, err := s.owners.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrOwnerNotFound) {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(owner.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	if s.opts.RequireEmailVerification && !owner.EmailVerified {
		return "", nil, domain.ErrEmailNotVerified
	}

	token, err := s.tokens.Issue(owner.ID)
	if err != nil {
		return "", nil, err
	}
	return token, owner, nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*domain.Owner, error) {
	if token == "" {
		return nil, domain.ErrInvalidToken
	}
	owner, err := s.owners.FindByVerificationToken(ctx, token, s.now().UTC())
	if errors.Is(err, domain.ErrOwnerNotFound) {
		return nil, domain.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	owner.EmailVerified = true
	owner.VerificationToken = ""
	owner.VerificationExpires = time.Time{}
	owner.UpdatedAt = s.now().UTC()
	if err := s.owners.Update(ctx, owner); err != nil {
		return nil, fmt.Errorf("verify email: %w", err)
	}
	s.log.Info().Str("owner_id", owner.ID).Msg("email verified")
	return owner, nil
}

func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return domain.ErrInvalidInput
	}
	owner, err := s.owners.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if owner.EmailVerified {
		return domain.ErrAlreadyVerified
	}

	token, err := verificationToken()
	if err != nil {
		return err
	}
	now := s.now().UTC()
	owner.VerificationToken = token
	owner.VerificationExpires = now.Add(verificationTTL)
	owner.UpdatedAt = now
	if err := s.owners.Update(ctx, owner); err != nil {
		return fmt.Errorf("resend verification: %w", err)
	}
	s.sendVerification(ctx, owner)
	return nil
}

// StaffLogin authenticates an active staff member and records the login.
func (s *AuthService) StaffLogin(ctx context.Context, email, password string) (string, *domain.Staff, error) {
	email, err := normalizeEmail(email)
	if err != nil || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	member, err := s.staff.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrStaffNotFound) {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	if member.Status != domain.StaffActive {
		return "", nil, domain.ErrUnauthenticated
	}

	now := s.now().UTC()
	member.LastLogin = &now
	if err := s.staff.Update(ctx, member); err != nil {
		s.log.Warn().Err(err).Str("staff_id", member.ID).Msg("failed to record last login")
	}

	token, err := s.tokens.Issue(member.ID)
	if err != nil {
		return "", nil, err
	}
	return token, member, nil
}

func (s *AuthService) sendVerification(ctx context.Context, owner *domain.Owner) {
	if s.sender == nil {
		return
	}
	if err := s.sender.SendVerification(ctx, owner.Name, owner.Email, owner.VerificationToken); err != nil {
		s.log.Error().Err(err).Str("owner_id", owner.ID).Msg("verification email not sent")
	}
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return strings.ToLower(addr.Address), nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func verificationToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("verification token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
