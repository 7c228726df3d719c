package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/swiss-tournament/repositories"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 8

	RoleEditor = "editor"

	ClaimTournamentID = "tournament_id"
	ClaimRole         = "role"
)

// EditorToken is a signed token granting edit rights on one tournament.
type EditorToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AuthService interface {
	// Login checks the tournament password and issues an editor token.
	Login(ctx context.Context, tournamentID uuid.UUID, password string) (*EditorToken, error)
	IssueEditorToken(tournamentID uuid.UUID) (*EditorToken, error)
	// ParseEditorToken validates the signature and expiry and returns the
	// tournament the token is bound to.
	ParseEditorToken(tokenString string) (uuid.UUID, error)
}

type authService struct {
	tournamentRepo repositories.TournamentRepository
	secret         []byte
	ttl            time.Duration
	now            func() time.Time
}

func NewAuthService(tournamentRepo repositories.TournamentRepository, jwtSecret string, ttl time.Duration) AuthService {
	return &authService{
		tournamentRepo: tournamentRepo,
		secret:         []byte(jwtSecret),
		ttl:            ttl,
		now:            time.Now,
	}
}

func hashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", fmt.Errorf("%w: need at least %d characters", ErrPasswordTooShort, MinPasswordLength)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("ошибка хеширования пароля: %w", err)
	}
	return string(hashed), nil
}

func (s *authService) Login(ctx context.Context, tournamentID uuid.UUID, password string) (*EditorToken, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err, "load tournament for login")
	}

	err = bcrypt.CompareHashAndPassword([]byte(t.PasswordHash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	return s.IssueEditorToken(t.ID)
}

func (s *authService) IssueEditorToken(tournamentID uuid.UUID) (*EditorToken, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := jwt.MapClaims{
		ClaimTournamentID: tournamentID.String(),
		ClaimRole:         RoleEditor,
		"exp":             expiresAt.Unix(),
		"iat":             now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &EditorToken{Token: signed, ExpiresAt: expiresAt.UTC()}, nil
}

func (s *authService) ParseEditorToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, ErrAuthenticationFailed
	}
	if role, _ := claims[ClaimRole].(string); role != RoleEditor {
		return uuid.Nil, fmt.Errorf("%w: role %q", ErrAuthenticationFailed, role)
	}
	raw, _ := claims[ClaimTournamentID].(string)
	tournamentID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad %s claim", ErrAuthenticationFailed, ClaimTournamentID)
	}
	return tournamentID, nil
}
