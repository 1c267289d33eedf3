package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"studio-backend/internal/domain/user"
	reqdto "studio-backend/internal/handler/dto/request"
	"studio-backend/internal/infra"
	"studio-backend/internal/pkg/clock"
	"studio-backend/internal/pkg/errs"
	"studio-backend/internal/pkg/jwt"
	"studio-backend/internal/pkg/password"
	"studio-backend/internal/usecase/queries"
)

var (
	ErrUserNotFound         = errs.New("user not found")
	ErrInvalidCredentials   = errs.New("invalid credentials")
	ErrUserInactive         = errs.New("user inactive")
	ErrEmailAlreadyUsed     = errs.New("email already registered")
	ErrAuthenticationFailed = errs.New("authentication failed")
	ErrTokenGeneration      = errs.New("token generation failed")
	ErrTokenValidation      = errs.New("token validation failed")
)

type LoginResult struct {
	UserID    uuid.UUID
	TokenPair *TokenPair
}

type TokenPair struct {
	AccessToken   string
	RefreshToken  string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

type AuthUserStore interface {
	FindByEmail(ctx context.Context, email string) (*UserSnapshot, string, error)
	FindByID(ctx context.Context, id uuid.UUID) (*UserSnapshot, error)
	Create(ctx context.Context, u *user.User) (uuid.UUID, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	ViewByID(ctx context.Context, id uuid.UUID) (*queries.AuthorizedUserView, error)
}

type AuthCommands interface {
	Login(ctx context.Context, req reqdto.LoginRequest) (*LoginResult, error)
	Register(ctx context.Context, req reqdto.RegisterRequest) (*LoginResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
}

type authCommandsImpl struct {
	users      AuthUserStore
	jwtService jwt.Service
	clock      clock.Clock
}

func NewAuthCommands(users AuthUserStore, jwtService jwt.Service, clk clock.Clock) AuthCommands {
	return &authCommandsImpl{
		users:      users,
		jwtService: jwtService,
		clock:      clk,
	}
}

func (a *authCommandsImpl) Login(ctx context.Context, req reqdto.LoginRequest) (*LoginResult, error) {
	credentials, err := req.ToDomain()
	if err != nil {
		return nil, errs.Mark(err, ErrAuthenticationFailed)
	}

	snap, err := a.validateUser(ctx, credentials)
	if err != nil {
		return nil, err
	}

	tokenPair, err := a.issueTokens(snap.ID, snap.Role)
	if err != nil {
		return nil, err
	}

	if updateErr := a.users.UpdateLastLogin(ctx, snap.ID, a.clock.Now()); updateErr != nil {
		slog.Warn("failed to update last login", "user_id", snap.ID, "error", updateErr.Error())
		// Continue without failing - this is not critical
	}

	return &LoginResult{UserID: snap.ID, TokenPair: tokenPair}, nil
}

func (a *authCommandsImpl) Register(ctx context.Context, req reqdto.RegisterRequest) (*LoginResult, error) {
	email, err := user.NewEmail(req.Email)
	if err != nil {
		return nil, errs.Mark(err, ErrAuthenticationFailed)
	}
	if _, err := user.NewPassword(req.Password); err != nil {
		return nil, errs.Mark(err, ErrAuthenticationFailed)
	}

	hashed, err := password.HashPassword(req.Password)
	if err != nil {
		return nil, errs.Mark(err, ErrAuthenticationFailed)
	}

	entity := user.NewUser(req.Name, email, hashed, req.Phone, user.RoleCustomer)
	userID, err := a.users.Create(ctx, entity)
	if err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, ErrEmailAlreadyUsed
		}
		return nil, errs.Mark(err, ErrAuthenticationFailed)
	}

	tokenPair, err := a.issueTokens(userID, user.RoleCustomer.String())
	if err != nil {
		return nil, err
	}

	return &LoginResult{UserID: userID, TokenPair: tokenPair}, nil
}

func (a *authCommandsImpl) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := a.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenValidation)
	}

	if claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrTokenValidation
	}

	// Validate user still exists and is active
	snap, err := a.users.FindByID(ctx, claims.UserID)
	if err != nil || snap == nil {
		return nil, ErrUserNotFound
	}

	if !snap.IsActive {
		return nil, ErrUserInactive
	}

	return a.issueTokens(claims.UserID, claims.Role)
}

func (a *authCommandsImpl) issueTokens(userID uuid.UUID, roleStr string) (*TokenPair, error) {
	role, err := user.NewRole(roleStr)
	if err != nil {
		return nil, errs.Mark(err, ErrAuthenticationFailed)
	}

	accessToken, err := a.jwtService.GenerateAccessToken(userID, role)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}

	refreshToken, err := a.jwtService.GenerateRefreshToken(userID, role)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}

	return &TokenPair{
		AccessToken:   accessToken,
		RefreshToken:  refreshToken,
		AccessExpiry:  a.jwtService.AccessTokenDuration(),
		RefreshExpiry: a.jwtService.RefreshTokenDuration(),
	}, nil
}

func (a *authCommandsImpl) validateUser(ctx context.Context, credentials user.Credentials) (*UserSnapshot, error) {
	snap, hashedPassword, err := a.users.FindByEmail(ctx, credentials.Email().Value())
	if err != nil {
		// Return same error as password mismatch to prevent user enumeration attacks
		return nil, ErrInvalidCredentials
	}

	if !snap.IsActive {
		return nil, ErrUserInactive
	}

	if err := password.ComparePassword(hashedPassword, credentials.Password().Value()); err != nil {
		return nil, ErrInvalidCredentials
	}

	return snap, nil
}
