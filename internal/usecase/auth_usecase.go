package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"medique-api/config"
	"medique-api/internal/converter"
	"medique-api/internal/delivery/dto"
	"medique-api/internal/domain/entity"
	"medique-api/internal/domain/repository"
	"medique-api/internal/service"
	"medique-api/pkg/jwt"
	"medique-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	minPasswordLength = 8
	// bcrypt only hashes the first 72 bytes and rejects anything longer
	maxPasswordLength = 72
)

var (
	ErrMissingDetails     = errors.New("missing details")
	ErrInvalidEmail       = errors.New("enter a valid email")
	ErrWeakPassword       = errors.New("enter a strong password")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrUserNotFound       = errors.New("user does not exist")
)

type AuthUsecase interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	AdminLogin(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, principal jwt.Principal, accessTokenID, refreshToken string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
}

type authUsecase struct {
	tx           repository.Transactor
	log          *logrus.Logger
	userRepo     repository.UserRepository
	auditService service.AuditService
	jwtService   *jwt.JWTService
	tokenStore   service.TokenStore
	admin        config.AdminConfig
}

func NewAuthUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	auditService service.AuditService,
	jwtService *jwt.JWTService,
	tokenStore service.TokenStore,
	admin config.AdminConfig,
) AuthUsecase {
	return &authUsecase{
		tx:           tx,
		log:          log,
		userRepo:     userRepo,
		auditService: auditService,
		jwtService:   jwtService,
		tokenStore:   tokenStore,
		admin:        admin,
	}
}

// Register creates a patient account and signs it in.
func (u *authUsecase) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if name == "" || email == "" || req.Password == "" {
		return nil, ErrMissingDetails
	}
	if !validator.IsEmail(email) {
		return nil, ErrInvalidEmail
	}
	if err := ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	user := &entity.User{
		Name:     name,
		Email:    email,
		Password: string(hashedPassword),
		Gender:   "Not Selected",
		DOB:      "Not Selected",
	}

	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.userRepo.Create(tx, user); err != nil {
			if isDuplicateKeyError(err, "email") {
				return ErrEmailAlreadyExists
			}
			u.log.Warnf("Failed to create user: %+v", err)
			return err
		}

		_ = u.auditService.LogCreate(ctx, tx, service.UserActor(user.ID), entity.AuditActionUserRegister,
			entity.AuditEntityUser, user.ID.String(), map[string]interface{}{"name": user.Name, "email": user.Email})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return u.issueTokens(ctx, jwt.Principal{UserID: user.ID, Email: user.Email, Role: entity.RoleUser})
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	// Read-only, no transaction needed
	user, err := u.userRepo.FindByEmail(u.tx.Conn(ctx), email)
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u.issueTokens(ctx, jwt.Principal{UserID: user.ID, Email: user.Email, Role: entity.RoleUser})
}

// AdminLogin checks the configured administrator credentials. The password is
// compared against a bcrypt hash, never stored in plain text.
func (u *authUsecase) AdminLogin(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	if u.admin.Email == "" || u.admin.PasswordHash == "" {
		u.log.Warn("Admin login attempted but no admin account is configured")
		return nil, ErrInvalidCredentials
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	expected := strings.ToLower(strings.TrimSpace(u.admin.Email))
	emailMatch := subtle.ConstantTimeCompare([]byte(email), []byte(expected)) == 1

	// Always run bcrypt so timing does not reveal whether the email matched
	passwordErr := bcrypt.CompareHashAndPassword([]byte(u.admin.PasswordHash), []byte(req.Password))
	if !emailMatch || passwordErr != nil {
		return nil, ErrInvalidCredentials
	}

	return u.issueTokens(ctx, jwt.Principal{Email: expected, Role: entity.RoleAdmin})
}

// Logout revokes the current access token and, when given, the refresh token
// issued alongside it.
func (u *authUsecase) Logout(ctx context.Context, principal jwt.Principal, accessTokenID, refreshToken string) error {
	subject := principal.SubjectKey()

	if err := u.tokenStore.Revoke(ctx, jwt.AccessToken, subject, accessTokenID); err != nil {
		return err
	}

	if refreshToken == "" {
		return nil
	}

	claims, err := u.jwtService.ValidateToken(refreshToken)
	if err != nil || claims.TokenType != jwt.RefreshToken {
		return ErrInvalidToken
	}
	if claims.Principal().SubjectKey() != subject {
		return ErrInvalidToken
	}

	return u.tokenStore.Revoke(ctx, jwt.RefreshToken, subject, claims.TokenID)
}

// RefreshToken rotates a refresh token: the old one is revoked and a new
// pair is issued.
func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	principal := claims.Principal()
	subject := principal.SubjectKey()

	exists, err := u.tokenStore.Exists(ctx, jwt.RefreshToken, subject, claims.TokenID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrTokenRevoked
	}

	if err := u.tokenStore.Revoke(ctx, jwt.RefreshToken, subject, claims.TokenID); err != nil {
		return nil, err
	}

	return u.issueTokens(ctx, principal)
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByID(u.tx.Conn(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return converter.UserToResponse(user), nil
}

func (u *authUsecase) issueTokens(ctx context.Context, p jwt.Principal) (*dto.TokenResponse, error) {
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(p)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(p)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	subject := p.SubjectKey()
	if err := u.tokenStore.Store(ctx, jwt.AccessToken, subject, accessTokenID, u.jwtService.GetAccessExpiry()); err != nil {
		return nil, err
	}
	if err := u.tokenStore.Store(ctx, jwt.RefreshToken, subject, refreshTokenID, u.jwtService.GetRefreshExpiry()); err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
		Role:         p.Role,
	}, nil
}

// ValidatePassword checks the byte length bounds bcrypt can hash.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	if len(password) > maxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}
