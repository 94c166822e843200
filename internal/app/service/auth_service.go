package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"vaccitrack/internal/common"
	"vaccitrack/internal/common/security"
	"vaccitrack/internal/domain/model"
	"vaccitrack/internal/domain/repository"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// AuthObserver receives one call per finished auth operation.
type AuthObserver interface {
	ObserveAuth(operation, outcome string)
}

type AuthService struct {
	userRepo repository.UserRepository
	issuer   *security.TokenIssuer
	logger   *zap.Logger
	observer AuthObserver
	validate *validator.Validate
}

func NewAuthService(userRepo repository.UserRepository, issuer *security.TokenIssuer, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo: userRepo,
		issuer:   issuer,
		logger:   logger.Named("auth"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// WithObserver attaches an outcome observer, typically the metrics registry.
func (s *AuthService) WithObserver(o AuthObserver) *AuthService {
	s.observer = o
	return s
}

type SignupRequest struct {
	Email       string         `json:"email" validate:"required,email"`
	Password    string         `json:"password" validate:"required"`
	FirstName   string         `json:"firstName" validate:"max=100"`
	LastName    string         `json:"lastName" validate:"max=100"`
	DateOfBirth string         `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Type        model.UserType `json:"type"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is what a successful login or hydrate hands back to the
// transport: the Set-Cookie value, the user and the raw token.
type LoginResult struct {
	Cookie string
	User   *model.User
	Token  security.TokenData
}

func (s *AuthService) Signup(ctx context.Context, req *SignupRequest) (user *model.User, err error) {
	defer func() { s.observe("signup", err) }()

	if req == nil || *req == (SignupRequest{}) {
		return nil, common.NewAuthError(common.KindInvalidInput, "You're not userData")
	}
	userType := req.Type
	if userType.Privileged() {
		return nil, common.NewAuthError(common.KindForbiddenRole, "This user type cannot be used in sign up")
	}
	if userType == "" {
		userType = model.UserTypeStandard
	}
	if !userType.Valid() {
		return nil, common.NewAuthError(common.KindInvalidInput, "unknown user type %q", userType)
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, invalidInput(err)
	}

	_, err = s.userRepo.FindOne(ctx, model.UserFilter{Email: req.Email})
	switch {
	case err == nil:
		return nil, duplicateEmail(req.Email)
	case !errors.Is(err, common.ErrNotFound):
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.userRepo.Create(ctx, &model.User{
		Email:    req.Email,
		Password: hashedPassword,
		Type:     userType,
		Active:   true,
		UserDetails: model.UserDetails{
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			DateOfBirth: req.DateOfBirth,
		},
	})
	if err != nil {
		// A concurrent signup may win between FindOne and Create.
		if errors.Is(err, common.ErrConflict) {
			return nil, duplicateEmail(req.Email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user signed up", zap.String("user_id", created.ID), zap.String("type", string(created.Type)))
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (res *LoginResult, err error) {
	defer func() { s.observe("login", err) }()

	if req == nil || *req == (LoginRequest{}) {
		return nil, common.NewAuthError(common.KindInvalidInput, "You're not userData")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, invalidInput(err)
	}

	user, err := s.userRepo.FindOne(ctx, model.UserFilter{Email: req.Email})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, emailNotFound(req.Email)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.Password) {
		return nil, common.NewAuthError(common.KindMismatch, "You're password not matching")
	}

	return s.issueSession(user)
}

// Logout re-confirms that the record still exists. It does not touch
// token validity; the caller clears the client cookie.
func (s *AuthService) Logout(ctx context.Context, user *model.User) (found *model.User, err error) {
	defer func() { s.observe("logout", err) }()
	return s.confirm(ctx, user)
}

// Hydrate re-confirms the record and issues a fresh token and cookie.
func (s *AuthService) Hydrate(ctx context.Context, user *model.User) (res *LoginResult, err error) {
	defer func() { s.observe("hydrate", err) }()

	found, err := s.confirm(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.issueSession(found)
}

func (s *AuthService) CreateToken(user *model.User) (security.TokenData, error) {
	if user == nil || user.ID == "" {
		return security.TokenData{}, common.NewAuthError(common.KindInvalidInput, "user id is required to issue a token")
	}
	return s.issuer.Issue(user.ID)
}

func (s *AuthService) CreateCookie(tokenData security.TokenData) string {
	return fmt.Sprintf("Authorization=%s; Path=/; HttpOnly; Max-Age=%d;", tokenData.Token, tokenData.ExpiresIn)
}

func (s *AuthService) confirm(ctx context.Context, user *model.User) (*model.User, error) {
	if user == nil || user.Email == "" || user.Password == "" {
		return nil, common.NewAuthError(common.KindInvalidInput, "You're not userData")
	}
	found, err := s.userRepo.FindOne(ctx, model.UserFilter{Email: user.Email, Password: user.Password})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, emailNotFound(user.Email)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return found, nil
}

func (s *AuthService) issueSession(user *model.User) (*LoginResult, error) {
	tokenData, err := s.CreateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &LoginResult{
		Cookie: s.CreateCookie(tokenData),
		User:   user,
		Token:  tokenData,
	}, nil
}

func (s *AuthService) observe(operation string, err error) {
	outcome := "ok"
	if err != nil {
		if kind := common.KindOf(err); kind != 0 {
			outcome = kind.String()
			s.logger.Info("auth operation rejected", zap.String("operation", operation), zap.String("kind", outcome))
		} else {
			outcome = "error"
			s.logger.Error("auth operation failed", zap.String("operation", operation), zap.Error(err))
		}
	}
	if s.observer != nil {
		s.observer.ObserveAuth(operation, outcome)
	}
}

func duplicateEmail(email string) error {
	return common.NewAuthError(common.KindDuplicateEmail, "You're email %s already exists", email)
}

func emailNotFound(email string) error {
	return common.NewAuthError(common.KindNotFound, "You're email %s not found", email)
}

func invalidInput(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return common.NewAuthError(common.KindInvalidInput, "%s", err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
	}
	return common.NewAuthError(common.KindInvalidInput, "%s", strings.Join(msgs, "; "))
}
