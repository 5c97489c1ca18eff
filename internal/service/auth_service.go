package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/study-planner-api/internal/models"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
)

type userCollection interface {
	Read(ctx context.Context) []models.User
	Write(ctx context.Context, users []models.User) error
}

type sessionDocument interface {
	Read(ctx context.Context) (models.User, bool)
	Write(ctx context.Context, user models.User) error
	Clear(ctx context.Context) error
}

// Clearable is a stored collection that can be wiped.
type Clearable interface {
	Clear(ctx context.Context) error
}

// SignupRequest registers a new account.
type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Class    string `json:"class"`
}

// LoginRequest holds credentials for starting a session.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest replaces the current user's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// AuthConfig holds account policy.
type AuthConfig struct {
	UniqueEmail bool
}

// AuthService manages accounts and the single active session.
type AuthService struct {
	users     userCollection
	session   sessionDocument
	cascade   []Clearable
	ids       *models.IDGenerator
	validator *validator.Validate
	clock     Clock
	cfg       AuthConfig
	logger    *zap.Logger
}

// NewAuthService creates the auth service. cascade lists the collections
// wiped when an account is deleted.
func NewAuthService(users userCollection, session sessionDocument, cascade []Clearable, validate *validator.Validate, clock Clock, cfg AuthConfig, logger *zap.Logger) *AuthService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:     users,
		session:   session,
		cascade:   cascade,
		ids:       models.NewIDGenerator(clock.Now),
		validator: validate,
		clock:     clock,
		cfg:       cfg,
		logger:    logger,
	}
}

// Signup stores a new user and logs them in.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.Class = strings.TrimSpace(req.Class)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "signup")
	}

	users := s.users.Read(ctx)
	if s.cfg.UniqueEmail {
		for _, u := range users {
			if normalizeEmail(u.Email) == req.Email {
				return nil, appErrors.ErrEmailTaken
			}
		}
	}

	id := s.ids.Next(func(id int64) bool {
		for _, u := range users {
			if u.ID == strconv.FormatInt(id, 10) {
				return true
			}
		}
		return false
	})
	user := models.User{
		ID:       strconv.FormatInt(id, 10),
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Class:    req.Class,
		Joined:   s.clock.now(),
	}
	if err := s.users.Write(ctx, append(users, user)); err != nil {
		return nil, storeFailure(err, "save user")
	}
	if err := s.session.Write(ctx, user); err != nil {
		return nil, storeFailure(err, "start session")
	}
	s.logger.Info("user signed up", zap.String("user_id", user.ID))
	return &user, nil
}

// Login starts a session for the first user matching email and password.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "login")
	}
	email := normalizeEmail(req.Email)
	for _, u := range s.users.Read(ctx) {
		if normalizeEmail(u.Email) != email || u.Password != req.Password {
			continue
		}
		if err := s.session.Write(ctx, u); err != nil {
			return nil, storeFailure(err, "start session")
		}
		return &u, nil
	}
	return nil, appErrors.ErrInvalidCredentials
}

// Logout ends the session.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.session.Clear(ctx); err != nil {
		return storeFailure(err, "end session")
	}
	return nil
}

// Current returns the logged-in user.
func (s *AuthService) Current(ctx context.Context) (*models.User, error) {
	user, ok := s.session.Read(ctx)
	if !ok || user.Email == "" {
		return nil, appErrors.ErrUnauthorized
	}
	return &user, nil
}

// ChangePassword checks the current password and stores the new one on both
// the users list and the session.
func (s *AuthService) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return invalid(err, "password")
	}
	current, err := s.Current(ctx)
	if err != nil {
		return err
	}
	if req.NewPassword != req.ConfirmPassword {
		return appErrors.ErrPasswordMismatch
	}
	if current.Password != req.CurrentPassword {
		return appErrors.ErrWrongPassword
	}

	users := s.users.Read(ctx)
	for i := range users {
		if users[i].Email == current.Email {
			users[i].Password = req.NewPassword
			break
		}
	}
	if err := s.users.Write(ctx, users); err != nil {
		return storeFailure(err, "save user")
	}
	current.Password = req.NewPassword
	if err := s.session.Write(ctx, *current); err != nil {
		return storeFailure(err, "update session")
	}
	return nil
}

// DeleteAccount removes every user sharing the current email, ends the
// session and clears the planner data.
func (s *AuthService) DeleteAccount(ctx context.Context) error {
	current, err := s.Current(ctx)
	if err != nil {
		return err
	}
	users := s.users.Read(ctx)
	kept := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.Email != current.Email {
			kept = append(kept, u)
		}
	}
	if err := s.users.Write(ctx, kept); err != nil {
		return storeFailure(err, "delete user")
	}
	if err := s.session.Clear(ctx); err != nil {
		return storeFailure(err, "end session")
	}
	for _, c := range s.cascade {
		if err := c.Clear(ctx); err != nil {
			return storeFailure(err, "clear planner data")
		}
	}
	s.logger.Info("account deleted", zap.String("user_id", current.ID))
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
