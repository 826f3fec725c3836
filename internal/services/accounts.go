package services

import (
	"context"
	"strings"

	"github.com/chachabrian/staybook-backend/internal/apperror"
	"github.com/chachabrian/staybook-backend/internal/models"
	"github.com/chachabrian/staybook-backend/pkg/utils"
)

const minPasswordLength = 6

type AccountService struct {
	users  UserStore
	tokens *utils.TokenManager
}

func NewAccountService(users UserStore, tokens *utils.TokenManager) *AccountService {
	return &AccountService{users: users, tokens: tokens}
}

// Session is a user together with a freshly signed token.
type Session struct {
	User  *models.User
	Token string
}

// Register creates a regular user. Admin accounts come from the seeder.
func (s *AccountService) Register(ctx context.Context, name, email, password string) (*Session, error) {
	name = strings.TrimSpace(name)
	email = models.NormalizeEmail(email)
	if name == "" || email == "" {
		return nil, apperror.Validation("Please add a name and an email")
	}
	if len(password) < minPasswordLength {
		return nil, apperror.Validation("Password must be at least %d characters", minPasswordLength)
	}

	user := &models.User{Name: name, Email: email, Role: models.RoleUser}
	if err := user.SetPassword(password); err != nil {
		return nil, apperror.Wrap(apperror.KindUnknown, "failed to hash password", err)
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.session(user)
}

func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, apperror.Validation("Please provide an email and password")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if apperror.Is(err, apperror.KindNotFound) {
		return nil, apperror.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if err := user.CheckPassword(password); err != nil {
		return nil, apperror.Unauthorized("Invalid credentials")
	}
	return s.session(user)
}

func (s *AccountService) Me(ctx context.Context, caller Caller) (*models.User, error) {
	return s.users.FindByID(ctx, caller.ID)
}

func (s *AccountService) UpdateDetails(ctx context.Context, caller Caller, name, email *string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	if name != nil {
		if strings.TrimSpace(*name) == "" {
			return nil, apperror.Validation("Name can not be empty")
		}
		user.Name = strings.TrimSpace(*name)
	}
	if email != nil {
		normalized := models.NormalizeEmail(*email)
		if normalized == "" {
			return nil, apperror.Validation("Email can not be empty")
		}
		user.Email = normalized
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AccountService) UpdatePassword(ctx context.Context, caller Caller, current, next string) (*Session, error) {
	user, err := s.users.FindByID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	if err := user.CheckPassword(current); err != nil {
		return nil, apperror.Unauthorized("Password is incorrect")
	}
	if len(next) < minPasswordLength {
		return nil, apperror.Validation("Password must be at least %d characters", minPasswordLength)
	}
	if err := user.SetPassword(next); err != nil {
		return nil, apperror.Wrap(apperror.KindUnknown, "failed to hash password", err)
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.session(user)
}

func (s *AccountService) session(user *models.User) (*Session, error) {
	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindUnknown, "failed to sign token", err)
	}
	return &Session{User: user, Token: token}, nil
}
