package service

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	appErrors "github.com/unclebandit/campaign-mailer/internal/errors"
	"github.com/unclebandit/campaign-mailer/internal/logger"
	"github.com/unclebandit/campaign-mailer/internal/model"
	"github.com/unclebandit/campaign-mailer/internal/repository"
)

type UserService struct {
	UserRepo   repository.UserRepositoryInterface
	BcryptCost int
}

type UserInput struct {
	Email    string     `json:"email" yaml:"email"`
	Name     string     `json:"name" yaml:"name"`
	Password string     `json:"password" yaml:"password"`
	Role     model.Role `json:"role" yaml:"role"`
}

// CreateUser adds a user. Only owners and admins may do so, and only an
// owner may create another owner.
func (s *UserService) CreateUser(ctx context.Context, actor model.Identity, in UserInput) (*model.User, error) {
	if !actor.CanManage() {
		return nil, appErrors.ErrForbidden
	}
	if in.Role == "" {
		in.Role = model.RoleUser
	}
	if in.Role == model.RoleOwner && actor.Role != model.RoleOwner {
		return nil, appErrors.ErrForbidden
	}
	return s.create(ctx, in)
}

// Bootstrap creates a user without an acting identity. It is used by the
// seeder to create the first owner.
func (s *UserService) Bootstrap(ctx context.Context, in UserInput) (*model.User, error) {
	return s.create(ctx, in)
}

func (s *UserService) create(ctx context.Context, in UserInput) (*model.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	switch {
	case in.Email == "":
		return nil, appErrors.Validation("email is required")
	case len(in.Password) < 8:
		return nil, appErrors.Validation("password must be at least 8 characters")
	case !in.Role.Valid():
		return nil, appErrors.Validation("unknown role %q", in.Role)
	}

	cost := s.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), cost)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: string(hash),
		Role:         in.Role,
	}
	if err := s.UserRepo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.UserRepo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.UserRepo.GetByEmail(ctx, email)
}

func (s *UserService) ListUsers(ctx context.Context, actor model.Identity) ([]*model.User, error) {
	if !actor.CanManage() {
		return nil, appErrors.ErrForbidden
	}
	return s.UserRepo.List(ctx)
}

// DeleteUser removes another user. Managers may delete users, only an
// owner may delete an owner, and nobody may delete themselves.
func (s *UserService) DeleteUser(ctx context.Context, actor model.Identity, id string) error {
	if !actor.CanManage() {
		return appErrors.ErrForbidden
	}
	if id == actor.UserID {
		return appErrors.Validation("cannot delete your own account")
	}
	u, err := s.UserRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.Role == model.RoleOwner && actor.Role != model.RoleOwner {
		return appErrors.ErrForbidden
	}
	if err := s.UserRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.From(ctx).Info("user deleted", logger.UserID(id), logger.String("deleted_by", actor.UserID))
	return nil
}

// CheckPassword reports whether password matches the user's stored hash.
func CheckPassword(u *model.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
