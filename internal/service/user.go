package service

import (
	"context"
	"errors"

	"github.com/Yusufdydx/vv-ng/internal/model"
	"github.com/Yusufdydx/vv-ng/internal/repository"
)

var ErrUsernameRequired = errors.New("username is required")

type UserService struct {
	repo *repository.Repository
}

func NewUserService(repo *repository.Repository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *UserService) Register(ctx context.Context, username, email string) (*model.User, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	user := &model.User{
		Username: username,
		Email:    email,
		Role:     model.RoleMember,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	return s.repo.IsAdmin(ctx, userID)
}
