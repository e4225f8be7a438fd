package service

import (
	"context"
	"fmt"
	"time"

	"payauth/internal/cache"
	"payauth/internal/model"
	"payauth/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// UserService serves user profiles, cached in Redis.
type UserService interface {
	GetProfile(ctx context.Context, id uint) (*model.Profile, error)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

func (s *userService) GetProfile(ctx context.Context, id uint) (*model.Profile, error) {
	var cached model.Profile
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	profile := user.Profile()
	s.cache.SetJSON(ctx, s.cacheKey(id), profile, userCacheTTL)
	return &profile, nil
}
