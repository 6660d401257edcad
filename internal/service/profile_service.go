package service

import (
	"context"

	"fanstream/internal/model"
	"fanstream/internal/repository"
)

// ProfileService 用户资料
type ProfileService struct {
	profileRepo     *repository.ProfileRepository
	interactionRepo *repository.InteractionRepository
}

func NewProfileService(
	profileRepo *repository.ProfileRepository,
	interactionRepo *repository.InteractionRepository,
) *ProfileService {
	return &ProfileService{
		profileRepo:     profileRepo,
		interactionRepo: interactionRepo,
	}
}

// ProfileView 带统计数据的资料视图
type ProfileView struct {
	*model.Profile
	SubscriberCount int64 `json:"subscriber_count"`
}

func (s *ProfileService) GetByUserID(ctx context.Context, userID int64) (*ProfileView, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	count, err := s.interactionRepo.CountSubscribers(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileView{Profile: profile, SubscriberCount: count}, nil
}

func (s *ProfileService) GetByUsername(ctx context.Context, username string) (*ProfileView, error) {
	profile, err := s.profileRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	count, err := s.interactionRepo.CountSubscribers(ctx, profile.UserID)
	if err != nil {
		return nil, err
	}
	return &ProfileView{Profile: profile, SubscriberCount: count}, nil
}

const searchLimit = 20

// Search 按用户名或昵称搜索用户
func (s *ProfileService) Search(ctx context.Context, keyword string) ([]*model.Profile, error) {
	return s.profileRepo.Search(ctx, keyword, searchLimit)
}

// UpdateProfileInput 可更新字段，nil 表示不改
type UpdateProfileInput struct {
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
	AvatarURL   *string `json:"avatar_url"`
}

func (s *ProfileService) Update(ctx context.Context, userID int64, input *UpdateProfileInput) (*model.Profile, error) {
	fields := map[string]interface{}{}
	if input.DisplayName != nil {
		fields["display_name"] = *input.DisplayName
	}
	if input.Bio != nil {
		fields["bio"] = *input.Bio
	}
	if input.AvatarURL != nil {
		fields["avatar_url"] = *input.AvatarURL
	}

	if len(fields) > 0 {
		if err := s.profileRepo.UpdateFields(ctx, userID, fields); err != nil {
			return nil, err
		}
	}

	return s.profileRepo.GetByUserID(ctx, userID)
}

// GetBalance 查代币余额
func (s *ProfileService) GetBalance(ctx context.Context, userID int64) (int64, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return profile.TokensBalance, nil
}
