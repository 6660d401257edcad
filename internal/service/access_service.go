package service

import (
	"context"

	"fanstream/internal/model"
	"fanstream/internal/repository"
)

// 拒绝访问的原因
const (
	AccessReasonLocked        = "locked"         // 需要代币解锁
	AccessReasonNeedLike      = "need_like"      // 需要先点赞
	AccessReasonNeedComment   = "need_comment"   // 需要先评论
	AccessReasonNeedSubscribe = "need_subscribe" // 需要订阅作者
	AccessReasonNeedPassword  = "need_password"  // 需要访问口令
)

// GateInput 访问判定的输入
type GateInput struct {
	IsOwner       bool
	TokenCost     int64
	Unlocked      bool
	ViewCondition string
	ConditionMet  bool
	HasPassword   bool
	PasswordOK    bool
}

// GateResult 访问判定的结果
type GateResult struct {
	Allowed bool     `json:"allowed"`
	Reasons []string `json:"reasons,omitempty"`
}

// EvaluateGate 纯判定逻辑
// 作者看自己的内容永远放行；其他人必须同时满足所有门槛
func EvaluateGate(input GateInput) GateResult {
	if input.IsOwner {
		return GateResult{Allowed: true}
	}

	var reasons []string

	if input.TokenCost > 0 && !input.Unlocked {
		reasons = append(reasons, AccessReasonLocked)
	}

	if input.ViewCondition != "" && input.ViewCondition != model.ViewConditionNone && !input.ConditionMet {
		switch input.ViewCondition {
		case model.ViewConditionLike:
			reasons = append(reasons, AccessReasonNeedLike)
		case model.ViewConditionComment:
			reasons = append(reasons, AccessReasonNeedComment)
		case model.ViewConditionSubscription:
			reasons = append(reasons, AccessReasonNeedSubscribe)
		}
	}

	if input.HasPassword && !input.PasswordOK {
		reasons = append(reasons, AccessReasonNeedPassword)
	}

	return GateResult{Allowed: len(reasons) == 0, Reasons: reasons}
}

// AccessService 内容访问门槛判定
type AccessService struct {
	interactionRepo *repository.InteractionRepository
	transactionRepo *repository.TransactionRepository
}

func NewAccessService(
	interactionRepo *repository.InteractionRepository,
	transactionRepo *repository.TransactionRepository,
) *AccessService {
	return &AccessService{
		interactionRepo: interactionRepo,
		transactionRepo: transactionRepo,
	}
}

// CheckPost 判定用户对帖子的访问权限
func (s *AccessService) CheckPost(ctx context.Context, viewerID int64, post *model.Post, password string) (GateResult, error) {
	input := GateInput{
		IsOwner:       viewerID == post.UserID,
		TokenCost:     post.TokenCost,
		ViewCondition: post.ViewCondition,
		HasPassword:   post.AccessPassword != "",
		PasswordOK:    post.AccessPassword != "" && password == post.AccessPassword,
	}

	if input.IsOwner {
		return EvaluateGate(input), nil
	}

	if post.TokenCost > 0 {
		_, err := s.transactionRepo.GetByUserAndPost(ctx, viewerID, post.ID)
		if err == nil {
			input.Unlocked = true
		} else if err != repository.ErrTransactionNotFound {
			return GateResult{}, err
		}
	}

	met, err := s.conditionMet(ctx, viewerID, post.UserID, post.ViewCondition, &post.ID, nil)
	if err != nil {
		return GateResult{}, err
	}
	input.ConditionMet = met

	return EvaluateGate(input), nil
}

// CheckMedia 判定用户对媒体的访问权限
func (s *AccessService) CheckMedia(ctx context.Context, viewerID int64, media *model.Media, password string) (GateResult, error) {
	input := GateInput{
		IsOwner:       viewerID == media.UserID,
		TokenCost:     media.TokenCost,
		ViewCondition: media.ViewCondition,
		HasPassword:   media.AccessPassword != "",
		PasswordOK:    media.AccessPassword != "" && password == media.AccessPassword,
	}

	if input.IsOwner {
		return EvaluateGate(input), nil
	}

	if media.TokenCost > 0 {
		_, err := s.transactionRepo.GetByUserAndMedia(ctx, viewerID, media.ID)
		if err == nil {
			input.Unlocked = true
		} else if err != repository.ErrTransactionNotFound {
			return GateResult{}, err
		}
	}

	met, err := s.conditionMet(ctx, viewerID, media.UserID, media.ViewCondition, nil, &media.ID)
	if err != nil {
		return GateResult{}, err
	}
	input.ConditionMet = met

	return EvaluateGate(input), nil
}

func (s *AccessService) conditionMet(ctx context.Context, viewerID, ownerID int64, condition string, postID, mediaID *int64) (bool, error) {
	switch condition {
	case model.ViewConditionLike:
		if postID != nil {
			return s.interactionRepo.HasLikedPost(ctx, viewerID, *postID)
		}
		return s.interactionRepo.HasLikedMedia(ctx, viewerID, *mediaID)
	case model.ViewConditionComment:
		if postID != nil {
			return s.interactionRepo.HasCommentedPost(ctx, viewerID, *postID)
		}
		return s.interactionRepo.HasCommentedMedia(ctx, viewerID, *mediaID)
	case model.ViewConditionSubscription:
		return s.interactionRepo.IsSubscribed(ctx, viewerID, ownerID)
	}
	return true, nil
}
