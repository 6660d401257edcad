package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"fanstream/internal/config"
	"fanstream/internal/infrastructure/lock"
	"fanstream/internal/model"
	"fanstream/internal/realtime"
	"fanstream/internal/repository"
	"fanstream/pkg/idgen"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

var (
	ErrSpendBusy       = errors.New("操作太频繁，请稍后重试")
	ErrSpendBadTarget  = errors.New("必须且只能指定一个解锁目标")
	ErrContentFree     = errors.New("该内容无需付费解锁")
	ErrSpendOwnContent = errors.New("不能解锁自己的内容")
)

// InsufficientBalanceError 余额不足
// 带上差额信息，前端据此引导用户充值
type InsufficientBalanceError struct {
	Required int64
	Balance  int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("代币余额不足: 需要 %s，当前 %s",
		FormatTokens(e.Required), FormatTokens(e.Balance))
}

// SpendService 代币消费解锁
//
// 解锁的幂等与一致性：
//   - (user_id, post_id) / (user_id, media_id) 唯一索引保证同一内容只收一次费
//   - 扣减和写流水在同一个数据库事务里，要么都成功要么都回滚
//   - Redis 锁按用户串行化，挡掉重复提交
type SpendService struct {
	db              *gorm.DB
	postRepo        *repository.PostRepository
	mediaRepo       *repository.MediaRepository
	profileRepo     *repository.ProfileRepository
	transactionRepo *repository.TransactionRepository
	outboxRepo      *repository.OutboxRepository
	notification    *NotificationService
	redisClient     *redis.Client
	hub             *realtime.Hub
	businessCfg     *config.BusinessConfig
	kafkaCfg        *config.KafkaConfig
}

func NewSpendService(
	db *gorm.DB,
	postRepo *repository.PostRepository,
	mediaRepo *repository.MediaRepository,
	profileRepo *repository.ProfileRepository,
	transactionRepo *repository.TransactionRepository,
	outboxRepo *repository.OutboxRepository,
	notification *NotificationService,
	redisClient *redis.Client,
	hub *realtime.Hub,
	businessCfg *config.BusinessConfig,
	kafkaCfg *config.KafkaConfig,
) *SpendService {
	return &SpendService{
		db:              db,
		postRepo:        postRepo,
		mediaRepo:       mediaRepo,
		profileRepo:     profileRepo,
		transactionRepo: transactionRepo,
		outboxRepo:      outboxRepo,
		notification:    notification,
		redisClient:     redisClient,
		hub:             hub,
		businessCfg:     businessCfg,
		kafkaCfg:        kafkaCfg,
	}
}

// SpendResult 解锁返回
type SpendResult struct {
	TransactionNo   string `json:"transaction_no,omitempty"`
	TokensSpent     int64  `json:"tokens_spent"`
	Balance         int64  `json:"balance"`
	AlreadyUnlocked bool   `json:"already_unlocked"`
}

// Spend 花代币解锁内容，postID 和 mediaID 二选一
func (s *SpendService) Spend(ctx context.Context, userID int64, postID, mediaID *int64) (*SpendResult, error) {
	if (postID == nil) == (mediaID == nil) {
		return nil, ErrSpendBadTarget
	}

	// 1. 解析解锁目标，拿到费用和作者
	var cost int64
	var ownerID int64
	if postID != nil {
		post, err := s.postRepo.GetByID(ctx, *postID)
		if err != nil {
			return nil, err
		}
		cost, ownerID = post.TokenCost, post.UserID
	} else {
		media, err := s.mediaRepo.GetByID(ctx, *mediaID)
		if err != nil {
			return nil, err
		}
		cost, ownerID = media.TokenCost, media.UserID
	}

	if cost <= 0 {
		return nil, ErrContentFree
	}
	if ownerID == userID {
		return nil, ErrSpendOwnContent
	}

	// 2. 幂等检查：解锁过就直接返回成功，不再收费
	if existing, err := s.getExisting(ctx, userID, postID, mediaID); err == nil {
		profile, perr := s.profileRepo.GetByUserID(ctx, userID)
		if perr != nil {
			return nil, perr
		}
		return &SpendResult{
			TransactionNo:   existing.TransactionNo,
			TokensSpent:     existing.TokensSpent,
			Balance:         profile.TokensBalance,
			AlreadyUnlocked: true,
		}, nil
	} else if !errors.Is(err, repository.ErrTransactionNotFound) {
		return nil, err
	}

	// 3. 按用户加分布式锁，串行化同一用户的解锁请求
	transactionNo := idgen.GenerateTransactionNo()
	spendLock := lock.NewSpendLock(s.redisClient, userID, transactionNo,
		time.Duration(s.businessCfg.SpendLockSeconds)*time.Second)
	acquired, err := spendLock.TryLock(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取锁失败: %w", err)
	}
	if !acquired {
		return nil, ErrSpendBusy
	}
	defer spendLock.Unlock(ctx)

	// 4. 拿到锁后再查一次，锁等待期间可能已经解锁成功
	if existing, err := s.getExisting(ctx, userID, postID, mediaID); err == nil {
		profile, perr := s.profileRepo.GetByUserID(ctx, userID)
		if perr != nil {
			return nil, perr
		}
		return &SpendResult{
			TransactionNo:   existing.TransactionNo,
			TokensSpent:     existing.TokensSpent,
			Balance:         profile.TokensBalance,
			AlreadyUnlocked: true,
		}, nil
	} else if !errors.Is(err, repository.ErrTransactionNotFound) {
		return nil, err
	}

	// 5. 扣减 + 流水 + 发件箱事件，版本号冲突时重试
	result, err := s.executeSpend(ctx, userID, ownerID, cost, transactionNo, postID, mediaID)
	if err != nil {
		return nil, err
	}

	log.Printf("内容解锁成功: transaction_no=%s user_id=%d tokens=%d",
		transactionNo, userID, cost)

	// 6. 通知作者有人解锁了内容，失败不影响解锁结果
	if err := s.notification.Notify(ctx, ownerID, userID, model.NotificationTypeUnlock, postID, mediaID,
		"你的付费内容被解锁了"); err != nil {
		log.Printf("解锁通知发送失败: %v", err)
	}

	// 推实时余额变动
	s.hub.PublishToUser(userID, "tokens_spent", map[string]interface{}{
		"transaction_no": transactionNo,
		"tokens_spent":   cost,
		"balance":        result.Balance,
	})

	return result, nil
}

// 版本号冲突只说明别的请求动了余额，重读后重试即可
const spendMaxAttempts = 2

// executeSpend 读余额、条件扣减、写流水和发件箱事件，整个写入在一个事务里。
// 乐观锁冲突时重读余额再试一次，重试用完返回 ErrSpendBusy。
func (s *SpendService) executeSpend(ctx context.Context, userID, ownerID, cost int64,
	transactionNo string, postID, mediaID *int64) (*SpendResult, error) {
	for attempt := 0; attempt < spendMaxAttempts; attempt++ {
		profile, err := s.profileRepo.GetByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if profile.TokensBalance < cost {
			return nil, &InsufficientBalanceError{Required: cost, Balance: profile.TokensBalance}
		}

		transaction := &model.TokenTransaction{
			TransactionNo: transactionNo,
			UserID:        userID,
			PostID:        postID,
			MediaID:       mediaID,
			TokensSpent:   cost,
			BalanceBefore: profile.TokensBalance,
			BalanceAfter:  profile.TokensBalance - cost,
		}

		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := s.profileRepo.Deduct(ctx, tx, userID, cost, profile.Version); err != nil {
				return err
			}
			if err := s.transactionRepo.Create(ctx, tx, transaction); err != nil {
				return err
			}

			payload, err := json.Marshal(map[string]interface{}{
				"event":          "content_unlocked",
				"transaction_no": transactionNo,
				"user_id":        userID,
				"owner_id":       ownerID,
				"post_id":        postID,
				"media_id":       mediaID,
				"tokens_spent":   cost,
			})
			if err != nil {
				return err
			}
			return s.outboxRepo.Create(ctx, tx, &model.OutboxMessage{
				MessageKey: transactionNo,
				Topic:      s.kafkaCfg.Topic.TokenEvent,
				Payload:    string(payload),
				Status:     model.OutboxStatusPending,
			})
		})
		switch {
		case err == nil:
			return &SpendResult{
				TransactionNo: transactionNo,
				TokensSpent:   cost,
				Balance:       transaction.BalanceAfter,
			}, nil
		case errors.Is(err, repository.ErrBalanceNotEnough):
			// 并发场景下预检查通过但条件扣减失败
			fresh, perr := s.profileRepo.GetByUserID(ctx, userID)
			if perr != nil {
				return nil, perr
			}
			return nil, &InsufficientBalanceError{Required: cost, Balance: fresh.TokensBalance}
		case errors.Is(err, repository.ErrOptimisticLock):
			log.Printf("余额版本冲突，重试扣减: user_id=%d attempt=%d", userID, attempt+1)
			continue
		default:
			return nil, err
		}
	}
	return nil, ErrSpendBusy
}

func (s *SpendService) getExisting(ctx context.Context, userID int64, postID, mediaID *int64) (*model.TokenTransaction, error) {
	if postID != nil {
		return s.transactionRepo.GetByUserAndPost(ctx, userID, *postID)
	}
	return s.transactionRepo.GetByUserAndMedia(ctx, userID, *mediaID)
}

// ListTransactions 消费历史
func (s *SpendService) ListTransactions(ctx context.Context, userID int64, page, pageSize int) ([]*model.TokenTransaction, error) {
	return s.transactionRepo.ListByUserID(ctx, userID, page, pageSize)
}
