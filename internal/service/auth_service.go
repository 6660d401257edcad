package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fanstream/internal/config"
	"fanstream/internal/infrastructure/cache"
	"fanstream/internal/model"
	"fanstream/internal/repository"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrInvalidToken       = errors.New("无效的登录凭证")
	ErrUsernameTaken      = errors.New("用户名已被占用")
)

// AuthService 注册 / 登录 / 会话管理
type AuthService struct {
	db          *gorm.DB
	userRepo    *repository.UserRepository
	profileRepo *repository.ProfileRepository
	redisClient *redis.Client
	jwtConfig   *config.JWTConfig
}

func NewAuthService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	profileRepo *repository.ProfileRepository,
	redisClient *redis.Client,
	jwtConfig *config.JWTConfig,
) *AuthService {
	return &AuthService{
		db:          db,
		userRepo:    userRepo,
		profileRepo: profileRepo,
		redisClient: redisClient,
		jwtConfig:   jwtConfig,
	}
}

// AuthResult 注册/登录返回
type AuthResult struct {
	Token   string         `json:"token"`
	User    *model.User    `json:"user"`
	Profile *model.Profile `json:"profile"`
}

// Register 注册
// 用户和资料在同一个事务里创建，余额从 0 开始
func (s *AuthService) Register(ctx context.Context, email, password, username string) (*AuthResult, error) {
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, repository.ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	if _, err := s.profileRepo.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrProfileNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("密码加密失败: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hash),
	}
	profile := &model.Profile{
		Username:    username,
		DisplayName: username,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.Create(ctx, tx, user); err != nil {
			return err
		}
		profile.UserID = user.ID
		return s.profileRepo.Create(ctx, tx, profile)
	})
	if err != nil {
		return nil, err
	}

	token, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: user, Profile: profile}, nil
}

// Login 登录
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	profile, err := s.profileRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	token, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: user, Profile: profile}, nil
}

// Logout 注销，删掉 Redis 里的会话令牌
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	return s.redisClient.Del(ctx, cache.SessionKey(userID)).Err()
}

// issueToken 签发 JWT 并把它写进 Redis 作为有效会话
// Redis 里不存在或不一致的令牌视为已注销
func (s *AuthService) issueToken(ctx context.Context, userID int64) (string, error) {
	expire := time.Duration(s.jwtConfig.ExpireHours) * time.Hour

	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(expire).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return "", fmt.Errorf("签发令牌失败: %w", err)
	}

	if err := s.redisClient.Set(ctx, cache.SessionKey(userID), signed, expire).Err(); err != nil {
		return "", fmt.Errorf("写入会话失败: %w", err)
	}

	return signed, nil
}

// ParseToken 解析并校验 JWT，再和 Redis 里的会话比对
func (s *AuthService) ParseToken(ctx context.Context, tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("不支持的签名算法: %v", t.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, ErrInvalidToken
	}
	userID := int64(userIDFloat)

	stored, err := s.redisClient.Get(ctx, cache.SessionKey(userID)).Result()
	if err != nil || stored != tokenString {
		return 0, ErrInvalidToken
	}

	return userID, nil
}
