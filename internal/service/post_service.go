package service

import (
	"context"
	"errors"

	"fanstream/internal/model"
	"fanstream/internal/repository"
)

var (
	ErrInvalidViewCondition = errors.New("无效的查看条件")
	ErrInvalidTokenCost     = errors.New("解锁费用不能为负数")
	ErrEmptyContent         = errors.New("内容不能为空")
)

// PostService 帖子
type PostService struct {
	postRepo      *repository.PostRepository
	accessService *AccessService
}

func NewPostService(postRepo *repository.PostRepository, accessService *AccessService) *PostService {
	return &PostService{
		postRepo:      postRepo,
		accessService: accessService,
	}
}

// CreatePostInput 发帖参数
type CreatePostInput struct {
	Content        string `json:"content"`
	TokenCost      int64  `json:"token_cost"`
	ViewCondition  string `json:"view_condition"`
	AccessPassword string `json:"access_password"`
}

func (s *PostService) Create(ctx context.Context, userID int64, input *CreatePostInput) (*model.Post, error) {
	if input.Content == "" {
		return nil, ErrEmptyContent
	}
	if input.TokenCost < 0 {
		return nil, ErrInvalidTokenCost
	}
	if input.ViewCondition == "" {
		input.ViewCondition = model.ViewConditionNone
	}
	if !model.IsValidViewCondition(input.ViewCondition) {
		return nil, ErrInvalidViewCondition
	}

	post := &model.Post{
		UserID:         userID,
		Content:        input.Content,
		TokenCost:      input.TokenCost,
		ViewCondition:  input.ViewCondition,
		AccessPassword: input.AccessPassword,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// PostView 面向查看者的帖子视图
// 没有访问权限时正文被抹掉，只保留元信息和门槛说明
type PostView struct {
	*model.Post
	Gate GateResult `json:"gate"`
}

// Get 查看单条帖子，按查看者权限做内容裁剪
func (s *PostService) Get(ctx context.Context, viewerID, postID int64, password string) (*PostView, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.toView(ctx, viewerID, post, password)
}

// ListFeed 订阅流
func (s *PostService) ListFeed(ctx context.Context, viewerID int64, page, pageSize int) ([]*PostView, error) {
	posts, err := s.postRepo.ListFeed(ctx, viewerID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return s.toViews(ctx, viewerID, posts)
}

// ListByUser 某个作者的帖子列表
func (s *PostService) ListByUser(ctx context.Context, viewerID, authorID int64, page, pageSize int) ([]*PostView, int64, error) {
	posts, total, err := s.postRepo.ListByUserID(ctx, authorID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.toViews(ctx, viewerID, posts)
	return views, total, err
}

func (s *PostService) Delete(ctx context.Context, userID, postID int64) error {
	return s.postRepo.DeleteOwn(ctx, postID, userID)
}

func (s *PostService) toView(ctx context.Context, viewerID int64, post *model.Post, password string) (*PostView, error) {
	gate, err := s.accessService.CheckPost(ctx, viewerID, post, password)
	if err != nil {
		return nil, err
	}

	view := &PostView{Post: post, Gate: gate}
	if !gate.Allowed {
		redacted := *post
		redacted.Content = ""
		view.Post = &redacted
	}
	return view, nil
}

func (s *PostService) toViews(ctx context.Context, viewerID int64, posts []*model.Post) ([]*PostView, error) {
	views := make([]*PostView, 0, len(posts))
	for _, post := range posts {
		view, err := s.toView(ctx, viewerID, post, "")
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}
