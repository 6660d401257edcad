package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"fanstream/internal/infrastructure/storage"
	"fanstream/internal/model"
	"fanstream/internal/repository"

	"github.com/google/uuid"
)

// MediaService 媒体上传与访问
// 文件本体放对象存储，数据库只存 key 和 URL
type MediaService struct {
	mediaRepo     *repository.MediaRepository
	store         *storage.Store
	accessService *AccessService
}

func NewMediaService(
	mediaRepo *repository.MediaRepository,
	store *storage.Store,
	accessService *AccessService,
) *MediaService {
	return &MediaService{
		mediaRepo:     mediaRepo,
		store:         store,
		accessService: accessService,
	}
}

// UploadMediaInput 上传参数
type UploadMediaInput struct {
	Type           string
	Filename       string
	ContentType    string
	Description    string
	TokenCost      int64
	ViewCondition  string
	AccessPassword string
	Body           io.Reader
}

func (s *MediaService) Upload(ctx context.Context, userID int64, input *UploadMediaInput) (*model.Media, error) {
	if input.Type != model.MediaTypePhoto && input.Type != model.MediaTypeVideo {
		return nil, fmt.Errorf("不支持的媒体类型: %s", input.Type)
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

	// 对象 key 用 uuid 避免重名覆盖，按用户和类型分目录
	ext := strings.ToLower(path.Ext(input.Filename))
	objectKey := fmt.Sprintf("%s/%d/%s%s", input.Type, userID, uuid.NewString(), ext)

	url, err := s.store.Put(ctx, objectKey, input.ContentType, input.Body)
	if err != nil {
		return nil, fmt.Errorf("上传对象存储失败: %w", err)
	}

	media := &model.Media{
		UserID:         userID,
		Type:           input.Type,
		ObjectKey:      objectKey,
		URL:            url,
		Description:    input.Description,
		TokenCost:      input.TokenCost,
		ViewCondition:  input.ViewCondition,
		AccessPassword: input.AccessPassword,
	}
	if err := s.mediaRepo.Create(ctx, media); err != nil {
		// 落库失败把已上传的对象清掉
		if derr := s.store.Delete(ctx, objectKey); derr != nil {
			log.Printf("清理对象存储失败: key=%s err=%v", objectKey, derr)
		}
		return nil, err
	}

	return media, nil
}

// MediaView 面向查看者的媒体视图
// 没有访问权限时不下发 URL
type MediaView struct {
	*model.Media
	Gate GateResult `json:"gate"`
}

func (s *MediaService) Get(ctx context.Context, viewerID, mediaID int64, password string) (*MediaView, error) {
	media, err := s.mediaRepo.GetByID(ctx, mediaID)
	if err != nil {
		return nil, err
	}
	return s.toView(ctx, viewerID, media, password)
}

func (s *MediaService) ListByUser(ctx context.Context, viewerID, ownerID int64, mediaType string, page, pageSize int) ([]*MediaView, int64, error) {
	items, total, err := s.mediaRepo.ListByUserID(ctx, ownerID, mediaType, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	views := make([]*MediaView, 0, len(items))
	for _, media := range items {
		view, err := s.toView(ctx, viewerID, media, "")
		if err != nil {
			return nil, 0, err
		}
		views = append(views, view)
	}
	return views, total, nil
}

func (s *MediaService) Delete(ctx context.Context, userID, mediaID int64) error {
	media, err := s.mediaRepo.DeleteOwn(ctx, mediaID, userID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, media.ObjectKey); err != nil {
		// 数据库记录已删，对象残留只记日志
		log.Printf("删除对象存储失败: key=%s err=%v", media.ObjectKey, err)
	}
	return nil
}

func (s *MediaService) toView(ctx context.Context, viewerID int64, media *model.Media, password string) (*MediaView, error) {
	gate, err := s.accessService.CheckMedia(ctx, viewerID, media, password)
	if err != nil {
		return nil, err
	}

	view := &MediaView{Media: media, Gate: gate}
	if !gate.Allowed {
		redacted := *media
		redacted.URL = ""
		view.Media = &redacted
	}
	return view, nil
}
