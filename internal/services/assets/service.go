// Package assets 图片资源服务：上传、缩放、按所有者读写、级联删除与过期链接
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/anoixa/imagehost/database/models"
	"github.com/anoixa/imagehost/database/repo/images"
	"github.com/anoixa/imagehost/internal/image"
	"github.com/anoixa/imagehost/internal/link"
	"github.com/anoixa/imagehost/storage"
	"github.com/anoixa/imagehost/utils"
	"github.com/anoixa/imagehost/utils/generator"
	"github.com/anoixa/imagehost/utils/validator"
)

// maxNameLength 与 Image.Name 列宽一致
const maxNameLength = 255

// ErrInvalidImage 上传内容不是可识别的图片
var ErrInvalidImage = errors.New("invalid image")

// 支持上传的格式
var uploadFormats = map[string]bool{
	image.FormatJPEG: true,
	image.FormatPNG:  true,
	image.FormatGIF:  true,
	image.FormatWEBP: true,
	image.FormatBMP:  true,
}

// UploadInput 一次上传
type UploadInput struct {
	UserID      uint
	FileName    string
	Description string
	Data        []byte
}

// Config 服务参数
type Config struct {
	MediaURLPrefix string
}

// Service 图片资源服务
type Service struct {
	images  *images.Repository
	resized *images.ResizedRepository
	storage storage.Provider
	engine  *image.Engine
	links   *link.Codec
	paths   *generator.PathGenerator
	prefix  string
	now     func() time.Time
}

// NewService 创建图片资源服务
func NewService(
	imagesRepo *images.Repository,
	resizedRepo *images.ResizedRepository,
	provider storage.Provider,
	engine *image.Engine,
	cfg Config,
) *Service {
	return &Service{
		images:  imagesRepo,
		resized: resizedRepo,
		storage: provider,
		engine:  engine,
		links:   link.NewCodec(cfg.MediaURLPrefix),
		paths:   generator.NewPathGenerator(),
		prefix:  cfg.MediaURLPrefix,
		now:     time.Now,
	}
}

// MediaURL 文件的公开访问地址
func (s *Service) MediaURL(host, path string) string {
	return fmt.Sprintf("http://%s%s%s", host, s.prefix, path)
}

// probe 读取尺寸和格式，失败统一为 ErrInvalidImage
func (s *Service) probe(data []byte) (int, int, string, error) {
	if len(data) == 0 {
		return 0, 0, "", ErrInvalidImage
	}
	if ok, mimeType, err := validator.IsImage(bytes.NewReader(data)); err != nil || !ok {
		return 0, 0, "", fmt.Errorf("%w: %s", ErrInvalidImage, mimeType)
	}
	width, height, format, err := image.Probe(s.engine.Codec(), data)
	if err != nil {
		return 0, 0, "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if !uploadFormats[format] || width < 1 || height < 1 {
		return 0, 0, "", fmt.Errorf("%w: %s", ErrInvalidImage, format)
	}
	return width, height, format, nil
}

// Upload 保存原图文件并写入记录
func (s *Service) Upload(ctx context.Context, in UploadInput) (*models.Image, error) {
	width, height, format, err := s.probe(in.Data)
	if err != nil {
		return nil, err
	}
	return s.store(ctx, in, width, height, format)
}

func (s *Service) store(ctx context.Context, in UploadInput, width, height int, format string) (*models.Image, error) {
	path := s.paths.Generate(in.UserID, generator.KindOriginal, generator.ExtensionForFormat(format))
	if err := s.storage.SaveWithContext(ctx, path, bytes.NewReader(in.Data)); err != nil {
		return nil, fmt.Errorf("failed to save image payload: %w", err)
	}

	img := &models.Image{
		UserID:      in.UserID,
		Path:        path,
		Name:        displayName(in.FileName),
		Width:       width,
		Height:      height,
		Format:      format,
		Size:        int64(len(in.Data)),
		Description: in.Description,
	}
	if err := s.images.Create(ctx, img); err != nil {
		if delErr := s.storage.DeleteWithContext(context.WithoutCancel(ctx), path); delErr != nil {
			utils.Logger().Warn().Err(delErr).Str("path", path).Msg("[Assets] failed to remove orphan payload")
		}
		return nil, err
	}

	utils.LogIfDevf("[Assets] user %d uploaded image %d (%s, %dx%d)", in.UserID, img.ID, format, width, height)
	return img, nil
}

// UploadAndResize 上传原图后立即生成一张缩放图
// 输出格式和目标尺寸在保存前检查，缩放失败时撤销已保存的原图
func (s *Service) UploadAndResize(ctx context.Context, in UploadInput, params image.SizeParams) (*models.Image, *models.Resized, error) {
	width, height, format, err := s.probe(in.Data)
	if err != nil {
		return nil, nil, err
	}
	if _, _, err := s.engine.Plan(format, width, height, params); err != nil {
		return nil, nil, err
	}

	img, err := s.store(ctx, in, width, height, format)
	if err != nil {
		return nil, nil, err
	}
	resized, err := s.engine.Transform(ctx, img, in.Data, params)
	if err != nil {
		if delErr := s.DeleteImage(context.WithoutCancel(ctx), img.ID, in.UserID); delErr != nil {
			utils.Logger().Warn().Err(delErr).Uint("image_id", img.ID).Msg("[Assets] failed to roll back upload")
		}
		return nil, nil, err
	}
	resized.Image = img
	return img, resized, nil
}

// ListImages 列出用户的原图
func (s *Service) ListImages(ctx context.Context, userID uint) ([]*models.Image, error) {
	return s.images.ListByUser(ctx, userID)
}

// GetImage 获取用户的一张原图
func (s *Service) GetImage(ctx context.Context, id, userID uint) (*models.Image, error) {
	return s.images.GetByIDAndUser(ctx, id, userID)
}

// UpdateDescription 修改原图描述
func (s *Service) UpdateDescription(ctx context.Context, id, userID uint, description string) (*models.Image, error) {
	return s.images.UpdateDescription(ctx, id, userID, description)
}

// DeleteImage 删除原图、它的缩放图以及全部文件
func (s *Service) DeleteImage(ctx context.Context, id, userID uint) error {
	return s.images.DeleteCascade(ctx, id, userID, s.RemovePayloads)
}

// Resize 为已有原图生成缩放图
func (s *Service) Resize(ctx context.Context, id, userID uint, params image.SizeParams) (*models.Resized, error) {
	img, err := s.images.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	payload, err := s.load(ctx, img.Path)
	if err != nil {
		return nil, err
	}
	resized, err := s.engine.Transform(ctx, img, payload, params)
	if err != nil {
		return nil, err
	}
	resized.Image = img
	return resized, nil
}

// ListResized 列出用户的缩放图
func (s *Service) ListResized(ctx context.Context, userID uint) ([]*models.Resized, error) {
	return s.resized.ListByUser(ctx, userID)
}

// GetResized 获取用户的一张缩放图
func (s *Service) GetResized(ctx context.Context, id, userID uint) (*models.Resized, error) {
	return s.resized.GetByIDAndUser(ctx, id, userID)
}

// DeleteResized 删除缩放图及其文件
func (s *Service) DeleteResized(ctx context.Context, id, userID uint) error {
	return s.resized.Delete(ctx, id, userID, s.RemovePayloads)
}

// Open 读取文件，供媒体路由使用
func (s *Service) Open(ctx context.Context, path string) (io.ReadSeeker, error) {
	return s.storage.GetWithContext(ctx, path)
}

func (s *Service) load(ctx context.Context, path string) ([]byte, error) {
	r, err := s.storage.GetWithContext(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load payload %s: %w", path, err)
	}
	if c, ok := r.(io.Closer); ok {
		defer c.Close()
	}
	return io.ReadAll(r)
}

// displayName 截断过长的文件名，尽量保留扩展名
func displayName(name string) string {
	runes := []rune(name)
	if len(runes) <= maxNameLength {
		return name
	}
	ext := []rune(path.Ext(name))
	if len(ext) >= maxNameLength/2 {
		return string(runes[:maxNameLength])
	}
	return string(runes[:maxNameLength-len(ext)]) + string(ext)
}
