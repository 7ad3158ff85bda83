package image

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/anoixa/imagehost/database/models"
	"github.com/anoixa/imagehost/storage"
	"github.com/anoixa/imagehost/utils"
	"github.com/anoixa/imagehost/utils/generator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/semaphore"
)

var (
	transformTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imagehost_transform_total",
			Help: "Image transforms by codec and outcome",
		},
		[]string{"codec", "outcome"},
	)
	transformDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "imagehost_transform_duration_seconds",
			Help:    "Time spent decoding, resizing and encoding one image",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"codec"},
	)
)

// ResizedStore 保存缩放图记录
type ResizedStore interface {
	Create(ctx context.Context, resized *models.Resized) error
}

// EngineConfig 引擎参数
type EngineConfig struct {
	MaxDimension   int
	MaxConcurrency int64
}

// Engine 缩放引擎：解码、缩放、编码、保存文件、写入记录
type Engine struct {
	codec   Codec
	storage storage.Provider
	store   ResizedStore
	paths   *generator.PathGenerator
	sem     *semaphore.Weighted
	maxDim  int
}

// NewEngine 创建缩放引擎
func NewEngine(codec Codec, provider storage.Provider, store ResizedStore, cfg EngineConfig) *Engine {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 1
	}
	return &Engine{
		codec:   codec,
		storage: provider,
		store:   store,
		paths:   generator.NewPathGenerator(),
		sem:     semaphore.NewWeighted(cfg.MaxConcurrency),
		maxDim:  cfg.MaxDimension,
	}
}

// Codec 返回引擎使用的编解码器
func (e *Engine) Codec() Codec {
	return e.codec
}

// Plan 检查输出格式并计算目标尺寸，不做任何解码
func (e *Engine) Plan(format string, w0, h0 int, params SizeParams) (int, int, error) {
	if !e.codec.CanEncode(format) {
		return 0, 0, fmt.Errorf("%w: cannot encode %s", ErrUnsupportedFormat, format)
	}
	width, height := TargetSize(w0, h0, params)
	if err := CheckTargetSize(width, height, e.maxDim); err != nil {
		return 0, 0, err
	}
	return width, height, nil
}

// Transform 为 src 生成一张缩放图
// 记录的 quality 为请求值，编码使用 EncodeQuality 截断后的值
func (e *Engine) Transform(ctx context.Context, src *models.Image, payload []byte, params SizeParams) (*models.Resized, error) {
	width, height, err := e.Plan(src.Format, src.Width, src.Height, params)
	if err != nil {
		transformTotal.WithLabelValues(e.codec.Name(), "rejected").Inc()
		return nil, err
	}

	encoded, err := e.render(ctx, payload, src.Format, width, height, EncodeQuality(params.Quality))
	if err != nil {
		transformTotal.WithLabelValues(e.codec.Name(), "failed").Inc()
		return nil, err
	}

	path := e.paths.Generate(src.UserID, generator.KindResized, generator.ExtensionForFormat(src.Format))
	if err := e.storage.SaveWithContext(ctx, path, bytes.NewReader(encoded)); err != nil {
		transformTotal.WithLabelValues(e.codec.Name(), "failed").Inc()
		return nil, fmt.Errorf("failed to save resized payload: %w", err)
	}

	imageID := src.ID
	resized := &models.Resized{
		UserID:  src.UserID,
		ImageID: &imageID,
		Path:    path,
		Quality: params.Quality,
		Width:   width,
		Height:  height,
		Size:    int64(len(encoded)),
	}
	if err := e.store.Create(ctx, resized); err != nil {
		if delErr := e.storage.DeleteWithContext(context.WithoutCancel(ctx), path); delErr != nil {
			utils.Logger().Warn().Err(delErr).Str("path", path).Msg("[Transform] failed to remove orphan payload")
		}
		transformTotal.WithLabelValues(e.codec.Name(), "failed").Inc()
		return nil, err
	}

	transformTotal.WithLabelValues(e.codec.Name(), "ok").Inc()
	utils.LogIfDevf("[Transform] image %d -> resized %d (%dx%d, q=%d)", src.ID, resized.ID, width, height, params.Quality)
	return resized, nil
}

// render 在并发上限内完成解码、缩放和编码
func (e *Engine) render(ctx context.Context, payload []byte, format string, width, height, quality int) ([]byte, error) {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer e.sem.Release(1)

	start := time.Now()
	defer func() {
		transformDuration.WithLabelValues(e.codec.Name()).Observe(time.Since(start).Seconds())
	}()

	pic, err := e.codec.Decode(payload)
	if err != nil {
		return nil, err
	}
	defer pic.Close()

	resized, err := e.codec.Resize(pic, width, height)
	if err != nil {
		return nil, err
	}
	if resized != pic {
		defer resized.Close()
	}

	return e.codec.Encode(resized, format, quality)
}
