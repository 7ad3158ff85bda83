package assets

import (
	"context"
	"fmt"

	"github.com/anoixa/imagehost/storage"
	"github.com/anoixa/imagehost/utils"
	"golang.org/x/sync/errgroup"
)

// removeConcurrency 并发删除文件的上限
const removeConcurrency = 8

// RemovePayloads 并发删除一组文件，已不存在的文件视为删除成功
// 任何其他错误都会返回，让调用方回滚事务
func (s *Service) RemovePayloads(ctx context.Context, paths []string) error {
	return removePayloads(ctx, s.storage, paths)
}

func removePayloads(ctx context.Context, provider storage.Provider, paths []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(removeConcurrency)

	for _, path := range paths {
		g.Go(func() error {
			err := provider.DeleteWithContext(gctx, path)
			if err == nil {
				return nil
			}
			if storage.IsNotFound(err) {
				utils.LogIfDevf("[Assets] payload already gone: %s", path)
				return nil
			}
			return fmt.Errorf("failed to remove payload %s: %w", path, err)
		})
	}
	return g.Wait()
}

// PayloadRemover 供账户删除等其他服务复用
func PayloadRemover(provider storage.Provider) func(ctx context.Context, paths []string) error {
	return func(ctx context.Context, paths []string) error {
		return removePayloads(ctx, provider, paths)
	}
}
