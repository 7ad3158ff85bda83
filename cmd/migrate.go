package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anoixa/imagehost/database"
	"github.com/anoixa/imagehost/database/models"
	"github.com/anoixa/imagehost/utils"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// migrateCmd 应用数据库结构
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		factory, err := database.NewFactory(cfg)
		if err != nil {
			utils.Logger().Fatal().Err(err).Msg("Failed to open database")
		}
		defer factory.Close()

		if err := factory.AutoMigrate(); err != nil {
			utils.Logger().Fatal().Err(err).Msg("Migration failed")
		}
	},
}

// migrateCopyCmd 在两个数据库之间复制数据
var migrateCopyCmd = &cobra.Command{
	Use:   "copy",
	Short: "Copy all rows from one database to another",
	Long: `Copy users, images and resized images from a source database to a target database.

Examples:
  # Move from SQLite to PostgreSQL
  imagehost migrate copy --from-sqlite ./data/imagehost.db --to-postgres "host=localhost user=postgres password=secret dbname=imagehost port=5432"

  # Replace rows that already exist in the target
  imagehost migrate copy --from-sqlite ./data/imagehost.db --to-postgres "..." --on-conflict=overwrite`,
	Run: func(cmd *cobra.Command, args []string) {
		loadConfig()
		opts := copyOptions{}
		opts.fromType, _ = cmd.Flags().GetString("from-type")
		opts.toType, _ = cmd.Flags().GetString("to-type")
		opts.fromDSN, _ = cmd.Flags().GetString("from-dsn")
		opts.toDSN, _ = cmd.Flags().GetString("to-dsn")
		opts.batchSize, _ = cmd.Flags().GetInt("batch-size")
		opts.onConflict, _ = cmd.Flags().GetString("on-conflict")
		if p, _ := cmd.Flags().GetString("from-sqlite"); p != "" {
			opts.fromType, opts.fromDSN = "sqlite", p
		}
		if p, _ := cmd.Flags().GetString("to-postgres"); p != "" {
			opts.toType, opts.toDSN = "postgres", p
		}

		stats, err := runCopy(context.Background(), opts)
		if stats != nil {
			utils.Logger().Info().
				Int("users", stats.users).
				Int("images", stats.images).
				Int("resized", stats.resized).
				Int("skipped", stats.skipped).
				Int("overwritten", stats.overwritten).
				Msg("Copy finished")
		}
		if err != nil {
			utils.Logger().Fatal().Err(err).Msg("Copy failed")
		}
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateCopyCmd)

	migrateCopyCmd.Flags().String("from-type", "", "Source database type (sqlite, postgres)")
	migrateCopyCmd.Flags().String("to-type", "", "Target database type (sqlite, postgres)")
	migrateCopyCmd.Flags().String("from-dsn", "", "Source database DSN/connection string")
	migrateCopyCmd.Flags().String("to-dsn", "", "Target database DSN/connection string")
	migrateCopyCmd.Flags().String("from-sqlite", "", "Source SQLite file path (shortcut)")
	migrateCopyCmd.Flags().String("to-postgres", "", "Target PostgreSQL connection string (shortcut)")
	migrateCopyCmd.Flags().Int("batch-size", 100, "Batch size for data copy")
	migrateCopyCmd.Flags().String("on-conflict", "skip", "Conflict resolution strategy: skip (default), overwrite, error")
}

type copyOptions struct {
	fromType, fromDSN string
	toType, toDSN     string
	batchSize         int
	onConflict        string
}

// copyStats 复制统计
type copyStats struct {
	users       int
	images      int
	resized     int
	skipped     int
	overwritten int
}

var errRowExists = errors.New("row already exists in target")

func runCopy(ctx context.Context, opts copyOptions) (*copyStats, error) {
	switch opts.onConflict {
	case "skip", "overwrite", "error":
	default:
		return nil, fmt.Errorf("invalid on-conflict strategy: %s (must be skip, overwrite, or error)", opts.onConflict)
	}
	if opts.fromType == "" || opts.toType == "" || opts.fromDSN == "" || opts.toDSN == "" {
		return nil, fmt.Errorf("source and target type/dsn are required")
	}
	if opts.fromType == opts.toType && opts.fromDSN == opts.toDSN {
		return nil, fmt.Errorf("source and target databases are the same")
	}
	if opts.batchSize <= 0 {
		opts.batchSize = 100
	}

	source, err := openDatabase(opts.fromType, opts.fromDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to source database: %w", err)
	}
	defer closeDatabase(source)

	target, err := openDatabase(opts.toType, opts.toDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to target database: %w", err)
	}
	defer closeDatabase(target)

	return copyAll(ctx, source, target, opts.batchSize, opts.onConflict)
}

// copyAll 按外键顺序复制：用户、原图、缩放图
func copyAll(ctx context.Context, source, target *gorm.DB, batchSize int, onConflict string) (*copyStats, error) {
	if err := target.AutoMigrate(models.All()...); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	stats := &copyStats{}
	if err := copyTable[models.User](ctx, source, target, batchSize, onConflict, stats, &stats.users); err != nil {
		return stats, fmt.Errorf("users: %w", err)
	}
	if err := copyTable[models.Image](ctx, source, target, batchSize, onConflict, stats, &stats.images); err != nil {
		return stats, fmt.Errorf("images: %w", err)
	}
	if err := copyTable[models.Resized](ctx, source, target, batchSize, onConflict, stats, &stats.resized); err != nil {
		return stats, fmt.Errorf("resized: %w", err)
	}

	// 显式写入主键后 PostgreSQL 序列不会前移
	if target.Dialector.Name() == "postgres" {
		for _, table := range []string{"users", "images", "resized"} {
			sql := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE(MAX(id), 1)) FROM %s", table, table)
			if err := target.WithContext(ctx).Exec(sql).Error; err != nil {
				return stats, fmt.Errorf("failed to reset sequence of %s: %w", table, err)
			}
		}
	}
	return stats, nil
}

func copyTable[T any](ctx context.Context, source, target *gorm.DB, batchSize int, onConflict string, stats *copyStats, counter *int) error {
	var batch []T
	return source.WithContext(ctx).Order("id").FindInBatches(&batch, batchSize, func(_ *gorm.DB, _ int) error {
		for i := range batch {
			row := &batch[i]
			var count int64
			if err := target.WithContext(ctx).Model(row).Where("id = ?", primaryKey(row)).Count(&count).Error; err != nil {
				return err
			}

			if count > 0 {
				switch onConflict {
				case "skip":
					stats.skipped++
					continue
				case "error":
					return fmt.Errorf("%w: id %d", errRowExists, primaryKey(row))
				}
				if err := target.WithContext(ctx).Omit("User", "Image").Save(row).Error; err != nil {
					return err
				}
				stats.overwritten++
				*counter++
				continue
			}

			if err := target.WithContext(ctx).Omit("User", "Image").Create(row).Error; err != nil {
				return err
			}
			*counter++
		}
		return nil
	}).Error
}

func primaryKey(row interface{}) uint {
	switch v := row.(type) {
	case *models.User:
		return v.ID
	case *models.Image:
		return v.ID
	case *models.Resized:
		return v.ID
	}
	return 0
}

// openDatabase 打开数据库连接
func openDatabase(dbType, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch dbType {
	case "sqlite", "sqlite3":
		dialector = sqlite.Open(dsn)
	case "postgres", "postgresql":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func closeDatabase(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
