package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anoixa/imagehost/api/core"
	"github.com/anoixa/imagehost/config"
	"github.com/anoixa/imagehost/database"
	"github.com/anoixa/imagehost/internal/app"
	"github.com/anoixa/imagehost/utils"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start API server",
	Run: func(cmd *cobra.Command, args []string) {
		RunServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer() {
	cfg := loadConfig()
	log := utils.Logger()
	log.Info().Str("version", config.Version).Str("commit", config.CommitHash).Msg("Starting imagehost")

	if err := os.MkdirAll("./data", os.ModePerm); err != nil {
		log.Fatal().Err(err).Msg("Failed to create data directory")
	}

	container := app.NewContainer(cfg)
	if err := container.InitDatabase(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}

	InitDatabase(container, cfg)

	if err := container.InitServices(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}

	// 启动gin
	server, cleanup := core.StartServer(container, cfg)
	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("Server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// 处理退出signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	if cleanup != nil {
		cleanup()
	}

	// 关闭 DI 容器
	if err := container.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing container")
	}

	log.Info().Msg("Server exited successfully")
}

// InitDatabase 等待数据库可用并自动迁移
func InitDatabase(container *app.Container, cfg *config.Config) {
	log := utils.Logger()
	factory := container.GetDatabaseFactory()
	log.Info().Str("type", factory.GetProvider().Name()).Msg("Initializing database")

	ctx := context.Background()
	if err := database.WaitForDB(ctx, factory.GetProvider(), cfg.DBWaitRetries, cfg.DBWaitInterval); err != nil {
		log.Fatal().Err(err).Msg("Database unavailable")
	}

	// 自动DDL
	if err := factory.AutoMigrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to auto migrate database")
	}

	log.Info().Msg("Database initialized successfully")
}
