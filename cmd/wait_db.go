package cmd

import (
	"context"

	"github.com/anoixa/imagehost/database"
	"github.com/anoixa/imagehost/utils"
	"github.com/spf13/cobra"
)

// waitDBCmd 阻塞直到数据库可连接，容器启动脚本使用
var waitDBCmd = &cobra.Command{
	Use:   "wait-db",
	Short: "Block until the database accepts connections",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		retries, _ := cmd.Flags().GetInt("retries")
		if retries <= 0 {
			retries = cfg.DBWaitRetries
		}

		factory, err := database.NewFactory(cfg)
		if err != nil {
			utils.Logger().Fatal().Err(err).Msg("Failed to open database")
		}
		defer factory.Close()

		if err := database.WaitForDB(context.Background(), factory.GetProvider(), retries, cfg.DBWaitInterval); err != nil {
			utils.Logger().Fatal().Err(err).Msg("Database unavailable")
		}
		utils.Logger().Info().Msg("Database available")
	},
}

func init() {
	rootCmd.AddCommand(waitDBCmd)
	waitDBCmd.Flags().Int("retries", 0, "number of attempts (default: db_wait_retries)")
}
