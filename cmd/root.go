package cmd

import (
	"os"

	"github.com/anoixa/imagehost/config"
	"github.com/anoixa/imagehost/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "imagehost",
	Short: "An authenticated image hosting API",
	Run: func(cmd *cobra.Command, args []string) {
		serveCmd.Run(cmd, args)
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (eg: /etc/imagehost/.env)")
	err := viper.BindPFlag("config_file_path", rootCmd.PersistentFlags().Lookup("config"))
	if err != nil {
		return
	}
}

// loadConfig 读取配置并初始化日志
func loadConfig() *config.Config {
	config.InitConfig()
	cfg := config.Get()
	utils.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	return cfg
}
