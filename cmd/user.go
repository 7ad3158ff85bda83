package cmd

import (
	"context"

	"github.com/anoixa/imagehost/internal/app"
	"github.com/anoixa/imagehost/internal/services/users"
	"github.com/anoixa/imagehost/utils"
	"github.com/anoixa/imagehost/utils/validator"
	"github.com/spf13/cobra"
)

// userCmd 用户管理命令
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "User management commands",
}

// createSuperuserCmd 创建管理员账户
var createSuperuserCmd = &cobra.Command{
	Use:   "create-superuser",
	Short: "Create a staff account with superuser rights",
	Run: func(cmd *cobra.Command, args []string) {
		in := superuserInput{}
		in.Email, _ = cmd.Flags().GetString("email")
		in.Name, _ = cmd.Flags().GetString("name")
		in.Password, _ = cmd.Flags().GetString("password")

		cfg := loadConfig()
		log := utils.Logger()
		if err := validator.Struct(in); err != nil {
			log.Fatal().Err(err).Msg("Invalid arguments")
		}

		container := app.NewContainer(cfg)
		if err := container.Init(); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize")
		}
		defer container.Close()

		if err := container.GetDatabaseFactory().AutoMigrate(); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}

		user, err := container.UserService.CreateSuperuser(context.Background(), users.RegisterInput{
			Email:    in.Email,
			Name:     in.Name,
			Password: in.Password,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create superuser")
		}
		log.Info().Uint("id", user.ID).Str("email", user.Email).Msg("Superuser created")
	},
}

type superuserInput struct {
	Email    string `validate:"required,email,max=255"`
	Name     string `validate:"required,max=255"`
	Password string `validate:"required,min=8"`
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(createSuperuserCmd)

	createSuperuserCmd.Flags().String("email", "", "email address")
	createSuperuserCmd.Flags().String("name", "", "display name")
	createSuperuserCmd.Flags().String("password", "", "password (at least 8 characters)")
}
