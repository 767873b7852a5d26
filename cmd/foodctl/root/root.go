package root

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/food_api/internal/config"
	"github.com/Skotchmaster/food_api/internal/db"
	"github.com/Skotchmaster/food_api/internal/repo"
	"github.com/Skotchmaster/food_api/internal/service"
)

var databaseURL string

var RootCmd = &cobra.Command{
	Use:           "foodctl",
	Short:         "Food API administration",
	Long:          "Manage users of the food API directly against its database.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "",
		"database url, defaults to DATABASE_URL or sqlite://food.db")
}

func GetRoot() *cobra.Command {
	return RootCmd
}

// UserService opens the configured database. The returned func closes it.
func UserService(ctx context.Context) (*service.UserService, func(), error) {
	url := databaseURL
	if url == "" {
		url = config.EnvDefault("DATABASE_URL", "sqlite://food.db")
	}

	gdb, err := db.Open(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(gdb); err != nil {
		return nil, nil, err
	}

	closeFn := func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return &service.UserService{Repo: repo.New(gdb)}, closeFn, nil
}

func SetDatabaseURL(url string) {
	databaseURL = url
}
