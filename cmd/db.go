package cmd

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/emrgen/headline/internal/config"
	"github.com/emrgen/headline/internal/model"
	"github.com/emrgen/headline/internal/seed"
	"github.com/emrgen/headline/internal/store"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "db commands",
}

func init() {
	dbCmd.AddCommand(Migrate())
	dbCmd.AddCommand(Seed())
}

func Migrate() *cobra.Command {
	command := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the database",
		Run: func(cmd *cobra.Command, args []string) {
			db, err := config.GetDb(config.LoadConfig())
			if err != nil {
				logrus.Fatal(err)
			}
			if err = model.Migrate(db); err != nil {
				logrus.Fatal(err)
			}
			color.Green("database migrated")
		},
	}

	return command
}

func Seed() *cobra.Command {
	var count int

	command := &cobra.Command{
		Use:   "seed",
		Short: "Seed the database with sample headlines",
		Run: func(cmd *cobra.Command, args []string) {
			db, err := config.GetDb(config.LoadConfig())
			if err != nil {
				logrus.Fatal(err)
			}

			s := store.NewGormStore(db)
			if err = s.Migrate(); err != nil {
				logrus.Fatal(err)
			}

			now := uint64(time.Now().UnixNano())
			headlines, err := seed.Seed(context.Background(), s, count, rand.New(rand.NewPCG(now, now>>1)))
			if err != nil {
				logrus.Fatal(err)
			}
			color.Green("seeded %d headlines", len(headlines))
		},
	}

	command.Flags().IntVarP(&count, "count", "n", seed.DefaultCount, "number of headlines")

	return command
}
