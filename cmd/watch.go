package cmd

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/emrgen/headline/internal/compress"
	"github.com/emrgen/headline/internal/config"
	"github.com/emrgen/headline/internal/queue"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
)

func watchCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "watch",
		Short: "print headline changes published on the redis channel",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.LoadConfig()

			encoder, err := compress.New(cfg.QueueCompression)
			if err != nil {
				logrus.Error(err)
				return
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, unix.SIGTERM)
			defer stop()

			changes := queue.NewRedis(cfg.RedisAddr, cfg.QueueTopic, encoder)
			defer changes.Close()

			events, err := changes.Subscribe(ctx)
			if err != nil {
				logrus.Error(err)
				return
			}

			color.Cyan("watching %s on %s", cfg.QueueTopic, cfg.RedisAddr)
			for event := range events {
				color.Green("%s", event.Type)
				printField("  headline", uintList([]uint{event.HeadlineID}))
				printField("  forward", uintList(event.ForwardRefIDs))
				printField("  backward", uintList(event.BackwardRefIDs))
				printField("  at", event.OccurredAt.Format("2006-01-02 15:04:05"))
			}
		},
	}

	return command
}

func uintList(ids []uint) string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, strconv.FormatUint(uint64(id), 10))
	}
	return strings.Join(out, ",")
}
