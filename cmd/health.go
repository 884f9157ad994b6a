package cmd

import (
	"context"
	"time"

	"github.com/emrgen/headline/internal/server"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func healthCmd() *cobra.Command {
	var addr string

	command := &cobra.Command{
		Use:   "health",
		Short: "check the grpc health endpoint",
		Run: func(cmd *cobra.Command, args []string) {
			conn, err := grpc.NewClient(addr,
				grpc.WithTransportCredentials(insecure.NewCredentials()),
				grpc.WithUnaryInterceptor(server.UnaryRequestTimeInterceptor()),
			)
			if err != nil {
				logrus.Error(err)
				return
			}
			defer conn.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			res, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{
				Service: server.HealthService,
			})
			if err != nil {
				color.Red("unhealthy: %v", err)
				return
			}

			if res.GetStatus() != healthpb.HealthCheckResponse_SERVING {
				color.Yellow("status: %s", res.GetStatus())
				return
			}
			color.Green("status: %s", res.GetStatus())
		},
	}

	command.Flags().StringVarP(&addr, "grpc", "g", "localhost:4020", "server grpc address")

	return command
}
