package cmd

import (
	"github.com/emrgen/headline/internal/config"
	"github.com/emrgen/headline/internal/server"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var grpcPort string
	var httpPort string

	command := &cobra.Command{
		Use:   "serve",
		Short: "start the headline server",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.LoadConfig()
			if grpcPort != "" {
				cfg.GrpcPort = grpcPort
			}
			if httpPort != "" {
				cfg.HttpPort = httpPort
			}

			server.NewServer(cfg).Start()
		},
	}

	command.Flags().StringVarP(&grpcPort, "grpc-port", "g", "", "grpc port, overrides GRPC_PORT")
	command.Flags().StringVarP(&httpPort, "http-port", "p", "", "http port, overrides HTTP_PORT")

	return command
}
