package main

import (
	"github.com/emrgen/headline/internal/config"
	"github.com/emrgen/headline/internal/server"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.LoadConfig()
	cfg.LogLevel = "debug"

	err := server.Start(cfg)
	if err != nil {
		logrus.Error(err)
	}
}
