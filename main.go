package main

import (
	"flag"

	"humres/config"
	"humres/server/http_server"

	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the JSON config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("Error loading config")
	}
	if err := http_server.StartServer(cfg); err != nil {
		logrus.WithError(err).Fatal("Error starting server")
	}
}
