package main

import (
	"log"

	"placement-backend/internal/bootstrap"
	"placement-backend/internal/shared/config"
	"placement-backend/internal/shared/server"
)

func main() {
	cfg := config.Load()
	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}
	defer app.Close()

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s queue=%s state=%s", addr, app.QueueBackend(), cfg.StateStore)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
