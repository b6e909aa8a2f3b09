package main

import (
	"log"

	"rijal-backend/internal/engine"
	"rijal-backend/internal/shared/config"
	"rijal-backend/internal/shared/server"
)

func main() {
	cfg := config.Load()

	eng, err := engine.Default(cfg)
	if err != nil {
		log.Fatalf("engine initialization failed: %v", err)
	}
	defer eng.Close()

	r := server.NewRouter(cfg, eng)

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s", addr)

	if err := r.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
