package main

import (
	"log"
	"net/http"
	"os"

	"daybook/internal/config"
	"daybook/internal/serverapp"
)

func main() {
	cfgPath := os.Getenv("DAYBOOK_CONFIG")
	if cfgPath == "" {
		cfgPath = "daybook.yml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	handler, err := serverapp.NewHandler(serverapp.Options{
		Config: cfg,
		Logger: log.Default(),
	})
	if err != nil {
		log.Fatalf("build server: %v", err)
	}

	log.Printf("listening on %s", cfg.Server.Addr)
	log.Fatal(http.ListenAndServe(cfg.Server.Addr, handler))
}
