package main

import (
	"flag"
	"log"

	"github.com/01Chungee10/SA/internal/app"
)

func main() {
	configPath := flag.String("config", "", "Path to config.json or config.yaml")
	flag.Parse()
	if err := app.Run(*configPath); err != nil {
		log.Fatalf("emotion: %v", err)
	}
}
