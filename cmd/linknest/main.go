package main

import (
	"log"

	"github.com/dtechoracle/linkNest/internal/app"
)

func main() {
	linkNest, err := app.New()
	if err != nil {
		log.Fatalf("Failed to initialize the application: %v", err)
	}
	defer linkNest.Close()

	if err := linkNest.Run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}
