package config_test

import (
	"context"
	"fmt"
	"log"

	"github.com/sagarc03/edgeserve/config"
)

func ExampleLoad() {
	// Load with defaults only (no config file)
	cfg, err := config.Load(nil, nil)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Port: %d, Blob: %s, Names: %s\n", cfg.Server.Port, cfg.Blob.Type, cfg.Names.Type)
	// Output: Port: 8787, Blob: filesystem, Names: map
}

func ExampleWithContext() {
	cfg, _ := config.Load(nil, nil)

	// Store config in context
	ctx := config.WithContext(context.Background(), cfg)

	// Retrieve later (e.g., in a subcommand)
	retrieved, err := config.FromContext(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Retrieved port: %d\n", retrieved.Server.Port)
	// Output: Retrieved port: 8787
}
