package main

import (
	"log"
	"os"

	"github.com/framewire/broker/internal/api"
	"github.com/framewire/broker/internal/audit"
	"github.com/framewire/broker/internal/broker"
	"github.com/framewire/broker/internal/config"
	"github.com/framewire/broker/internal/control"
	"github.com/framewire/broker/internal/mqtt"
	"github.com/framewire/broker/internal/storage/postgres"
)

func main() {
	cfg := config.LoadBrokerConfig()

	registry := broker.NewRegistry(cfg.ChannelCapacity)
	api.InitAuth()
	api.Init(registry, cfg)

	if labelsPath := os.Getenv("BROKER_LABELS_FILE"); labelsPath != "" {
		if err := control.LoadLabels(labelsPath); err != nil {
			log.Printf("control: failed to load %s: %v", labelsPath, err)
		}
	}

	if pgClient, err := postgres.New("frame-broker"); err != nil {
		log.Printf("audit: postgres unavailable, continuing with in-memory audit only: %v", err)
	} else {
		audit.SetPostgresClient(pgClient)
		defer pgClient.Close()
	}

	if os.Getenv("MQTT_URL") != "" {
		client := mqtt.NewClient("frame-broker-admin")
		controller := control.NewController(client, registry)
		controller.Start()
	}

	audit.Emit("info", "system.startup", "", "", nil)
	if err := api.ListenAndServe(); err != nil {
		log.Fatalf("api server failed: %v", err)
	}
}
