// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

// Package main is camsim, a camera gateway simulator for Argus.
//
// camsim publishes synthetic detection events to NATS JetStream the same
// way a real camera gateway would, including correlated bursts where
// several cameras observe the same detection within a few seconds. Useful
// for load testing the ingest pipeline and demonstrating the correlation
// engine end to end:
//
//	camsim --url nats://127.0.0.1:4222 --cameras 4 --rate 10 --count 500
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/argushq/argus/internal/eventprocessor"
	"github.com/argushq/argus/internal/logging"
	"github.com/argushq/argus/internal/models"
)

var (
	natsURL      string
	cameraCount  int
	eventsPerSec float64
	totalEvents  int
	burstChance  float64
	burstCameras int
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "camsim",
	Short: "Publish synthetic camera detection events to NATS",
	Long: "camsim simulates home-security camera gateways publishing detection " +
		"events to the Argus ingest stream. A fraction of events are emitted as " +
		"multi-camera bursts so the correlation engine has something to group.",
	RunE: runSimulator,
}

func init() {
	rootCmd.Flags().StringVar(&natsURL, "url", "nats://127.0.0.1:4222", "NATS server URL")
	rootCmd.Flags().IntVar(&cameraCount, "cameras", 4, "Number of simulated cameras")
	rootCmd.Flags().Float64Var(&eventsPerSec, "rate", 5, "Events per second")
	rootCmd.Flags().IntVar(&totalEvents, "count", 0, "Stop after this many events (0 = run until interrupted)")
	rootCmd.Flags().Float64Var(&burstChance, "burst-chance", 0.3, "Probability an event becomes a multi-camera burst")
	rootCmd.Flags().IntVar(&burstCameras, "burst-cameras", 2, "Additional cameras that see a burst event")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level")
}

var detectionTypes = []string{
	models.DetectionTypePerson,
	models.DetectionTypeVehicle,
	models.DetectionTypeAnimal,
	models.DetectionTypePackage,
}

func runSimulator(cmd *cobra.Command, args []string) error {
	logging.Init(logging.Config{Level: logLevel, Format: "console"})

	publisher, err := eventprocessor.NewPublisher(
		eventprocessor.DefaultPublisherConfig(natsURL), nil)
	if err != nil {
		return fmt.Errorf("create publisher: %w", err)
	}
	defer publisher.Close()

	// Same breaker the production publish path uses, so a dead broker
	// fails fast instead of piling up timeouts.
	publisher.SetCircuitBreaker(eventprocessor.NewCircuitBreaker(
		eventprocessor.DefaultCircuitBreakerConfig("camsim-publish")))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	logging.Info().
		Str("url", natsURL).
		Int("cameras", cameraCount).
		Float64("rate", eventsPerSec).
		Msg("Starting camera simulator")

	interval := time.Duration(float64(time.Second) / eventsPerSec)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	published := 0
	for totalEvents == 0 || published < totalEvents {
		select {
		case <-ctx.Done():
			logging.Info().Int("published", published).Msg("Simulator interrupted")
			return nil
		case <-ticker.C:
		}

		camera := rand.Intn(cameraCount)
		detectionType := detectionTypes[rand.Intn(len(detectionTypes))]

		if err := publishDetection(ctx, publisher, camera, detectionType); err != nil {
			logging.Warn().Err(err).Msg("Publish failed")
			continue
		}
		published++

		// A burst sends the same detection type from other cameras a
		// moment later, inside the correlation window.
		if rand.Float64() < burstChance {
			for i := 1; i <= burstCameras; i++ {
				other := (camera + i) % cameraCount
				if err := publishDetection(ctx, publisher, other, detectionType); err != nil {
					logging.Warn().Err(err).Msg("Burst publish failed")
					continue
				}
				published++
			}
		}
	}

	logging.Info().Int("published", published).Msg("Simulator finished")
	return nil
}

func publishDetection(ctx context.Context, publisher *eventprocessor.Publisher, camera int, detectionType string) error {
	event := eventprocessor.NewCameraEvent(fmt.Sprintf("cam-%02d", camera))
	event.ControllerID = "camsim"
	event.DetectionType = detectionType
	event.Score = 0.5 + rand.Float64()*0.5

	if err := publisher.PublishEvent(ctx, event); err != nil {
		return err
	}
	logging.Debug().
		Str("event_id", event.EventID).
		Str("camera_id", event.CameraID).
		Str("detection_type", detectionType).
		Msg("Event published")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
