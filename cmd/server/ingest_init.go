// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/argushq/argus/internal/config"
	"github.com/argushq/argus/internal/correlation"
	"github.com/argushq/argus/internal/database"
	"github.com/argushq/argus/internal/eventprocessor"
	"github.com/argushq/argus/internal/logging"
)

// IngestComponents holds the NATS ingest pipeline for lifecycle management.
//
// Run satisfies the supervisor's IngestRunner so the consume loop is
// restarted by suture; the connection-level pieces (embedded server, NATS
// connection, subscriber) outlive individual restarts and are torn down
// once by Shutdown.
type IngestComponents struct {
	server            *eventprocessor.EmbeddedServer
	natsConn          *natsgo.Conn
	streamInitializer *eventprocessor.StreamInitializer
	subscriber        *eventprocessor.Subscriber
	publisher         *eventprocessor.Publisher
	handler           *eventprocessor.IngestHandler

	mu       sync.Mutex
	shutdown bool
}

// InitIngest initializes the NATS event ingest pipeline when nats.enabled
// is set. Returns (nil, nil) when the pipeline is disabled.
//
// Initialization order matters: the stream must exist before the durable
// subscriber binds to it, because the ingest topic is a wildcard and the
// subscriber cannot auto-provision a stream for it.
func InitIngest(cfg *config.Config, db *database.DB, corr *correlation.Service) (*IngestComponents, error) {
	if !cfg.NATS.Enabled {
		logging.Info().Msg("NATS event ingest disabled (NATS_ENABLED=false)")
		return nil, nil
	}

	logging.Info().Msg("Initializing NATS event ingest")
	components := &IngestComponents{}

	var natsURL string
	if cfg.NATS.EmbeddedServer {
		serverCfg := eventprocessor.DefaultServerConfig()
		serverCfg.StoreDir = cfg.NATS.StoreDir
		serverCfg.JetStreamMaxMem = cfg.NATS.MaxMemory
		serverCfg.JetStreamMaxStore = cfg.NATS.MaxStore

		server, err := eventprocessor.NewEmbeddedServer(&serverCfg)
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS server: %w", err)
		}
		components.server = server
		natsURL = server.ClientURL()
		logging.Info().Str("url", natsURL).Msg("Embedded NATS server started")
	} else {
		natsURL = cfg.NATS.URL
		logging.Info().Str("url", natsURL).Msg("Using external NATS server")
	}

	nc, err := natsgo.Connect(natsURL,
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.NATS.MaxReconnects),
		natsgo.ReconnectWait(cfg.NATS.ReconnectWait),
	)
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	components.natsConn = nc

	js, err := jetstream.New(nc)
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	streamCfg := eventprocessor.DefaultStreamConfig()
	if cfg.NATS.StreamName != "" {
		streamCfg.Name = cfg.NATS.StreamName
	}
	if cfg.NATS.StreamRetentionDays > 0 {
		streamCfg.MaxAge = time.Duration(cfg.NATS.StreamRetentionDays) * 24 * time.Hour
	}

	streamInitializer, err := eventprocessor.NewStreamInitializer(js, &streamCfg)
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("create stream initializer: %w", err)
	}
	components.streamInitializer = streamInitializer

	stream, err := streamInitializer.EnsureStream(context.Background())
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("ensure stream exists: %w", err)
	}
	streamInfo := stream.CachedInfo()
	logging.Info().
		Str("name", streamInfo.Config.Name).
		Strs("subjects", streamInfo.Config.Subjects).
		Dur("max_age", streamInfo.Config.MaxAge).
		Msg("JetStream stream ready")

	subCfg := eventprocessor.DefaultSubscriberConfig(natsURL)
	subCfg.StreamName = streamCfg.Name
	if cfg.NATS.DurableName != "" {
		subCfg.DurableName = cfg.NATS.DurableName
	}
	if cfg.NATS.QueueGroup != "" {
		subCfg.QueueGroup = cfg.NATS.QueueGroup
	}
	if cfg.NATS.SubscribersCount > 0 {
		subCfg.SubscribersCount = cfg.NATS.SubscribersCount
	}
	subCfg.MaxReconnects = cfg.NATS.MaxReconnects
	if cfg.NATS.ReconnectWait > 0 {
		subCfg.ReconnectWait = cfg.NATS.ReconnectWait
	}

	subscriber, err := eventprocessor.NewSubscriber(&subCfg, nil)
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("create subscriber: %w", err)
	}
	components.subscriber = subscriber

	handlerCfg := eventprocessor.DefaultHandlerConfig()
	handlerCfg.IngestRatePerSecond = float64(cfg.NATS.IngestRatePerSecond)
	components.handler = eventprocessor.NewIngestHandler(handlerCfg, db, corr)

	// Poison messages get parked on the dead letter subject instead of
	// vanishing when the handler acks them.
	publisher, err := eventprocessor.NewPublisher(
		eventprocessor.DefaultPublisherConfig(natsURL), nil)
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("create publisher: %w", err)
	}
	components.publisher = publisher

	dlq, err := eventprocessor.NewDeadLetterQueue(
		publisher.WatermillPublisher(), eventprocessor.TopicDeadLetter)
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("create dead letter queue: %w", err)
	}
	components.handler.SetDeadLetterQueue(dlq)

	logging.Info().
		Str("topic", handlerCfg.Topic).
		Str("durable", subCfg.DurableName).
		Str("queue_group", subCfg.QueueGroup).
		Msg("NATS event ingest initialized")

	return components, nil
}

// Run consumes camera events until the context is canceled.
func (c *IngestComponents) Run(ctx context.Context) error {
	return c.handler.Run(ctx, c.subscriber)
}

// Shutdown tears down the ingest pipeline. Safe to call multiple times and
// on partially initialized components.
func (c *IngestComponents) Shutdown(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shutdown {
		return
	}
	c.shutdown = true

	if c.subscriber != nil {
		if err := c.subscriber.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing subscriber")
		}
	}
	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing publisher")
		}
	}
	if c.natsConn != nil {
		c.natsConn.Close()
	}
	if c.server != nil {
		if err := c.server.Shutdown(ctx); err != nil {
			logging.Warn().Err(err).Msg("Error shutting down embedded NATS server")
		}
	}
}
