package main

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/common"
	"github.com/ternarybob/quaestor/internal/models"
	"github.com/ternarybob/quaestor/internal/services/vectorstore/qdrant"
)

// runProvision creates the configured collection with the configured
// embedding dimensionality. Running it against an existing collection is a
// no-op. Returns a process exit code.
func runProvision(config *common.Config, logger arbor.ILogger) int {
	client := qdrant.NewClient(&config.Qdrant, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	collection, err := client.EnsureCollection(ctx, config.Qdrant.Collection)
	if err == nil {
		logger.Info().
			Str("collection", collection.Name).
			Int("dimension", collection.Dimension).
			Msg("Collection already provisioned")
		return 0
	}
	if !models.IsKind(err, models.ErrKindCollectionNotFound) {
		logger.Error().Err(err).Msg("Failed to query collection")
		return 1
	}

	if err := client.CreateCollection(ctx, config.Qdrant.Collection, config.Gemini.EmbedDimension); err != nil {
		logger.Error().Err(err).Msg("Failed to create collection")
		return 1
	}

	logger.Info().
		Str("collection", config.Qdrant.Collection).
		Int("dimension", config.Gemini.EmbedDimension).
		Msg("Collection provisioned")
	return 0
}
