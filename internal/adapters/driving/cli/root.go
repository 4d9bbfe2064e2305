package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shoebox-labs/shoebox-cli/internal/adapters/driven/config/file"
	"github.com/shoebox-labs/shoebox-cli/internal/adapters/driven/embedding"
	"github.com/shoebox-labs/shoebox-cli/internal/adapters/driven/embedding/lexicon"
	"github.com/shoebox-labs/shoebox-cli/internal/adapters/driven/embedding/ollama"
	"github.com/shoebox-labs/shoebox-cli/internal/adapters/driven/storage/sqlite"
	"github.com/shoebox-labs/shoebox-cli/internal/core/domain"
	"github.com/shoebox-labs/shoebox-cli/internal/core/ports/driven"
	"github.com/shoebox-labs/shoebox-cli/internal/core/ports/driving"
	"github.com/shoebox-labs/shoebox-cli/internal/core/services"
	"github.com/shoebox-labs/shoebox-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services wired by wireServices. Tests inject their own before
// Execute, which skips the real wiring.
var (
	docStore      driven.DocumentStore
	embedder      driven.EmbeddingService
	searchService driving.SearchService
	migrator      driving.Migrator
)

var (
	verbose   bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "shoebox",
	Short: "Personal document shoebox with hybrid search",
	Long: `Shoebox stores scanned documents with their text and embeddings
and retrieves them with fused keyword + semantic ranking.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return wireServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.shoebox)")
}

// Execute runs the CLI with the given build version.
func Execute(buildVersion string) error {
	if buildVersion != "" {
		version = buildVersion
	}
	return rootCmd.Execute()
}

// wireServices builds the adapter graph from configuration. Already
// wired services (tests) are left alone.
func wireServices() error {
	if docStore != nil {
		return nil
	}

	cfgStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	cfg, err := cfgStore.Load()
	if err != nil {
		return err
	}
	logger.Debug("Config loaded from %s", cfgStore.Path())

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	docStore = store

	embedder = buildEmbedder(cfg)

	searchService = services.NewSearchService(docStore, embedder, domain.SearchConfig{
		KeywordWeight:  cfg.Search.KeywordWeight,
		SemanticWeight: cfg.Search.SemanticWeight,
		PrefilterLimit: cfg.Search.PrefilterLimit,
	})
	migrator = services.NewMigrationService(docStore, embedder, services.DefaultBatchSize)

	return nil
}

// buildEmbedder assembles the embedding generator from the configured
// strategies. No usable strategy is not fatal: search degrades to
// keyword-only and migration reports unavailability when asked.
func buildEmbedder(cfg file.Config) driven.EmbeddingService {
	var primary, fallback driven.EmbeddingService

	if cfg.Embedding.OllamaURL != "" {
		client := ollama.NewEmbeddingService(ollama.Config{
			BaseURL:           cfg.Embedding.OllamaURL,
			Model:             cfg.Embedding.OllamaModel,
			Dimensions:        cfg.Embedding.Dimensions,
			RequestsPerSecond: cfg.Embedding.RatePerSec,
		})
		if err := client.Ping(context.Background()); err != nil {
			logger.Warn("Ollama unreachable at %s: %v", cfg.Embedding.OllamaURL, err)
		} else {
			primary = client
		}
	}

	if cfg.Embedding.LexiconPath != "" {
		lex, err := lexicon.LoadFile(cfg.Embedding.LexiconPath, cfg.Embedding.Dimensions, "")
		if err != nil {
			logger.Warn("Lexicon load failed: %v", err)
		} else {
			fallback = lex
		}
	}

	gen, err := embedding.NewGenerator(primary, fallback, embedding.Config{
		Dimensions: cfg.Embedding.Dimensions,
	})
	if err != nil {
		logger.Warn("No embedding strategy available, keyword search only")
		return nil
	}
	logger.Info("Embedding model: %s (%d dimensions)", gen.ModelVersion(), gen.Dimensions())
	return gen
}
