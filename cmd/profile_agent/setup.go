package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/skillsync/profile-builder/internal/config"
	"github.com/skillsync/profile-builder/internal/llm"
	"github.com/skillsync/profile-builder/internal/parsing"
	"github.com/skillsync/profile-builder/internal/pipeline"
)

// newLLMClient is replaced in tests
var newLLMClient = func(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required (set GEMINI_API_KEY)")
	}
	return llm.NewClient(ctx, llm.DefaultConfig().WithModel(llm.TierStandard, cfg.ModelName), cfg.APIKey)
}

// loadConfig applies defaults, then the config file, then the environment
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.Verbose = cfg.Verbose || verbose
	return cfg, nil
}

// newLogger builds a production logger, or a development one in verbose mode.
// LOG_LEVEL overrides the level in both.
func newLogger(verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if verbose {
		zcfg = zap.NewDevelopmentConfig()
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		parsed, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		zcfg.Level = parsed
	}
	return zcfg.Build()
}

// newBuilder connects to the model and assembles the pipeline. The returned
// cleanup closes the model client.
func newBuilder(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...pipeline.Option) (*pipeline.Builder, func(), error) {
	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	extractor := parsing.NewExtractor(client, llm.GenerationOptions{
		Temperature:     cfg.Temperature,
		MaxOutputTokens: cfg.MaxOutputTokens,
	})
	opts = append([]pipeline.Option{pipeline.WithLogger(logger)}, opts...)
	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Warn("closing LLM client", zap.Error(err))
		}
	}
	return pipeline.NewBuilder(cfg, extractor, opts...), cleanup, nil
}

// contentTypes is the MIME type the CLI declares for each local file extension
var contentTypes = map[string]string{
	".pdf":  config.MIMEPDF,
	".doc":  config.MIMEDOCX,
	".docx": config.MIMEDOCX,
	".txt":  config.MIMEText,
}

// readUpload loads a local file as an upload. An empty contentType is
// inferred from the extension.
func readUpload(path, contentType string) (*pipeline.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if contentType == "" {
		contentType = contentTypes[config.NormalizeExtension(filepath.Ext(path))]
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &pipeline.Upload{
		Data:        data,
		Filename:    filepath.Base(path),
		ContentType: contentType,
	}, nil
}
