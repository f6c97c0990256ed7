package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skillsync/profile-builder/internal/observability"
	"github.com/skillsync/profile-builder/internal/pipeline"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a UserProfile from a resume file or text",
	Long: `Build a UserProfile JSON document from exactly one of --file, --text or --text-file.
The profile is written to stdout, or to --out when given.`,
	RunE: runBuild,
}

var (
	buildFile        string
	buildText        string
	buildTextFile    string
	buildOutFile     string
	buildContentType string
	buildModel       string
)

func init() {
	buildCmd.Flags().StringVarP(&buildFile, "file", "f", "", "Path to a resume file (.pdf, .doc, .docx, .txt)")
	buildCmd.Flags().StringVar(&buildText, "text", "", "Resume text")
	buildCmd.Flags().StringVar(&buildTextFile, "text-file", "", "Path to a file whose contents are used as resume text, skipping document checks")
	buildCmd.Flags().StringVarP(&buildOutFile, "out", "o", "", "Path to output JSON file")
	buildCmd.Flags().StringVar(&buildContentType, "content-type", "", "Declared MIME type of --file (inferred from the extension by default)")
	buildCmd.Flags().StringVar(&buildModel, "model", "", "Gemini model name (overrides config and PROFILE_MODEL)")
	buildCmd.MarkFlagsMutuallyExclusive("text", "text-file")

	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if buildModel != "" {
		cfg.ModelName = buildModel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	req := pipeline.Request{Text: buildText}
	if buildTextFile != "" {
		content, err := os.ReadFile(buildTextFile)
		if err != nil {
			return fmt.Errorf("failed to read text file: %w", err)
		}
		req.Text = string(content)
	}
	if buildFile != "" {
		if req.File, err = readUpload(buildFile, buildContentType); err != nil {
			return err
		}
	}

	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	printer := observability.NewPrinter(cmd.ErrOrStderr())
	var opts []pipeline.Option
	if cfg.Verbose {
		opts = append(opts, pipeline.WithProgress(printer.PrintStateEvent))
	}

	ctx := cmd.Context()
	builder, cleanup, err := newBuilder(ctx, cfg, logger, opts...)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := builder.Build(ctx, req)
	if err != nil {
		var buildErr *pipeline.BuildError
		if errors.As(err, &buildErr) {
			logger.Debug("build failed", zap.String("request_id", buildErr.RequestID), zap.Error(buildErr.Err))
			return fmt.Errorf("%s: %s", buildErr.Outcome.Kind, buildErr.Outcome.Message)
		}
		return err
	}

	if cfg.Verbose {
		printer.PrintMetadata(result.Metadata)
		printer.PrintAnomalies(result.Anomalies)
		printer.PrintProfile(result.Profile)
	}

	jsonBytes, err := json.MarshalIndent(result.Profile, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if buildOutFile == "" {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(jsonBytes))
		return nil
	}
	if err := os.WriteFile(buildOutFile, jsonBytes, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Profile written to %s (request %s)\n", buildOutFile, result.RequestID)
	return nil
}
