package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillsync/profile-builder/internal/ingestion"
	"github.com/skillsync/profile-builder/internal/pipeline"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check whether a resume file would be accepted",
	Long: `Run the admission checks (extension, content type, size) and content sniffing on a file,
then extract its text. No model call is made.`,
	RunE: runValidate,
}

var (
	validateFile        string
	validateContentType string
	validateJSON        bool
)

func init() {
	validateCmd.Flags().StringVarP(&validateFile, "file", "f", "", "Path to a resume file")
	validateCmd.Flags().StringVar(&validateContentType, "content-type", "", "Declared MIME type (inferred from the extension by default)")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Print the extraction metadata as JSON instead of a summary line")
	_ = validateCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	upload, err := readUpload(validateFile, validateContentType)
	if err != nil {
		return err
	}

	if err := pipeline.Admit(upload, cfg); err != nil {
		return describe(err)
	}

	extraction, err := ingestion.ExtractText(upload.Data, upload.Descriptor().Ext())
	if err != nil {
		return describe(err)
	}

	meta := ingestion.NewMetadata(extraction, upload.Filename, len(upload.Data))
	if validateJSON {
		data, err := meta.ToJSON()
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "OK: %s (%s, %d units, %d characters)\n",
		upload.Filename, extraction.Format, extraction.Units, meta.TextChars)
	if cfg.Verbose {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), extraction.Text)
	}
	return nil
}

// describe turns a known failure into "<kind>: <message>"
func describe(err error) error {
	outcome := pipeline.Classify(err)
	if outcome.Kind == pipeline.KindInternal {
		return err
	}
	return errors.New(string(outcome.Kind) + ": " + outcome.Message)
}
