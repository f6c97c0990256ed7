package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skillsync/profile-builder/internal/observability"
	"github.com/skillsync/profile-builder/internal/schemas"
	"github.com/skillsync/profile-builder/internal/types"
)

var showCmd = &cobra.Command{
	Use:   "show <profile.json>",
	Short: "Check a saved profile against the schema and print it",
	Long: `Read a profile written by "build --out", validate it against the UserProfile
JSON Schema and print a readable summary.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read profile: %w", err)
	}

	validator, err := schemas.NewUserProfileValidator()
	if err != nil {
		return err
	}
	if err := validator.Validate(string(data)); err != nil {
		return err
	}

	var profile types.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	profile.EnsureLists()

	observability.NewPrinter(cmd.OutOrStdout()).PrintProfile(&profile)
	return nil
}
