package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/app"
	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/config"
	"github.com/mukkarapavankumar/Thought-organizer-v2/internal/logging"
	"github.com/mukkarapavankumar/Thought-organizer-v2/pkg/models"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:          "seed",
	Short:        "Create a section for every built-in workflow template",
	SilenceUsage: true,
	RunE:         runSeed,
}

func init() {
	rootCmd.Flags().StringVar(&envFile, "env", "", "Path to .env file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logging.NewLogger().Error("seeding failed", "error", err)
		os.Exit(1)
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := logging.NewLogger()

	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return err
	}
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	existing, err := a.Sections.List(ctx)
	if err != nil {
		return err
	}
	existingMap := make(map[string]bool, len(existing))
	for _, s := range existing {
		existingMap[s.Name] = true
	}

	for _, tmpl := range models.DefaultWorkflowTemplates {
		if existingMap[tmpl.Name] {
			logger.Info("Skipping existing section", "name", tmpl.Name)
			continue
		}
		section, err := a.Sections.CreateFromTemplate(ctx, tmpl.Name, tmpl.ID)
		if err != nil {
			logger.Error("Failed to create section", "name", tmpl.Name, "error", err)
			continue
		}
		logger.Info("Seeded section", "name", section.Name, "id", section.ID, "steps", len(section.Workflow))
	}
	logger.Info("Seeding complete!")
	return nil
}
