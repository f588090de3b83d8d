package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mukkarapavankumar/Thought-organizer-v2/pkg/models"
)

var (
	analyzeSection  string
	analyzeTemplate string
	analyzeProvider string
	analyzeModel    string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [note]",
	Short: "Run a workflow once against a note and print the result as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeSection, "section", "", "Section whose workflow to run")
	analyzeCmd.Flags().StringVar(&analyzeTemplate, "template", "thought-analysis", "Template to run when no section is given")
	analyzeCmd.Flags().StringVar(&analyzeProvider, "provider", "", "Provider to select before running")
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "", "Default model for the active provider")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if analyzeProvider != "" {
		active, err := a.Registry.SelectProvider(ctx, analyzeProvider)
		if err != nil {
			return err
		}
		if active != analyzeProvider {
			a.Logger.Warn("requested provider unavailable", "requested", analyzeProvider, "active", active)
		}
	}

	if analyzeModel != "" {
		if err := a.Registry.SetDefaultModel(ctx, a.Registry.Active(), analyzeModel); err != nil {
			return err
		}
	}

	var workflow []models.WorkflowStep
	if analyzeSection != "" {
		section, err := a.Sections.Get(ctx, analyzeSection)
		if err != nil {
			return err
		}
		workflow = section.Workflow
	} else {
		tmpl, ok := models.TemplateByID(analyzeTemplate)
		if !ok {
			return fmt.Errorf("unknown template %q", analyzeTemplate)
		}
		workflow = tmpl.Steps
	}

	result, err := a.Executor.Run(ctx, strings.Join(args, " "), workflow)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
