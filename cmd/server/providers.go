package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List AI providers with their health and models",
	RunE:  runProviders,
}

var pullProvider string

var pullCmd = &cobra.Command{
	Use:   "pull [model]",
	Short: "Download a model on the local provider",
	Args:  cobra.ExactArgs(1),
	RunE:  runPull,
}

func init() {
	pullCmd.Flags().StringVar(&pullProvider, "provider", "ollama", "Provider to download the model on")
	providersCmd.AddCommand(pullCmd)
}

func runPull(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Registry.PullModel(ctx, pullProvider, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "pulled %s on %s\n", args[0], pullProvider)
	return nil
}

func runProviders(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	for _, p := range a.Registry.Providers() {
		healthy, _ := a.Registry.HealthCheck(ctx, p.ID)
		models, _ := a.Registry.Models(ctx, p.ID)

		mark := " "
		if p.Active {
			mark = "*"
		}
		status := "ok"
		switch {
		case !p.Configured:
			status = "missing API key"
		case !healthy:
			status = "unreachable"
		}
		fmt.Fprintf(out, "%s %-11s %-16s %s\n", mark, p.ID, status, p.BaseURL)
		if len(models) > 0 {
			fmt.Fprintf(out, "    models: %s\n", strings.Join(models, ", "))
		}
	}
	return nil
}
