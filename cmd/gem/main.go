package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gemcli/gemcli/internal/chat"
	"github.com/gemcli/gemcli/internal/config"
	"github.com/gemcli/gemcli/internal/genai"
)

// version is the CLI build version.
const version = "0.1.0"

// requestTimeout bounds each blocking API call.
const requestTimeout = 2 * time.Minute

// options holds all CLI flags for the single-shot sender.
type options struct {
	// Expression is the inline prompt text.
	Expression string
	// File is an input file path read in place of an expression.
	File string
	// Model overrides the default model selection.
	Model string
	// APIKey overrides the environment credential.
	APIKey string
	// System provides inline system instructions.
	System string
	// SystemFile reads system instructions from a file.
	SystemFile string
	// ListModels queries available models and exits.
	ListModels bool
	// Verbose toggles diagnostic echo of resolved configuration.
	Verbose bool
	// Version prints the CLI version.
	Version bool
}

// main wires Cobra and executes the CLI.
func main() {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "gem",
		Short: "Send a prompt to the Gemini API and print the response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Version {
				fmt.Println(version)
				return nil
			}
			return runRoot(cmd, opts)
		},
		SilenceUsage: true,
	}
	applyFlags(rootCmd.Flags(), opts)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// applyFlags defines all CLI flags for the single-shot sender.
func applyFlags(flags *pflag.FlagSet, opts *options) {
	flags.StringVarP(&opts.Expression, "expression", "e", "", "Prompt expression (if not using stdin or a file)")
	flags.StringVarP(&opts.File, "file", "f", "", "Input file path")
	flags.StringVarP(&opts.Model, "model", "m", "", "Model to use")
	flags.StringVarP(&opts.APIKey, "api-key", "k", "", "API key (defaults to GEMINI_API_KEY or GOOGLE_API_KEY)")
	flags.StringVarP(&opts.System, "system", "s", "", "System instructions for the model")
	flags.StringVar(&opts.SystemFile, "system-file", "", "Read system instructions from a file")
	flags.BoolVar(&opts.ListModels, "list-models", false, "List available models and exit")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "Verbose output")
	flags.BoolVar(&opts.Version, "version", false, "Output the version number")
}

// runRoot resolves configuration and performs a single exchange.
func runRoot(cmd *cobra.Command, opts *options) error {
	if err := config.RequireExclusive(map[string]bool{
		"--expression": opts.Expression != "",
		"--file":       opts.File != "",
	}); err != nil {
		return err
	}

	apiKey, err := config.ResolveAPIKey(opts.APIKey)
	if err != nil {
		return err
	}

	client := genai.NewClient("", apiKey, requestTimeout)

	if opts.ListModels {
		return printModels(cmd, client)
	}

	systemInstruction, err := config.ResolveInstruction(opts.System, opts.SystemFile, "")
	if err != nil {
		return err
	}

	input, err := config.ResolveInput(opts.Expression, opts.File, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if input == "" {
		return errors.New("no input provided")
	}

	model := opts.Model
	if model == "" {
		model = genai.DefaultModel
	}
	if opts.Verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "model: %s\n", model)
		if systemInstruction != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "system instruction: %d bytes\n", len(systemInstruction))
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "query: %s\n", input)
	}

	session := chat.NewSession(client, model, systemInstruction, "", nil)
	reply, err := session.RunOnce(context.Background(), input)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), reply)
	return nil
}

// printModels lists available model identifiers, one per line.
func printModels(cmd *cobra.Command, client *genai.Client) error {
	models, err := client.ListModels(context.Background())
	if err != nil {
		return err
	}
	for _, model := range models {
		fmt.Fprintln(cmd.OutOrStdout(), model.Name)
	}
	return nil
}
