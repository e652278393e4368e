package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gemcli/gemcli/internal/chat"
	"github.com/gemcli/gemcli/internal/config"
	"github.com/gemcli/gemcli/internal/genai"
	"github.com/gemcli/gemcli/internal/transcript"
)

// version is the CLI build version.
const version = "0.1.0"

// requestTimeout bounds each blocking API call.
const requestTimeout = 2 * time.Minute

// options holds all CLI flags for the conversational variant.
type options struct {
	// Expression is the inline prompt text for one-shot use.
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
	// Prefix is inline text prepended to every user turn.
	Prefix string
	// PrefixFile reads the prompt prefix from a file.
	PrefixFile string
	// SaveHistory is the path history is written to after each turn.
	SaveHistory string
	// LoadHistory is the path prior history is loaded from.
	LoadHistory string
	// Once forces one-shot mode.
	Once bool
	// Chat forces interactive mode.
	Chat bool
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
		Use:   "gemchat",
		Short: "Converse with the Gemini API with persisted history",
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

// applyFlags defines all CLI flags for the conversational variant.
func applyFlags(flags *pflag.FlagSet, opts *options) {
	flags.StringVarP(&opts.Expression, "expression", "e", "", "Prompt expression (if not using stdin or a file)")
	flags.StringVarP(&opts.File, "file", "f", "", "Input file path")
	flags.StringVarP(&opts.Model, "model", "m", "", "Model to use")
	flags.StringVarP(&opts.APIKey, "api-key", "k", "", "API key (defaults to GEMINI_API_KEY or GOOGLE_API_KEY)")
	flags.StringVarP(&opts.System, "system", "s", "", "System instructions for the model")
	flags.StringVar(&opts.SystemFile, "system-file", "", "Read system instructions from a file (default "+config.DefaultSystemFile+")")
	flags.StringVarP(&opts.Prefix, "prefix", "p", "", "Text prepended to every prompt")
	flags.StringVar(&opts.PrefixFile, "prefix-file", "", "Read the prompt prefix from a file (default "+config.DefaultPrefixFile+")")
	flags.StringVar(&opts.SaveHistory, "save-history", "", "Write conversation history to a file after each turn")
	flags.StringVar(&opts.LoadHistory, "load-history", "", "Seed the conversation from a history file")
	flags.BoolVar(&opts.Once, "once", false, "Send a single prompt and exit")
	flags.BoolVar(&opts.Chat, "chat", false, "Start an interactive conversation")
	flags.BoolVar(&opts.ListModels, "list-models", false, "List available models and exit")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "Verbose output")
	flags.BoolVar(&opts.Version, "version", false, "Output the version number")
}

// runRoot resolves configuration, rehydrates history, and dispatches to
// one-shot or interactive execution.
func runRoot(cmd *cobra.Command, opts *options) error {
	if err := validateFlags(opts); err != nil {
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

	cfg, err := resolveConfig(opts, apiKey)
	if err != nil {
		return err
	}
	errOut := cmd.ErrOrStderr()
	if cfg.Verbose {
		describeConfig(errOut, cfg)
	}

	history := loadHistory(cfg, errOut)

	session := chat.NewSession(client, cfg.Model, cfg.SystemInstruction, cfg.PromptPrefix, history)
	if cfg.SavePath != "" {
		session.Save = saveHook(cfg, errOut)
	}
	if cfg.Verbose {
		session.Trace = func(query string) {
			fmt.Fprintf(errOut, "query: %s\n", query)
		}
	}

	if interactiveMode(opts) {
		return runInteractive(cmd, session)
	}
	return runOnce(cmd, opts, session)
}

// validateFlags enforces the mutually exclusive flag groups.
func validateFlags(opts *options) error {
	groups := []map[string]bool{
		{"--expression": opts.Expression != "", "--file": opts.File != ""},
		{"--once": opts.Once, "--chat": opts.Chat},
		{"--save-history": opts.SaveHistory != "", "--load-history": opts.LoadHistory != ""},
	}
	for _, group := range groups {
		if err := config.RequireExclusive(group); err != nil {
			return err
		}
	}
	return nil
}

// resolveConfig builds the immutable invocation configuration.
func resolveConfig(opts *options, apiKey string) (*config.Config, error) {
	systemInstruction, err := config.ResolveInstruction(opts.System, opts.SystemFile, config.DefaultSystemFile)
	if err != nil {
		return nil, err
	}
	promptPrefix, err := config.ResolveInstruction(opts.Prefix, opts.PrefixFile, config.DefaultPrefixFile)
	if err != nil {
		return nil, err
	}

	model := opts.Model
	if model == "" {
		model = genai.DefaultModel
	}

	return &config.Config{
		Model:             model,
		APIKey:            apiKey,
		SystemInstruction: systemInstruction,
		PromptPrefix:      promptPrefix,
		SavePath:          opts.SaveHistory,
		LoadPath:          opts.LoadHistory,
		Verbose:           opts.Verbose,
	}, nil
}

// describeConfig echoes the resolved configuration for verbose runs.
func describeConfig(errOut io.Writer, cfg *config.Config) {
	fmt.Fprintf(errOut, "model: %s\n", cfg.Model)
	if cfg.SystemInstruction != "" {
		fmt.Fprintf(errOut, "system instruction: %d bytes\n", len(cfg.SystemInstruction))
	}
	if cfg.PromptPrefix != "" {
		fmt.Fprintf(errOut, "prompt prefix: %d bytes\n", len(cfg.PromptPrefix))
	}
	if cfg.LoadPath != "" {
		fmt.Fprintf(errOut, "history file: %s\n", cfg.LoadPath)
	}
	if cfg.SavePath != "" {
		fmt.Fprintf(errOut, "saving history to: %s\n", cfg.SavePath)
	}
}

// loadHistory rehydrates a prior transcript. Every load failure falls back
// to an empty transcript; verbose runs learn which case occurred.
func loadHistory(cfg *config.Config, errOut io.Writer) transcript.Transcript {
	if cfg.LoadPath == "" {
		return nil
	}
	history, err := transcript.Load(cfg.LoadPath)
	if err != nil {
		if cfg.Verbose {
			switch {
			case errors.Is(err, transcript.ErrHistoryNotFound):
				fmt.Fprintf(errOut, "history file %s not found; starting fresh\n", cfg.LoadPath)
			case errors.Is(err, transcript.ErrHistoryDecode):
				fmt.Fprintf(errOut, "history file %s is malformed; starting fresh\n", cfg.LoadPath)
			default:
				fmt.Fprintf(errOut, "history file %s unreadable; starting fresh: %v\n", cfg.LoadPath, err)
			}
		}
		return nil
	}
	if cfg.Verbose {
		fmt.Fprintf(errOut, "loaded %d turns from %s\n", len(history), cfg.LoadPath)
	}
	return history
}

// saveHook returns the per-turn persistence hook. Failures are reported as
// diagnostics in verbose runs and never abort the conversation.
func saveHook(cfg *config.Config, errOut io.Writer) chat.SaveFunc {
	path := cfg.SavePath
	verbose := cfg.Verbose
	return func(history transcript.Transcript) {
		if err := transcript.Save(history, path); err != nil && verbose {
			fmt.Fprintf(errOut, "warning: %v\n", err)
		}
	}
}

// interactiveMode decides between one-shot and interactive execution.
// Explicit flags win; otherwise inline or file input means one-shot, and
// bare invocations go interactive on a terminal, one-shot on a pipe.
func interactiveMode(opts *options) bool {
	if opts.Chat {
		return true
	}
	if opts.Once || opts.Expression != "" || opts.File != "" {
		return false
	}
	return stdinIsTerminal()
}

// runOnce performs a single exchange and prints the model's text.
func runOnce(cmd *cobra.Command, opts *options, session *chat.Session) error {
	input, err := config.ResolveInput(opts.Expression, opts.File, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if input == "" {
		return errors.New("no input provided")
	}

	reply, err := session.RunOnce(context.Background(), input)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), reply)
	return nil
}

// runInteractive enters the read-eval loop over the command streams.
func runInteractive(cmd *cobra.Command, session *chat.Session) error {
	streams := chat.InteractiveIO{
		Lines: cmd.InOrStdin(),
		Out:   cmd.OutOrStdout(),
		Diag:  cmd.ErrOrStderr(),
	}
	decorateTerminal(&streams)
	return session.RunInteractive(context.Background(), streams)
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
