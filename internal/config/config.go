// Package config resolves the immutable per-invocation configuration from
// flags, files, and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// Default file names checked when no inline text or explicit path is given.
const (
	// DefaultSystemFile is the well-known system instruction file.
	DefaultSystemFile = "system.txt"
	// DefaultPrefixFile is the well-known prompt prefix file.
	DefaultPrefixFile = "prefix.txt"
)

// Environment variables consulted for the API credential, in order.
// GOOGLE_API_KEY is kept for compatibility with older setups.
var credentialEnvVars = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}

var (
	// ErrMissingCredential is returned when no API key can be resolved.
	ErrMissingCredential = errors.New("api key not provided; use --api-key or set " + strings.Join(credentialEnvVars, " or "))
	// ErrConflictingFlags is returned when mutually exclusive flags are set.
	ErrConflictingFlags = errors.New("conflicting flags")
)

// Config is the resolved invocation configuration. It is built once in the
// CLI front end and never mutated afterwards.
type Config struct {
	// Model is the model identifier sent to the API.
	Model string
	// APIKey is the resolved credential.
	APIKey string
	// SystemInstruction is the resolved system instruction text.
	SystemInstruction string
	// PromptPrefix is prepended to every outgoing user turn.
	PromptPrefix string
	// SavePath, when non-empty, is where history is written after each turn.
	SavePath string
	// LoadPath, when non-empty, seeds the session from persisted history.
	LoadPath string
	// Verbose enables diagnostic echo of resolved values and queries.
	Verbose bool
}

// ResolveInput returns the text for the next user turn, in precedence
// order: inline expression, file content, then standard input read to
// end-of-stream. The result is trimmed; an empty result means "no input"
// and is the caller's to judge.
func ResolveInput(expression string, filePath string, stdin io.Reader) (string, error) {
	if expression != "" {
		return strings.TrimSpace(expression), nil
	}
	if filePath != "" {
		raw, err := os.ReadFile(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				return "", fmt.Errorf("file not found: %s", filePath)
			}
			return "", fmt.Errorf("read input file: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}
	raw, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// ResolveInstruction resolves one instruction value through three tiers:
// inline text, an explicit file path, then a well-known default file.
// A missing explicit file is fatal; a missing default file yields "".
func ResolveInstruction(inline string, filePath string, defaultName string) (string, error) {
	if inline != "" {
		return strings.TrimSpace(inline), nil
	}
	if filePath != "" {
		raw, err := os.ReadFile(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				return "", fmt.Errorf("file not found: %s", filePath)
			}
			return "", fmt.Errorf("read instruction file: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}
	if defaultName != "" {
		raw, err := os.ReadFile(defaultName)
		if err == nil {
			return strings.TrimSpace(string(raw)), nil
		}
	}
	return "", nil
}

// ResolveAPIKey resolves the credential from the flag value, a local .env
// file, then the environment. Absence is a configuration error.
func ResolveAPIKey(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	// A missing .env file is expected; only explicit values matter.
	_ = godotenv.Load()
	for _, name := range credentialEnvVars {
		if value := os.Getenv(name); value != "" {
			return value, nil
		}
	}
	return "", ErrMissingCredential
}

// RequireExclusive returns a configuration error when more than one of the
// named flag values is set.
func RequireExclusive(flags map[string]bool) error {
	var set []string
	for name, enabled := range flags {
		if enabled {
			set = append(set, name)
		}
	}
	if len(set) <= 1 {
		return nil
	}
	sort.Strings(set)
	return fmt.Errorf("%w: %s are mutually exclusive", ErrConflictingFlags, strings.Join(set, " and "))
}
