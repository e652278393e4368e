package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gemcli/gemcli/internal/testutil"
)

func TestResolveInputPrecedence(testingHandle *testing.T) {
	tempDir := testingHandle.TempDir()
	inputFile := filepath.Join(tempDir, "input.txt")
	testutil.RequireNoError(testingHandle, os.WriteFile(inputFile, []byte("  from file \n"), 0o600), "write input file")

	// An inline expression wins even when stdin has content.
	got, err := ResolveInput("inline", "", strings.NewReader("from stdin"))
	testutil.RequireNoError(testingHandle, err, "inline input")
	testutil.RequireEqual(testingHandle, got, "inline", "inline wins")

	// A file path is read and trimmed.
	got, err = ResolveInput("", inputFile, strings.NewReader("from stdin"))
	testutil.RequireNoError(testingHandle, err, "file input")
	testutil.RequireEqual(testingHandle, got, "from file", "file content trimmed")

	// With neither, stdin is read to end-of-stream and trimmed.
	got, err = ResolveInput("", "", strings.NewReader("  from stdin \n\n"))
	testutil.RequireNoError(testingHandle, err, "stdin input")
	testutil.RequireEqual(testingHandle, got, "from stdin", "stdin content trimmed")
}

func TestResolveInputMissingFile(testingHandle *testing.T) {
	_, err := ResolveInput("", filepath.Join(testingHandle.TempDir(), "absent.txt"), strings.NewReader(""))
	testutil.RequireTrue(testingHandle, err != nil, "missing file must be fatal")
	testutil.RequireStringContains(testingHandle, err.Error(), "file not found", "diagnostic names the case")
}

func TestResolveInstructionTiers(testingHandle *testing.T) {
	tempDir := testingHandle.TempDir()
	explicitFile := filepath.Join(tempDir, "explicit.txt")
	testutil.RequireNoError(testingHandle, os.WriteFile(explicitFile, []byte(" explicit text \n"), 0o600), "write explicit file")
	defaultFile := filepath.Join(tempDir, "default.txt")
	testutil.RequireNoError(testingHandle, os.WriteFile(defaultFile, []byte("default text\n"), 0o600), "write default file")

	// Inline text wins over both files.
	got, err := ResolveInstruction("inline", explicitFile, defaultFile)
	testutil.RequireNoError(testingHandle, err, "inline tier")
	testutil.RequireEqual(testingHandle, got, "inline", "inline wins")

	// The explicit file wins over the default file.
	got, err = ResolveInstruction("", explicitFile, defaultFile)
	testutil.RequireNoError(testingHandle, err, "file tier")
	testutil.RequireEqual(testingHandle, got, "explicit text", "explicit file content trimmed")

	// The default file is the last tier.
	got, err = ResolveInstruction("", "", defaultFile)
	testutil.RequireNoError(testingHandle, err, "default tier")
	testutil.RequireEqual(testingHandle, got, "default text", "default file content")

	// A silently missing default file yields empty text, not an error.
	got, err = ResolveInstruction("", "", filepath.Join(tempDir, "absent.txt"))
	testutil.RequireNoError(testingHandle, err, "missing default file")
	testutil.RequireEqual(testingHandle, got, "", "missing default yields empty")

	// A missing explicit file is fatal.
	_, err = ResolveInstruction("", filepath.Join(tempDir, "absent.txt"), defaultFile)
	testutil.RequireTrue(testingHandle, err != nil, "missing explicit file must be fatal")
}

func TestResolveAPIKey(testingHandle *testing.T) {
	testingHandle.Setenv("GEMINI_API_KEY", "")
	testingHandle.Setenv("GOOGLE_API_KEY", "")

	// Absence of every source is a configuration error.
	_, err := ResolveAPIKey("")
	testutil.RequireErrorIs(testingHandle, err, ErrMissingCredential, "no credential")

	// The environment supplies the fallback, newer variable first.
	testingHandle.Setenv("GOOGLE_API_KEY", "legacy-key")
	got, err := ResolveAPIKey("")
	testutil.RequireNoError(testingHandle, err, "legacy env credential")
	testutil.RequireEqual(testingHandle, got, "legacy-key", "legacy env value")

	testingHandle.Setenv("GEMINI_API_KEY", "env-key")
	got, err = ResolveAPIKey("")
	testutil.RequireNoError(testingHandle, err, "env credential")
	testutil.RequireEqual(testingHandle, got, "env-key", "env value")

	// The flag wins over the environment.
	got, err = ResolveAPIKey("flag-key")
	testutil.RequireNoError(testingHandle, err, "flag credential")
	testutil.RequireEqual(testingHandle, got, "flag-key", "flag value")
}

func TestRequireExclusive(testingHandle *testing.T) {
	testutil.RequireNoError(testingHandle, RequireExclusive(map[string]bool{"--once": true, "--chat": false}), "single flag allowed")
	testutil.RequireNoError(testingHandle, RequireExclusive(map[string]bool{"--once": false, "--chat": false}), "no flags allowed")

	err := RequireExclusive(map[string]bool{"--once": true, "--chat": true})
	testutil.RequireErrorIs(testingHandle, err, ErrConflictingFlags, "conflict detected")
	testutil.RequireStringContains(testingHandle, err.Error(), "--chat and --once", "diagnostic names both flags")
}
