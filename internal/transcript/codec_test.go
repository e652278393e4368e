package transcript

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"pgregory.net/rapid"

	"github.com/gemcli/gemcli/internal/testutil"
)

// TestSaveLoadRoundTrip verifies load(save(T)) == T for arbitrary text-only
// transcripts.
func TestSaveLoadRoundTrip(testingHandle *testing.T) {
	tempDir := testingHandle.TempDir()
	rapid.Check(testingHandle, func(rt *rapid.T) {
		roles := []Role{RoleUser, RoleModel}
		turnCount := rapid.IntRange(0, 8).Draw(rt, "turnCount")
		history := make(Transcript, 0, turnCount)
		for i := 0; i < turnCount; i++ {
			partCount := rapid.IntRange(1, 3).Draw(rt, "partCount")
			parts := make([]string, 0, partCount)
			for j := 0; j < partCount; j++ {
				parts = append(parts, rapid.String().Draw(rt, "part"))
			}
			role := roles[rapid.IntRange(0, 1).Draw(rt, "role")]
			history = append(history, Turn{Role: role, Parts: parts})
		}

		path := filepath.Join(tempDir, "history.json")
		if err := Save(history, path); err != nil {
			rt.Fatalf("save: %v", err)
		}
		loaded, err := Load(path)
		if err != nil {
			rt.Fatalf("load: %v", err)
		}
		if len(loaded) != len(history) {
			rt.Fatalf("length mismatch: saved %d, loaded %d", len(history), len(loaded))
		}
		for i := range history {
			if loaded[i].Role != history[i].Role {
				rt.Fatalf("turn %d role mismatch: %q vs %q", i, loaded[i].Role, history[i].Role)
			}
			if len(loaded[i].Parts) != len(history[i].Parts) {
				rt.Fatalf("turn %d part count mismatch", i)
			}
			for j := range history[i].Parts {
				if loaded[i].Parts[j] != history[i].Parts[j] {
					rt.Fatalf("turn %d part %d mismatch", i, j)
				}
			}
		}
	})
}

// TestLoadMissingFile verifies the not-found sentinel.
func TestLoadMissingFile(testingHandle *testing.T) {
	path := filepath.Join(testingHandle.TempDir(), "absent.json")
	_, err := Load(path)
	testutil.RequireErrorIs(testingHandle, err, ErrHistoryNotFound, "missing file")
	testutil.RequireErrorIs(testingHandle, err, ErrNoHistory, "missing file base sentinel")
}

// TestLoadMalformedFile verifies the decode sentinel is distinct from not-found.
func TestLoadMalformedFile(testingHandle *testing.T) {
	path := filepath.Join(testingHandle.TempDir(), "broken.json")
	testutil.RequireNoError(testingHandle, os.WriteFile(path, []byte("{not json"), 0o600), "write fixture")

	_, err := Load(path)
	testutil.RequireErrorIs(testingHandle, err, ErrHistoryDecode, "malformed file")
	testutil.RequireErrorIs(testingHandle, err, ErrNoHistory, "malformed file base sentinel")
	testutil.RequireTrue(testingHandle, !os.IsNotExist(err), "decode failure must not read as not-found")
}

// TestLoadLegacyArrayForm verifies bare turn arrays remain readable.
func TestLoadLegacyArrayForm(testingHandle *testing.T) {
	path := filepath.Join(testingHandle.TempDir(), "legacy.json")
	legacy := `[{"role":"user","parts":["hi"]},{"role":"model","parts":["hello"]}]`
	testutil.RequireNoError(testingHandle, os.WriteFile(path, []byte(legacy), 0o600), "write fixture")

	loaded, err := Load(path)
	testutil.RequireNoError(testingHandle, err, "load legacy form")
	testutil.RequireEqual(testingHandle, loaded, Transcript{
		{Role: RoleUser, Parts: []string{"hi"}},
		{Role: RoleModel, Parts: []string{"hello"}},
	}, "legacy transcript")
}

// TestLoadToleratesUnknownAndMissingFields covers forward compatibility.
func TestLoadToleratesUnknownAndMissingFields(testingHandle *testing.T) {
	path := filepath.Join(testingHandle.TempDir(), "future.json")
	future := `{"version":2,"future_field":true,"turns":[{"role":"user","parts":["hi"],"annotations":[]}]}`
	testutil.RequireNoError(testingHandle, os.WriteFile(path, []byte(future), 0o600), "write fixture")

	loaded, err := Load(path)
	testutil.RequireNoError(testingHandle, err, "load future form")
	testutil.RequireEqual(testingHandle, loaded, Transcript{{Role: RoleUser, Parts: []string{"hi"}}}, "future transcript")

	// A document without turns is an empty history, not an error.
	empty := filepath.Join(testingHandle.TempDir(), "empty.json")
	testutil.RequireNoError(testingHandle, os.WriteFile(empty, []byte(`{"version":1}`), 0o600), "write fixture")
	loaded, err = Load(empty)
	testutil.RequireNoError(testingHandle, err, "load turnless document")
	testutil.RequireEqual(testingHandle, len(loaded), 0, "turnless document yields empty history")
}

// TestLoadDropsInvalidTurns verifies damaged entries are skipped.
func TestLoadDropsInvalidTurns(testingHandle *testing.T) {
	path := filepath.Join(testingHandle.TempDir(), "damaged.json")
	damaged := `{"version":1,"turns":[{"role":"narrator","parts":["x"]},{"role":"user","parts":[]},{"role":"model","parts":["kept"]}]}`
	testutil.RequireNoError(testingHandle, os.WriteFile(path, []byte(damaged), 0o600), "write fixture")

	loaded, err := Load(path)
	testutil.RequireNoError(testingHandle, err, "load damaged file")
	testutil.RequireEqual(testingHandle, loaded, Transcript{{Role: RoleModel, Parts: []string{"kept"}}}, "surviving turns")
}

// TestSaveWritesDocumentEnvelope verifies the persisted document shape.
func TestSaveWritesDocumentEnvelope(testingHandle *testing.T) {
	path := filepath.Join(testingHandle.TempDir(), "history.json")
	history := Transcript{
		{Role: RoleUser, Parts: []string{"2+2?"}},
		{Role: RoleModel, Parts: []string{"4"}},
	}
	testutil.RequireNoError(testingHandle, Save(history, path), "save")

	raw, err := os.ReadFile(path)
	testutil.RequireNoError(testingHandle, err, "read saved file")

	var doc struct {
		Version   int    `json:"version"`
		SessionID string `json:"session_id"`
		Turns     []Turn `json:"turns"`
	}
	testutil.RequireNoError(testingHandle, json.Unmarshal(raw, &doc), "decode saved file")
	testutil.RequireEqual(testingHandle, doc.Version, 1, "document version")
	testutil.RequireTrue(testingHandle, doc.SessionID != "", "session id must be stamped")
	testutil.RequireEqual(testingHandle, doc.Turns, []Turn(history), "persisted turns")
}

// TestSaveRejectsInvalidTurns verifies the save-side invariant check.
func TestSaveRejectsInvalidTurns(testingHandle *testing.T) {
	path := filepath.Join(testingHandle.TempDir(), "history.json")
	err := Save(Transcript{{Role: "narrator", Parts: []string{"x"}}}, path)
	testutil.RequireTrue(testingHandle, err != nil, "expected invalid role to be rejected")

	_, statErr := os.Stat(path)
	testutil.RequireTrue(testingHandle, os.IsNotExist(statErr), "rejected save must not write a file")
}
