package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// documentVersion is the current on-disk document format version.
const documentVersion = 1

var (
	// ErrNoHistory is the base sentinel for any failed history load.
	// Callers treat it as "start with an empty transcript".
	ErrNoHistory = errors.New("no history")
	// ErrHistoryNotFound reports a missing history file.
	ErrHistoryNotFound = fmt.Errorf("%w: file not found", ErrNoHistory)
	// ErrHistoryDecode reports a malformed history file.
	ErrHistoryDecode = fmt.Errorf("%w: decode failed", ErrNoHistory)
)

// document is the persisted transcript envelope.
// The loader tolerates unknown and missing optional fields so older and
// newer writers can share history files.
type document struct {
	// Version identifies the document format.
	Version int `json:"version"`
	// SessionID identifies the session that wrote the document.
	SessionID string `json:"session_id,omitempty"`
	// SavedAt records when the document was written.
	SavedAt time.Time `json:"saved_at,omitempty"`
	// Turns is the ordered conversation history.
	Turns []Turn `json:"turns"`
}

// Save writes the transcript to path, overwriting any existing file.
// Persistence failures are returned for the caller to report; they must
// never abort a conversation.
func Save(t Transcript, path string) error {
	for _, turn := range t {
		if err := turn.Validate(); err != nil {
			return fmt.Errorf("save history: %w", err)
		}
	}
	doc := document{
		Version:   documentVersion,
		SessionID: uuid.New().String(),
		SavedAt:   time.Now().UTC(),
		Turns:     t,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// Load reads a transcript from path.
//
// All failure cases satisfy errors.Is(err, ErrNoHistory): a missing file
// maps to ErrHistoryNotFound, undecodable content to ErrHistoryDecode, and
// any other read error wraps ErrNoHistory directly. Callers proceed with an
// empty transcript in every case.
func Load(path string) (Transcript, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrHistoryNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrNoHistory, err)
	}

	turns, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHistoryDecode, err)
	}
	return turns, nil
}

// decode parses either the versioned document form or the legacy bare
// turn-array form.
func decode(raw []byte) (Transcript, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err == nil && (doc.Version > 0 || doc.Turns != nil) {
		return sanitize(doc.Turns), nil
	}

	var turns []Turn
	if err := json.Unmarshal(raw, &turns); err != nil {
		return nil, err
	}
	return sanitize(turns), nil
}

// sanitize drops turns that violate the transcript invariants so a partially
// damaged file still yields a usable history.
func sanitize(turns []Turn) Transcript {
	kept := make(Transcript, 0, len(turns))
	for _, turn := range turns {
		if turn.Validate() != nil {
			continue
		}
		kept = append(kept, turn)
	}
	return kept
}
