// Package transcript models a conversation history and its on-disk form.
package transcript

import (
	"fmt"

	"github.com/gemcli/gemcli/internal/genai"
)

// Role identifies the originator of a turn.
type Role string

const (
	// RoleUser marks a turn authored by the user.
	RoleUser Role = "user"
	// RoleModel marks a turn produced by the model.
	RoleModel Role = "model"
)

// Turn is one role-tagged message with ordered text parts.
type Turn struct {
	// Role is "user" or "model".
	Role Role `json:"role"`
	// Parts is the ordered, non-empty text content of the turn.
	Parts []string `json:"parts"`
}

// Transcript is the chronological sequence of turns in a conversation.
type Transcript []Turn

// Validate checks the turn invariants: a known role and at least one part.
func (t Turn) Validate() error {
	if t.Role != RoleUser && t.Role != RoleModel {
		return fmt.Errorf("invalid turn role %q", t.Role)
	}
	if len(t.Parts) == 0 {
		return fmt.Errorf("turn with role %q has no parts", t.Role)
	}
	return nil
}

// Text joins the parts of a turn into a single string.
func (t Turn) Text() string {
	if len(t.Parts) == 1 {
		return t.Parts[0]
	}
	var joined string
	for i, part := range t.Parts {
		if i > 0 {
			joined += "\n"
		}
		joined += part
	}
	return joined
}

// Contents converts the transcript into API wire content.
func (t Transcript) Contents() []genai.Content {
	contents := make([]genai.Content, 0, len(t))
	for _, turn := range t {
		parts := make([]genai.Part, 0, len(turn.Parts))
		for _, text := range turn.Parts {
			parts = append(parts, genai.Part{Text: text})
		}
		contents = append(contents, genai.Content{Role: string(turn.Role), Parts: parts})
	}
	return contents
}

// FromContent converts one API content entry back into a turn.
func FromContent(content genai.Content) Turn {
	parts := make([]string, 0, len(content.Parts))
	for _, part := range content.Parts {
		parts = append(parts, part.Text)
	}
	return Turn{Role: Role(content.Role), Parts: parts}
}
