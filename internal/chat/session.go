// Package chat drives request/response exchanges against a generative
// model, owning the in-memory conversation transcript.
package chat

import (
	"context"
	"errors"

	"github.com/gemcli/gemcli/internal/genai"
	"github.com/gemcli/gemcli/internal/transcript"
)

// Generator is the narrow client surface a session depends on.
// *genai.Client satisfies it.
type Generator interface {
	GenerateContent(ctx context.Context, model string, req *genai.GenerateRequest) (*genai.GenerateResponse, error)
}

// SaveFunc persists a snapshot of the transcript. Implementations report
// their own failures; persistence must never abort a conversation.
type SaveFunc func(transcript.Transcript)

// Session binds a model and optional system instruction to a mutable
// transcript that grows by one user and one model turn per exchange.
type Session struct {
	// Save, when set, is invoked with a transcript snapshot after every
	// successful exchange and once more when an interactive loop ends.
	Save SaveFunc
	// Trace, when set, receives the outgoing query text before each call.
	Trace func(query string)

	gen               Generator
	model             string
	systemInstruction string
	prefix            string
	history           transcript.Transcript
}

// NewSession constructs a session, optionally seeded from prior history.
func NewSession(gen Generator, model string, systemInstruction string, prefix string, seed transcript.Transcript) *Session {
	return &Session{
		gen:               gen,
		model:             model,
		systemInstruction: systemInstruction,
		prefix:            prefix,
		history:           append(transcript.Transcript(nil), seed...),
	}
}

// Transcript returns a copy of the current conversation history.
func (s *Session) Transcript() transcript.Transcript {
	return append(transcript.Transcript(nil), s.history...)
}

// RunOnce sends one user turn and blocks for the model's reply.
//
// The configured prompt prefix, when non-empty, is prepended to the user
// text with a newline separator. On failure the transcript is unchanged:
// turns are appended only after the exchange succeeds, so no dangling user
// turn is ever left behind.
func (s *Session) RunOnce(ctx context.Context, userText string) (string, error) {
	if s.gen == nil {
		return "", errors.New("generator is required")
	}

	outgoing := userText
	if s.prefix != "" {
		outgoing = s.prefix + "\n" + userText
	}
	if s.Trace != nil {
		s.Trace(outgoing)
	}

	userTurn := transcript.Turn{Role: transcript.RoleUser, Parts: []string{outgoing}}
	contents := append(s.history.Contents(), genai.Content{
		Role:  string(transcript.RoleUser),
		Parts: []genai.Part{{Text: outgoing}},
	})

	req := &genai.GenerateRequest{Contents: contents}
	if s.systemInstruction != "" {
		req.SystemInstruction = &genai.Content{Parts: []genai.Part{{Text: s.systemInstruction}}}
	}

	resp, err := s.gen.GenerateContent(ctx, s.model, req)
	if err != nil {
		return "", err
	}

	modelTurn := transcript.FromContent(resp.Candidates[0].Content)
	modelTurn.Role = transcript.RoleModel
	if len(modelTurn.Parts) == 0 {
		modelTurn.Parts = []string{resp.Text()}
	}

	s.history = append(s.history, userTurn, modelTurn)
	s.persist()
	return resp.Text(), nil
}

// persist invokes the save hook with a transcript snapshot, if configured.
func (s *Session) persist() {
	if s.Save == nil {
		return
	}
	s.Save(s.Transcript())
}
