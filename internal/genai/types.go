package genai

import "strings"

// Role values accepted by the generativelanguage API.
const (
	// RoleUser marks content authored by the caller.
	RoleUser = "user"
	// RoleModel marks content produced by the model.
	RoleModel = "model"
)

// Part is a single piece of content, text-only in this client.
type Part struct {
	// Text is the textual payload of the part.
	Text string `json:"text,omitempty"`
}

// Content is a role-tagged group of parts.
type Content struct {
	// Role is "user" or "model"; empty for system instructions.
	Role string `json:"role,omitempty"`
	// Parts is the ordered content of the message.
	Parts []Part `json:"parts"`
}

// GenerateRequest matches the generateContent request body.
type GenerateRequest struct {
	// Contents is the ordered conversation sent to the model.
	Contents []Content `json:"contents"`
	// SystemInstruction optionally steers the model for the whole request.
	SystemInstruction *Content `json:"systemInstruction,omitempty"`
}

// Candidate is a single generated completion.
type Candidate struct {
	// Content holds the generated message.
	Content Content `json:"content"`
	// FinishReason indicates why generation stopped.
	FinishReason string `json:"finishReason,omitempty"`
}

// UsageMetadata reports token counts for a request.
type UsageMetadata struct {
	// PromptTokenCount counts input tokens.
	PromptTokenCount int `json:"promptTokenCount"`
	// CandidatesTokenCount counts generated tokens.
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	// TotalTokenCount is the sum of prompt and generated tokens.
	TotalTokenCount int `json:"totalTokenCount"`
}

// GenerateResponse matches the generateContent response body.
type GenerateResponse struct {
	// Candidates contains the generated completions.
	Candidates []Candidate `json:"candidates"`
	// UsageMetadata reports token usage.
	UsageMetadata UsageMetadata `json:"usageMetadata"`
}

// Text concatenates the text parts of the first candidate.
func (r *GenerateResponse) Text() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	var builder strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		builder.WriteString(part.Text)
	}
	return builder.String()
}

// ModelInfo describes one model advertised by the API.
type ModelInfo struct {
	// Name is the full resource name, e.g. "models/gemini-2.0-flash".
	Name string `json:"name"`
	// DisplayName is the human-readable model name.
	DisplayName string `json:"displayName,omitempty"`
	// Description summarizes the model.
	Description string `json:"description,omitempty"`
	// SupportedGenerationMethods lists API methods the model accepts.
	SupportedGenerationMethods []string `json:"supportedGenerationMethods,omitempty"`
}

// modelList matches the paginated models listing response.
type modelList struct {
	// Models is one page of model descriptors.
	Models []ModelInfo `json:"models"`
	// NextPageToken is non-empty when more pages remain.
	NextPageToken string `json:"nextPageToken,omitempty"`
}
