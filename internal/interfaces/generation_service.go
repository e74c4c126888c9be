// -----------------------------------------------------------------------
// Generation Service Interface - LLM content generation
// -----------------------------------------------------------------------

package interfaces

import "context"

// Message represents a single turn in a model conversation.
type Message struct {
	Role    string `json:"role"` // "system", "user", or "assistant"
	Content string `json:"content"`
}

// GenerationRequest is a provider-agnostic content generation request.
type GenerationRequest struct {
	Messages          []Message
	Model             string
	Temperature       float32
	MaxTokens         int
	SystemInstruction string
}

// GenerationResponse is a provider-agnostic content generation response.
type GenerationResponse struct {
	Text     string
	Provider string
	Model    string
}

// GenerationService produces natural-language text from a prompt. Concrete
// backends (Gemini, Claude) are swappable behind this interface.
type GenerationService interface {
	GenerateContent(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error)
	HealthCheck(ctx context.Context) error
	Close() error
}
