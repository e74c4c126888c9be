package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
	"google.golang.org/genai"
)

// convertMessagesToGemini converts []interfaces.Message to Gemini Content
// format, maintaining chronological ordering. System messages are extracted
// separately for use with SystemInstruction. Returns the user/model
// messages, the first system message content (if any), and an error.
func convertMessagesToGemini(messages []interfaces.Message) ([]*genai.Content, string, error) {
	if len(messages) == 0 {
		return nil, "", fmt.Errorf("messages cannot be empty")
	}

	hasUserMessage := false
	for _, msg := range messages {
		if msg.Role == "user" {
			hasUserMessage = true
			break
		}
	}
	if !hasUserMessage {
		return nil, "", fmt.Errorf("at least one message must have role 'user'")
	}

	contents := make([]*genai.Content, 0, len(messages))
	var systemText string
	for _, msg := range messages {
		if msg.Role == "system" {
			if systemText == "" {
				systemText = msg.Content
			}
			continue
		}

		var geminiRole string
		switch msg.Role {
		case "assistant":
			geminiRole = genai.RoleModel
		default:
			geminiRole = genai.RoleUser
		}

		contents = append(contents, &genai.Content{
			Role:  geminiRole,
			Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
		})
	}

	return contents, systemText, nil
}

// generateWithGemini generates content using the Gemini API
func (f *ProviderFactory) generateWithGemini(ctx context.Context, request *interfaces.GenerationRequest, model string) (*interfaces.GenerationResponse, error) {
	client, err := f.getGeminiClient(ctx)
	if err != nil {
		return nil, generationError("Gemini client unavailable", err)
	}

	if model == "" {
		model = f.geminiConfig.Model
	}

	geminiContents, systemText, err := convertMessagesToGemini(request.Messages)
	if err != nil {
		return nil, generationError("invalid generation request", err)
	}
	if request.SystemInstruction != "" {
		systemText = request.SystemInstruction
	}

	temp := request.Temperature
	if temp <= 0 {
		temp = f.geminiConfig.Temperature
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temp),
	}
	if systemText != "" {
		config.SystemInstruction = genai.NewContentFromText(systemText, genai.RoleUser)
	}

	timeoutCtx, cancel := f.withGeminiTimeout(ctx)
	defer cancel()

	start := time.Now()
	resp, err := client.Models.GenerateContent(timeoutCtx, model, geminiContents, config)
	if err != nil {
		return nil, generationError("Gemini generation failed", err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return nil, generationError("empty response from Gemini API", nil)
	}
	responseText := resp.Text()
	if responseText == "" {
		return nil, generationError("empty text in Gemini response", nil)
	}

	f.logger.Debug().
		Str("model", model).
		Int("response_length", len(responseText)).
		Dur("duration", time.Since(start)).
		Msg("Gemini generation completed")

	return &interfaces.GenerationResponse{
		Text:     responseText,
		Provider: string(ProviderGemini),
		Model:    model,
	}, nil
}

// EmbedDocuments embeds texts for indexing in one batched call using the
// RETRIEVAL_DOCUMENT task type with a title hint. The returned slice is
// index-aligned with texts.
func (f *ProviderFactory) EmbedDocuments(ctx context.Context, texts []string, title string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, models.NewPipelineError(models.ErrKindEmbedding, "no texts to embed", nil)
	}
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, models.NewPipelineError(models.ErrKindEmbedding,
				fmt.Sprintf("text %d is empty", i), nil)
		}
	}

	config := &genai.EmbedContentConfig{
		TaskType: taskTypeDocument,
		Title:    title,
	}
	return f.embed(ctx, texts, config)
}

// EmbedQuery embeds a search query using the RETRIEVAL_QUERY task type.
func (f *ProviderFactory) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, models.NewPipelineError(models.ErrKindEmbedding, "query text is empty", nil)
	}

	config := &genai.EmbedContentConfig{
		TaskType: taskTypeQuery,
	}
	vectors, err := f.embed(ctx, []string{text}, config)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedDimension returns the configured embedding dimensionality.
func (f *ProviderFactory) EmbedDimension() int {
	return f.geminiConfig.EmbedDimension
}

// embed runs one batched EmbedContent call and validates dimensionality.
func (f *ProviderFactory) embed(ctx context.Context, texts []string, config *genai.EmbedContentConfig) ([][]float32, error) {
	client, err := f.getGeminiClient(ctx)
	if err != nil {
		return nil, models.NewPipelineError(models.ErrKindEmbedding, "Gemini client unavailable", err)
	}

	outputDim := int32(f.geminiConfig.EmbedDimension)
	config.OutputDimensionality = &outputDim

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	timeoutCtx, cancel := f.withGeminiTimeout(ctx)
	defer cancel()

	start := time.Now()
	result, err := client.Models.EmbedContent(timeoutCtx, f.geminiConfig.EmbedModel, contents, config)
	if err != nil {
		return nil, models.NewPipelineError(models.ErrKindEmbedding, "embedding request failed", err)
	}
	if result == nil || len(result.Embeddings) != len(texts) {
		return nil, models.NewPipelineError(models.ErrKindEmbedding,
			fmt.Sprintf("expected %d embeddings in response", len(texts)), nil)
	}

	vectors := make([][]float32, len(texts))
	for i, embedding := range result.Embeddings {
		if embedding == nil || len(embedding.Values) != f.geminiConfig.EmbedDimension {
			return nil, models.NewPipelineError(models.ErrKindEmbedding,
				fmt.Sprintf("embedding %d has wrong dimensionality", i), nil)
		}
		vectors[i] = embedding.Values
	}

	f.logger.Debug().
		Int("count", len(vectors)).
		Int("dimension", f.geminiConfig.EmbedDimension).
		Str("task_type", config.TaskType).
		Dur("duration", time.Since(start)).
		Msg("Embeddings generated")

	return vectors, nil
}

// withGeminiTimeout derives a timeout context from the configured duration.
func (f *ProviderFactory) withGeminiTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := 60 * time.Second
	if f.geminiConfig.Timeout != "" {
		if parsed, err := time.ParseDuration(f.geminiConfig.Timeout); err == nil {
			timeout = parsed
		}
	}
	return context.WithTimeout(ctx, timeout)
}
