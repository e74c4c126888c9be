// -----------------------------------------------------------------------
// Answer Service - Grounded answer generation from retrieved context
// -----------------------------------------------------------------------

package answer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
)

// systemPromptTemplate frames the model as a grounded assistant. The
// retrieved segments are injected into %s; the model is told to stay inside
// them rather than answer from its own knowledge.
const systemPromptTemplate = `You are a helpful AI assistant who answers the user query based on the available context from an uploaded PDF file.
Answer only from the context below. If the context does not contain the answer, say so instead of guessing.

Context:
%s`

const segmentSeparator = "\n\n---\n\n"

// Service generates answers grounded on retrieved segments
type Service struct {
	generator       interfaces.GenerationService
	maxContextChars int
	logger          arbor.ILogger
}

// NewService creates an answer service. maxContextChars caps the serialized
// context passed to the model; lowest-ranked segments are truncated first.
func NewService(generator interfaces.GenerationService, maxContextChars int, logger arbor.ILogger) *Service {
	return &Service{
		generator:       generator,
		maxContextChars: maxContextChars,
		logger:          logger,
	}
}

// Answer generates a grounded response to the query held in retrieved.
// Model selects the generation model; empty means the configured default.
func (s *Service) Answer(ctx context.Context, retrieved *models.RetrievalResult, model string) (*models.Answer, error) {
	if retrieved == nil || strings.TrimSpace(retrieved.Query) == "" {
		return nil, models.NewPipelineError(models.ErrKindGeneration, "no query to answer", nil)
	}

	contextText := s.buildContext(retrieved)

	request := &interfaces.GenerationRequest{
		Messages: []interfaces.Message{
			{Role: "user", Content: "Answer this question according to context: " + retrieved.Query},
		},
		Model:             model,
		SystemInstruction: fmt.Sprintf(systemPromptTemplate, contextText),
	}

	start := time.Now()
	response, err := s.generator.GenerateContent(ctx, request)
	if err != nil {
		return nil, err
	}

	answer := &models.Answer{
		Text:     response.Text,
		Model:    response.Model,
		Context:  *retrieved,
		Duration: time.Since(start),
	}

	s.logger.Info().
		Str("model", response.Model).
		Str("provider", response.Provider).
		Int("context_segments", len(retrieved.Records)).
		Int("answer_length", len(answer.Text)).
		Dur("duration", answer.Duration).
		Msg("Answer generated")

	return answer, nil
}

// buildContext serializes retrieved segments in rank order, each prefixed
// with its source and page. When the budget runs out, the current segment is
// cut to the remaining space and everything ranked below it is dropped, so
// the highest-ranked context always survives intact.
func (s *Service) buildContext(retrieved *models.RetrievalResult) string {
	if len(retrieved.Records) == 0 {
		return "(no matching content found in the index)"
	}

	var builder strings.Builder
	for i, scored := range retrieved.Records {
		block := formatSegment(scored.Record.Segment)
		if i > 0 {
			block = segmentSeparator + block
		}

		remaining := s.maxContextChars - builder.Len()
		if remaining <= 0 {
			break
		}
		if len(block) > remaining {
			builder.WriteString(block[:remaining])
			s.logger.Debug().
				Int("rank", i+1).
				Int("max_context_chars", s.maxContextChars).
				Msg("Context truncated at budget")
			break
		}
		builder.WriteString(block)
	}
	return builder.String()
}

func formatSegment(segment models.Segment) string {
	header := segment.Source
	if header == "" {
		header = "document"
	}
	if segment.PageNumber > 0 {
		header = fmt.Sprintf("%s, page %d", header, segment.PageNumber)
	}
	return fmt.Sprintf("[%s]\n%s", header, segment.Text)
}
