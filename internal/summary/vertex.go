package summary

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

const pdfMIMEType = "application/pdf"

var refusalPhrases = []string{
	"i am unable to",
	"i cannot fulfill",
	"i cannot answer",
	"as a large language model",
}

// generator is the slice of *genai.GenerativeModel the summarizer needs.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Vertex summarizes PDFs with a Gemini model on Vertex AI. The document is
// sent inline next to the prompt.
type Vertex struct {
	client *genai.Client
	model  generator
	name   string
}

// NewVertex connects to Vertex AI in projectID/region and prepares modelName.
func NewVertex(ctx context.Context, projectID, region, modelName string, opts ...option.ClientOption) (*Vertex, error) {
	if projectID == "" {
		return nil, fmt.Errorf("vertex project id is required")
	}
	client, err := genai.NewClient(ctx, projectID, region, opts...)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	m := client.GenerativeModel(modelName)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:     genai.Ptr[float32](0.2),
		MaxOutputTokens: genai.Ptr[int32](2048),
	}
	return &Vertex{client: client, model: m, name: modelName}, nil
}

// Summarize sends pdf with the summary prompt and returns the cleaned text.
func (v *Vertex) Summarize(ctx context.Context, pdf []byte) (string, error) {
	if len(pdf) > MaxPDFBytes {
		return "", ErrTooLarge
	}
	log := zerolog.Ctx(ctx).With().Str("model", v.name).Int("bytes", len(pdf)).Logger()

	resp, err := v.model.GenerateContent(ctx, genai.Blob{MIMEType: pdfMIMEType, Data: pdf}, genai.Text(Prompt))
	if err != nil {
		log.Error().Err(err).Msg("vertex generate content failed")
		return "", fmt.Errorf("generate summary: %w", err)
	}

	text := extractText(resp)
	if text == "" {
		return "", ErrEmptySummary
	}
	lower := strings.ToLower(text)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			log.Warn().Str("response", text).Msg("model refusal detected")
			return "", ErrRefused
		}
	}
	log.Debug().Int("chars", len([]rune(text))).Msg("summary generated")
	return text, nil
}

// Close releases the underlying client.
func (v *Vertex) Close() error {
	if v.client == nil {
		return nil
	}
	return v.client.Close()
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	s := strings.TrimSpace(b.String())
	s = strings.TrimPrefix(s, "```markdown")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
