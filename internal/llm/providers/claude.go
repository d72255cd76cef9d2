package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"starlift/internal/config"
	"starlift/internal/llm"
	"starlift/internal/llm/processors"
	"starlift/internal/logging"
)

func init() {
	llm.RegisterProvider("claude", func(cfg *config.Config) llm.Provider {
		return NewClaudeProvider(cfg)
	})
}

// ClaudeProvider implements the extraction provider interface using
// Anthropic's Claude
type ClaudeProvider struct {
	client      anthropic.Client
	config      *config.Config
	htmlCleaner *processors.HTMLCleaner
	logger      logging.Logger
}

// NewClaudeProvider creates a new Claude provider instance
func NewClaudeProvider(cfg *config.Config) *ClaudeProvider {
	client := anthropic.NewClient(
		option.WithAPIKey(cfg.LLM.APIKey),
	)

	return &ClaudeProvider{
		client:      client,
		config:      cfg,
		htmlCleaner: processors.NewHTMLCleaner(),
		logger:      logging.GetGlobalLogger(),
	}
}

// Extract processes an HTML fragment and returns a record matching the
// schema, best effort.
func (cp *ClaudeProvider) Extract(ctx context.Context, fragment string, schema llm.Schema) (map[string]interface{}, error) {
	startTime := time.Now()

	// The fragment is handed over as a standalone scratch document;
	// cleanup must happen on every exit path, including failures below.
	scratch, err := llm.NewScratchDoc(schema.Name, fragment)
	if err != nil {
		return nil, err
	}
	defer scratch.Release()

	doc, err := scratch.Read()
	if err != nil {
		return nil, err
	}

	content, err := cp.htmlCleaner.ExtractRecordContent(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to clean HTML: %w", err)
	}

	// Truncate to fit token limits. Rough estimation: 3 chars per token.
	maxContentLength := cp.config.LLM.MaxTokens * 3
	if len(content) > maxContentLength {
		content = content[:maxContentLength] + "..."
		cp.logger.Debug("Content truncated to fit token limits", map[string]interface{}{
			"schema": schema.Name,
		})
	}

	prompt := cp.buildExtractionPrompt(content, schema)

	response, err := cp.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       cp.model(),
		MaxTokens:   int64(cp.config.LLM.MaxTokens),
		Temperature: anthropic.Float(float64(cp.config.LLM.Temperature)),
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: prompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to call Claude API: %w", err)
	}

	record, err := cp.parseResponse(response, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Claude response: %w", err)
	}

	cp.logger.Debug("Structured extraction completed", map[string]interface{}{
		"schema":          schema.Name,
		"processing_time": time.Since(startTime).String(),
		"provider":        "claude",
	})

	return record, nil
}

func (cp *ClaudeProvider) model() anthropic.Model {
	if cp.config.LLM.Model != "" {
		return anthropic.Model(cp.config.LLM.Model)
	}
	return anthropic.ModelClaude3_7SonnetLatest
}

// buildExtractionPrompt creates the prompt asking Claude for a single
// JSON object matching the schema
func (cp *ClaudeProvider) buildExtractionPrompt(content string, schema llm.Schema) string {
	return fmt.Sprintf(`You are a structured data extractor. Extract one %s record from the page content below and return it as a JSON object matching this schema:

%s

IMPORTANT RULES:
1. Return ONLY valid JSON, no additional text or explanation
2. If a value is not found, use empty string "" for strings, [] for arrays, 0 for numbers and false for booleans
3. Do not invent values that are not present in the content
4. Numbers must be plain JSON numbers without currency symbols

PAGE CONTENT:
%s`, schema.Name, llm.RenderSchema(schema), content)
}

// parseResponse extracts the record from the Claude API response
func (cp *ClaudeProvider) parseResponse(response *anthropic.Message, schema llm.Schema) (map[string]interface{}, error) {
	if len(response.Content) == 0 {
		return nil, fmt.Errorf("empty response from Claude")
	}

	var responseText string
	for _, content := range response.Content {
		textContent := content.AsText()
		responseText = textContent.Text
		break
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text content in Claude response")
	}

	return llm.DecodeResponse(responseText, schema)
}

// IsHealthy checks if the Claude provider is healthy and available
func (cp *ClaudeProvider) IsHealthy(ctx context.Context) error {
	if cp.config.LLM.APIKey == "" {
		return fmt.Errorf("Claude API key not configured - set LLM_API_KEY environment variable")
	}

	_, err := cp.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     cp.model(),
		MaxTokens: 500,
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: "Hello"},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})

	if err != nil {
		return fmt.Errorf("Claude API health check failed: %w", err)
	}

	return nil
}

// GetProviderName returns the name of the provider
func (cp *ClaudeProvider) GetProviderName() string {
	return "claude"
}
