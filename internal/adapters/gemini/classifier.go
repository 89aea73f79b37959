package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/antispam-admin/internal/core"
	"github.com/mikey/antispam-admin/internal/utils"
	"go.uber.org/zap"
)

// Classifier is an implementation of the core.Classifier interface using Google Gemini
type Classifier struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewClassifier creates a new Gemini classifier
func NewClassifier(
	client *genai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Classifier {
	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))
	model.ResponseMIMEType = "application/json"

	return &Classifier{
		client:        client,
		model:         model,
		modelName:     modelName,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// ClassifyText classifies a text using the Gemini generative API
func (c *Classifier) ClassifyText(ctx context.Context, text string) (*core.Classification, error) {
	processed := c.textProcessor.ProcessText(text, c.maxBodySize)

	prompt := fmt.Sprintf("%s\n\nClassify the following message:\n%s", core.ClassifyPrompt, processed)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	content := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			content += string(textPart)
		}
	}

	result, err := core.DecodeClassification(content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode Gemini classification: %w", err)
	}
	result.ModelUsed = c.modelName

	c.logger.Debug("Gemini classification complete",
		zap.String("model", c.modelName))

	return result, nil
}

// Close releases the underlying API client
func (c *Classifier) Close() error {
	return c.client.Close()
}
