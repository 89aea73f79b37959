package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ClassifyPrompt is the instruction shared by all LLM provider adapters.
const ClassifyPrompt = `You are a telecom compliance assistant. Process the provided message and respond with a JSON object containing: is_spam (boolean), confidence (number 0-1), category (string), and rationale (string). Confidence must be a number between 0 and 1. Respond only with the JSON object and nothing else.`

// rawClassification tolerates loosely-typed provider output; confidence
// frequently comes back as a string or is missing entirely.
type rawClassification struct {
	IsSpam     bool            `json:"is_spam"`
	Confidence json.RawMessage `json:"confidence"`
	Category   string          `json:"category"`
	Rationale  string          `json:"rationale"`
}

// DecodeClassification parses a provider response body into a normalized
// Classification. A response that does not parse as structured data is an
// error; malformed individual fields are defensively defaulted instead:
// confidence is clamped to [0, 1] (non-numeric means 0), a missing category
// becomes "unknown", and a missing rationale gets a placeholder.
func DecodeClassification(content string) (*Classification, error) {
	var raw rawClassification
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		// Some models wrap the JSON object in prose or markdown fences;
		// retry on the outermost brace-delimited span.
		start := strings.Index(content, "{")
		end := strings.LastIndex(content, "}")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("response is not a JSON object: %w", err)
		}
		if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse classification response: %w", err)
		}
	}

	confidence := 0.0
	if len(raw.Confidence) > 0 {
		if err := json.Unmarshal(raw.Confidence, &confidence); err != nil {
			var text string
			if json.Unmarshal(raw.Confidence, &text) == nil {
				fmt.Sscanf(text, "%f", &confidence)
			}
		}
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	category := raw.Category
	if category == "" {
		category = "unknown"
	}
	rationale := raw.Rationale
	if rationale == "" {
		rationale = "LLM did not provide a rationale."
	}

	return &Classification{
		IsSpam:     raw.IsSpam,
		Confidence: confidence,
		Category:   category,
		Rationale:  rationale,
	}, nil
}
