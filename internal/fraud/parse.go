package fraud

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ParseResponse extracts the analysis JSON from raw model output. Models
// return the object bare, inside a labeled or unlabeled markdown fence, or
// embedded in prose; all four shapes parse to the same Analysis. Malformed
// JSON or a missing score/decision is a hard error, never defaulted.
func ParseResponse(content string) (*Analysis, error) {
	jsonContent, err := extractJSON(content)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Score           *float64 `json:"score"`
		RiskLevel       string   `json:"risk_level"`
		Decision        *string  `json:"decision"`
		Confidence      int      `json:"confidence"`
		FraudIndicators []string `json:"fraud_indicators"`
		Reasoning       string   `json:"reasoning"`
		Recommendations []string `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(jsonContent), &raw); err != nil {
		return nil, fmt.Errorf("parse analysis JSON: %w", err)
	}
	if raw.Score == nil || raw.Decision == nil {
		return nil, errors.New("analysis JSON missing required score or decision")
	}

	return &Analysis{
		Score:           *raw.Score,
		RiskLevel:       raw.RiskLevel,
		Decision:        *raw.Decision,
		Confidence:      raw.Confidence,
		FraudIndicators: raw.FraudIndicators,
		Reasoning:       raw.Reasoning,
		Recommendations: raw.Recommendations,
	}, nil
}

func extractJSON(content string) (string, error) {
	if i := strings.Index(content, "```json"); i >= 0 {
		if j := strings.LastIndex(content, "```"); j > i {
			return strings.TrimSpace(content[i+len("```json") : j]), nil
		}
	}
	if i := strings.Index(content, "```"); i >= 0 {
		if j := strings.LastIndex(content, "```"); j > i+2 {
			return strings.TrimSpace(content[i+3 : j]), nil
		}
	}
	if i := strings.Index(content, "{"); i >= 0 {
		if j := strings.LastIndex(content, "}"); j > i {
			return content[i : j+1], nil
		}
	}
	return "", errors.New("no JSON object in model response")
}
