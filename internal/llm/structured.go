package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Invoke sends a JSON-mode completion request and unmarshals the response into out.
// A transport failure and an unparseable response are reported as distinct errors
// so callers can decide which ones are recoverable.
func Invoke(ctx context.Context, p Provider, model string, messages []Message, out any) error {
	resp, err := p.Complete(ctx, CompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   4096,
		Temperature: 0.1,
		JSONMode:    true,
	})
	if err != nil {
		return fmt.Errorf("llm completion: %w", err)
	}

	if err := UnmarshalResponse(resp.Content, out); err != nil {
		return fmt.Errorf("parsing llm response: %w", err)
	}
	return nil
}

// UnmarshalResponse parses an LLM JSON response into v, tolerating markdown
// code fences that some models wrap around JSON output.
func UnmarshalResponse(raw string, v any) error {
	raw = strings.TrimSpace(raw)

	// Strip markdown code fences if present.
	if strings.HasPrefix(raw, "```") {
		lines := strings.Split(raw, "\n")
		if len(lines) >= 2 {
			// Remove first line (```json) and last line (```)
			start := 1
			end := len(lines)
			if strings.TrimSpace(lines[end-1]) == "```" {
				end--
			}
			raw = strings.Join(lines[start:end], "\n")
		}
	}

	// Some models prepend prose before the JSON object; fall back to the
	// outermost braces when a direct parse fails.
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start >= 0 && end > start {
			return json.Unmarshal([]byte(raw[start:end+1]), v)
		}
		return err
	}
	return nil
}
