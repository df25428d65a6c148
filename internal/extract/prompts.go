package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ziadkadry99/policyrag/internal/schema"
)

const extractionRules = `You are an information extraction system.
Extract only the required metadata from the text according to the schema below.

CRITICAL FORMATTING RULES:
- ALL fields must be arrays/lists, even if there's only one value
- For single values, wrap in brackets: "coverage_type": ["single value"]
- For multiple values: "coverage_type": ["value1", "value2", "value3"]
- For null/empty fields, use null (not empty arrays)
- Always include the boolean field "added_new_keyword"

CONTENT RULES:
- DO NOT copy full sentences. Extract only concise normalized keywords (2-5 words max each).
- Use existing keywords if they already exist in the provided list.
- Prefer to reuse existing keywords if they are semantically the same.
- If you find a new keyword that is a sub-type or more specific variant of an existing one, keep both:
  reuse the closest match from existing keywords, and also add the new one.
- In that case, set added_new_keyword=true.
- Do not include raw paragraphs in the output.`

const queryRules = `You are an information extraction system.
Extract only the required metadata from the user's question, reusing the existing known keywords.

CRITICAL FORMATTING RULES:
- ALL fields must be arrays/lists, even if there's only one value
- For null/empty fields, use null (not empty arrays)
- Always include the boolean field "added_new_keyword"

CONTENT RULES:
- Extract only concise normalized keywords (2-5 words max each), never full sentences.
- Use an existing keyword whenever it is semantically equivalent to what the question asks about.
- Leave fields null when the question does not constrain them.`

// buildSystemPrompt assembles the extraction system prompt for a category,
// embedding the field schema and the currently known keywords.
func buildSystemPrompt(rules string, category schema.DocumentCategory, known map[string][]string) string {
	var fields []string
	for _, f := range schema.FieldsFor(category) {
		fields = append(fields, fmt.Sprintf("- %s: %s", f.Name, f.Description))
	}

	knownJSON, err := json.MarshalIndent(known, "", "  ")
	if err != nil || known == nil {
		knownJSON = []byte("{}")
	}

	return fmt.Sprintf(`%s

Schema you must follow (all fields optional, all values lists of short strings):
%s

Existing keywords:
%s`, rules, strings.Join(fields, "\n"), knownJSON)
}
