package generations

import "strings"

// ComposePrompt merges the base prompt with style modifiers into the text
// sent to the model. The clause order -- style, color scheme, mood, then
// free-form modifiers -- is a behavioral contract: identical inputs must
// produce identical prompts.
func ComposePrompt(basePrompt string, style *StyleParameters) string {
	if style == nil {
		return basePrompt
	}

	clauses := make([]string, 0, 3+len(style.Modifiers))
	if style.Style != "" {
		clauses = append(clauses, "in "+style.Style+" style")
	}
	if style.ColorScheme != "" {
		clauses = append(clauses, "with "+style.ColorScheme+" color scheme")
	}
	if style.Mood != "" {
		clauses = append(clauses, style.Mood+" mood")
	}
	for _, m := range style.Modifiers {
		if m != "" {
			clauses = append(clauses, m)
		}
	}

	if len(clauses) == 0 {
		return basePrompt
	}
	return basePrompt + ", " + strings.Join(clauses, ", ")
}
