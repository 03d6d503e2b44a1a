package content

import "github.com/pithecene-io/atelier/types"

// Member identifier fields in resolution priority order.
var identifierFields = []string{"member_id", "agent_id", "name", "id"}

// ResolveMembers walks a member-responses structure and returns one
// MemberOutput per member with non-empty sanitized text.
//
// Accepts a single response-shaped structure or a sequence of them. A
// member's output may itself carry a nested member_responses field
// (sub-delegation); the walk flattens arbitrarily deep nesting, preserving
// first-seen order. Entries that are not structures, or whose text
// sanitizes to nothing, are skipped.
func ResolveMembers(v any) []types.MemberOutput {
	var out []types.MemberOutput
	switch val := v.(type) {
	case []any:
		for _, entry := range val {
			out = append(out, ResolveMembers(entry)...)
		}
	case map[string]any:
		out = append(out, resolveEntry(val)...)
	}
	return out
}

func resolveEntry(entry map[string]any) []types.MemberOutput {
	identifier := types.UnknownMember
	for _, field := range identifierFields {
		if s, ok := entry[field].(string); ok && s != "" {
			identifier = s
			break
		}
	}

	var out []types.MemberOutput
	if text := Sanitize(memberText(entry)); text != "" {
		out = append(out, types.MemberOutput{
			Identifier:   identifier,
			NormalizedID: types.NormalizeID(identifier),
			Text:         text,
		})
	}

	if nested, ok := entry[types.FieldMemberResponses]; ok {
		out = append(out, ResolveMembers(nested)...)
	}
	return out
}

// memberText extracts a member entry's own display text. Unlike Normalize it
// never falls back to serializing the whole entry, so members that carry only
// identifiers or nested responses yield nothing rather than a JSON dump.
func memberText(entry map[string]any) string {
	for _, field := range textFields {
		if s, ok := entry[field].(string); ok && s != "" {
			return s
		}
	}
	for _, field := range sequenceFields {
		if seq, ok := entry[field].([]any); ok {
			if s := Normalize(seq); s != "" {
				return s
			}
		}
	}
	if nested, ok := entry["content"].(map[string]any); ok {
		return Normalize(nested)
	}
	return ""
}
