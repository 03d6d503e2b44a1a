package types

import "strings"

// MemberOutput is text attributable to one named collaborator inside a
// multi-agent response. Identifier is the value as it appeared on the wire;
// NormalizedID is the matching form (lowercase alphanumerics only).
type MemberOutput struct {
	Identifier   string
	NormalizedID string
	Text         string
}

// UnknownMember is the placeholder identifier for entries that carry no
// usable member, agent, name, or id field.
const UnknownMember = "unknown"

// NormalizeID reduces an identifier to lowercase alphanumerics for matching.
// Display code should keep using the original identifier.
func NormalizeID(id string) string {
	var b strings.Builder
	b.Grow(len(id))
	for _, r := range strings.ToLower(id) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
