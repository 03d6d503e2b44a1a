package content

import (
	"regexp"
	"strings"
)

// toolCallPattern matches explicit tool-invocation lines the coordinator
// sometimes leaks into its text, e.g. `call set_stage("viability")`.
var toolCallPattern = regexp.MustCompile(`^call\s+\w+\(`)

// Line-level markers of leaked internal directives.
const (
	delegationDirective = "delegate_task_to_member"
	coordinatorName     = "coordinatorpm"
	systemPrefix        = "[system"
)

// Sanitize strips leaked internal directives out of coordinator-authored
// text. It drops lines that are tool invocations, delegation directives,
// "calling ..." narration, coordinator self-references, or system-prefixed
// markers, then rejoins and trims the remainder.
func Sanitize(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(trimmed)
		switch {
		case toolCallPattern.MatchString(trimmed):
		case strings.Contains(trimmed, delegationDirective):
		case strings.HasPrefix(lower, "calling"):
		case strings.HasPrefix(lower, coordinatorName):
		case strings.HasPrefix(lower, systemPrefix):
		default:
			kept = append(kept, line)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
