package stage

import (
	"regexp"
	"strconv"
	"strings"
)

// ApprovalCues are the casual phrases treated as a thumbs-up at an approval
// gate. Matching is literal surface matching, not intent classification;
// anything that does not match is treated as revision feedback.
var ApprovalCues = []string{
	"yeah",
	"yep",
	"sounds good",
	"looks good",
	"love it",
	"let's do it",
	"go ahead",
	"continue",
	"ship it",
	"run it",
	"decide yourself",
	"you pick",
	"you choose",
	"roll with it",
	"i'm in",
	"all good",
	"sure thing",
	"approve",
	"approved",
}

// Signal is a client-observable gate action derived from user input.
type Signal int

const (
	// SignalApprove clears the gate and advances the pipeline.
	SignalApprove Signal = iota
	// SignalRevise rejects the current output; the input is the feedback.
	SignalRevise
)

// Interpret classifies free-text input at an approval gate.
func Interpret(input string) Signal {
	lower := strings.ToLower(strings.TrimSpace(input))
	for _, cue := range ApprovalCues {
		if lower == cue || strings.HasPrefix(lower, cue+" ") || strings.HasPrefix(lower, cue+",") || strings.HasPrefix(lower, cue+"!") || strings.HasPrefix(lower, cue+".") {
			return SignalApprove
		}
	}
	return SignalRevise
}

var optionPattern = regexp.MustCompile(`(?i)\boption\s*#?\s*(\d+)\b`)

// ParseVisualOption extracts a visual option pick like "option 2 please".
func ParseVisualOption(input string) (string, bool) {
	match := optionPattern.FindStringSubmatch(input)
	if match == nil {
		return "", false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil || n < 1 {
		return "", false
	}
	return "option " + match[1], true
}
