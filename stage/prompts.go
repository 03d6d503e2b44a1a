package stage

import "fmt"

// Prompt templates per stage, mirroring the coordinator's stage duties:
// recap the brief, generate visual directions, draft the spec, compile
// sourcing leads, and stitch the final recap. Every prompt restates the
// brief so the backend sees the cumulative context even if its own history
// window rotates.

func viabilityPrompt(brief string) string {
	return fmt.Sprintf(
		"Evaluate the market viability of this product idea. Delegate to the research agent for a grounded verdict with citations, a confidence score, and any blockers.\n\nBrief:\n%s",
		brief)
}

func visualsPrompt(brief, viability string) string {
	return fmt.Sprintf(
		"The viability take was approved. Have the visual agent propose three distinct visual directions (nickname, palette, typography vibe, packaging cues) for this concept.\n\nBrief:\n%s\n\nApproved viability summary:\n%s",
		brief, viability)
}

func specPrompt(brief, selectedVisual string) string {
	return fmt.Sprintf(
		"Visuals are approved with direction %q locked in. Have the product agent draft a buildable spec: value prop, target user notes, BOM with draft cost targets, compliance watch-outs, and open questions.\n\nBrief:\n%s",
		selectedVisual, brief)
}

func sourcingPrompt(brief, spec string) string {
	return fmt.Sprintf(
		"The spec is approved. Have the sourcing agent compile the full ingredient list and 5-10 manufacturer leads (company, region, MOQ, strengths, contact link), plus an outreach template.\n\nBrief:\n%s\n\nApproved spec:\n%s",
		brief, spec)
}

func finalPrompt(brief string) string {
	return fmt.Sprintf(
		"Everything is approved. Stitch the full journey into a tidy final recap with next moves.\n\nBrief:\n%s",
		brief)
}

func revisionPrompt(s Stage, brief, feedback string) string {
	return fmt.Sprintf(
		"Revise the %s output based on this feedback, then present the updated version:\n%s\n\nBrief:\n%s",
		s, feedback, brief)
}

func reselectionPrompt(brief, rejected, selected string) string {
	return fmt.Sprintf(
		"Direction %q was rejected; the user now prefers %q. Have the visual agent rework the options around that preference, noting what was wrong with the rejected pick.\n\nBrief:\n%s",
		rejected, selected, brief)
}

// promptFor builds the request prompt for entering a stage.
func promptFor(s Stage, state *State) string {
	switch s {
	case Viability:
		return viabilityPrompt(state.Brief)
	case Visuals:
		return visualsPrompt(state.Brief, state.Outputs[Viability])
	case Spec:
		return specPrompt(state.Brief, state.SelectedVisual)
	case Sourcing:
		return sourcingPrompt(state.Brief, state.Outputs[Spec])
	default:
		return finalPrompt(state.Brief)
	}
}
