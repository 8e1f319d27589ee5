package planner

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/pland/internal/search"
)

// phaseInstructions are the role instructions for each phase prompt.
var phaseInstructions = map[Phase]string{
	PhaseFoundationalResearch: `You are a technical planning agent performing foundational research.
Given the user's request and the web evidence below, identify the problem domain,
the established architectural approaches, and the main technology choices.
Summarize your findings as grounding for deeper analysis. Do not write the plan yet.`,

	PhaseComponentAnalysis: `You are a technical planning agent analyzing system components.
Using the foundational research and the web evidence below, break the system into
its major components. For each component, note its responsibility, its interfaces,
and the concrete implementation options with trade-offs. Do not write the plan yet.`,

	PhaseSynthesis: `You are a technical planning agent writing the final plan.
Using all prior research and analysis, produce a comprehensive multi-phase technical
implementation plan: architecture, components, technology choices, implementation
order, and risks. Structure it with clear headings.`,
}

// deriveQueries produces the bounded, deterministic candidate query list for
// a phase. Foundational research queries are broad, component-analysis
// queries are narrower, synthesis issues none.
func deriveQueries(phase Phase, pctx *phaseContext, maxQueries int) []string {
	if maxQueries <= 0 {
		return nil
	}

	topic := firstLine(pctx.request.LastUserContent())
	if topic == "" {
		return nil
	}

	var candidates []string
	switch phase {
	case PhaseFoundationalResearch:
		candidates = []string{
			topic + " architecture overview",
			topic + " best practices",
			topic + " technology stack comparison",
			topic + " design patterns",
		}
	case PhaseComponentAnalysis:
		// Narrow the queries using headings surfaced by the research phase.
		for _, h := range headings(priorOutput(pctx, PhaseFoundationalResearch)) {
			candidates = append(candidates, topic+" "+h+" implementation")
		}
		candidates = append(candidates,
			topic+" component design",
			topic+" scaling considerations",
		)
	case PhaseSynthesis:
		return nil
	}

	if len(candidates) > maxQueries {
		candidates = candidates[:maxQueries]
	}
	return candidates
}

// buildPrompt combines the phase's role instructions, the accumulated
// prior-phase text, and the gathered evidence into one completion prompt.
func buildPrompt(phase Phase, pctx *phaseContext, evidence []search.Result, maxEvidenceBytes int) string {
	var sb strings.Builder

	sb.WriteString(phaseInstructions[phase])
	sb.WriteString("\n\n## Conversation\n\n")
	for _, m := range pctx.request.Messages {
		fmt.Fprintf(&sb, "%s: %s\n", m.Role, m.Content)
	}

	for _, prior := range pctx.results {
		fmt.Fprintf(&sb, "\n## Prior phase: %s\n\n%s\n", prior.Phase, prior.Output)
	}

	if ev := formatEvidence(evidence, maxEvidenceBytes); ev != "" {
		sb.WriteString("\n## Web evidence\n\n")
		sb.WriteString(ev)
	}

	return sb.String()
}

// formatEvidence renders search results in rank order, dropping whole
// results once the byte bound is reached. Highest-ranked results survive.
func formatEvidence(results []search.Result, maxBytes int) string {
	var sb strings.Builder
	for i, r := range results {
		block := fmt.Sprintf("%d. %s\n   %s\n   %s\n", i+1, r.Title, r.URL, r.Snippet)
		if sb.Len()+len(block) > maxBytes {
			break
		}
		sb.WriteString(block)
	}
	return sb.String()
}

// firstLine returns the trimmed first non-empty line of s.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// headings extracts markdown heading texts from prior phase output.
func headings(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			h := strings.TrimSpace(strings.TrimLeft(trimmed, "# "))
			if h != "" {
				out = append(out, h)
			}
		}
	}
	return out
}

// priorOutput returns the output of a completed phase, or "".
func priorOutput(pctx *phaseContext, phase Phase) string {
	for _, r := range pctx.results {
		if r.Phase == phase {
			return r.Output
		}
	}
	return ""
}

// renderConversation flattens the message history into a chat prompt.
func renderConversation(messages []Message) string {
	var sb strings.Builder
	for _, m := range messages {
		fmt.Fprintf(&sb, "%s: %s\n", m.Role, m.Content)
	}
	sb.WriteString("assistant:")
	return sb.String()
}
