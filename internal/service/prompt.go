package service

import "strings"

type templateKey struct {
	verbose      bool
	hasReference bool
}

type promptTemplate struct {
	text      string
	maxTokens int
}

const verboseBody = `{intro}

RUBRIC (how to score):
{rubric}

ADDITIONAL CONTEXT:
{context}

{scoring_rules}

DO NOT deduct points for:
- Handwriting quality or neatness
- Grammar or spelling errors
- Organization or formatting of the answer
- Presentation style

Focus ONLY on the scientific accuracy and reasoning.

Please grade the student's response on a 0-10 scale with detailed feedback:
1. Score with justification{justification_hint}
2. What was done well
3. What was missing or incorrect
4. Specific suggestions for improvement

{closing}`

const conciseBody = `{intro}

RUBRIC: {rubric}
CONTEXT: {context}

{scoring_rules}

DO NOT deduct points for handwriting, grammar, spelling, or formatting. Only grade scientific accuracy and reasoning.

Provide your assessment in this EXACT format:
Score: X/10
Reasoning: {reasoning_hint}

{closing}`

// templates maps {mode, hasReference} to the prompt skeleton and token
// budget.
var templates = map[templateKey]promptTemplate{
	{verbose: true, hasReference: true}: {
		text:      strings.Replace(verboseBody, phRules, phReference+"\n\n"+phRules, 1),
		maxTokens: verboseMaxTokens,
	},
	{verbose: true, hasReference: false}: {
		text:      strings.Replace(verboseBody, phRules, phStudent+"\n\n"+phRules, 1),
		maxTokens: verboseMaxTokens,
	},
	{verbose: false, hasReference: true}: {
		text:      strings.Replace(conciseBody, phRules, phReference+"\n\n"+phRules, 1),
		maxTokens: conciseMaxTokens,
	},
	{verbose: false, hasReference: false}: {
		text:      strings.Replace(conciseBody, phRules, phStudent+"\n\n"+phRules, 1),
		maxTokens: conciseMaxTokens,
	},
}

// BuildPrompt renders the grading prompt for the given inputs and returns
// it with the max token budget of the selected template. Rubric and
// context are substituted verbatim after the policy text is laid out.
func BuildPrompt(policy Policy, rubric, context string, hasReference, verbose bool) (string, int) {
	tmpl := templates[templateKey{verbose: verbose, hasReference: hasReference}]

	text := policy.Concise
	rubricFallback, contextFallback := conciseRubricFallback, conciseContextFallback
	if verbose {
		text = policy.Verbose
		rubricFallback, contextFallback = verboseRubricFallback, verboseContextFallback
	}

	reasoningHint := text.ReasoningHint
	if reasoningHint == "" {
		reasoningHint = "[2-3 sentences explaining the score]"
	}

	layout := strings.NewReplacer(
		phIntro, text.Intro,
		phReference, text.ReferenceInstruction,
		phStudent, text.StudentInstruction,
		phRules, text.ScoringRules,
		phJustify, text.JustificationHint,
		phReasoning, reasoningHint,
		phClosing, text.Closing,
	).Replace(tmpl.text)

	prompt := strings.NewReplacer(
		phRubric, orDefault(rubric, rubricFallback),
		phContext, orDefault(context, contextFallback),
	).Replace(collapseBlankLines(layout))

	return prompt, tmpl.maxTokens
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// collapseBlankLines removes the empty paragraphs left by unset policy
// sections.
func collapseBlankLines(s string) string {
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(s)
}
