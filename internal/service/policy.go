package service

import (
	"fmt"
	"sort"

	"github.com/kdduha/exam-grader/backend/internal/config"
)

const (
	PresetBaseline     = "baseline"
	PresetReferenceCap = "reference-cap"
	PresetGraduated    = "graduated"
	PresetRubricFirst  = "rubric-first"
)

// Policy is a named scoring policy: the wording slotted into the prompt
// templates plus the request options that went with it.
type Policy struct {
	Name        string
	Labeled     bool
	Temperature *float64

	Verbose PolicyText
	Concise PolicyText
}

// PolicyText fills the template placeholders for one mode.
type PolicyText struct {
	Intro                string
	ReferenceInstruction string
	StudentInstruction   string
	ScoringRules         string
	JustificationHint    string
	ReasoningHint        string
	Closing              string
}

func temperature(v float64) *float64 { return &v }

var presets = map[string]Policy{
	PresetBaseline: {
		Name:    PresetBaseline,
		Labeled: false,
		Verbose: PolicyText{
			Intro: "You are grading a biochemistry exam question. Here is the context:",
			ReferenceInstruction: `The first image shows the REFERENCE ANSWER (what a perfect response looks like).
The second image shows the STUDENT'S ANSWER.`,
			StudentInstruction: "The image shows the STUDENT'S ANSWER. Grade based on the rubric and context provided.",
			Closing:            "Be fair but rigorous in your assessment.",
		},
		Concise: PolicyText{
			Intro: "You are grading a biochemistry exam question. Analyze carefully against the rubric.",
			ReferenceInstruction: `Image 1: REFERENCE ANSWER (correct response)
Image 2: STUDENT'S ANSWER`,
			StudentInstruction: "The image shows the STUDENT'S ANSWER",
			ReasoningHint:      "[2-3 sentences explaining the score - what's correct, what's missing]",
			Closing:            "Be accurate and fair in your scoring.",
		},
	},
	PresetReferenceCap: {
		Name:        PresetReferenceCap,
		Labeled:     true,
		Temperature: temperature(0.3),
		Verbose: PolicyText{
			Intro: "You are grading a biochemistry exam question with STRICT scoring standards.",
			ReferenceInstruction: `The first image shows the REFERENCE ANSWER (the correct solution).
The second image shows the STUDENT'S ANSWER (the response to grade).

CRITICAL INSTRUCTION: You MUST compare the student's answer (Image 2) directly against the reference answer (Image 1). Specifically check:
- Does the student's FINAL ANSWER match the reference's final answer?
- Does the student's methodology match the reference approach?
- Are the key steps from the reference present in the student's work?

If the final answer does NOT match the reference, the maximum possible score is 5/10.`,
			StudentInstruction: "The image shows the STUDENT'S ANSWER. Grade based on the rubric and context provided.",
			ScoringRules: `SCORING RULES:
1. Correct final answer with sound reasoning earns the upper range (8-10/10)
2. A final answer that disagrees with the reference scores at most 5/10
3. Partial credit below that cap reflects how much of the method is correct`,
			JustificationHint: " (explicitly state if final answer matches reference when applicable)",
			Closing:           "Be rigorous and consistent. Do NOT inflate scores.",
		},
		Concise: PolicyText{
			Intro: "Grade this biochemistry question strictly.",
			ReferenceInstruction: `Image 1: REFERENCE ANSWER (correct solution)
Image 2: STUDENT'S ANSWER (to be graded)

COMPARE student's Image 2 against reference Image 1. Student's final answer MUST match reference to score above 5/10.`,
			StudentInstruction: "The image shows the STUDENT'S ANSWER",
			ReasoningHint:      "[When reference provided: Does final answer match reference? Then explain the score in 2-3 sentences.]",
			Closing:            "Be strict and consistent.",
		},
	},
	PresetGraduated: {
		Name:        PresetGraduated,
		Labeled:     true,
		Temperature: temperature(0),
		Verbose: PolicyText{
			Intro: "You are grading a biochemistry exam question with STRICT scoring standards.",
			ReferenceInstruction: `The first image shows the REFERENCE ANSWER (the correct solution).
The second image shows the STUDENT'S ANSWER (the response to grade).

CRITICAL INSTRUCTION: You MUST compare the student's answer (Image 2) directly against the reference answer (Image 1). Specifically check:
- Does the student's FINAL ANSWER match the reference's final answer?
- Does the student's methodology match the reference approach?
- Are the key steps from the reference present in the student's work?`,
			StudentInstruction: "The image shows the STUDENT'S ANSWER. Grade based on the rubric and context provided.",
			ScoringRules: `SCORING RULES (APPLY STRICTLY):
1. Correct final answer required for 8-10/10 range
2. Correct final answer + correct reasoning = 9-10/10
3. Correct final answer + minor errors in reasoning = 8/10
4. Wrong final answer + near-perfect methodology = MAX 7/10
5. Wrong final answer + good methodology = MAX 5-6/10
6. Wrong final answer + flawed methodology = MAX 3-4/10
7. Wrong final answer + wrong method = 0-2/10

A "wrong final answer" means:
- Incorrect numerical value (e.g., -3 when correct answer is -1)
- Incorrect compound/term (e.g., acrylamide when correct answer is SDS)
- Missing required components of a multi-part answer
- ANY discrepancy from the reference answer (when reference is provided)

Partial credit is ONLY awarded for:
- Correct methodology applied incorrectly
- Minor calculation errors with correct approach
- Incomplete but accurate partial solutions`,
			JustificationHint: " (explicitly state if final answer matches reference when applicable)",
			Closing:           "Be rigorous and consistent. Do NOT inflate scores.",
		},
		Concise: PolicyText{
			Intro: "Grade this biochemistry question strictly.",
			ReferenceInstruction: `Image 1: REFERENCE ANSWER (correct solution)
Image 2: STUDENT'S ANSWER (to be graded)

COMPARE student's Image 2 against reference Image 1. Student's final answer MUST match reference to score above 7/10.`,
			StudentInstruction: "The image shows the STUDENT'S ANSWER",
			ScoringRules: `SCORING RULES:
- Correct final answer required for 8-10/10
- Correct answer + correct work = 9-10/10
- Correct answer + minor errors = 8/10
- Wrong answer + near-perfect method = MAX 7/10
- Wrong answer + good method = MAX 5-6/10
- Wrong answer + flawed method = MAX 3-4/10
- Wrong answer + wrong method = 0-2/10`,
			ReasoningHint: "[When reference provided: Does final answer match reference? Then evaluate methodology and justify score using rules above.]",
			Closing:       "Be strict and consistent.",
		},
	},
	PresetRubricFirst: {
		Name:        PresetRubricFirst,
		Labeled:     true,
		Temperature: temperature(0),
		Verbose: PolicyText{
			Intro: "You are grading a biochemistry exam question. The instructor's rubric and context are the authority on scoring.",
			ReferenceInstruction: `The first image shows the REFERENCE ANSWER (the correct solution).
The second image shows the STUDENT'S ANSWER (the response to grade).

Compare the student's final answer and key steps against the reference answer.`,
			StudentInstruction: "The image shows the STUDENT'S ANSWER. Grade based on the rubric and context provided.",
			ScoringRules: `SCORING RULES:
1. If the rubric states explicit point values or rules, apply them EXACTLY as written, even where you would judge differently.
2. If the context states a partial-credit policy, follow it verbatim.
3. Read every numeric value and unit carefully before judging it. Check the unit scale (e.g., µM vs mM, nm vs µm); a correct number with the wrong scale is a wrong value.
4. Distinguish a FACTUALLY WRONG answer (incorrect value, term or conclusion) from an INCOMPLETE answer that uses a correct approach. Incomplete-but-correct work earns partial credit; factually wrong work does not earn credit for that part.
5. Only when the rubric and context are silent, use your own judgment.`,
			JustificationHint: " (cite the rubric rule applied for each deduction)",
			Closing:           "Be consistent with the rubric. Do NOT inflate scores.",
		},
		Concise: PolicyText{
			Intro: "Grade this biochemistry question. The rubric and context override your own judgment.",
			ReferenceInstruction: `Image 1: REFERENCE ANSWER (correct solution)
Image 2: STUDENT'S ANSWER (to be graded)

COMPARE student's Image 2 against reference Image 1.`,
			StudentInstruction: "The image shows the STUDENT'S ANSWER",
			ScoringRules: `SCORING RULES:
- Apply point rules stated in the rubric exactly as written
- Follow any partial-credit policy stated in the context verbatim
- Read numbers and units carefully (µM vs mM is a wrong value, not a typo)
- Factually wrong = no credit for that part; incomplete but correct approach = partial credit`,
			ReasoningHint: "[Name the rubric rule applied, then whether the answer is wrong or incomplete.]",
			Closing:       "Be strict and consistent.",
		},
	},
}

// Presets lists the known preset names.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupPolicy returns a copy of the named preset.
func LookupPolicy(name string) (Policy, error) {
	p, ok := presets[name]
	if !ok {
		return Policy{}, fmt.Errorf("unknown grading preset %q, expected one of %v", name, Presets())
	}
	if p.Temperature != nil {
		p.Temperature = temperature(*p.Temperature)
	}
	return p, nil
}

// ResolvePolicy applies the env overrides on top of the configured preset.
func ResolvePolicy(cfg config.GradingConfig) (Policy, error) {
	p, err := LookupPolicy(cfg.Preset)
	if err != nil {
		return Policy{}, err
	}

	if cfg.Temperature != nil {
		p.Temperature = temperature(*cfg.Temperature)
	}
	if cfg.OmitTemperature {
		p.Temperature = nil
	}
	if cfg.LabelImages != nil {
		p.Labeled = *cfg.LabelImages
	}
	return p, nil
}
