package service

const (
	conciseMaxTokens = 250
	verboseMaxTokens = 1024
)

const (
	referenceLabel    = "=== REFERENCE ANSWER (CORRECT SOLUTION) - IMAGE BELOW ==="
	referenceEndLabel = "=== END OF REFERENCE ANSWER ===\n\n"
	studentLabel      = "=== STUDENT'S ANSWER (TO BE GRADED) - IMAGE BELOW ==="
	studentEndLabel   = "=== END OF STUDENT'S ANSWER ===\n\n"
)

const (
	verboseRubricFallback  = "Use standard biochemistry grading criteria"
	verboseContextFallback = "None provided"
	conciseRubricFallback  = "Standard biochemistry criteria"
	conciseContextFallback = "None"
)

// placeholders understood by the prompt templates
const (
	phIntro     = "{intro}"
	phRubric    = "{rubric}"
	phContext   = "{context}"
	phReference = "{reference_instruction}"
	phStudent   = "{student_instruction}"
	phRules     = "{scoring_rules}"
	phJustify   = "{justification_hint}"
	phReasoning = "{reasoning_hint}"
	phClosing   = "{closing}"
)

const (
	outcomeOK    = "ok"
	outcomeCache = "cache"
)
