package models

import "strings"

const (
	ModeConcise = "concise"
	ModeVerbose = "verbose"
)

// GradeRequest represents request for grade endpoint
type GradeRequest struct {
	Rubric         string `json:"rubric" example:"2 points for the correct Km, 1 point for units"`
	Context        string `json:"context" example:"Accept answers within 5% of the reference value"`
	ReferenceImage string `json:"referenceImage" example:"data:image/jpeg;base64,/9j/4AAQSkZJRgABAQ..."`
	StudentImage   string `json:"studentImage" validate:"required" example:"data:image/jpeg;base64,/9j/4AAQSkZJRgABAQ..."`
	VerboseMode    bool   `json:"verboseMode" example:"false"`

	// GradingMode is what the bundled front end sends: fast, detailed.
	GradingMode string `json:"gradingMode,omitempty" example:"fast"`

	// media types declared by the data URL headers, filled by Normalize
	referenceMediaType string
	studentMediaType   string
}

// Normalize strips data URL headers from both images and checks that a
// student image is present.
func (r *GradeRequest) Normalize() error {
	r.ReferenceImage, r.referenceMediaType = StripDataURL(r.ReferenceImage)
	r.StudentImage, r.studentMediaType = StripDataURL(r.StudentImage)

	if strings.TrimSpace(r.StudentImage) == "" {
		return NewValidationError("Student answer image is required")
	}
	return nil
}

func (r *GradeRequest) HasReference() bool {
	return r.ReferenceImage != ""
}

func (r *GradeRequest) Verbose() bool {
	if r.VerboseMode {
		return true
	}
	return strings.EqualFold(r.GradingMode, "detailed")
}

func (r *GradeRequest) Mode() string {
	if r.Verbose() {
		return ModeVerbose
	}
	return ModeConcise
}

func (r *GradeRequest) ReferenceMediaType() string { return r.referenceMediaType }
func (r *GradeRequest) StudentMediaType() string   { return r.studentMediaType }

type GradeResponse struct {
	Feedback string `json:"feedback" example:"Score: 7/10\nReasoning: Correct method, wrong final value."`
	Mode     string `json:"mode" enums:"verbose,concise" example:"concise"`
}

type ErrorResponse struct {
	Error string `json:"error" example:"Student answer image is required"`
}

// StripDataURL drops a leading "data:<type>[;base64]," header and returns
// the payload with the declared media type. Input without the header, or
// without a comma, is returned unchanged.
func StripDataURL(s string) (string, string) {
	if !strings.HasPrefix(s, "data:") {
		return s, ""
	}
	header, payload, ok := strings.Cut(s, ",")
	if !ok {
		return s, ""
	}
	mediaType := strings.TrimPrefix(header, "data:")
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	return payload, mediaType
}
