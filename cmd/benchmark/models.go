package main

import "time"

type GradeRequest struct {
	Rubric         string `json:"rubric"`
	Context        string `json:"context"`
	ReferenceImage string `json:"referenceImage,omitempty"`
	StudentImage   string `json:"studentImage"`
	VerboseMode    bool   `json:"verboseMode"`
}

type GradeResponse struct {
	Feedback string `json:"feedback"`
	Mode     string `json:"mode"`
	Error    string `json:"error"`
}

type BenchResult struct {
	File     string
	Mode     string
	Duration time.Duration
	Chars    int
	Err      error
	Size     int64
}

type Agg struct {
	Count      int
	Total      time.Duration
	TotalBytes int64
}
