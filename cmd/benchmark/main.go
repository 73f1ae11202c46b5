package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/phuslu/log"
	"github.com/urfave/cli/v2"
)

var modes = []bool{false, true}

type benchConfig struct {
	endpoint  string
	reference string
	rubric    string
}

func main() {
	app := &cli.App{
		Name:  "benchmark",
		Usage: "Grade every answer sheet in a folder in both modes and print timings",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "endpoint", Value: "http://localhost:8080/grade", Usage: "grade endpoint"},
			&cli.StringFlag{Name: "data", Value: filepath.Join(".", "data"), Usage: "folder with student answer images"},
			&cli.StringFlag{Name: "reference", Usage: "optional reference answer image sent with every request"},
			&cli.StringFlag{Name: "rubric", Usage: "rubric text sent with every request"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("benchmark failed")
	}
}

func run(c *cli.Context) error {
	ctx := c.Context
	cfg := benchConfig{endpoint: c.String("endpoint"), rubric: c.String("rubric")}

	if path := c.String("reference"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read reference: %w", err)
		}
		cfg.reference = dataURL(raw)
	}

	dataDir := c.String("data")
	answers, err := os.ReadDir(dataDir)
	if err != nil {
		return fmt.Errorf("read data dir: %w", err)
	}

	var results []BenchResult
	for _, verbose := range modes {
		for _, answer := range answers {
			if answer.IsDir() {
				continue
			}
			res := benchmarkAnswer(ctx, cfg, filepath.Join(dataDir, answer.Name()), verbose)

			if res.Err != nil {
				log.Error().Str("file", res.File).Err(res.Err).Msg("grade failed")
			} else {
				log.Info().Str("mode", res.Mode).Str("file", res.File).Dur("took", res.Duration).Msg("graded")
			}

			results = append(results, res)
		}
	}

	printMarkdown(results)
	return nil
}

func benchmarkAnswer(ctx context.Context, cfg benchConfig, filePath string, verbose bool) BenchResult {
	start := time.Now()

	fileRaw, err := os.ReadFile(filePath)
	if err != nil {
		return BenchResult{File: filePath, Err: err}
	}

	req := GradeRequest{
		Rubric:         cfg.rubric,
		ReferenceImage: cfg.reference,
		StudentImage:   dataURL(fileRaw),
		VerboseMode:    verbose,
	}

	resp, err := sendGrade(ctx, cfg.endpoint, req)

	res := BenchResult{
		File:     filepath.Base(filePath),
		Duration: time.Since(start),
		Err:      err,
		Size:     int64(len(fileRaw)),
	}
	if resp != nil {
		res.Mode = resp.Mode
		res.Chars = len(resp.Feedback)
	}
	return res
}

func dataURL(raw []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", http.DetectContentType(raw), base64.StdEncoding.EncodeToString(raw))
}

func sendGrade(ctx context.Context, endpoint string, req GradeRequest) (*GradeResponse, error) {
	body, err := sonic.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal req: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var out GradeResponse
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, out.Error)
	}
	return &out, nil
}

func aggregate(results []BenchResult) map[string]Agg {
	m := map[string]Agg{}
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		a := m[r.Mode]
		a.Count++
		a.TotalBytes += r.Size
		a.Total += r.Duration
		m[r.Mode] = a
	}
	return m
}

func printMarkdown(results []BenchResult) {
	fmt.Println("\n## Benchmark Results")
	fmt.Println()
	fmt.Println("| Mode | Requests | Avg Time | Total Time | Avg File Size |")
	fmt.Println("|------|----------|----------|------------|---------------|")

	agg := aggregate(results)
	keys := make([]string, 0, len(agg))
	for mode := range agg {
		keys = append(keys, mode)
	}
	sort.Strings(keys)

	var (
		totalCount    int
		totalDuration time.Duration
		totalBytes    int64
	)

	for _, mode := range keys {
		a := agg[mode]
		avg := a.Total / time.Duration(a.Count)
		avgSize := a.TotalBytes / int64(a.Count)
		fmt.Printf("| %s | %d | %v | %v | %s |\n",
			mode,
			a.Count,
			avg.Round(time.Millisecond),
			a.Total.Round(time.Millisecond),
			humanBytes(avgSize),
		)
		totalCount += a.Count
		totalDuration += a.Total
		totalBytes += a.TotalBytes
	}

	if totalCount > 0 {
		mean := totalDuration / time.Duration(totalCount)
		avgSize := totalBytes / int64(totalCount)
		fmt.Printf("| **ALL** | %d | %v | %v | %s |\n",
			totalCount,
			mean.Round(time.Millisecond),
			totalDuration.Round(time.Millisecond),
			humanBytes(avgSize),
		)
	}
}

func humanBytes(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)
	switch {
	case size >= GB:
		return fmt.Sprintf("%.2f GB", float64(size)/GB)
	case size >= MB:
		return fmt.Sprintf("%.2f MB", float64(size)/MB)
	case size >= KB:
		return fmt.Sprintf("%.2f KB", float64(size)/KB)
	default:
		return fmt.Sprintf("%d B", size)
	}
}
