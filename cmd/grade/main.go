package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/bytedance/sonic"
	"github.com/kdduha/exam-grader/backend/internal/config"
	"github.com/kdduha/exam-grader/backend/internal/llm"
	"github.com/kdduha/exam-grader/backend/internal/logging"
	"github.com/kdduha/exam-grader/backend/internal/models"
	"github.com/kdduha/exam-grader/backend/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/phuslu/log"
	"github.com/urfave/cli/v2"
	"github.com/viant/afs"
	_ "github.com/viant/afsc/s3"
)

var fs = afs.New()

var gradeCommand = &cli.Command{
	Name:  "grade",
	Usage: "Grade one answer image from a local path or a remote URL (s3://...)",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "student", Aliases: []string{"s"}, Usage: "student answer image or pdf", Required: true},
		&cli.StringFlag{Name: "reference", Aliases: []string{"r"}, Usage: "reference answer image or pdf"},
		&cli.StringFlag{Name: "rubric", Usage: "rubric text, or @path to read it from a file"},
		&cli.StringFlag{Name: "context", Usage: "context text, or @path to read it from a file"},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "detailed four part feedback"},
		&cli.StringFlag{Name: "preset", Usage: "scoring policy preset, overrides GRADING_PRESET"},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "write the JSON result to this URL instead of stdout"},
	},
	Action: runGrade,
}

func main() {
	app := &cli.App{
		Name:     "grade",
		Usage:    "Grade handwritten exam answers from the command line",
		Commands: []*cli.Command{gradeCommand},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("grade failed")
	}
}

func runGrade(c *cli.Context) error {
	ctx := c.Context

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if preset := c.String("preset"); preset != "" {
		cfg.Grading.Preset = preset
	}

	policy, err := service.ResolvePolicy(cfg.Grading)
	if err != nil {
		return err
	}
	dispatcher, err := llm.New(cfg.Model)
	if err != nil {
		return err
	}

	req := &models.GradeRequest{VerboseMode: c.Bool("verbose")}
	if req.StudentImage, err = loadImage(ctx, c.String("student")); err != nil {
		return err
	}
	if req.ReferenceImage, err = loadImage(ctx, c.String("reference")); err != nil {
		return err
	}
	if req.Rubric, err = loadText(ctx, c.String("rubric")); err != nil {
		return err
	}
	if req.Context, err = loadText(ctx, c.String("context")); err != nil {
		return err
	}

	svc := service.NewGradeService(logging.New(cfg.LogLevel), dispatcher, policy, cfg.Model.Timeout)
	resp, err := svc.Grade(ctx, req)
	if err != nil {
		return err
	}

	return writeResult(ctx, c.App.Writer, c.String("output"), resp)
}

// loadImage downloads the file and returns it as a data URL so the media
// type survives into the pipeline.
func loadImage(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", nil
	}
	data, err := fs.DownloadWithURL(ctx, url)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", url, err)
	}
	mediaType := http.DetectContentType(data)
	return fmt.Sprintf("data:%s;base64,%s", mediaType, base64.StdEncoding.EncodeToString(data)), nil
}

func loadText(ctx context.Context, v string) (string, error) {
	if len(v) < 2 || v[0] != '@' {
		return v, nil
	}
	data, err := fs.DownloadWithURL(ctx, v[1:])
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", v[1:], err)
	}
	return string(data), nil
}

func writeResult(ctx context.Context, stdout io.Writer, output string, resp *models.GradeResponse) error {
	if output == "" && isTerminal(stdout) {
		_, err := fmt.Fprintf(stdout, "[%s]\n\n%s\n", resp.Mode, resp.Feedback)
		return err
	}

	data, err := sonic.ConfigStd.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode: %w", err)
	}

	if output == "" {
		_, err = fmt.Fprintln(stdout, string(data))
		return err
	}
	return fs.Upload(ctx, output, 0o644, bytes.NewReader(data))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
