package main

// Run the resume analysis pipeline on a local file without the HTTP server:
//   go run ./cmd/parseresume -resume cv.pdf -jd job.txt -role "Backend Engineer"

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"job-selector/internal/ai"
	"job-selector/internal/analysis"
	"job-selector/internal/bootstrap"
	"job-selector/internal/shared/config"
	"job-selector/internal/shared/telemetry"
)

const cliUserID = "cli"

func main() {
	telemetry.SetOutput(os.Stderr)
	cfg := config.Load()

	resumePath := flag.String("resume", "", "Path to resume file (pdf or docx)")
	jdPath := flag.String("jd", "", "Path to job description file (optional)")
	role := flag.String("role", "", "Requested role (defaults to the parsed job role, then Intern)")
	levels := flag.String("levels", "", "Comma separated role levels (defaults to Beginner,Intermediate,Advanced)")
	outPath := flag.String("out", "", "Path to write JSON output (optional)")
	provider := flag.String("provider", cfg.LLMProvider, "LLM provider")
	model := flag.String("model", cfg.LLMModel, "LLM model")
	flag.Parse()

	if strings.TrimSpace(*resumePath) == "" {
		exitErr("resume path is required")
	}
	data, err := os.ReadFile(*resumePath)
	if err != nil {
		exitErr(fmt.Sprintf("read resume: %v", err))
	}

	jobDescription := ""
	if strings.TrimSpace(*jdPath) != "" {
		jd, err := os.ReadFile(*jdPath)
		if err != nil {
			exitErr(fmt.Sprintf("read job description: %v", err))
		}
		jobDescription = string(jd)
	}

	cfg.LLMProvider = *provider
	cfg.LLMModel = *model
	ctx := context.Background()
	completer, err := bootstrap.BuildCompleter(ctx, cfg)
	if err != nil {
		exitErr(err.Error())
	}
	svc := analysis.NewService(ai.NewClient(completer), nil, nil)

	result, err := svc.Analyze(ctx, analysis.Request{
		UserID:         cliUserID,
		FileName:       filepath.Base(*resumePath),
		Data:           data,
		JobDescription: jobDescription,
		RequestedRole:  *role,
		RoleLevels:     strings.Split(*levels, ","),
	})
	if err != nil {
		exitErr(fmt.Sprintf("analyze: %v", err))
	}

	pretty, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}
	pretty = append(pretty, '\n')

	if *outPath != "" {
		if err := os.WriteFile(*outPath, pretty, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}
	if _, err := os.Stdout.Write(pretty); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
	if _, failed := result.Errors[analysis.StepParse]; failed {
		os.Exit(1)
	}
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
