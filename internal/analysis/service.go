// Package analysis runs an uploaded resume through extraction and the AI
// prompts, collecting every step's outcome into one result.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"job-selector/internal/ai"
	"job-selector/internal/pdftext"
	"job-selector/internal/resumes"
	"job-selector/internal/shared/metrics"
	"job-selector/internal/shared/storage/object"
	"job-selector/internal/shared/telemetry"
	"job-selector/internal/shared/util"
)

// Step names used as keys of Result.Errors.
const (
	StepStore     = "store"
	StepExtract   = "extract"
	StepParse     = "parse_resume"
	StepRecommend = "recommend_roles"
	StepScore     = "resume_score"
	StepATS       = "ats_score"
	StepSave      = "save"
)

// DefaultRequestedRole is used when neither the caller nor the resume names a role.
const DefaultRequestedRole = "Intern"

var (
	ErrInvalidInput    = errors.New("invalid analysis input")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// Analyzer is the subset of ai.Client the pipeline uses.
type Analyzer interface {
	ParseResume(ctx context.Context, text string) (ai.ExtractedResume, error)
	RecommendRoles(ctx context.Context, data ai.ExtractedResume, requestedRole string) ([]ai.RoleRecommendation, error)
	ResumeScore(ctx context.Context, data ai.ExtractedResume, jobDescription, roleLevel string) (ai.ScoreReport, error)
	ATSScore(ctx context.Context, data ai.ExtractedResume, jobDescription, requestedRole string) (int, error)
}

// ResumeSaver stores analysed resumes.
type ResumeSaver interface {
	Create(ctx context.Context, userID string, payload map[string]any) (resumes.Resume, error)
}

type Request struct {
	UserID         string
	FileName       string
	Data           []byte
	JobDescription string
	RequestedRole  string
	RoleLevels     []string
	Save           bool
}

type Result struct {
	Upload          *object.Object            `json:"upload,omitempty"`
	TextLength      int                       `json:"textLength"`
	Resume          *ai.ExtractedResume       `json:"resume,omitempty"`
	RequestedRole   string                    `json:"requestedRole,omitempty"`
	Recommendations []ai.RoleRecommendation   `json:"recommendations"`
	Scores          map[string]ai.ScoreReport `json:"scores"`
	ATSScore        *int                      `json:"atsScore"`
	ResumeID        string                    `json:"resumeId,omitempty"`
	Errors          map[string]string         `json:"errors,omitempty"`
}

func (r *Result) fail(step string, err error) {
	if r.Errors == nil {
		r.Errors = map[string]string{}
	}
	r.Errors[step] = err.Error()
}

// FailedSteps lists the steps that recorded an error.
func (r *Result) FailedSteps() []string {
	steps := make([]string, 0, len(r.Errors))
	for step := range r.Errors {
		steps = append(steps, step)
	}
	sort.Strings(steps)
	return steps
}

type Service struct {
	AI      Analyzer
	Store   object.Store
	Resumes ResumeSaver
}

func NewService(analyzer Analyzer, store object.Store, saver ResumeSaver) *Service {
	return &Service{AI: analyzer, Store: store, Resumes: saver}
}

// Analyze runs the steps in order. Upload and AI failures are recorded in
// Result.Errors; only invalid input returns an error.
func (s *Service) Analyze(ctx context.Context, req Request) (Result, error) {
	started := time.Now()
	if strings.TrimSpace(req.UserID) == "" {
		return Result{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if len(req.Data) == 0 {
		return Result{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}
	fileName, err := util.SanitizeFileName(req.FileName)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	head := req.Data
	if len(head) > object.SniffSize {
		head = head[:object.SniffSize]
	}
	mimeType := object.DetectMimeType(head, fileName)
	if !pdftext.Supported(mimeType, fileName) {
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}

	result := Result{Recommendations: []ai.RoleRecommendation{}, Scores: map[string]ai.ScoreReport{}}

	if s.Store != nil {
		obj, err := s.Store.Save(ctx, req.UserID, fileName, bytes.NewReader(req.Data))
		if err != nil {
			result.fail(StepStore, err)
		} else {
			result.Upload = &obj
		}
	}

	text, err := pdftext.ExtractBytes(req.Data, mimeType, fileName)
	if err != nil {
		result.fail(StepExtract, err)
		return s.finish(req, result, started), nil
	}
	result.TextLength = len(text)
	if strings.TrimSpace(text) == "" {
		result.fail(StepExtract, errors.New("no extractable text"))
		return s.finish(req, result, started), nil
	}

	parsed, err := s.AI.ParseResume(ctx, text)
	if err == nil && parsed.IsEmpty() {
		err = errors.New("no resume fields extracted")
	}
	if err != nil {
		result.fail(StepParse, err)
		return s.finish(req, result, started), nil
	}
	result.Resume = &parsed

	requested := strings.TrimSpace(req.RequestedRole)
	if requested == "" {
		requested = parsed.Role()
	}
	if requested == "" {
		requested = DefaultRequestedRole
	}
	result.RequestedRole = requested

	if recs, err := s.AI.RecommendRoles(ctx, parsed, requested); err != nil {
		result.fail(StepRecommend, err)
	} else {
		result.Recommendations = recs
	}

	// Without a job description the requested role stands in for it.
	jd := strings.TrimSpace(req.JobDescription)
	if jd == "" {
		jd = requested
	}

	for _, level := range roleLevels(req.RoleLevels) {
		report, err := s.AI.ResumeScore(ctx, parsed, jd, level)
		if err != nil {
			result.fail(StepScore+":"+level, err)
			continue
		}
		result.Scores[level] = report
	}

	if score, err := s.AI.ATSScore(ctx, parsed, jd, requested); err != nil {
		result.fail(StepATS, err)
	} else {
		result.ATSScore = &score
	}

	if req.Save && s.Resumes != nil {
		saved, err := s.Resumes.Create(ctx, req.UserID, savePayload(fileName, result))
		if err != nil {
			result.fail(StepSave, err)
		} else {
			result.ResumeID = saved.ResumeID
		}
	}

	return s.finish(req, result, started), nil
}

func (s *Service) finish(req Request, result Result, started time.Time) Result {
	metrics.IncResumesAnalyzed()
	fields := map[string]any{
		"user_id":     req.UserID,
		"text_length": result.TextLength,
		"duration_ms": time.Since(started).Milliseconds(),
	}
	if result.ResumeID != "" {
		fields["resume_id"] = result.ResumeID
	}
	if len(result.Errors) > 0 {
		fields["failed_steps"] = strings.Join(result.FailedSteps(), ",")
		telemetry.Warn("analysis.complete", fields)
	} else {
		telemetry.Info("analysis.complete", fields)
	}
	return result
}

func roleLevels(levels []string) []string {
	out := make([]string, 0, len(levels))
	seen := map[string]bool{}
	for _, level := range levels {
		level = strings.TrimSpace(level)
		if level == "" || seen[level] {
			continue
		}
		seen[level] = true
		out = append(out, level)
	}
	if len(out) == 0 {
		return []string{ai.LevelBeginner, ai.LevelIntermediate, ai.LevelAdvanced}
	}
	return out
}

// savePayload flattens the parsed resume and its scores into plain JSON values
// so every store backend keeps the same shape.
func savePayload(fileName string, result Result) map[string]any {
	payload := result.Resume.Fields()
	payload["source_file"] = fileName
	payload["requested_role"] = result.RequestedRole
	payload["recommended_roles"] = plain(result.Recommendations)
	payload["scores"] = plain(result.Scores)
	if result.ATSScore != nil {
		payload["ats_score"] = *result.ATSScore
	}
	if result.Upload != nil {
		payload["storage_key"] = result.Upload.Key
	}
	return payload
}

func plain(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
