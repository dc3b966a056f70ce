// Package ai runs the resume prompts against an LLM and parses their loosely
// formatted answers. Every operation makes a single attempt and returns the
// zero value together with an *Error when nothing usable came back.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"job-selector/internal/llm"
	"job-selector/internal/shared/metrics"
	"job-selector/internal/shared/telemetry"
)

// Role levels accepted by ResumeScore.
const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
)

// Operation names used in errors and logs.
const (
	OpParseResume    = "parse_resume"
	OpRecommendRoles = "recommend_roles"
	OpResumeScore    = "resume_score"
	OpATSScore       = "ats_score"
)

var digitRun = regexp.MustCompile(`\d+`)

// Client issues the four resume prompts through an llm.Completer.
type Client struct {
	LLM llm.Completer
}

// NewClient wraps completer.
func NewClient(completer llm.Completer) *Client {
	return &Client{LLM: completer}
}

// ParseResume extracts the fixed schema from raw resume text. The response
// must be exactly one JSON object once markdown fences are removed.
func (c *Client) ParseResume(ctx context.Context, text string) (ExtractedResume, error) {
	out, err := c.complete(ctx, OpParseResume, fmt.Sprintf(parseResumePrompt, text))
	if err != nil {
		return ExtractedResume{}, err
	}
	body := stripFences(out)
	if !strings.HasPrefix(body, "{") {
		return ExtractedResume{}, c.fail(OpParseResume, KindMalformed, fmt.Errorf("response is not a json object"))
	}
	var parsed ExtractedResume
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return ExtractedResume{}, c.fail(OpParseResume, KindMalformed, err)
	}
	if parsed.IsEmpty() {
		return ExtractedResume{}, c.fail(OpParseResume, KindMalformed, errors.New("no resume fields extracted"))
	}
	return parsed, nil
}

// RecommendRoles asks for 3-5 roles; the first JSON array in the response is used.
func (c *Client) RecommendRoles(ctx context.Context, data ExtractedResume, requestedRole string) ([]RoleRecommendation, error) {
	prompt := fmt.Sprintf(recommendRolesPrompt, mustJSON(data), orNone(requestedRole))
	out, err := c.complete(ctx, OpRecommendRoles, prompt)
	if err != nil {
		return []RoleRecommendation{}, err
	}
	raw, err := FirstJSONArray(out)
	if err != nil {
		return []RoleRecommendation{}, c.fail(OpRecommendRoles, scanKind(err), err)
	}
	var roles []RoleRecommendation
	if err := json.Unmarshal(raw, &roles); err != nil {
		return []RoleRecommendation{}, c.fail(OpRecommendRoles, KindMalformed, err)
	}
	if roles == nil {
		roles = []RoleRecommendation{}
	}
	return roles, nil
}

// ResumeScore scores the ten categories for roleLevel (Beginner when empty).
func (c *Client) ResumeScore(ctx context.Context, data ExtractedResume, jobDescription, roleLevel string) (ScoreReport, error) {
	if strings.TrimSpace(roleLevel) == "" {
		roleLevel = LevelBeginner
	}
	prompt := fmt.Sprintf(resumeScorePrompt, mustJSON(data), jobDescription, roleLevel)
	out, err := c.complete(ctx, OpResumeScore, prompt)
	if err != nil {
		return ScoreReport{}, err
	}
	raw, err := FirstJSONObject(out)
	if err != nil {
		return ScoreReport{}, c.fail(OpResumeScore, scanKind(err), err)
	}
	var report ScoreReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return ScoreReport{}, c.fail(OpResumeScore, KindMalformed, err)
	}
	if report.IsEmpty() {
		return ScoreReport{}, c.fail(OpResumeScore, KindMalformed, errors.New("no score categories in response"))
	}
	return report, nil
}

// ATSScore returns the leftmost integer in the response, clamped to [0,100].
func (c *Client) ATSScore(ctx context.Context, data ExtractedResume, jobDescription, requestedRole string) (int, error) {
	prompt := fmt.Sprintf(atsScorePrompt, mustJSON(data), orNone(requestedRole), jobDescription)
	out, err := c.complete(ctx, OpATSScore, prompt)
	if err != nil {
		return 0, err
	}
	match := digitRun.FindString(out)
	if match == "" {
		return 0, c.fail(OpATSScore, KindNoMatch, fmt.Errorf("no digits in %q", truncate(out, 80)))
	}
	score, err := strconv.Atoi(match)
	if err != nil {
		// only overflow reaches here
		score = 100
	}
	return clamp(score, 0, 100), nil
}

func (c *Client) complete(ctx context.Context, op, prompt string) (string, error) {
	if c == nil || c.LLM == nil {
		return "", &Error{Op: op, Kind: KindProvider, Err: errors.New("no llm configured")}
	}
	out, err := c.LLM.Complete(llm.WithStep(ctx, op), prompt)
	if err != nil {
		telemetry.Warn("ai.provider_failed", map[string]any{"op": op, "error": err})
		return "", &Error{Op: op, Kind: KindProvider, Err: err}
	}
	return out, nil
}

func (c *Client) fail(op string, kind Kind, err error) error {
	metrics.IncLLMFailure()
	telemetry.Warn("ai.response_unusable", map[string]any{"op": op, "kind": string(kind), "error": err})
	return &Error{Op: op, Kind: kind, Err: err}
}

func scanKind(err error) Kind {
	if errors.Is(err, ErrNoJSON) {
		return KindNoMatch
	}
	return KindMalformed
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
