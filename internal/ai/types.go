package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ExtractedResume is the fixed schema the parser asks the model to fill.
type ExtractedResume struct {
	Name            *string        `json:"name"`
	Email           *string        `json:"email"`
	Phone           *string        `json:"phone"`
	LinkedIn        *string        `json:"linkedin"`
	GitHub          *string        `json:"github"`
	DateOfBirth     *string        `json:"date_of_birth"`
	JobRole         *string        `json:"job_role"`
	TechnicalSkills []string       `json:"technical_skills"`
	SoftSkills      []string       `json:"soft_skills"`
	Education       []string       `json:"education"`
	Experience      []string       `json:"experience"`
	ExtraFields     map[string]any `json:"extra_fields"`
}

// IsEmpty reports whether nothing was extracted. An empty result means parsing failed.
func (r ExtractedResume) IsEmpty() bool {
	for _, s := range []*string{r.Name, r.Email, r.Phone, r.LinkedIn, r.GitHub, r.DateOfBirth, r.JobRole} {
		if s != nil {
			return false
		}
	}
	return len(r.TechnicalSkills) == 0 && len(r.SoftSkills) == 0 &&
		len(r.Education) == 0 && len(r.Experience) == 0 && len(r.ExtraFields) == 0
}

// Role returns the parsed job role, or "" when absent.
func (r ExtractedResume) Role() string {
	if r.JobRole == nil {
		return ""
	}
	return strings.TrimSpace(*r.JobRole)
}

// Fields flattens the resume into a document suitable for the resume store.
func (r ExtractedResume) Fields() map[string]any {
	out := map[string]any{
		"technical_skills": nonNil(r.TechnicalSkills),
		"soft_skills":      nonNil(r.SoftSkills),
		"education":        nonNil(r.Education),
		"experience":       nonNil(r.Experience),
	}
	for key, val := range map[string]*string{
		"name": r.Name, "email": r.Email, "phone": r.Phone, "linkedin": r.LinkedIn,
		"github": r.GitHub, "date_of_birth": r.DateOfBirth, "job_role": r.JobRole,
	} {
		if val != nil {
			out[key] = *val
		} else {
			out[key] = nil
		}
	}
	extra := r.ExtraFields
	if extra == nil {
		extra = map[string]any{}
	}
	out["extra_fields"] = extra
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var schemaStringFields = map[string]func(*ExtractedResume) **string{
	"name":          func(r *ExtractedResume) **string { return &r.Name },
	"email":         func(r *ExtractedResume) **string { return &r.Email },
	"phone":         func(r *ExtractedResume) **string { return &r.Phone },
	"linkedin":      func(r *ExtractedResume) **string { return &r.LinkedIn },
	"github":        func(r *ExtractedResume) **string { return &r.GitHub },
	"date_of_birth": func(r *ExtractedResume) **string { return &r.DateOfBirth },
	"job_role":      func(r *ExtractedResume) **string { return &r.JobRole },
}

var schemaListFields = map[string]func(*ExtractedResume) *[]string{
	"technical_skills": func(r *ExtractedResume) *[]string { return &r.TechnicalSkills },
	"soft_skills":      func(r *ExtractedResume) *[]string { return &r.SoftSkills },
	"education":        func(r *ExtractedResume) *[]string { return &r.Education },
	"experience":       func(r *ExtractedResume) *[]string { return &r.Experience },
}

// UnmarshalJSON accepts loosely typed model output: numbers where strings are
// expected, a single string where a list is expected, and unknown top-level
// keys, which are folded into ExtraFields.
func (r *ExtractedResume) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := ExtractedResume{}
	for key, val := range raw {
		if field, ok := schemaStringFields[key]; ok {
			*field(&out) = scalarString(val)
			continue
		}
		if field, ok := schemaListFields[key]; ok {
			*field(&out) = stringList(val)
			continue
		}
		if key == "extra_fields" {
			if m, ok := val.(map[string]any); ok {
				if out.ExtraFields == nil {
					out.ExtraFields = map[string]any{}
				}
				for k, v := range m {
					out.ExtraFields[k] = v
				}
			}
			continue
		}
		if val == nil {
			continue
		}
		if out.ExtraFields == nil {
			out.ExtraFields = map[string]any{}
		}
		if _, exists := out.ExtraFields[key]; !exists {
			out.ExtraFields[key] = val
		}
	}
	*r = out
	return nil
}

func scalarString(v any) *string {
	var s string
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		s = strings.TrimSpace(t)
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return nil
		}
		s = string(b)
	}
	if s == "" {
		return nil
	}
	return &s
}

func stringList(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := scalarString(item); s != nil {
				out = append(out, *s)
			}
		}
		return out
	default:
		if s := scalarString(t); s != nil {
			return []string{*s}
		}
		return nil
	}
}

// RoleRecommendation is one suggested role and whether it matches the requested one.
type RoleRecommendation struct {
	Role               string `json:"role"`
	MatchRequestedRole string `json:"match_requested_role"`
}

// UnmarshalJSON normalizes match_requested_role to "yes" or "no".
// A bare string element is read as a role with no match.
func (r *RoleRecommendation) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		if name = strings.TrimSpace(name); name == "" {
			return fmt.Errorf("role recommendation without role")
		}
		r.Role, r.MatchRequestedRole = name, "no"
		return nil
	}
	var raw struct {
		Role  any `json:"role"`
		Match any `json:"match_requested_role"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	role := scalarString(raw.Role)
	if role == nil {
		return fmt.Errorf("role recommendation without role")
	}
	r.Role = *role
	r.MatchRequestedRole = "no"
	switch m := raw.Match.(type) {
	case bool:
		if m {
			r.MatchRequestedRole = "yes"
		}
	case string:
		if v := strings.ToLower(strings.TrimSpace(m)); v == "yes" || v == "true" || v == "y" {
			r.MatchRequestedRole = "yes"
		}
	}
	return nil
}

// ScoreCategories are the ten scored dimensions, in report order.
var ScoreCategories = []string{
	"Education",
	"Experience",
	"Technical Skills",
	"Soft Skills",
	"Projects",
	"Certifications",
	"Achievements",
	"Extra Skills",
	"Online Presence",
	"Presentation",
}

const (
	totalScoreKey = "Total Score"
	percentageKey = "Percentage"
	maxCategory   = 20
)

// categoryAliases maps the long prompt labels to report keys.
var categoryAliases = map[string]string{
	"certifications / training":    "Certifications",
	"certifications/training":      "Certifications",
	"achievements / awards":        "Achievements",
	"achievements/awards":          "Achievements",
	"professional online presence": "Online Presence",
	"overall presentation":         "Presentation",
}

// ScoreReport holds per-category scores in [0,20] and the model's own totals.
type ScoreReport struct {
	Categories map[string]int
	TotalScore int
	Percentage float64
}

// IsEmpty reports whether no category was scored.
func (s ScoreReport) IsEmpty() bool {
	return len(s.Categories) == 0
}

// MarshalJSON renders the flat shape: one key per category plus totals.
func (s ScoreReport) MarshalJSON() ([]byte, error) {
	if s.IsEmpty() {
		return []byte("{}"), nil
	}
	out := make(map[string]any, len(s.Categories)+2)
	for k, v := range s.Categories {
		out[k] = v
	}
	out[totalScoreKey] = s.TotalScore
	out[percentageKey] = s.Percentage
	return json.Marshal(out)
}

// UnmarshalJSON reads the flat shape, clamping category scores to [0,20].
func (s *ScoreReport) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	report := ScoreReport{Categories: map[string]int{}}
	for key, val := range raw {
		num, ok := number(val)
		if !ok {
			continue
		}
		switch canonical := canonicalCategory(key); canonical {
		case totalScoreKey:
			report.TotalScore = roundIn(num, 0, maxCategory*len(ScoreCategories))
		case percentageKey:
			report.Percentage = num
		case "":
		default:
			report.Categories[canonical] = roundIn(num, 0, maxCategory)
		}
	}
	if len(report.Categories) == 0 {
		report.Categories = nil
	}
	*s = report
	return nil
}

func canonicalCategory(key string) string {
	trimmed := strings.TrimSpace(key)
	lower := strings.ToLower(trimmed)
	switch lower {
	case "total score", "total_score", "total":
		return totalScoreKey
	case "percentage":
		return percentageKey
	}
	if alias, ok := categoryAliases[lower]; ok {
		return alias
	}
	for _, c := range ScoreCategories {
		if strings.EqualFold(c, trimmed) {
			return c
		}
	}
	return ""
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(t), "%"), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// roundIn bounds num before converting so huge values cannot overflow int.
func roundIn(num float64, lo, hi int) int {
	return int(math.Round(math.Min(math.Max(num, float64(lo)), float64(hi))))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
