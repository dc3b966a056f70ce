package ai

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-selector/internal/llm"
	"job-selector/internal/shared/telemetry"
)

type fakeLLM struct {
	response string
	err      error
	prompts  []string
	steps    []string
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.steps = append(f.steps, llm.StepFromContext(ctx))
	return f.response, f.err
}

func newClient(t *testing.T, response string, err error) (*Client, *fakeLLM) {
	t.Helper()
	telemetry.SetOutput(io.Discard)
	t.Cleanup(func() { telemetry.SetOutput(os.Stdout) })
	fake := &fakeLLM{response: response, err: err}
	return NewClient(fake), fake
}

func sampleResume() ExtractedResume {
	name := "Jane Doe"
	role := "Backend Engineer"
	return ExtractedResume{Name: &name, JobRole: &role, TechnicalSkills: []string{"Go", "SQL"}}
}

func TestParseResume(t *testing.T) {
	client, fake := newClient(t, "```json\n{\"name\":\"Jane Doe\",\"job_role\":\"Backend Engineer\",\"technical_skills\":[\"Go\"]}\n```", nil)

	got, err := client.ParseResume(context.Background(), "Jane Doe\nBackend Engineer")
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", got.Role())
	assert.Equal(t, []string{"Go"}, got.TechnicalSkills)
	require.Len(t, fake.prompts, 1)
	assert.Contains(t, fake.prompts[0], "Resume Text:\nJane Doe\nBackend Engineer")
	assert.Equal(t, OpParseResume, fake.steps[0])
}

func TestParseResumeRejectsProse(t *testing.T) {
	client, _ := newClient(t, `Here is the JSON: {"name":"Jane"}`, nil)

	got, err := client.ParseResume(context.Background(), "text")
	assert.True(t, got.IsEmpty())
	assert.Equal(t, KindMalformed, KindOf(err))
}

func TestParseResumeEmptyObjectIsFailure(t *testing.T) {
	client, _ := newClient(t, "{}", nil)

	got, err := client.ParseResume(context.Background(), "text")
	assert.True(t, got.IsEmpty())
	assert.Equal(t, KindMalformed, KindOf(err))
}

func TestParseResumeProviderFailure(t *testing.T) {
	boom := errors.New("connection refused")
	client, _ := newClient(t, "", boom)

	got, err := client.ParseResume(context.Background(), "text")
	assert.True(t, got.IsEmpty())
	assert.Equal(t, KindProvider, KindOf(err))
	assert.ErrorIs(t, err, boom)
}

func TestRecommendRoles(t *testing.T) {
	client, fake := newClient(t, "Based on the resume:\n[{\"role\": \"Go Developer\", \"match_requested_role\": \"yes\"}, {\"role\": \"DevOps\", \"match_requested_role\": \"no\"}]\nGood luck!", nil)

	roles, err := client.RecommendRoles(context.Background(), sampleResume(), "")
	require.NoError(t, err)
	assert.Equal(t, []RoleRecommendation{
		{Role: "Go Developer", MatchRequestedRole: "yes"},
		{Role: "DevOps", MatchRequestedRole: "no"},
	}, roles)
	assert.Contains(t, fake.prompts[0], "Requested Role: None")
	assert.Contains(t, fake.prompts[0], `"job_role":"Backend Engineer"`)
}

func TestRecommendRolesNoArray(t *testing.T) {
	client, _ := newClient(t, "I cannot help with that.", nil)

	roles, err := client.RecommendRoles(context.Background(), sampleResume(), "Engineer")
	assert.Empty(t, roles)
	assert.NotNil(t, roles)
	assert.Equal(t, KindNoMatch, KindOf(err))
}

func TestResumeScore(t *testing.T) {
	client, fake := newClient(t, `Scores: {"Education": 15, "Experience": 10, "Technical Skills": 18, "Total Score": 43, "Percentage": 21.5}`, nil)

	report, err := client.ResumeScore(context.Background(), sampleResume(), "Go backend role", "")
	require.NoError(t, err)
	assert.Equal(t, 15, report.Categories["Education"])
	assert.Equal(t, 43, report.TotalScore)
	assert.Contains(t, fake.prompts[0], "Role Level: Beginner")
	assert.Contains(t, fake.prompts[0], "Job Description: Go backend role")
}

func TestResumeScoreMalformed(t *testing.T) {
	client, _ := newClient(t, "The candidate is great, I would give them 9/10.", nil)

	report, err := client.ResumeScore(context.Background(), sampleResume(), "jd", LevelAdvanced)
	assert.True(t, report.IsEmpty())
	assert.Error(t, err)
	assert.Equal(t, KindNoMatch, KindOf(err))
}

func TestResumeScoreBrokenObject(t *testing.T) {
	client, _ := newClient(t, `{"Education": 15, "Experience": }`, nil)

	report, err := client.ResumeScore(context.Background(), sampleResume(), "jd", LevelIntermediate)
	assert.True(t, report.IsEmpty())
	assert.Equal(t, KindMalformed, KindOf(err))
}

func TestATSScore(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     int
		kind     Kind
	}{
		{name: "leftmost digit run", response: "Score: 87 out of 100", want: 87},
		{name: "bare", response: "72", want: 72},
		{name: "clamped", response: "250", want: 100},
		{name: "overflow", response: "99999999999999999999999", want: 100},
		{name: "no digits", response: "unable to score", want: 0, kind: KindNoMatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newClient(t, tt.response, nil)
			got, err := client.ATSScore(context.Background(), sampleResume(), "jd", "Backend Engineer")
			assert.Equal(t, tt.want, got)
			if tt.kind == "" {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, tt.kind, KindOf(err))
			}
		})
	}
}

func TestATSScorePrompt(t *testing.T) {
	client, fake := newClient(t, "50", nil)

	_, err := client.ATSScore(context.Background(), sampleResume(), "Build APIs in Go", "")
	require.NoError(t, err)
	prompt := fake.prompts[0]
	assert.True(t, strings.Contains(prompt, "Requested Role: None"))
	assert.True(t, strings.Contains(prompt, "Job Description: Build APIs in Go"))
	assert.True(t, strings.Contains(prompt, "Return ONLY an integer 0-100"))
}

func TestClientWithoutLLM(t *testing.T) {
	var client *Client
	_, err := client.ATSScore(context.Background(), ExtractedResume{}, "jd", "")
	assert.Equal(t, KindProvider, KindOf(err))
}
