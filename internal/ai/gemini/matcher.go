package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/job-agent/internal/ai"
	"github.com/spigell/job-agent/internal/jobs"
	"github.com/spigell/job-agent/internal/logger"
	"github.com/spigell/job-agent/internal/profile"
	"github.com/spigell/job-agent/internal/utils"
)

const (
	providerName            = "gemini"
	systemInstruction       = "You evaluate job postings for a candidate. Follow the template and answer with JSON only."
	defaultMaxLogLength     = 200
	defaultTone             = "Friendly"
	noneValue               = "none"
	maxUserInstructionRunes = 500
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

// PromptOverrides are user preferences inserted into the prompt template.
type PromptOverrides struct {
	ExtraCriteria     string `json:"extra_criteria"`
	DealBreakers      string `json:"deal_breakers"`
	CustomKeywords    string `json:"custom_keywords"`
	Tone              string `json:"tone"`
	RegionConstraints string `json:"region_constraints"`
	UserInstructions  string `json:"user_instructions"`
}

type Matcher struct {
	generator contentGenerator
	minScore  float64
	maxLogLen int
	overrides PromptOverrides
	logger    *zap.Logger
}

//go:embed prompt.md
var promptTemplate string

func NewMatcher(generator contentGenerator, minScore float64, maxLogLength int, log *zap.Logger) *Matcher {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Matcher{
		generator: generator,
		minScore:  minScore,
		maxLogLen: maxLogLength,
		logger:    logger.WithAIFields(log, providerName, generator.Model()),
	}
}

func (m *Matcher) SetPromptOverrides(o PromptOverrides) {
	m.overrides = o
}

// jobPayload is the part of a posting the model gets to see.
type jobPayload struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	Location       string   `json:"location"`
	IsRemote       bool     `json:"isRemote"`
	EmploymentType string   `json:"employmentType"`
	Salary         *string  `json:"salary,omitempty"`
	Skills         []string `json:"skills"`
	Description    string   `json:"description"`
	MatchScore     *int     `json:"matchScore,omitempty"`
}

func (m *Matcher) Evaluate(ctx context.Context, p *profile.Profile, job *jobs.Job) (*ai.FitAssessment, error) {
	if p == nil {
		return nil, fmt.Errorf("profile is required")
	}
	if job == nil {
		return nil, fmt.Errorf("job is required")
	}

	profileJSON, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal profile payload: %w", err)
	}

	payload := jobPayload{
		ID:             job.ID,
		Title:          job.Title,
		Company:        job.Company,
		Location:       job.Location,
		IsRemote:       job.IsRemote,
		EmploymentType: job.EmploymentType,
		Salary:         job.Salary,
		Skills:         job.Skills,
		Description:    job.Description,
	}
	if job.Match != nil {
		total := job.Match.Total
		payload.MatchScore = &total
	}
	jobJSON, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal job payload: %w", err)
	}

	prompt := m.buildPrompt(string(profileJSON), string(jobJSON))

	m.logger.Debug("gemini generate content request",
		zap.String("job_id", job.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, m.maxLogLen)),
	)

	raw, err := m.generator.GenerateContent(ctx, systemInstruction, prompt)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("gemini generate content response",
		zap.String("job_id", job.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, m.maxLogLen)),
	)

	assessment, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	if m.minScore > 0 && assessment.Score < m.minScore {
		m.logger.Debug("set fit to false by score threshold",
			zap.String("job_id", job.ID),
			zap.Float64("score", assessment.Score),
			zap.Float64("threshold", m.minScore),
		)
		assessment.Fit = false
	}

	assessment.Raw = raw
	return assessment, nil
}

func (m *Matcher) buildPrompt(profileJSON, jobJSON string) string {
	o := m.overrides
	tone := sanitizeLine(o.Tone)
	if tone == "" {
		tone = defaultTone
	}

	r := strings.NewReplacer(
		"{{EXTRA_CRITERIA}}", orNone(sanitizeLine(o.ExtraCriteria)),
		"{{DEAL_BREAKERS}}", orNone(sanitizeLine(o.DealBreakers)),
		"{{CUSTOM_KEYWORDS}}", orNone(sanitizeKeywords(o.CustomKeywords)),
		"{{TONE}}", tone,
		"{{REGION_CONSTRAINTS}}", orNone(sanitizeLine(o.RegionConstraints)),
		"{{USER_INSTRUCTIONS}}", userInstructionsBlock(o.UserInstructions),
		"{{PROFILE_JSON}}", profileJSON,
		"{{JOB_JSON}}", jobJSON,
	)
	return r.Replace(promptTemplate)
}

func orNone(s string) string {
	if s == "" {
		return noneValue
	}
	return s
}

// neutralizeBrackets keeps user text from imitating the section headers.
func neutralizeBrackets(s string) string {
	return strings.NewReplacer("[", "(", "]", ")").Replace(s)
}

// sanitizeLine collapses all whitespace to single spaces.
func sanitizeLine(s string) string {
	return strings.Join(strings.Fields(neutralizeBrackets(s)), " ")
}

func sanitizeKeywords(s string) string {
	var keywords []string
	for _, k := range strings.Split(s, ",") {
		if k = sanitizeLine(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	return strings.Join(keywords, ", ")
}

// userInstructionsBlock renders free-form instructions as an indented list,
// one item per non-empty line, truncated to maxUserInstructionRunes.
func userInstructionsBlock(s string) string {
	var lines []string
	budget := maxUserInstructionRunes
	for _, line := range strings.Split(s, "\n") {
		line = sanitizeLine(line)
		if line == "" || budget <= 0 {
			continue
		}
		runes := []rune(line)
		if len(runes) > budget {
			runes = runes[:budget]
		}
		budget -= len(runes)
		lines = append(lines, "  - "+string(runes))
	}
	if len(lines) == 0 {
		return "  - " + noneValue
	}
	return strings.Join(lines, "\n")
}

func parseResponse(raw string) (*ai.FitAssessment, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	score := coerceFloat(data["score"])
	if math.IsNaN(score) {
		score = 0
	}

	return &ai.FitAssessment{
		Fit:     coerceBool(data["fit"]),
		Score:   score,
		Reason:  coerceString(data["reason"]),
		Message: coerceString(data["message"]),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start > 0 && end > start {
		raw = raw[start : end+1]
	}
	return strings.TrimSpace(strings.Trim(raw, "`"))
}

func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes"
	case float64:
		return val != 0
	default:
		return false
	}
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	default:
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
