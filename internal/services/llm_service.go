package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/justsurfingit/Agentic-Job-Tracker/internal/config"
)

// ErrLLMDisabled is returned when no Gemini key is configured.
var ErrLLMDisabled = errors.New("llm is not configured")

// maxPromptInput caps raw page/email text sent to the model.
const maxPromptInput = 20000

type LLMService struct {
	Client llms.Model
}

// NewLLMService creates the Gemini-backed service, or returns
// ErrLLMDisabled when the API key is missing.
func NewLLMService(ctx context.Context, cfg *config.Config) (*LLMService, error) {
	if !cfg.LLMEnabled() {
		return nil, ErrLLMDisabled
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.GeminiAPIKey),
		googleai.WithDefaultModel(cfg.GeminiModel),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &LLMService{Client: llm}, nil
}

const jobExtractionPrompt = `
You are an expert Job Data Extraction Agent. Your task is to analyze the provided raw HTML/Text from a job posting and extract structured data.

### INSTRUCTIONS:
1. **Analyze** the text to identify the core job details.
2. **Ignore** navigation menus, footers, "similar jobs" lists, and site advertisements.
3. **Extract** the following fields strictly.
4. **Format** the output as valid JSON only. Do not wrap the output in markdown code blocks.

### OUTPUT SCHEMA:
{
    "company_name": "Name of the company (e.g., Google, StartupInc)",
    "role_title": "Job title (e.g., Senior Backend Engineer)",
    "location": "Job location or 'Remote'",
    "description": "A clean summary of the job. Focus on Responsibilities and Requirements. Remove HTML tags.",
    "tech_stack": ["Array", "of", "technologies", "mentioned", "e.g., Go, React, AWS"],
    "salary_range": "The salary string if explicitly mentioned (e.g., '$100k - $150k'), otherwise null"
}

### CONSTRAINT:
If a piece of information is missing, set the value to null. Do not hallucinate or guess.

### RAW CONTENT:
%s
`

const emailStatusPrompt = `
You read recruiting emails for a job applicant who applied to %s.

Decide what the email means for the application and answer with JSON only:
{"status": "<one of APPLIED, INTERVIEWING, OFFER, REJECTED, WITHDRAWN, NO_CHANGE, UNKNOWN>", "summary": "<one sentence>"}

Use NO_CHANGE for acknowledgements and newsletters, UNKNOWN if you cannot tell.

### SUBJECT:
%s

### BODY:
%s
`

const jobRolePrompt = `
An applicant has several open applications at the same company:
%s
Which one is this email about? Answer with the number only, or -1 if you cannot tell.

### SUBJECT:
%s

### BODY:
%s
`

// ExtractJobDetails takes raw HTML and returns the model's JSON answer.
func (s *LLMService) ExtractJobDetails(ctx context.Context, rawHTML string) (string, error) {
	prompt := fmt.Sprintf(jobExtractionPrompt, truncate(rawHTML))
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, prompt)
	if err != nil {
		return "", err
	}
	return stripCodeFence(resp), nil
}

// AnalyzeEmailStatus classifies a recruiting email. The returned JSON has
// "status" and "summary" keys.
func (s *LLMService) AnalyzeEmailStatus(ctx context.Context, company, subject, body string) (string, error) {
	prompt := fmt.Sprintf(emailStatusPrompt, company, subject, truncate(body))
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, prompt, llms.WithTemperature(0))
	if err != nil {
		return "", err
	}
	return stripCodeFence(resp), nil
}

// IdentifyJobRole returns the index into titles the email refers to, or -1.
func (s *LLMService) IdentifyJobRole(ctx context.Context, titles []string, subject, body string) int {
	var list strings.Builder
	for i, t := range titles {
		fmt.Fprintf(&list, "%d. %s\n", i, t)
	}
	prompt := fmt.Sprintf(jobRolePrompt, list.String(), subject, truncate(body))
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, prompt, llms.WithTemperature(0))
	if err != nil {
		return -1
	}
	return parseRoleIndex(resp, len(titles))
}

func parseRoleIndex(resp string, n int) int {
	idx, err := strconv.Atoi(strings.TrimSpace(stripCodeFence(resp)))
	if err != nil || idx < 0 || idx >= n {
		return -1
	}
	return idx
}

func truncate(s string) string {
	if len(s) > maxPromptInput {
		return s[:maxPromptInput]
	}
	return s
}

// stripCodeFence removes a ```json ... ``` wrapper models add despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
