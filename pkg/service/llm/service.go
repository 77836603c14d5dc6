package llm

import (
	"bytes"
	"context"
	"embed"
	"strings"
	"text/template"

	"github.com/dustin/go-humanize"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/kujo/pkg/domain/model"
)

// Error tags for categorization
var (
	ErrTagEmptyResponse   = goerr.NewTag("empty_response")
	ErrTagTemplateFailure = goerr.NewTag("template_failure")
)

// SystemPrompt is the instruction given to every assistant session
const SystemPrompt = `You are an analyst helping a municipal team understand citizen complaints.
Answer only from the complaint data provided in the message. If the data does not contain
the answer, say so. Be concise and quote counts and dates exactly as given.`

//go:embed templates/*.md
var templateFS embed.FS

// LLMService composes assistant prompts and forwards them to an LLM
type LLMService struct {
	llmClient gollem.LLMClient
}

// TemplateRow is one complaint line of the context block
type TemplateRow struct {
	Date         string
	Category     string
	Municipality string
	Severity     string
	Description  string
}

// AssistantTemplateData contains data for the assistant context template
type AssistantTemplateData struct {
	From           string
	To             string
	Total          string
	Categories     []string
	Municipalities []string
	MeanSeverity   string
	HighSeverity   string
	Threshold      int
	Rows           []TemplateRow
	History        []model.ChatTurn
	Question       string
}

// NewLLMService creates a new LLMService instance. A nil client is accepted; Answer then fails
// with model.ErrLLMNotConfigured.
func NewLLMService(llmClient gollem.LLMClient) *LLMService {
	return &LLMService{
		llmClient: llmClient,
	}
}

// IsConfigured reports whether an LLM client is available
func (s *LLMService) IsConfigured() bool {
	return s != nil && s.llmClient != nil
}

// Answer asks the LLM the question about rows. The response texts are returned joined, unmodified.
func (s *LLMService) Answer(ctx context.Context, question model.Question, rows []*model.Complaint, summary *model.Summary) (string, error) {
	if !s.IsConfigured() {
		return "", model.ErrLLMNotConfigured
	}

	prompt, err := s.ComposePrompt(question, rows, summary)
	if err != nil {
		return "", err
	}

	session, err := s.llmClient.NewSession(ctx, gollem.WithSessionSystemPrompt(SystemPrompt))
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session",
			goerr.T(model.ErrTagLLMFailure))
	}

	ctxlog.From(ctx).Debug("Sending assistant prompt",
		"rows", len(rows),
		"history", len(question.History),
		"prompt_bytes", len(prompt),
	)

	response, err := session.GenerateContent(ctx, gollem.Text(prompt))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate LLM response",
			goerr.T(model.ErrTagLLMFailure))
	}

	answer := ""
	if response != nil {
		answer = strings.Join(response.Texts, "")
	}
	if strings.TrimSpace(answer) == "" {
		return "", goerr.New("empty response from LLM",
			goerr.T(ErrTagEmptyResponse))
	}

	return answer, nil
}

// ComposePrompt renders the context block, the prior turns and the question into one message
func (s *LLMService) ComposePrompt(question model.Question, rows []*model.Complaint, summary *model.Summary) (string, error) {
	prompt, err := renderAssistantTemplate(buildTemplateData(question, rows, summary))
	if err != nil {
		return "", goerr.Wrap(err, "failed to render assistant template",
			goerr.T(ErrTagTemplateFailure))
	}
	return prompt, nil
}

func buildTemplateData(question model.Question, rows []*model.Complaint, summary *model.Summary) AssistantTemplateData {
	table := model.NewTable(rows)
	data := AssistantTemplateData{
		From:           question.Filter.FromLabel(),
		To:             question.Filter.ToLabel(),
		Total:          humanize.Comma(int64(len(rows))),
		Categories:     table.Categories(),
		Municipalities: table.Municipalities(),
		MeanSeverity:   "n/a",
		HighSeverity:   "0",
		Threshold:      model.HighSeverityThreshold,
		Rows:           make([]TemplateRow, 0, len(rows)),
		History:        question.History,
		Question:       question.Text,
	}

	if summary != nil {
		if summary.MeanSeverity.IsDefined() {
			data.MeanSeverity = humanize.FtoaWithDigits(summary.MeanSeverity.Float64(), 2)
		}
		data.HighSeverity = humanize.Comma(int64(summary.HighSeverity))
	}

	for _, row := range rows {
		data.Rows = append(data.Rows, TemplateRow{
			Date:         row.Day().Format(model.DateLayout),
			Category:     row.Category,
			Municipality: row.Municipality,
			Severity:     severityText(row),
			Description:  singleLine(row.Description),
		})
	}

	return data
}

// severityText shows the label and the score when both are known
func severityText(c *model.Complaint) string {
	score := c.SeverityScore
	switch {
	case c.Severity == "" && !score.IsDefined():
		return "n/a"
	case c.Severity == "":
		return score.String()
	case !score.IsDefined() || c.Severity == score.String():
		return c.Severity
	default:
		return c.Severity + " (" + score.String() + ")"
	}
}

func singleLine(v string) string {
	return strings.Join(strings.Fields(v), " ")
}

// renderAssistantTemplate renders the assistant context template
func renderAssistantTemplate(data AssistantTemplateData) (string, error) {
	// Load template from embedded filesystem
	templateContent, err := templateFS.ReadFile("templates/assistant_context.md")
	if err != nil {
		return "", goerr.Wrap(err, "failed to read assistant template")
	}

	tmpl, err := template.New("assistant_context").Parse(string(templateContent))
	if err != nil {
		return "", goerr.Wrap(err, "failed to parse assistant template")
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to execute assistant template")
	}

	return buf.String(), nil
}
