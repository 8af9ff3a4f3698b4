package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"finpilot/internal/core"
)

// GeneratedInsight is one finding the model produces for a business.
type GeneratedInsight struct {
	Title    string `json:"title"`
	Text     string `json:"text"`
	Type     string `json:"type"`
	Severity string `json:"severity"`
}

// Classification assigns a category and counterparty to one transaction.
type Classification struct {
	CategoryName string `json:"category_name"`
	EntityName   string `json:"entity_name"`
	EntityType   string `json:"entity_type"`
}

// Generator produces narrative findings and classifications from shaped
// financial data.
type Generator interface {
	GenerateInsights(ctx context.Context, data FinancialData) ([]GeneratedInsight, error)
	ExecutiveSummary(ctx context.Context, data FinancialData) (string, error)
	Chat(ctx context.Context, cc ChatContext, question string) (string, error)
	ClassifyBatch(ctx context.Context, records []core.TransactionRecord) ([]Classification, error)
}

var insightTypes = map[string]bool{
	"health":      true,
	"risk":        true,
	"warning":     true,
	"opportunity": true,
	"info":        true,
}

var severities = map[string]bool{
	"low":    true,
	"medium": true,
	"high":   true,
}

const expenseCategories = "Fuel, Tools, Supplies, Rent, Utilities, Salary, Subscription, Marketing, Transport, Repair, Food, Miscellaneous"

const incomeCategories = "Customer Payment, Service Revenue, Product Sales, Refund, Other Income"

// GeminiGenerator talks to the Gemini API through the genai SDK.
type GeminiGenerator struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string, logger *slog.Logger) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
		// API version v1 is what docs use for current Gemini models.
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiGenerator{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

func (g *GeminiGenerator) generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model %s", g.model)
	}
	return text, nil
}

// GenerateInsights asks the model for 3-5 findings and validates each entry's
// type and severity, dropping anything malformed.
func (g *GeminiGenerator) GenerateInsights(ctx context.Context, data FinancialData) ([]GeneratedInsight, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal financial data: %w", err)
	}

	prompt := "You are a financial analyst for a small business.\n" +
		"Based on the financial data below, produce 3 to 5 short, actionable insights.\n" +
		"Return ONLY a JSON array. Each element must have exactly these fields:\n" +
		"  \"title\": a short headline,\n" +
		"  \"text\": one or two sentences of plain advice,\n" +
		"  \"type\": one of \"health\", \"risk\", \"warning\", \"opportunity\", \"info\",\n" +
		"  \"severity\": one of \"low\", \"medium\", \"high\".\n" +
		"Do NOT use ```json or any Markdown.\n" +
		"Output must begin with \"[\" and end with \"]\".\n\n" +
		"Financial data:\n" + string(payload)

	raw, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	clean := cleanModelJSON(raw)

	var parsed []GeneratedInsight
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal insights: %w", err)
	}

	valid := make([]GeneratedInsight, 0, len(parsed))
	for _, ins := range parsed {
		if ins.Text == "" {
			continue
		}
		if !insightTypes[ins.Type] {
			ins.Type = "info"
		}
		if !severities[ins.Severity] {
			ins.Severity = "low"
		}
		valid = append(valid, ins)
	}

	g.logger.InfoContext(ctx, "Insights generated",
		"model", g.model,
		"count", len(valid),
		"dropped", len(parsed)-len(valid))

	return valid, nil
}

// ExecutiveSummary asks for a short prose paragraph, no JSON involved.
func (g *GeminiGenerator) ExecutiveSummary(ctx context.Context, data FinancialData) (string, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal financial data: %w", err)
	}

	prompt := "You are a financial analyst for a small business.\n" +
		"Write a 2-3 sentence executive summary of the business's financial position\n" +
		"based on the data below. Plain prose only, no Markdown, no bullet points.\n\n" +
		"Financial data:\n" + string(payload)

	raw, err := g.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

// Chat answers a free-form question grounded in the chat context.
func (g *GeminiGenerator) Chat(ctx context.Context, cc ChatContext, question string) (string, error) {
	payload, err := json.Marshal(cc)
	if err != nil {
		return "", fmt.Errorf("marshal chat context: %w", err)
	}

	prompt := "You are a financial co-pilot for a small business owner.\n" +
		"Answer the owner's question using ONLY the financial context below.\n" +
		"Be concise and concrete. If the context does not contain the answer,\n" +
		"say so rather than guessing. Plain prose, no Markdown.\n\n" +
		"Financial context:\n" + string(payload) + "\n\n" +
		"Question: " + question

	raw, err := g.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

// ClassifyBatch assigns a category and counterparty to each record. When the
// model reply cannot be used for a record, the deterministic fallback fills
// the slot so the result always lines up 1:1 with the input.
func (g *GeminiGenerator) ClassifyBatch(ctx context.Context, records []core.TransactionRecord) ([]Classification, error) {
	if len(records) == 0 {
		return []Classification{}, nil
	}

	type item struct {
		Index       int     `json:"index"`
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
		Type        string  `json:"type"`
	}
	items := make([]item, len(records))
	for i, rec := range records {
		items[i] = item{
			Index:       i,
			Description: rec.Description,
			Amount:      rec.Amount,
			Type:        string(rec.Type),
		}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal classify batch: %w", err)
	}

	prompt := "Classify each business transaction below.\n" +
		"For expense transactions pick category_name from: " + expenseCategories + ".\n" +
		"For income transactions pick category_name from: " + incomeCategories + ".\n" +
		"Set entity_name to the counterparty implied by the description, or \"\" if unclear.\n" +
		"Set entity_type to \"supplier\" for expenses and \"customer\" for income.\n" +
		"Return ONLY a JSON array with one element per input, in the same order.\n" +
		"Each element must have fields \"index\", \"category_name\", \"entity_name\", \"entity_type\".\n" +
		"Do NOT use ```json or any Markdown.\n" +
		"Output must begin with \"[\" and end with \"]\".\n\n" +
		"Transactions:\n" + string(payload)

	out := make([]Classification, len(records))
	for i, rec := range records {
		out[i] = FallbackClassification(rec)
	}

	raw, err := g.generate(ctx, prompt)
	if err != nil {
		g.logger.WarnContext(ctx, "Classification fell back to defaults", "error", err)
		return out, nil
	}

	type reply struct {
		Index        int    `json:"index"`
		CategoryName string `json:"category_name"`
		EntityName   string `json:"entity_name"`
		EntityType   string `json:"entity_type"`
	}
	var parsed []reply
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &parsed); err != nil {
		g.logger.WarnContext(ctx, "Classification fell back to defaults", "error", err)
		return out, nil
	}

	for _, r := range parsed {
		if r.Index < 0 || r.Index >= len(records) || r.CategoryName == "" {
			continue
		}
		out[r.Index].CategoryName = r.CategoryName
		if r.EntityName != "" {
			out[r.Index].EntityName = r.EntityName
		}
		if r.EntityType == "supplier" || r.EntityType == "customer" {
			out[r.Index].EntityType = r.EntityType
		}
	}

	return out, nil
}

// FallbackClassification is the deterministic assignment used when no model
// is configured or its reply is unusable.
func FallbackClassification(rec core.TransactionRecord) Classification {
	if rec.Type == core.Income {
		return Classification{CategoryName: "Other Income", EntityType: "customer"}
	}
	return Classification{CategoryName: "Miscellaneous", EntityType: "supplier"}
}

// cleanModelJSON strips Markdown fences and surrounding junk when the model
// ignores the formatting instructions.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
