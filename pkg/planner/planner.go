package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/shouni/go-repair-kit/pkg/domain"
	"github.com/shouni/go-repair-kit/pkg/prompts"

	"google.golang.org/genai"
)

// defaultPlanTemperature はプラン生成の温度です。構造の安定を優先して低めにします。
const defaultPlanTemperature = float32(0.2)

var jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*\\S)\\s*```")

// ContentGenerator は Gemini の GenerateContent 呼び出しを抽象化します。
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client は google.golang.org/genai クライアントを ContentGenerator として包みます。
type Client struct {
	client *genai.Client
}

// NewClient は API キーから Gemini クライアントを初期化します。
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, &domain.ConfigurationError{
			Key:    "GEMINI_API_KEY",
			Reason: "Gemini APIキーが設定されていません",
		}
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("Geminiクライアントの初期化に失敗しました: %w", err)
	}
	return &Client{client: c}, nil
}

// GenerateContent は genai クライアントの Models.GenerateContent へ委譲します。
func (c *Client) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return c.client.Models.GenerateContent(ctx, model, contents, config)
}

// RepairPlanner は写真と説明文から構造化された修理プランを生成します。
// 応答形式はプロンプト指示だけに頼らず、明示的なレスポンススキーマで拘束します。
type RepairPlanner struct {
	gen           ContentGenerator
	promptBuilder *prompts.PlanPromptBuilder
	model         string
}

// NewRepairPlanner は依存関係を注入して RepairPlanner を初期化します。
func NewRepairPlanner(gen ContentGenerator, pb *prompts.PlanPromptBuilder, model string) *RepairPlanner {
	return &RepairPlanner{
		gen:           gen,
		promptBuilder: pb,
		model:         model,
	}
}

// BuildPlan は、1回のマルチモーダル呼び出し（テキスト + 写真）で修理プランを
// 生成し、検証済みの RepairPlan を返します。
// 通信の失敗は *TransportError、プランとして成立しない応答は
// *MalformedPlanError になります。プランが不正な場合、挿絵生成は一切走りません。
func (p *RepairPlanner) BuildPlan(ctx context.Context, report domain.ProblemReport) (domain.RepairPlan, error) {
	if err := report.Validate(); err != nil {
		return domain.RepairPlan{}, err
	}

	userPrompt, systemPrompt, err := p.promptBuilder.Build(prompts.TemplateData{Description: report.Description})
	if err != nil {
		return domain.RepairPlan{}, fmt.Errorf("プロンプト生成に失敗しました: %w", err)
	}

	parts := []*genai.Part{
		genai.NewPartFromText(userPrompt),
		genai.NewPartFromBytes(report.PhotoData, report.PhotoMIME),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(defaultPlanTemperature),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    PlanSchema(),
	}

	slog.Info("修理プランの生成を開始します", "model", p.model, "photo_mime", report.PhotoMIME, "photo_bytes", len(report.PhotoData))
	resp, err := p.gen.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return domain.RepairPlan{}, &domain.TransportError{Op: "Gemini GenerateContent", Err: err}
	}

	plan, err := parsePlanResponse(resp.Text())
	if err != nil {
		return domain.RepairPlan{}, err
	}

	slog.Info("修理プランを取得しました", "steps", len(plan.Steps), "safety_warning", plan.SafetyWarning != "")
	return plan, nil
}

// parsePlanResponse は、AI応答からJSON部分を取り出して RepairPlan に変換し、
// 構造検証まで行います。スキーマ拘束下でもモデルがフェンスや前置きを
// 付けることがあるため、防御的に抽出します。
func parsePlanResponse(raw string) (domain.RepairPlan, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.RepairPlan{}, domain.NewMalformedPlanError("AI応答が空です", "", nil)
	}

	var rawJSON string
	matches := jsonBlockRegex.FindStringSubmatch(raw)
	if len(matches) > 1 {
		rawJSON = matches[1]
	} else {
		// Fallback 1: 最も外側のJSONオブジェクトを切り出す。
		firstBracket := strings.Index(raw, "{")
		lastBracket := strings.LastIndex(raw, "}")
		if firstBracket != -1 && lastBracket != -1 && lastBracket > firstBracket {
			rawJSON = raw[firstBracket : lastBracket+1]
		} else {
			// Fallback 2: 応答全体をJSONとみなす。
			rawJSON = raw
		}
	}

	var plan domain.RepairPlan
	if err := json.Unmarshal([]byte(rawJSON), &plan); err != nil {
		return domain.RepairPlan{}, domain.NewMalformedPlanError("AI応答のJSON解析に失敗しました", raw, err)
	}

	if err := plan.Validate(); err != nil {
		return domain.RepairPlan{}, err
	}
	return plan, nil
}
