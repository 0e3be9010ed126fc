package workflow

import (
	"context"
	"fmt"

	"github.com/shouni/go-repair-kit/pkg/guide"
	"github.com/shouni/go-repair-kit/pkg/planner"
	"github.com/shouni/go-repair-kit/pkg/prompts"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"google.golang.org/genai"
)

// Manager は、ワークフローの各工程を担う Runner 群を構築・管理します。
type Manager struct {
	cfg         Config
	httpClient  httpkit.ClientInterface
	reader      remoteio.InputReader
	writer      remoteio.OutputWriter
	planClient  planner.ContentGenerator
	planPrompt  *prompts.PlanPromptBuilder
	stepPrompt  *prompts.StepImagePromptBuilder
	illustrator guide.StepIllustrator
}

// ManagerArgs は Manager の初期化に必要な依存関係の束です。
// PlanClient と Illustrator はテスト用の差し替え口で、nil なら実物を構築します。
type ManagerArgs struct {
	Config      Config
	HTTPClient  httpkit.ClientInterface
	Reader      remoteio.InputReader
	Writer      remoteio.OutputWriter
	PlanClient  planner.ContentGenerator
	Illustrator guide.StepIllustrator
}

// New は、設定と依存関係を基に新しい Manager を初期化します。
func New(ctx context.Context, args ManagerArgs) (*Manager, error) {
	if args.HTTPClient == nil {
		return nil, fmt.Errorf("httpClient は必須です")
	}
	if args.Reader == nil {
		return nil, fmt.Errorf("InputReader は必須です")
	}
	if args.Writer == nil {
		return nil, fmt.Errorf("OutputWriter は必須です")
	}

	planClient := args.PlanClient
	if planClient == nil {
		client, err := planner.NewClient(ctx, args.Config.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		planClient = client
	}

	illustrator := args.Illustrator
	if illustrator == nil {
		aiClient, err := initializeAIClient(ctx, args.Config.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		illustrator, err = buildIllustrator(args.Config, args.HTTPClient, aiClient, args.Reader)
		if err != nil {
			return nil, fmt.Errorf("画像生成エンジンの初期化に失敗しました: %w", err)
		}
	}

	return &Manager{
		cfg:         args.Config,
		httpClient:  args.HTTPClient,
		reader:      args.Reader,
		writer:      args.Writer,
		planClient:  planClient,
		planPrompt:  prompts.NewPlanPromptBuilder(),
		stepPrompt:  prompts.NewStepImagePromptBuilder(args.Config.StyleSuffix),
		illustrator: illustrator,
	}, nil
}

// initializeAIClient は画像生成キットに渡す gemini クライアントを初期化します。
func initializeAIClient(ctx context.Context, apiKey string) (gemini.GenerativeModel, error) {
	clientConfig := gemini.Config{
		APIKey:      apiKey,
		Temperature: genai.Ptr(defaultGeminiTemperature),
	}
	aiClient, err := gemini.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return aiClient, nil
}
