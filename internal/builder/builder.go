package builder

import (
	"context"
	"fmt"

	"github.com/shouni/go-repair-kit/internal/config"
	"github.com/shouni/go-repair-kit/internal/runner"
	"github.com/shouni/go-repair-kit/pkg/workflow"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// NewWorkflowConfig は、環境変数由来の設定とCLIオプションを pkg/workflow 用の
// 設定へ合成するのだ。CLIフラグで指定があった項目はデフォルトより優先するのだ。
func NewWorkflowConfig(cfg *config.Config) workflow.Config {
	wfCfg := workflow.NewConfig(cfg.GeminiAPIKey)
	wfCfg.GeminiModel = cfg.GeminiModel
	wfCfg.ImageModel = cfg.GeminiImageModel
	wfCfg.StyleSuffix = cfg.ImagePromptSuffix
	wfCfg.RateInterval = config.DefaultRateLimit

	if cfg.Options.AIModel != "" {
		wfCfg.GeminiModel = cfg.Options.AIModel
	}
	if cfg.Options.ImageModel != "" {
		wfCfg.ImageModel = cfg.Options.ImageModel
	}
	if cfg.Options.HTTPTimeout > 0 {
		wfCfg.RequestTimeout = cfg.Options.HTTPTimeout
	}
	return wfCfg
}

// InitializeManager は、共有依存からワークフローの Manager を初期化します。
func InitializeManager(
	ctx context.Context,
	cfg *config.Config,
	httpClient httpkit.ClientInterface,
	reader remoteio.InputReader,
	writer remoteio.OutputWriter,
) (*workflow.Manager, error) {
	manager, err := workflow.New(ctx, workflow.ManagerArgs{
		Config:     NewWorkflowConfig(cfg),
		HTTPClient: httpClient,
		Reader:     reader,
		Writer:     writer,
	})
	if err != nil {
		return nil, fmt.Errorf("ワークフローマネージャーの初期化に失敗しました: %w", err)
	}
	return manager, nil
}

// BuildPlanRunner は修理プランの生成と保存を担当する Runner を構築します。
func BuildPlanRunner(appCtx *AppContext) (runner.PlanRunner, error) {
	planEngine, err := appCtx.Manager.BuildPlanRunner()
	if err != nil {
		return nil, fmt.Errorf("プラン生成エンジンの構築に失敗したのだ: %w", err)
	}
	return runner.NewRepairPlanRunner(appCtx.Options, planEngine, appCtx.Writer), nil
}

// BuildGuideRunner は挿絵付き修理ガイドの生成を担当する Runner を構築します。
func BuildGuideRunner(appCtx *AppContext) (*runner.TutorialImageRunner, error) {
	generateEngine, err := appCtx.Manager.BuildGenerateRunner()
	if err != nil {
		return nil, fmt.Errorf("ガイド生成エンジンの構築に失敗したのだ: %w", err)
	}

	guideEngine, err := appCtx.Manager.BuildGuideRunner()
	if err != nil {
		return nil, fmt.Errorf("挿絵生成エンジンの構築に失敗したのだ: %w", err)
	}

	return runner.NewTutorialImageRunner(appCtx.Options, generateEngine, guideEngine), nil
}

// BuildPublisherRunner はガイドの保存と変換を行う Runner を構築します。
func BuildPublisherRunner(appCtx *AppContext) (runner.PublisherRunner, error) {
	publishEngine, err := appCtx.Manager.BuildPublishRunner()
	if err != nil {
		return nil, fmt.Errorf("公開エンジンの構築に失敗したのだ: %w", err)
	}
	return runner.NewDefaultPublisherRunner(appCtx.Options, publishEngine), nil
}
