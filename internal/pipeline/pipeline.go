package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-repair-kit/examples"
	"github.com/shouni/go-repair-kit/internal/builder"
	"github.com/shouni/go-repair-kit/internal/config"
	"github.com/shouni/go-repair-kit/pkg/domain"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// ExecuteGenerate は、破損箇所の写真と説明文から修理プランの立案、
// 各手順の挿絵生成、Markdown/HTMLへの公開までを一気通貫で実行するのだ。
func ExecuteGenerate(ctx context.Context, cfg *config.Config) error {
	appCtx, err := SetupAppContext(ctx, cfg)
	if err != nil {
		return err
	}

	// --- Phase 1 & 2: プラン立案とチュートリアル挿絵の生成 ---
	guideRunner, err := builder.BuildGuideRunner(appCtx)
	if err != nil {
		return fmt.Errorf("GuideRunnerの構築に失敗したのだ: %w", err)
	}

	slog.Info("Phase 1: 修理プランの立案と挿絵生成を開始するのだ...", "photo", cfg.Options.PhotoPath)
	repairGuide, err := guideRunner.Run(ctx)
	if err != nil {
		return err
	}

	// --- Phase 3: Publish Phase (公開/保存) ---
	if err := runPublishStep(ctx, appCtx, repairGuide); err != nil {
		return err
	}

	slog.Info("修理ガイドが完成したのだ！", "steps", len(repairGuide.Steps))
	return nil
}

// ExecutePlanOnly は、写真の解析と修理プランの立案（Phase 1）だけを実行し、
// 後続の挿絵生成で再利用できるJSONとして保存するのだ。
func ExecutePlanOnly(ctx context.Context, cfg *config.Config) error {
	appCtx, err := SetupAppContext(ctx, cfg)
	if err != nil {
		return err
	}

	planRunner, err := builder.BuildPlanRunner(appCtx)
	if err != nil {
		return fmt.Errorf("PlanRunnerの構築に失敗したのだ: %w", err)
	}

	slog.Info("Phase 1: 修理プランの立案を開始するのだ...", "photo", cfg.Options.PhotoPath)
	plan, err := planRunner.Run(ctx)
	if err != nil {
		return err
	}

	slog.Info("修理プランの立案が完了したのだ！", "steps", len(plan.Steps), "warning", plan.SafetyWarning != "")
	return nil
}

// ExecuteFromPlan は、すでに Phase 1 で出力された修理プランJSONを基に、
// 挿絵生成と公開処理だけを実行する最終ステージなのだ！
func ExecuteFromPlan(ctx context.Context, cfg *config.Config) error {
	appCtx, err := SetupAppContext(ctx, cfg)
	if err != nil {
		return err
	}

	plan, err := loadPlan(ctx, appCtx.Reader, cfg.Options.PlanFile)
	if err != nil {
		return err
	}

	// --- Phase 2: 挿絵生成 ---
	guideRunner, err := builder.BuildGuideRunner(appCtx)
	if err != nil {
		return fmt.Errorf("GuideRunnerの構築に失敗したのだ: %w", err)
	}

	slog.Info("Phase 2: 挿絵生成を開始するのだ...", "steps", len(plan.Steps))
	repairGuide, err := guideRunner.RunFromPlan(ctx, plan)
	if err != nil {
		return err
	}

	// --- Phase 3: Publish Phase (公開/保存) ---
	if err := runPublishStep(ctx, appCtx, repairGuide); err != nil {
		return err
	}

	slog.Info("挿絵生成と公開処理が完了したのだ！")
	return nil
}

// loadPlan は修理プランJSONを読み込むのだ。パスが空のときは同梱の
// サンプルプランにフォールバックするので、手元にプランがなくても
// illustrate コマンドを試せるのだ。
func loadPlan(ctx context.Context, reader remoteio.InputReader, planFile string) (domain.RepairPlan, error) {
	if planFile == "" {
		slog.Info("プランファイル未指定なので同梱のサンプルプランを使うのだ")
		plan, err := examples.LoadRepairPlan()
		if err != nil {
			return domain.RepairPlan{}, err
		}
		return *plan, nil
	}

	rc, err := reader.Open(ctx, planFile)
	if err != nil {
		return domain.RepairPlan{}, fmt.Errorf("プランファイル '%s' の読み込みに失敗しました: %w", planFile, err)
	}
	defer rc.Close()

	var plan domain.RepairPlan
	if err := json.NewDecoder(rc).Decode(&plan); err != nil {
		return domain.RepairPlan{}, fmt.Errorf("プランファイル '%s' のデコードに失敗しました: %w", planFile, err)
	}
	return plan, nil
}

// SetupAppContext は、提供された設定と共有コンポーネントを使用して、アプリケーションコンテキストを初期化して返すのだ。
// ライフサイクル管理用の context と設定オブジェクトを受け取るのだ。
// 初期化中にエラーが発生した場合は、AppContext のポインタとエラーを返すのだ。
func SetupAppContext(ctx context.Context, cfg *config.Config) (*builder.AppContext, error) {
	timeout := config.DefaultHTTPTimeout
	if cfg.Options.HTTPTimeout > time.Duration(0) {
		timeout = cfg.Options.HTTPTimeout
	}
	httpClient := httpkit.New(timeout)

	gcsFactory, err := gcsfactory.NewGCSClientFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client factory: %w", err)
	}

	reader, err := gcsFactory.NewInputReader()
	if err != nil {
		return nil, err
	}
	writer, err := gcsFactory.NewOutputWriter()
	if err != nil {
		return nil, err
	}

	// Managerを一度だけ初期化
	manager, err := builder.InitializeManager(ctx, cfg, httpClient, reader, writer)
	if err != nil {
		return nil, err
	}

	appCtx := builder.NewAppContext(cfg, httpClient, reader, writer, manager)
	return &appCtx, nil
}

// runPublishStep は PublisherRunner を使って最終成果物を保存するのだ
func runPublishStep(ctx context.Context, appCtx *builder.AppContext, g domain.RepairGuide) error {
	slog.Info("Phase 3: 公開処理を開始するのだ...")
	publishRunner, err := builder.BuildPublisherRunner(appCtx)
	if err != nil {
		return fmt.Errorf("PublishRunnerの構築に失敗したのだ: %w", err)
	}

	result, err := publishRunner.Run(ctx, g)
	if err != nil {
		return fmt.Errorf("公開処理に失敗したのだ: %w", err)
	}

	slog.Info("成果物を保存したのだ！", "markdown", result.MarkdownPath, "html", result.HTMLPath, "images", len(result.ImagePaths))
	return nil
}
