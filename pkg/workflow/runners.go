package workflow

import (
	"context"
	"fmt"

	"github.com/shouni/go-repair-kit/pkg/domain"
	"github.com/shouni/go-repair-kit/pkg/guide"
	"github.com/shouni/go-repair-kit/pkg/planner"
	"github.com/shouni/go-repair-kit/pkg/publisher"

	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// BuildPlanRunner は、修理プラン生成を担当する Runner を作成します。
func (m *Manager) BuildPlanRunner() (PlanRunner, error) {
	return &planRunner{
		reader:  m.reader,
		planner: planner.NewRepairPlanner(m.planClient, m.planPrompt, m.cfg.GeminiModel),
	}, nil
}

// BuildGuideRunner は、プランからの挿絵付きガイド組み上げを担当する Runner を作成します。
func (m *Manager) BuildGuideRunner() (GuideRunner, error) {
	composer, err := guide.NewGuideComposer(m.illustrator, m.stepPrompt, m.cfg.RateInterval)
	if err != nil {
		return nil, fmt.Errorf("composer の初期化に失敗しました: %w", err)
	}
	return &guideRunner{composer: composer}, nil
}

// BuildGenerateRunner は、写真からガイドまでの一気通貫生成を担当する Runner を作成します。
func (m *Manager) BuildGenerateRunner() (GenerateRunner, error) {
	composer, err := guide.NewGuideComposer(m.illustrator, m.stepPrompt, m.cfg.RateInterval)
	if err != nil {
		return nil, fmt.Errorf("composer の初期化に失敗しました: %w", err)
	}
	gen, err := guide.NewGenerator(planner.NewRepairPlanner(m.planClient, m.planPrompt, m.cfg.GeminiModel), composer)
	if err != nil {
		return nil, fmt.Errorf("generator の初期化に失敗しました: %w", err)
	}
	return &generateRunner{reader: m.reader, generator: gen}, nil
}

// BuildPublishRunner は、成果物のパブリッシュを担当する Runner を作成します。
func (m *Manager) BuildPublishRunner() (PublishRunner, error) {
	pub := publisher.NewGuidePublisher(m.writer, publisher.NewHTMLRunner())
	return &publishRunner{pub: pub}, nil
}

// planRunner は写真の読み込みとプラン生成をつなぐ実体です。
type planRunner struct {
	reader  remoteio.InputReader
	planner *planner.RepairPlanner
}

func (r *planRunner) Run(ctx context.Context, photoPath string, description string) (domain.RepairPlan, error) {
	report, err := loadProblemReport(ctx, r.reader, photoPath, description)
	if err != nil {
		return domain.RepairPlan{}, err
	}
	return r.planner.BuildPlan(ctx, report)
}

// guideRunner はプランからガイドへの変換をつなぐ実体です。
type guideRunner struct {
	composer *guide.GuideComposer
}

func (r *guideRunner) Run(ctx context.Context, plan domain.RepairPlan, seedText string, onProgress guide.ProgressFunc) (domain.RepairGuide, error) {
	return r.composer.Compose(ctx, plan, seedText, onProgress)
}

// generateRunner は写真の読み込みから一気通貫生成までをつなぐ実体です。
type generateRunner struct {
	reader    remoteio.InputReader
	generator *guide.Generator
}

func (r *generateRunner) Run(ctx context.Context, photoPath string, description string, onProgress guide.ProgressFunc) (domain.RepairGuide, error) {
	report, err := loadProblemReport(ctx, r.reader, photoPath, description)
	if err != nil {
		return domain.RepairGuide{}, err
	}
	return r.generator.Generate(ctx, report, onProgress)
}

// publishRunner はガイドのパブリッシュをつなぐ実体です。
type publishRunner struct {
	pub *publisher.GuidePublisher
}

func (r *publishRunner) Run(ctx context.Context, title string, g domain.RepairGuide, outputDir string) (publisher.PublishResult, error) {
	return r.pub.Publish(ctx, title, g, publisher.Options{OutputDir: outputDir})
}

// loadProblemReport はローカル/GCSの写真を読み込み、検証済みレポートを組み立てます。
func loadProblemReport(ctx context.Context, reader remoteio.InputReader, photoPath string, description string) (domain.ProblemReport, error) {
	rc, err := reader.Open(ctx, photoPath)
	if err != nil {
		return domain.ProblemReport{}, fmt.Errorf("写真を開けませんでした %s: %w", photoPath, err)
	}
	defer rc.Close()

	return domain.NewProblemReport(rc, description)
}
