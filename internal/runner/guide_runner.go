package runner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-repair-kit/internal/config"
	"github.com/shouni/go-repair-kit/pkg/domain"
	"github.com/shouni/go-repair-kit/pkg/guide"
	"github.com/shouni/go-repair-kit/pkg/workflow"
)

// TutorialImageRunner は、修理ガイドの生成（プラン解析と挿絵付け）を管理するのだ。
type TutorialImageRunner struct {
	options     config.GenerateOptions
	generator   workflow.GenerateRunner // 写真から一気通貫でガイドを生成するエンジン
	illustrator workflow.GuideRunner    // 既存プランに挿絵を付けるエンジン
}

// NewTutorialImageRunner は、TutorialImageRunnerの新しいインスタンスを生成して返すのだ。
func NewTutorialImageRunner(
	options config.GenerateOptions,
	generator workflow.GenerateRunner,
	illustrator workflow.GuideRunner,
) *TutorialImageRunner {
	return &TutorialImageRunner{
		options:     options,
		generator:   generator,
		illustrator: illustrator,
	}
}

// Run は、写真と説明文からプラン生成と挿絵生成までを一気通貫で実行するのだ。
func (r *TutorialImageRunner) Run(ctx context.Context) (domain.RepairGuide, error) {
	g, err := r.generator.Run(ctx, r.options.PhotoPath, r.options.Description, logProgress)
	if err != nil {
		return domain.RepairGuide{}, fmt.Errorf("修理ガイドの生成に失敗したのだ: %w", err)
	}
	return g, nil
}

// RunFromPlan は、検証済みの修理プランを受け取って挿絵付けだけを実行するのだ。
func (r *TutorialImageRunner) RunFromPlan(ctx context.Context, plan domain.RepairPlan) (domain.RepairGuide, error) {
	g, err := r.illustrator.Run(ctx, plan, r.seedText(plan), logProgress)
	if err != nil {
		return domain.RepairGuide{}, fmt.Errorf("挿絵の生成に失敗したのだ: %w", err)
	}
	return g, nil
}

// seedText は、挿絵の画風を全手順で揃えるためのシード素材を決めるのだ。
// 説明文があればそれを使い、なければプラン自身の指示文から組み立てるのだ。
func (r *TutorialImageRunner) seedText(plan domain.RepairPlan) string {
	if r.options.Description != "" {
		return r.options.Description
	}
	prompts := make([]string, 0, len(plan.Steps))
	for _, step := range plan.Steps {
		prompts = append(prompts, step.ImagePrompt)
	}
	return strings.Join(prompts, " ")
}

// logProgress は、生成パイプラインの進捗チェックポイントをログへ流すのだ。
func logProgress(p guide.Progress) {
	if p.Total > 0 {
		slog.Info(p.Message, "step", p.Step, "total", p.Total)
		return
	}
	slog.Info(p.Message)
}
