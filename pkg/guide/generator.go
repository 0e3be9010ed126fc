package guide

import (
	"context"
	"errors"
	"fmt"

	"github.com/shouni/go-repair-kit/pkg/domain"
)

// PlanningMessage はプラン解析フェーズの開始時に通知する進捗メッセージです。
const PlanningMessage = "Analyzing item and planning repair…"

// StepMessage は手順 step/total の挿絵生成開始時の進捗メッセージを返します。
func StepMessage(step, total int) string {
	return fmt.Sprintf("Generating image for step %d of %d…", step, total)
}

// Progress は生成パイプラインの進捗1件です。
type Progress struct {
	Message string
	Step    int // 1始まり。プラン解析中は 0
	Total   int // 全手順数。プラン解析中は 0
}

// ProgressFunc は進捗通知のコールバックです。nil なら通知を省略します。
type ProgressFunc func(Progress)

func notify(fn ProgressFunc, p Progress) {
	if fn != nil {
		fn(p)
	}
}

// Planner は問題レポートから修理プランを導く層の抽象です。
type Planner interface {
	BuildPlan(ctx context.Context, report domain.ProblemReport) (domain.RepairPlan, error)
}

// Generator は「入力検証 → プラン生成 → 挿絵合成」を貫通で実行する
// ファサードです。途中のどこで失敗しても型付きエラーを返し、
// 部分的な成果物は返しません。
type Generator struct {
	planner  Planner
	composer *GuideComposer
}

// NewGenerator は Generator を初期化します。
func NewGenerator(planner Planner, composer *GuideComposer) (*Generator, error) {
	if planner == nil {
		return nil, errors.New("planner は必須です")
	}
	if composer == nil {
		return nil, errors.New("composer は必須です")
	}
	return &Generator{planner: planner, composer: composer}, nil
}

// Generate は写真と説明文から挿絵付き修理ガイドを生成します。
func (g *Generator) Generate(ctx context.Context, report domain.ProblemReport, onProgress ProgressFunc) (domain.RepairGuide, error) {
	if err := report.Validate(); err != nil {
		return domain.RepairGuide{}, err
	}

	notify(onProgress, Progress{Message: PlanningMessage})
	plan, err := g.planner.BuildPlan(ctx, report)
	if err != nil {
		return domain.RepairGuide{}, err
	}

	return g.composer.Compose(ctx, plan, report.Description, onProgress)
}
