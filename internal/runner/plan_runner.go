package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shouni/go-repair-kit/internal/config"
	"github.com/shouni/go-repair-kit/pkg/domain"
	"github.com/shouni/go-repair-kit/pkg/workflow"

	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// planFileMIME は修理プランJSONの保存時に付与するコンテンツタイプなのだ。
const planFileMIME = "application/json; charset=utf-8"

// PlanRunner は、破損状況の報告から修理プランを組み立てるインターフェースなのだ。
type PlanRunner interface {
	// Run はプラン生成パイプラインを実行し、構造化された修理プランを返すのだ。
	Run(ctx context.Context) (domain.RepairPlan, error)
}

// RepairPlanRunner は、写真と説明文から修理プラン（JSON）を生成する核となる構造体なのだ。
type RepairPlanRunner struct {
	options config.GenerateOptions // 実行時のコマンドライン引数や設定
	planner workflow.PlanRunner    // 写真を解析して修理手順を組み立てるエンジン
	writer  remoteio.OutputWriter  // ローカルやGCSへプランJSONを書き出すライター
}

// NewRepairPlanRunner は、RepairPlanRunnerの新しいインスタンスを生成して返すのだ。
func NewRepairPlanRunner(
	options config.GenerateOptions,
	planner workflow.PlanRunner,
	writer remoteio.OutputWriter,
) *RepairPlanRunner {
	return &RepairPlanRunner{
		options: options,
		planner: planner,
		writer:  writer,
	}
}

// Run は、写真の読み込み、AIによるプラン生成、結果の保存までを一気に行うのだ。
func (pr *RepairPlanRunner) Run(ctx context.Context) (domain.RepairPlan, error) {
	// 1. 写真と説明文からAIに修理プランを組み立てさせるのだ
	plan, err := pr.planner.Run(ctx, pr.options.PhotoPath, pr.options.Description)
	if err != nil {
		return domain.RepairPlan{}, fmt.Errorf("修理プランの生成に失敗したのだ: %w", err)
	}

	// 2. --plan-file の指定がある場合だけJSONとして永続化するのだ
	if pr.options.PlanFile != "" {
		if err := pr.savePlan(ctx, plan); err != nil {
			return domain.RepairPlan{}, err
		}
		slog.Info("修理プランを保存したのだ！", "path", pr.options.PlanFile, "steps", len(plan.Steps))
	}

	return plan, nil
}

// savePlan は、修理プランを整形済みJSONとして書き出すのだ。
func (pr *RepairPlanRunner) savePlan(ctx context.Context, plan domain.RepairPlan) error {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("修理プランのJSON変換に失敗したのだ: %w", err)
	}
	if err := pr.writer.Write(ctx, pr.options.PlanFile, bytes.NewReader(data), planFileMIME); err != nil {
		return fmt.Errorf("修理プランの書き込みに失敗したのだ: %w", err)
	}
	return nil
}
