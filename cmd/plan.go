package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-repair-kit/internal/config"
	"github.com/shouni/go-repair-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// planCmd は、修理プランの立案（JSON出力）のみを実行するのだ。
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "修理プラン（JSON）のみを生成して保存するのだ。",
	Long: `破損箇所の写真と説明文を解析し、修理プラン（安全上の注意、3〜5件の手順、
挿絵指示）をJSON形式で出力するのだ。挿絵生成は行わないのだよ。`,
	RunE: planCommand,
}

func init() {
}

func planCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	// 1. 入力ソースの必須チェック (opts は addAppFlags で紐付け済みと想定)
	if opts.PhotoPath == "" {
		return fmt.Errorf("破損箇所の写真（--photo）を指定してほしいのだ")
	}
	if strings.TrimSpace(opts.Description) == "" {
		return fmt.Errorf("破損状況の説明文（--description）を指定してほしいのだ")
	}

	// --plan-file がユーザーによって指定されなかった場合、
	// planコマンド固有のデフォルト値を設定する
	if !cmd.Flags().Changed("plan-file") {
		opts.PlanFile = "output/repair_plan.json"
	}

	// 2. 設定のロード
	cfg := config.LoadConfig()
	cfg.Options = opts

	slog.Info("プラン立案モードを起動するのだ！",
		"photo", opts.PhotoPath,
		"text_model", cfg.GeminiModel,
		"output", cfg.Options.PlanFile)

	// 3. 実行
	err := pipeline.ExecutePlanOnly(ctx, cfg)
	if err != nil {
		return fmt.Errorf("プラン立案中にエラーが発生したのだ: %w", err)
	}

	slog.Info("修理プラン（JSON）の生成が完了したのだ！", "plan_file", opts.PlanFile)
	return nil
}
