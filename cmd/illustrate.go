package cmd

import (
	"log/slog"

	"github.com/shouni/go-repair-kit/internal/config"
	"github.com/shouni/go-repair-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// illustrateCmd は、既存の修理プランJSONを読み込んで挿絵生成フェーズを実行するためのサブコマンドなのだ。
// プラン立案をスキップして、挿絵生成（Phase 2）とパブリッシュ（Phase 3）のみを行うのだ。
var illustrateCmd = &cobra.Command{
	Use:   "illustrate",
	Short: "修理プランJSONから挿絵を生成して保存するのだ。",
	Long: `すでに生成・修正済みの修理プランJSONファイルを読み込み、各手順の挿絵生成と保存を実行するのだ。
テキスト生成のコストを抑えつつ、挿絵の再生成や調整を行いたい場合に便利なのだ。
--plan-file を省略すると、同梱のサンプルプランで動作を試せるのだよ。`,
	RunE: illustrateCommand,
}

// init は、illustrate コマンドに必要なフラグを定義し、コマンド体系に登録するための初期化関数なのだ。
func init() {
}

// illustrateCommand は、illustrate サブコマンドの実行ロジック本体なのだ。
// 設定のバリデーションを行い、pipeline.ExecuteFromPlan を呼び出して一連の処理をキックするのだ。
func illustrateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 1. 環境変数から基本設定をロード
	cfg := config.LoadConfig()

	// 2. コマンドライン引数の値を反映
	cfg.Options = opts

	// --plan-file 未指定時は同梱のサンプルプランにフォールバックするのだ
	planSource := cfg.Options.PlanFile
	if planSource == "" {
		planSource = "(embedded sample plan)"
	}

	slog.Info("挿絵生成モードを起動するのだ！",
		"input_json", planSource,
		"output_dir", cfg.Options.OutputDir,
		"image_model", cfg.GeminiImageModel)

	// 3. パイプライン実行
	return pipeline.ExecuteFromPlan(ctx, cfg)
}
