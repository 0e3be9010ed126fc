package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-repair-kit/internal/config"
	"github.com/shouni/go-repair-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// generateCmd は、写真と説明文から修理ガイドの生成までを一気通貫で実行するのだ。
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "AIに修理プランと手順ごとの挿絵を生成させますなのだ。",
	Long: `破損箇所の写真と説明文を解析し、修理プランの立案、各手順の挿絵生成、
Markdown/HTMLへの保存までを実行するのだ。出力は画像ファイル（手順ごと）と
チュートリアル文書になるのだよ。`,
	RunE: generateCommand,
}

func init() {
}

func generateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 1. 必須チェック
	if opts.PhotoPath == "" {
		return fmt.Errorf("破損箇所の写真（--photo）を指定してほしいのだ")
	}
	if strings.TrimSpace(opts.Description) == "" {
		return fmt.Errorf("破損状況の説明文（--description）を指定してほしいのだ")
	}

	// 2. 環境変数等から基本設定をロードするのだ
	cfg := config.LoadConfig()
	cfg.Options = opts

	slog.Info("修理ガイド生成パイプラインを起動するのだ！",
		"photo", opts.PhotoPath,
		"text_model", cfg.GeminiModel,
		"image_model", cfg.GeminiImageModel,
		"output_dir", opts.OutputDir)

	// 3. 更新した config を考慮しつつパイプラインを実行するのだ
	err := pipeline.ExecuteGenerate(ctx, cfg)
	if err != nil {
		return fmt.Errorf("パイプライン実行中にエラーが発生したのだ: %w", err)
	}

	slog.Info("すべての生成工程が完了したのだ！")
	return nil
}
