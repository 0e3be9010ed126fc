package cmd

import (
	"fmt"
	"os"

	"github.com/shouni/go-repair-kit/internal/config"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"
)

// opts は各サブコマンドが共有する実行時オプションなのだ。
// フラグの紐付けは addAppFlags で行うのだよ。
var opts config.GenerateOptions

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	// --- ソース入力関連 ---
	rootCmd.PersistentFlags().StringVarP(&opts.PhotoPath, "photo", "p", "", "破損箇所の写真のパス（ローカル or gs://...）なのだ。")
	rootCmd.PersistentFlags().StringVarP(&opts.Description, "description", "d", "", "破損状況の説明文なのだ。")
	rootCmd.PersistentFlags().StringVarP(&opts.PlanFile, "plan-file", "f", "", "修理プランJSONのパス（planで保存先、illustrateで読込元なのだ）。")

	// --- 生成結果の出力設定 ---
	rootCmd.PersistentFlags().StringVarP(&opts.Title, "title", "t", "", "修理ガイドのタイトルなのだ。")
	rootCmd.PersistentFlags().StringVarP(&opts.OutputDir, "output-dir", "o", config.DefaultOutputDir, "成果物の保存先ディレクトリ（ローカル or gs://...）なのだ。")

	// --- AIモデル・挙動設定 ---
	rootCmd.PersistentFlags().StringVar(&opts.AIModel, "model", "", "プラン生成に使う Gemini モデル名なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.ImageModel, "image-model", "", "挿絵生成に使う Gemini モデル名なのだ。")
	rootCmd.PersistentFlags().DurationVar(&opts.HTTPTimeout, "http-timeout", config.DefaultHTTPTimeout, "外部APIリクエストのタイムアウトなのだ。")
}

// authCommands は GEMINI_API_KEY の代わりにIDプロバイダー設定を必要とするコマンド群なのだ。
var authCommands = map[string]bool{
	"login":  true,
	"logout": true,
	"whoami": true,
}

// preRunAppE は、コマンド実行前に環境変数などの必須チェックを行うのだ。
// 生成系コマンドは GEMINI_API_KEY、認証系コマンドはIDプロバイダー設定が必須なのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	if authCommands[cmd.Name()] {
		if os.Getenv("AUTH_DOMAIN") == "" || os.Getenv("AUTH_CLIENT_ID") == "" {
			return fmt.Errorf("エラー: 環境変数 AUTH_DOMAIN と AUTH_CLIENT_ID が設定されていません。IDプロバイダーの利用には必須なのだ")
		}
		return nil
	}

	// Gemini APIを利用するため、APIキーの存在チェックは欠かせないのだ！
	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("エラー: 環境変数 GEMINI_API_KEY が設定されていません。Gemini APIの利用には必須なのだ")
	}

	return nil
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	clibase.Execute(
		"ap-repair-go",
		addAppFlags,
		preRunAppE,
		generateCmd,
		planCmd,
		illustrateCmd,
		uiCmd,
		loginCmd,
		logoutCmd,
		whoamiCmd,
	)
}
