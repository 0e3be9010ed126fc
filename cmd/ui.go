package cmd

import (
	"context"
	"fmt"

	"github.com/shouni/go-repair-kit/internal/auth"
	"github.com/shouni/go-repair-kit/internal/builder"
	"github.com/shouni/go-repair-kit/internal/config"
	"github.com/shouni/go-repair-kit/internal/pipeline"
	"github.com/shouni/go-repair-kit/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// uiCmd は、対話シェル（認証ゲート → フォーム → 生成中 → 結果）を起動するのだ。
var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "対話シェルで修理ガイドを生成するのだ。",
	Long: `ターミナル上の対話シェルを起動するのだ。ログイン状態の確認から始まり、
写真の選択と説明文の入力、生成の進捗表示、完成したガイドの閲覧と保存までを
ひとつの画面で行えるのだよ。`,
	RunE: uiCommand,
}

func uiCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 1. IDプロバイダー設定の確認。未設定なら起動せずに設定エラーを返すのだ
	sm, err := newSessionManager()
	if err != nil {
		return err
	}

	// 2. 生成パイプラインの組み立て
	cfg := config.LoadConfig()
	cfg.Options = opts

	appCtx, err := pipeline.SetupAppContext(ctx, cfg)
	if err != nil {
		return fmt.Errorf("生成パイプラインの初期化に失敗したのだ: %w", err)
	}

	engine, err := appCtx.Manager.BuildGenerateRunner()
	if err != nil {
		return fmt.Errorf("生成エンジンの構築に失敗したのだ: %w", err)
	}
	publisherRunner, err := builder.BuildPublisherRunner(appCtx)
	if err != nil {
		return fmt.Errorf("公開エンジンの構築に失敗したのだ: %w", err)
	}

	// 3. シェルの起動
	model := tui.NewModel(ctx, tui.Deps{
		Auth: sm,
		Login: func(ctx context.Context) (auth.User, error) {
			return runBrowserLogin(ctx, sm)
		},
		Logout: func() error {
			_, err := sm.Logout("")
			return err
		},
		Engine:    engine,
		Publisher: publisherRunner,
	})

	program := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("対話シェルの実行中にエラーが発生したのだ: %w", err)
	}
	return nil
}
