package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// logoutCmd は、ローカルセッションを破棄してプロバイダーのログアウトURLを案内するのだ。
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "セッションを破棄してログアウトするのだ。",
	Long: `ローカルに保存されたセッションを削除するのだ。ブラウザ側のSSOセッションも
終わらせたい場合に備えて、IDプロバイダーのログアウトURLも表示するのだよ。`,
	RunE: logoutCommand,
}

func logoutCommand(cmd *cobra.Command, args []string) error {
	sm, err := newSessionManager()
	if err != nil {
		return err
	}

	returnTo, err := cmd.Flags().GetString("return-to")
	if err != nil {
		return err
	}

	logoutURL, err := sm.Logout(returnTo)
	if err != nil {
		return fmt.Errorf("ログアウトに失敗したのだ: %w", err)
	}

	fmt.Println("✓ Logged out.")
	fmt.Printf("To end the provider session too, visit:\n%s\n", logoutURL)
	return nil
}

func init() {
	logoutCmd.Flags().String("return-to", "", "プロバイダーからのログアウト後に戻るURLなのだ。")
}
