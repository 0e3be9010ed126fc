package cmd

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/shouni/go-repair-kit/internal/auth"

	"github.com/spf13/cobra"
)

// loginTimeout はブラウザでの認証完了を待つ上限なのだ。
const loginTimeout = 5 * time.Minute

// loginCmd は、PKCE付き認可コードフローでIDプロバイダーにログインするのだ。
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "ブラウザ経由でIDプロバイダーにログインするのだ。",
	Long: `PKCE付き認可コードフローでログインして、セッションをローカルに保存するのだ。
テナントドメインとクライアントIDは環境変数（AUTH_DOMAIN / AUTH_CLIENT_ID）から
読み込むのだよ。コードに直書きは禁止なのだ。`,
	RunE: loginCommand,
}

func loginCommand(cmd *cobra.Command, args []string) error {
	sm, err := newSessionManager()
	if err != nil {
		return err
	}

	user, err := runBrowserLogin(cmd.Context(), sm)
	if err != nil {
		return fmt.Errorf("ログインに失敗したのだ: %w", err)
	}

	fmt.Printf("✓ Logged in as %s\n", user.Name)
	return nil
}

// newSessionManager は環境変数からIDプロバイダー設定を読み込んでセッション管理を用意するのだ。
func newSessionManager() (*auth.SessionManager, error) {
	authCfg, err := auth.LoadConfig()
	if err != nil {
		return nil, err
	}
	sm, err := auth.NewSessionManager(authCfg)
	if err != nil {
		return nil, err
	}
	// 初回実行ではセッションファイルが無いのが正常なのだ
	_ = sm.Load()
	return sm, nil
}

// runBrowserLogin はブラウザを開いて認可コードフローを最後まで実行するのだ。
func runBrowserLogin(parent context.Context, sm *auth.SessionManager) (auth.User, error) {
	flow, err := sm.StartLogin()
	if err != nil {
		return auth.User{}, err
	}

	fmt.Println("\nOpening browser for login...")
	fmt.Printf("If the browser doesn't open, visit:\n%s\n\n", flow.AuthURL)
	_ = openBrowser(flow.AuthURL)

	ctx, cancel := context.WithTimeout(parent, loginTimeout)
	defer cancel()

	code, err := sm.WaitForCallback(ctx, flow.State)
	if err != nil {
		return auth.User{}, err
	}

	session, err := sm.ExchangeCode(ctx, code, flow.Verifier)
	if err != nil {
		return auth.User{}, err
	}
	return session.User, nil
}

// openBrowser は各OSの標準コマンドでURLを開くのだ
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
