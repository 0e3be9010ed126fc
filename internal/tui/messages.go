package tui

import (
	"errors"

	"github.com/shouni/go-repair-kit/internal/auth"
	"github.com/shouni/go-repair-kit/pkg/domain"
	"github.com/shouni/go-repair-kit/pkg/guide"
	"github.com/shouni/go-repair-kit/pkg/publisher"

	tea "github.com/charmbracelet/bubbletea"
)

// 依存が注入されていないときに画面へ出すエラーなのだ
var (
	errLoginUnavailable = errors.New("login is not available in this session")
	errSaveUnavailable  = errors.New("saving is not available in this session")
)

// tea の更新ループへ流すメッセージ群なのだ
type (
	// authCheckedMsg はセッション確認（認証ゲート）の結果なのだ
	authCheckedMsg struct {
		authenticated bool
		user          auth.User
	}

	// loginFinishedMsg はブラウザ経由のログインフローの完了通知なのだ
	loginFinishedMsg struct {
		user auth.User
		err  error
	}

	// logoutFinishedMsg はセッション破棄の完了通知なのだ
	logoutFinishedMsg struct {
		err error
	}

	// progressMsg は生成パイプラインの進捗チェックポイント1件なのだ
	progressMsg guide.Progress

	// progressClosedMsg は進捗チャネルが閉じたことを示すのだ
	progressClosedMsg struct{}

	// guideReadyMsg は修理ガイド生成の最終結果なのだ
	guideReadyMsg struct {
		guide domain.RepairGuide
		err   error
	}

	// savedMsg はガイド保存（公開処理）の結果なのだ
	savedMsg struct {
		result publisher.PublishResult
		err    error
	}
)

// checkAuth は保存済みセッションを確認して認証ゲートの判定を返すのだ
func (m Model) checkAuth() tea.Cmd {
	return func() tea.Msg {
		if m.deps.Auth == nil {
			return authCheckedMsg{}
		}
		user, ok := m.deps.Auth.CurrentUser()
		return authCheckedMsg{
			authenticated: m.deps.Auth.IsAuthenticated() && ok,
			user:          user,
		}
	}
}

// startLogin はブラウザ経由のログインフローをバックグラウンドで実行するのだ
func (m Model) startLogin() tea.Cmd {
	login := m.deps.Login
	ctx := m.ctx
	return func() tea.Msg {
		if login == nil {
			return loginFinishedMsg{err: errLoginUnavailable}
		}
		user, err := login(ctx)
		return loginFinishedMsg{user: user, err: err}
	}
}

// startLogout はセッションを破棄するのだ
func (m Model) startLogout() tea.Cmd {
	logout := m.deps.Logout
	return func() tea.Msg {
		if logout == nil {
			return logoutFinishedMsg{}
		}
		return logoutFinishedMsg{err: logout()}
	}
}

// startGeneration は修理ガイドの生成を別ゴルーチンで開始するのだ。
// 進捗はチャネル経由で progressMsg として流し込むのだ。
func (m Model) startGeneration() tea.Cmd {
	engine := m.deps.Engine
	ctx := m.ctx
	photoPath := m.photoPath
	description := m.description.Value()
	ch := m.progressChan
	return func() tea.Msg {
		g, err := engine.Run(ctx, photoPath, description, func(p guide.Progress) {
			ch <- p
		})
		close(ch)
		return guideReadyMsg{guide: g, err: err}
	}
}

// waitForProgress は次の進捗チェックポイントを待ち受けるのだ
func waitForProgress(ch <-chan guide.Progress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return progressClosedMsg{}
		}
		return progressMsg(p)
	}
}

// startPublish は完成したガイドをファイルへ書き出すのだ
func (m Model) startPublish() tea.Cmd {
	pub := m.deps.Publisher
	ctx := m.ctx
	g := m.guide
	return func() tea.Msg {
		if pub == nil {
			return savedMsg{err: errSaveUnavailable}
		}
		result, err := pub.Run(ctx, g)
		return savedMsg{result: result, err: err}
	}
}
