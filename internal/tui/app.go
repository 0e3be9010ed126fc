package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shouni/go-repair-kit/internal/auth"
	"github.com/shouni/go-repair-kit/internal/runner"
	"github.com/shouni/go-repair-kit/pkg/domain"
	"github.com/shouni/go-repair-kit/pkg/guide"
	"github.com/shouni/go-repair-kit/pkg/publisher"
	"github.com/shouni/go-repair-kit/pkg/workflow"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// SessionState は対話シェルの画面遷移を表す状態機械なのだ。
// 認証ゲートから始まり、フォーム → 生成中 → 結果 と一方向に進んで、
// リセットでフォームに戻るのだ。
type SessionState int

const (
	StateAuthGate  SessionState = iota // 保存済みセッションの確認中
	StateLoggedOut                     // 未認証。ログイン操作だけを受け付ける
	StateForm                          // 写真と説明文の入力フォーム
	StateLoading                       // 生成パイプライン実行中
	StateResult                        // 完成した修理ガイドの表示
)

// formFocus はフォーム内のフォーカス位置なのだ
type formFocus int

const (
	focusPicker formFocus = iota
	focusDescription
	focusSubmit
)

// progressChanCap は進捗チャネルのバッファ長なのだ。
// プラン立案1件と挿絵の手順数（最大5件）を取りこぼさない深さにしてあるのだ。
const progressChanCap = 8

// Authenticator は、保存済みセッションの状態を問い合わせる最小インターフェースなのだ。
type Authenticator interface {
	IsAuthenticated() bool
	CurrentUser() (auth.User, bool)
}

// LoginFunc はブラウザ経由のログインフローを実行してユーザー情報を返すのだ。
type LoginFunc func(ctx context.Context) (auth.User, error)

// LogoutFunc はローカルセッションを破棄するのだ。
type LogoutFunc func() error

// Deps は対話シェルが依存する外部コンポーネントの束なのだ。
type Deps struct {
	Auth      Authenticator
	Login     LoginFunc
	Logout    LogoutFunc
	Engine    workflow.GenerateRunner
	Publisher runner.PublisherRunner
}

// Model は対話シェル全体の状態なのだ
type Model struct {
	ctx   context.Context
	deps  Deps
	state SessionState

	width    int
	height   int
	quitting bool

	user      auth.User
	loggingIn bool

	// フォーム
	filepicker  filepicker.Model
	description textarea.Model
	focus       formFocus
	photoPath   string

	// 生成中
	spinner      spinner.Model
	progress     []string
	progressChan chan guide.Progress

	// 結果
	guide    domain.RepairGuide
	viewport viewport.Model
	renderer *glamour.TermRenderer
	saved    publisher.PublishResult

	err error
}

// NewModel は認証ゲート状態から始まる対話シェルを組み立てるのだ。
func NewModel(ctx context.Context, deps Deps) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorAccent)

	ta := textarea.New()
	ta.Placeholder = "Describe the damage (e.g. Cracked wooden chair leg)"
	ta.ShowLineNumbers = false
	ta.SetHeight(4)

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)

	return Model{
		ctx:         ctx,
		deps:        deps,
		state:       StateAuthGate,
		filepicker:  newPhotoPicker(),
		description: ta,
		spinner:     s,
		viewport:    viewport.New(0, 0),
		renderer:    renderer,
	}
}

// newPhotoPicker は対応フォーマットだけを選択できるファイルピッカーを作るのだ
func newPhotoPicker() filepicker.Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}
	if cwd, err := os.Getwd(); err == nil {
		fp.CurrentDirectory = cwd
	}
	return fp
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.filepicker.Init(),
		m.checkAuth(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.description.SetWidth(min(msg.Width-6, 76))
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 8

	case authCheckedMsg:
		if msg.authenticated {
			m.user = msg.user
			m = m.enterForm()
		} else {
			m.state = StateLoggedOut
		}

	case loginFinishedMsg:
		m.loggingIn = false
		if msg.err != nil {
			m.err = msg.err
			m.state = StateLoggedOut
		} else {
			m.user = msg.user
			m.err = nil
			m = m.enterForm()
		}

	case logoutFinishedMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m = m.resetForm()
			m.user = auth.User{}
			m.state = StateLoggedOut
			cmds = append(cmds, m.filepicker.Init())
		}

	case progressMsg:
		m.progress = append(m.progress, msg.Message)
		cmds = append(cmds, waitForProgress(m.progressChan))

	case progressClosedMsg:
		// チャネルが閉じただけなので何もしないのだ

	case guideReadyMsg:
		if msg.err != nil {
			// 全か無かの方針なので、失敗時は部分結果を持たずフォームへ戻るのだ
			m.err = msg.err
			m.state = StateForm
		} else {
			m.guide = msg.guide
			m.err = nil
			m.viewport.SetContent(m.renderGuide())
			m.viewport.GotoTop()
			m.state = StateResult
		}

	case savedMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.saved = msg.result
			m.err = nil
		}

	case spinner.TickMsg:
		if m.state == StateAuthGate || m.state == StateLoading || m.loggingIn {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		return m.updateKey(msg)
	}

	// ピッカーはキー以外のメッセージ（ディレクトリ読み込み等）でも更新が要るのだ。
	// 認証ゲート中に届く初期読み込みを取りこぼさないよう、状態を問わず流すのだ。
	if _, isKey := msg.(tea.KeyMsg); !isKey {
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// updateKey は状態ごとのキー操作を処理するのだ
func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case StateLoggedOut:
		switch msg.String() {
		case "q":
			m.quitting = true
			return m, tea.Quit
		case "enter", "l":
			if m.loggingIn {
				return m, nil
			}
			m.err = nil
			m.loggingIn = true
			return m, tea.Batch(m.spinner.Tick, m.startLogin())
		}

	case StateForm:
		return m.updateFormKey(msg)

	case StateResult:
		switch msg.String() {
		case "n":
			// リセット操作。入力と結果を全部消してフォームへ戻るのだ
			m = m.resetForm()
			m.state = StateForm
			return m, m.filepicker.Init()
		case "s":
			m.err = nil
			return m, m.startPublish()
		case "ctrl+x":
			return m, m.startLogout()
		case "q":
			m.quitting = true
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case StateLoading, StateAuthGate:
		// 生成中と認証確認中はキャンセル以外のキーを受け付けないのだ
	}
	return m, nil
}

// updateFormKey はフォーム状態のキー操作を処理するのだ
func (m Model) updateFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+x":
		return m, m.startLogout()
	case "ctrl+s":
		return m.submit()
	case "tab":
		m = m.cycleFocus(1)
		return m, nil
	case "shift+tab":
		m = m.cycleFocus(-1)
		return m, nil
	}

	switch m.focus {
	case focusPicker:
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)
		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			m = m.photoSelected(path)
		}
		if didSelect, path := m.filepicker.DidSelectDisabledFile(msg); didSelect {
			m.err = &domain.ValidationError{
				Field:  "photo",
				Reason: "対応していない画像形式です: " + path,
			}
		}
		return m, cmd

	case focusDescription:
		var cmd tea.Cmd
		m.description, cmd = m.description.Update(msg)
		return m, cmd

	case focusSubmit:
		if msg.String() == "enter" {
			return m.submit()
		}
	}
	return m, nil
}

// photoSelected は選択された写真をサイズ検査してから受け入れるのだ。
// 上限超過は選択自体を拒否して、前に選んだ写真やフォーカスには触れないのだ。
func (m Model) photoSelected(path string) Model {
	if err := validatePhotoSize(path); err != nil {
		m.err = err
		return m
	}
	m.photoPath = path
	m.err = nil
	return m.cycleFocus(1)
}

// validatePhotoSize は選択時点でファイルサイズの上限だけを検査するのだ。
// 内容（画像形式）の検査は生成時の NewProblemReport に任せるのだ。
func validatePhotoSize(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &domain.ValidationError{
			Field:  "photo",
			Reason: fmt.Sprintf("写真を確認できませんでした: %v", err),
		}
	}
	if info.Size() > domain.MaxPhotoBytes {
		return &domain.ValidationError{
			Field:  "photo",
			Reason: fmt.Sprintf("写真が大きすぎます: %d バイト（上限 %d バイト）", info.Size(), domain.MaxPhotoBytes),
		}
	}
	return nil
}

// submit は入力を検証して生成パイプラインを起動するのだ
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.photoPath == "" {
		m.err = &domain.ValidationError{Field: "photo", Reason: "破損箇所の写真を選択してください"}
		return m, nil
	}
	if strings.TrimSpace(m.description.Value()) == "" {
		m.err = &domain.ValidationError{Field: "description", Reason: "破損状況の説明文を入力してください"}
		return m, nil
	}

	m.err = nil
	m.progress = nil
	m.progressChan = make(chan guide.Progress, progressChanCap)
	m.state = StateLoading
	return m, tea.Batch(
		m.spinner.Tick,
		m.startGeneration(),
		waitForProgress(m.progressChan),
	)
}

// enterForm はフォーム状態へ遷移してフォーカスを初期位置に戻すのだ
func (m Model) enterForm() Model {
	m.state = StateForm
	m.focus = focusPicker
	m.description.Blur()
	return m
}

// resetForm は入力・進捗・結果をまとめて消して次の修理に備えるのだ
func (m Model) resetForm() Model {
	m.photoPath = ""
	m.description.Reset()
	m.description.Blur()
	m.progress = nil
	m.progressChan = nil
	m.guide = domain.RepairGuide{}
	m.saved = publisher.PublishResult{}
	m.err = nil
	m.focus = focusPicker
	m.filepicker = newPhotoPicker()
	return m
}

// cycleFocus はフォーム内のフォーカスを順送りするのだ
func (m Model) cycleFocus(delta int) Model {
	next := (int(m.focus) + delta + 3) % 3
	m.focus = formFocus(next)
	if m.focus == focusDescription {
		m.description.Focus()
	} else {
		m.description.Blur()
	}
	return m
}
