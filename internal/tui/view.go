package tui

import (
	"fmt"
	"strings"

	"github.com/shouni/go-repair-kit/pkg/domain"

	"github.com/charmbracelet/lipgloss"
)

// 画面装飾のパレットとスタイルなのだ
var (
	colorAccent = lipgloss.Color("#cba6f7")
	colorMuted  = lipgloss.Color("#585b70")
	colorError  = lipgloss.Color("#f38ba8")
	colorOK     = lipgloss.Color("#a6e3a1")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#11111b")).
			Background(colorAccent).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(1, 2)

	labelStyle        = lipgloss.NewStyle().Bold(true)
	focusedLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	errorStyle        = lipgloss.NewStyle().Foreground(colorError)
	helpStyle         = lipgloss.NewStyle().Foreground(colorMuted)
	userStyle         = lipgloss.NewStyle().Foreground(colorOK)
	doneStyle         = lipgloss.NewStyle().Foreground(colorOK)
)

const appTitle = "ap-repair-go"

func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	switch m.state {
	case StateAuthGate:
		return m.viewAuthGate()
	case StateLoggedOut:
		return m.viewLoggedOut()
	case StateForm:
		return m.viewForm()
	case StateLoading:
		return m.viewLoading()
	case StateResult:
		return m.viewResult()
	}
	return ""
}

func (m Model) viewAuthGate() string {
	status := m.spinner.View() + " Checking session..."
	return "\n" + titleStyle.Render(appTitle) + "\n\n" + boxStyle.Render(status) + "\n"
}

func (m Model) viewLoggedOut() string {
	var b strings.Builder
	b.WriteString("\n" + titleStyle.Render(appTitle) + "\n\n")

	if m.loggingIn {
		b.WriteString(boxStyle.Render(m.spinner.View() + " Waiting for browser login..."))
	} else {
		content := "You are not logged in.\n\n" +
			helpStyle.Render("[enter] Log in with your browser   [q] Quit")
		b.WriteString(boxStyle.Render(content))
	}

	if m.err != nil {
		b.WriteString("\n\n" + errorStyle.Render(m.err.Error()))
	}
	return b.String() + "\n"
}

func (m Model) viewForm() string {
	var b strings.Builder
	b.WriteString("\n" + titleStyle.Render(appTitle))
	b.WriteString("  " + userStyle.Render("Logged in as "+m.user.Name) + "\n\n")

	// 写真の選択ゾーンなのだ
	b.WriteString(m.formLabel("Photo of the damaged item", focusPicker) + "\n")
	if m.focus == focusPicker {
		b.WriteString(m.filepicker.View() + "\n")
	}
	if m.photoPath != "" {
		b.WriteString(doneStyle.Render("  ✓ "+m.photoPath) + "\n")
	} else if m.focus != focusPicker {
		b.WriteString(helpStyle.Render("  (no photo selected)") + "\n")
	}
	b.WriteString("\n")

	// 説明文の入力ゾーンなのだ
	b.WriteString(m.formLabel("What happened?", focusDescription) + "\n")
	b.WriteString(m.description.View() + "\n\n")

	// 送信ボタンなのだ
	submit := "[ Generate repair guide ]"
	if m.focus == focusSubmit {
		b.WriteString(focusedLabelStyle.Render(submit) + "\n")
	} else {
		b.WriteString(helpStyle.Render(submit) + "\n")
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("tab: next field   ctrl+s: submit   ctrl+x: logout   ctrl+c: quit"))
	return b.String() + "\n"
}

func (m Model) viewLoading() string {
	var b strings.Builder
	b.WriteString("\n" + titleStyle.Render(appTitle) + "\n\n")

	var lines []string
	for i, message := range m.progress {
		if i == len(m.progress)-1 {
			lines = append(lines, m.spinner.View()+" "+message)
		} else {
			lines = append(lines, doneStyle.Render("✓")+" "+message)
		}
	}
	if len(lines) == 0 {
		lines = append(lines, m.spinner.View()+" Starting...")
	}

	b.WriteString(boxStyle.Render(strings.Join(lines, "\n")))
	return b.String() + "\n"
}

func (m Model) viewResult() string {
	var b strings.Builder
	b.WriteString("\n" + titleStyle.Render(appTitle))
	b.WriteString("  " + userStyle.Render("Logged in as "+m.user.Name) + "\n\n")

	b.WriteString(m.viewport.View() + "\n")

	if m.saved.MarkdownPath != "" {
		b.WriteString(doneStyle.Render("Saved: "+m.saved.MarkdownPath) + "\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()) + "\n")
	}

	b.WriteString(helpStyle.Render("↑/↓: scroll   s: save   n: new repair   ctrl+x: logout   q: quit"))
	return b.String() + "\n"
}

// formLabel はフォーカス中のゾーンだけ強調したラベルを返すのだ
func (m Model) formLabel(text string, zone formFocus) string {
	if m.focus == zone {
		return focusedLabelStyle.Render("▸ " + text)
	}
	return labelStyle.Render("  " + text)
}

// renderGuide は完成した修理ガイドを端末向けのMarkdownとして描画するのだ
func (m Model) renderGuide() string {
	var sb strings.Builder
	sb.WriteString("# Repair Guide\n\n")

	if m.guide.SafetyWarning != "" {
		sb.WriteString("> ⚠️ " + m.guide.SafetyWarning + "\n\n")
	}

	for _, step := range m.guide.Steps {
		sb.WriteString(fmt.Sprintf("## Step %d\n\n", step.StepNumber))
		sb.WriteString(step.Description + "\n\n")
		sb.WriteString("_" + illustrationLabel(step) + "_\n\n")
	}

	if m.renderer != nil {
		if out, err := m.renderer.Render(sb.String()); err == nil {
			return out
		}
	}
	return sb.String()
}

// illustrationLabel は端末に出せない挿絵の代わりに要約を作るのだ
func illustrationLabel(step domain.TutorialStep) string {
	mime, data, err := domain.ParseDataURL(step.ImageURL)
	if err != nil {
		return "Illustration: " + step.ImageURL
	}
	return fmt.Sprintf("Illustration attached (%s, %d KB) — press s to save", mime, len(data)/1024)
}
