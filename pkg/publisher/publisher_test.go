package publisher

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/shouni/go-repair-kit/pkg/domain"
)

// fakeWriter は書き込み内容をメモリに記録する偽物なのだ。
// 挿絵の書き込みは並列に走るので、マップはロックで守るのだ。
type fakeWriter struct {
	mu     sync.Mutex
	files  map[string][]byte
	mimes  map[string]string
	failOn string
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{files: map[string][]byte{}, mimes: map[string]string{}}
}

func (w *fakeWriter) Write(ctx context.Context, path string, r io.Reader, mime string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failOn != "" && strings.Contains(path, w.failOn) {
		return errors.New("storage unavailable")
	}
	w.files[path] = data
	w.mimes[path] = mime
	return nil
}

func (w *fakeWriter) content(path string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	data, ok := w.files[path]
	return string(data), ok
}

func testGuide() domain.RepairGuide {
	return domain.RepairGuide{
		Steps: []domain.TutorialStep{
			{StepNumber: 1, Description: "Remove the cracked leg.", ImageURL: domain.DataURL("image/png", []byte("img-one"))},
			{StepNumber: 2, Description: "Glue and clamp the crack.", ImageURL: domain.DataURL("image/png", []byte("img-two"))},
			{StepNumber: 3, Description: "Reattach and let it cure.", ImageURL: domain.DataURL("image/png", []byte("img-three"))},
		},
	}
}

func TestGuidePublisher_Publish(t *testing.T) {
	t.Run("Markdownと挿絵とHTMLが揃って書き出されるのだ", func(t *testing.T) {
		writer := newFakeWriter()
		pub := NewGuidePublisher(writer, NewHTMLRunner())

		result, err := pub.Publish(context.Background(), "Chair Leg Repair", testGuide(), Options{OutputDir: "output"})
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}

		md, ok := writer.content(result.MarkdownPath)
		if !ok {
			t.Fatalf("Markdownが書き込まれていない: %s", result.MarkdownPath)
		}
		for _, want := range []string{
			"# Chair Leg Repair",
			"## Step 1",
			"![Step 1](images/step_01.png)",
			"## Step 3",
			"Reattach and let it cure.",
		} {
			if !strings.Contains(md, want) {
				t.Errorf("Markdownに %q が含まれない:\n%s", want, md)
			}
		}

		if len(result.ImagePaths) != 3 {
			t.Fatalf("挿絵の保存数 = %d, want 3", len(result.ImagePaths))
		}
		imgData, ok := writer.content(result.ImagePaths[0])
		if !ok {
			t.Fatalf("挿絵が書き込まれていない: %s", result.ImagePaths[0])
		}
		if imgData != "img-one" {
			t.Errorf("挿絵のデータが一致しない: %q", imgData)
		}
		writer.mu.Lock()
		mime := writer.mimes[result.ImagePaths[0]]
		writer.mu.Unlock()
		if mime != "image/png" {
			t.Errorf("挿絵のMIME = %q, want image/png", mime)
		}

		html, ok := writer.content(result.HTMLPath)
		if !ok {
			t.Fatalf("HTMLが書き込まれていない: %s", result.HTMLPath)
		}
		if !strings.Contains(html, "<title>Chair Leg Repair</title>") {
			t.Errorf("HTMLにタイトルが含まれない:\n%.300s", html)
		}
		if !strings.Contains(html, "<h1") {
			t.Errorf("HTMLに見出しが含まれない:\n%.300s", html)
		}
		if !strings.HasSuffix(result.HTMLPath, ".html") {
			t.Errorf("HTMLパスの拡張子が不正: %s", result.HTMLPath)
		}
	})

	t.Run("安全警告は引用ブロックとして先頭に出るのだ", func(t *testing.T) {
		writer := newFakeWriter()
		pub := NewGuidePublisher(writer, nil)

		guide := testGuide()
		guide.SafetyWarning = "Unplug the appliance before starting."
		result, err := pub.Publish(context.Background(), "Repair", guide, Options{OutputDir: "out"})
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}

		md, _ := writer.content(result.MarkdownPath)
		if !strings.Contains(md, "> ⚠️ Unplug the appliance before starting.") {
			t.Errorf("警告ブロックが見つからない:\n%s", md)
		}
		warnIdx := strings.Index(md, "> ⚠️")
		stepIdx := strings.Index(md, "## Step 1")
		if warnIdx == -1 || stepIdx == -1 || warnIdx > stepIdx {
			t.Errorf("警告が手順より後に出ている: warn=%d step=%d", warnIdx, stepIdx)
		}
	})

	t.Run("HTML変換器がなければMarkdownと挿絵だけ書き出すのだ", func(t *testing.T) {
		writer := newFakeWriter()
		pub := NewGuidePublisher(writer, nil)

		result, err := pub.Publish(context.Background(), "Repair", testGuide(), Options{OutputDir: "out"})
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if result.HTMLPath != "" {
			t.Errorf("HTMLパスが入っている: %s", result.HTMLPath)
		}
	})

	t.Run("data URLでない挿絵は保存せず参照だけ残すのだ", func(t *testing.T) {
		writer := newFakeWriter()
		pub := NewGuidePublisher(writer, nil)

		guide := testGuide()
		guide.Steps[1].ImageURL = "https://example.com/steps/2.png"
		result, err := pub.Publish(context.Background(), "Repair", guide, Options{OutputDir: "out"})
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if len(result.ImagePaths) != 2 {
			t.Errorf("保存された挿絵数 = %d, want 2", len(result.ImagePaths))
		}
		md, _ := writer.content(result.MarkdownPath)
		if !strings.Contains(md, "![Step 2](https://example.com/steps/2.png)") {
			t.Errorf("外部URLの参照が残っていない:\n%s", md)
		}
	})

	t.Run("挿絵の書き込み失敗はエラーになるのだ", func(t *testing.T) {
		writer := newFakeWriter()
		writer.failOn = "step_02"
		pub := NewGuidePublisher(writer, nil)

		_, err := pub.Publish(context.Background(), "Repair", testGuide(), Options{OutputDir: "out"})
		if err == nil {
			t.Fatal("エラーが返らない")
		}
		if !strings.Contains(err.Error(), "挿絵の書き込みに失敗しました") {
			t.Errorf("エラーメッセージが不正: %v", err)
		}
	})
}

func TestResolveOutputPath(t *testing.T) {
	tests := []struct {
		name     string
		baseDir  string
		fileName string
		want     string
	}{
		{"ローカルパス", "output", "repair_guide.md", "output/repair_guide.md"},
		{"GCSパス", "gs://bucket/guides", "repair_guide.md", "gs://bucket/guides/repair_guide.md"},
		{"GCSパス末尾スラッシュ", "gs://bucket/guides/", "images", "gs://bucket/guides/images"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveOutputPath(tt.baseDir, tt.fileName)
			if err != nil {
				t.Fatalf("予期しないエラー: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveOutputPath(%q, %q) = %q, want %q", tt.baseDir, tt.fileName, got, tt.want)
			}
		})
	}
}

func TestNewHTMLRunner(t *testing.T) {
	t.Run("Markdownが完全なHTML文書になるのだ", func(t *testing.T) {
		runner := NewHTMLRunner()
		buf, err := runner.Run(context.Background(), "Guide <Title>", []byte("# Heading\n\nbody text"))
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "<!DOCTYPE html>") {
			t.Error("DOCTYPE宣言がない")
		}
		if !strings.Contains(out, "<title>Guide &lt;Title&gt;</title>") {
			t.Errorf("タイトルがエスケープされていない:\n%.200s", out)
		}
		if !strings.Contains(out, "<h1") || !strings.Contains(out, "Heading") {
			t.Errorf("見出しが変換されていない:\n%s", out)
		}
	})
}
