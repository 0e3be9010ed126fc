package publisher

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/shouni/go-repair-kit/pkg/domain"

	"github.com/shouni/go-remote-io/pkg/remoteio"
	"golang.org/x/sync/errgroup"
)

// Options はパブリッシュ動作を制御する設定項目です。
type Options struct {
	OutputDir string
}

// PublishResult はパブリッシュ処理の結果として生成されたファイルの情報を保持します。
type PublishResult struct {
	MarkdownPath string   // 生成された repair_guide.md のパス
	HTMLPath     string   // 生成された HTML のパス
	ImagePaths   []string // 保存された全挿絵のパスリスト
}

const (
	defaultGuideName    = "repair_guide.md"
	defaultImageDirName = "images"
)

// mimeExtensions は挿絵の保存ファイル名の拡張子を決める対応表です。
var mimeExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// GuidePublisher は修理ガイドの永続化とフォーマット変換を担います。
// 出力は remoteio の抽象を経由するため、ローカルディレクトリにも
// GCS（gs://）にも書き出せます。
type GuidePublisher struct {
	writer     remoteio.OutputWriter
	htmlRunner Runner
}

// NewGuidePublisher は書き込み先とHTML変換器を束ねた GuidePublisher を返します。
// htmlRunner が nil の場合、HTML変換はスキップします。
func NewGuidePublisher(writer remoteio.OutputWriter, htmlRunner Runner) *GuidePublisher {
	return &GuidePublisher{
		writer:     writer,
		htmlRunner: htmlRunner,
	}
}

// Publish は挿絵の保存、Markdownの構築、HTML変換を一括して実行し、生成されたファイル情報を返却するのだ！
func (p *GuidePublisher) Publish(ctx context.Context, title string, guide domain.RepairGuide, opts Options) (PublishResult, error) {
	result := PublishResult{}

	// 1. 出力パスの解決
	markdownPath, err := ResolveOutputPath(opts.OutputDir, defaultGuideName)
	if err != nil {
		return result, err
	}
	result.MarkdownPath = markdownPath

	imgDir, err := ResolveOutputPath(opts.OutputDir, defaultImageDirName)
	if err != nil {
		return result, err
	}

	// 2. 挿絵の保存
	savedPaths, refs, err := p.saveImages(ctx, guide.Steps, imgDir)
	if err != nil {
		return result, fmt.Errorf("挿絵の書き込みに失敗しました: %w", err)
	}
	result.ImagePaths = savedPaths

	// 3. Markdownテキストの構築
	content := p.buildMarkdown(title, guide, refs)

	// 4. Markdownファイルの書き出し
	if err := p.writer.Write(ctx, markdownPath, strings.NewReader(content), "text/markdown; charset=utf-8"); err != nil {
		return result, fmt.Errorf("markdownファイルの書き込みに失敗しました: %w", err)
	}

	// 5. HTML変換と保存
	if p.htmlRunner != nil {
		slog.Info("ガイドをHTMLへ変換します", "title", title)
		htmlBuffer, err := p.htmlRunner.Run(ctx, title, []byte(content))
		if err != nil {
			return result, fmt.Errorf("HTMLの変換に失敗しました: %w", err)
		}

		// Markdownの拡張子を置換してHTMLパスを生成するのだ
		htmlPath := strings.TrimSuffix(markdownPath, filepath.Ext(markdownPath)) + ".html"
		if err := p.writer.Write(ctx, htmlPath, htmlBuffer, "text/html; charset=utf-8"); err != nil {
			return result, fmt.Errorf("HTMLファイルの書き込みに失敗しました: %w", err)
		}
		result.HTMLPath = htmlPath
	}

	return result, nil
}

// imageFile は保存対象の挿絵1枚分の書き込み情報です。
type imageFile struct {
	fullPath string
	mime     string
	data     []byte
}

// saveImages は各手順の挿絵を出力先へ保存し、保存先パスの一覧と
// Markdownから参照するためのパス（手順番号 → 参照先）を返します。
// data URL 以外の ImageURL は保存せず、そのまま参照先として使います。
func (p *GuidePublisher) saveImages(ctx context.Context, steps []domain.TutorialStep, baseDir string) ([]string, map[int]string, error) {
	files := make([]*imageFile, len(steps))
	refs := make(map[int]string, len(steps))

	for i, step := range steps {
		mime, data, err := domain.ParseDataURL(step.ImageURL)
		if err != nil {
			refs[step.StepNumber] = step.ImageURL
			continue
		}

		ext, ok := mimeExtensions[mime]
		if !ok {
			ext = "png"
		}
		name := fmt.Sprintf("step_%02d.%s", step.StepNumber, ext)
		fullPath, err := ResolveOutputPath(baseDir, name)
		if err != nil {
			return nil, nil, fmt.Errorf("出力パスの解決に失敗しました: %w", err)
		}

		files[i] = &imageFile{fullPath: fullPath, mime: mime, data: data}
		refs[step.StepNumber] = path.Join(defaultImageDirName, name)
	}

	// 書き込みはI/Oバウンドなので並列に流します
	eg, egCtx := errgroup.WithContext(ctx)
	for _, f := range files {
		if f == nil {
			continue
		}
		eg.Go(func() error {
			if err := p.writer.Write(egCtx, f.fullPath, bytes.NewReader(f.data), f.mime); err != nil {
				return fmt.Errorf("%s: %w", f.fullPath, err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	saved := make([]string, 0, len(files))
	for _, f := range files {
		if f != nil {
			saved = append(saved, f.fullPath)
		}
	}
	return saved, refs, nil
}

// buildMarkdown は修理ガイドのMarkdownテキストを組み立てます。
func (p *GuidePublisher) buildMarkdown(title string, guide domain.RepairGuide, refs map[int]string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))

	if guide.SafetyWarning != "" {
		sb.WriteString(fmt.Sprintf("> ⚠️ %s\n\n", guide.SafetyWarning))
	}

	for _, step := range guide.Steps {
		sb.WriteString(fmt.Sprintf("## Step %d\n\n", step.StepNumber))
		if ref, ok := refs[step.StepNumber]; ok && ref != "" {
			sb.WriteString(fmt.Sprintf("![Step %d](%s)\n\n", step.StepNumber, ref))
		}
		sb.WriteString(step.Description)
		sb.WriteString("\n\n")
	}
	return sb.String()
}
