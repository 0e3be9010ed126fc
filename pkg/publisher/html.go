package publisher

import (
	"bytes"
	"context"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// Runner は Markdown をタイトル付きの完全なHTML文書へ変換します。
type Runner interface {
	Run(ctx context.Context, title string, markdown []byte) (*bytes.Buffer, error)
}

// htmlDocumentFormat は変換結果を包む最小限のHTML5文書テンプレートです。
const htmlDocumentFormat = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<style>
body { max-width: 720px; margin: 2rem auto; padding: 0 1rem; font-family: sans-serif; line-height: 1.6; }
img { max-width: 100%%; border-radius: 8px; }
blockquote { border-left: 4px solid #e0a800; background: #fff8e1; margin: 0 0 1rem; padding: 0.5rem 1rem; }
</style>
</head>
<body>
%s</body>
</html>
`

type goldmarkRunner struct {
	md goldmark.Markdown
}

// NewHTMLRunner は goldmark ベースの変換器を返します。
// 手順説明の改行を <br> として残すため、ハードラップを有効にしています。
func NewHTMLRunner() Runner {
	return &goldmarkRunner{
		md: goldmark.New(
			goldmark.WithRendererOptions(goldmarkhtml.WithHardWraps()),
		),
	}
}

func (r *goldmarkRunner) Run(_ context.Context, title string, markdown []byte) (*bytes.Buffer, error) {
	var body bytes.Buffer
	if err := r.md.Convert(markdown, &body); err != nil {
		return nil, fmt.Errorf("markdownの変換に失敗しました: %w", err)
	}

	var doc bytes.Buffer
	fmt.Fprintf(&doc, htmlDocumentFormat, html.EscapeString(title), body.String())
	return &doc, nil
}
