package domain

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// NewProblemReport はリーダーから写真を読み込み、検証済みの ProblemReport を
// 組み立てます。上限を超える読み込みを避けるため 4 MiB + 1 バイトまでしか
// 読みません。コンテンツタイプは実データから判定します。
func NewProblemReport(r io.Reader, description string) (ProblemReport, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxPhotoBytes+1))
	if err != nil {
		return ProblemReport{}, &ValidationError{
			Field:  "photo",
			Reason: fmt.Sprintf("写真を読み込めませんでした: %v", err),
		}
	}

	report := ProblemReport{
		PhotoData:   data,
		PhotoMIME:   SniffPhotoMIME(data),
		Description: strings.TrimSpace(description),
	}
	if err := report.Validate(); err != nil {
		return ProblemReport{}, err
	}
	return report, nil
}

// SniffPhotoMIME は写真データの先頭バイトからコンテンツタイプを判定します。
func SniffPhotoMIME(data []byte) string {
	return http.DetectContentType(data)
}

// DataURL は画像データを埋め込み可能な data URL 文字列に変換します。
func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURL は DataURL が生成した形式の data URL を MIME タイプと
// 生データに分解します。base64 以外のエンコーディングには対応しません。
func ParseDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, fmt.Errorf("data URL ではありません: %s", TruncateString(s, 40))
	}
	mime, encoded, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return "", nil, fmt.Errorf("base64形式のdata URLではありません: %s", TruncateString(s, 40))
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("data URLのデコードに失敗しました: %w", err)
	}
	return mime, data, nil
}

// SeedFromText はテキストから決定論的なシード値を生成します。
// 同じ説明文から作られたガイドの挿絵が一貫した画風になるよう、
// ガイド全体で1つのシードを共有するために使います。
func SeedFromText(s string) int64 {
	hash := sha256.Sum256([]byte(s))
	seed := int32(binary.BigEndian.Uint32(hash[:4]))
	// Geminiのシード値は正の数が望ましいため、最上位ビットを落とします。
	return int64(seed & 0x7FFFFFFF)
}

// TruncateString は文字列をルーン単位で max 文字に切り詰めます。
// エラーメッセージへのAI応答抜粋の添付に使います。
func TruncateString(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
