package domain

import "fmt"

// maxRawExcerpt は MalformedPlanError に添付するAI応答の抜粋の上限長です。
const maxRawExcerpt = 200

// ValidationError はユーザー入力（写真・説明文）の検証失敗を表します。
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("入力検証エラー (%s): %s", e.Field, e.Reason)
}

// ConfigurationError は環境変数などの設定不備を表します。
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("設定エラー (%s): %s", e.Key, e.Reason)
}

// MalformedPlanError は推論サービスの応答が修理プランとして成立しない
// ことを表します。Raw には診断用にAI応答の抜粋を保持します。
type MalformedPlanError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *MalformedPlanError) Error() string {
	if e.Raw != "" {
		return fmt.Sprintf("修理プランの形式が不正です: %s (応答抜粋: %q)", e.Reason, e.Raw)
	}
	return fmt.Sprintf("修理プランの形式が不正です: %s", e.Reason)
}

func (e *MalformedPlanError) Unwrap() error { return e.Err }

// NewMalformedPlanError は応答抜粋を上限長に切り詰めて MalformedPlanError を作ります。
func NewMalformedPlanError(reason, raw string, err error) *MalformedPlanError {
	return &MalformedPlanError{Reason: reason, Raw: TruncateString(raw, maxRawExcerpt), Err: err}
}

// ImageGenerationError はあるステップの挿絵生成の失敗を表します。
// ガイドは全手順成功か全体失敗かのどちらかであり、部分的な成果物は返しません。
type ImageGenerationError struct {
	StepNumber int
	Err        error
}

func (e *ImageGenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ステップ %d の画像生成に失敗しました: %v", e.StepNumber, e.Err)
	}
	return fmt.Sprintf("ステップ %d の画像生成に失敗しました", e.StepNumber)
}

func (e *ImageGenerationError) Unwrap() error { return e.Err }

// TransportError は推論サービスや認証プロバイダーとの通信失敗を表します。
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s との通信に失敗しました: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
