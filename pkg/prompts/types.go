package prompts

// TemplateData はプラン生成プロンプトのテンプレートに渡すデータ構造です。
type TemplateData struct {
	// Description はユーザーが入力した症状の説明文です。
	Description string
}
