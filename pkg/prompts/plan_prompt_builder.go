package prompts

import (
	_ "embed"
	"fmt"
	"strings"
)

//go:embed plan_system.md
var planSystemPrompt string

// PlanPromptBuilder は修理プラン生成用のプロンプトを構築します。
// System Prompt は埋め込みテンプレート、User Prompt は症状の説明から組み立てます。
type PlanPromptBuilder struct{}

// NewPlanPromptBuilder は新しい PlanPromptBuilder を生成します。
func NewPlanPromptBuilder() *PlanPromptBuilder {
	return &PlanPromptBuilder{}
}

// Build は、User Prompt と System Prompt を生成します。
// 写真そのものはプロンプトではなくマルチモーダル入力として別パートで渡します。
func (pb *PlanPromptBuilder) Build(data TemplateData) (string, string, error) {
	if strings.TrimSpace(data.Description) == "" {
		return "", "", fmt.Errorf("症状の説明が空のためプロンプトを構築できません")
	}
	if planSystemPrompt == "" {
		return "", "", fmt.Errorf("プラン生成テンプレートが空です。embed設定を確認してください")
	}

	var us strings.Builder
	us.WriteString("### DAMAGED ITEM REPORT ###\n")
	us.WriteString(fmt.Sprintf("- USER DESCRIPTION: %s\n", strings.TrimSpace(data.Description)))
	us.WriteString("- PHOTO: attached as the image part of this request. Inspect it before planning.\n")
	us.WriteString("\nProduce the repair plan JSON now.\n")

	return us.String(), planSystemPrompt, nil
}
