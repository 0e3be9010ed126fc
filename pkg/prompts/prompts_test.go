package prompts

import (
	"strings"
	"testing"
)

func TestPlanPromptBuilder_Build(t *testing.T) {
	pb := NewPlanPromptBuilder()

	t.Run("説明文からユーザープロンプトが組み上がるのだ", func(t *testing.T) {
		user, system, err := pb.Build(TemplateData{Description: "椅子の脚にひびが入った"})
		if err != nil {
			t.Fatalf("構築に失敗したのだ: %v", err)
		}

		if !strings.Contains(user, "椅子の脚にひびが入った") {
			t.Errorf("ユーザープロンプトに説明文が含まれるべきなのだ: %s", user)
		}
		if !strings.Contains(system, "OUTPUT RULES") {
			t.Errorf("システムプロンプトに出力ルールが含まれるべきなのだ")
		}
		if !strings.Contains(system, "between 3 and 5") {
			t.Error("手順数の制約がシステムプロンプトに含まれるべきなのだ")
		}
	})

	t.Run("説明が空ならエラーなのだ", func(t *testing.T) {
		if _, _, err := pb.Build(TemplateData{Description: "   "}); err == nil {
			t.Error("空の説明は拒否されるべきなのだ")
		}
	})
}

func TestStepImagePromptBuilder_Build(t *testing.T) {
	t.Run("描写指示とスタイルが結合されるのだ", func(t *testing.T) {
		pb := NewStepImagePromptBuilder("watercolor style")
		positive, negative := pb.Build("applying wood glue to the crack")

		if !strings.Contains(positive, "applying wood glue to the crack") {
			t.Errorf("描写指示が含まれるべきなのだ: %s", positive)
		}
		if !strings.Contains(positive, "watercolor style") {
			t.Errorf("スタイルサフィックスが含まれるべきなのだ: %s", positive)
		}
		if !strings.Contains(negative, "watermark") {
			t.Errorf("ネガティブプロンプトが不正なのだ: %s", negative)
		}
	})

	t.Run("サフィックスが空でも正しく結合されるのだ", func(t *testing.T) {
		pb := NewStepImagePromptBuilder("")
		positive, _ := pb.Build("sanding the surface")

		if strings.Contains(positive, ", ,") || strings.HasSuffix(positive, ", ") {
			t.Errorf("空要素が混入しているのだ: %q", positive)
		}
	})
}
