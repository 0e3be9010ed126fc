package prompts

import "strings"

const (
	// InstructionalTags クオリティ向上のための共通タグ
	InstructionalTags = "clean instructional illustration, clear composition, bright even lighting, high resolution, sharp focus"

	// RepairNegativePrompt Negative Prompt の定義
	RepairNegativePrompt = "text, letters, words, numbers, labels, captions, watermark, signatures, speech bubble, blurry, low quality, distorted, extra fingers, bad anatomy"

	// IllustrationStyle は全ステップ共通の画風を定義します。
	IllustrationStyle = `### GLOBAL VISUAL STYLE ###
- RENDERING: Friendly DIY manual illustration. Consistent item appearance across all steps. One single action per image.`
)

// StepImagePromptBuilder は、各修理手順の挿絵プロンプトを構築します。
// defaultSuffix は全手順共通で適用する画風（スタイル）の指示です。
type StepImagePromptBuilder struct {
	defaultSuffix string
}

// NewStepImagePromptBuilder は新しい StepImagePromptBuilder を生成します。
func NewStepImagePromptBuilder(suffix string) *StepImagePromptBuilder {
	return &StepImagePromptBuilder{defaultSuffix: suffix}
}

// Build は、ポジティブ（描きたいもの）とネガティブ（描きたくないもの）の
// 指示を構築します。
func (pb *StepImagePromptBuilder) Build(imagePrompt string) (string, string) {
	parts := []string{
		strings.TrimSpace(imagePrompt),
		InstructionalTags,
	}
	if pb.defaultSuffix != "" {
		parts = append(parts, strings.TrimSpace(pb.defaultSuffix))
	}

	var cleanParts []string
	for _, p := range parts {
		if p != "" {
			cleanParts = append(cleanParts, p)
		}
	}

	return strings.Join(cleanParts, ", "), RepairNegativePrompt
}

// BuildSystemPrompt は挿絵生成用の System Prompt を構築します。
func (pb *StepImagePromptBuilder) BuildSystemPrompt() string {
	var ss strings.Builder
	ss.WriteString("You are a professional technical illustrator. Create a single clear illustration of one repair action.")
	ss.WriteString("\n\n")
	ss.WriteString(IllustrationStyle)
	return ss.String()
}
