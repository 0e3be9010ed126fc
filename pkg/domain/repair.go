package domain

import "fmt"

// 修理プランと写真入力の制約値です。
const (
	// MaxPhotoBytes は受け付ける写真の上限サイズ（4 MiB）です。
	MaxPhotoBytes = 4 * 1024 * 1024

	// MinPlanSteps / MaxPlanSteps は修理プランに許される手順数の範囲です。
	MinPlanSteps = 3
	MaxPlanSteps = 5
)

// AllowedPhotoMIMEs は写真として受け付けるコンテンツタイプの一覧です。
var AllowedPhotoMIMEs = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/gif":  {},
	"image/webp": {},
}

// ProblemReport はユーザーが提出する「壊れた物の写真 + 症状の説明」です。
// PhotoMIME は宣言値ではなく、実データから判定（スニッフ）した値を保持します。
type ProblemReport struct {
	PhotoData   []byte
	PhotoMIME   string
	Description string
}

// RepairPlan は推論サービスが返す構造化された修理プランです。
type RepairPlan struct {
	SafetyWarning string     `json:"safetyWarning,omitempty"`
	Steps         []PlanStep `json:"steps"`
}

// PlanStep は修理プランの1手順です。ImagePrompt は挿絵生成に渡す描写指示です。
type PlanStep struct {
	StepNumber  int    `json:"stepNumber"`
	Description string `json:"description"`
	ImagePrompt string `json:"imagePrompt"`
}

// RepairGuide は挿絵付きで組み上がった最終成果物です。
type RepairGuide struct {
	SafetyWarning string         `json:"safetyWarning,omitempty"`
	Steps         []TutorialStep `json:"steps"`
}

// TutorialStep はガイドの1手順です。ImageURL はそのまま埋め込める
// data URL（または取得可能なURL）で、空になることはありません。
type TutorialStep struct {
	StepNumber  int    `json:"stepNumber"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

// Validate は写真と説明文の入力検証を行います。
// 不正な入力には *ValidationError を返します。
func (r ProblemReport) Validate() error {
	if r.Description == "" {
		return &ValidationError{Field: "description", Reason: "症状の説明が空です"}
	}
	if len(r.PhotoData) == 0 {
		return &ValidationError{Field: "photo", Reason: "写真データが空です"}
	}
	if len(r.PhotoData) > MaxPhotoBytes {
		return &ValidationError{
			Field:  "photo",
			Reason: fmt.Sprintf("写真が大きすぎます: %d バイト（上限 %d バイト）", len(r.PhotoData), MaxPhotoBytes),
		}
	}
	if _, ok := AllowedPhotoMIMEs[r.PhotoMIME]; !ok {
		return &ValidationError{
			Field:  "photo",
			Reason: fmt.Sprintf("未対応の画像形式です: %s（PNG/JPEG/GIF/WEBP のみ）", r.PhotoMIME),
		}
	}
	return nil
}

// Validate は修理プランの構造検証を行います。
// 手順数が 3〜5 件であること、StepNumber が 1 から始まり厳密に 1 ずつ
// 増えること、各手順の本文と描写指示が埋まっていることを確認し、
// 違反には *MalformedPlanError を返します。
func (p RepairPlan) Validate() error {
	if len(p.Steps) < MinPlanSteps || len(p.Steps) > MaxPlanSteps {
		return &MalformedPlanError{
			Reason: fmt.Sprintf("手順数が %d 件です（%d〜%d 件である必要があります）", len(p.Steps), MinPlanSteps, MaxPlanSteps),
		}
	}
	for i, step := range p.Steps {
		if step.StepNumber != i+1 {
			return &MalformedPlanError{
				Reason: fmt.Sprintf("手順番号が不正です: %d 番目の手順の stepNumber が %d になっています", i+1, step.StepNumber),
			}
		}
		if step.Description == "" {
			return &MalformedPlanError{
				Reason: fmt.Sprintf("手順 %d の説明が空です", step.StepNumber),
			}
		}
		if step.ImagePrompt == "" {
			return &MalformedPlanError{
				Reason: fmt.Sprintf("手順 %d の描写指示（imagePrompt）が空です", step.StepNumber),
			}
		}
	}
	return nil
}
