package planner

import (
	"github.com/shouni/go-repair-kit/pkg/domain"

	"google.golang.org/genai"
)

// PlanSchema は修理プラン応答のレスポンススキーマを返します。
// ステップ数の下限・上限はスキーマ側でも拘束します。
func PlanSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"safetyWarning": {
				Type:        genai.TypeString,
				Description: "A single safety warning sentence. Present only when the repair involves real danger (electricity, gas, structural load, toxic materials).",
			},
			"steps": {
				Type:        genai.TypeArray,
				Description: "Ordered repair steps. Step numbers start at 1 and increase by exactly 1.",
				MinItems:    genai.Ptr(int64(domain.MinPlanSteps)),
				MaxItems:    genai.Ptr(int64(domain.MaxPlanSteps)),
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"stepNumber": {
							Type:        genai.TypeInteger,
							Description: "1-based sequential position of this step.",
						},
						"description": {
							Type:        genai.TypeString,
							Description: "Plain-language instruction a non-expert can follow.",
						},
						"imagePrompt": {
							Type:        genai.TypeString,
							Description: "English prompt describing the illustration for this step.",
						},
					},
					Required: []string{"stepNumber", "description", "imagePrompt"},
				},
			},
		},
		Required: []string{"steps"},
	}
}
