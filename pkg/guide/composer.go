package guide

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shouni/go-repair-kit/pkg/domain"
	"github.com/shouni/go-repair-kit/pkg/prompts"

	imagedom "github.com/shouni/gemini-image-kit/pkg/domain"
	"golang.org/x/time/rate"
)

// GuideAspectRatio は全挿絵に共通で適用するアスペクト比です。
const GuideAspectRatio = "4:3"

// fallbackImageMIME は生成側がMIMEタイプを返さなかった場合の既定値です。
const fallbackImageMIME = "image/png"

// StepIllustrator は挿絵1枚の生成を抽象化します。
// gemini-image-kit の ImageGenerator がそのまま満たします。
type StepIllustrator interface {
	GenerateMangaPanel(ctx context.Context, req imagedom.ImageGenerationRequest) (*imagedom.ImageResponse, error)
}

// GuideComposer は検証済みプランの各手順に挿絵を付けて RepairGuide に
// 組み上げます。生成は手順順に1件ずつ直列で行い、1手順でも失敗したら
// 部分的なガイドは返しません。
type GuideComposer struct {
	illustrator   StepIllustrator
	promptBuilder *prompts.StepImagePromptBuilder
	limiter       *rate.Limiter
}

// NewGuideComposer は GuideComposer を初期化します。
// interval は連続する生成呼び出しの最短間隔で、0 以下なら待機しません。
func NewGuideComposer(illustrator StepIllustrator, pb *prompts.StepImagePromptBuilder, interval time.Duration) (*GuideComposer, error) {
	if illustrator == nil {
		return nil, errors.New("illustrator は必須です")
	}
	if pb == nil {
		return nil, errors.New("promptBuilder は必須です")
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if interval > 0 {
		limiter = rate.NewLimiter(rate.Every(interval), 1)
	}

	return &GuideComposer{
		illustrator:   illustrator,
		promptBuilder: pb,
		limiter:       limiter,
	}, nil
}

// Compose はプランの全手順の挿絵を直列に生成し、ガイドを組み上げます。
// seedText はガイド全体で共通のシード値の素で、同じ依頼なら画風の揺れを
// 抑えられます。onProgress には各手順の着手時に進捗を通知します。
// プランが不正な場合は挿絵生成を一切行わずに *MalformedPlanError を返します。
func (c *GuideComposer) Compose(ctx context.Context, plan domain.RepairPlan, seedText string, onProgress ProgressFunc) (domain.RepairGuide, error) {
	if err := plan.Validate(); err != nil {
		return domain.RepairGuide{}, err
	}

	seed := domain.SeedFromText(seedText)
	total := len(plan.Steps)
	steps := make([]domain.TutorialStep, 0, total)

	slog.Info("挿絵の直列生成を開始します", "steps", total, "aspect_ratio", GuideAspectRatio, "seed", seed)

	for i, planStep := range plan.Steps {
		notify(onProgress, Progress{Message: StepMessage(i+1, total), Step: i + 1, Total: total})

		if err := c.limiter.Wait(ctx); err != nil {
			return domain.RepairGuide{}, &domain.ImageGenerationError{StepNumber: planStep.StepNumber, Err: err}
		}

		positive, negative := c.promptBuilder.Build(planStep.ImagePrompt)
		slog.Info("手順の挿絵を生成中...", "step", planStep.StepNumber, "total", total)

		resp, err := c.illustrator.GenerateMangaPanel(ctx, imagedom.ImageGenerationRequest{
			Prompt:         positive,
			NegativePrompt: negative,
			Seed:           &seed,
			AspectRatio:    GuideAspectRatio,
		})
		if err != nil {
			slog.Error("挿絵生成に失敗しました", "step", planStep.StepNumber, "error", err)
			return domain.RepairGuide{}, &domain.ImageGenerationError{StepNumber: planStep.StepNumber, Err: err}
		}
		if resp == nil || len(resp.Data) == 0 {
			return domain.RepairGuide{}, &domain.ImageGenerationError{
				StepNumber: planStep.StepNumber,
				Err:        errors.New("生成結果に画像データが含まれていません"),
			}
		}

		mime := resp.MimeType
		if mime == "" {
			mime = fallbackImageMIME
		}
		steps = append(steps, domain.TutorialStep{
			StepNumber:  planStep.StepNumber,
			Description: planStep.Description,
			ImageURL:    domain.DataURL(mime, resp.Data),
		})
		slog.Info("手順の挿絵が完成しました", "step", planStep.StepNumber, "mime", mime, "bytes", len(resp.Data))
	}

	slog.Info("すべての挿絵が生成されました", "total", total)
	return domain.RepairGuide{SafetyWarning: plan.SafetyWarning, Steps: steps}, nil
}
