package workflow

import (
	"context"
	"time"

	"github.com/shouni/go-repair-kit/pkg/domain"
	"github.com/shouni/go-repair-kit/pkg/guide"
	"github.com/shouni/go-repair-kit/pkg/publisher"
)

const (
	defaultGeminiTemperature = float32(0.1)
	defaultCacheExpiration   = 5 * time.Minute
	cacheCleanupInterval     = 15 * time.Minute
	defaultTTL               = 5 * time.Minute
)

// Workflow は、修理ガイド生成の各工程を担う Runner を構築するためのビルダー・インターフェースを定義します。
type Workflow interface {
	BuildPlanRunner() (PlanRunner, error)
	BuildGuideRunner() (GuideRunner, error)
	BuildGenerateRunner() (GenerateRunner, error)
	BuildPublishRunner() (PublishRunner, error)
}

// PlanRunner は、写真と症状の説明から構造化された修理プランを生成する責務を持ちます。
type PlanRunner interface {
	Run(ctx context.Context, photoPath string, description string) (domain.RepairPlan, error)
}

// GuideRunner は、検証済みの修理プランの各手順に挿絵を付けてガイドを組み上げる責務を持ちます。
type GuideRunner interface {
	Run(ctx context.Context, plan domain.RepairPlan, seedText string, onProgress guide.ProgressFunc) (domain.RepairGuide, error)
}

// GenerateRunner は、写真と説明文から挿絵付きガイドまでを一気通貫で生成する責務を持ちます。
type GenerateRunner interface {
	Run(ctx context.Context, photoPath string, description string, onProgress guide.ProgressFunc) (domain.RepairGuide, error)
}

// PublishRunner は、完成したガイドを Markdown/HTML として保存する責務を持ちます。
type PublishRunner interface {
	Run(ctx context.Context, title string, g domain.RepairGuide, outputDir string) (publisher.PublishResult, error)
}
