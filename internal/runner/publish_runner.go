package runner

import (
	"context"

	"github.com/shouni/go-repair-kit/internal/config"
	"github.com/shouni/go-repair-kit/pkg/domain"
	"github.com/shouni/go-repair-kit/pkg/publisher"
	"github.com/shouni/go-repair-kit/pkg/workflow"
)

// PublisherRunner はパブリッシュ処理のインターフェースです。
type PublisherRunner interface {
	Run(ctx context.Context, g domain.RepairGuide) (publisher.PublishResult, error)
}

// DefaultPublisherRunner は pkg/publisher を利用した標準実装です。
type DefaultPublisherRunner struct {
	options   config.GenerateOptions
	publisher workflow.PublishRunner
}

func NewDefaultPublisherRunner(options config.GenerateOptions, pub workflow.PublishRunner) *DefaultPublisherRunner {
	return &DefaultPublisherRunner{
		options:   options,
		publisher: pub,
	}
}

func (pr *DefaultPublisherRunner) Run(ctx context.Context, g domain.RepairGuide) (publisher.PublishResult, error) {
	// フラグ未指定の項目は internal/config のデフォルト値で埋めます。
	title := pr.options.Title
	if title == "" {
		title = config.DefaultGuideTitle
	}
	outputDir := pr.options.OutputDir
	if outputDir == "" {
		outputDir = config.DefaultOutputDir
	}

	return pr.publisher.Run(ctx, title, g, outputDir)
}
