package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorTaxonomy(t *testing.T) {
	t.Run("ImageGenerationErrorは原因をUnwrapできるのだ", func(t *testing.T) {
		cause := errors.New("quota exceeded")
		err := &ImageGenerationError{StepNumber: 2, Err: cause}

		if !errors.Is(err, cause) {
			t.Error("原因エラーまで辿れるべきなのだ")
		}
		if !strings.Contains(err.Error(), "ステップ 2") {
			t.Errorf("メッセージにステップ番号が含まれるべきなのだ: %s", err.Error())
		}
	})

	t.Run("TransportErrorは操作名と原因を保持するのだ", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := &TransportError{Op: "Gemini API", Err: cause}

		if !errors.Is(err, cause) {
			t.Error("原因エラーまで辿れるべきなのだ")
		}
		if !strings.Contains(err.Error(), "Gemini API") {
			t.Errorf("メッセージに操作名が含まれるべきなのだ: %s", err.Error())
		}
	})

	t.Run("ラップされてもerrors.Asで型を特定できるのだ", func(t *testing.T) {
		inner := &MalformedPlanError{Reason: "手順数が不足"}
		wrapped := fmt.Errorf("プラン生成に失敗したのだ: %w", inner)

		var planErr *MalformedPlanError
		if !errors.As(wrapped, &planErr) {
			t.Fatal("ラップ越しに MalformedPlanError を特定できるべきなのだ")
		}
		if planErr.Reason != "手順数が不足" {
			t.Errorf("Reason が失われたのだ: %s", planErr.Reason)
		}
	})

	t.Run("NewMalformedPlanErrorは応答抜粋を切り詰めるのだ", func(t *testing.T) {
		raw := strings.Repeat("x", 500)
		err := NewMalformedPlanError("JSONが壊れている", raw, nil)

		if len([]rune(err.Raw)) > maxRawExcerpt+3 {
			t.Errorf("抜粋が切り詰められていないのだ: %d文字", len([]rune(err.Raw)))
		}
		if !strings.Contains(err.Error(), "JSONが壊れている") {
			t.Errorf("メッセージに理由が含まれるべきなのだ: %s", err.Error())
		}
	})

	t.Run("ValidationErrorとConfigurationErrorは区別できるのだ", func(t *testing.T) {
		var err error = &ValidationError{Field: "photo", Reason: "大きすぎる"}

		var valErr *ValidationError
		var cfgErr *ConfigurationError
		if !errors.As(err, &valErr) {
			t.Error("ValidationError として特定できるべきなのだ")
		}
		if errors.As(err, &cfgErr) {
			t.Error("ConfigurationError と誤認してはいけないのだ")
		}
	})
}
