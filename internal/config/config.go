package config

import (
	"time"

	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義なのだ
const (
	DefaultModel             = "gemini-3-flash-preview"
	DefaultImageModel        = "gemini-3-pro-image-preview"
	DefaultHTTPTimeout       = 30 * time.Second
	DefaultRateLimit         = 30 * time.Second
	DefaultOutputDir         = "output" // パブリッシャーで使用するデフォルト保存先なのだ
	DefaultGuideTitle        = "Repair Guide"
	DefaultImagePromptSuffix = "soft flat colors, simple uncluttered background, warm natural lighting, consistent object appearance across steps, no human faces"
)

// Config はアプリケーション全体の環境設定（APIキーやIDプロバイダ設定）を保持する構造体なのだ。
type Config struct {
	GeminiAPIKey      string
	GeminiModel       string
	GeminiImageModel  string
	ImagePromptSuffix string

	// IDプロバイダ設定。テナント固有の値なので環境変数からのみ受け取るのだ。
	AuthDomain   string
	AuthClientID string

	Options GenerateOptions
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	cfg := &Config{
		GeminiAPIKey:      envutil.GetEnv("GEMINI_API_KEY", ""),
		GeminiModel:       envutil.GetEnv("GEMINI_MODEL", DefaultModel),
		GeminiImageModel:  envutil.GetEnv("IMAGE_GEMINI_MODEL", DefaultImageModel),
		ImagePromptSuffix: envutil.GetEnv("IMAGE_PROMPT_SUFFIX", DefaultImagePromptSuffix),
		AuthDomain:        envutil.GetEnv("AUTH_DOMAIN", ""),
		AuthClientID:      envutil.GetEnv("AUTH_CLIENT_ID", ""),
	}
	return cfg
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	// ソース入力関連
	PhotoPath   string // --photo
	Description string // --description
	PlanFile    string // --plan-file

	// 出力関連
	Title     string // --title
	OutputDir string // --output-dir

	// AI挙動設定
	AIModel    string // --model: プラン生成用のGeminiモデル
	ImageModel string // --image-model: 挿絵生成用のGeminiモデル

	// 実行制御
	HTTPTimeout time.Duration // --http-timeout
}
