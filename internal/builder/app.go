package builder

import (
	"github.com/shouni/go-repair-kit/internal/config"

	"github.com/shouni/go-repair-kit/pkg/workflow"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持する
// これを各Build関数に渡すことで、依存関係の注入を簡素化します。
type AppContext struct {
	Config     *config.Config          // Configは、環境変数から読み込まれたグローバルな設定です（APIキー、IDプロバイダ設定など）。
	Options    config.GenerateOptions  // Optionsは、コマンドラインから渡された実行時の設定です（写真パス、モデル名など）。
	Reader     remoteio.InputReader    // Readerは、写真や修理プランJSONの読み込みに使用する入力元です。
	Writer     remoteio.OutputWriter   // Writerは、生成された内容を保存するための出力先です。
	Manager    *workflow.Manager       // Managerは、プラン生成・挿絵生成・公開の各エンジンを構築するファサードです。
	httpClient httpkit.ClientInterface // httpClient は外部APIとの通信に使う共通クライアント
}

// NewAppContext は AppContext の新しいインスタンスを生成する
func NewAppContext(
	cfg *config.Config,
	httpClient httpkit.ClientInterface,
	reader remoteio.InputReader,
	writer remoteio.OutputWriter,
	manager *workflow.Manager,
) AppContext {
	return AppContext{
		Config:     cfg,
		Options:    cfg.Options,
		httpClient: httpClient,
		Reader:     reader,
		Writer:     writer,
		Manager:    manager,
	}
}
