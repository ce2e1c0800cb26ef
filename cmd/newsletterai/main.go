// Command newsletterai はAIニュースレターサービスのエントリーポイント。
//
// サブコマンド:
//
//	serve        HTTP APIサーバー（デフォルト）
//	worker       セッションと既読通知の定期クリーンアップ
//	migrate      データベースマイグレーション
//	healthcheck  起動中サーバーの/health確認（Dockerヘルスチェック用）
package main

import (
	"log/slog"
	"os"

	"github.com/hitoshi/newsletterai/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		slog.Error("application exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
