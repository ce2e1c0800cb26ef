// Package ai は生成AIモデルの呼び出しとモデルフォールバックを提供する。
package ai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultBaseURL はGeminiのOpenAI互換エンドポイント。
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// Request は1回のモデル呼び出しの入力。
type Request struct {
	Model  string
	Prompt string
	// JSON はJSONオブジェクト形式での応答を要求する。
	JSON bool
}

// Client は生成AIモデルへの1回の呼び出しを抽象化するインターフェース。
// 応答テキストが空の場合は空文字列とnilを返す。
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// OpenAIClient はOpenAI互換APIを使用するClient実装。
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient はAPIキーとベースURLからOpenAIClientを生成する。
// baseURLが空の場合はGeminiのOpenAI互換エンドポイントを使用する。
func NewOpenAIClient(apiKey, baseURL string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cfg.BaseURL = baseURL
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg)}
}

// Complete はプロンプトを1件のユーザーメッセージとして送信し、最初の候補の本文を返す。
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: req.Prompt,
		}},
	}
	if req.JSON {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// compile-time interface check
var _ Client = (*OpenAIClient)(nil)
