package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/newsletterai/internal/metrics"
	"github.com/hitoshi/newsletterai/internal/model"
	"github.com/resend/resend-go/v2"
)

// DefaultFrom はデフォルトの送信元アドレス。
const DefaultFrom = "AI Newsletters <onboarding@resend.dev>"

// ErrDisabled はメール配信が設定されていない場合のエラー。
var ErrDisabled = errors.New("email sending is not configured")

// Message は送信するメール。
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Transport はメール配信プロバイダのインターフェース。
type Transport interface {
	Send(ctx context.Context, msg *Message) (string, error)
}

// ResendTransport はResend APIでメールを送信するTransport実装。
type ResendTransport struct {
	client *resend.Client
}

// NewResendTransport はResendTransportを生成する。
func NewResendTransport(apiKey string) *ResendTransport {
	return &ResendTransport{client: resend.NewClient(apiKey)}
}

// Send はメールを送信し、プロバイダのメッセージIDを返す。
func (t *ResendTransport) Send(ctx context.Context, msg *Message) (string, error) {
	resp, err := t.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("resend: %w", err)
	}
	return resp.Id, nil
}

// disabledTransport はAPIキー未設定時に使用する。常にErrDisabledを返す。
type disabledTransport struct{}

func (disabledTransport) Send(context.Context, *Message) (string, error) {
	return "", ErrDisabled
}

// NewTransport はAPIキーが設定されていればResendTransportを、未設定なら常に失敗するTransportを返す。
func NewTransport(apiKey string) Transport {
	if apiKey == "" {
		return disabledTransport{}
	}
	return NewResendTransport(apiKey)
}

// EmailRecorder はメール送信結果を記録するインターフェース。
type EmailRecorder interface {
	RecordEmail(outcome string)
}

// NewsletterSender はニュースレターをメールとして配信する。
type NewsletterSender struct {
	renderer  *Renderer
	transport Transport
	from      string
	logger    *slog.Logger
	recorder  EmailRecorder
}

// NewNewsletterSender はNewsletterSenderを生成する。fromが空の場合はDefaultFromを使用する。
func NewNewsletterSender(renderer *Renderer, transport Transport, from string, logger *slog.Logger, recorder EmailRecorder) *NewsletterSender {
	if from == "" {
		from = DefaultFrom
	}
	return &NewsletterSender{
		renderer:  renderer,
		transport: transport,
		from:      from,
		logger:    logger,
		recorder:  recorder,
	}
}

// SendNewsletter はニュースレター本文をレンダリングし、宛先に送信する。
func (s *NewsletterSender) SendNewsletter(ctx context.Context, to string, n *model.Newsletter) error {
	html, err := s.renderer.Render(n.Content)
	if err != nil {
		s.record(metrics.OutcomeFailure)
		return err
	}

	id, err := s.transport.Send(ctx, &Message{
		From:    s.from,
		To:      to,
		Subject: n.Title,
		HTML:    html,
	})
	if err != nil {
		s.record(metrics.OutcomeFailure)
		s.logger.Error("メール送信に失敗しました",
			slog.String("newsletter_id", n.ID),
			slog.String("error", err.Error()),
		)
		return err
	}

	s.record(metrics.OutcomeSuccess)
	s.logger.Info("newsletter email sent",
		slog.String("newsletter_id", n.ID),
		slog.String("message_id", id),
	)
	return nil
}

func (s *NewsletterSender) record(outcome string) {
	if s.recorder != nil {
		s.recorder.RecordEmail(outcome)
	}
}
