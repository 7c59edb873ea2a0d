// Package notifier は登録時のウェルカムメール送信を提供する。
//
// 送信はベストエフォートの非同期タスクとしてモデル化する。
// 配送失敗はユーザー作成をロールバックせず、呼び出し元が
// 結果チャネルを通じてログ等で観測できるだけとする。
package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"
)

// Message はウェルカムメールの送信内容を表す。
type Message struct {
	Recipient   string // 宛先メールアドレス
	DisplayName string // 宛名に使用する表示名
	Code        string // 検証コード（2FA無効のユーザーでは空）
}

// Notifier はメール送信のインターフェース。
type Notifier interface {
	// Send はメッセージを送信する。ブロッキング呼び出し。
	Send(ctx context.Context, msg Message) error
}

// Dispatch はSendを別goroutineで実行し、結果を受け取るチャネルを返す。
// チャネルはバッファ付きのため、呼び出し元が結果を読まなくても
// goroutineはリークしない。リクエスト処理の成否からは切り離される。
func Dispatch(n Notifier, msg Message, timeout time.Duration) <-chan error {
	result := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		result <- n.Send(ctx, msg)
	}()
	return result
}

// SMTPNotifier はnet/smtpを使用したNotifierの実装。
type SMTPNotifier struct {
	addr string // "host:port"
	from string
	auth smtp.Auth
}

// NewSMTPNotifier はSMTPNotifierを生成する。
// usernameが空の場合は認証なしで送信する。
func NewSMTPNotifier(addr, from, username, password string) *SMTPNotifier {
	var auth smtp.Auth
	if username != "" {
		host := addr
		if i := strings.LastIndex(addr, ":"); i >= 0 {
			host = addr[:i]
		}
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPNotifier{addr: addr, from: from, auth: auth}
}

// Send はウェルカムメールを送信する。
// net/smtpはコンテキストを受け取らないため、キャンセル済みの
// コンテキストの確認のみ行う。
func (n *SMTPNotifier) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("notification cancelled: %w", err)
	}

	body := buildWelcomeMail(n.from, msg)
	if err := smtp.SendMail(n.addr, n.auth, n.from, []string{msg.Recipient}, body); err != nil {
		return fmt.Errorf("failed to send welcome mail: %w", err)
	}
	return nil
}

// buildWelcomeMail はウェルカムメールのRFC 5322形式の本文を構築する。
func buildWelcomeMail(from string, msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.Recipient)
	b.WriteString("Subject: Welcome to Portfolio Platform\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Hello %s,\r\n\r\n", msg.DisplayName)
	b.WriteString("Welcome to the Portfolio Platform!\r\n")
	if msg.Code != "" {
		fmt.Fprintf(&b, "\r\nYour verification code is: %s\r\n", msg.Code)
	}
	return []byte(b.String())
}

// NopNotifier は何も送信しないNotifier。
// SMTPが未設定の環境で使用する。
type NopNotifier struct{}

// Send は常に成功する。
func (NopNotifier) Send(ctx context.Context, msg Message) error {
	return nil
}

// compile-time interface checks
var _ Notifier = (*SMTPNotifier)(nil)
var _ Notifier = NopNotifier{}
