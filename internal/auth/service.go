// Package auth は認証コアを提供する。
// パスワード検証、検証コードのライフサイクル、セッション確立、
// アクセストークン発行を担う。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/takeru/folio/internal/model"
	"github.com/takeru/folio/internal/notifier"
	"github.com/takeru/folio/internal/repository"
)

// notifyTimeout はウェルカムメール送信の打ち切り時間。
const notifyTimeout = 15 * time.Second

// LoginStatus は認証フローの到達状態を表す。
type LoginStatus string

const (
	// StatusAuthenticated はパスワード検証に成功し、セッションが確立された状態。
	StatusAuthenticated LoginStatus = "authenticated"
	// StatusStepUpRequired はパスワード検証には成功したが、
	// 検証コードの提出が必要な状態。セッションはまだ確立されない。
	StatusStepUpRequired LoginStatus = "step_up_required"
)

// LoginResult はAuthenticateの結果。
// StatusがStepUpRequiredの場合、Sessionはnil。
type LoginResult struct {
	Status  LoginStatus
	User    *model.User
	Session *model.Session
}

// VerifyResult は検証コード提出の成功結果。
// トークン発行はこのステップアップ経路でのみ到達可能。
type VerifyResult struct {
	User    *model.User
	Token   string
	Session *model.Session
}

// RegisterInput はユーザー登録の入力。
type RegisterInput struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
	TwoFactor bool
}

// MetricsRecorder は認証イベントのメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordStepUpRequired()
	RecordCodeConsumed()
	RecordCodeRejected()
	RecordTokenIssued()
}

// nopMetrics はメトリクス未設定時のMetricsRecorder。
type nopMetrics struct{}

func (nopMetrics) RecordLoginSuccess()   {}
func (nopMetrics) RecordLoginFailure()   {}
func (nopMetrics) RecordStepUpRequired() {}
func (nopMetrics) RecordCodeConsumed()   {}
func (nopMetrics) RecordCodeRejected()   {}
func (nopMetrics) RecordTokenIssued()    {}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
// 各リクエストは独立に並行実行され、グローバルなロックは持たない。
// 唯一の共有可変リソースである検証コードの消費は、リポジトリの
// 条件付き更新によって原子性が保証される。
type Service struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	issuer   *TokenIssuer
	notifier notifier.Notifier
	metrics  MetricsRecorder
	config   ServiceConfig
}

// NewService はServiceを生成する。
// metricsがnilの場合は記録なしで動作する。
func NewService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	issuer *TokenIssuer,
	n notifier.Notifier,
	metrics MetricsRecorder,
	config ServiceConfig,
) *Service {
	if n == nil {
		n = notifier.NopNotifier{}
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Service{
		users:    users,
		sessions: sessions,
		issuer:   issuer,
		notifier: n,
		metrics:  metrics,
		config:   config,
	}
}

// Authenticate はユーザー名とパスワードを検証する。
//
// 状態遷移:
//   - ユーザー名不明またはパスワード不一致 → ErrInvalidCredentials
//     （どちらが原因かは応答から区別できない）
//   - 検証コードが未消費 → StatusStepUpRequired（セッションは確立しない）
//   - それ以外 → StatusAuthenticated（セッションを確立する）
//
// ストア障害はErrAuthenticationFailedとして伝播する。
func (s *Service) Authenticate(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%w: user lookup: %v", ErrAuthenticationFailed, err)
	}

	if user == nil {
		// 実在ユーザーと応答時間を揃えるため、存在しない場合も比較を行う
		VerifyPassword(password, dummyPasswordHash)
		s.metrics.RecordLoginFailure()
		return nil, ErrInvalidCredentials
	}

	if !VerifyPassword(password, user.PasswordHash) {
		s.metrics.RecordLoginFailure()
		return nil, ErrInvalidCredentials
	}

	if user.StepUpPending() {
		s.metrics.RecordStepUpRequired()
		slog.Info("step-up verification required",
			slog.String("user_id", user.ID),
		)
		return &LoginResult{Status: StatusStepUpRequired, User: user}, nil
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: session creation: %v", ErrAuthenticationFailed, err)
	}

	s.metrics.RecordLoginSuccess()
	slog.Info("user logged in",
		slog.String("user_id", user.ID),
	)

	return &LoginResult{Status: StatusAuthenticated, User: user, Session: session}, nil
}

// VerifyCode は提出された検証コードを照合・消費し、
// アクセストークンの発行とセッションの確立を行う。
//
// コードの照合とクリアはリポジトリ側の単一の条件付き更新で行われるため、
// 同一コードの並行提出では必ず一方だけが成功し、他方はErrCodeRejectedになる。
// コード不一致と消費済みはどちらもErrCodeRejectedで区別されない。
func (s *Service) VerifyCode(ctx context.Context, username, code string) (*VerifyResult, error) {
	user, err := s.users.ConsumeVerificationCode(ctx, username, code)
	if err != nil {
		return nil, fmt.Errorf("%w: code consumption: %v", ErrAuthenticationFailed, err)
	}
	if user == nil {
		s.metrics.RecordCodeRejected()
		return nil, ErrCodeRejected
	}
	s.metrics.RecordCodeConsumed()

	token, err := s.issuer.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("%w: token issuance: %v", ErrAuthenticationFailed, err)
	}
	s.metrics.RecordTokenIssued()

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: session creation: %v", ErrAuthenticationFailed, err)
	}

	s.metrics.RecordLoginSuccess()
	slog.Info("step-up verification completed",
		slog.String("user_id", user.ID),
	)

	return &VerifyResult{User: user, Token: token, Session: session}, nil
}

// Register は新規ユーザーを作成する。
// 2FAが有効な場合は検証コードを生成して未消費状態で保存し、
// コードを含むウェルカムメールを非同期で送信する。
// メール配送の失敗はユーザー作成をロールバックせず、ログにのみ記録される。
func (s *Service) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	if input.Username == "" {
		return nil, model.NewValidationError("ユーザー名は必須です")
	}
	if len(input.Password) < 8 {
		return nil, model.NewValidationError("パスワードは8文字以上で指定してください")
	}
	if input.Email == "" {
		return nil, model.NewValidationError("メールアドレスは必須です")
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: password hashing: %v", ErrAuthenticationFailed, err)
	}

	now := time.Now()
	user := &model.User{
		ID:               uuid.New().String(),
		Username:         input.Username,
		PasswordHash:     hash,
		Role:             model.RoleMember,
		TwoFactorEnabled: input.TwoFactor,
		Email:            input.Email,
		FirstName:        input.FirstName,
		LastName:         input.LastName,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	var code string
	if input.TwoFactor {
		code, err = GenerateCode()
		if err != nil {
			return nil, fmt.Errorf("%w: code generation: %v", ErrAuthenticationFailed, err)
		}
		user.VerificationCode = &code
	}

	if err := s.users.Create(ctx, user); err != nil {
		if err == repository.ErrUsernameConflict {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("%w: user creation: %v", ErrAuthenticationFailed, err)
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.Bool("two_factor", input.TwoFactor),
	)

	s.notifyWelcome(user, code)

	return user, nil
}

// notifyWelcome はウェルカムメールをfire-and-forgetで送信する。
// 結果チャネルを別goroutineで観測し、成否をログにのみ残す。
// コード本文はログに出力しない。
func (s *Service) notifyWelcome(user *model.User, code string) {
	msg := notifier.Message{
		Recipient:   user.Email,
		DisplayName: user.DisplayName(),
		Code:        code,
	}
	result := notifier.Dispatch(s.notifier, msg, notifyTimeout)

	userID := user.ID
	go func() {
		if err := <-result; err != nil {
			slog.Error("failed to deliver welcome mail",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
			return
		}
		slog.Info("welcome mail delivered",
			slog.String("user_id", userID),
		)
	}()
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessions.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// CurrentUser はセッションから現在のユーザーを取得する。
func (s *Service) CurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session not found or expired")
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}

	return user, nil
}

// TwoFactorEnabled は指定ユーザーの2FA設定を返す。
// 存在しないユーザーにはfalseを返す（存在の有無を露呈しない）。
func (s *Service) TwoFactorEnabled(ctx context.Context, username string) (bool, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("%w: user lookup: %v", ErrAuthenticationFailed, err)
	}
	if user == nil {
		return false, nil
	}
	return user.TwoFactorEnabled, nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
