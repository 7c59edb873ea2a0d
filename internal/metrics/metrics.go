// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector は認証イベントのPrometheusメトリクスを収集する。
// auth.MetricsRecorderを実装する。
type Collector struct {
	loginSuccess   prometheus.Counter
	loginFailure   prometheus.Counter
	stepUpRequired prometheus.Counter
	codeConsumed   prometheus.Counter
	codeRejected   prometheus.Counter
	tokenIssued    prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "folio_login_success_total",
			Help: "ログイン成功の合計数",
		}),
		loginFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "folio_login_failure_total",
			Help: "ログイン拒否の合計数",
		}),
		stepUpRequired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "folio_step_up_required_total",
			Help: "検証コード提出が要求された回数",
		}),
		codeConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "folio_code_consumed_total",
			Help: "消費された検証コードの合計数",
		}),
		codeRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "folio_code_rejected_total",
			Help: "拒否された検証コードの合計数",
		}),
		tokenIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "folio_token_issued_total",
			Help: "発行されたアクセストークンの合計数",
		}),
	}

	reg.MustRegister(
		c.loginSuccess,
		c.loginFailure,
		c.stepUpRequired,
		c.codeConsumed,
		c.codeRejected,
		c.tokenIssued,
	)

	return c
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure はログイン拒否を記録する。
func (c *Collector) RecordLoginFailure() {
	c.loginFailure.Inc()
}

// RecordStepUpRequired は検証コード提出の要求を記録する。
func (c *Collector) RecordStepUpRequired() {
	c.stepUpRequired.Inc()
}

// RecordCodeConsumed は検証コードの消費を記録する。
func (c *Collector) RecordCodeConsumed() {
	c.codeConsumed.Inc()
}

// RecordCodeRejected は検証コードの拒否を記録する。
func (c *Collector) RecordCodeRejected() {
	c.codeRejected.Inc()
}

// RecordTokenIssued はアクセストークンの発行を記録する。
func (c *Collector) RecordTokenIssued() {
	c.tokenIssued.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
