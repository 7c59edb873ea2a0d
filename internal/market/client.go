// Package market は市場データAPI連携機能を提供する。
// ダッシュボード表示用の株価スナップショット取得を含む。
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// maxResponseSize は市場データAPIレスポンスの最大サイズ（バイト）。
const maxResponseSize = 1 << 20

// Quote は1銘柄の前日終値スナップショット。
type Quote struct {
	Symbol string    `json:"symbol"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
	Date   time.Time `json:"date"`
}

// aggsResponse は集計APIのレスポンス形式。
type aggsResponse struct {
	Ticker  string `json:"ticker"`
	Status  string `json:"status"`
	Results []struct {
		Open      float64 `json:"o"`
		High      float64 `json:"h"`
		Low       float64 `json:"l"`
		Close     float64 `json:"c"`
		Volume    float64 `json:"v"`
		Timestamp int64   `json:"t"`
	} `json:"results"`
}

// Client は市場データAPIのクライアント。
// 前日集計エンドポイントを使用して銘柄の終値を取得する。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	apiKey     string
}

// NewClient はClientの新しいインスタンスを生成する。
// httpClientにはSSRF防止機能付きのクライアントを渡すことを想定している。
func NewClient(httpClient *http.Client, logger *slog.Logger, baseURL, apiKey string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// PreviousClose は指定銘柄の前日終値を取得する。
// 取得失敗時はエラーを返す（呼び出し元が表示の省略を判断する）。
func (c *Client) PreviousClose(ctx context.Context, symbol string) (*Quote, error) {
	if symbol == "" {
		return nil, fmt.Errorf("銘柄シンボルが空です")
	}

	reqURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("ベースURLのパースに失敗しました: %w", err)
	}
	reqURL = reqURL.JoinPath("v2", "aggs", "ticker", symbol, "prev")

	q := reqURL.Query()
	q.Set("adjusted", "true")
	if c.apiKey != "" {
		q.Set("apiKey", c.apiKey)
	}
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("市場データAPIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
			slog.String("symbol", symbol),
		)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("市場データAPIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
			slog.String("symbol", symbol),
		)
		return nil, fmt.Errorf("市場データAPIがステータス %d を返しました", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		c.logger.Error("レスポンスボディの読み取りに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	var result aggsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		c.logger.Error("市場データAPIのレスポンスのパースに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	if len(result.Results) == 0 {
		return nil, fmt.Errorf("銘柄 %s の結果が空です", symbol)
	}

	r := result.Results[0]
	return &Quote{
		Symbol: symbol,
		Open:   r.Open,
		High:   r.High,
		Low:    r.Low,
		Close:  r.Close,
		Volume: r.Volume,
		Date:   time.UnixMilli(r.Timestamp).UTC(),
	}, nil
}
