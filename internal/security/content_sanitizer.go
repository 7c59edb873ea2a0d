package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はポートフォリオコンテンツのサニタイズ機能の
// インターフェースを定義する。保存前の入力と API 応答の両方で使用される。
type ContentSanitizerService interface {
	// SanitizeTitle はタイトルからすべてのHTMLを除去し、プレーンテキストを返す。
	SanitizeTitle(raw string) string

	// SanitizeDescription は説明文をサニタイズして安全なHTMLを返す。
	// 許可タグ（p, br, a, ul, ol, li, blockquote, pre, code, strong, em）のみを通過させ、
	// script, iframe, styleタグおよびon*イベント属性を除去する。
	// aタグにはtarget="_blank"とrel="noopener noreferrer"が自動付与される。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeDescription(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	strict *bluemonday.Policy
	rich   *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// タイトル用の厳格ポリシーと説明文用の許可リストポリシーを構築する。
func NewContentSanitizer() *contentSanitizer {
	rich := bluemonday.NewPolicy()

	// 許可リストに含まれないタグ（script, iframe, style等）と
	// on*イベント属性はbluemondayにより自動的に除去される。
	rich.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em",
	)

	// リンクは完全修飾URLのみ許可し、外部遷移を安全にする。
	rich.AllowAttrs("href").OnElements("a")
	rich.AllowStandardURLs()
	rich.AllowRelativeURLs(false)
	rich.AddTargetBlankToFullyQualifiedLinks(true)
	rich.RequireNoReferrerOnLinks(true)

	return &contentSanitizer{
		strict: bluemonday.StrictPolicy(),
		rich:   rich,
	}
}

// SanitizeTitle はタイトルからすべてのHTMLを除去する。
func (s *contentSanitizer) SanitizeTitle(raw string) string {
	return strings.TrimSpace(s.strict.Sanitize(raw))
}

// SanitizeDescription は説明文をサニタイズして安全なHTMLを返す。
func (s *contentSanitizer) SanitizeDescription(raw string) string {
	return s.rich.Sanitize(raw)
}
