// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer はユーザーが入力した自由記述テキストからマークアップを除去する。
// 保存されるのはプレーンテキストのみで、HTMLタグは文字列として残らない。
package security

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はプレーンテキスト化のインターフェースを定義する。
// プロフィールの自由記述、献立の説明、チャットメッセージ、実績の保存前に使用される。
type TextSanitizer interface {
	// Sanitize はHTMLタグを除去し、前後の空白を取り除いたテキストを返す。
	// script, styleタグは中身ごと除去する。
	// タグを構成しない "<" や "&"、入力に含まれる実体参照は入力どおりの文字列で残る。
	// 空文字列の入力には空文字列を返す。
	Sanitize(raw string) string
}

// textSanitizer はTextSanitizerの実装。
// bluemondayのポリシーはスレッドセーフなので1つを共有する。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerの新しいインスタンスを生成する。
// すべてのタグを拒否するStrictPolicyを使用する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// tagStart は "<" の直後がタグまたはコメントとして閉じている場合にマッチする。
var tagStart = regexp.MustCompile(`^<(?:/?[A-Za-z][^<>]*>|!--)`)

// Sanitize はマークアップを除去したプレーンテキストを返す。
func (s *textSanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	// bluemondayの出力はHTMLエスケープされている。タグ以外の文字はあらかじめ
	// エスケープしておき、最後に1回だけアンエスケープして入力どおりに戻す。
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(escapeText(raw))))
}

// escapeText は "&" とタグを構成しない "<" を実体参照に置き換える。
func escapeText(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		switch c := raw[i]; c {
		case '&':
			b.WriteString("&amp;")
		case '<':
			if tagStart.MatchString(raw[i:]) {
				b.WriteByte(c)
			} else {
				b.WriteString("&lt;")
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// SanitizePtr はnilを保ったままSanitizeを適用する。
// 結果が空文字列になった場合はnilを返す。
func SanitizePtr(s TextSanitizer, raw *string) *string {
	if raw == nil {
		return nil
	}
	cleaned := s.Sanitize(*raw)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
