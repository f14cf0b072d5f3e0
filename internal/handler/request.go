package handler

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/hitoshi/nutricoach/internal/model"
)

// maxRequestBodyBytes はリクエストボディの上限サイズ。
const maxRequestBodyBytes = 1 << 20

// maxPageSize は一覧取得で指定できるlimitの上限。
const maxPageSize = 100

// requestBody はフィールドごとに遅延デコードするJSONオブジェクト。
// 値の有無・null・型の違いを区別して検証するために使う。
type requestBody map[string]json.RawMessage

// decodeBody はリクエストボディをJSONオブジェクトとして読み込む。
// userId / user_id が含まれる場合は、他のフィールドに関わらずUSER_ID_NOT_ALLOWEDを返す。
func decodeBody(w http.ResponseWriter, r *http.Request) (requestBody, *model.APIError) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	var body requestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, model.NewValidationError(model.ErrCodeInvalidJSON, "Invalid JSON body")
	}
	if body.has("userId") || body.has("user_id") {
		return nil, model.NewUserIDNotAllowedError()
	}
	if body == nil {
		body = requestBody{}
	}
	return body, nil
}

// has はキーが存在するかを返す。値がnullでもtrue。
func (b requestBody) has(key string) bool {
	_, ok := b[key]
	return ok
}

// isNull はキーが存在しないか、値がnullかを返す。
func (b requestBody) isNull(key string) bool {
	raw, ok := b[key]
	return !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// truthy は値をJavaScriptの真偽値に変換した結果を返す。
// 存在しない・null・false・0・空文字列はfalse、それ以外（"0" や空配列を含む）はtrue。
func (b requestBody) truthy(key string) bool {
	if b.isNull(key) {
		return false
	}
	var v any
	if err := json.Unmarshal(b[key], &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}

// str は値を文字列として取り出す。文字列でない場合（nullを含む）はokがfalse。
func (b requestBody) str(key string) (s string, ok bool) {
	if b.isNull(key) {
		return "", false
	}
	if err := json.Unmarshal(b[key], &s); err != nil {
		return "", false
	}
	return s, true
}

// number は値を数値として取り出す。JSONの数値と数値形式の文字列を受け付ける。
func (b requestBody) number(key string) (float64, bool) {
	if b.isNull(key) {
		return 0, false
	}
	raw := b[key]

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// raw は値をそのままのJSONとして返す。
func (b requestBody) raw(key string) json.RawMessage {
	return b[key]
}

// pagination はlimit/offsetクエリパラメータを解釈する。
// limitが不正または0以下の場合はdefaultLimit、上限はmaxPageSize。offsetが不正または負の場合は0。
func pagination(r *http.Request, defaultLimit int) (limit, offset int) {
	q := r.URL.Query()

	limit = defaultLimit
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

// parseID はidクエリパラメータを整数として解釈する。
func parseID(r *http.Request) (int64, *model.APIError) {
	raw := r.URL.Query().Get("id")
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if raw == "" || err != nil {
		return 0, model.NewInvalidIDError()
	}
	return id, nil
}

// invalidField は型の合わない値に対するINVALID_<FIELD>エラーを生成する。
// toInt32 は小数部を切り捨てて整数に変換する。INTEGER列の範囲外の場合はokがfalse。
func toInt32(v float64) (int, bool) {
	t := math.Trunc(v)
	if t < math.MinInt32 || t > math.MaxInt32 {
		return 0, false
	}
	return int(t), true
}

func invalidField(code, label string) *model.APIError {
	return model.NewValidationError(code, label+" must be a valid value")
}

// missingField は必須フィールドが欠けている場合のMISSING_<FIELD>エラーを生成する。
func missingField(code, label string) *model.APIError {
	return model.NewValidationError(code, label+" is required")
}
