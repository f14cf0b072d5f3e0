package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hitoshi/nutricoach/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
type ErrorResponseBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Error: apiErr.Message,
		Code:  apiErr.Code,
	})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// causeがnilの場合はメッセージに原因を含めない。
func WriteInternalServerError(w http.ResponseWriter, cause any) {
	var err error
	switch c := cause.(type) {
	case nil:
	case error:
		err = c
	default:
		err = fmt.Errorf("%v", c)
	}
	WriteErrorResponse(w, http.StatusInternalServerError, model.NewInternalError(err))
}
