package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// NewRecoveryMiddleware はハンドラー内のpanicを捕捉し、他のAPIエラーと同じ
// {"error","code"} 形式の500 INTERNAL_ERRORに変換する。
// http.ErrAbortHandler は接続中断の合図なのでそのまま再送出する。
func NewRecoveryMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer recoverToInternalError(w, r)
			next.ServeHTTP(w, r)
		})
	}
}

func recoverToInternalError(w http.ResponseWriter, r *http.Request) {
	rec := recover()
	if rec == nil {
		return
	}
	if rec == http.ErrAbortHandler {
		panic(rec)
	}
	slog.Error("handler panicked",
		slog.Any("panic", rec),
		slog.String("route", r.Method+" "+r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)
	WriteInternalServerError(w, rec)
}
