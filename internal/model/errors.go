// Package model はドメインモデルを定義する。
package model

import "fmt"

// Category はAPIErrorの分類を表す。HTTPステータスへの変換はハンドラー層が行う。
type Category string

const (
	CategoryValidation Category = "validation"
	CategoryAuth       Category = "auth"
	CategoryForbidden  Category = "forbidden"
	CategoryNotFound   Category = "not_found"
	CategoryConflict   Category = "conflict"
	CategoryRateLimit  Category = "rate_limit"
	CategorySystem     Category = "system"
)

// APIError は統一エラーフォーマットを表す。
// レスポンスボディは {"error": Message, "code": Code} となる。
type APIError struct {
	Code     string   // エラーコード
	Message  string   // エラーメッセージ
	Category Category // HTTPステータスの決定に使用する分類
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeAuthenticationRequired = "AUTHENTICATION_REQUIRED"
	ErrCodeInvalidCredentials     = "INVALID_CREDENTIALS"
	ErrCodeUserIDNotAllowed       = "USER_ID_NOT_ALLOWED"
	ErrCodeInvalidJSON            = "INVALID_JSON"
	ErrCodeInvalidID              = "INVALID_ID"
	ErrCodeInvalidDateFormat      = "INVALID_DATE_FORMAT"
	ErrCodeMissingDate            = "MISSING_DATE"
	ErrCodeMissingUserID          = "MISSING_USER_ID"
	ErrCodeForbidden              = "FORBIDDEN"
	ErrCodeNotFound               = "NOT_FOUND"
	ErrCodeProfileNotFound        = "PROFILE_NOT_FOUND"
	ErrCodeUserNotFound           = "USER_NOT_FOUND"
	ErrCodeEmailTaken             = "EMAIL_TAKEN"
	ErrCodeRateLimitExceeded      = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal               = "INTERNAL_ERROR"
)

// NewValidationError は400系の入力検証エラーを生成する。
func NewValidationError(code, message string) *APIError {
	return &APIError{Code: code, Message: message, Category: CategoryValidation}
}

// NewNotFoundError は対象が存在しない（または呼び出し元の所有でない）場合のエラーを生成する。
func NewNotFoundError(code, message string) *APIError {
	return &APIError{Code: code, Message: message, Category: CategoryNotFound}
}

// NewAuthenticationRequiredError は未認証エラーを生成する。
func NewAuthenticationRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthenticationRequired,
		Message:  "Authentication required",
		Category: CategoryAuth,
	}
}

// NewInvalidCredentialsError はメールアドレスまたはパスワードの不一致エラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Invalid email or password",
		Category: CategoryAuth,
	}
}

// NewUserIDNotAllowedError はリクエストボディにuserIdが含まれていた場合のエラーを生成する。
func NewUserIDNotAllowedError() *APIError {
	return NewValidationError(ErrCodeUserIDNotAllowed, "User ID cannot be provided in request body")
}

// NewInvalidDateFormatError は日付がYYYY-MM-DD形式でない場合のエラーを生成する。
func NewInvalidDateFormatError() *APIError {
	return NewValidationError(ErrCodeInvalidDateFormat, "Invalid date format. Expected YYYY-MM-DD")
}

// NewInvalidIDError はIDパラメータが不正な場合のエラーを生成する。
func NewInvalidIDError() *APIError {
	return NewValidationError(ErrCodeInvalidID, "Valid ID is required")
}

// NewForbiddenError は他ユーザーのリソースにアクセスしようとした場合のエラーを生成する。
func NewForbiddenError(message string) *APIError {
	return &APIError{Code: ErrCodeForbidden, Message: message, Category: CategoryForbidden}
}

// NewEmailTakenError はメールアドレスが既に登録済みの場合のエラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "An account with this email already exists",
		Category: CategoryConflict,
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return NewNotFoundError(ErrCodeUserNotFound, "User not found")
}

// NewInternalError は予期しないエラーを500として返すためのエラーを生成する。
// メッセージには原因のエラー文字列をそのまま含める。
func NewInternalError(cause error) *APIError {
	msg := "Internal server error"
	if cause != nil {
		msg += ": " + cause.Error()
	}
	return &APIError{Code: ErrCodeInternal, Message: msg, Category: CategorySystem}
}
