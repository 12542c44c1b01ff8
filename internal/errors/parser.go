package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo パース結果
type ErrorInfo struct {
	Code    string // エラーコード（codes.go参照）
	Message string // 利用者向けメッセージ
}

// ParseError はDB層やドライバのエラーをコードと日本語メッセージに変換する。
// 内部情報は隠しつつ、利用者が対処できる情報だけを返す。
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "サーバーエラーが発生しました",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	// 1. GORM基本エラー
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// 2. 一意制約違反 (postgres 23505 / sqlite UNIQUE)
	if strings.Contains(errStrLower, "duplicate key") ||
		strings.Contains(errStrLower, "unique constraint") ||
		strings.Contains(errStrLower, "unique failed") {
		return parseDuplicateKeyError(errStr)
	}

	// 3. 外部キー制約違反 (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return parseForeignKeyError(errStr)
	}

	// 4. NOT NULL制約違反 (23502)
	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "not-null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "必須項目が入力されていません",
		}
	}

	// 5. ネットワークエラー
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "外部サービスへの接続に失敗しました。しばらくしてから再度お試しください",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

// ParseAndRespond はエラーをパースして標準形式で応答する
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "username") || strings.Contains(errLower, "idx_users_username") {
		return ErrorInfo{
			Code:    AuthUsernameExists,
			Message: "このユーザー名は既に使用されています",
		}
	}

	if strings.Contains(errLower, "order_number") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "注文番号が重複しました。もう一度お試しください",
		}
	}

	if strings.Contains(errLower, "locations") || strings.Contains(errLower, "pkey") || strings.Contains(errLower, "primary key") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "このIDは既に使用されています",
		}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "既に存在するデータです",
	}
}

func parseForeignKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "still referenced") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "関連するデータが存在するため削除できません",
		}
	}

	if strings.Contains(errLower, "customer_id") || strings.Contains(errLower, "fk_users") {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: "存在しない顧客です",
		}
	}
	if strings.Contains(errLower, "vehicle_id") || strings.Contains(errLower, "fk_vehicles") {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: "存在しない車両です",
		}
	}
	if strings.Contains(errLower, "location_id") || strings.Contains(errLower, "fk_locations") {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: "存在しない拠点です",
		}
	}

	return ErrorInfo{
		Code:    ResourceNotFound,
		Message: "参照先のデータが見つかりません",
	}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "user") || strings.Contains(contextLower, "ユーザー") {
		return "ユーザーが見つかりません"
	}
	if strings.Contains(contextLower, "vehicle") || strings.Contains(contextLower, "車両") {
		return "車両が見つかりません"
	}
	if strings.Contains(contextLower, "order") || strings.Contains(contextLower, "注文") {
		return "注文が見つかりません"
	}
	if strings.Contains(contextLower, "location") || strings.Contains(contextLower, "拠点") {
		return "拠点が見つかりません"
	}

	return "要求されたデータが見つかりません"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "create") || strings.Contains(contextLower, "登録") {
		return "登録中にエラーが発生しました。しばらくしてから再度お試しください"
	}
	if strings.Contains(contextLower, "update") || strings.Contains(contextLower, "更新") {
		return "更新中にエラーが発生しました。しばらくしてから再度お試しください"
	}
	if strings.Contains(contextLower, "delete") || strings.Contains(contextLower, "削除") {
		return "削除中にエラーが発生しました。しばらくしてから再度お試しください"
	}

	return "サーバーエラーが発生しました。しばらくしてから再度お試しください"
}
