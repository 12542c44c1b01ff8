package errors

// エラーコード定数
// 形式: CATEGORY_SPECIFIC_DETAIL
// フロントエンドはこのコードでメッセージをマッピングする

const (
	// ==================== 認証 (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // ログイン必要
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // ユーザー名またはパスワード不正
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"       // トークン期限切れ
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"       // 不正なトークン
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"       // 失効済みトークン
	AuthUsernameExists     = "AUTH_USERNAME_EXISTS"     // ユーザー名重複

	// ==================== 認可 (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"      // アクセス権限なし
	AuthzAccessDenied = "AUTHZ_ACCESS_DENIED"  // 操作権限なし
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"     // 管理者のみ
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND" // 権限情報なし

	// ==================== 検証 (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"  // 不正な入力
	ValidationInvalidID     = "VALIDATION_INVALID_ID"     // 不正なID
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT" // 不正な形式
	ValidationRequired      = "VALIDATION_REQUIRED"       // 必須項目

	// ==================== リソース (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"      // リソースなし
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS" // 既に存在
	ResourceConflict      = "RESOURCE_CONFLICT"       // 競合

	// ==================== 注文 (ORDER_) ====================
	OrderNotFound          = "ORDER_NOT_FOUND"           // 注文なし
	OrderInvalidTransition = "ORDER_INVALID_TRANSITION"  // 状態遷移不可
	OrderInvalidStatus     = "ORDER_INVALID_STATUS"      // 不正な注文状態

	// ==================== アップロード (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE" // 不正なファイル形式
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"    // ファイルサイズ超過
	UploadTooManyFiles    = "UPLOAD_TOO_MANY_FILES"    // ファイル数超過
	UploadFailed          = "UPLOAD_FAILED"            // アップロード失敗

	// ==================== 通知 (NOTIFY_) ====================
	NotifyNotConfigured = "NOTIFY_NOT_CONFIGURED" // 通知未設定
	NotifySendFailed    = "NOTIFY_SEND_FAILED"    // 通知送信失敗

	// ==================== 内部エラー (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // サーバーエラー
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // DBエラー
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"   // 外部APIエラー
)
