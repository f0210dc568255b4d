package constants

const (
	// Session and context keys
	ContextKeyUserID  = "user_id"
	ContextKeyTask    = "task"
	SessionCookieName = "todo_session"

	// Flash message categories
	FlashSuccess = "success"
	FlashError   = "error"

	// Validation
	MinPasswordLength    = 8
	MaxDescriptionLength = 64

	// Pagination
	MinPageSize     = 1
	DefaultPageSize = 50
	MaxPageSize     = 100

	// AI
	MaxAIGeneratedTasks = 20
)
