package constants

const (
	// ContextKeyUserID is the session and gin context key holding the signed-in user's ID.
	ContextKeyUserID = "user_id"
	// ContextKeyUser holds the loaded models.User for the request.
	ContextKeyUser = "user"
	// ContextKeyTask holds the task loaded by RequireTaskAccess.
	ContextKeyTask = "task"

	SessionCookieName = "task_session"
	SessionMaxAge     = 86400 * 7 // 7 days

	MinPasswordLength = 6

	MaxTitleLength       = 255
	MaxDescriptionLength = 1000
	MaxNameLength        = 255

	MinPageSize     = 1
	DefaultPageSize = 50
	MaxPageSize     = 200

	MaxAIGeneratedTasks = 20
)
