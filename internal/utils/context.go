package utils

const (
	UserIDKey    contextKey = "user_id"
	UserPhoneKey contextKey = "phone"
	UserRoleKey  contextKey = "role"
)
