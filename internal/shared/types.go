package shared

// shared types across the application
// 1st: auth claims carried from the JWT middleware into handlers and services
// 2nd: add more shared types as needed

type AuthClaims struct {
	UserID   string `json:"user_id" db:"user_id"`    // user identifier (UUID)
	Username string `json:"username" db:"user_name"` // registered nickname
}
