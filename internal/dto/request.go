package dto

// TokenRequest exchanges the admin API secret for a bearer token.
type TokenRequest struct {
	Secret string `json:"secret" binding:"required"`
}
