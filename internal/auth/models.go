// Package auth provides operator authentication for Greenwave.
package auth

// Role describes what an authenticated operator may do.
type Role string

const (
	// RoleDispatcher may request route optimizations and forecasts.
	RoleDispatcher Role = "dispatcher"

	// RoleTrafficControl may additionally activate clearance plans and
	// corridor schedules.
	RoleTrafficControl Role = "traffic-control"

	// RoleAdmin may manage the intersection registry.
	RoleAdmin Role = "admin"
)

// Operator represents an authenticated control-room operator.
type Operator struct {
	ID   string `json:"operatorId"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// TokenRequest is the request body for exchanging an API key for a token.
type TokenRequest struct {
	APIKey string `json:"apiKey"`
}

// Validate validates the token request.
func (r *TokenRequest) Validate() []FieldError {
	var errors []FieldError

	if r.APIKey == "" {
		errors = append(errors, FieldError{
			Field:   "apiKey",
			Message: "api key is required",
			Code:    "REQUIRED",
		})
	}

	return errors
}

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// TokenResponse represents the response after successful authentication.
type TokenResponse struct {
	// AccessToken is the JWT access token for API authentication.
	AccessToken string `json:"accessToken"`

	// TokenType is always "Bearer".
	TokenType string `json:"tokenType"`

	// ExpiresIn is the number of seconds until the access token expires.
	ExpiresIn int64 `json:"expiresIn"`

	// Operator contains the authenticated operator's information.
	Operator *Operator `json:"operator"`
}
