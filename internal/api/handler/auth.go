package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/greenwave/greenwave/internal/api/models"
	"github.com/greenwave/greenwave/internal/api/response"
	"github.com/greenwave/greenwave/internal/auth"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Token handles POST /v1/auth/token - exchange an operator API key for an
// access token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req auth.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		fieldErrors := make([]models.FieldError, len(errs))
		for i, e := range errs {
			fieldErrors[i] = models.FieldError{
				Field:   e.Field,
				Message: e.Message,
				Code:    e.Code,
			}
		}
		response.BadRequest(w, r, "validation error", fieldErrors)
		return
	}

	tokenResp, err := h.authService.ExchangeAPIKey(req.APIKey)
	if err != nil {
		if errors.Is(err, auth.ErrUnknownAPIKey) {
			response.Unauthorized(w, r, "unknown api key")
			return
		}
		response.InternalError(w, r, "authentication failed")
		return
	}

	response.JSON(w, r, http.StatusOK, tokenResp)
}
