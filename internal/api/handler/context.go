package handler

import (
	"context"

	"github.com/greenwave/greenwave/internal/api/middleware"
	"github.com/greenwave/greenwave/internal/auth"
)

// GetOperatorID retrieves the authenticated operator ID from the context.
// This is a convenience wrapper around middleware.GetOperatorID.
func GetOperatorID(ctx context.Context) string {
	return middleware.GetOperatorID(ctx)
}

// GetOperatorRole retrieves the authenticated operator role from the context.
func GetOperatorRole(ctx context.Context) auth.Role {
	return middleware.GetOperatorRole(ctx)
}
