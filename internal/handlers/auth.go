package handlers

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/abrezinsky/luckydraw/internal/auth"
	"github.com/abrezinsky/luckydraw/internal/errors"
)

// requireRole rejects authenticated callers whose role is not listed (returns 403)
func (h *Handlers) requireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.ClaimsFromContext(r.Context())
			if !ok {
				h.respondError(w, r, Unauthorized("Unauthorized - missing bearer token"))
				return
			}
			if !claims.HasRole(roles...) {
				h.respondError(w, r, errors.Forbidden("Forbidden - role not permitted"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// handleLogin exchanges the admin password for an admin token
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	token, err := h.Auth.Login(req.Password, req.TenantID)
	switch {
	case stderrors.Is(err, auth.ErrInvalidPassword):
		h.log.Warn("Rejected admin login", "tenant_id", req.TenantID)
		h.respondError(w, r, Unauthorized("Invalid password"))
		return
	case stderrors.Is(err, auth.ErrMissingTenant):
		h.respondError(w, r, NewAPIError(http.StatusBadRequest, ErrCodeValidation, "tenant_id is required"))
		return
	case err != nil:
		h.respondError(w, r, err)
		return
	}

	respondOK(w, TokenResponse{
		Token:     token,
		Role:      auth.RoleAdmin,
		TenantID:  strings.TrimSpace(req.TenantID),
		ExpiresIn: int(auth.TokenExpiry.Seconds()),
	})
}

// handleCreateToken mints an organizer token for a tenant
func (h *Handlers) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	var req TokenCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if req.TenantID == "" {
		claims, _ := auth.ClaimsFromContext(r.Context())
		req.TenantID = claims.TenantID
	}

	token, err := h.Auth.IssueToken(auth.RoleOrganizer, req.TenantID, req.Subject)
	if stderrors.Is(err, auth.ErrMissingTenant) {
		h.respondError(w, r, NewAPIError(http.StatusBadRequest, ErrCodeValidation, "tenant_id is required"))
		return
	}
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.log.Info("Organizer token issued", "tenant_id", req.TenantID, "subject", req.Subject, "by", callerID(r))

	respondCreated(w, TokenResponse{
		Token:     token,
		Role:      auth.RoleOrganizer,
		TenantID:  strings.TrimSpace(req.TenantID),
		ExpiresIn: int(auth.TokenExpiry.Seconds()),
	})
}
