package handlers

import (
	"context"
	"net/http"

	"github.com/abrezinsky/luckydraw/internal/auth"
	"github.com/abrezinsky/luckydraw/internal/logger"
	"github.com/abrezinsky/luckydraw/internal/models"
	"github.com/abrezinsky/luckydraw/internal/services"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// ViewerHub serves live draw sockets for an event room
type ViewerHub interface {
	ServeWs(w http.ResponseWriter, r *http.Request, scope models.Scope)
}

// Deps are the collaborators the HTTP layer calls into
type Deps struct {
	Events       services.EventServicer
	Config       services.ConfigServicer
	Entries      services.EntryServicer
	Draw         services.DrawServicer
	Announcer    *services.DrawAnnouncer
	Auth         *auth.Auth
	Fingerprints *auth.Fingerprinter
	Hub          ViewerHub
	Health       Pinger
}

// Options control router behaviour
type Options struct {
	// BaseURL is the public address encoded into entry QR codes
	BaseURL     string
	CORSOrigins []string
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Deps
	opts Options
	log  logger.Logger
}

// New creates a new Handlers instance with all dependencies
func New(deps Deps, opts Options, log logger.Logger) *Handlers {
	return &Handlers{Deps: deps, opts: opts, log: log}
}

// BaseURL returns the public address used for entry links
func (h *Handlers) BaseURL() string {
	return h.opts.BaseURL
}

// SetBaseURL replaces the public address once the listener is known
func (h *Handlers) SetBaseURL(baseURL string) {
	h.opts.BaseURL = baseURL
}

// adminScope combines the caller's tenant with the event in the URL or query
func adminScope(r *http.Request) (models.Scope, error) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return models.Scope{}, Unauthorized("Unauthorized - missing bearer token")
	}
	eventID, err := requireParam(r, "eventID")
	if err != nil {
		if eventID = r.URL.Query().Get("event"); eventID == "" {
			return models.Scope{}, BadRequest("Missing eventID parameter")
		}
	}
	return models.Scope{TenantID: claims.TenantID, EventID: eventID}, nil
}

// callerID names the authenticated caller for audit fields
func callerID(r *http.Request) string {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return ""
	}
	if claims.Subject != "" {
		return claims.Subject
	}
	return claims.Role
}
