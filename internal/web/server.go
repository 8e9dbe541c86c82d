// Package web exposes the questhall HTTP surface.
//
// The handlers stay thin: they authenticate the actor from the signed session
// cookie, convert form values to typed inputs, call one service operation, and
// render a JSON aggregate or a redirect. All authorization lives in the
// services.
package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ebonmoor/questhall/internal/adventure"
	"github.com/ebonmoor/questhall/internal/auth"
	"github.com/ebonmoor/questhall/internal/campaign"
)

// Config defines the inputs for the web handler.
type Config struct {
	// SessionKey is the HMAC key signing session cookies.
	SessionKey []byte
	// SessionTTL bounds how long an issued session stays valid.
	SessionTTL time.Duration
}

type handler struct {
	auth       *auth.Service
	adventures *adventure.Service
	campaigns  *campaign.Service
	sessions   *sessionCodec
	sessionTTL time.Duration
}

// NewHandler assembles the HTTP routes over the given services.
func NewHandler(config Config, authService *auth.Service, adventureService *adventure.Service, campaignService *campaign.Service) (http.Handler, error) {
	if len(config.SessionKey) == 0 {
		return nil, fmt.Errorf("session key is required")
	}
	ttl := config.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	h := &handler{
		auth:       authService,
		adventures: adventureService,
		campaigns:  campaignService,
		sessions:   newSessionCodec(config.SessionKey, ttl),
		sessionTTL: ttl,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", h.register)
	mux.HandleFunc("POST /login", h.login)
	mux.HandleFunc("POST /logout", h.logout)

	mux.HandleFunc("GET /adventures", h.listAdventures)
	mux.HandleFunc("POST /adventures", h.createAdventure)
	mux.HandleFunc("GET /adventures/{id}", h.adventureDetail)
	mux.HandleFunc("POST /adventures/{id}/update", h.updateAdventure)
	mux.HandleFunc("POST /adventures/{id}/delete", h.deleteAdventure)
	mux.HandleFunc("POST /adventures/{id}/npcs", h.addNPC)
	mux.HandleFunc("POST /adventures/{id}/npcs/delete", h.deleteNPCs)
	mux.HandleFunc("POST /adventures/{id}/locations", h.addLocation)
	mux.HandleFunc("POST /adventures/{id}/locations/delete", h.deleteLocations)

	mux.HandleFunc("GET /campaigns", h.listCampaigns)
	mux.HandleFunc("POST /campaigns", h.createCampaign)
	mux.HandleFunc("GET /campaigns/{id}", h.campaignDetail)
	mux.HandleFunc("POST /campaigns/{id}/add_player", h.addPlayer)
	mux.HandleFunc("POST /campaigns/{id}/add_character", h.addCharacter)
	mux.HandleFunc("POST /campaigns/{id}/delete", h.deleteCampaign)

	return mux, nil
}

// requireActor resolves the session cookie into an actor identity.
// Writes a 401 response and returns false when no valid session exists.
func (h *handler) requireActor(w http.ResponseWriter, r *http.Request) (auth.User, bool) {
	actor, ok := h.sessions.actorFromRequest(r)
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "authentication required")
		return auth.User{}, false
	}
	return actor, true
}
