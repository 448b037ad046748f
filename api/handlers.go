/*
handlers.go - HTTP API handlers for the attribution service

PURPOSE:
  Exposes the overtime attribution engine via REST. Handles HTTP
  request/response, JSON serialization, and delegates to the engine and the
  workspace store. The engine stays pure; all I/O happens here.

ENDPOINTS:
  Analysis:
    POST   /api/analysis           Stateless run (all inputs in the body)
    POST   /api/analysis/run       Store-backed run (entries in the body,
                                   config/schedule data from the store)

  Workspace data:
    GET    /api/config             Workspace overtime config
    PUT    /api/config             Replace config (validated)
    GET    /api/profiles           List member profiles
    GET    /api/profiles/{userID}  Get one profile
    PUT    /api/profiles/{userID}  Upsert one profile
    GET    /api/overrides/{userID} Get a user's schedule override
    PUT    /api/overrides/{userID} Upsert a user's schedule override
    DELETE /api/overrides/{userID} Remove a user's schedule override
    GET    /api/holidays           List the holiday calendar
    POST   /api/holidays           Add pre-flattened holiday days
    GET    /api/timeoff            List the time-off calendar
    POST   /api/timeoff            Add time-off days

  Scenarios:
    GET    /api/scenarios          List demo scenarios
    POST   /api/scenarios/{id}/run Run a demo scenario through the engine

  Ops:
    GET    /api/health             Liveness probe
    POST   /api/reset              Clear workspace data (dev only)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed JSON, invalid dates/weekdays, config contract violations
  - 404: Unknown profile/override/scenario
  - 500: Store failures

SECURITY NOTE:
  No authentication middleware. Deploy behind a trusted proxy.

SEE ALSO:
  - dto.go: Request/response structures
  - scenarios.go: Demo scenario definitions
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/attribution-engine/engine"
	"github.com/warp/attribution-engine/store/sqlite"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store
}

// NewHandler creates a new handler backed by the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{Store: store}
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// =============================================================================
// ANALYSIS
// =============================================================================

// RunAnalysis handles POST /api/analysis - the stateless run with every
// input in the request body.
func (h *Handler) RunAnalysis(w http.ResponseWriter, r *http.Request) {
	var req AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	in, err := req.toInput()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := engine.ValidateConfig(in.Config); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := engine.ValidateRange(in.Range); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, analysisToResponse(engine.ComputeAnalysis(in)))
}

// RunStoredAnalysis handles POST /api/analysis/run - entries in the body,
// config and schedule data loaded from the workspace store.
func (h *Handler) RunStoredAnalysis(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	rng, err := req.DateRange.toEngine()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := engine.ValidateRange(rng); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	cfg, err := h.Store.GetConfig(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load config: "+err.Error())
		return
	}
	profiles, err := h.Store.ListProfiles(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load profiles: "+err.Error())
		return
	}
	overrides, err := h.Store.ListOverrides(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load overrides: "+err.Error())
		return
	}
	holidays, err := h.Store.ListHolidays(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load holidays: "+err.Error())
		return
	}
	timeOff, err := h.Store.ListTimeOff(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load time off: "+err.Error())
		return
	}

	in := engine.Input{
		Entries:   entriesToEngine(req.Entries),
		Config:    cfg,
		Range:     rng,
		Profiles:  profiles,
		Overrides: overrides,
		Holidays:  holidays,
		TimeOff:   timeOff,
	}
	if req.TimeZone != "" {
		loc, err := loadLocation(req.TimeZone)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		in.TimeZone = loc
	}

	respondJSON(w, http.StatusOK, analysisToResponse(engine.ComputeAnalysis(in)))
}

// =============================================================================
// WORKSPACE CONFIG
// =============================================================================

func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Store.GetConfig(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, configToDTO(cfg))
}

func (h *Handler) PutConfig(w http.ResponseWriter, r *http.Request) {
	var dto ConfigDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	cfg := dto.toEngine()
	if err := engine.ValidateConfig(cfg); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Store.SaveConfig(r.Context(), cfg); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, configToDTO(cfg))
}

// =============================================================================
// PROFILES
// =============================================================================

func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Store.ListProfiles(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	dtos := make([]ProfileDTO, 0, len(profiles))
	for _, p := range profiles {
		dtos = append(dtos, profileToDTO(p))
	}
	respondJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := engine.UserID(chi.URLParam(r, "userID"))
	p, found, err := h.Store.GetProfile(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "profile not found")
		return
	}
	respondJSON(w, http.StatusOK, profileToDTO(p))
}

func (h *Handler) PutProfile(w http.ResponseWriter, r *http.Request) {
	var dto ProfileDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	dto.UserID = chi.URLParam(r, "userID")

	p, err := dto.toEngine()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Store.UpsertProfile(r.Context(), p); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, profileToDTO(p))
}

// =============================================================================
// OVERRIDES
// =============================================================================

func (h *Handler) GetOverride(w http.ResponseWriter, r *http.Request) {
	userID := engine.UserID(chi.URLParam(r, "userID"))
	ov, found, err := h.Store.GetOverride(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "override not found")
		return
	}
	respondJSON(w, http.StatusOK, overrideToDTO(ov))
}

func (h *Handler) PutOverride(w http.ResponseWriter, r *http.Request) {
	var dto OverrideDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	ov, err := dto.toEngine()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	switch ov.Mode {
	case engine.ModeGlobal, engine.ModeWeekly, engine.ModePerDay:
	default:
		respondError(w, http.StatusBadRequest, "mode must be global, weekly, or perDay")
		return
	}

	userID := engine.UserID(chi.URLParam(r, "userID"))
	if err := h.Store.SaveOverride(r.Context(), userID, ov); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, overrideToDTO(ov))
}

func (h *Handler) DeleteOverride(w http.ResponseWriter, r *http.Request) {
	userID := engine.UserID(chi.URLParam(r, "userID"))
	if err := h.Store.DeleteOverride(r.Context(), userID); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HOLIDAYS & TIME OFF
// =============================================================================

func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	calendar, err := h.Store.ListHolidays(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	dtos := make([]HolidayDTO, 0)
	for userID, days := range calendar {
		for date, holiday := range days {
			dtos = append(dtos, HolidayDTO{
				UserID: string(userID),
				Date:   date.String(),
				Name:   holiday.Name,
			})
		}
	}
	respondJSON(w, http.StatusOK, dtos)
}

func (h *Handler) AddHolidays(w http.ResponseWriter, r *http.Request) {
	var dtos []HolidayDTO
	if err := json.NewDecoder(r.Body).Decode(&dtos); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	for _, dto := range dtos {
		date, err := engine.ParseDateKey(dto.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := h.Store.AddHoliday(r.Context(), engine.UserID(dto.UserID), date, dto.Name); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	respondJSON(w, http.StatusCreated, map[string]int{"added": len(dtos)})
}

func (h *Handler) ListTimeOff(w http.ResponseWriter, r *http.Request) {
	calendar, err := h.Store.ListTimeOff(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	dtos := make([]TimeOffDTO, 0)
	for userID, days := range calendar {
		for date, off := range days {
			dtos = append(dtos, TimeOffDTO{
				UserID:    string(userID),
				Date:      date.String(),
				Hours:     off.Hours,
				IsFullDay: off.IsFullDay,
			})
		}
	}
	respondJSON(w, http.StatusOK, dtos)
}

func (h *Handler) AddTimeOff(w http.ResponseWriter, r *http.Request) {
	var dtos []TimeOffDTO
	if err := json.NewDecoder(r.Body).Decode(&dtos); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	for _, dto := range dtos {
		date, err := engine.ParseDateKey(dto.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		off := engine.TimeOffDay{Hours: dto.Hours, IsFullDay: dto.IsFullDay}
		if err := h.Store.AddTimeOff(r.Context(), engine.UserID(dto.UserID), date, off); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	respondJSON(w, http.StatusCreated, map[string]int{"added": len(dtos)})
}

// =============================================================================
// OPS
// =============================================================================

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Reset clears all workspace data. Dev/demo use only.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
