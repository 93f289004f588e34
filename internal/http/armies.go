package http

import (
	"net/http"

	"github.com/musterhq/muster/internal/service"
	"github.com/musterhq/muster/pkg/httpx"
	"github.com/musterhq/muster/pkg/mustersdk"
)

// ArmiesHandler serves the roster collection and item routes. All routes
// run behind AuthnMiddleware; visibility is enforced in the service.
type ArmiesHandler struct {
	Armies *service.ArmyService
}

func (h *ArmiesHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	var req mustersdk.ArmyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	a, err := h.Armies.CreateArmy(r.Context(), id, service.ArmyInput{
		Name:        req.Name,
		Faction:     req.Faction,
		PointsLimit: req.PointsLimit,
		Goal:        req.Goal,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toArmyResponse(a))
}

func (h *ArmiesHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	armies, err := h.Armies.ListArmies(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toArmyResponses(armies))
}

func (h *ArmiesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	a, err := h.Armies.GetArmy(r.Context(), id, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toArmyResponse(a))
}

func (h *ArmiesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	var req mustersdk.ArmyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	a, err := h.Armies.UpdateArmy(r.Context(), id, r.PathValue("id"), service.ArmyInput{
		Name:        req.Name,
		Faction:     req.Faction,
		PointsLimit: req.PointsLimit,
		Goal:        req.Goal,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toArmyResponse(a))
}

func (h *ArmiesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := h.Armies.DeleteArmy(r.Context(), id, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
