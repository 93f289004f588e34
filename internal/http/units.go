package http

import (
	"net/http"

	"github.com/musterhq/muster/internal/service"
	"github.com/musterhq/muster/pkg/httpx"
	"github.com/musterhq/muster/pkg/mustersdk"
)

// UnitsHandler serves the unit routes nested under a roster.
type UnitsHandler struct {
	Armies *service.ArmyService
}

func (h *UnitsHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	var req mustersdk.UnitRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.Armies.AddUnit(r.Context(), id, r.PathValue("id"), service.UnitInput{
		Name:    req.Name,
		Points:  req.Points,
		Weapons: req.Weapons,
		Perks:   req.Perks,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUnitResponse(u))
}

func (h *UnitsHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	units, err := h.Armies.ListUnits(r.Context(), id, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUnitResponses(units))
}

func (h *UnitsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	var req mustersdk.UnitRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.Armies.UpdateUnit(r.Context(), id, r.PathValue("id"), r.PathValue("unitID"), service.UnitInput{
		Name:    req.Name,
		Points:  req.Points,
		Weapons: req.Weapons,
		Perks:   req.Perks,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUnitResponse(u))
}

func (h *UnitsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := h.Armies.RemoveUnit(r.Context(), id, r.PathValue("id"), r.PathValue("unitID")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
