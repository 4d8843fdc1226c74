package handlers

import (
	"log"
	"net/http"
	"trip-planner-service/internal/api/dto"
	"trip-planner-service/internal/platform/obs"
	"trip-planner-service/internal/ports"
)

// LocationHandler exposes the stored location catalog.
type LocationHandler struct {
	Repo ports.LocationRepository
}

func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowOnly(w, r, http.MethodGet) {
		return
	}
	if h.Repo == nil {
		writeError(w, r, http.StatusServiceUnavailable, "location catalog not configured")
		return
	}

	locs, err := h.Repo.ListLocations(r.Context())
	if err != nil {
		log.Printf("req_id=%s list locations failed: %v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListLocationsResponse{Locations: make([]dto.LocationResponse, 0, len(locs))}
	for _, l := range locs {
		res.Locations = append(res.Locations, dto.NewLocationResponse(l))
	}
	writeJSON(w, r, http.StatusOK, res)
}
