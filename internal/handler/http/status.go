// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/utils"
	"github.com/MKhiriev/go-sync-keeper/models"
)

// statusResponse lists the last cycle summary of every profile that has
// completed at least one cycle.
type statusResponse struct {
	Profiles []models.CycleSummary `json:"profiles"`
}

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	body := statusResponse{Profiles: h.services.StatusService.All()}

	if _, err := utils.WriteJSON(w, body, http.StatusOK); err != nil {
		logger.FromRequest(r).Error().Err(err).
			Str("func", "Handler.getStatus").
			Msg("cannot write status response")
	}
}
