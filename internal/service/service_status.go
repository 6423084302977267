// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"sort"
	"sync"

	"github.com/MKhiriev/go-sync-keeper/models"
)

type statusService struct {
	mu   sync.RWMutex
	last map[string]models.CycleSummary
}

func NewStatusService() StatusService {
	return &statusService{last: make(map[string]models.CycleSummary)}
}

func (s *statusService) Record(summary models.CycleSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[summary.Profile] = summary
}

func (s *statusService) Last(profile string) (models.CycleSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summary, ok := s.last[profile]
	return summary, ok
}

// All returns the last summary of every profile ordered by profile id.
func (s *statusService) All() []models.CycleSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.CycleSummary, 0, len(s.last))
	for _, summary := range s.last {
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Profile < out[j].Profile })

	return out
}
