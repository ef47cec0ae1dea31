package services

import "time"

// SetClock replaces the time source of the dashboard.
func (s *DashboardService) SetClock(now func() time.Time) {
	s.now = now
}
