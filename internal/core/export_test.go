package core

import "time"

// SetClock replaces the clock used for export file names.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}
