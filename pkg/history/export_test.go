package history

import "time"

// SetClock replaces the time source used by Record.
func (s *Store) SetClock(now func() time.Time) { s.now = now }
