package memory

// RowLockCount reports how many row locks the store is tracking.
func (s *Store) RowLockCount() int {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	return len(s.rowLocks)
}
