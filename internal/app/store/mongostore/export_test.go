package mongostore

// UseClaimThenVerify makes Admit skip transactions, as it does after
// detecting a standalone server.
func (s *Store) UseClaimThenVerify() {
	s.txMode.Store(txUnsupported)
}
