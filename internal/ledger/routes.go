package ledger

// Route is a transfer direction between two account kinds.
type Route struct {
	From AccountKind
	To   AccountKind
}

// DefaultNonMirroredRoutes are transfer routes that only book the source
// leg. Cash brought to the bank shows up on the bank statement anyway, so the
// bank side arrives through the import instead of a mirror.
var DefaultNonMirroredRoutes = []Route{
	{From: AccountCash, To: AccountBank},
}

func containsRoute(routes []Route, from, to AccountKind) bool {
	for _, r := range routes {
		if r.From == from && r.To == to {
			return true
		}
	}

	return false
}
