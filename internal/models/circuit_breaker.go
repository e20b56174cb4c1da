package models

// CircuitBreakerState is closed, open or half-open
type CircuitBreakerState int

func (s CircuitBreakerState) String() string {
	switch s {
	case 1:
		return "open"
	case 2:
		return "half_open"
	default:
		return "closed"
	}
}
