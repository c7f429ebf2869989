package domain

// transitions допустимые переходы между статусами.
// pending и approved единственные начальные статусы, completed/rejected/canceled терминальные.
var transitions = map[BookingStatus][]BookingStatus{
	StatusPending:  {StatusApproved, StatusRejected, StatusCanceled},
	StatusApproved: {StatusActive, StatusCanceled},
	StatusActive:   {StatusCompleted},
}

// CanTransition reports whether from -> to is allowed by the state table
func CanTransition(from, to BookingStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
