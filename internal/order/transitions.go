package order

// transitionTable fixes the manual status lifecycle:
// submitted can be delivered or canceled, delivered can be returned,
// canceled and returned can be resubmitted.
var transitionTable = map[Status][]Status{
	StatusSubmitted: {StatusDelivered, StatusCanceled},
	StatusDelivered: {StatusReturned},
	StatusCanceled:  {StatusSubmitted},
	StatusReturned:  {StatusSubmitted},
}

// CanTransition reports whether the requested change is in the table.
// A same-state request is a no-op and allowed.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range transitionTable[from] {
		if next == to {
			return true
		}
	}
	return false
}

// stockEffect describes what a transition does to each item's variant.
type stockEffect int

const (
	stockNone stockEffect = iota
	stockConsume
	stockRestock
)

// effectOf maps a target status to its stock side effect: delivery
// consumes stock, a return gives it back.
func effectOf(to Status) stockEffect {
	switch to {
	case StatusDelivered:
		return stockConsume
	case StatusReturned:
		return stockRestock
	default:
		return stockNone
	}
}
