package orders

// Status is an order lifecycle state, transmitted as a plain string.
type Status string

const (
	StatusPlaced     Status = "Placed"
	StatusProcessing Status = "Processing"
	StatusDispatched Status = "Dispatched"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
	StatusReturned   Status = "Returned"
)

// transitions encodes the state machine:
// Placed → Processing → Dispatched → Delivered (monotonic happy path),
// any non-terminal state → Cancelled, Delivered → Returned.
var transitions = map[Status][]Status{
	StatusPlaced:     {StatusProcessing, StatusDispatched, StatusDelivered, StatusCancelled},
	StatusProcessing: {StatusDispatched, StatusDelivered, StatusCancelled},
	StatusDispatched: {StatusDelivered, StatusCancelled},
	StatusDelivered:  {StatusReturned},
	StatusCancelled:  {},
	StatusReturned:   {},
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusReturned
}

// RestoresStock reports whether entering this status returns every line
// item's quantity to product stock.
func (s Status) RestoresStock() bool {
	return s == StatusCancelled || s == StatusReturned
}

// CanTransition reports whether the state machine allows from → to.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
