package domain

type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusApproved   OrderStatus = "APPROVED"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCancelled  OrderStatus = "CANCELLED"
	StatusReturned   OrderStatus = "RETURNED"
)

var allStatuses = []OrderStatus{
	StatusPending,
	StatusApproved,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
	StatusReturned,
}

var b2cTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusReturned},
	StatusCancelled:  {},
	StatusReturned:   {},
}

var b2bTransitions = map[OrderStatus][]OrderStatus{
	StatusApproved:   {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusReturned},
	StatusCancelled:  {},
	StatusReturned:   {},
}

func AllStatuses() []OrderStatus {
	out := make([]OrderStatus, len(allStatuses))
	copy(out, allStatuses)
	return out
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, st := range allStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

func (s OrderStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusReturned
}

// AllowedTransitions returns the statuses reachable from `from` for the given
// order type. The returned slice is a copy and may be modified by the caller.
func AllowedTransitions(orderType OrderType, from OrderStatus) []OrderStatus {
	table := b2cTransitions
	if orderType == OrderTypeB2B {
		table = b2bTransitions
	}
	next := table[from]
	out := make([]OrderStatus, len(next))
	copy(out, next)
	return out
}

func CanTransition(orderType OrderType, from, to OrderStatus) bool {
	for _, s := range AllowedTransitions(orderType, from) {
		if s == to {
			return true
		}
	}
	return false
}
