package domain

// Order is the exchange-side view of a placed order. It is never mutated
// locally, only replaced by re-fetching status from the exchange.
type Order struct {
	// ID opaque exchange order identifier.
	ID string
	// Closed reports whether the order is fully closed.
	Closed bool
	// Raw last-known status response, the full envelope as returned by
	// the exchange, used verbatim in timeout alerts.
	Raw string
}

// OrderAck is the exchange acknowledgement of an order placement request.
type OrderAck struct {
	Success bool
	Message string
	// ID of the created order; empty when the exchange omitted it.
	ID string
}
