package domain

type StopKind string

const (
	StopPickup  StopKind = "pickup"
	StopDropOff StopKind = "drop_off"
)

// Represents a single operation in a vessel route.
// ArriveAt and DepartAt are simulation hours computed by the route.
type Stop struct {
	Port     string
	Kind     StopKind
	TradeID  string
	ArriveAt float64
	DepartAt float64
}

// Route is an ordered itinerary of pickup and drop-off operations owned by one vessel.
//
// Implementations live outside the core. Copy must return an independent clone:
// mutating the copy never affects the source.
type Route interface {
	Copy() Route
	// Append the pickup and drop-off of trade at the end of the route.
	AddTransportation(trade *Trade) error
	// Insert the pickup before operation pickupIdx and the drop-off before
	// operation dropOffIdx of the current route (pickupIdx <= dropOffIdx).
	InsertTransportation(trade *Trade, pickupIdx, dropOffIdx int) error
	// Report whether capacity, time windows and pickup-before-drop-off hold.
	VerifySchedule() bool
	CompletionTime() float64
	InsertionPoints() []int
	Trades() []*Trade
	Stops() []Stop
}
