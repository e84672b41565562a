package fulfillment

// SubOrderStatus represents the delivery lifecycle status of a sub-order.
// The platform vocabulary is French; the wire values are the ASCII slugs
// used across the marketplace.
type SubOrderStatus string

const (
	StatusUnconfirmed      SubOrderStatus = "non_confirmee"
	StatusInProgress       SubOrderStatus = "en_cours"
	StatusReadyForPickup   SubOrderStatus = "pret_pour_enlevement"
	StatusDelivered        SubOrderStatus = "livre"
	StatusDeliveredPaid    SubOrderStatus = "livre_paye"
	StatusDeliveredUnpaid  SubOrderStatus = "livre_non_paye"
	StatusReturned         SubOrderStatus = "retourne"
	StatusCancelled        SubOrderStatus = "annule"
)

// transitions is the closed table of allowed status changes. Any pair not
// listed here fails with INVALID_TRANSITION.
var transitions = map[SubOrderStatus][]SubOrderStatus{
	StatusUnconfirmed:     {StatusInProgress, StatusCancelled},
	StatusInProgress:      {StatusReadyForPickup, StatusReturned, StatusCancelled},
	StatusReadyForPickup:  {StatusDelivered, StatusReturned, StatusCancelled},
	StatusDelivered:       {StatusDeliveredPaid, StatusDeliveredUnpaid},
	StatusDeliveredPaid:   {},
	StatusDeliveredUnpaid: {},
	StatusReturned:        {},
	StatusCancelled:       {},
}

// IsValid checks if the status is a known SubOrderStatus
func (s SubOrderStatus) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// String returns the string representation of the status
func (s SubOrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks the transition table for (s, target)
func (s SubOrderStatus) CanTransitionTo(target SubOrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true when no further transition is permitted
func (s SubOrderStatus) IsTerminal() bool {
	allowed, ok := transitions[s]
	return ok && len(allowed) == 0
}

// ReleasesStock returns true for the transitions that return reserved stock
// to the ledger
func (s SubOrderStatus) ReleasesStock() bool {
	return s == StatusReturned || s == StatusCancelled
}

// IsDelivered returns true for the three delivered variants that count as
// realized revenue
func (s SubOrderStatus) IsDelivered() bool {
	return s == StatusDelivered || s == StatusDeliveredPaid || s == StatusDeliveredUnpaid
}

// IsPipeline returns true for statuses counted as pipeline revenue
func (s SubOrderStatus) IsPipeline() bool {
	return s == StatusInProgress || s == StatusReadyForPickup
}

// AllStatuses lists every valid status, for validation and reporting
func AllStatuses() []SubOrderStatus {
	return []SubOrderStatus{
		StatusUnconfirmed,
		StatusInProgress,
		StatusReadyForPickup,
		StatusDelivered,
		StatusDeliveredPaid,
		StatusDeliveredUnpaid,
		StatusReturned,
		StatusCancelled,
	}
}
