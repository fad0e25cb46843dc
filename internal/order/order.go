// Package order models incoming purchase records and flattens them into
// spreadsheet rows.
package order

import (
	"errors"
)

var (
	ErrNoPeople       = errors.New("order has no people")
	ErrNoPurchaser    = errors.New("order has no purchaser (no person at index 0)")
	ErrManyPurchasers = errors.New("order has more than one person at index 0")
)

// Person is one attendee on an order. The person at index 0 is the
// purchaser - the order's primary contact and billing party.
type Person struct {
	First   string `json:"first"`
	Last    string `json:"last"`
	Nametag string `json:"nametag"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
	Index   int    `json:"index"`
}

// FullName returns the person's display name.
func (p Person) FullName() string {
	return p.First + " " + p.Last
}

// Order is one purchase transaction, possibly covering multiple attendees.
// The shared fields apply to the purchase as a whole and appear only on the
// purchaser's row.
type Order struct {
	People            []Person `json:"people"`
	Volunteer         []string `json:"volunteer"`
	Share             []string `json:"share"`
	Comments          string   `json:"comments"`
	AdmissionQuantity int      `json:"admissionQuantity"`
	AdmissionCost     float64  `json:"admissionCost"`
	Donation          float64  `json:"donation"`
	Total             float64  `json:"total"`
	Deposit           float64  `json:"deposit"`
	PayPalEmail       string   `json:"paypalEmail"`

	// Timestamp is milliseconds since the Unix epoch.
	Timestamp int64 `json:"timestamp"`
}

// Purchaser returns the person at index 0. An order with no purchaser, or
// with more than one, is malformed and is rejected rather than producing a
// degraded row.
func (o Order) Purchaser() (Person, error) {
	if len(o.People) == 0 {
		return Person{}, ErrNoPeople
	}

	found := -1
	for i, p := range o.People {
		if p.Index == 0 {
			if found >= 0 {
				return Person{}, ErrManyPurchasers
			}
			found = i
		}
	}

	if found < 0 {
		return Person{}, ErrNoPurchaser
	}

	return o.People[found], nil
}
