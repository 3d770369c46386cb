package order

import (
	"time"

	"github.com/google/uuid"
)

// Order represents an admitted product order.
type Order struct {
	ID                 uuid.UUID    `json:"id"`
	FirstName          string       `json:"firstName"`
	LastName           string       `json:"lastName"`
	Email              string       `json:"email"`
	StreetAddress      string       `json:"streetAddress"`
	StreetAddress2     *string      `json:"streetAddress2"`
	PostCode           string       `json:"postCode"`
	ProductID          string       `json:"productId"`
	Subscription       Subscription `json:"subscription"`
	IsActive           bool         `json:"isActive"`
	NormalizedAddress  string       `json:"normalizedAddress"`
	NormalizedAddress2 *string      `json:"normalizedAddress2"`
	LastRenewAt        *time.Time   `json:"lastRenewAt"`
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt"`
}

// Key is the normalized-address tuple used to detect repeat submissions.
// Line2 participates only when the order carries a second address line, so an
// apartment-specific order does not block a different apartment in the same
// building.
type Key struct {
	Line1 string
	Line2 *string
}

func (k Key) String() string {
	if k.Line2 != nil {
		return k.Line1 + "|" + *k.Line2
	}

	return k.Line1
}

func (o *Order) Key() Key {
	return Key{Line1: o.NormalizedAddress, Line2: o.NormalizedAddress2}
}

// RenewAnchor is the timestamp renewal due-ness is measured from.
func (o *Order) RenewAnchor() time.Time {
	if o.LastRenewAt != nil {
		return *o.LastRenewAt
	}

	return o.CreatedAt
}
