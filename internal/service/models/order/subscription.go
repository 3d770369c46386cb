package order

import (
	"database/sql/driver"
	"errors"
)

type Subscription string

const (
	SubscriptionOneTime Subscription = "one_time"
	SubscriptionMonthly Subscription = "monthly"
)

var ErrInvalidSubscription = errors.New("invalid subscription")

func (s Subscription) String() string {
	return string(s)
}

func (s Subscription) Value() (driver.Value, error) {
	return s.String(), nil
}

func ParseSubscription(s string) (Subscription, error) {
	switch s {
	case SubscriptionOneTime.String():
		return SubscriptionOneTime, nil
	case SubscriptionMonthly.String():
		return SubscriptionMonthly, nil
	default:
		return "", ErrInvalidSubscription
	}
}
