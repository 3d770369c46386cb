package report

import (
	"database/sql/driver"
	"errors"
)

type Status string

const (
	StatusNew      Status = "new"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var ErrInvalidStatus = errors.New("invalid qualification status")

func (s Status) String() string {
	return string(s)
}

func (s Status) Value() (driver.Value, error) {
	return s.String(), nil
}

func ParseStatus(s string) (Status, error) {
	switch s {
	case StatusNew.String():
		return StatusNew, nil
	case StatusApproved.String():
		return StatusApproved, nil
	case StatusRejected.String():
		return StatusRejected, nil
	default:
		return "", ErrInvalidStatus
	}
}
