package domain

import "strings"

// WaitingQueueEntry is a client not yet assigned to a seat. Entries are
// created by staff or when a released occupant is reported back into the
// queue; they are consumed when assigned to seats.
type WaitingQueueEntry struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Contact            string `json:"contact"`
	RequestedSeatCount int    `json:"requestedSeatCount"`
	Date               string `json:"date"`
	Time               string `json:"time"`
	IsVIP              bool   `json:"isVip"`
}

// Validate checks staff-entered queue entries before persistence.
func (e WaitingQueueEntry) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ValidationError{Field: "name", Msg: "name is required"}
	}
	if strings.TrimSpace(e.Contact) == "" {
		return ValidationError{Field: "contact", Msg: "contact is required"}
	}
	if e.RequestedSeatCount < 1 {
		return ValidationError{Field: "requestedSeatCount", Msg: "must request at least one seat"}
	}
	return nil
}
