package domain

import (
	"fmt"
	"strings"
	"time"
)

type VehicleClass string

const (
	ClassStandard VehicleClass = "standard"
	ClassVIP      VehicleClass = "vip"
)

const (
	StandardCapacity = 16
	VIPCapacity      = 10
)

type PaymentMethod string

const (
	PayCash        PaymentMethod = "cash"
	PayMobileMoney PaymentMethod = "mobile-money"
)

type PaymentStatus string

const (
	PaymentPaid      PaymentStatus = "paid"
	PaymentToCollect PaymentStatus = "to-collect"
)

// MobileMoneyOperators is the fixed set of accepted mobile-money tags.
var MobileMoneyOperators = []string{"mvola", "orange-money", "airtel-money"}

// ClassSchema parameterizes the seat workflow per vehicle class: capacity
// and the occupant fields that class requires. Class differences are data,
// not duplicated control flow.
type ClassSchema struct {
	Class            VehicleClass
	Capacity         int
	RequiresPayment  bool // standard: payment method mandatory
	HasPaymentStatus bool // vip: informational paid/to-collect
	HasStop          bool // standard: optional free-text drop-off
}

var classSchemas = map[VehicleClass]ClassSchema{
	ClassStandard: {
		Class:           ClassStandard,
		Capacity:        StandardCapacity,
		RequiresPayment: true,
		HasStop:         true,
	},
	ClassVIP: {
		Class:            ClassVIP,
		Capacity:         VIPCapacity,
		HasPaymentStatus: true,
	},
}

// SchemaFor resolves the occupant schema for a vehicle class.
func SchemaFor(class VehicleClass) (ClassSchema, error) {
	schema, ok := classSchemas[class]
	if !ok {
		return ClassSchema{}, ValidationError{Field: "class", Msg: fmt.Sprintf("unknown vehicle class %q", class)}
	}
	return schema, nil
}

// Occupant carries everything recorded for a seated client. Which fields are
// required depends on the vehicle class schema.
type Occupant struct {
	Name           string        `json:"name"`
	Contact        string        `json:"contact"`
	Stop           string        `json:"stop,omitempty"`
	PaymentMethod  PaymentMethod `json:"paymentMethod,omitempty"`
	MobileOperator string        `json:"mobileOperator,omitempty"`
	PaymentStatus  PaymentStatus `json:"paymentStatus,omitempty"`
}

// Validate enforces the class schema ahead of submission. Errors are
// ValidationError and block any network call.
func (s ClassSchema) Validate(o Occupant) error {
	if strings.TrimSpace(o.Name) == "" {
		return ValidationError{Field: "name", Msg: "occupant name is required"}
	}
	if strings.TrimSpace(o.Contact) == "" {
		return ValidationError{Field: "contact", Msg: "occupant contact is required"}
	}
	if s.RequiresPayment {
		switch o.PaymentMethod {
		case PayCash:
		case PayMobileMoney:
			if !validMobileOperator(o.MobileOperator) {
				return ValidationError{Field: "mobileOperator", Msg: "mobile-money operator is required"}
			}
		default:
			return ValidationError{Field: "paymentMethod", Msg: "payment method must be cash or mobile-money"}
		}
	}
	if s.HasPaymentStatus && o.PaymentStatus != "" {
		if o.PaymentStatus != PaymentPaid && o.PaymentStatus != PaymentToCollect {
			return ValidationError{Field: "paymentStatus", Msg: "payment status must be paid or to-collect"}
		}
	}
	return nil
}

// Complete reports whether an occupant has every field the class requires.
// Used to reject half-occupied seats coming back from the upstream snapshot.
func (s ClassSchema) Complete(o Occupant) bool {
	if strings.TrimSpace(o.Name) == "" || strings.TrimSpace(o.Contact) == "" {
		return false
	}
	if s.RequiresPayment {
		switch o.PaymentMethod {
		case PayCash:
		case PayMobileMoney:
			if !validMobileOperator(o.MobileOperator) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func validMobileOperator(op string) bool {
	op = strings.ToLower(strings.TrimSpace(op))
	for _, known := range MobileMoneyOperators {
		if op == known {
			return true
		}
	}
	return false
}

// Seat is either fully vacant or fully occupied; partial states never
// survive materialization.
type Seat struct {
	Number     int       `json:"number"`
	Occupied   bool      `json:"occupied"`
	Occupant   Occupant  `json:"occupant,omitempty"`
	AssignedAt time.Time `json:"assignedAt,omitempty"`
}

type Vehicle struct {
	ID            int64        `json:"id"`
	Class         VehicleClass `json:"class"`
	Capacity      int          `json:"capacity"`
	Route         string       `json:"route"`
	DepartureDate string       `json:"departureDate"`
	DepartureTime string       `json:"departureTime"`
	Departed      bool         `json:"departed"`
}

// SeatMap is the authoritative in-memory occupancy snapshot for one vehicle.
// It mutates only through the assignment/release workflows, and always by a
// full refetch rather than local patches.
type SeatMap struct {
	Vehicle Vehicle `json:"vehicle"`
	Seats   []Seat  `json:"seats"`
}

// SeatAt returns the seat with the given number, or false when out of range.
func (m SeatMap) SeatAt(number int) (Seat, bool) {
	if number < 1 || number > len(m.Seats) {
		return Seat{}, false
	}
	return m.Seats[number-1], true
}

// FullyOccupied reports whether every seat is taken (departure condition).
func (m SeatMap) FullyOccupied() bool {
	if len(m.Seats) == 0 {
		return false
	}
	for _, seat := range m.Seats {
		if !seat.Occupied {
			return false
		}
	}
	return true
}
