package services

import (
	"strings"

	"backoffice/internal/domain"
)

// FareService computes preview quotes for the national and regional fare
// simulators. All amounts are Ariary. Previews are advisory only: persisted
// totals always come from the upstream booking API response.

type FareKind string

const (
	FareNational FareKind = "national"
	FareRegional FareKind = "regional"
)

type QuoteInput struct {
	Kind         FareKind `json:"kind"`
	From         string   `json:"from"`
	To           string   `json:"to"`
	Seats        int      `json:"seats"`
	ReductionPct int      `json:"reductionPct"`
	Deposit      int64    `json:"deposit"`
}

type Quote struct {
	PerSeat   int64 `json:"perSeat"`
	Seats     int   `json:"seats"`
	Subtotal  int64 `json:"subtotal"`
	Reduction int64 `json:"reduction"`
	Deposit   int64 `json:"deposit"`
	Total     int64 `json:"total"`
	// Preview quotes are never authoritative; the backend response is.
	Authoritative bool `json:"authoritative"`
}

type FareService struct{}

// Quote returns subtotal = tariff x seats, minus the percentage reduction,
// minus any deposit already paid.
func (FareService) Quote(in QuoteInput) (Quote, error) {
	var out Quote

	perSeat, err := tariffFor(in.Kind, in.From, in.To)
	if err != nil {
		return out, err
	}
	if in.Seats < 1 {
		return out, domain.ValidationError{Field: "seats", Msg: "seat count must be at least 1"}
	}
	if in.ReductionPct < 0 || in.ReductionPct > 100 {
		return out, domain.ValidationError{Field: "reductionPct", Msg: "reduction must be between 0 and 100"}
	}
	if in.Deposit < 0 {
		return out, domain.ValidationError{Field: "deposit", Msg: "deposit cannot be negative"}
	}

	out.PerSeat = perSeat
	out.Seats = in.Seats
	out.Subtotal = perSeat * int64(in.Seats)
	out.Reduction = out.Subtotal * int64(in.ReductionPct) / 100
	out.Deposit = in.Deposit
	out.Total = out.Subtotal - out.Reduction - in.Deposit
	if out.Total < 0 {
		out.Total = 0
	}
	return out, nil
}

// tariffFor returns the per-seat tariff for a route (direction-insensitive,
// case-insensitive).
func tariffFor(kind FareKind, from, to string) (int64, error) {
	f := strings.TrimSpace(strings.ToLower(from))
	t := strings.TrimSpace(strings.ToLower(to))
	if f == "" || t == "" {
		return 0, domain.ValidationError{Field: "route", Msg: "both endpoints are required"}
	}

	match := func(a, b string) bool {
		return (f == a && t == b) || (f == b && t == a)
	}

	switch kind {
	case FareNational:
		switch {
		case match("antananarivo", "mahajanga"):
			return 45_000, nil
		case match("antananarivo", "toamasina"):
			return 30_000, nil
		case match("antananarivo", "fianarantsoa"):
			return 35_000, nil
		case match("antananarivo", "toliara"):
			return 70_000, nil
		case match("antananarivo", "antsiranana"):
			return 90_000, nil
		case match("antananarivo", "morondava"):
			return 55_000, nil
		case match("fianarantsoa", "toliara"):
			return 40_000, nil
		}
	case FareRegional:
		switch {
		case match("antananarivo", "antsirabe"):
			return 15_000, nil
		case match("antananarivo", "ambatolampy"):
			return 8_000, nil
		case match("antananarivo", "moramanga"):
			return 10_000, nil
		case match("antsirabe", "ambositra"):
			return 10_000, nil
		case match("fianarantsoa", "ambalavao"):
			return 7_000, nil
		}
	default:
		return 0, domain.ValidationError{Field: "kind", Msg: "kind must be national or regional"}
	}

	return 0, domain.NotFoundError{Resource: "tariff for route"}
}
