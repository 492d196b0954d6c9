package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"

	"backoffice/internal/domain"
	"backoffice/internal/utils"
)

// ReceiptService renders printable tickets and manifests. It only ever
// receives complete, validated seat data; a vacant seat has no ticket.
type ReceiptService struct {
	RequestID string
}

// SeatTicket renders a one-ticket document for an occupied seat.
func (s ReceiptService) SeatTicket(m domain.SeatMap, seatNumber int) ([]byte, string, error) {
	seat, ok := m.SeatAt(seatNumber)
	if !ok {
		return nil, "", domain.ValidationError{Field: "seatNumber", Msg: "seat unavailable"}
	}
	if !seat.Occupied {
		return nil, "", domain.NotFoundError{Resource: "ticket for vacant seat"}
	}

	utils.LogEvent(s.RequestID, "receipt", "seat_ticket",
		fmt.Sprintf("vehicle_id=%d seat=%d", m.Vehicle.ID, seatNumber))

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Seat Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "SEAT TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Passenger   : %s", safe(seat.Occupant.Name, "-")),
		fmt.Sprintf("Contact     : %s", safe(seat.Occupant.Contact, "-")),
		fmt.Sprintf("Seat        : %d", seat.Number),
		fmt.Sprintf("Class       : %s", strings.ToUpper(string(m.Vehicle.Class))),
		fmt.Sprintf("Route       : %s", safe(m.Vehicle.Route, "-")),
		fmt.Sprintf("Departure   : %s %s", safe(m.Vehicle.DepartureDate, "-"), safe(m.Vehicle.DepartureTime, "-")),
	}
	lines = append(lines, paymentLine(m.Vehicle.Class, seat.Occupant))
	if seat.Occupant.Stop != "" {
		lines = append(lines, fmt.Sprintf("Stop        : %s", seat.Occupant.Stop))
	}
	lines = append(lines, fmt.Sprintf("Ticket Code : TCK-%d-%d", m.Vehicle.ID, seat.Number))

	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "This ticket is valid for one passenger (one seat). Please present it at departure.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("TICKET_%d_%d_%s.pdf", m.Vehicle.ID, seat.Number, safeFilenamePart(seat.Occupant.Name))
	return buf.Bytes(), filename, nil
}

// VehicleManifest renders the whole-vehicle passenger list.
func (s ReceiptService) VehicleManifest(m domain.SeatMap) ([]byte, string, error) {
	utils.LogEvent(s.RequestID, "receipt", "manifest", fmt.Sprintf("vehicle_id=%d", m.Vehicle.ID))

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Vehicle Manifest", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "VEHICLE MANIFEST")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Route     : %s", safe(m.Vehicle.Route, "-")))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Class     : %s (%d seats)", strings.ToUpper(string(m.Vehicle.Class)), m.Vehicle.Capacity))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Departure : %s %s", safe(m.Vehicle.DepartureDate, "-"), safe(m.Vehicle.DepartureTime, "-")))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(15, 7, "Seat", "1", 0, "C", false, 0, "")
	pdf.CellFormat(70, 7, "Passenger", "1", 0, "L", false, 0, "")
	pdf.CellFormat(45, 7, "Contact", "1", 0, "L", false, 0, "")
	pdf.CellFormat(60, 7, "Payment", "1", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	occupiedCount := 0
	for _, seat := range m.Seats {
		if !seat.Occupied {
			continue
		}
		occupiedCount++
		pdf.CellFormat(15, 7, fmt.Sprintf("%d", seat.Number), "1", 0, "C", false, 0, "")
		pdf.CellFormat(70, 7, safe(seat.Occupant.Name, "-"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 7, safe(seat.Occupant.Contact, "-"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 7, paymentSummary(m.Vehicle.Class, seat.Occupant), "1", 1, "L", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Occupied: %d / %d", occupiedCount, m.Vehicle.Capacity))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("MANIFEST_%d_%s.pdf", m.Vehicle.ID, safeFilenamePart(m.Vehicle.DepartureDate))
	return buf.Bytes(), filename, nil
}

func paymentLine(class domain.VehicleClass, o domain.Occupant) string {
	return "Payment     : " + paymentSummary(class, o)
}

func paymentSummary(class domain.VehicleClass, o domain.Occupant) string {
	if class == domain.ClassVIP {
		if o.PaymentStatus != "" {
			return string(o.PaymentStatus)
		}
		return "-"
	}
	switch o.PaymentMethod {
	case domain.PayMobileMoney:
		return fmt.Sprintf("mobile-money (%s)", safe(o.MobileOperator, "-"))
	case domain.PayCash:
		return "cash"
	default:
		return "-"
	}
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
