// Package ticket renders the check-in pass for a confirmed booking: a
// one-page PDF carrying the class details and a QR code the front desk scans.
package ticket

import (
	"bytes"
	"fmt"
	"time"

	"fitstudio/pkg/model"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// CheckInCode is the payload encoded in the QR image.
func CheckInCode(booking *model.Booking) string {
	return fmt.Sprintf("fitstudio:booking:%s:class:%s", booking.ID, booking.ClassID)
}

func Render(booking *model.Booking, class *model.FitnessClass) ([]byte, error) {
	qrBytes, err := qrcode.Encode(CheckInCode(booking), qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("failed to encode check-in code: %w", err)
	}

	loc, err := time.LoadLocation(class.Timezone)
	if err != nil {
		loc = time.UTC
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.Cell(0, 15, "CLASS PASS")
	pdf.Ln(18)

	pdf.SetDrawColor(220, 220, 220)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(8)

	yStart := pdf.GetY()
	pdf.SetFillColor(245, 245, 245)
	pdf.Rect(15, yStart, 120, 55, "F")

	pdf.SetXY(20, yStart+7)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, "BOOKING")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Booking ID: %s", booking.ID))
	pdf.Ln(6)
	pdf.Cell(0, 8, fmt.Sprintf("Name: %s", booking.ClientName))
	pdf.Ln(6)
	pdf.Cell(0, 8, fmt.Sprintf("Email: %s", booking.ClientEmail))
	pdf.Ln(6)
	pdf.Cell(0, 8, fmt.Sprintf("Booked: %s", booking.BookingTime.In(loc).Format("02 Jan 2006 15:04 MST")))

	pdf.RegisterImageOptionsReader("qr", gofpdf.ImageOptions{ImageType: "png"}, bytes.NewReader(qrBytes))
	pdf.ImageOptions("qr", 145, yStart+5, 45, 0, false, gofpdf.ImageOptions{ImageType: "png"}, 0, "")

	pdf.SetY(yStart + 63)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.Cell(0, 6, "Show this code at the front desk to check in.")
	pdf.Ln(10)

	sectionTitle(pdf, "CLASS")
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Class: %s (%s)", class.Name, class.ClassType))
	pdf.Ln(6)
	pdf.Cell(0, 8, fmt.Sprintf("Instructor: %s", class.Instructor))
	pdf.Ln(6)
	pdf.Cell(0, 8, fmt.Sprintf("Starts: %s", class.StartTime.In(loc).Format("Mon 02 Jan 2006 15:04 MST")))
	pdf.Ln(6)
	pdf.Cell(0, 8, fmt.Sprintf("Ends: %s", class.EndTime.In(loc).Format("15:04 MST")))
	pdf.Ln(6)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to lay out ticket: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render ticket: %w", err)
	}
	return buf.Bytes(), nil
}

func sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(0, 9, title, "", 1, "L", true, 0, "")
	pdf.Ln(3)
}
