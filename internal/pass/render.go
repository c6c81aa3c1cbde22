package pass

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/nekogravitycat/smart-room-booking/internal/booking"
)

const (
	qrSize     = 256
	MinPNGSize = 64
	MaxPNGSize = 1024
	margin     = 16
)

// PNG renders payload as a QR code on a white card of size x size pixels.
func PNG(payload string, size int) ([]byte, error) {
	if size < MinPNGSize || size > MaxPNGSize {
		return nil, fmt.Errorf("size %d out of range [%d, %d]", size, MinPNGSize, MaxPNGSize)
	}

	qr, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	qr.DisableBorder = true

	// NearestNeighbor keeps module edges sharp when scaling.
	code := imaging.Resize(qr.Image(qrSize), size-2*margin, size-2*margin, imaging.NearestNeighbor)
	card := imaging.New(size, size, color.White)
	card = imaging.Paste(card, code, image.Pt(margin, margin))

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, card, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode pass image: %w", err)
	}
	return buf.Bytes(), nil
}

// PDF renders a printable A4 pass for b with its QR code.
func PDF(b *booking.Booking, payload string) ([]byte, error) {
	qrPNG, err := qrcode.Encode(payload, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Room Booking Pass")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	for _, line := range []string{
		"Booking: " + b.ID,
		fmt.Sprintf("Customer: %s (%s)", b.Customer.Name, b.Customer.ID),
		"Branch: " + b.Branch.Name,
		fmt.Sprintf("Room: %s (%s)", b.Room.ID, b.Room.Type),
		fmt.Sprintf("When: %s %s", b.Slot.Date, b.Slot.Time),
	} {
		pdf.Cell(0, 10, line)
		pdf.Ln(8)
	}

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 20, 40, 40, false, imageOpts, 0, "")

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}
