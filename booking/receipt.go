package booking

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"medirent/models"
	"medirent/utils"
)

func receiptSecret() []byte {
	if s := os.Getenv("RECEIPT_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("medirent-receipt-secret")
}

// ReceiptQRPayload returns bookingID|amount|timestamp|signature so a scan
// can be verified offline against the shared secret.
func ReceiptQRPayload(b *models.Booking) string {
	data := fmt.Sprintf("%s|%.2f|%d", b.BookingID, b.TotalAmount, time.Now().Unix())
	h := hmac.New(sha256.New, receiptSecret())
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return fmt.Sprintf("%s|%s", data, sig)
}

// VerifyReceiptQR checks the signature of a scanned payload.
func VerifyReceiptQR(payload string) bool {
	idx := -1
	for i := len(payload) - 1; i >= 0; i-- {
		if payload[i] == '|' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	data, sig := payload[:idx], payload[idx+1:]
	h := hmac.New(sha256.New, receiptSecret())
	h.Write([]byte(data))
	want := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(want), []byte(sig))
}

// PrintReceipt renders a paid booking's receipt as a PDF with a signed QR.
func PrintReceipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	b, err := findBooking(ctx, ps.ByName("id"))
	if err != nil {
		respondErr(w, err, "Failed to fetch booking")
		return
	}
	if uid := utils.GetUserIDFromRequest(r); uid != "" && uid != b.PatientID && uid != b.ProviderID {
		http.Error(w, "Unauthorized", http.StatusForbidden)
		return
	}
	if b.PaymentStatus != models.PaymentPaid {
		http.Error(w, "Receipt is available only for paid bookings", http.StatusConflict)
		return
	}

	qrPNG, err := qrcode.Encode(ReceiptQRPayload(b), qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Rental Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Booking ID: %s", b.BookingID))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Patient: %s", b.PatientName))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Equipment: %s x%d", b.EquipmentName, b.Quantity))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Provider: %s", b.ProviderName))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Rental period: %s to %s (%d days)", b.StartDate, b.EndDate, b.TotalDays))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Amount paid: %.2f (%s)", b.TotalAmount, b.PaymentMethod))
	pdf.Ln(12)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=receipt-"+b.BookingID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
