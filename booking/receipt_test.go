package booking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medirent/models"
)

func TestReceiptQRPayloadVerifies(t *testing.T) {
	b := &models.Booking{BookingID: "BKG123", TotalAmount: 450.50}

	payload := ReceiptQRPayload(b)
	require.True(t, strings.HasPrefix(payload, "BKG123|450.50|"))
	assert.True(t, VerifyReceiptQR(payload))
}

func TestReceiptQRRejectsTampering(t *testing.T) {
	b := &models.Booking{BookingID: "BKG123", TotalAmount: 450.50}
	payload := ReceiptQRPayload(b)

	tampered := strings.Replace(payload, "450.50", "1.00", 1)
	assert.False(t, VerifyReceiptQR(tampered))

	assert.False(t, VerifyReceiptQR("no-signature-here"))
	assert.False(t, VerifyReceiptQR(""))
}
