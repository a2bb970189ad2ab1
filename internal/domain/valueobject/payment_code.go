package valueobject

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ServiceCode is the institution's fixed biller code embedded in every
// QR payment payload.
const ServiceCode = "UHI-2134"

// BuildPaymentCode assembles the machine-readable payment payload scanned by
// mobile banking apps. The grammar is fixed:
//
//	SERVICE_CODE|{staffID}-{loanID}|G/L/{year}/{loanIDSuffix}
//
// where loanIDSuffix is the final dash-delimited segment of the loan id,
// routing the payment to the loan's general-ledger account for the year.
func BuildPaymentCode(staffID, loanID string, year int) string {
	return fmt.Sprintf("%s|%s-%s|G/L/%d/%s", ServiceCode, staffID, loanID, year, loanIDSuffix(loanID))
}

func loanIDSuffix(loanID string) string {
	segments := strings.Split(loanID, "-")
	return segments[len(segments)-1]
}

// NewInvoiceNumber generates a globally unique invoice number. The embedded
// date keeps numbers human-sortable; the UUID tail guarantees uniqueness.
func NewInvoiceNumber(now time.Time) string {
	tail := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:8]
	return fmt.Sprintf("INV-%s-%s", now.Format("20060102"), tail)
}

// NewPaymentPIN generates an opaque six-digit payment PIN shown to the payer.
// It is drawn from crypto/rand and not derivable from any other invoice field.
func NewPaymentPIN() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate payment pin: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
