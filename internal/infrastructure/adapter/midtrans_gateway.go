package adapter

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"

	"github.com/uhicoop/loan-service/internal/domain/port"
)

// ---------------------------------------------------------------------------
// Midtrans payment gateway adapter
// ---------------------------------------------------------------------------

// MidtransConfig holds configuration for the payment gateway adapter.
type MidtransConfig struct {
	// ServerKey authenticates against the Midtrans API.
	ServerKey string
	// Sandbox selects the sandbox environment instead of production.
	Sandbox bool
}

// MidtransGateway implements port.PaymentGatewayClient on the Midtrans Snap
// API. Each intent is one Snap transaction; the Snap token doubles as the
// client secret the front end uses to open the payment page.
type MidtransGateway struct {
	client snap.Client
}

// NewMidtransGateway creates a gateway client.
func NewMidtransGateway(config MidtransConfig) *MidtransGateway {
	env := midtrans.Production
	if config.Sandbox {
		env = midtrans.Sandbox
	}

	var c snap.Client
	c.New(config.ServerKey, env)

	return &MidtransGateway{client: c}
}

// CreateIntent creates a Snap transaction for the given amount and returns
// its handle. The caller bounds the call with a context deadline; a context
// already past its deadline fails fast without hitting the API.
func (g *MidtransGateway) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (port.PaymentIntent, error) {
	if err := ctx.Err(); err != nil {
		return port.PaymentIntent{}, err
	}

	orderID := uuid.New().String()
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: amount.Round(0).IntPart(),
		},
	}
	if len(metadata) > 0 {
		req.Metadata = metadata
	}

	resp, snapErr := g.client.CreateTransaction(req)
	if snapErr != nil {
		return port.PaymentIntent{}, fmt.Errorf("midtrans create transaction: %w", snapErr)
	}

	return port.PaymentIntent{
		IntentID:     orderID,
		ClientSecret: resp.Token,
	}, nil
}
