package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/uhicoop/loan-service/internal/domain/event"
	"github.com/uhicoop/loan-service/internal/domain/model"
	"github.com/uhicoop/loan-service/internal/domain/port"
	"github.com/uhicoop/loan-service/internal/domain/valueobject"
	"github.com/uhicoop/loan-service/internal/infrastructure/memory"
)

var testNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

// ---------------------------------------------------------------------------
// collaborator doubles
// ---------------------------------------------------------------------------

type staffDirStub struct {
	members map[string]port.StaffMember
}

func (s *staffDirStub) Get(_ context.Context, staffID string) (port.StaffMember, error) {
	member, ok := s.members[staffID]
	if !ok {
		return port.StaffMember{}, valueobject.NewNotFoundError("staff member", staffID)
	}
	return member, nil
}

type sentNotification struct {
	To         string
	TemplateID string
	Data       map[string]any
}

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (d *recordingDispatcher) Send(_ context.Context, to, templateID string, data map[string]any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, sentNotification{To: to, TemplateID: templateID, Data: data})
	return nil
}

func (d *recordingDispatcher) all() []sentNotification {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]sentNotification(nil), d.sent...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...event.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type gatewayStub struct {
	createFn func(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (port.PaymentIntent, error)
}

func (g *gatewayStub) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (port.PaymentIntent, error) {
	return g.createFn(ctx, amount, currency, metadata)
}

// ---------------------------------------------------------------------------
// fixture
// ---------------------------------------------------------------------------

type fixture struct {
	store      *memory.Store
	repos      port.Repositories
	publisher  *recordingPublisher
	dispatcher *recordingDispatcher
	staff      *staffDirStub
	notifier   *Notifier
	logger     *slog.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	staff := &staffDirStub{members: map[string]port.StaffMember{
		"STAFF001": {StaffID: "STAFF001", FirstName: "Ada", LastName: "Lovelace", Email: "ada@uhicoop.id"},
		"ADMIN01":  {StaffID: "ADMIN01", FirstName: "Grace", LastName: "Hopper", Email: "grace@uhicoop.id"},
	}}
	dispatcher := &recordingDispatcher{}
	return &fixture{
		store:      store,
		repos:      store.Repositories(),
		publisher:  &recordingPublisher{},
		dispatcher: dispatcher,
		staff:      staff,
		notifier:   NewNotifier(staff, dispatcher, logger),
		logger:     logger,
	}
}

// seedLoan stores a loan in the given lifecycle stage and returns it.
func (f *fixture) seedLoan(t *testing.T, stage string) model.Loan {
	t.Helper()
	loan, err := model.NewLoan(
		"STAFF001", "Ada Lovelace",
		decimal.NewFromInt(5_000), "USD",
		decimal.NewFromInt(5), 12,
		"laptop", testNow,
	)
	require.NoError(t, err)

	switch stage {
	case "PENDING":
	case "APPROVED", "ACTIVE":
		loan, err = loan.Approve("ADMIN01", testNow)
		require.NoError(t, err)
		if stage == "ACTIVE" {
			loan, err = loan.Activate(testNow)
			require.NoError(t, err)
		}
	default:
		t.Fatalf("unknown stage %q", stage)
	}

	require.NoError(t, f.repos.Loans.Save(context.Background(), loan))
	return loan.ClearEvents()
}

// seedInvoice generates and stores a pending invoice against the loan.
func (f *fixture) seedInvoice(t *testing.T, loan model.Loan, amount decimal.Decimal) model.Invoice {
	t.Helper()
	inv, err := model.NewInvoice(
		loan.ID(), loan.BorrowerID(),
		amount, decimal.Zero, decimal.Zero,
		loan.Currency(), loan.BorrowerID(), testNow,
	)
	require.NoError(t, err)
	require.NoError(t, f.repos.Invoices.Save(context.Background(), inv))
	return inv.ClearEvents()
}
