package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uhicoop/loan-service/internal/application/dto"
	"github.com/uhicoop/loan-service/internal/application/usecase"
	"github.com/uhicoop/loan-service/internal/domain/event"
	"github.com/uhicoop/loan-service/internal/domain/port"
	"github.com/uhicoop/loan-service/internal/domain/service"
	"github.com/uhicoop/loan-service/internal/infrastructure/adapter"
	"github.com/uhicoop/loan-service/internal/infrastructure/memory"
)

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, ...event.DomainEvent) error { return nil }

type testServer struct {
	mux   *http.ServeMux
	store *memory.Store
	repos port.Repositories
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	repos := store.Repositories()
	publisher := nopPublisher{}

	staff := adapter.NewStubStaffDirectory(
		port.StaffMember{StaffID: "STAFF001", FirstName: "Ada", LastName: "Lovelace", Email: "ada@uhicoop.id"},
		port.StaffMember{StaffID: "ADMIN01", FirstName: "Grace", LastName: "Hopper", Email: "grace@uhicoop.id"},
	)
	notifier := usecase.NewNotifier(staff, adapter.NewLogNotifier(logger), logger)
	bank := dto.BankTransferDetails{BankName: "Bank Mandiri", AccountName: "UHI Cooperative", AccountNumber: "123-456-789"}

	handler := NewLoanHandler(
		usecase.NewApplyLoanUseCase(repos.Loans, staff, publisher, notifier, logger, decimal.NewFromInt(5), "USD"),
		usecase.NewApproveLoanUseCase(store, publisher, notifier, logger),
		usecase.NewRejectLoanUseCase(store, publisher, notifier, logger),
		usecase.NewActivateLoanUseCase(store, publisher, logger),
		usecase.NewCancelApplicationUseCase(store, logger),
		usecase.NewGenerateInvoiceUseCase(store, staff, service.DefaultPricingPolicy(), publisher, logger, bank),
		usecase.NewProcessPaymentUseCase(store, publisher, notifier, logger),
		usecase.NewCreateRepaymentIntentUseCase(repos.Loans, stubGateway{}, time.Second),
		usecase.NewExportLoanHistoryUseCase(repos.Loans, repos.Payments, adapter.NewCSVStatementExporter()),
		usecase.NewGetLoanUseCase(repos.Loans),
		usecase.NewListLoansUseCase(repos.Loans),
		usecase.NewLoanStatsUseCase(repos.Loans),
		logger,
	)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	return &testServer{mux: mux, store: store, repos: repos}
}

type stubGateway struct{}

func (stubGateway) CreateIntent(context.Context, decimal.Decimal, string, map[string]string) (port.PaymentIntent, error) {
	return port.PaymentIntent{IntentID: "intent-1", ClientSecret: "secret-1"}, nil
}

func (s *testServer) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func (s *testServer) applyLoan(t *testing.T) dto.LoanResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/loans", dto.ApplyLoanRequest{
		BorrowerID: "STAFF001",
		Amount:     decimal.NewFromInt(5_000),
		TermMonths: 12,
		Purpose:    "laptop",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[dto.LoanResponse](t, rec)
}

func (s *testServer) activateLoan(t *testing.T, loanID string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/loans/"+loanID+"/approve", dto.ApproveLoanRequest{ApproverID: "ADMIN01"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.do(t, http.MethodPost, "/api/loans/"+loanID+"/activate", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestApplyLoanEndpoint(t *testing.T) {
	s := newTestServer(t)

	loan := s.applyLoan(t)
	assert.NotEmpty(t, loan.ID)
	assert.Equal(t, "PENDING", loan.Status)
	assert.Equal(t, "Ada Lovelace", loan.BorrowerName)
	assert.Equal(t, "437.50", loan.MonthlyPayment.StringFixed(2))
}

func TestApplyLoanEndpoint_BadRequests(t *testing.T) {
	s := newTestServer(t)

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/loans", bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		s.mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown borrower", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/loans", dto.ApplyLoanRequest{
			BorrowerID: "GHOST", Amount: decimal.NewFromInt(1_000), TermMonths: 12,
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid term", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/loans", dto.ApplyLoanRequest{
			BorrowerID: "STAFF001", Amount: decimal.NewFromInt(1_000), TermMonths: 0,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestApproveEndpoint_Conflicts(t *testing.T) {
	s := newTestServer(t)
	loan := s.applyLoan(t)

	rec := s.do(t, http.MethodPost, "/api/loans/"+loan.ID+"/approve", dto.ApproveLoanRequest{ApproverID: "ADMIN01"})
	require.Equal(t, http.StatusOK, rec.Code)
	approved := decodeBody[dto.LoanResponse](t, rec)
	assert.Equal(t, "APPROVED", approved.Status)

	rec = s.do(t, http.MethodPost, "/api/loans/"+loan.ID+"/approve", dto.ApproveLoanRequest{ApproverID: "ADMIN01"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/loans/missing-id/approve", dto.ApproveLoanRequest{ApproverID: "ADMIN01"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelEndpoint(t *testing.T) {
	s := newTestServer(t)
	loan := s.applyLoan(t)

	rec := s.do(t, http.MethodDelete, "/api/loans/"+loan.ID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "borrower_id query is required")

	rec = s.do(t, http.MethodDelete, "/api/loans/"+loan.ID+"?borrower_id=ADMIN01", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "cancel must be scoped to the owner")

	rec = s.do(t, http.MethodDelete, "/api/loans/"+loan.ID+"?borrower_id=STAFF001", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/loans/"+loan.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAndStatsEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/loans", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	empty := decodeBody[map[string][]dto.LoanResponse](t, rec)
	assert.NotNil(t, empty["loans"])
	assert.Empty(t, empty["loans"])

	loan := s.applyLoan(t)
	s.activateLoan(t, loan.ID)

	rec = s.do(t, http.MethodGet, "/api/loans?status=ACTIVE&search=lovelace", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decodeBody[map[string][]dto.LoanResponse](t, rec)
	require.Len(t, listed["loans"], 1)
	assert.Equal(t, loan.ID, listed["loans"][0].ID)

	rec = s.do(t, http.MethodGet, "/api/loans?status=BOGUS", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/loans/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decodeBody[dto.LoanStatsResponse](t, rec)
	assert.Equal(t, int64(1), stats.CountByStatus["ACTIVE"])
	assert.Equal(t, "5000.00", stats.TotalOutstanding.StringFixed(2))
}

func TestInvoiceAndWebhookEndpoints(t *testing.T) {
	s := newTestServer(t)
	loan := s.applyLoan(t)
	s.activateLoan(t, loan.ID)

	rec := s.do(t, http.MethodPost, "/api/loans/"+loan.ID+"/invoices", dto.GenerateInvoiceRequest{
		BorrowerID: "STAFF001",
		Amount:     decimal.NewFromInt(500),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	invoice := decodeBody[dto.InvoiceProjection](t, rec)
	assert.NotEmpty(t, invoice.InvoiceNumber)
	assert.Equal(t, "Bank Mandiri", invoice.BankTransfer.BankName)

	webhook := dto.PaymentEvent{
		InvoiceNumber:  invoice.InvoiceNumber,
		Amount:         decimal.NewFromInt(500),
		TransactionRef: "tx-1",
		Timestamp:      time.Now().UTC(),
	}
	rec = s.do(t, http.MethodPost, "/api/webhooks/payments", webhook)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "accepted", decodeBody[map[string]string](t, rec)["status"])

	// Duplicate delivery acknowledges without reapplying.
	rec = s.do(t, http.MethodPost, "/api/webhooks/payments", webhook)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/loans/"+loan.ID+"?borrower_id=STAFF001", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	refreshed := decodeBody[dto.LoanResponse](t, rec)
	assert.Equal(t, "4500.00", refreshed.OutstandingBalance.StringFixed(2))

	rec = s.do(t, http.MethodPost, "/api/webhooks/payments", dto.PaymentEvent{
		InvoiceNumber: "INV-19700101-DEADBEEF",
		Amount:        decimal.NewFromInt(100),
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIntentEndpoint(t *testing.T) {
	s := newTestServer(t)
	loan := s.applyLoan(t)
	s.activateLoan(t, loan.ID)

	rec := s.do(t, http.MethodPost, "/api/loans/"+loan.ID+"/intents", dto.CreateIntentRequest{
		BorrowerID: "STAFF001",
		Amount:     decimal.NewFromInt(500),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	intent := decodeBody[dto.PaymentIntentResponse](t, rec)
	assert.Equal(t, "intent-1", intent.IntentID)
	assert.Equal(t, "secret-1", intent.ClientSecret)
}

func TestStatementEndpoint(t *testing.T) {
	s := newTestServer(t)
	loan := s.applyLoan(t)
	s.activateLoan(t, loan.ID)

	rec := s.do(t, http.MethodGet, "/api/loans/"+loan.ID+"/statement", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Body.String(), "loan_id,"+loan.ID)

	rec = s.do(t, http.MethodGet, "/api/loans/"+loan.ID+"/statement?borrower_id=ADMIN01", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBulkApproveEndpoint(t *testing.T) {
	s := newTestServer(t)
	first := s.applyLoan(t)
	second := s.applyLoan(t)

	rec := s.do(t, http.MethodPost, "/api/loans/"+first.ID+"/approve", dto.ApproveLoanRequest{ApproverID: "ADMIN01"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/loans/bulk-approve", dto.BulkApproveRequest{
		LoanIDs:    []string{first.ID, second.ID, "missing-id"},
		ApproverID: "ADMIN01",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Results []dto.BulkApproveResult `json:"results"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Results, 3)
	assert.NotEmpty(t, body.Results[0].Error, "already approved loan must report failure")
	assert.Equal(t, "APPROVED", body.Results[1].Status)
	assert.NotEmpty(t, body.Results[2].Error)

	rec = s.do(t, http.MethodPost, "/api/loans/bulk-approve", dto.BulkApproveRequest{ApproverID: "ADMIN01"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "empty loan_ids must be rejected")
}
