package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/uhicoop/loan-service/internal/application/dto"
	"github.com/uhicoop/loan-service/internal/application/usecase"
	"github.com/uhicoop/loan-service/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// LoanHandler exposes the loan lifecycle and payment operations over HTTP.
// ---------------------------------------------------------------------------

// LoanHandler is the HTTP handler for loan operations.
type LoanHandler struct {
	apply        *usecase.ApplyLoanUseCase
	approve      *usecase.ApproveLoanUseCase
	reject       *usecase.RejectLoanUseCase
	activate     *usecase.ActivateLoanUseCase
	cancel       *usecase.CancelApplicationUseCase
	generate     *usecase.GenerateInvoiceUseCase
	process      *usecase.ProcessPaymentUseCase
	createIntent *usecase.CreateRepaymentIntentUseCase
	export       *usecase.ExportLoanHistoryUseCase
	getLoan      *usecase.GetLoanUseCase
	listLoans    *usecase.ListLoansUseCase
	stats        *usecase.LoanStatsUseCase
	logger       *slog.Logger
}

// NewLoanHandler creates a handler with all use-case dependencies.
func NewLoanHandler(
	apply *usecase.ApplyLoanUseCase,
	approve *usecase.ApproveLoanUseCase,
	reject *usecase.RejectLoanUseCase,
	activate *usecase.ActivateLoanUseCase,
	cancel *usecase.CancelApplicationUseCase,
	generate *usecase.GenerateInvoiceUseCase,
	process *usecase.ProcessPaymentUseCase,
	createIntent *usecase.CreateRepaymentIntentUseCase,
	export *usecase.ExportLoanHistoryUseCase,
	getLoan *usecase.GetLoanUseCase,
	listLoans *usecase.ListLoansUseCase,
	stats *usecase.LoanStatsUseCase,
	logger *slog.Logger,
) *LoanHandler {
	return &LoanHandler{
		apply:        apply,
		approve:      approve,
		reject:       reject,
		activate:     activate,
		cancel:       cancel,
		generate:     generate,
		process:      process,
		createIntent: createIntent,
		export:       export,
		getLoan:      getLoan,
		listLoans:    listLoans,
		stats:        stats,
		logger:       logger,
	}
}

// RegisterRoutes attaches loan routes to the given mux.
func (h *LoanHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/loans", h.applyLoan)
	mux.HandleFunc("GET /api/loans", h.listAll)
	mux.HandleFunc("GET /api/loans/stats", h.loanStats)
	mux.HandleFunc("POST /api/loans/bulk-approve", h.bulkApprove)
	mux.HandleFunc("GET /api/loans/{id}", h.getOne)
	mux.HandleFunc("DELETE /api/loans/{id}", h.cancelApplication)
	mux.HandleFunc("POST /api/loans/{id}/approve", h.approveLoan)
	mux.HandleFunc("POST /api/loans/{id}/reject", h.rejectLoan)
	mux.HandleFunc("POST /api/loans/{id}/activate", h.activateLoan)
	mux.HandleFunc("POST /api/loans/{id}/invoices", h.generateInvoice)
	mux.HandleFunc("POST /api/loans/{id}/intents", h.createRepaymentIntent)
	mux.HandleFunc("GET /api/loans/{id}/statement", h.exportStatement)
	mux.HandleFunc("POST /api/webhooks/payments", h.paymentWebhook)
}

// ---------------------------------------------------------------------------
// lifecycle endpoints
// ---------------------------------------------------------------------------

func (h *LoanHandler) applyLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.ApplyLoanRequest
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.apply.Execute(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *LoanHandler) approveLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.ApproveLoanRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.LoanID = r.PathValue("id")
	resp, err := h.approve.Execute(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LoanHandler) bulkApprove(w http.ResponseWriter, r *http.Request) {
	var req dto.BulkApproveRequest
	if !h.decode(w, r, &req) {
		return
	}
	if len(req.LoanIDs) == 0 {
		h.writeError(w, r, valueobject.NewValidationError("loan_ids", "must not be empty"))
		return
	}
	results := h.approve.ExecuteBulk(r.Context(), req)
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (h *LoanHandler) rejectLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.RejectLoanRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.LoanID = r.PathValue("id")
	resp, err := h.reject.Execute(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LoanHandler) activateLoan(w http.ResponseWriter, r *http.Request) {
	resp, err := h.activate.Execute(r.Context(), dto.ActivateLoanRequest{LoanID: r.PathValue("id")})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LoanHandler) cancelApplication(w http.ResponseWriter, r *http.Request) {
	req := dto.CancelApplicationRequest{
		BorrowerID: r.URL.Query().Get("borrower_id"),
		LoanID:     r.PathValue("id"),
	}
	if req.BorrowerID == "" {
		h.writeError(w, r, valueobject.NewValidationError("borrower_id", "is required"))
		return
	}
	if err := h.cancel.Execute(r.Context(), req); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------------
// invoice and payment endpoints
// ---------------------------------------------------------------------------

func (h *LoanHandler) generateInvoice(w http.ResponseWriter, r *http.Request) {
	var req dto.GenerateInvoiceRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.LoanID = r.PathValue("id")
	resp, err := h.generate.Execute(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *LoanHandler) createRepaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateIntentRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.LoanID = r.PathValue("id")
	resp, err := h.createIntent.Execute(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// paymentWebhook ingests a payment confirmation from the external channel.
// Duplicate deliveries are acknowledged with 200 like first deliveries, so
// the channel stops retrying.
func (h *LoanHandler) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	var evt dto.PaymentEvent
	if !h.decode(w, r, &evt) {
		return
	}
	if err := h.process.Execute(r.Context(), evt); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

func (h *LoanHandler) exportStatement(w http.ResponseWriter, r *http.Request) {
	loanID := r.PathValue("id")

	var (
		doc []byte
		err error
	)
	if borrowerID := r.URL.Query().Get("borrower_id"); borrowerID != "" {
		doc, err = h.export.ExecuteForBorrower(r.Context(), borrowerID, loanID)
	} else {
		doc, err = h.export.Execute(r.Context(), loanID)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "loan-"+loanID+"-statement.csv"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// ---------------------------------------------------------------------------
// query endpoints
// ---------------------------------------------------------------------------

func (h *LoanHandler) getOne(w http.ResponseWriter, r *http.Request) {
	loanID := r.PathValue("id")

	var (
		resp dto.LoanResponse
		err  error
	)
	if borrowerID := r.URL.Query().Get("borrower_id"); borrowerID != "" {
		resp, err = h.getLoan.ExecuteForBorrower(r.Context(), borrowerID, loanID)
	} else {
		resp, err = h.getLoan.Execute(r.Context(), loanID)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LoanHandler) listAll(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		loans []dto.LoanResponse
		err   error
	)
	if borrowerID := q.Get("borrower_id"); borrowerID != "" {
		loans, err = h.listLoans.ExecuteForBorrower(r.Context(), borrowerID)
	} else {
		loans, err = h.listLoans.ExecuteAdmin(r.Context(), dto.ListLoansRequest{
			Status: q.Get("status"),
			Search: q.Get("search"),
		})
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if loans == nil {
		loans = []dto.LoanResponse{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"loans": loans})
}

func (h *LoanHandler) loanStats(w http.ResponseWriter, r *http.Request) {
	resp, err := h.stats.Execute(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func (h *LoanHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

func (h *LoanHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, valueobject.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, valueobject.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, valueobject.ErrConflict):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeJSON(w, status, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}
