package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/boddenberg/bank-dashboard-go/internal/domain"
	"github.com/boddenberg/bank-dashboard-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Accounts Handlers
// ============================================================

func listAccountsHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/accounts/all")
		defer span.End()

		accounts, err := svc.ListAccounts(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.AccountList{Accounts: accounts})
	}
}

func accountDetailHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/accounts/details/{accountNumber}")
		defer span.End()

		number := domain.AccountNumber(chi.URLParam(r, "accountNumber"))
		span.SetAttributes(attribute.String("account.number", number.String()))

		detail, err := svc.AccountDetail(ctx, UserIDFromContext(ctx), number)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

type transactionFunc func(ctx context.Context, owner string, req *domain.TransactionRequest) (*domain.MessageResponse, error)

func transactionHandler(apply transactionFunc, kind domain.TransactionKind, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/accounts/"+kind.Endpoint())
		defer span.End()

		var req domain.TransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		resp, err := apply(ctx, UserIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
