// Package dashboard implements the account session state machine: the
// account list, the selected account and its history, the pending amount
// and the status of every request the dashboard issues.
//
// A Machine is not safe for concurrent use. One loop owns it (the TUI
// program or a Runner); network calls run as Cmds outside the loop and
// their results come back through Update.
package dashboard

import (
	"context"
	"errors"

	"github.com/boddenberg/bank-dashboard-go/internal/domain"
	"github.com/boddenberg/bank-dashboard-go/internal/infra/observability"
	"github.com/boddenberg/bank-dashboard-go/internal/port"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("dashboard")

// Msg is the result of a Cmd, fed back into Machine.Update.
type Msg any

// Cmd is a unit of asynchronous work. It must not touch the Machine.
type Cmd func(ctx context.Context) Msg

// Machine is the account session state machine.
type Machine struct {
	api     port.BankingAPI
	creds   port.CredentialStore
	user    domain.User
	metrics *observability.Metrics
	logger  *zap.Logger

	accounts []domain.Account
	selected domain.AccountNumber
	detail   *domain.AccountDetail
	amount   string

	// detailFor is the selection detail was fetched for.
	detailFor domain.AccountNumber

	accountsStatus domain.Status
	detailStatus   domain.Status
	txStatus       domain.Status

	// Latest sequence numbers issued; older responses are discarded.
	listSeq   uint64
	detailSeq uint64
	released  bool
}

// New creates a dashboard for user. Nothing is fetched until Init.
func New(api port.BankingAPI, creds port.CredentialStore, user domain.User, metrics *observability.Metrics, logger *zap.Logger) *Machine {
	return &Machine{
		api:     api,
		creds:   creds,
		user:    user,
		metrics: metrics,
		logger:  logger.With(zap.String("user_id", user.ID)),
	}
}

// ============================================================
// Events
// ============================================================

// Init starts the initial account load. While it is outstanding the
// dashboard is in the loading-accounts state.
func (m *Machine) Init() Cmd {
	m.accountsStatus = domain.Loading()
	return m.fetchAccounts(false)
}

// Select makes account the current selection and fetches its detail.
// Notices are cleared immediately, before the fetch resolves.
func (m *Machine) Select(account domain.AccountNumber) Cmd {
	if m.released {
		return nil
	}
	m.changeSelection(account)
	m.clearNotices()
	return m.fetchDetail()
}

// SetAmount replaces the pending amount buffer.
func (m *Machine) SetAmount(text string) {
	m.amount = text
}

// Submit validates the pending amount and, if valid, returns the command
// posting the transaction. Validation failures are returned synchronously
// and no command is produced.
func (m *Machine) Submit(kind domain.TransactionKind, amountText string) (Cmd, error) {
	if m.released {
		return nil, &domain.ErrValidation{Field: "session", Message: "Session has ended"}
	}
	m.amount = amountText

	amount, err := ParseAmount(amountText)
	if err != nil {
		return nil, m.reject(err)
	}
	if m.selected == "" {
		return nil, m.reject(&domain.ErrValidation{Field: "account", Message: domain.MsgNoAccountSelected})
	}
	if m.txStatus.IsLoading() {
		return nil, m.reject(&domain.ErrValidation{Field: "submission", Message: domain.MsgTransactionBusy})
	}

	m.clearNotices()
	m.txStatus = domain.Loading()

	api, creds, account := m.api, m.creds, m.selected
	logger := m.logger
	return func(ctx context.Context) Msg {
		ctx, span := tracer.Start(ctx, "Dashboard.Submit")
		defer span.End()
		span.SetAttributes(
			attribute.String("account.number", account.String()),
			attribute.String("transaction.kind", string(kind)),
		)

		msg := transactionDoneMsg{kind: kind, account: account}
		token, err := creds.Token(ctx)
		if err != nil {
			msg.err = &domain.ErrTransport{Service: "credentials", Err: err}
			return msg
		}
		logger.Info("submitting transaction",
			zap.String("kind", string(kind)),
			zap.String("account", account.String()),
			zap.String("amount", amount.String()),
		)
		msg.resp, msg.err = api.Submit(ctx, token, kind, account, amount)
		return msg
	}, nil
}

// Release ends the session: the stored credential is cleared and results of
// requests still in flight will be ignored.
func (m *Machine) Release(ctx context.Context) error {
	if m.released {
		return nil
	}
	m.released = true
	m.listSeq++
	m.detailSeq++
	if m.txStatus.IsLoading() {
		m.txStatus = domain.Idle()
	}
	m.logger.Info("dashboard released")
	if err := m.creds.Clear(ctx); err != nil {
		m.logger.Error("failed to clear credential", zap.Error(err))
		return err
	}
	return nil
}

// Update applies the result of a Cmd and returns follow-up commands.
// Unknown messages are ignored, so a UI loop can forward everything.
func (m *Machine) Update(msg Msg) []Cmd {
	switch msg := msg.(type) {
	case accountsLoadedMsg:
		return m.onAccounts(msg)
	case detailLoadedMsg:
		m.onDetail(msg)
	case transactionDoneMsg:
		return m.onTransaction(msg)
	}
	return nil
}

// ============================================================
// Result handling
// ============================================================

func (m *Machine) onAccounts(msg accountsLoadedMsg) []Cmd {
	if m.released || msg.seq != m.listSeq {
		m.discard(observability.OpListAccounts, msg.seq)
		return nil
	}

	if msg.err != nil {
		m.logger.Error("failed to load accounts", zap.Bool("refresh", msg.refresh), zap.Error(msg.err))
		if msg.refresh {
			// keep the last good list
			m.accountsStatus = domain.Failed(domain.MsgLoadAccountsFailed)
			return nil
		}
		m.accounts = nil
		m.accountsStatus = domain.Failed(domain.UserMessage(&domain.ErrLoad{Err: msg.err}))
		return nil
	}

	m.accounts = msg.accounts
	m.accountsStatus = domain.Idle()
	m.logger.Debug("accounts loaded", zap.Int("count", len(msg.accounts)), zap.Bool("refresh", msg.refresh))

	if msg.refresh && m.hasAccount(m.selected) {
		return nil
	}
	if len(m.accounts) == 0 {
		m.changeSelection("")
		return nil
	}
	// auto-select by list order; a refresh must not wipe the success notice
	m.changeSelection(m.accounts[0].AccountNumber)
	if !msg.refresh {
		m.clearNotices()
	}
	return []Cmd{m.fetchDetail()}
}

func (m *Machine) onDetail(msg detailLoadedMsg) {
	if m.released || msg.seq != m.detailSeq || msg.account != m.selected {
		m.discard(observability.OpAccountDetail, msg.seq)
		return
	}

	if msg.err != nil {
		m.logger.Error("failed to load account details",
			zap.String("account", msg.account.String()),
			zap.Error(msg.err),
		)
		m.detailStatus = domain.Failed(domain.MsgLoadDetailFailed)
		return
	}

	m.detail = msg.detail
	m.detailFor = msg.account
	m.detailStatus = domain.Idle()
}

func (m *Machine) onTransaction(msg transactionDoneMsg) []Cmd {
	if m.released {
		return nil
	}

	if msg.err != nil {
		m.logger.Warn("transaction failed",
			zap.String("kind", string(msg.kind)),
			zap.String("account", msg.account.String()),
			zap.String("error_kind", domain.ErrorKind(msg.err)),
			zap.Error(msg.err),
		)
		m.txStatus = domain.Failed(domain.UserMessage(msg.err))
		return nil
	}

	m.logger.Info("transaction accepted",
		zap.String("kind", string(msg.kind)),
		zap.String("account", msg.account.String()),
	)
	message := ""
	if msg.resp != nil {
		message = msg.resp.Message
	}
	m.txStatus = domain.Succeeded(message)
	m.amount = ""

	cmds := []Cmd{m.fetchAccounts(true)}
	if m.selected != "" {
		cmds = append(cmds, m.fetchDetail())
	}
	return cmds
}

// ============================================================
// Commands
// ============================================================

func (m *Machine) fetchAccounts(refresh bool) Cmd {
	m.listSeq++
	seq := m.listSeq
	api, creds := m.api, m.creds

	return func(ctx context.Context) Msg {
		ctx, span := tracer.Start(ctx, "Dashboard.FetchAccounts")
		defer span.End()
		span.SetAttributes(attribute.Bool("refresh", refresh))

		msg := accountsLoadedMsg{seq: seq, refresh: refresh}
		token, err := creds.Token(ctx)
		if err != nil {
			msg.err = &domain.ErrTransport{Service: "credentials", Err: err}
			return msg
		}
		msg.accounts, msg.err = api.ListAccounts(ctx, token)
		return msg
	}
}

func (m *Machine) fetchDetail() Cmd {
	m.detailSeq++
	m.detailStatus = domain.Loading()
	seq, account := m.detailSeq, m.selected
	api, creds := m.api, m.creds

	return func(ctx context.Context) Msg {
		ctx, span := tracer.Start(ctx, "Dashboard.FetchDetail")
		defer span.End()
		span.SetAttributes(attribute.String("account.number", account.String()))

		msg := detailLoadedMsg{seq: seq, account: account}
		token, err := creds.Token(ctx)
		if err != nil {
			msg.err = &domain.ErrTransport{Service: "credentials", Err: err}
			return msg
		}
		msg.detail, msg.err = api.GetAccountDetail(ctx, token, account)
		return msg
	}
}

// ============================================================
// Helpers
// ============================================================

// changeSelection drops a detail that belongs to another account, so the
// detail shown always matches the selection.
func (m *Machine) changeSelection(account domain.AccountNumber) {
	m.selected = account
	if m.detailFor != account {
		m.detail = nil
		m.detailFor = ""
	}
}

// clearNotices resets every user-facing message. The account set and
// detail are left as they are.
func (m *Machine) clearNotices() {
	if !m.txStatus.IsLoading() {
		m.txStatus = domain.Idle()
	}
	if m.detailStatus.IsError() {
		m.detailStatus = domain.Idle()
	}
	if m.accountsStatus.IsError() {
		m.accountsStatus = domain.Idle()
	}
}

func (m *Machine) reject(err error) error {
	var validation *domain.ErrValidation
	if errors.As(err, &validation) {
		m.metrics.IncrValidationReject(validation.Field)
	}
	if !m.txStatus.IsLoading() {
		m.txStatus = domain.Failed(domain.UserMessage(err))
	}
	m.logger.Debug("submission rejected", zap.Error(err))
	return err
}

func (m *Machine) discard(operation string, seq uint64) {
	m.metrics.IncrStaleResponse(operation)
	m.logger.Debug("discarding stale response",
		zap.String("operation", operation),
		zap.Uint64("seq", seq),
		zap.Bool("released", m.released),
	)
}

func (m *Machine) hasAccount(n domain.AccountNumber) bool {
	if n == "" {
		return false
	}
	for _, a := range m.accounts {
		if a.AccountNumber == n {
			return true
		}
	}
	return false
}

// ParseAmount accepts a decimal string strictly greater than zero.
func ParseAmount(text string) (decimal.Decimal, error) {
	amount, ok := domain.ParseAmountLiteral(text)
	if !ok || !amount.IsPositive() {
		return decimal.Decimal{}, &domain.ErrValidation{Field: "amount", Message: domain.MsgInvalidAmount}
	}
	return amount, nil
}

// ============================================================
// Messages
// ============================================================

type accountsLoadedMsg struct {
	seq      uint64
	refresh  bool
	accounts []domain.Account
	err      error
}

type detailLoadedMsg struct {
	seq     uint64
	account domain.AccountNumber
	detail  *domain.AccountDetail
	err     error
}

type transactionDoneMsg struct {
	kind    domain.TransactionKind
	account domain.AccountNumber
	resp    *domain.MessageResponse
	err     error
}
