package dashboard

import "github.com/boddenberg/bank-dashboard-go/internal/domain"

// Snapshot is a read-only copy of the dashboard state, safe to hand to a
// renderer or another goroutine.
type Snapshot struct {
	User     domain.User
	Accounts []domain.Account
	Selected domain.AccountNumber
	Detail   *domain.AccountDetail
	Amount   string

	AccountsStatus    domain.Status
	DetailStatus      domain.Status
	TransactionStatus domain.Status
}

// Snapshot copies the current state.
func (m *Machine) Snapshot() Snapshot {
	s := Snapshot{
		User:              m.user,
		Selected:          m.selected,
		Amount:            m.amount,
		AccountsStatus:    m.accountsStatus,
		DetailStatus:      m.detailStatus,
		TransactionStatus: m.txStatus,
	}
	if m.accounts != nil {
		s.Accounts = make([]domain.Account, len(m.accounts))
		copy(s.Accounts, m.accounts)
	}
	if m.detail != nil {
		d := *m.detail
		d.RecentTransactions = append([]domain.Transaction(nil), m.detail.RecentTransactions...)
		s.Detail = &d
	}
	return s
}

// LoadingAccounts reports the initial "loading accounts" state. A refresh
// after a transaction never enters it.
func (s Snapshot) LoadingAccounts() bool {
	return s.AccountsStatus.IsLoading()
}

// Submitting reports whether a transaction is in flight.
func (s Snapshot) Submitting() bool {
	return s.TransactionStatus.IsLoading()
}

// Notice returns the banner to show, if any. A transaction outcome wins over
// a detail error, which wins over an accounts error.
func (s Snapshot) Notice() (domain.Status, bool) {
	for _, st := range []domain.Status{s.TransactionStatus, s.DetailStatus, s.AccountsStatus} {
		if st.HasMessage() {
			return st, true
		}
	}
	return domain.Status{}, false
}

// SelectedAccount returns the list entry of the selection.
func (s Snapshot) SelectedAccount() (domain.Account, bool) {
	for _, a := range s.Accounts {
		if a.AccountNumber == s.Selected {
			return a, true
		}
	}
	return domain.Account{}, false
}

// SelectedIndex returns the list position of the selection, or -1.
func (s Snapshot) SelectedIndex() int {
	for i, a := range s.Accounts {
		if a.AccountNumber == s.Selected {
			return i
		}
	}
	return -1
}
