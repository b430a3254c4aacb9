package tui

import (
	"fmt"
	"strings"

	"github.com/boddenberg/bank-dashboard-go/internal/dashboard"
	"github.com/boddenberg/bank-dashboard-go/internal/domain"
	"github.com/boddenberg/bank-dashboard-go/internal/session"

	"github.com/charmbracelet/lipgloss"
)

// View implements tea.Model.
func (m Model) View() string {
	if d, ok := m.session.Dashboard(); ok && m.session.DashboardVisible() {
		return m.renderDashboard(d.Snapshot())
	}
	return m.renderForm()
}

// ============================================================
// Forms
// ============================================================

func (m Model) renderForm() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.form.title))
	b.WriteString("\n\n")

	for i, f := range m.form.fields {
		value := f.value
		if f.secret {
			value = strings.Repeat("•", len([]rune(value)))
		}
		label := mutedStyle.Render(fmt.Sprintf("%-10s", f.label))
		if i == m.form.focus {
			label = accentStyle.Render(fmt.Sprintf("%-10s", f.label))
			value += "▏"
		}
		b.WriteString(label + " " + value + "\n")
	}

	b.WriteString("\n")
	switch {
	case m.form.busy:
		b.WriteString(mutedStyle.Render("Please wait..."))
	case m.form.err != "":
		b.WriteString(errorStyle.Render(m.form.err))
	}

	keys := [][2]string{{"tab", "next field"}, {"enter", "submit"}}
	if m.session.View() == session.ViewLogin {
		keys = append(keys, [2]string{"ctrl+r", "register"})
	} else {
		keys = append(keys, [2]string{"ctrl+l", "back to login"})
	}
	keys = append(keys, [2]string{"esc", "quit"})

	return lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render(accentStyle.Render("bankdash")),
		panelStyle.Render(b.String()),
		renderKeys(keys),
	)
}

// ============================================================
// Dashboard
// ============================================================

func (m Model) renderDashboard(snap dashboard.Snapshot) string {
	if snap.LoadingAccounts() {
		return panelStyle.Render(mutedStyle.Render("Loading accounts..."))
	}

	header := headerStyle.Render(accentStyle.Render("bankdash") + "  " + titleStyle.Render("Welcome, "+snap.User.DisplayName()))
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(m.renderAccounts(snap)),
		panelStyle.Render(renderDetail(snap)),
	)

	parts := []string{header}
	switch st, ok := snap.Notice(); {
	case m.flash != "":
		parts = append(parts, renderNotice(domain.Failed(m.flash)))
	case ok:
		parts = append(parts, renderNotice(st))
	}
	parts = append(parts, body, renderAmount(snap), renderKeys([][2]string{
		{"↑/↓", "select"},
		{"0-9 .", "amount"},
		{"d", "deposit"},
		{"w", "withdraw"},
		{"l", "logout"},
		{"q", "quit"},
	}))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderAccounts(snap dashboard.Snapshot) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Accounts"))
	b.WriteString("\n")
	if len(snap.Accounts) == 0 {
		b.WriteString(mutedStyle.Render("No accounts"))
		return b.String()
	}
	for _, a := range snap.Accounts {
		line := fmt.Sprintf("%-12s %-9s %12s", a.AccountNumber, a.TypeLabel(), "$"+domain.FormatMoney(a.Balance))
		if a.AccountNumber == snap.Selected {
			line = rowStyle.Render(line)
		}
		b.WriteString("\n" + line)
	}
	return b.String()
}

func renderDetail(snap dashboard.Snapshot) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Account details"))
	b.WriteString("\n")

	switch {
	case snap.Detail == nil && snap.DetailStatus.IsLoading():
		b.WriteString(mutedStyle.Render("Loading..."))
		return b.String()
	case snap.Detail == nil:
		b.WriteString(mutedStyle.Render("Select an account"))
		return b.String()
	}

	d := snap.Detail
	fmt.Fprintf(&b, "\nAccount  %s\n", d.AccountNumber)
	if a, ok := snap.SelectedAccount(); ok {
		fmt.Fprintf(&b, "Type     %s\n", a.TypeLabel())
	}
	fmt.Fprintf(&b, "Balance  %s\n", accentStyle.Render("$"+domain.FormatMoney(d.Balance)))
	fmt.Fprintf(&b, "Opened   %s\n", d.DateOpened.Date())

	b.WriteString("\n" + titleStyle.Render("Recent transactions") + "\n")
	if len(d.RecentTransactions) == 0 {
		b.WriteString(mutedStyle.Render("No transactions yet"))
		return b.String()
	}
	for _, tx := range d.RecentTransactions {
		amount := posStyle.Render(tx.SignedAmount())
		if tx.Type != domain.Deposit {
			amount = negStyle.Render(tx.SignedAmount())
		}
		fmt.Fprintf(&b, "%-10s %-8s %s\n", tx.Date.Date(), tx.Type, amount)
	}
	return b.String()
}

func renderNotice(st domain.Status) string {
	if st.IsError() {
		return errorStyle.Render("✗ " + st.Message)
	}
	return okStyle.Render("✓ " + st.Message)
}

func renderAmount(snap dashboard.Snapshot) string {
	label := "Amount: $" + snap.Amount + "▏"
	if snap.Submitting() {
		label += mutedStyle.Render("  processing...")
	}
	return panelStyle.Render(label)
}

func renderKeys(keys [][2]string) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, keyStyle.Render(k[0])+" "+k[1])
	}
	return footerStyle.Render(strings.Join(parts, "  •  "))
}
