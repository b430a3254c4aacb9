// Package tui is the terminal front end: login and register forms and the
// account dashboard, rendered with bubbletea and lipgloss.
package tui

import (
	"context"
	"strings"

	"github.com/boddenberg/bank-dashboard-go/internal/dashboard"
	"github.com/boddenberg/bank-dashboard-go/internal/domain"
	"github.com/boddenberg/bank-dashboard-go/internal/infra/observability"
	"github.com/boddenberg/bank-dashboard-go/internal/port"
	"github.com/boddenberg/bank-dashboard-go/internal/session"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Deps are the collaborators of the terminal client.
type Deps struct {
	API     port.BankingAPI
	Auth    port.Authenticator
	Creds   port.CredentialStore
	Metrics *observability.Metrics
	Logger  *zap.Logger
}

// Model is the bubbletea model. The session controller decides which view
// is shown; the mounted dashboard.Machine holds the account state.
type Model struct {
	ctx     context.Context
	deps    Deps
	session *session.Controller[*dashboard.Machine]

	form   authForm
	cursor int
	// flash is a rejected submission the machine did not surface; the next
	// key clears it.
	flash  string
	width  int
	height int
}

// dashboardMsg carries a dashboard result back to the machine that issued
// the command. Results for a machine that is no longer mounted are dropped.
type dashboardMsg struct {
	owner *dashboard.Machine
	msg   dashboard.Msg
}

type authDoneMsg struct {
	register bool
	user     domain.User
	err      error
}

// New creates the model on the login view.
func New(ctx context.Context, deps Deps) Model {
	mount := func(u domain.User) *dashboard.Machine {
		return dashboard.New(deps.API, deps.Creds, u, deps.Metrics, deps.Logger)
	}
	return Model{
		ctx:     ctx,
		deps:    deps,
		session: session.NewController(mount, deps.Logger),
		form:    newLoginForm(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.session.DashboardVisible() {
			return m.updateDashboard(msg)
		}
		return m.updateForm(msg)

	case authDoneMsg:
		return m.onAuthDone(msg)

	case dashboardMsg:
		d, ok := m.session.Dashboard()
		if !ok || d != msg.owner {
			return m, nil
		}
		m.flash = ""
		cmd := m.lift(d, d.Update(msg.msg)...)
		m.syncCursor(d)
		return m, cmd
	}
	return m, nil
}

// ============================================================
// Login / register
// ============================================================

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form.busy {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyTab, tea.KeyDown:
		m.form.next()
	case tea.KeyShiftTab, tea.KeyUp:
		m.form.prev()
	case tea.KeyBackspace:
		m.form.backspace()
	case tea.KeyCtrlR:
		if m.session.View() == session.ViewLogin && m.session.SwitchToRegister() == nil {
			m.form = newRegisterForm()
		}
	case tea.KeyCtrlL:
		if m.session.View() == session.ViewRegister && m.session.SwitchToLogin() == nil {
			m.form = newLoginForm()
		}
	case tea.KeyEnter:
		if m.form.focus < len(m.form.fields)-1 {
			m.form.next()
			return m, nil
		}
		m.form.busy = true
		m.form.err = ""
		return m, m.submitForm()
	case tea.KeyRunes, tea.KeySpace:
		m.form.insert(string(msg.Runes))
	}
	return m, nil
}

func (m Model) submitForm() tea.Cmd {
	ctx, deps := m.ctx, m.deps
	values := m.form.values()

	if m.session.View() == session.ViewRegister {
		req := domain.RegisterRequest{
			Username: values[0],
			Password: values[1],
			FullName: values[2],
			Email:    values[3],
		}
		return func() tea.Msg {
			user, err := session.SignUp(ctx, deps.Auth, deps.Creds, req)
			return authDoneMsg{register: true, user: user, err: err}
		}
	}

	username, password := values[0], values[1]
	return func() tea.Msg {
		user, err := session.SignIn(ctx, deps.Auth, deps.Creds, username, password)
		return authDoneMsg{user: user, err: err}
	}
}

func (m Model) onAuthDone(msg authDoneMsg) (tea.Model, tea.Cmd) {
	m.form.busy = false
	if msg.err != nil {
		m.deps.Logger.Warn("authentication failed", zap.Bool("register", msg.register), zap.Error(msg.err))
		m.form.err = authMessage(msg.err)
		return m, nil
	}

	var d *dashboard.Machine
	var err error
	if msg.register {
		d, err = m.session.Register(msg.user)
	} else {
		d, err = m.session.Login(msg.user)
	}
	if err != nil {
		m.deps.Logger.Error("cannot mount dashboard", zap.Error(err))
		return m, nil
	}
	m.cursor = 0
	return m, m.lift(d, d.Init())
}

func authMessage(err error) string {
	switch domain.ErrorKind(err) {
	case "validation", "service":
		return domain.UserMessage(err)
	}
	return "Unable to reach the bank. Please try again."
}

// ============================================================
// Dashboard
// ============================================================

func (m Model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d, ok := m.session.Dashboard()
	if !ok {
		return m, nil
	}
	snap := d.Snapshot()
	m.flash = ""
	if snap.LoadingAccounts() {
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "l":
			return m.logout()
		}
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		return m, m.moveCursor(d, snap, -1)
	case "down", "j":
		return m, m.moveCursor(d, snap, 1)
	case "enter":
		if m.cursor < len(snap.Accounts) {
			return m, m.lift(d, d.Select(snap.Accounts[m.cursor].AccountNumber))
		}
	case "d":
		return m.submit(d, domain.Deposit, snap.Amount)
	case "w":
		return m.submit(d, domain.Withdraw, snap.Amount)
	case "backspace":
		if n := len(snap.Amount); n > 0 {
			d.SetAmount(snap.Amount[:n-1])
		}
	case "esc":
		d.SetAmount("")
	case "l":
		return m.logout()
	default:
		if msg.Type == tea.KeyRunes && isAmountInput(msg.Runes) {
			d.SetAmount(snap.Amount + string(msg.Runes))
		}
	}
	return m, nil
}

func (m *Model) moveCursor(d *dashboard.Machine, snap dashboard.Snapshot, delta int) tea.Cmd {
	if len(snap.Accounts) == 0 {
		return nil
	}
	next := m.cursor + delta
	if next < 0 || next >= len(snap.Accounts) {
		return nil
	}
	m.cursor = next
	return m.lift(d, d.Select(snap.Accounts[next].AccountNumber))
}

func (m Model) submit(d *dashboard.Machine, kind domain.TransactionKind, amount string) (tea.Model, tea.Cmd) {
	cmd, err := d.Submit(kind, amount)
	if err != nil {
		m.deps.Logger.Debug("submission rejected", zap.Error(err))
		// while a submission is in flight the machine keeps its status
		if st, ok := d.Snapshot().Notice(); !ok || st.Message != domain.UserMessage(err) {
			m.flash = domain.UserMessage(err)
		}
		return m, nil
	}
	return m, m.lift(d, cmd)
}

func (m Model) logout() (tea.Model, tea.Cmd) {
	if err := m.session.Logout(m.ctx); err != nil {
		m.deps.Logger.Error("logout failed", zap.Error(err))
	}
	m.form = newLoginForm()
	m.cursor = 0
	m.flash = ""
	return m, nil
}

// syncCursor keeps the highlighted row on the selected account.
func (m *Model) syncCursor(d *dashboard.Machine) {
	if i := d.Snapshot().SelectedIndex(); i >= 0 {
		m.cursor = i
	}
}

// lift turns dashboard commands into tea commands tagged with their owner.
func (m Model) lift(d *dashboard.Machine, cmds ...dashboard.Cmd) tea.Cmd {
	ctx := m.ctx
	var out []tea.Cmd
	for _, cmd := range cmds {
		if cmd == nil {
			continue
		}
		cmd := cmd
		out = append(out, func() tea.Msg {
			return dashboardMsg{owner: d, msg: cmd(ctx)}
		})
	}
	return tea.Batch(out...)
}

func isAmountInput(runes []rune) bool {
	for _, r := range runes {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return len(runes) > 0
}

// ============================================================
// Form state
// ============================================================

type field struct {
	label  string
	value  string
	secret bool
}

type authForm struct {
	title  string
	fields []field
	focus  int
	err    string
	busy   bool
}

func newLoginForm() authForm {
	return authForm{
		title: "Sign in",
		fields: []field{
			{label: "Username"},
			{label: "Password", secret: true},
		},
	}
}

func newRegisterForm() authForm {
	return authForm{
		title: "Create account",
		fields: []field{
			{label: "Username"},
			{label: "Password", secret: true},
			{label: "Full name"},
			{label: "Email"},
		},
	}
}

func (f *authForm) next() { f.focus = (f.focus + 1) % len(f.fields) }
func (f *authForm) prev() { f.focus = (f.focus - 1 + len(f.fields)) % len(f.fields) }

func (f *authForm) insert(s string) {
	f.fields[f.focus].value += s
}

func (f *authForm) backspace() {
	v := []rune(f.fields[f.focus].value)
	if len(v) > 0 {
		f.fields[f.focus].value = string(v[:len(v)-1])
	}
}

func (f authForm) values() []string {
	out := make([]string, len(f.fields))
	for i, fl := range f.fields {
		out[i] = strings.TrimRight(fl.value, "\n")
	}
	return out
}
