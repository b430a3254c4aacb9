package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/boddenberg/bank-dashboard-go/internal/domain"
)

// ErrRunnerClosed is returned by a Runner after Close.
var ErrRunnerClosed = errors.New("dashboard runner closed")

// Runner drives a Machine without a UI. One goroutine owns the machine;
// Cmds run on their own goroutines and their results are applied by the
// owner in arrival order.
type Runner struct {
	m *Machine

	ctx    context.Context
	cancel context.CancelFunc
	events chan func()
	done   chan struct{}
	once   sync.Once

	// pending counts dispatched Cmds whose result has not been applied yet.
	pending sync.WaitGroup
}

// NewRunner starts the loop owning m. Cmds run with a context derived from
// ctx; Close cancels it.
func NewRunner(ctx context.Context, m *Machine) *Runner {
	ctx, cancel := context.WithCancel(ctx)
	r := &Runner{
		m:      m,
		ctx:    ctx,
		cancel: cancel,
		events: make(chan func()),
		done:   make(chan struct{}),
	}
	go r.loop()
	return r
}

func (r *Runner) loop() {
	for {
		select {
		case fn := <-r.events:
			fn()
		case <-r.done:
			return
		}
	}
}

// Do runs fn on the loop goroutine and dispatches the Cmds it returns.
// It returns once fn has run.
func (r *Runner) Do(fn func(m *Machine) []Cmd) error {
	select {
	case <-r.done:
		return ErrRunnerClosed
	default:
	}

	ack := make(chan struct{})
	ev := func() {
		r.dispatch(fn(r.m)...)
		close(ack)
	}
	select {
	case r.events <- ev:
	case <-r.done:
		return ErrRunnerClosed
	}
	<-ack
	return nil
}

// dispatch runs on the loop goroutine.
func (r *Runner) dispatch(cmds ...Cmd) {
	for _, cmd := range cmds {
		if cmd == nil {
			continue
		}
		r.pending.Add(1)
		go func(cmd Cmd) {
			msg := cmd(r.ctx)
			apply := func() {
				// follow-ups are counted before this result is marked done
				r.dispatch(r.m.Update(msg)...)
				r.pending.Done()
			}
			select {
			case r.events <- apply:
			case <-r.done:
				r.pending.Done()
			}
		}(cmd)
	}
}

// Init mounts the dashboard.
func (r *Runner) Init() error {
	return r.Do(func(m *Machine) []Cmd { return []Cmd{m.Init()} })
}

// Select changes the selected account.
func (r *Runner) Select(account domain.AccountNumber) error {
	return r.Do(func(m *Machine) []Cmd { return []Cmd{m.Select(account)} })
}

// SetAmount replaces the pending amount.
func (r *Runner) SetAmount(text string) error {
	return r.Do(func(m *Machine) []Cmd {
		m.SetAmount(text)
		return nil
	})
}

// Submit validates and posts a transaction. Validation errors are returned
// directly.
func (r *Runner) Submit(kind domain.TransactionKind, amountText string) error {
	var submitErr error
	err := r.Do(func(m *Machine) []Cmd {
		cmd, err := m.Submit(kind, amountText)
		submitErr = err
		return []Cmd{cmd}
	})
	if err != nil {
		return err
	}
	return submitErr
}

// Release ends the session on the loop goroutine.
func (r *Runner) Release(ctx context.Context) error {
	var releaseErr error
	err := r.Do(func(m *Machine) []Cmd {
		releaseErr = m.Release(ctx)
		return nil
	})
	if err != nil {
		return err
	}
	return releaseErr
}

// Snapshot copies the machine state on the loop goroutine.
func (r *Runner) Snapshot() (Snapshot, error) {
	var s Snapshot
	err := r.Do(func(m *Machine) []Cmd {
		s = m.Snapshot()
		return nil
	})
	return s, err
}

// Settle waits until every dispatched Cmd, including follow-ups, has been
// applied, or ctx is done.
func (r *Runner) Settle(ctx context.Context) error {
	idle := make(chan struct{})
	go func() {
		r.pending.Wait()
		close(idle)
	}()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels outstanding Cmds and stops the loop. Results that arrive
// afterwards are dropped.
func (r *Runner) Close() {
	r.once.Do(func() {
		r.cancel()
		close(r.done)
	})
}
