// Package session owns the authenticated user and the top-level view of the
// client: login, register or the account dashboard.
package session

import (
	"context"

	"github.com/boddenberg/bank-dashboard-go/internal/domain"

	"go.uber.org/zap"
)

// View is the top-level screen.
type View int

const (
	ViewLogin View = iota
	ViewRegister
	ViewDashboard
)

func (v View) String() string {
	switch v {
	case ViewLogin:
		return "login"
	case ViewRegister:
		return "register"
	case ViewDashboard:
		return "dashboard"
	}
	return "unknown"
}

// Releaser is a mounted dashboard. Release ends its session.
type Releaser interface {
	Release(ctx context.Context) error
}

// Controller tracks the view and the user. A dashboard is mounted through
// the factory on login and released on logout; it exists only while a user
// is set.
type Controller[D Releaser] struct {
	view      View
	user      *domain.User
	dashboard D
	mounted   bool

	mount  func(domain.User) D
	logger *zap.Logger
}

// NewController starts on the login view.
func NewController[D Releaser](mount func(domain.User) D, logger *zap.Logger) *Controller[D] {
	return &Controller[D]{
		view:   ViewLogin,
		mount:  mount,
		logger: logger,
	}
}

// Login sets user, shows the dashboard and mounts it. It fails with
// domain.ErrInvalidTransition while a user is signed in; Logout first.
func (c *Controller[D]) Login(user domain.User) (D, error) {
	return c.authenticate("login", user)
}

// Register behaves like Login for a freshly created user.
func (c *Controller[D]) Register(user domain.User) (D, error) {
	return c.authenticate("register", user)
}

func (c *Controller[D]) authenticate(via string, user domain.User) (D, error) {
	if c.user != nil || c.mounted {
		var zero D
		return zero, domain.ErrInvalidTransition
	}
	u := user
	c.user = &u
	c.view = ViewDashboard
	c.dashboard = c.mount(u)
	c.mounted = true
	c.logger.Info("user authenticated", zap.String("via", via), zap.String("user_id", u.ID))
	return c.dashboard, nil
}

// Logout releases the dashboard, clears the user and returns to login. The
// view changes even if the release fails.
func (c *Controller[D]) Logout(ctx context.Context) error {
	err := c.release(ctx)
	c.user = nil
	c.view = ViewLogin
	c.logger.Info("user logged out")
	return err
}

func (c *Controller[D]) release(ctx context.Context) error {
	if !c.mounted {
		return nil
	}
	d := c.dashboard
	var zero D
	c.dashboard = zero
	c.mounted = false
	if err := d.Release(ctx); err != nil {
		c.logger.Error("failed to release dashboard", zap.Error(err))
		return err
	}
	return nil
}

// SwitchToRegister shows the register view. Only valid while signed out.
func (c *Controller[D]) SwitchToRegister() error {
	return c.switchTo(ViewRegister)
}

// SwitchToLogin shows the login view. Only valid while signed out.
func (c *Controller[D]) SwitchToLogin() error {
	return c.switchTo(ViewLogin)
}

func (c *Controller[D]) switchTo(v View) error {
	if c.user != nil {
		return domain.ErrInvalidTransition
	}
	c.view = v
	return nil
}

// View returns the current view.
func (c *Controller[D]) View() View { return c.view }

// User returns the signed-in user.
func (c *Controller[D]) User() (domain.User, bool) {
	if c.user == nil {
		return domain.User{}, false
	}
	return *c.user, true
}

// DashboardVisible is true only on the dashboard view with a user set.
func (c *Controller[D]) DashboardVisible() bool {
	return c.view == ViewDashboard && c.user != nil
}

// Dashboard returns the mounted dashboard.
func (c *Controller[D]) Dashboard() (D, bool) {
	return c.dashboard, c.mounted
}
