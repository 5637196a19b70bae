// internal/auth/controller.go
package auth

import (
	"context"
	"sync"

	"housing-portal/internal/api"
	errs "housing-portal/internal/common/errors"
	"housing-portal/internal/common/logger"
	"housing-portal/internal/models"
)

// State is the session state visible to the rest of the client.
type State int

const (
	StateLoggedOut State = iota
	StateLoggedIn
)

func (s State) String() string {
	if s == StateLoggedIn {
		return "logged_in"
	}
	return "logged_out"
}

// Store is the subset of the session store the controller needs.
type Store interface {
	Load() (*models.Session, error)
	Save(models.Session) error
	Clear() error
	Current() (models.Session, bool)
}

// Controller owns the session lifecycle: bootstrap from disk, login, logout,
// and the in-memory dashboard snapshot. The snapshot is never persisted.
type Controller struct {
	client *api.Client
	store  Store
	logger logger.Logger

	mu          sync.Mutex
	state       State
	snapshot    *models.DashboardSnapshot
	bannerError string

	// fetchGen orders dashboard fetches so a slow response issued before a
	// newer one cannot overwrite it.
	fetchGen     uint64
	acceptedGen  uint64
	onForcedExit func()
}

func NewController(client *api.Client, store Store, log logger.Logger) *Controller {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	c := &Controller{
		client: client,
		store:  store,
		logger: log,
		state:  StateLoggedOut,
	}
	client.OnSessionExpired(func() {
		c.logger.Warn("session expired, clearing local state", nil)
		c.clearLocal()
	})
	return c
}

// OnForcedExit registers a callback fired whenever the session ends without
// an explicit logout (refresh failure, idle timeout, auth rejection).
func (c *Controller) OnForcedExit(fn func()) {
	c.mu.Lock()
	c.onForcedExit = fn
	c.mu.Unlock()
}

// Bootstrap restores the persisted session at startup. Any failure to
// validate the stored credentials leaves the client logged out; only a
// confirmed account transitions to logged in.
func (c *Controller) Bootstrap(ctx context.Context) error {
	sess, err := c.store.Load()
	if err != nil {
		c.logger.WithError(err).Warn("stored session discarded", nil)
		return nil
	}
	if sess == nil {
		return nil
	}

	user, err := c.client.CurrentUser(ctx)
	if err != nil {
		// Fail closed: an unverifiable session is treated as no session.
		c.logger.WithError(err).Warn("could not verify stored session", nil)
		c.clearLocal()
		return nil
	}

	c.mu.Lock()
	c.state = StateLoggedIn
	c.mu.Unlock()
	c.logger.Info("session restored", map[string]interface{}{"email": user.Email})

	if err := c.RefreshDashboard(ctx); err != nil {
		c.recordFetchFailure(err)
	}
	return nil
}

// Login authenticates and persists the session atomically: either the
// complete token-plus-user record lands on disk or nothing does.
func (c *Controller) Login(ctx context.Context, email, password, captchaToken string) error {
	sess, err := c.client.Login(ctx, email, password, captchaToken)
	if err != nil {
		return err
	}
	if err := c.store.Save(sess); err != nil {
		return err
	}

	c.mu.Lock()
	c.state = StateLoggedIn
	c.bannerError = ""
	c.mu.Unlock()
	c.logger.Info("signed in", map[string]interface{}{"email": sess.User.Email})

	c.client.InvalidateDashboard()
	if err := c.RefreshDashboard(ctx); err != nil {
		c.recordFetchFailure(err)
	}
	return nil
}

// Logout clears local state first, then tells the backend best-effort. It is
// safe to call from any state.
func (c *Controller) Logout(ctx context.Context) {
	sess, had := c.store.Current()
	c.clearLocalSilent()

	if had && sess.RefreshToken != "" {
		if err := c.client.Logout(ctx, sess.RefreshToken); err != nil {
			c.logger.WithError(err).Warn("server logout failed", nil)
		}
	}
	c.logger.Info("signed out", nil)
}

// RefreshDashboard refetches the snapshot. Responses from fetches issued
// before the last accepted one are dropped.
func (c *Controller) RefreshDashboard(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateLoggedIn {
		c.mu.Unlock()
		return errs.NewAuthenticationError("not signed in")
	}
	c.fetchGen++
	gen := c.fetchGen
	c.mu.Unlock()

	snapshot, err := c.client.Dashboard(ctx)
	if err != nil {
		if errs.HasCode(err, errs.ErrCodeAuthenticationFailed) || errs.HasCode(err, errs.ErrCodeSessionExpired) {
			c.logger.Warn("dashboard fetch rejected, ending session", nil)
			c.clearLocal()
		}
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen < c.acceptedGen {
		c.logger.Debug("dropping stale dashboard response", map[string]interface{}{"generation": gen})
		return nil
	}
	c.acceptedGen = gen
	c.snapshot = snapshot
	c.bannerError = ""
	return nil
}

// StayActive proactively refreshes the access token, used when the user
// dismisses the idle warning.
func (c *Controller) StayActive(ctx context.Context) error {
	return c.client.RefreshAccessToken(ctx)
}

// ForceLogout ends the session locally without a server round trip, used by
// the idle monitor.
func (c *Controller) ForceLogout() {
	c.clearLocal()
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) CurrentUser() (models.User, bool) {
	sess, ok := c.store.Current()
	if !ok {
		return models.User{}, false
	}
	return sess.User, true
}

// Snapshot returns the last accepted dashboard payload, nil before the first
// successful fetch.
func (c *Controller) Snapshot() *models.DashboardSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// HasApplication reports whether the account already has a tenancy or a
// submitted application.
func (c *Controller) HasApplication() bool {
	return c.Snapshot().HasApplication()
}

// BannerError returns the message shown when the dashboard could not load.
func (c *Controller) BannerError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bannerError
}

func (c *Controller) recordFetchFailure(err error) {
	// Session-ending failures already cleared all local state; a logged-out
	// controller carries no banner.
	if errs.HasCode(err, errs.ErrCodeSessionExpired) || errs.HasCode(err, errs.ErrCodeAuthenticationFailed) {
		return
	}

	msg := "Could not connect to the server to fetch your data."
	if se, ok := errs.AsStandard(err); ok && !se.Retryable {
		msg = se.Message
	}
	c.mu.Lock()
	c.bannerError = msg
	c.mu.Unlock()
}

// clearLocal wipes session, snapshot, and cache, and notifies the forced-exit
// hook when the session was live.
func (c *Controller) clearLocal() {
	wasLoggedIn := c.clearLocalSilent()

	c.mu.Lock()
	fn := c.onForcedExit
	c.mu.Unlock()
	if wasLoggedIn && fn != nil {
		fn()
	}
}

func (c *Controller) clearLocalSilent() bool {
	if err := c.store.Clear(); err != nil {
		c.logger.WithError(err).Warn("failed to clear session file", nil)
	}
	c.client.FlushCache()

	c.mu.Lock()
	wasLoggedIn := c.state == StateLoggedIn
	c.state = StateLoggedOut
	c.snapshot = nil
	c.bannerError = ""
	c.mu.Unlock()
	return wasLoggedIn
}
