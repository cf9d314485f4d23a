package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	domainauth "github.com/college-predictor/prompt-manager-fe/internal/domain/auth"
	apperrors "github.com/college-predictor/prompt-manager-fe/internal/errors"
	"github.com/college-predictor/prompt-manager-fe/internal/gateway"
	"github.com/college-predictor/prompt-manager-fe/internal/observability/statsd"
	"github.com/college-predictor/prompt-manager-fe/internal/ports"
)

// issuedMarker is the opaque value stored for the session_token
// attribute after a successful exchange. The backend session itself
// rides the credentials-included cookie jar; the marker records that an
// exchange succeeded and is echoed back in the session header.
const issuedMarker = "authenticated"

// Metric names emitted by the reconciler.
const (
	metricStateTransition = "session.state_transition"
	metricExchange        = "session.exchange"
	metricForcedSignOut   = "session.forced_sign_out"
)

// BackendAuthAPI is the slice of the gateway the reconciler depends on.
type BackendAuthAPI interface {
	Login(ctx context.Context, token string) (gateway.LoginData, error)
	Logout(ctx context.Context) error
	ResetNavigation()
}

// ReconcilerOptions groups dependencies for Reconciler.
type ReconcilerOptions struct {
	Provider ports.IdentityProvider
	Store    ports.SessionStore
	Backend  BackendAuthAPI
	Logger   *slog.Logger // Optional, defaults to slog.Default
	Metrics  statsd.Sink  // Optional, defaults to a no-op sink
	// RecordTTL is the validity window written on exchange success.
	// Defaults to domainauth.DefaultRecordTTL (7 days).
	RecordTTL time.Duration
}

// Reconciler owns the authoritative in-memory principal and unifies
// three independent sources of truth: the identity provider's live
// state, the persisted session record, and the backend's session
// concept. Exactly one Reconciler exists per process lifetime; all
// session state mutation funnels through it.
type Reconciler struct {
	provider  ports.IdentityProvider
	store     ports.SessionStore
	backend   BackendAuthAPI
	logger    *slog.Logger
	metrics   statsd.Sink
	recordTTL time.Duration

	// exchanges collapses concurrent backend exchanges for the same
	// principal; the cache-agreement check remains the primary
	// suppression mechanism for redundant exchanges.
	exchanges singleflight.Group

	mu          sync.Mutex
	state       domainauth.AuthState
	principal   *domainauth.Principal
	unsubscribe func()
	started     bool
	baseCtx     context.Context

	ready     chan struct{}
	readyOnce sync.Once
}

// NewReconciler constructs a Reconciler. Provider, Store, and Backend
// are required.
func NewReconciler(opts ReconcilerOptions) (*Reconciler, error) {
	if opts.Provider == nil {
		return nil, errors.New("identity provider is required")
	}
	if opts.Store == nil {
		return nil, errors.New("session store is required")
	}
	if opts.Backend == nil {
		return nil, errors.New("backend auth API is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var metrics statsd.Sink = statsd.Noop{}
	if opts.Metrics != nil {
		metrics = opts.Metrics
	}
	ttl := opts.RecordTTL
	if ttl <= 0 {
		ttl = domainauth.DefaultRecordTTL
	}

	return &Reconciler{
		provider:  opts.Provider,
		store:     opts.Store,
		backend:   opts.Backend,
		logger:    logger,
		metrics:   metrics,
		recordTTL: ttl,
		state:     domainauth.StateUnknown,
		ready:     make(chan struct{}),
	}, nil
}

// Start runs the one-time initialization. When the persisted record is
// valid AND the identity provider synchronously reports a matching
// principal, the session is restored without a backend call. Otherwise
// the reconciler subscribes to provider state changes; the subscription
// is long-lived because provider state can change at any time after
// load. ctx is the process-lifetime context used for store writes and
// backend calls triggered by provider events.
func (r *Reconciler) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return errors.New("reconciler already started")
	}
	r.started = true
	r.baseCtx = ctx
	r.mu.Unlock()

	if rec, ok := r.loadRecord(ctx); ok {
		if p, present := r.provider.CurrentPrincipal(); present && rec.Matches(p) {
			// Cache presence alone is never sufficient; both signals
			// agree here, so skip the redundant exchange.
			r.logger.Info("session restored from cache", "email", p.Email)
			r.setState(domainauth.StateAuthenticated, &p)
			return nil
		}
	}

	unsubscribe := r.provider.OnPrincipalChange(r.onPrincipalChange)
	r.mu.Lock()
	r.unsubscribe = unsubscribe
	r.mu.Unlock()

	// Deliver the synchronously known principal, if any, as the first
	// event; otherwise stay Unknown until the provider reports.
	if p, present := r.provider.CurrentPrincipal(); present {
		r.onPrincipalChange(&p)
	}
	return nil
}

// Stop releases the provider subscription. In-flight HTTP results are
// simply discarded by their consumers; session-clearing side effects
// still complete because they act on process-wide state.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	unsubscribe := r.unsubscribe
	r.unsubscribe = nil
	r.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// onPrincipalChange is the long-lived identity-provider listener.
func (r *Reconciler) onPrincipalChange(p *domainauth.Principal) {
	ctx := r.eventContext()

	if p == nil {
		r.logger.Info("identity provider reports no principal, clearing session")
		if err := r.store.Clear(ctx); err != nil {
			r.logger.Error("clear session store", "error", err)
		}
		r.setState(domainauth.StateUnauthenticated, nil)
		return
	}

	// Re-entrancy guard: a valid record for this principal means it was
	// already reconciled; do not exchange again.
	if rec, ok := r.checkRecord(ctx); ok && rec.Matches(*p) {
		r.logger.Debug("principal already reconciled, using cached session", "email", p.Email)
		r.setState(domainauth.StateAuthenticated, p)
		return
	}

	r.exchange(ctx, *p)
}

// exchange proves current liveness with a forced token refresh, then
// converts the identity token into a backend-confirmed identity.
// Failure clears the cache and signs the provider out so both sides
// agree the user is not authenticated.
func (r *Reconciler) exchange(ctx context.Context, p domainauth.Principal) {
	started := time.Now()
	v, err, _ := r.exchanges.Do(p.Email, func() (any, error) {
		token, tokenErr := r.provider.FreshToken(ctx, p, true)
		if tokenErr != nil {
			return nil, apperrors.Wrap(tokenErr, apperrors.ErrCodeAuthExchange, "obtain fresh identity token")
		}
		data, loginErr := r.backend.Login(ctx, token)
		if loginErr != nil {
			return nil, loginErr
		}
		return data, nil
	})
	r.metrics.Timing(metricExchange, time.Since(started), map[string]string{
		"outcome": outcomeTag(err),
	})

	if err != nil {
		r.logger.Error("backend exchange failed, forcing sign-out", "email", p.Email, "error", err)
		if clearErr := r.store.Clear(ctx); clearErr != nil {
			r.logger.Error("clear session store", "error", clearErr)
		}
		if signOutErr := r.provider.SignOut(ctx); signOutErr != nil {
			r.logger.Error("identity provider sign-out failed", "error", signOutErr)
		}
		r.metrics.Count(metricForcedSignOut, 1, nil)
		r.setState(domainauth.StateUnauthenticated, nil)
		return
	}

	data := v.(gateway.LoginData)
	r.persistRecord(ctx, data)
	r.backend.ResetNavigation()
	r.setState(domainauth.StateAuthenticated, &domainauth.Principal{
		Email:       data.Email,
		DisplayName: data.Name,
		Handle:      p.Handle,
	})
}

// Login performs only the backend exchange and reports its outcome. The
// in-memory principal is populated via the listener path once the
// provider's own state settles; callers must not assume the state flips
// synchronously. The returned error (or nil) is the completion signal
// data-fetch triggers sequence on, never a timer.
func (r *Reconciler) Login(ctx context.Context, token string) error {
	data, err := r.backend.Login(ctx, token)
	if err != nil {
		if clearErr := r.store.Clear(ctx); clearErr != nil {
			r.logger.Error("clear session store", "error", clearErr)
		}
		return err
	}

	r.persistRecord(ctx, data)
	r.backend.ResetNavigation()
	return nil
}

// Logout is best-effort-then-forced: the backend call may fail, but
// local teardown always completes. The client never remains believing
// it is authenticated after Logout returns.
func (r *Reconciler) Logout(ctx context.Context) error {
	if err := r.backend.Logout(ctx); err != nil {
		r.logger.Warn("backend logout failed, forcing local teardown", "error", err)
	}
	if err := r.provider.SignOut(ctx); err != nil {
		r.logger.Warn("identity provider sign-out failed", "error", err)
	}
	if err := r.store.Clear(ctx); err != nil {
		r.logger.Error("clear session store", "error", err)
	}
	r.setState(domainauth.StateUnauthenticated, nil)
	return nil
}

// CheckSession is a pure predicate over the persisted record's
// validity. It never writes, so expiry detection works without a clear.
func (r *Reconciler) CheckSession() bool {
	_, ok := r.checkRecord(r.eventContext())
	return ok
}

// State returns the reconciler's current belief.
func (r *Reconciler) State() domainauth.AuthState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// CurrentUser returns a read-only snapshot of the authenticated
// principal, if any.
func (r *Reconciler) CurrentUser() (domainauth.Principal, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.principal == nil {
		return domainauth.Principal{}, false
	}
	return *r.principal, true
}

// WaitReady blocks until the state machine leaves Unknown or ctx ends.
// Consumers gate their first data fetch on this signal.
func (r *Reconciler) WaitReady(ctx context.Context) error {
	select {
	case <-r.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// checkRecord reads the persisted record without side effects.
func (r *Reconciler) checkRecord(ctx context.Context) (domainauth.SessionRecord, bool) {
	rec, _, err := r.readRecord(ctx)
	if err != nil {
		r.logger.Warn("read session record", "error", err)
		return domainauth.SessionRecord{}, false
	}
	return rec, rec.IsValid(time.Now())
}

// loadRecord is the startup read: an invalid or partial record with any
// residue present is destroyed, never partially trusted.
func (r *Reconciler) loadRecord(ctx context.Context) (domainauth.SessionRecord, bool) {
	rec, residue, err := r.readRecord(ctx)
	if err != nil {
		r.logger.Warn("read session record", "error", err)
		return domainauth.SessionRecord{}, false
	}
	if rec.IsValid(time.Now()) {
		return rec, true
	}
	if residue {
		r.logger.Info("discarding invalid or expired session record")
		if clearErr := r.store.Clear(ctx); clearErr != nil {
			r.logger.Error("clear session store", "error", clearErr)
		}
	}
	return domainauth.SessionRecord{}, false
}

// readRecord reads all persisted keys. residue reports whether any key
// held a value at all.
func (r *Reconciler) readRecord(ctx context.Context) (domainauth.SessionRecord, bool, error) {
	values := make(map[domainauth.SessionKey]string, len(domainauth.SessionKeys))
	residue := false
	for _, key := range domainauth.SessionKeys {
		value, present, err := r.store.Get(ctx, key)
		if err != nil {
			return domainauth.SessionRecord{}, residue, err
		}
		if present {
			residue = true
			values[key] = value
		}
	}
	return domainauth.DecodeRecord(values), residue, nil
}

// persistRecord writes the refreshed record after a successful
// exchange. Store failures are logged, not fatal: the live session
// still works, only the next reload loses the fast path.
func (r *Reconciler) persistRecord(ctx context.Context, data gateway.LoginData) {
	rec := domainauth.SessionRecord{
		Email:        data.Email,
		DisplayName:  data.Name,
		IssuedMarker: issuedMarker,
		ExpiresAt:    time.Now().Add(r.recordTTL),
	}
	for key, value := range rec.Encode() {
		if err := r.store.Set(ctx, key, value, r.recordTTL); err != nil {
			r.logger.Error("persist session attribute", "key", string(key), "error", err)
		}
	}
}

func (r *Reconciler) setState(next domainauth.AuthState, p *domainauth.Principal) {
	r.mu.Lock()
	prev := r.state
	r.state = next
	if p == nil {
		r.principal = nil
	} else {
		principal := *p
		r.principal = &principal
	}
	r.mu.Unlock()

	if prev != next {
		r.logger.Info("auth state changed", "from", prev.String(), "to", next.String())
		r.metrics.Count(metricStateTransition, 1, map[string]string{
			"from": prev.String(),
			"to":   next.String(),
		})
	}
	if next != domainauth.StateUnknown {
		r.readyOnce.Do(func() { close(r.ready) })
	}
}

// eventContext returns the context captured at Start, falling back to
// Background before Start (CheckSession is legal at any time).
func (r *Reconciler) eventContext() context.Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.baseCtx != nil {
		return r.baseCtx
	}
	return context.Background()
}

func outcomeTag(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
