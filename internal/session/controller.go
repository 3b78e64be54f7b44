package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/otcheredev/hospital-dashboard/internal/api"
	"github.com/otcheredev/hospital-dashboard/internal/models"
	"github.com/rs/zerolog/log"
)

// Controller owns the in-memory session. It is the only writer; every other
// component reads the session through Current or a subscription. Mutations are
// whole-record replacements so a partially populated session can never be
// observed.
type Controller struct {
	store  *Store
	client *api.Client

	mu      sync.RWMutex
	current models.Session
	subs    []func(models.Session)
}

// NewController wires the controller to the store and backend client, and
// registers the 401 hook that invalidates the session globally.
func NewController(store *Store, client *api.Client) *Controller {
	c := &Controller{store: store, client: client}
	client.SetAuthRejectedHook(c.handleAuthRejected)
	return c
}

// Current returns the active session.
func (c *Controller) Current() models.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Subscribe registers an observer called after every session replacement.
func (c *Controller) Subscribe(fn func(models.Session)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

func (c *Controller) publish(sess models.Session) {
	c.mu.Lock()
	c.current = sess
	subs := make([]func(models.Session), len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(sess)
	}
}

// Bootstrap restores a persisted session on startup. The stored session is
// published optimistically so the caller sees no anonymous flash, and the
// token is revalidated concurrently: an authentication rejection clears the
// session, a transient failure keeps it and logs a warning.
func (c *Controller) Bootstrap(ctx context.Context) models.Session {
	sess, ok := c.store.Load(ctx)
	if !ok {
		c.publish(models.Anonymous)
		return models.Anonymous
	}

	c.publish(sess)
	go c.revalidate(context.WithoutCancel(ctx))

	return sess
}

func (c *Controller) revalidate(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	profile, err := c.client.Me(ctx)
	if err != nil {
		if errors.Is(err, api.ErrAuthRejected) {
			// The 401 hook already purged the store and published anonymous.
			log.Info().Msg("Stored session rejected during revalidation")
			return
		}
		log.Warn().Err(err).Msg("Session revalidation failed, keeping stored session")
		return
	}

	log.Debug().Str("username", profile.Username).Str("role", string(profile.Role)).Msg("Stored session revalidated")
}

// Login performs the credential step. The backend always demands a second
// factor, so anything but an MFA challenge is an unexpected response; a
// session is never established here.
func (c *Controller) Login(ctx context.Context, usernameOrEmail, password string) (*models.PendingMFAChallenge, error) {
	resp, err := c.client.Login(ctx, usernameOrEmail, password)
	if err != nil {
		return nil, err
	}

	if !resp.MFARequired || resp.TempToken == "" {
		return nil, fmt.Errorf("unexpected response from server: mfa challenge missing")
	}

	return &models.PendingMFAChallenge{
		TempToken: resp.TempToken,
		EmailHint: maskEmail(usernameOrEmail),
		IssuedAt:  time.Now(),
	}, nil
}

// VerifyMFA exchanges a 6-digit code for a session. Codes are stripped of
// non-digits before validation; a wrong length fails locally without a
// network call. A server rejection leaves the challenge reusable for retry.
func (c *Controller) VerifyMFA(ctx context.Context, challenge *models.PendingMFAChallenge, code string) (models.Session, error) {
	digits, err := normalizeMFACode(code)
	if err != nil {
		return models.Anonymous, err
	}

	resp, err := c.client.VerifyMFA(ctx, challenge.TempToken, digits)
	if err != nil {
		return models.Anonymous, err
	}

	sess := models.Session{
		Token:    resp.AccessToken,
		Role:     resp.Role,
		UserID:   resp.UserID,
		Username: resp.Username,
	}

	if err := c.store.Save(ctx, sess); err != nil {
		return models.Anonymous, err
	}
	c.publish(sess)

	log.Info().Str("username", sess.Username).Str("role", string(sess.Role)).Msg("Session established")
	return sess, nil
}

// Logout ends the session. The backend call is best-effort: the local session
// is cleared no matter what the network does.
func (c *Controller) Logout(ctx context.Context) {
	if err := c.client.Logout(ctx); err != nil {
		log.Debug().Err(err).Msg("Logout request failed, clearing local session anyway")
	}

	if err := c.store.Clear(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to clear persisted session")
	}
	c.publish(models.Anonymous)
}

// handleAuthRejected reacts to any 401 response. Already-anonymous sessions
// are left alone so repeated rejections cannot loop.
func (c *Controller) handleAuthRejected() {
	if !c.Current().Authenticated() {
		return
	}

	log.Info().Msg("Authentication rejected, ending local session")
	if err := c.store.Clear(context.Background()); err != nil {
		log.Warn().Err(err).Msg("Failed to clear persisted session")
	}
	c.publish(models.Anonymous)
}

// normalizeMFACode strips non-digits and requires exactly six digits.
func normalizeMFACode(code string) (string, error) {
	var b strings.Builder
	for _, r := range code {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) != 6 {
		return "", fmt.Errorf("mfa code must be exactly 6 digits: %w", api.ErrInvalidInput)
	}
	return digits, nil
}

// maskEmail produces the hint shown while the code is pending: first two
// characters, three stars, then the domain. Plain usernames get a generic
// hint because the address is not known client-side.
func maskEmail(usernameOrEmail string) string {
	at := strings.Index(usernameOrEmail, "@")
	if at < 0 {
		return "your email"
	}
	local := usernameOrEmail[:at]
	if len(local) > 2 {
		local = local[:2]
	}
	return local + "***" + usernameOrEmail[at:]
}
