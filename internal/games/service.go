package games

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"heartbound/internal/session"
	"heartbound/internal/store"
)

// Ledger entry types written by the games layer. Every escrow_debit with
// ref_type "session" must eventually be followed by an entry carrying the
// same ref_id; startup reconciliation flags the ones that are not.
const (
	EntryEscrow     = "escrow_debit"
	EntryPayout     = "payout"
	EntryRefund     = "refund"
	EntrySettlement = "settlement"

	RefSession = "session"
)

// Session pairs a Table with the bookkeeping the service needs: the registry
// key, the ledger reference id, the expiration timer and the mutex that
// serializes player actions against expiry.
type Session struct {
	id  string
	key session.Key

	mu    sync.Mutex
	table Table
	timer *session.Timer
	done  bool
}

func (s *Session) ID() string        { return s.id }
func (s *Session) Key() session.Key  { return s.key }
func (s *Session) Kind() string      { return s.table.Kind() }
func (s *Session) Members() []string { return s.table.Members() }

// View renders viewerID's snapshot; usable even after the session resolved,
// which is how a create that dealt a natural reports its final state.
func (s *Session) View(viewerID string) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Snapshot(viewerID)
}

type Service struct {
	Bank    Bank
	Reg     *session.Registry
	Timeout time.Duration
	MinBet  int64
	MaxBet  int64
}

func NewService(bank Bank, reg *session.Registry, timeout time.Duration, minBet, maxBet int64) *Service {
	return &Service{Bank: bank, Reg: reg, Timeout: timeout, MinBet: minBet, MaxBet: maxBet}
}

func (s *Service) CheckBet(bet int64) error {
	if bet < s.MinBet || bet > s.MaxBet {
		return ErrBetOutOfRange
	}
	return nil
}

// opener lets a table resolve at the deal, e.g. a blackjack natural.
type opener interface {
	Open() Step
}

// Create reserves the registry slot, escrows the owner's bet and arms the
// expiration timer. The slot is taken before the debit so a concurrent
// duplicate create cannot double-escrow, and sess.mu is held across both:
// the session is discoverable the moment it is registered, and no action
// may run until the escrow verdict is in. A refused or failed debit marks
// the session done and releases the slot. build receives the session id
// tables use as their ledger reference. The returned step is non-zero only
// when the deal itself resolved the session.
func (s *Service) Create(ctx context.Context, key session.Key, ownerID string, bet int64, build func(id string) (Table, error)) (*Session, Step, error) {
	if err := s.CheckBet(bet); err != nil {
		return nil, Step{}, err
	}
	id := store.NewID()
	table, err := build(id)
	if err != nil {
		return nil, Step{}, err
	}
	sess := &Session{id: id, key: key, table: table}
	sess.mu.Lock()
	_, created := s.Reg.CreateIfAbsent(key, func() session.Session { return sess })
	if !created {
		sess.mu.Unlock()
		return nil, Step{}, ErrDuplicateSession
	}
	ok, _, err := s.Bank.DebitIfSufficient(ctx, ownerID, bet, EntryEscrow, RefSession, id)
	if err != nil || !ok {
		sess.done = true
		s.Reg.RemoveIfSame(key, sess)
		sess.mu.Unlock()
		if err != nil {
			return nil, Step{}, err
		}
		return nil, Step{}, ErrInsufficientFunds
	}
	sess.timer = session.After(s.Timeout, func() { s.expire(sess) })
	var step Step
	if o, isOpener := table.(opener); isOpener {
		step = o.Open()
		if step.Done {
			s.resolveLocked(ctx, sess, step)
		}
	}
	sess.mu.Unlock()
	log.Debug().Str("session_id", id).Str("kind", table.Kind()).Str("owner", ownerID).Int64("bet", bet).Msg("session created")
	return sess, step, nil
}

// Act applies an action to the caller's active session of the given kind and
// returns the step plus a post-action snapshot. Resolved sessions are gone
// from the registry, so a second resolve attempt is session_not_found.
func (s *Service) Act(ctx context.Context, kind, actorID string, act Action) (Step, any, error) {
	found, ok := s.Reg.FindByMember(kind, actorID)
	if !ok {
		return Step{}, nil, ErrSessionNotFound
	}
	sess := found.(*Session)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.done {
		return Step{}, nil, ErrSessionNotFound
	}
	step, err := sess.table.Decide(ctx, actorID, act)
	if err != nil {
		return Step{}, nil, err
	}
	if step.Done {
		s.resolveLocked(ctx, sess, step)
	} else {
		sess.timer.Cancel()
		sess.timer = session.After(s.Timeout, func() { s.expire(sess) })
	}
	return step, sess.table.Snapshot(actorID), nil
}

// Snapshot returns the caller's view of their active session of kind.
func (s *Service) Snapshot(kind, viewerID string) (any, error) {
	found, ok := s.Reg.FindByMember(kind, viewerID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess := found.(*Session)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.done {
		return nil, ErrSessionNotFound
	}
	return sess.table.Snapshot(viewerID), nil
}

// resolveLocked finalizes a session whose step is terminal. Caller holds
// sess.mu. Marking done plus removing from the registry guarantees the
// expiry path, even if its timer already fired, applies nothing.
func (s *Service) resolveLocked(ctx context.Context, sess *Session, step Step) {
	sess.done = true
	sess.timer.Cancel()
	s.Reg.RemoveIfSame(sess.key, sess)
	s.applyPayouts(ctx, sess, step)
	log.Info().Str("session_id", sess.id).Str("kind", sess.Kind()).Str("outcome", string(step.Outcome)).Msg("session resolved")
}

// expire is the timer path. It competes with Act on sess.mu; whichever loses
// the race observes done (or a missing registry entry) and backs off.
func (s *Service) expire(sess *Session) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.done {
		return
	}
	if !s.Reg.RemoveIfSame(sess.key, sess) {
		sess.done = true
		return
	}
	sess.done = true
	step := sess.table.Expire()
	s.applyPayouts(ctx, sess, step)
	log.Info().Str("session_id", sess.id).Str("kind", sess.Kind()).Str("outcome", string(step.Outcome)).Msg("session expired")
}

func (s *Service) applyPayouts(ctx context.Context, sess *Session, step Step) {
	for _, p := range step.Payouts {
		var err error
		if p.Amount > 0 {
			_, err = s.Bank.Credit(ctx, p.UserID, p.Amount, p.EntryType, RefSession, sess.id)
		} else {
			err = s.Bank.RecordSettlement(ctx, p.UserID, p.EntryType, RefSession, sess.id)
		}
		if err != nil {
			log.Error().Err(err).Str("session_id", sess.id).Str("user_id", p.UserID).Int64("amount", p.Amount).Msg("payout failed")
		}
	}
}
