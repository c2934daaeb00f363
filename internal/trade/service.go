// Package trade orchestrates two-party item exchanges. All trade state is
// durable; concurrency control is the store's row locks, so two accepts
// racing on the same trade execute the exchange exactly once.
package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"heartbound/internal/store"
)

type Service struct {
	Store *store.Store
}

func NewService(s *store.Store) *Service {
	return &Service{Store: s}
}

func (s *Service) Create(ctx context.Context, initiatorID, partnerID string) (store.Trade, error) {
	if initiatorID == partnerID {
		return store.Trade{}, ErrSelfTrade
	}
	id := uuid.NewString()
	if err := s.Store.CreateTrade(ctx, id, initiatorID, partnerID); err != nil {
		return store.Trade{}, err
	}
	log.Debug().Str("trade_id", id).Str("initiator", initiatorID).Str("partner", partnerID).Msg("trade created")
	return s.Store.GetTrade(ctx, id)
}

func (s *Service) Get(ctx context.Context, tradeID, userID string) (store.Trade, []store.TradeItem, error) {
	tr, err := s.authorize(ctx, tradeID, userID)
	if err != nil {
		return store.Trade{}, nil, err
	}
	items, err := s.Store.ListTradeItems(ctx, tradeID)
	if err != nil {
		return store.Trade{}, nil, err
	}
	return tr, items, nil
}

// Offer adds quantity of an item to the caller's side. Ownership is only
// verified at execution time, against inventory rows locked in the same
// transaction that moves them.
func (s *Service) Offer(ctx context.Context, tradeID, userID, itemID string, quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if _, err := s.authorize(ctx, tradeID, userID); err != nil {
		return err
	}
	if _, err := s.Store.GetItem(ctx, itemID); err != nil {
		return err
	}
	return s.Store.AddTradeOffer(ctx, tradeID, userID, itemID, quantity)
}

// Lock freezes the caller's offer. Both sides must lock before either can
// accept.
func (s *Service) Lock(ctx context.Context, tradeID, userID string) (store.Trade, error) {
	if _, err := s.authorize(ctx, tradeID, userID); err != nil {
		return store.Trade{}, err
	}
	return s.Store.LockTrade(ctx, tradeID, userID)
}

// Accept records the caller's acceptance; when it is the second one the
// exchange executes atomically. The bool result reports execution.
func (s *Service) Accept(ctx context.Context, tradeID, userID string) (store.Trade, bool, error) {
	if _, err := s.authorize(ctx, tradeID, userID); err != nil {
		return store.Trade{}, false, err
	}
	tr, executed, err := s.Store.AcceptTrade(ctx, tradeID, userID)
	if err != nil {
		return store.Trade{}, false, err
	}
	if executed {
		log.Info().Str("trade_id", tradeID).Msg("trade executed")
	}
	return tr, executed, nil
}

func (s *Service) Cancel(ctx context.Context, tradeID, userID string) error {
	if _, err := s.authorize(ctx, tradeID, userID); err != nil {
		return err
	}
	if err := s.Store.CancelTrade(ctx, tradeID); err != nil {
		return err
	}
	log.Debug().Str("trade_id", tradeID).Str("by", userID).Msg("trade cancelled")
	return nil
}

func (s *Service) authorize(ctx context.Context, tradeID, userID string) (store.Trade, error) {
	tr, err := s.Store.GetTrade(ctx, tradeID)
	if err != nil {
		return store.Trade{}, err
	}
	if userID != tr.InitiatorID && userID != tr.PartnerID {
		return store.Trade{}, ErrNotParticipant
	}
	return tr, nil
}
