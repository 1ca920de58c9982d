// Package admin implements the broadcaster-facing reward configuration
// surface: listing rewards and binding one of them to first tracking.
package admin

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/jaedolph/verified-first/internal/config"
	"github.com/jaedolph/verified-first/internal/ebs"
)

// ErrNoRewardSelected is returned when a subscription is submitted without a
// reward id, which can happen if the reward menu never loaded.
var ErrNoRewardSelected = errors.New("no reward selected")

// Indicator reflects the subscription progress to the broadcaster. The
// pending state must always be shown before the request starts and a
// terminal state must always follow.
type Indicator interface {
	// SubscriptionPending shows the "configuring" in-progress state.
	SubscriptionPending()
	// SubscriptionSucceeded shows the terminal success state.
	SubscriptionSucceeded()
	// SubscriptionFailed shows the terminal failure state.
	SubscriptionFailed()
}

// Admin wires the backend reward endpoints to the config store.
type Admin struct {
	client    *ebs.Client
	store     *config.Store
	indicator Indicator
	log       *zap.Logger
}

// New creates a reward admin.
func New(client *ebs.Client, store *config.Store, indicator Indicator, log *zap.Logger) *Admin {
	if log == nil {
		log = zap.NewNop()
	}
	return &Admin{
		client:    client,
		store:     store,
		indicator: indicator,
		log:       log,
	}
}

// ListRewards fetches the channel's rewards in backend order.
func (a *Admin) ListRewards(ctx context.Context) ([]ebs.Reward, error) {
	rewards, err := a.client.Rewards(ctx)
	if err != nil {
		a.log.Error("failed to retrieve rewards", zap.Error(err))
		return nil, err
	}
	return rewards, nil
}

// CheckAuthorized probes whether the broadcaster has connected their Twitch
// account to the backend. Every non-success outcome reads as false.
func (a *Admin) CheckAuthorized(ctx context.Context) bool {
	return a.client.CheckAuth(ctx)
}

// CreateEventSubscription binds rewardID to first tracking. On success the
// reward id is merged into the config store before the indicator flips to
// successful, so a reported success always implies the merge happened.
func (a *Admin) CreateEventSubscription(ctx context.Context, rewardID string) error {
	a.indicator.SubscriptionPending()

	if rewardID == "" {
		a.log.Error("cannot create eventsub without a reward id")
		a.indicator.SubscriptionFailed()
		return ErrNoRewardSelected
	}

	eventsubID, err := a.client.CreateEventSub(ctx, rewardID)
	if err != nil {
		a.log.Error("failed to create eventsub", zap.Error(err))
		a.indicator.SubscriptionFailed()
		return err
	}
	a.log.Info("created eventsub", zap.String("eventsub_id", eventsubID))

	a.store.Merge(ctx, config.Partial{RewardID: &rewardID})
	a.indicator.SubscriptionSucceeded()
	return nil
}
