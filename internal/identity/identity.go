// Package identity keeps track of the judge handle the user trains as.
package identity

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/verte-zerg/cfdrill/internal/model"
)

const userKey = "user"

// ProfileFetcher loads a public profile from the judge.
type ProfileFetcher interface {
	FetchUser(ctx context.Context, handle string) (model.UserProfile, error)
}

// KV is the persistence the provider needs.
type KV interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Remove(ctx context.Context, key string) error
}

// Provider binds a handle and serves its latest rating snapshot.
type Provider struct {
	kv      KV
	fetcher ProfileFetcher
	log     *zap.Logger
}

// New returns a Provider.
func New(kv KV, fetcher ProfileFetcher, log *zap.Logger) *Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{kv: kv, fetcher: fetcher, log: log}
}

// Bind looks handle up on the judge and stores the profile.
func (p *Provider) Bind(ctx context.Context, handle string) (model.UserProfile, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return model.UserProfile{}, fmt.Errorf("%w: handle must not be empty", model.ErrValidation)
	}
	profile, err := p.fetcher.FetchUser(ctx, handle)
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("failed to look up %q: %w", handle, err)
	}
	if err := p.kv.Set(ctx, userKey, profile); err != nil {
		return model.UserProfile{}, fmt.Errorf("failed to save profile: %w", err)
	}
	p.log.Info("handle bound", zap.String("handle", profile.Handle), zap.Int("rating", EffectiveRating(profile)))
	return profile, nil
}

// Current returns the bound profile or model.ErrNotBound.
func (p *Provider) Current(ctx context.Context) (model.UserProfile, error) {
	var profile model.UserProfile
	ok, err := p.kv.Get(ctx, userKey, &profile)
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("failed to load profile: %w", err)
	}
	if !ok || profile.Handle == "" {
		return model.UserProfile{}, model.ErrNotBound
	}
	return profile, nil
}

// Refresh re-fetches the bound handle so the rating snapshot is current.
func (p *Provider) Refresh(ctx context.Context) (model.UserProfile, error) {
	current, err := p.Current(ctx)
	if err != nil {
		return model.UserProfile{}, err
	}
	return p.Bind(ctx, current.Handle)
}

// Unbind forgets the stored profile.
func (p *Provider) Unbind(ctx context.Context) error {
	if err := p.kv.Remove(ctx, userKey); err != nil {
		return fmt.Errorf("failed to remove profile: %w", err)
	}
	return nil
}

// EffectiveRating returns the profile rating or the unrated baseline.
func EffectiveRating(profile model.UserProfile) int {
	if profile.Rating == nil {
		return model.DefaultRating
	}
	return *profile.Rating
}
