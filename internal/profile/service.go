package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/jonathan/issue-scout/internal/skills"
	"github.com/jonathan/issue-scout/internal/source"
	"github.com/jonathan/issue-scout/internal/store"
	"github.com/jonathan/issue-scout/internal/types"
)

// Service builds and persists consumer profiles on demand. Concurrent syncs
// for the same login collapse into one extraction via singleflight; distinct
// logins proceed independently.
type Service struct {
	source source.Client
	store  store.Store
	logger *zap.Logger
	group  singleflight.Group
	now    func() time.Time
}

// NewService builds a profile service. A nil logger disables logging.
func NewService(src source.Client, st store.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source: src,
		store:  st,
		logger: logger,
		now:    time.Now,
	}
}

// Sync rebuilds a consumer's profile from the source and persists it,
// bulk-replacing the skill and technology-usage lists. The profile record is
// created on first sync. Source failures degrade the same way extraction
// does: the profile still syncs, carrying the default skill set.
func (s *Service) Sync(ctx context.Context, login string) (*types.ConsumerProfile, error) {
	result, err, shared := s.group.Do(login, func() (any, error) {
		return s.sync(ctx, login)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("profile sync deduplicated", zap.String("login", login))
	}
	return result.(*types.ConsumerProfile), nil
}

func (s *Service) sync(ctx context.Context, login string) (*types.ConsumerProfile, error) {
	if login == "" {
		return nil, errors.New("profile: login is required")
	}

	in := Input{Login: login}

	repos, err := s.source.FetchOwnedRepositories(ctx, login)
	if err != nil && !errors.Is(err, source.ErrNotFound) {
		s.logger.Warn("repository fetch failed, extracting without artifacts",
			zap.String("login", login), zap.Error(err))
	}
	for _, repo := range repos {
		in.Artifacts = append(in.Artifacts, types.Artifact{
			Name:            repo.Name,
			Description:     repo.Description,
			PrimaryLanguage: repo.PrimaryLanguage,
			SizeMetric:      repo.SizeMetric,
			Topics:          repo.Topics,
		})
	}

	events, err := s.source.FetchActivityEvents(ctx, login)
	if err != nil && !errors.Is(err, source.ErrNotFound) {
		s.logger.Warn("activity fetch failed, extracting without events",
			zap.String("login", login), zap.Error(err))
	}
	for _, event := range events {
		in.Events = append(in.Events, types.ActivityEvent{
			ArtifactName: event.ArtifactName,
			Message:      event.Message,
		})
	}

	out := Extract(in)

	profile, err := s.store.GetProfile(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", login, err)
	}
	if profile == nil {
		profile = &types.ConsumerProfile{Login: login}
	}

	profile.Skills = out.Skills
	profile.TechnologyUsage = out.TechnologyUsage
	profile.UpdatedAt = s.now()

	if err := s.store.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("save profile %s: %w", login, err)
	}

	s.logger.Info("profile synced",
		zap.String("login", login),
		zap.Int("skills", len(profile.Skills)),
		zap.Int("technologies", len(profile.TechnologyUsage)),
	)
	return profile, nil
}

// AddManualSkill merges a user-declared skill into the profile at full
// confidence. An existing skill keeps merge semantics (mean confidence,
// tier never downgraded); a new one is inserted as-is.
func (s *Service) AddManualSkill(ctx context.Context, login, rawName string, tier types.SkillTier) (*types.ConsumerProfile, error) {
	name := skills.Normalize(rawName)
	if name == "" {
		return nil, fmt.Errorf("profile: invalid skill name %q", rawName)
	}

	profile, err := s.store.GetProfile(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", login, err)
	}
	if profile == nil {
		return nil, fmt.Errorf("profile: no profile for %s, sync first", login)
	}

	set := skills.NewSet()
	for _, sk := range profile.Skills {
		set.Merge(sk.Name, sk.Tier, sk.Confidence, sk.Origin)
	}
	set.Merge(name, tier, 1.0, types.OriginManual)

	profile.Skills = set.Skills()
	profile.UpdatedAt = s.now()

	if err := s.store.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("save profile %s: %w", login, err)
	}
	return profile, nil
}

// RemoveManualSkill deletes a skill by normalized name.
func (s *Service) RemoveManualSkill(ctx context.Context, login, rawName string) (*types.ConsumerProfile, error) {
	name := skills.Normalize(rawName)
	if name == "" {
		return nil, fmt.Errorf("profile: invalid skill name %q", rawName)
	}

	profile, err := s.store.GetProfile(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", login, err)
	}
	if profile == nil {
		return nil, fmt.Errorf("profile: no profile for %s, sync first", login)
	}

	kept := profile.Skills[:0]
	for _, sk := range profile.Skills {
		if sk.Name != name {
			kept = append(kept, sk)
		}
	}
	profile.Skills = kept
	profile.UpdatedAt = s.now()

	if err := s.store.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("save profile %s: %w", login, err)
	}
	return profile, nil
}
