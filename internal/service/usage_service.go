package service

import (
	"context"
	"errors"
	"time"

	"companion-llm/internal/domain"
	"companion-llm/internal/repository"
)

// UsageService envuelve el ledger de uso y aplica los topes por tier.
type UsageService struct {
	usage repository.UsageRepository
	now   func() time.Time
}

var ErrUsageServiceNotConfigured = errors.New("usage service not configured")

func NewUsageService(usage repository.UsageRepository) *UsageService {
	return &UsageService{
		usage: usage,
		now:   time.Now,
	}
}

// CanSynthesize verifica el tope de voz ANTES de intentar la síntesis, para no
// gastar una llamada al proveedor que después habría que rechazar.
func (s *UsageService) CanSynthesize(ctx context.Context, user domain.User) (bool, error) {
	if s == nil || s.usage == nil {
		return false, ErrUsageServiceNotConfigured
	}
	ent := domain.EntitlementsForTier(user.Tier)
	if !ent.VoiceEnabled {
		return false, nil
	}
	if ent.VoiceUnlimited() {
		return true, nil
	}
	count, err := s.usage.GetCount(ctx, user.ID, domain.FeatureVoice, domain.DailyPeriod(s.now()))
	if err != nil {
		return false, err
	}
	return count < ent.VoiceDailyQuota, nil
}

// RecordVoice incrementa el contador de voz del periodo actual.
func (s *UsageService) RecordVoice(ctx context.Context, userID string) (int, error) {
	if s == nil || s.usage == nil {
		return 0, ErrUsageServiceNotConfigured
	}
	return s.usage.Increment(ctx, userID, domain.FeatureVoice, domain.DailyPeriod(s.now()))
}

// RecordDecode incrementa el contador de decode del periodo actual.
func (s *UsageService) RecordDecode(ctx context.Context, userID string) (int, error) {
	if s == nil || s.usage == nil {
		return 0, ErrUsageServiceNotConfigured
	}
	return s.usage.Increment(ctx, userID, domain.FeatureDecode, domain.DailyPeriod(s.now()))
}

// UsageReport resume los contadores del periodo actual junto con los topes del tier.
type UsageReport struct {
	Period       string              `json:"period"`
	VoiceCount   int                 `json:"voice_count"`
	DecodeCount  int                 `json:"decode_count"`
	Entitlements domain.Entitlements `json:"entitlements"`
}

func (s *UsageService) Report(ctx context.Context, user domain.User) (UsageReport, error) {
	if s == nil || s.usage == nil {
		return UsageReport{}, ErrUsageServiceNotConfigured
	}
	period := domain.DailyPeriod(s.now())
	voice, err := s.usage.GetCount(ctx, user.ID, domain.FeatureVoice, period)
	if err != nil {
		return UsageReport{}, err
	}
	decode, err := s.usage.GetCount(ctx, user.ID, domain.FeatureDecode, period)
	if err != nil {
		return UsageReport{}, err
	}
	return UsageReport{
		Period:       period,
		VoiceCount:   voice,
		DecodeCount:  decode,
		Entitlements: domain.EntitlementsForTier(user.Tier),
	}, nil
}
