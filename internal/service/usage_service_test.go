package service

import (
	"context"
	"testing"
	"time"

	"companion-llm/internal/domain"
)

func TestUsageService_CanSynthesizePerTier(t *testing.T) {
	cases := []struct {
		name   string
		tier   string
		seeded int
		want   bool
	}{
		{"free tier disabled", domain.TierFree, 0, false},
		{"explorer under quota", domain.TierExplorer, 4, true},
		{"explorer at quota", domain.TierExplorer, 5, false},
		{"regulator under quota", domain.TierRegulator, 14, true},
		{"regulator at quota", domain.TierRegulator, 15, false},
		{"integrator unlimited", domain.TierIntegrator, 1000, true},
		{"test tier unlimited", domain.TierTest, 1000, true},
		{"unknown tier treated as free", "platinum", 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeUsageRepo()
			svc := NewUsageService(repo)
			period := domain.DailyPeriod(time.Now())
			for i := 0; i < tc.seeded; i++ {
				if _, err := repo.Increment(context.Background(), "u1", domain.FeatureVoice, period); err != nil {
					t.Fatalf("seed: %v", err)
				}
			}

			got, err := svc.CanSynthesize(context.Background(), domain.User{ID: "u1", Tier: tc.tier})
			if err != nil {
				t.Fatalf("can synthesize: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestUsageService_RecordVoiceIncrements(t *testing.T) {
	repo := newFakeUsageRepo()
	svc := NewUsageService(repo)

	n, err := svc.RecordVoice(context.Background(), "u1")
	if err != nil || n != 1 {
		t.Fatalf("expected count 1, got %d (%v)", n, err)
	}
	n, err = svc.RecordVoice(context.Background(), "u1")
	if err != nil || n != 2 {
		t.Fatalf("expected count 2, got %d (%v)", n, err)
	}
}

func TestUsageService_GetCountIsIdempotent(t *testing.T) {
	repo := newFakeUsageRepo()
	svc := NewUsageService(repo)

	if _, err := svc.RecordVoice(context.Background(), "u1"); err != nil {
		t.Fatalf("record: %v", err)
	}

	r1, err := svc.Report(context.Background(), domain.User{ID: "u1", Tier: domain.TierExplorer})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	r2, err := svc.Report(context.Background(), domain.User{ID: "u1", Tier: domain.TierExplorer})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if r1.VoiceCount != r2.VoiceCount || r1.VoiceCount != 1 {
		t.Fatalf("expected stable count 1, got %d then %d", r1.VoiceCount, r2.VoiceCount)
	}
}

func TestUsageService_PeriodRollsOverByDay(t *testing.T) {
	repo := newFakeUsageRepo()
	svc := NewUsageService(repo)

	day1 := time.Date(2026, 8, 28, 23, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 29, 1, 0, 0, 0, time.UTC)

	svc.now = func() time.Time { return day1 }
	if _, err := svc.RecordVoice(context.Background(), "u1"); err != nil {
		t.Fatalf("record day1: %v", err)
	}

	svc.now = func() time.Time { return day2 }
	report, err := svc.Report(context.Background(), domain.User{ID: "u1", Tier: domain.TierExplorer})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.VoiceCount != 0 {
		t.Fatalf("expected fresh counter on new day, got %d", report.VoiceCount)
	}
	if report.Period != "2026-08-29" {
		t.Fatalf("unexpected period key %q", report.Period)
	}
}
