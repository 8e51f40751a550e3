package bandit

import (
	"context"
	"sync"
	"testing"

	"github.com/modehaus/stylesynth/models"
)

func TestSeedFromProfilePriors(t *testing.T) {
	s := NewStore(nil)
	profile := models.StyleProfile{
		UserID:  "brand-1",
		Version: 1,
		Categories: map[models.Category]map[string]models.Observation{
			models.CategoryColor: {
				"black": {Count: 10, Confidence: 0.9},
				"rust":  {Count: 4, Confidence: 0.2},
				"ivory": {Count: 0, Confidence: 0.9},
			},
		},
	}
	if err := s.SeedFromProfile(context.Background(), profile); err != nil {
		t.Fatalf("SeedFromProfile: %v", err)
	}

	snap := s.Snapshot("brand-1")

	confident := snap.Distribution(models.CategoryColor, "black")
	if confident.Alpha != 11 || confident.Beta != 1 {
		t.Errorf("confident prior = Beta(%v,%v), want Beta(11,1)", confident.Alpha, confident.Beta)
	}

	wide := snap.Distribution(models.CategoryColor, "rust")
	if wide.Alpha != 3 || wide.Beta != 3 {
		t.Errorf("low-confidence prior = Beta(%v,%v), want Beta(3,3)", wide.Alpha, wide.Beta)
	}

	if snap.Has(models.CategoryColor, "ivory") {
		t.Error("zero-count observations must not seed a posterior")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()
	realized := map[models.Category]string{models.CategoryFabric: "silk"}

	if err := s.ApplyFeedback(ctx, "u1", realized, true, 1.0); err != nil {
		t.Fatalf("ApplyFeedback: %v", err)
	}

	snap := s.Snapshot("u1")
	before := snap.Distribution(models.CategoryFabric, "silk")

	if err := s.ApplyFeedback(ctx, "u1", realized, true, 1.0); err != nil {
		t.Fatalf("ApplyFeedback: %v", err)
	}

	after := snap.Distribution(models.CategoryFabric, "silk")
	if after.Alpha != before.Alpha {
		t.Error("snapshot must not observe writes made after it was taken")
	}

	fresh := s.Snapshot("u1").Distribution(models.CategoryFabric, "silk")
	if fresh.Alpha != before.Alpha+1 {
		t.Errorf("fresh snapshot alpha = %v, want %v", fresh.Alpha, before.Alpha+1)
	}
}

func TestSnapshotUnknownUserFallsBackToUniform(t *testing.T) {
	s := NewStore(nil)
	snap := s.Snapshot("nobody")

	d := snap.Distribution(models.CategoryColor, "black")
	if d.Alpha != 1 || d.Beta != 1 {
		t.Errorf("unknown user must get Beta(1,1), got Beta(%v,%v)", d.Alpha, d.Beta)
	}
	if snap.Has(models.CategoryColor, "black") {
		t.Error("Has must be false for unseeded values")
	}
}

func TestApplyFeedbackPositiveNegative(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()
	realized := map[models.Category]string{models.CategoryLighting: "rim lighting"}

	if err := s.ApplyFeedback(ctx, "u1", realized, true, 0.9); err != nil {
		t.Fatalf("positive feedback: %v", err)
	}
	if err := s.ApplyFeedback(ctx, "u1", realized, false, 0.5); err != nil {
		t.Fatalf("negative feedback: %v", err)
	}

	d := s.Snapshot("u1").Distribution(models.CategoryLighting, "rim lighting")
	if d.Alpha != 1.9 || d.Beta != 1.5 {
		t.Errorf("posterior = Beta(%v,%v), want Beta(1.9,1.5)", d.Alpha, d.Beta)
	}

	stats := s.Stats("u1")
	if stats.PositiveFeedback != 1 || stats.NegativeFeedback != 1 || stats.SelectionRate != 0.5 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestApplyFeedbackZeroDecayIsNoop(t *testing.T) {
	s := NewStore(nil)
	realized := map[models.Category]string{models.CategoryColor: "black"}

	if err := s.ApplyFeedback(context.Background(), "u1", realized, true, 0); err != nil {
		t.Fatalf("ApplyFeedback: %v", err)
	}
	if s.HasHistory("u1") {
		t.Error("zero decay must not create history")
	}
}

func TestParameterFloor(t *testing.T) {
	s := NewStore(nil)
	profile := models.StyleProfile{
		UserID: "u1",
		Categories: map[models.Category]map[string]models.Observation{
			models.CategoryColor: {"black": {Count: 1, Confidence: 0.1}},
		},
	}
	if err := s.SeedFromProfile(context.Background(), profile); err != nil {
		t.Fatalf("SeedFromProfile: %v", err)
	}

	d := s.Snapshot("u1").Distribution(models.CategoryColor, "black")
	if d.Alpha < 1 || d.Beta < 1 {
		t.Errorf("parameters below uninformative floor: Beta(%v,%v)", d.Alpha, d.Beta)
	}
}

func TestConcurrentFeedbackLosesNoIncrements(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()
	realized := map[models.Category]string{models.CategoryFabric: "wool"}

	const writers = 16
	const perWriter = 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if err := s.ApplyFeedback(ctx, "u1", realized, true, 1.0); err != nil {
					t.Errorf("ApplyFeedback: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	d := s.Snapshot("u1").Distribution(models.CategoryFabric, "wool")
	want := 1.0 + writers*perWriter
	if d.Alpha != want {
		t.Errorf("alpha = %v, want %v (lost increments)", d.Alpha, want)
	}
}

func TestApplyEventExactlyOnce(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()
	event := models.FeedbackEvent{
		EventID: "evt-1",
		UserID:  "u1",
		RealizedAttributes: map[models.Category]string{
			models.CategoryFabric: "silk",
		},
		Reward: 1.0,
	}

	applied, err := s.ApplyEvent(ctx, event, 1.0)
	if err != nil || !applied {
		t.Fatalf("first delivery: applied=%v err=%v", applied, err)
	}
	applied, err = s.ApplyEvent(ctx, event, 1.0)
	if err != nil || applied {
		t.Fatalf("replay: applied=%v err=%v", applied, err)
	}

	d := s.Snapshot("u1").Distribution(models.CategoryFabric, "silk")
	if d.Alpha != 2 || d.Beta != 1 {
		t.Errorf("posterior = Beta(%v,%v), want Beta(2,1)", d.Alpha, d.Beta)
	}
	if processed, _ := s.IsEventProcessed(ctx, "evt-1"); !processed {
		t.Error("applied event must be marked processed")
	}
}

func TestEventProcessedTracking(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()

	processed, err := s.IsEventProcessed(ctx, "evt-1")
	if err != nil || processed {
		t.Fatalf("fresh event: processed=%v err=%v", processed, err)
	}
	if err := s.MarkEventProcessed(ctx, "evt-1"); err != nil {
		t.Fatalf("MarkEventProcessed: %v", err)
	}
	processed, err = s.IsEventProcessed(ctx, "evt-1")
	if err != nil || !processed {
		t.Fatalf("marked event: processed=%v err=%v", processed, err)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	s := NewStore(nil)
	profile := models.StyleProfile{
		UserID:  "brand-9",
		Version: 3,
		Categories: map[models.Category]map[string]models.Observation{
			models.CategoryStyle: {"fluid evening": {Count: 5, Confidence: 0.8}},
		},
	}
	if err := s.SeedFromProfile(context.Background(), profile); err != nil {
		t.Fatalf("SeedFromProfile: %v", err)
	}

	got, ok := s.Profile("brand-9")
	if !ok || got.Version != 3 {
		t.Errorf("Profile round trip failed: ok=%v version=%d", ok, got.Version)
	}
	if _, ok := s.Profile("unknown"); ok {
		t.Error("unknown user must have no profile")
	}
}
