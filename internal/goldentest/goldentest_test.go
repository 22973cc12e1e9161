package goldentest

import (
	"context"
	"testing"
)

func openSeeded(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := Open(ctx)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Seed(ctx, DefaultScenarios()); err != nil {
		t.Fatalf("seeding store: %v", err)
	}
	return s
}

func TestAllSixScenariosRoundTripThroughTheStore(t *testing.T) {
	ctx := context.Background()
	s := openSeeded(t)
	loaded, err := s.All(ctx)
	if err != nil {
		t.Fatalf("listing scenarios: %v", err)
	}
	if len(loaded) != len(DefaultScenarios()) {
		t.Fatalf("expected %d seeded scenarios, got %d", len(DefaultScenarios()), len(loaded))
	}
}

func TestEachScenarioMatchesItsExpectation(t *testing.T) {
	ctx := context.Background()
	s := openSeeded(t)
	for _, sc := range DefaultScenarios() {
		sc := sc
		t.Run(sc.Name, func(t *testing.T) {
			loaded, err := s.Load(ctx, sc.Name)
			if err != nil {
				t.Fatalf("loading scenario: %v", err)
			}
			got := RunScenario(loaded)
			if diff := Diff(loaded, got); diff != "" {
				t.Fatalf("scenario %q mismatch: %s", sc.Name, diff)
			}
		})
	}
}

func TestLoadUnknownScenarioErrors(t *testing.T) {
	ctx := context.Background()
	s := openSeeded(t)
	if _, err := s.Load(ctx, "does-not-exist"); err == nil {
		t.Fatal("expected an error loading an unseeded scenario name")
	}
}
