package selection

import "testing"

func TestToggleChecked_UncheckCascadesProgressed(t *testing.T) {
	t.Parallel()

	s := New()
	s.ToggleChecked(1)
	if !s.ToggleProgressed(1) {
		t.Fatalf("expected progressed toggle to be accepted for a checked event")
	}
	if !s.IsProgressed(1) {
		t.Fatalf("expected event 1 progressed")
	}

	s.ToggleChecked(1)
	if s.IsChecked(1) {
		t.Fatalf("expected event 1 unchecked")
	}
	if s.IsProgressed(1) {
		t.Fatalf("unchecking must remove the progressed flag too")
	}
}

func TestToggleProgressed_RejectedWhenUnchecked(t *testing.T) {
	t.Parallel()

	s := New()
	if s.ToggleProgressed(7) {
		t.Fatalf("progressed toggle must be rejected for an unchecked event")
	}
	if s.IsProgressed(7) {
		t.Fatalf("rejected toggle must not leave state behind")
	}
}

func TestRemove_ClearsAllThreeMaps(t *testing.T) {
	t.Parallel()

	s := New()
	s.ToggleChecked(3)
	s.ToggleProgressed(3)
	s.SetTimezoneOverride(3, "Europe/London")

	s.Remove(3)

	if s.IsChecked(3) || s.IsProgressed(3) {
		t.Fatalf("expected no checked/progressed state after Remove")
	}
	if _, ok := s.TimezoneOverride(3); ok {
		t.Fatalf("expected no timezone override after Remove")
	}
}

func TestSetTimezoneOverride_UnconditionalSetAndClear(t *testing.T) {
	t.Parallel()

	s := New()
	// Sparse override: settable regardless of checked/progressed state.
	s.SetTimezoneOverride(9, "Asia/Tokyo")
	if tz, ok := s.TimezoneOverride(9); !ok || tz != "Asia/Tokyo" {
		t.Fatalf("override = %q, %v; want Asia/Tokyo, true", tz, ok)
	}
	s.SetTimezoneOverride(9, "")
	if _, ok := s.TimezoneOverride(9); ok {
		t.Fatalf("empty value must clear the override")
	}
}

func TestProgressedTimezones_RestrictedToProgressedIDs(t *testing.T) {
	t.Parallel()

	s := New()
	s.ToggleChecked(1)
	s.ToggleChecked(2)
	s.ToggleProgressed(1)
	s.SetTimezoneOverride(1, "Europe/London")
	s.SetTimezoneOverride(2, "Asia/Tokyo") // checked but not progressed

	got := s.ProgressedTimezones()
	if len(got) != 1 || got[1] != "Europe/London" {
		t.Fatalf("ProgressedTimezones = %v; want {1: Europe/London}", got)
	}
}

func TestProgressedIDs_Sorted(t *testing.T) {
	t.Parallel()

	s := New()
	for _, id := range []int{5, 1, 3} {
		s.ToggleChecked(id)
		s.ToggleProgressed(id)
	}
	ids := s.ProgressedIDs()
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 3 || ids[2] != 5 {
		t.Fatalf("ProgressedIDs = %v; want [1 3 5]", ids)
	}
}

func TestPrune_DropsVanishedIDs(t *testing.T) {
	t.Parallel()

	s := New()
	s.ToggleChecked(1)
	s.ToggleChecked(2)
	s.ToggleProgressed(2)
	s.SetTimezoneOverride(2, "Europe/Paris")

	s.Prune(map[int]bool{1: true})

	if !s.IsChecked(1) {
		t.Fatalf("surviving id must keep its state")
	}
	if s.IsChecked(2) || s.IsProgressed(2) {
		t.Fatalf("vanished id must lose checked/progressed state")
	}
	if _, ok := s.TimezoneOverride(2); ok {
		t.Fatalf("vanished id must lose its override")
	}
}
