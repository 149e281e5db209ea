package billing

import "testing"

func TestNewPeriod_Validation(t *testing.T) {
	if _, err := NewPeriod(0, 2024); err != ErrInvalidMonth {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
	if _, err := NewPeriod(13, 2024); err != ErrInvalidMonth {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
	if _, err := NewPeriod(6, 0); err != ErrInvalidYear {
		t.Fatalf("expected ErrInvalidYear, got %v", err)
	}
	period, err := NewPeriod(6, 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if period.Month != 6 || period.Year != 2024 {
		t.Fatalf("unexpected period %+v", period)
	}
}

func TestPeriod_PreviousRollsOverYear(t *testing.T) {
	got := Period{Month: 1, Year: 2025}.Previous()
	if got.Month != 12 || got.Year != 2024 {
		t.Fatalf("expected 12/2024, got %s", got)
	}
	got = Period{Month: 7, Year: 2025}.Previous()
	if got.Month != 6 || got.Year != 2025 {
		t.Fatalf("expected 6/2025, got %s", got)
	}
}

func TestPeriod_NextRollsOverYear(t *testing.T) {
	got := Period{Month: 12, Year: 2024}.Next()
	if got.Month != 1 || got.Year != 2025 {
		t.Fatalf("expected 1/2025, got %s", got)
	}
	got = Period{Month: 3, Year: 2024}.Next()
	if got.Month != 4 || got.Year != 2024 {
		t.Fatalf("expected 4/2024, got %s", got)
	}
}

func TestPeriod_Compare(t *testing.T) {
	a := Period{Month: 12, Year: 2024}
	b := Period{Month: 1, Year: 2025}
	if a.Compare(b) != -1 {
		t.Fatalf("expected %s < %s", a, b)
	}
	if b.Compare(a) != 1 {
		t.Fatalf("expected %s > %s", b, a)
	}
	if a.Compare(a) != 0 {
		t.Fatalf("expected %s == %s", a, a)
	}
}
