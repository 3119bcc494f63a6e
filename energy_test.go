package main

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

/* ─── BMR / TDEE / target ────────────────────────────────────────────── */

// TestCalculateBMR checks Mifflin-St Jeor for 70kg, 175cm, 30 years.
// Male: 700 + 1093.75 - 150 + 5 = 1648.75 → 1649. Female uses -161 → 1483.
// Any gender other than "female" takes the +5 branch.
func TestCalculateBMR(t *testing.T) {
	cases := []struct {
		gender string
		want   int
	}{
		{"male", 1649},
		{"female", 1483},
		{"other", 1649},
		{"", 1649},
	}
	for _, tc := range cases {
		t.Run(tc.gender, func(t *testing.T) {
			if got := calculateBMR(70, 175, 30, tc.gender); got != tc.want {
				t.Errorf("calculateBMR(70, 175, 30, %q) = %d, want %d", tc.gender, got, tc.want)
			}
		})
	}
}

// TestCalculateBMR_Unvalidated verifies implausible inputs still compute.
func TestCalculateBMR_Unvalidated(t *testing.T) {
	if got := calculateBMR(0, 0, 200, "male"); got != -995 {
		t.Errorf("calculateBMR(0, 0, 200) = %d, want -995", got)
	}
}

func TestCalculateTDEE(t *testing.T) {
	if got := calculateTDEE(1649, 1.55); got != 2556 {
		t.Errorf("calculateTDEE(1649, 1.55) = %d, want 2556", got)
	}
	if got := calculateTDEE(1649, activityMultiplier("unknown")); got != 1979 {
		t.Errorf("unknown level should use sedentary 1.2: got %d, want 1979", got)
	}
}

func TestCalculateCalorieTarget(t *testing.T) {
	cases := []struct {
		goal string
		want int
	}{
		{"lose_weight", 2056},
		{"maintain_weight", 2556},
		{"gain_weight", 3056},
		{"bulk", 2556},
	}
	for _, tc := range cases {
		if got := calculateCalorieTarget(2556, tc.goal); got != tc.want {
			t.Errorf("calculateCalorieTarget(2556, %q) = %d, want %d", tc.goal, got, tc.want)
		}
	}
}

/* ─── Age ────────────────────────────────────────────────────────────── */

// TestCalculateAge verifies the birthday-not-yet-reached decrement.
func TestCalculateAge(t *testing.T) {
	dob := day(1990, time.June, 15)
	cases := []struct {
		name  string
		today time.Time
		want  int
	}{
		{"day before birthday", day(2026, time.June, 14), 35},
		{"on birthday", day(2026, time.June, 15), 36},
		{"earlier month", day(2026, time.March, 30), 35},
		{"later month", day(2026, time.October, 1), 36},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := calculateAge(dob, tc.today); got != tc.want {
				t.Errorf("calculateAge = %d, want %d", got, tc.want)
			}
		})
	}
}

/* ─── Calories burned ────────────────────────────────────────────────── */

func TestCalculateCaloriesBurned(t *testing.T) {
	cases := []struct {
		name     string
		typ      string
		minutes  int
		weightKg float64
		want     int
	}{
		{"cardio 30m at 70kg", "cardio", 30, 70, 280},
		{"yoga 60m at 80kg", "yoga", 60, 80, 240},
		{"unknown type uses MET 5", "parkour", 60, 70, 350},
		{"zero weight uses default 70kg", "walking", 60, 0, 245},
		{"negative weight uses default", "hiit", 30, -5, 350},
		{"zero minutes", "cardio", 0, 70, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := calculateCaloriesBurned(tc.typ, tc.minutes, tc.weightKg); got != tc.want {
				t.Errorf("calculateCaloriesBurned(%q, %d, %v) = %d, want %d", tc.typ, tc.minutes, tc.weightKg, got, tc.want)
			}
		})
	}
}

/* ─── Fallback chain ─────────────────────────────────────────────────── */

// TestResolveBodyStats_Fallbacks walks the weight fallback chain: latest
// logged weight, then target weight, then the default profile.
func TestResolveBodyStats_Fallbacks(t *testing.T) {
	today := day(2026, time.October, 17)
	latest := &weightEntry{WeightKG: 82}

	cases := []struct {
		name   string
		p      profile
		latest *weightEntry
		want   float64
	}{
		{"empty profile", profile{}, nil, 70},
		{"target weight only", profile{TargetWeightKG: ptr(65.0)}, nil, 65},
		{"logged weight wins", profile{TargetWeightKG: ptr(65.0)}, latest, 82},
		{"zero logged weight ignored", profile{TargetWeightKG: ptr(65.0)}, &weightEntry{}, 65},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := resolveBodyStats(tc.p, tc.latest, today)
			if got.WeightKG != tc.want {
				t.Errorf("WeightKG = %v, want %v", got.WeightKG, tc.want)
			}
		})
	}
}

func TestResolveBodyStats_EmptyProfileIsDefault(t *testing.T) {
	got := resolveBodyStats(profile{}, nil, day(2026, time.October, 17))
	if got != defaultProfile {
		t.Errorf("resolveBodyStats(empty) = %+v, want %+v", got, defaultProfile)
	}
}

// TestResolveBodyStats_ImplausibleAge verifies a future or ancient date of
// birth falls back to the default age.
func TestResolveBodyStats_ImplausibleAge(t *testing.T) {
	today := day(2026, time.October, 17)
	for _, dob := range []time.Time{day(2030, time.January, 1), day(1850, time.January, 1)} {
		p := profile{DateOfBirth: &DateOnly{dob}}
		if got := resolveBodyStats(p, nil, today).AgeYears; got != defaultProfile.AgeYears {
			t.Errorf("dob %s: AgeYears = %d, want %d", dob.Format(dateLayout), got, defaultProfile.AgeYears)
		}
	}

	p := profile{DateOfBirth: &DateOnly{day(1996, time.October, 18)}}
	if got := resolveBodyStats(p, nil, today).AgeYears; got != 29 {
		t.Errorf("AgeYears = %d, want 29", got)
	}
}

func TestResolveBodyStats_UnknownActivityLevel(t *testing.T) {
	p := profile{ActivityLevel: ptr("couch")}
	if got := resolveBodyStats(p, nil, day(2026, time.October, 17)).ActivityLevel; got != "sedentary" {
		t.Errorf("ActivityLevel = %q, want sedentary", got)
	}
}

/* ─── energyFor ──────────────────────────────────────────────────────── */

// TestEnergyFor_Defaults: default profile BMR = 700 + 1062.5 - 150 + 5 = 1617.5 → 1618,
// sedentary TDEE = 1941.6 → 1942, maintenance target = TDEE.
func TestEnergyFor_Defaults(t *testing.T) {
	got := energyFor(defaultProfile, profile{})
	want := energy{BMR: 1618, TDEE: 1942, Target: 1942}
	if got != want {
		t.Errorf("energyFor(default) = %+v, want %+v", got, want)
	}
}

func TestEnergyFor_GoalAndOverride(t *testing.T) {
	stats := bodyStats{WeightKG: 70, HeightCM: 175, AgeYears: 30, Gender: "male", ActivityLevel: "moderate"}

	got := energyFor(stats, profile{Goal: ptr("lose_weight")})
	if got.TDEE != 2556 || got.Target != 2056 {
		t.Errorf("lose_weight: got %+v, want TDEE 2556 target 2056", got)
	}

	got = energyFor(stats, profile{Goal: ptr("lose_weight"), TargetCalories: ptr(1800)})
	if got.Target != 1800 {
		t.Errorf("target_calories override: got %d, want 1800", got.Target)
	}

	got = energyFor(stats, profile{TargetCalories: ptr(0)})
	if got.Target != 2556 {
		t.Errorf("zero target_calories should not override: got %d, want 2556", got.Target)
	}
}

func TestPopulateComputedEnergy(t *testing.T) {
	p := profile{
		Gender:        ptr("female"),
		DateOfBirth:   &DateOnly{day(1996, time.January, 1)},
		HeightCM:      ptr(175.0),
		ActivityLevel: ptr("moderate"),
	}
	populateComputedEnergy(&p, &weightEntry{WeightKG: 70}, day(2026, time.October, 17))

	if p.ComputedAge == nil || *p.ComputedAge != 30 {
		t.Fatalf("ComputedAge = %v, want 30", p.ComputedAge)
	}
	if p.ComputedBMR == nil || *p.ComputedBMR != 1483 {
		t.Errorf("ComputedBMR = %v, want 1483", p.ComputedBMR)
	}
	if p.ComputedTDEE == nil || p.ComputedTarget == nil || *p.ComputedTarget != *p.ComputedTDEE {
		t.Errorf("maintenance target should equal TDEE: tdee=%v target=%v", p.ComputedTDEE, p.ComputedTarget)
	}
}

/* ─── startOfWeek ────────────────────────────────────────────────────── */

func TestStartOfWeek(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"saturday", day(2026, time.October, 17), day(2026, time.October, 12)},
		{"sunday belongs to previous week", day(2026, time.October, 18), day(2026, time.October, 12)},
		{"monday is itself", day(2026, time.October, 12), day(2026, time.October, 12)},
		{"month boundary", day(2026, time.November, 1), day(2026, time.October, 26)},
		{"year boundary", day(2027, time.January, 1), day(2026, time.December, 28)},
		{"clock time dropped", time.Date(2026, time.October, 14, 18, 30, 0, 0, time.UTC), day(2026, time.October, 12)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := startOfWeek(tc.in)
			if !got.Equal(tc.want) {
				t.Errorf("startOfWeek(%s) = %s, want %s", tc.in, got, tc.want)
			}
			if got.Weekday() != time.Monday {
				t.Errorf("startOfWeek returned %s", got.Weekday())
			}
		})
	}
}
