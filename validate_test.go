package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

/* ─── Dates ──────────────────────────────────────────────────────────── */

func TestValidateDate(t *testing.T) {
	now := time.Date(2026, time.October, 17, 23, 59, 0, 0, time.UTC)
	cases := []struct {
		in      string
		wantErr bool
	}{
		{"2026-10-17", false},
		{"2026-10-16", false},
		{"1999-01-01", false},
		{"2026-10-18", true},
		{"2026-13-01", true},
		{"17/10/2026", true},
		{"", true},
	}
	for _, tc := range cases {
		_, err := validateDate(tc.in, now)
		if (err != nil) != tc.wantErr {
			t.Errorf("validateDate(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
		if err != nil && !errors.Is(err, errValidation) {
			t.Errorf("validateDate(%q) error should wrap errValidation", tc.in)
		}
	}
}

// TestValidateDate_Timezone: just after midnight in UTC+10 the local date is
// already tomorrow relative to UTC.
func TestValidateDate_Timezone(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	now := time.Date(2026, time.October, 18, 0, 30, 0, 0, loc)
	if _, err := validateDate("2026-10-18", now); err != nil {
		t.Errorf("local today rejected: %v", err)
	}
}

func TestValidateDateRange(t *testing.T) {
	cases := []struct {
		start, end string
		wantErr    bool
	}{
		{"2026-10-01", "2026-10-17", false},
		{"2026-10-17", "2026-10-17", false},
		{"2026-10-18", "2026-10-17", true},
		{"", "2026-10-17", true},
		{"2026-10-01", "bad", true},
	}
	for _, tc := range cases {
		_, _, err := validateDateRange(tc.start, tc.end, time.UTC)
		if (err != nil) != tc.wantErr {
			t.Errorf("validateDateRange(%q, %q) error = %v, wantErr %v", tc.start, tc.end, err, tc.wantErr)
		}
	}
}

/* ─── Ranges and enums ───────────────────────────────────────────────── */

func TestRangeValidators(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"weight ok", validateWeight(72.5), false},
		{"weight zero", validateWeight(0), true},
		{"weight 500", validateWeight(500), true},
		{"body fat nil", validateBodyFat(nil), false},
		{"body fat 100", validateBodyFat(ptr(100.0)), false},
		{"body fat 101", validateBodyFat(ptr(101.0)), true},
		{"waist zero", validateMeasurement("waist_cm", ptr(0.0)), true},
		{"calories 0", validateCalories(0), false},
		{"calories 10000", validateCalories(10000), false},
		{"calories negative", validateCalories(-1), true},
		{"calories 10001", validateCalories(10001), true},
		{"duration 0", validateDuration(0), true},
		{"duration 1439", validateDuration(1439), false},
		{"duration 1440", validateDuration(1440), true},
		{"distance 1000", validateDistance(ptr(1000.0)), true},
		{"macro negative", validateMacro("fat_g", ptr(-1.0)), true},
		{"energy 0", validateEnergyLevel(0), true},
		{"energy 5", validateEnergyLevel(5), false},
		{"habit target 0.5", validateHabitTarget(0.5), true},
		{"habit value negative", validateHabitValue(-1), true},
		{"height 300", validateHeight(ptr(300.0)), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if (tc.err != nil) != tc.wantErr {
				t.Errorf("error = %v, wantErr %v", tc.err, tc.wantErr)
			}
		})
	}
}

func TestEnumValidators(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"meal snack", validateMealType("snack"), false},
		{"meal brunch", validateMealType("brunch"), true},
		{"workout hiit", validateWorkoutType("hiit"), false},
		{"workout parkour", validateWorkoutType("parkour"), true},
		{"mood okay", validateMood("okay"), false},
		{"mood meh", validateMood("meh"), true},
		{"activity nil", validateActivityLevel(nil), false},
		{"activity very_active", validateActivityLevel(ptr("very_active")), false},
		{"activity extreme", validateActivityLevel(ptr("extreme")), true},
		{"goal gain", validateGoal(ptr("gain_weight")), false},
		{"goal bulk", validateGoal(ptr("bulk")), true},
		{"gender other", validateGender(ptr("other")), false},
		{"gender unknown", validateGender(ptr("x")), true},
		{"theme dark", validateTheme("dark"), false},
		{"theme neon", validateTheme("neon"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if (tc.err != nil) != tc.wantErr {
				t.Errorf("error = %v, wantErr %v", tc.err, tc.wantErr)
			}
		})
	}
}

// TestValidateWorkoutDistance: distance is allowed only on distance-bearing types.
func TestValidateWorkoutDistance(t *testing.T) {
	if err := validateWorkoutDistance("strength", nil); err != nil {
		t.Errorf("nil distance rejected: %v", err)
	}
	if err := validateWorkoutDistance("cycling", ptr(20.0)); err != nil {
		t.Errorf("cycling distance rejected: %v", err)
	}
	if err := validateWorkoutDistance("strength", ptr(5.0)); err == nil {
		t.Error("strength distance should be rejected")
	}
	if err := validateWorkoutDistance("walking", ptr(0.0)); err == nil {
		t.Error("zero distance should be rejected")
	}
}

// TestWorkoutPatch_TypeChange: moving a workout with a distance to a type
// without one clears the distance instead of rejecting the edit.
func TestWorkoutPatch_TypeChange(t *testing.T) {
	now := time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)
	run := workoutEntry{Type: "cardio", DurationMinutes: 30, DistanceKM: ptr(5.0)}
	lift := workoutEntry{Type: "strength", DurationMinutes: 45}

	cases := []struct {
		name    string
		current workoutEntry
		patch   workoutPatch
		wantErr bool
		clears  bool
	}{
		{"cardio to strength", run, workoutPatch{Type: ptr("strength")}, false, true},
		{"cardio to yoga", run, workoutPatch{Type: ptr("yoga")}, false, true},
		{"cardio to cycling keeps distance", run, workoutPatch{Type: ptr("cycling")}, false, false},
		{"duration only", run, workoutPatch{DurationMinutes: ptr(40)}, false, false},
		{"strength with explicit distance", run, workoutPatch{Type: ptr("strength"), DistanceKM: ptr(3.0)}, true, false},
		{"strength without stored distance", lift, workoutPatch{Name: ptr("Legs")}, false, false},
		{"distance added to strength", lift, workoutPatch{DistanceKM: ptr(2.0)}, true, false},
		{"strength to walking with distance", lift, workoutPatch{Type: ptr("walking"), DistanceKM: ptr(2.0)}, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.patch.validate(tc.current, now)
			if (err != nil) != tc.wantErr {
				t.Errorf("validate() err = %v, wantErr %v", err, tc.wantErr)
			}
			if got := tc.patch.clearsDistance(tc.current); got != tc.clears {
				t.Errorf("clearsDistance() = %v, want %v", got, tc.clears)
			}
		})
	}
}

/* ─── Binding tags ───────────────────────────────────────────────────── */

func TestNotFutureTag(t *testing.T) {
	ctx := withClock(context.Background(), func() time.Time {
		return time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)
	})

	type body struct {
		Date string `binding:"omitempty,notfuture"`
	}
	if err := bodyValidator().StructCtx(ctx, &body{Date: "2026-10-17"}); err != nil {
		t.Errorf("today rejected: %v", err)
	}
	if err := bodyValidator().StructCtx(ctx, &body{}); err != nil {
		t.Errorf("empty rejected: %v", err)
	}
	err := bodyValidator().StructCtx(ctx, &body{Date: "2026-10-18"})
	if err == nil {
		t.Fatal("future date accepted")
	}
	if msg := bindingErrorMessage(err); msg != "date cannot be in the future" {
		t.Errorf("bindingErrorMessage = %q", msg)
	}
}

// TestNotFutureTag_ClockPerContext: two clocks used in one process each see
// their own "today".
func TestNotFutureTag_ClockPerContext(t *testing.T) {
	type body struct {
		Date string `binding:"omitempty,notfuture"`
	}
	early := withClock(context.Background(), func() time.Time { return time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC) })
	late := withClock(context.Background(), func() time.Time { return time.Date(2026, time.October, 20, 12, 0, 0, 0, time.UTC) })

	in := &body{Date: "2026-10-19"}
	if err := bodyValidator().StructCtx(late, in); err != nil {
		t.Errorf("late clock rejected 2026-10-19: %v", err)
	}
	if err := bodyValidator().StructCtx(early, in); err == nil {
		t.Error("early clock accepted 2026-10-19")
	}
	if err := bodyValidator().StructCtx(late, in); err != nil {
		t.Errorf("late clock changed after early use: %v", err)
	}
}

func TestBindingErrorMessage(t *testing.T) {
	type body struct {
		MealType string `binding:"required"`
		Calories *int   `binding:"required"`
	}
	err := bodyValidator().Struct(&body{})
	msg := bindingErrorMessage(err)
	for _, want := range []string{"meal_type is required", "calories is required"} {
		if !strings.Contains(msg, want) {
			t.Errorf("bindingErrorMessage = %q, missing %q", msg, want)
		}
	}
	if got := bindingErrorMessage(errors.New("unexpected EOF")); got != "invalid request body" {
		t.Errorf("non-validation error = %q", got)
	}
}

func TestToSnake(t *testing.T) {
	cases := map[string]string{
		"Date":            "date",
		"DurationMinutes": "duration_minutes",
		"DistanceKM":      "distance_km",
		"ProteinG":        "protein_g",
	}
	for in, want := range cases {
		if got := toSnake(in); got != want {
			t.Errorf("toSnake(%q) = %q, want %q", in, got, want)
		}
	}
}
