package main

import (
	"math"
	"time"
)

// activityMultipliers maps activity level strings to their TDEE multiplier.
// This is the single source of truth for valid activity levels; validateActivityLevel
// checks against it.
var activityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// goalAdjustments maps a weight goal to the daily kcal offset applied to TDEE.
var goalAdjustments = map[string]int{
	"lose_weight":     -500,
	"maintain_weight": 0,
	"gain_weight":     500,
}

// metValues holds the Metabolic Equivalent of Task for each workout type.
var metValues = map[string]float64{
	"cardio":   8.0,
	"strength": 5.0,
	"hiit":     10.0,
	"yoga":     3.0,
	"sports":   7.0,
	"walking":  3.5,
	"cycling":  7.5,
	"swimming": 7.0,
	"other":    5.0,
}

const defaultMET = 5.0

// bodyStats is the resolved set of inputs for the energy model, after the
// default-profile fallback chain has been applied.
type bodyStats struct {
	WeightKG      float64 `json:"weight_kg"`
	HeightCM      float64 `json:"height_cm"`
	AgeYears      int     `json:"age_years"`
	Gender        string  `json:"gender"`
	ActivityLevel string  `json:"activity_level"`
}

// defaultProfile substitutes for missing profile data everywhere a value is
// needed but the user has not supplied one.
var defaultProfile = bodyStats{
	WeightKG:      70,
	HeightCM:      170,
	AgeYears:      30,
	Gender:        "",
	ActivityLevel: "sedentary",
}

// energy is the BMR → TDEE → target chain for one set of body stats.
type energy struct {
	BMR    int `json:"bmr"`
	TDEE   int `json:"tdee"`
	Target int `json:"target"`
}

// calculateBMR computes basal metabolic rate via Mifflin-St Jeor. Inputs are
// not validated; out-of-range values produce arithmetically valid output.
func calculateBMR(weightKg, heightCm float64, ageYears int, gender string) int {
	bmr := 10*weightKg + 6.25*heightCm - 5*float64(ageYears)
	if gender == "female" {
		bmr -= 161
	} else {
		bmr += 5
	}
	return int(math.Round(bmr))
}

// calculateTDEE multiplies BMR by an activity multiplier.
func calculateTDEE(bmr int, activityMultiplier float64) int {
	return int(math.Round(float64(bmr) * activityMultiplier))
}

// calculateCalorieTarget applies the goal adjustment to TDEE. Unknown goals
// are treated as maintenance.
func calculateCalorieTarget(tdee int, goal string) int {
	return tdee + goalAdjustments[goal]
}

// calculateAge returns whole years between dob and today, decrementing when
// this year's birthday has not been reached yet.
func calculateAge(dob, today time.Time) int {
	age := today.Year() - dob.Year()
	if today.Month() < dob.Month() || (today.Month() == dob.Month() && today.Day() < dob.Day()) {
		age--
	}
	return age
}

// calculateCaloriesBurned estimates kcal burned as MET × kg × hours.
// Unknown workout types use MET 5.0; a non-positive weight uses the default profile weight.
func calculateCaloriesBurned(workoutType string, durationMinutes int, weightKg float64) int {
	met, ok := metValues[workoutType]
	if !ok {
		met = defaultMET
	}
	if weightKg <= 0 {
		weightKg = defaultProfile.WeightKG
	}
	return int(math.Round(met * weightKg * float64(durationMinutes) / 60))
}

// activityMultiplier returns the multiplier for level, falling back to the
// default profile's level when unknown.
func activityMultiplier(level string) float64 {
	if m, ok := activityMultipliers[level]; ok {
		return m
	}
	return activityMultipliers[defaultProfile.ActivityLevel]
}

// resolveBodyStats applies the fallback chain once: latest logged weight, then
// the profile's target weight, then defaultProfile. Age falls back when the
// date of birth is missing or gives an implausible age (outside 0–120).
func resolveBodyStats(p profile, latestWeight *weightEntry, today time.Time) bodyStats {
	stats := defaultProfile

	switch {
	case latestWeight != nil && latestWeight.WeightKG > 0:
		stats.WeightKG = latestWeight.WeightKG
	case p.TargetWeightKG != nil && *p.TargetWeightKG > 0:
		stats.WeightKG = *p.TargetWeightKG
	}
	if p.HeightCM != nil && *p.HeightCM > 0 {
		stats.HeightCM = *p.HeightCM
	}
	if p.ActivityLevel != nil {
		if _, ok := activityMultipliers[*p.ActivityLevel]; ok {
			stats.ActivityLevel = *p.ActivityLevel
		}
	}
	if p.Gender != nil {
		stats.Gender = *p.Gender
	}
	if p.DateOfBirth != nil && !p.DateOfBirth.IsZero() {
		if age := calculateAge(p.DateOfBirth.Time, today); age >= 0 && age <= 120 {
			stats.AgeYears = age
		}
	}
	return stats
}

// energyFor runs the BMR → TDEE → target chain. A profile-level
// target_calories, when set, replaces the computed target.
func energyFor(stats bodyStats, p profile) energy {
	bmr := calculateBMR(stats.WeightKG, stats.HeightCM, stats.AgeYears, stats.Gender)
	tdee := calculateTDEE(bmr, activityMultiplier(stats.ActivityLevel))
	goal := "maintain_weight"
	if p.Goal != nil {
		goal = *p.Goal
	}
	target := calculateCalorieTarget(tdee, goal)
	if p.TargetCalories != nil && *p.TargetCalories > 0 {
		target = *p.TargetCalories
	}
	return energy{BMR: bmr, TDEE: tdee, Target: target}
}

// populateComputedEnergy fills the computed-only fields on p.
func populateComputedEnergy(p *profile, latestWeight *weightEntry, today time.Time) {
	stats := resolveBodyStats(*p, latestWeight, today)
	e := energyFor(stats, *p)
	if p.DateOfBirth != nil && !p.DateOfBirth.IsZero() {
		age := calculateAge(p.DateOfBirth.Time, today)
		p.ComputedAge = &age
	}
	p.ComputedBMR = &e.BMR
	p.ComputedTDEE = &e.TDEE
	p.ComputedTarget = &e.Target
}

// startOfWeek returns the Monday of the week containing t, at midnight in t's
// location. AddDate handles month and year boundaries.
func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday()) // 0=Sun
	if weekday == 0 {
		weekday = 7 // treat Sunday as day 7 so Mon=1..Sun=7
	}
	return truncateDay(t.AddDate(0, 0, -(weekday - 1)))
}

// truncateDay drops the clock part of t, keeping its location.
func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
