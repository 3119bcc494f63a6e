package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// errValidation wraps every user-input range or shape failure. Handlers map it to 400.
var errValidation = errors.New("invalid input")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errValidation, fmt.Sprintf(format, args...))
}

// firstError returns the first non-nil error.
func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

var validMealTypes = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"dinner":    true,
	"snack":     true,
}

// distanceWorkoutTypes are the workout types that may carry a distance.
var distanceWorkoutTypes = map[string]bool{
	"cardio":   true,
	"walking":  true,
	"cycling":  true,
	"swimming": true,
}

var validMoods = map[string]bool{
	"great":    true,
	"good":     true,
	"okay":     true,
	"bad":      true,
	"terrible": true,
}

var validGenders = map[string]bool{
	"male":   true,
	"female": true,
	"other":  true,
}

var validThemes = map[string]bool{
	"light":  true,
	"dark":   true,
	"system": true,
}

// parseDate parses a YYYY-MM-DD string as a calendar date in loc.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, invalidf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// validateDate parses s and rejects any date strictly after today. Today and
// every past date are accepted; the boundary is the end of today in now's location.
func validateDate(s string, now time.Time) (time.Time, error) {
	d, err := parseDate(s, now.Location())
	if err != nil {
		return time.Time{}, err
	}
	if civilDay(d).After(civilDay(now)) {
		return time.Time{}, invalidf("date cannot be in the future")
	}
	return d, nil
}

// validateDateRange parses start/end and requires start <= end.
func validateDateRange(start, end string, loc *time.Location) (time.Time, time.Time, error) {
	if start == "" || end == "" {
		return time.Time{}, time.Time{}, invalidf("start and end query params are required")
	}
	s, err := parseDate(start, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	e, err := parseDate(end, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if s.After(e) {
		return time.Time{}, time.Time{}, invalidf("start must not be after end")
	}
	return s, e, nil
}

func validateWeight(kg float64) error {
	if kg <= 0 || kg >= 500 {
		return invalidf("weight_kg must be greater than 0 and less than 500")
	}
	return nil
}

func validateBodyFat(pct *float64) error {
	if pct != nil && (*pct < 0 || *pct > 100) {
		return invalidf("body_fat_pct must be between 0 and 100")
	}
	return nil
}

// validateMeasurement checks an optional body measurement in centimetres.
func validateMeasurement(field string, cm *float64) error {
	if cm != nil && (*cm <= 0 || *cm >= 500) {
		return invalidf("%s must be greater than 0 and less than 500", field)
	}
	return nil
}

func validateCalories(kcal int) error {
	if kcal < 0 || kcal > 10000 {
		return invalidf("calories must be between 0 and 10000")
	}
	return nil
}

func validateDuration(minutes int) error {
	if minutes <= 0 || minutes >= 1440 {
		return invalidf("duration_minutes must be greater than 0 and less than 1440")
	}
	return nil
}

func validateDistance(km *float64) error {
	if km != nil && (*km <= 0 || *km >= 1000) {
		return invalidf("distance_km must be greater than 0 and less than 1000")
	}
	return nil
}

func validateMacro(field string, grams *float64) error {
	if grams != nil && *grams < 0 {
		return invalidf("%s must not be negative", field)
	}
	return nil
}

func validateMealType(t string) error {
	if !validMealTypes[t] {
		return invalidf("meal_type must be one of: breakfast, lunch, dinner, snack")
	}
	return nil
}

func validateWorkoutType(t string) error {
	if _, ok := metValues[t]; !ok {
		return invalidf("type must be one of: cardio, strength, hiit, yoga, sports, walking, cycling, swimming, other")
	}
	return nil
}

// validateWorkoutDistance only allows a distance on distance-bearing types.
func validateWorkoutDistance(workoutType string, km *float64) error {
	if km == nil {
		return nil
	}
	if !distanceWorkoutTypes[workoutType] {
		return invalidf("distance_km is only allowed for cardio, walking, cycling and swimming")
	}
	return validateDistance(km)
}

func validateMood(m string) error {
	if !validMoods[m] {
		return invalidf("mood must be one of: great, good, okay, bad, terrible")
	}
	return nil
}

func validateEnergyLevel(level int) error {
	if level < 1 || level > 5 {
		return invalidf("energy_level must be between 1 and 5")
	}
	return nil
}

func validateHabitTarget(target float64) error {
	if target < 1 {
		return invalidf("target_value must be at least 1")
	}
	return nil
}

func validateHabitValue(v float64) error {
	if v < 0 {
		return invalidf("value must not be negative")
	}
	return nil
}

func validateHeight(cm *float64) error {
	if cm != nil && (*cm <= 0 || *cm >= 300) {
		return invalidf("height_cm must be greater than 0 and less than 300")
	}
	return nil
}

func validateActivityLevel(level *string) error {
	if level == nil {
		return nil
	}
	if _, ok := activityMultipliers[*level]; !ok {
		return invalidf("activity_level must be one of: sedentary, light, moderate, active, very_active")
	}
	return nil
}

func validateGoal(goal *string) error {
	if goal == nil {
		return nil
	}
	if _, ok := goalAdjustments[*goal]; !ok {
		return invalidf("goal must be one of: lose_weight, maintain_weight, gain_weight")
	}
	return nil
}

func validateGender(g *string) error {
	if g != nil && !validGenders[*g] {
		return invalidf("gender must be one of: male, female, other")
	}
	return nil
}

func validateTheme(theme string) error {
	if !validThemes[theme] {
		return invalidf("theme must be one of: light, dark, system")
	}
	return nil
}

/* ─── Binding-tag validators ─────────────────────────────────────────── */

// clockKey carries the handler's "today" func on a request context.
type clockKey struct{}

func withClock(ctx context.Context, now func() time.Time) context.Context {
	return context.WithValue(ctx, clockKey{}, now)
}

func clockFrom(ctx context.Context) func() time.Time {
	if now, ok := ctx.Value(clockKey{}).(func() time.Time); ok {
		return now
	}
	return time.Now
}

// bodyValidator checks request bodies against their `binding` tags. It is
// built once per process; the notfuture tag takes "today" from the context
// passed to StructCtx, so handlers with different clocks never share one.
// Building it also clears gin's own validator, leaving ShouldBindJSON to decode only.
var bodyValidator = sync.OnceValue(func() *validator.Validate {
	binding.Validator = nil
	v := validator.New()
	v.SetTagName("binding")
	if err := v.RegisterValidationCtx("notfuture", notFuture); err != nil {
		panic(err)
	}
	return v
})

// notFuture accepts empty strings and YYYY-MM-DD dates up to today.
func notFuture(ctx context.Context, fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := validateDate(s, clockFrom(ctx)())
	return err == nil
}

// bindingErrorMessage turns a ShouldBindJSON failure into a short client message.
func bindingErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := toSnake(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "notfuture":
			msgs = append(msgs, field+" cannot be in the future")
		case "datetime":
			msgs = append(msgs, field+" must be a YYYY-MM-DD date")
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}

// toSnake converts a Go field name like "DurationMinutes" to "duration_minutes".
func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
