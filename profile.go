package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// patchProfileRequest is the request body for PATCH /api/profile.
// All fields are pointers; only non-nil fields get written.
type patchProfileRequest struct {
	Gender         *string  `json:"gender"`
	DateOfBirth    *string  `json:"date_of_birth" binding:"omitempty,notfuture"` // YYYY-MM-DD
	HeightCM       *float64 `json:"height_cm"`
	TargetCalories *int     `json:"target_calories"`
	ActivityLevel  *string  `json:"activity_level"`
	Goal           *string  `json:"goal"`
	TargetWeightKG *float64 `json:"target_weight_kg"`
}

func (r patchProfileRequest) validate(now time.Time) error {
	if err := firstError(
		validateGender(r.Gender),
		validateHeight(r.HeightCM),
		validateActivityLevel(r.ActivityLevel),
		validateGoal(r.Goal),
	); err != nil {
		return err
	}
	if r.DateOfBirth != nil {
		dob, err := validateDate(*r.DateOfBirth, now)
		if err != nil {
			return err
		}
		if age := calculateAge(dob, now); age > 120 {
			return invalidf("date_of_birth gives an age over 120")
		}
	}
	if r.TargetCalories != nil {
		if err := validateCalories(*r.TargetCalories); err != nil {
			return invalidf("target_calories must be between 0 and 10000")
		}
	}
	if r.TargetWeightKG != nil {
		if err := validateWeight(*r.TargetWeightKG); err != nil {
			return invalidf("target_weight_kg must be greater than 0 and less than 500")
		}
	}
	return nil
}

// loadProfile returns the user's profile, or an empty one if no row exists yet.
func (h *Handler) loadProfile(ctx context.Context, userID int) (profile, error) {
	p, err := queryOne[profile](h.db, ctx,
		"SELECT * FROM profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if errors.Is(err, pgx.ErrNoRows) {
		return profile{UserID: userID}, nil
	}
	return p, err
}

// latestWeightOnOrBefore returns the newest weight entry dated on or before day,
// or nil when the user has none.
func (h *Handler) latestWeightOnOrBefore(ctx context.Context, userID int, day time.Time) (*weightEntry, error) {
	w, err := queryOne[weightEntry](h.db, ctx,
		`SELECT * FROM weight_entries
		 WHERE user_id = @userID AND date <= @day
		 ORDER BY date DESC LIMIT 1`,
		pgx.NamedArgs{"userID": userID, "day": formatDate(day)})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// getProfile returns the profile with computed age, BMR, TDEE and target.
// GET /api/profile.
func (h *Handler) getProfile(c *gin.Context) {
	userID := currentUserID(c)
	today := h.today()

	p, err := h.loadProfile(c, userID)
	if err != nil {
		writeError(c, "getProfile", err, writeMessages{failure: "failed to fetch profile"})
		return
	}
	latest, err := h.latestWeightOnOrBefore(c, userID, today)
	if err != nil {
		writeError(c, "getProfile", err, writeMessages{failure: "failed to fetch profile"})
		return
	}

	populateComputedEnergy(&p, latest, today)
	c.JSON(http.StatusOK, p)
}

// patchProfile updates only the provided profile fields, creating the row on
// first write. Unknown activity levels or goals are rejected up front because
// they would silently disable the calorie target.
// PATCH /api/profile.
func (h *Handler) patchProfile(c *gin.Context) {
	userID := currentUserID(c)
	today := h.today()

	var body patchProfileRequest
	if !bindJSON(c, &body) {
		return
	}
	if badRequest(c, body.validate(today)) {
		return
	}

	// Build the column list dynamically: only fields the client actually sent.
	cols := []string{}
	args := pgx.NamedArgs{"userID": userID}
	set := func(col string, v any) {
		cols = append(cols, col)
		args[col] = v
	}
	if body.Gender != nil {
		set("gender", *body.Gender)
	}
	if body.DateOfBirth != nil {
		set("date_of_birth", *body.DateOfBirth)
	}
	if body.HeightCM != nil {
		set("height_cm", *body.HeightCM)
	}
	if body.TargetCalories != nil {
		set("target_calories", *body.TargetCalories)
	}
	if body.ActivityLevel != nil {
		set("activity_level", *body.ActivityLevel)
	}
	if body.Goal != nil {
		set("goal", *body.Goal)
	}
	if body.TargetWeightKG != nil {
		set("target_weight_kg", *body.TargetWeightKG)
	}

	if len(cols) == 0 {
		apiError(c, http.StatusBadRequest, "no fields to update")
		return
	}

	placeholders := make([]string, len(cols))
	updates := make([]string, len(cols))
	for i, col := range cols {
		placeholders[i] = "@" + col
		updates[i] = col + " = EXCLUDED." + col
	}
	query := "INSERT INTO profiles (user_id, " + strings.Join(cols, ", ") + ")" +
		" VALUES (@userID, " + strings.Join(placeholders, ", ") + ")" +
		" ON CONFLICT (user_id) DO UPDATE SET " + strings.Join(updates, ", ") +
		" RETURNING *"

	p, err := queryOne[profile](h.db, c, query, args)
	if err != nil {
		writeError(c, "patchProfile", err, writeMessages{failure: "failed to update profile"})
		return
	}

	latest, err := h.latestWeightOnOrBefore(c, userID, today)
	if err != nil {
		writeError(c, "patchProfile", err, writeMessages{failure: "failed to update profile"})
		return
	}
	populateComputedEnergy(&p, latest, today)

	c.JSON(http.StatusOK, p)
}
