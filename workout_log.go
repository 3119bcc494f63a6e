package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// workoutRequest is the request body for POST /api/workouts. CaloriesBurned is
// optional; when omitted it is estimated from MET × body weight × duration.
type workoutRequest struct {
	Date            string   `json:"date" binding:"omitempty,notfuture"`
	Type            string   `json:"type" binding:"required"`
	Name            *string  `json:"name"`
	DurationMinutes int      `json:"duration_minutes" binding:"required"`
	DistanceKM      *float64 `json:"distance_km"`
	CaloriesBurned  *int     `json:"calories_burned"`
	Notes           *string  `json:"notes"`
}

func (r workoutRequest) validate(now time.Time) error {
	if r.Date != "" {
		if _, err := validateDate(r.Date, now); err != nil {
			return err
		}
	}
	if err := firstError(
		validateWorkoutType(r.Type),
		validateDuration(r.DurationMinutes),
		validateWorkoutDistance(r.Type, r.DistanceKM),
	); err != nil {
		return err
	}
	if r.CaloriesBurned != nil {
		return validateCalories(*r.CaloriesBurned)
	}
	return nil
}

// workoutPatch is the request body for PUT /api/workouts/:id.
type workoutPatch struct {
	Date            *string  `json:"date" binding:"omitempty,notfuture"`
	Type            *string  `json:"type"`
	Name            *string  `json:"name"`
	DurationMinutes *int     `json:"duration_minutes"`
	DistanceKM      *float64 `json:"distance_km"`
	CaloriesBurned  *int     `json:"calories_burned"`
	Notes           *string  `json:"notes"`
}

// mergedType is the workout type after the patch is applied.
func (r workoutPatch) mergedType(current workoutEntry) string {
	if r.Type != nil {
		return *r.Type
	}
	return current.Type
}

// clearsDistance reports whether the patch moves a workout with a stored
// distance to a type without one. The stored distance is then dropped.
func (r workoutPatch) clearsDistance(current workoutEntry) bool {
	return r.DistanceKM == nil && current.DistanceKM != nil && !distanceWorkoutTypes[r.mergedType(current)]
}

// validate checks the patch merged over the current row. A stored distance
// that the new type does not allow is cleared rather than rejected.
func (r workoutPatch) validate(current workoutEntry, now time.Time) error {
	if r.Date != nil {
		if _, err := validateDate(*r.Date, now); err != nil {
			return err
		}
	}
	merged := workoutRequest{
		Type:            r.mergedType(current),
		DurationMinutes: current.DurationMinutes,
		DistanceKM:      current.DistanceKM,
		CaloriesBurned:  r.CaloriesBurned,
	}
	if r.clearsDistance(current) {
		merged.DistanceKM = nil
	}
	if r.DurationMinutes != nil {
		merged.DurationMinutes = *r.DurationMinutes
	}
	if r.DistanceKM != nil {
		merged.DistanceKM = r.DistanceKM
	}
	return merged.validate(now)
}

// getWorkouts returns workouts within [start, end], defaulting to the last 30 days.
// GET /api/workouts?start=YYYY-MM-DD&end=YYYY-MM-DD.
func (h *Handler) getWorkouts(c *gin.Context) {
	start, end, err := h.rangeOrDefault(c, 30)
	if badRequest(c, err) {
		return
	}

	workouts, err := queryMany[workoutEntry](h.db, c,
		`SELECT * FROM workout_entries
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date DESC, created_at DESC`,
		pgx.NamedArgs{"userID": currentUserID(c), "start": formatDate(start), "end": formatDate(end)})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch workouts")
		return
	}

	c.JSON(http.StatusOK, workouts)
}

// estimateBurn returns a MET-based estimate using the user's body weight as of
// the workout date (with the default-profile fallback chain).
func (h *Handler) estimateBurn(c *gin.Context, workoutType string, minutes int, date time.Time) (int, error) {
	userID := currentUserID(c)
	p, err := h.loadProfile(c, userID)
	if err != nil {
		return 0, err
	}
	latest, err := h.latestWeightOnOrBefore(c, userID, date)
	if err != nil {
		return 0, err
	}
	stats := resolveBodyStats(p, latest, date)
	return calculateCaloriesBurned(workoutType, minutes, stats.WeightKG), nil
}

// createWorkout inserts a workout, estimating calories when not supplied.
// POST /api/workouts.
func (h *Handler) createWorkout(c *gin.Context) {
	var body workoutRequest
	if !bindJSON(c, &body) {
		return
	}
	if badRequest(c, body.validate(h.today())) {
		return
	}
	date := truncateDay(h.today())
	if body.Date != "" {
		date, _ = parseDate(body.Date, h.location())
	}

	calories := body.CaloriesBurned
	if calories == nil {
		est, err := h.estimateBurn(c, body.Type, body.DurationMinutes, date)
		if err != nil {
			writeError(c, "createWorkout", err, writeMessages{failure: "failed to create workout"})
			return
		}
		calories = &est
	}

	w, err := queryOne[workoutEntry](h.db, c,
		`INSERT INTO workout_entries (user_id, date, type, name, duration_minutes, distance_km, calories_burned, notes)
		 VALUES (@userID, @date, @type, @name, @duration, @distance, @calories, @notes)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": currentUserID(c), "date": formatDate(date), "type": body.Type,
			"name": body.Name, "duration": body.DurationMinutes, "distance": body.DistanceKM,
			"calories": calories, "notes": body.Notes,
		})
	if err != nil {
		writeError(c, "createWorkout", err, writeMessages{failure: "failed to create workout"})
		return
	}

	c.JSON(http.StatusCreated, w)
}

// updateWorkout partially updates a workout. When type or duration change and
// no calories are supplied, the estimate is recomputed.
// PUT /api/workouts/:id.
func (h *Handler) updateWorkout(c *gin.Context) {
	var body workoutPatch
	if !bindJSON(c, &body) {
		return
	}
	if body.Date != nil {
		if _, err := validateDate(*body.Date, h.today()); badRequest(c, err) {
			return
		}
	}

	userID := currentUserID(c)
	msgs := writeMessages{notFound: "workout not found", failure: "failed to update workout"}
	current, err := queryOne[workoutEntry](h.db, c,
		"SELECT * FROM workout_entries WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": c.Param("id"), "userID": userID})
	if err != nil {
		writeError(c, "updateWorkout", err, msgs)
		return
	}
	if badRequest(c, body.validate(current, h.today())) {
		return
	}

	calories := body.CaloriesBurned
	if calories == nil && (body.Type != nil || body.DurationMinutes != nil) {
		workoutType, minutes, date := current.Type, current.DurationMinutes, current.Date.Time
		if body.Type != nil {
			workoutType = *body.Type
		}
		if body.DurationMinutes != nil {
			minutes = *body.DurationMinutes
		}
		if body.Date != nil {
			date, _ = parseDate(*body.Date, h.location())
		}
		est, err := h.estimateBurn(c, workoutType, minutes, date)
		if err != nil {
			writeError(c, "updateWorkout", err, msgs)
			return
		}
		calories = &est
	}

	w, err := queryOne[workoutEntry](h.db, c,
		`UPDATE workout_entries SET
			date             = COALESCE(@date, date),
			type             = COALESCE(@type, type),
			name             = COALESCE(@name, name),
			duration_minutes = COALESCE(@duration, duration_minutes),
			distance_km      = CASE WHEN @clearDistance THEN NULL ELSE COALESCE(@distance, distance_km) END,
			calories_burned  = COALESCE(@calories, calories_burned),
			notes            = COALESCE(@notes, notes),
			updated_at       = now()
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{
			"id": c.Param("id"), "userID": userID,
			"date": body.Date, "type": body.Type, "name": body.Name,
			"duration": body.DurationMinutes, "distance": body.DistanceKM,
			"calories": calories, "notes": body.Notes, "clearDistance": body.clearsDistance(current),
		})
	if err != nil {
		writeError(c, "updateWorkout", err, msgs)
		return
	}

	c.JSON(http.StatusOK, w)
}

// deleteWorkout removes a workout. DELETE /api/workouts/:id.
func (h *Handler) deleteWorkout(c *gin.Context) {
	h.deleteOwned(c, "workout_entries", "workout not found")
}
