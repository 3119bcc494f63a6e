package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// habitRequest is the body for POST /api/habits and PUT /api/habits/:id.
type habitRequest struct {
	Name        string  `json:"name" binding:"required"`
	TargetValue float64 `json:"target_value"`
	Unit        *string `json:"unit"`
	IsActive    *bool   `json:"is_active"`
}

func (r habitRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return invalidf("name is required")
	}
	return validateHabitTarget(r.TargetValue)
}

// habitLogRequest is the body for POST /api/habits/:id/logs.
type habitLogRequest struct {
	Date  string  `json:"date" binding:"omitempty,notfuture"`
	Value float64 `json:"value"`
}

// habitWithStats is one row of GET /api/habits.
type habitWithStats struct {
	habit
	Stats habitStats `json:"stats"`
}

var habitLogMessages = writeMessages{
	notFound: "habit log not found",
	conflict: "this habit is already logged for that date",
	failure:  "failed to save habit log",
}

// loadHabit fetches a habit owned by the user.
func (h *Handler) loadHabit(ctx context.Context, userID int, id string) (habit, error) {
	return queryOne[habit](h.db, ctx,
		"SELECT * FROM habits WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
}

// groupLogsByHabit buckets logs by habit id.
func groupLogsByHabit(logs []habitLog) map[int][]habitLog {
	byHabit := make(map[int][]habitLog)
	for _, l := range logs {
		byHabit[l.HabitID] = append(byHabit[l.HabitID], l)
	}
	return byHabit
}

// attachStats pairs each habit with its streak and completion stats.
func attachStats(habits []habit, logs []habitLog, today time.Time, rule streakRule) []habitWithStats {
	byHabit := groupLogsByHabit(logs)
	out := make([]habitWithStats, len(habits))
	for i, hb := range habits {
		out[i] = habitWithStats{habit: hb, Stats: computeHabitStats(byHabit[hb.ID], today, rule)}
	}
	return out
}

// getHabits returns the user's habits, each with current/longest streak and
// trailing 7-day completion rate.
// GET /api/habits?active=true&rule=any|completed.
func (h *Handler) getHabits(c *gin.Context) {
	userID := currentUserID(c)
	activeOnly := c.Query("active") == "true"

	habits, err := queryMany[habit](h.db, c,
		`SELECT * FROM habits
		 WHERE user_id = @userID AND (NOT @activeOnly OR is_active)
		 ORDER BY created_at`,
		pgx.NamedArgs{"userID": userID, "activeOnly": activeOnly})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch habits")
		return
	}
	logs, err := queryMany[habitLog](h.db, c,
		"SELECT * FROM habit_logs WHERE user_id = @userID ORDER BY date",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch habit logs")
		return
	}

	c.JSON(http.StatusOK, attachStats(habits, logs, h.today(), parseStreakRule(c.Query("rule"))))
}

// createHabit inserts a habit definition. POST /api/habits.
func (h *Handler) createHabit(c *gin.Context) {
	var body habitRequest
	if !bindJSON(c, &body) {
		return
	}
	if badRequest(c, body.validate()) {
		return
	}
	active := true
	if body.IsActive != nil {
		active = *body.IsActive
	}

	hb, err := queryOne[habit](h.db, c,
		`INSERT INTO habits (user_id, name, target_value, unit, is_active)
		 VALUES (@userID, @name, @target, @unit, @active)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": currentUserID(c), "name": strings.TrimSpace(body.Name),
			"target": body.TargetValue, "unit": body.Unit, "active": active,
		})
	if err != nil {
		writeError(c, "createHabit", err, writeMessages{failure: "failed to create habit"})
		return
	}

	c.JSON(http.StatusCreated, hb)
}

// updateHabit replaces a habit's definition. Changing the target re-derives
// completed on every existing log in the same transaction.
// PUT /api/habits/:id.
func (h *Handler) updateHabit(c *gin.Context) {
	var body habitRequest
	if !bindJSON(c, &body) {
		return
	}
	if badRequest(c, body.validate()) {
		return
	}
	userID := currentUserID(c)
	msgs := writeMessages{notFound: "habit not found", failure: "failed to update habit"}

	var updated habit
	err := pgx.BeginFunc(c, h.db, func(tx pgx.Tx) error {
		rows, err := tx.Query(c,
			`UPDATE habits SET
				name         = @name,
				target_value = @target,
				unit         = @unit,
				is_active    = COALESCE(@active, is_active)
			 WHERE id = @id AND user_id = @userID
			 RETURNING *`,
			pgx.NamedArgs{
				"id": c.Param("id"), "userID": userID, "name": strings.TrimSpace(body.Name),
				"target": body.TargetValue, "unit": body.Unit, "active": body.IsActive,
			})
		if err != nil {
			return err
		}
		updated, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[habit])
		if err != nil {
			return err
		}
		_, err = tx.Exec(c,
			"UPDATE habit_logs SET completed = value >= @target WHERE habit_id = @id",
			pgx.NamedArgs{"target": updated.TargetValue, "id": updated.ID})
		return err
	})
	if err != nil {
		writeError(c, "updateHabit", err, msgs)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// deleteHabit removes a habit; its logs go with it (ON DELETE CASCADE).
// DELETE /api/habits/:id.
func (h *Handler) deleteHabit(c *gin.Context) {
	h.deleteOwned(c, "habits", "habit not found")
}

// getHabitLogs returns a habit's logs within [start, end] (default last 30 days).
// GET /api/habits/:id/logs?start=&end=.
func (h *Handler) getHabitLogs(c *gin.Context) {
	start, end, err := h.rangeOrDefault(c, 30)
	if badRequest(c, err) {
		return
	}

	logs, err := queryMany[habitLog](h.db, c,
		`SELECT * FROM habit_logs
		 WHERE habit_id = @habitID AND user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date ASC`,
		pgx.NamedArgs{
			"habitID": c.Param("id"), "userID": currentUserID(c),
			"start": formatDate(start), "end": formatDate(end),
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch habit logs")
		return
	}

	c.JSON(http.StatusOK, logs)
}

// createHabitLog records a habit's value for a date. completed is derived from
// the habit's target. A second log for the same date is a 409.
// POST /api/habits/:id/logs.
func (h *Handler) createHabitLog(c *gin.Context) {
	var body habitLogRequest
	if !bindJSON(c, &body) {
		return
	}
	today := h.today()
	if body.Date == "" {
		body.Date = formatDate(today)
	}
	if _, err := validateDate(body.Date, today); badRequest(c, err) {
		return
	}
	if badRequest(c, validateHabitValue(body.Value)) {
		return
	}

	userID := currentUserID(c)
	hb, err := h.loadHabit(c, userID, c.Param("id"))
	if err != nil {
		writeError(c, "createHabitLog", err, writeMessages{notFound: "habit not found", failure: "failed to save habit log"})
		return
	}

	l, err := queryOne[habitLog](h.db, c,
		`INSERT INTO habit_logs (user_id, habit_id, date, value, completed)
		 VALUES (@userID, @habitID, @date, @value, @completed)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": userID, "habitID": hb.ID, "date": body.Date,
			"value": body.Value, "completed": isCompleted(body.Value, hb.TargetValue),
		})
	if err != nil {
		writeError(c, "createHabitLog", err, habitLogMessages)
		return
	}

	c.JSON(http.StatusCreated, l)
}

// updateHabitLog changes a log's value and re-derives completed.
// PUT /api/habit-logs/:id. Body: { "value": 3 }.
func (h *Handler) updateHabitLog(c *gin.Context) {
	var body struct {
		Value *float64 `json:"value" binding:"required"`
	}
	if !bindJSON(c, &body) {
		return
	}
	if badRequest(c, validateHabitValue(*body.Value)) {
		return
	}

	l, err := queryOne[habitLog](h.db, c,
		`UPDATE habit_logs hl SET
			value      = @value,
			completed  = @value >= hb.target_value,
			updated_at = now()
		 FROM habits hb
		 WHERE hl.id = @id AND hl.user_id = @userID AND hb.id = hl.habit_id
		 RETURNING hl.*`,
		pgx.NamedArgs{"id": c.Param("id"), "userID": currentUserID(c), "value": *body.Value})
	if err != nil {
		writeError(c, "updateHabitLog", err, habitLogMessages)
		return
	}

	c.JSON(http.StatusOK, l)
}

// deleteHabitLog removes one day's log. DELETE /api/habit-logs/:id.
func (h *Handler) deleteHabitLog(c *gin.Context) {
	h.deleteOwned(c, "habit_logs", "habit log not found")
}

// getHabitStats returns streaks and completion for one habit.
// GET /api/habits/:id/stats?rule=any|completed.
func (h *Handler) getHabitStats(c *gin.Context) {
	userID := currentUserID(c)
	hb, err := h.loadHabit(c, userID, c.Param("id"))
	if err != nil {
		writeError(c, "getHabitStats", err, writeMessages{notFound: "habit not found", failure: "failed to fetch habit"})
		return
	}
	logs, err := queryMany[habitLog](h.db, c,
		"SELECT * FROM habit_logs WHERE habit_id = @habitID ORDER BY date",
		pgx.NamedArgs{"habitID": hb.ID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch habit logs")
		return
	}

	c.JSON(http.StatusOK, habitWithStats{
		habit: hb,
		Stats: computeHabitStats(logs, h.today(), parseStreakRule(c.Query("rule"))),
	})
}
