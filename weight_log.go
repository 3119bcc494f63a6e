package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// weightRequest is the request body for POST /api/weights.
type weightRequest struct {
	Date       string   `json:"date" binding:"required,notfuture"`
	WeightKG   float64  `json:"weight_kg" binding:"required"`
	BodyFatPct *float64 `json:"body_fat_pct"`
	WaistCM    *float64 `json:"waist_cm"`
	HipsCM     *float64 `json:"hips_cm"`
	ChestCM    *float64 `json:"chest_cm"`
	Notes      *string  `json:"notes"`
}

func (r weightRequest) validate(now time.Time) error {
	if _, err := validateDate(r.Date, now); err != nil {
		return err
	}
	return firstError(
		validateWeight(r.WeightKG),
		validateBodyFat(r.BodyFatPct),
		validateMeasurement("waist_cm", r.WaistCM),
		validateMeasurement("hips_cm", r.HipsCM),
		validateMeasurement("chest_cm", r.ChestCM),
	)
}

// weightPatch is the request body for PUT /api/weights/:id.
type weightPatch struct {
	Date       *string  `json:"date" binding:"omitempty,notfuture"`
	WeightKG   *float64 `json:"weight_kg"`
	BodyFatPct *float64 `json:"body_fat_pct"`
	WaistCM    *float64 `json:"waist_cm"`
	HipsCM     *float64 `json:"hips_cm"`
	ChestCM    *float64 `json:"chest_cm"`
	Notes      *string  `json:"notes"`
}

func (r weightPatch) validate(now time.Time) error {
	if r.Date != nil {
		if _, err := validateDate(*r.Date, now); err != nil {
			return err
		}
	}
	if r.WeightKG != nil {
		if err := validateWeight(*r.WeightKG); err != nil {
			return err
		}
	}
	return firstError(
		validateBodyFat(r.BodyFatPct),
		validateMeasurement("waist_cm", r.WaistCM),
		validateMeasurement("hips_cm", r.HipsCM),
		validateMeasurement("chest_cm", r.ChestCM),
	)
}

// duplicateWeightMessage is shown when the (user, date) uniqueness constraint fires.
func duplicateWeightMessage(date string) string {
	return "a weight entry already exists for " + date
}

// getWeights returns weight entries within [start, end], oldest first.
// GET /api/weights?start=YYYY-MM-DD&end=YYYY-MM-DD (defaults to the last 90 days).
func (h *Handler) getWeights(c *gin.Context) {
	start, end, err := h.rangeOrDefault(c, 90)
	if badRequest(c, err) {
		return
	}

	entries, err := queryMany[weightEntry](h.db, c,
		`SELECT * FROM weight_entries
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date ASC`,
		pgx.NamedArgs{"userID": currentUserID(c), "start": formatDate(start), "end": formatDate(end)})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch weight log")
		return
	}

	c.JSON(http.StatusOK, entries)
}

// createWeightEntry inserts the weight entry for a date. A second entry for the
// same date is a conflict (409); the client edits the existing entry instead.
// POST /api/weights.
func (h *Handler) createWeightEntry(c *gin.Context) {
	var body weightRequest
	if !bindJSON(c, &body) {
		return
	}
	if badRequest(c, body.validate(h.today())) {
		return
	}

	entry, err := queryOne[weightEntry](h.db, c,
		`INSERT INTO weight_entries (user_id, date, weight_kg, body_fat_pct, waist_cm, hips_cm, chest_cm, notes)
		 VALUES (@userID, @date, @weightKG, @bodyFat, @waist, @hips, @chest, @notes)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": currentUserID(c), "date": body.Date, "weightKG": body.WeightKG,
			"bodyFat": body.BodyFatPct, "waist": body.WaistCM, "hips": body.HipsCM,
			"chest": body.ChestCM, "notes": body.Notes,
		})
	if err != nil {
		writeError(c, "createWeightEntry", err, writeMessages{
			conflict: duplicateWeightMessage(body.Date),
			failure:  "failed to create weight entry",
		})
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// updateWeightEntry partially updates an existing weight entry.
// PUT /api/weights/:id. Moving an entry onto a date that already has one is a 409.
func (h *Handler) updateWeightEntry(c *gin.Context) {
	var body weightPatch
	if !bindJSON(c, &body) {
		return
	}
	if badRequest(c, body.validate(h.today())) {
		return
	}

	entry, err := queryOne[weightEntry](h.db, c,
		`UPDATE weight_entries SET
			date         = COALESCE(@date, date),
			weight_kg    = COALESCE(@weightKG, weight_kg),
			body_fat_pct = COALESCE(@bodyFat, body_fat_pct),
			waist_cm     = COALESCE(@waist, waist_cm),
			hips_cm      = COALESCE(@hips, hips_cm),
			chest_cm     = COALESCE(@chest, chest_cm),
			notes        = COALESCE(@notes, notes),
			updated_at   = now()
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{
			"id": c.Param("id"), "userID": currentUserID(c),
			"date": body.Date, "weightKG": body.WeightKG, "bodyFat": body.BodyFatPct,
			"waist": body.WaistCM, "hips": body.HipsCM, "chest": body.ChestCM, "notes": body.Notes,
		})
	if err != nil {
		conflict := "a weight entry already exists for that date"
		if body.Date != nil {
			conflict = duplicateWeightMessage(*body.Date)
		}
		writeError(c, "updateWeightEntry", err, writeMessages{
			notFound: "weight entry not found",
			conflict: conflict,
			failure:  "failed to update weight entry",
		})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// deleteWeightEntry removes a weight entry by ID.
// DELETE /api/weights/:id. Returns 204 on success, 404 if not found.
func (h *Handler) deleteWeightEntry(c *gin.Context) {
	h.deleteOwned(c, "weight_entries", "weight entry not found")
}
