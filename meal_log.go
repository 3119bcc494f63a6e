package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// mealRequest is the request body for POST /api/meals.
type mealRequest struct {
	Date     string   `json:"date" binding:"omitempty,notfuture"`
	MealType string   `json:"meal_type" binding:"required"`
	Name     string   `json:"name" binding:"required"`
	Calories int      `json:"calories"`
	ProteinG *float64 `json:"protein_g"`
	CarbsG   *float64 `json:"carbs_g"`
	FatG     *float64 `json:"fat_g"`
}

func (r mealRequest) validate(now time.Time) error {
	if r.Date != "" {
		if _, err := validateDate(r.Date, now); err != nil {
			return err
		}
	}
	if strings.TrimSpace(r.Name) == "" {
		return invalidf("name is required")
	}
	return firstError(
		validateMealType(r.MealType),
		validateCalories(r.Calories),
		validateMacro("protein_g", r.ProteinG),
		validateMacro("carbs_g", r.CarbsG),
		validateMacro("fat_g", r.FatG),
	)
}

// mealPatch is the request body for PUT /api/meals/:id; omitted fields keep
// their current value.
type mealPatch struct {
	Date     *string  `json:"date" binding:"omitempty,notfuture"`
	MealType *string  `json:"meal_type"`
	Name     *string  `json:"name"`
	Calories *int     `json:"calories"`
	ProteinG *float64 `json:"protein_g"`
	CarbsG   *float64 `json:"carbs_g"`
	FatG     *float64 `json:"fat_g"`
}

func (r mealPatch) validate(now time.Time) error {
	if r.Date != nil {
		if _, err := validateDate(*r.Date, now); err != nil {
			return err
		}
	}
	if r.MealType != nil {
		if err := validateMealType(*r.MealType); err != nil {
			return err
		}
	}
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return invalidf("name must not be empty")
	}
	if r.Calories != nil {
		if err := validateCalories(*r.Calories); err != nil {
			return err
		}
	}
	return firstError(
		validateMacro("protein_g", r.ProteinG),
		validateMacro("carbs_g", r.CarbsG),
		validateMacro("fat_g", r.FatG),
	)
}

// mealDay is the response shape for GET /api/meals.
type mealDay struct {
	Date     string         `json:"date"`
	Items    []mealEntry    `json:"items"`
	ByType   map[string]int `json:"calories_by_meal_type"`
	Calories int            `json:"calories"`
	ProteinG float64        `json:"protein_g"`
	CarbsG   float64        `json:"carbs_g"`
	FatG     float64        `json:"fat_g"`
}

// getMeals returns one day's meal entries with totals.
// GET /api/meals?date=YYYY-MM-DD (defaults to today).
func (h *Handler) getMeals(c *gin.Context) {
	userID := currentUserID(c)
	date, err := h.dateOrToday(c.Query("date"))
	if badRequest(c, err) {
		return
	}

	items, err := queryMany[mealEntry](h.db, c,
		`SELECT * FROM meal_entries
		 WHERE user_id = @userID AND date = @date
		 ORDER BY created_at`,
		pgx.NamedArgs{"userID": userID, "date": formatDate(date)})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch meals")
		return
	}

	summary := summarizeDay(date, items, nil)
	byType := map[string]int{"breakfast": 0, "lunch": 0, "dinner": 0, "snack": 0}
	for _, m := range items {
		byType[m.MealType] += m.Calories
	}

	c.JSON(http.StatusOK, mealDay{
		Date:     formatDate(date),
		Items:    items,
		ByType:   byType,
		Calories: summary.CaloriesConsumed,
		ProteinG: summary.ProteinG,
		CarbsG:   summary.CarbsG,
		FatG:     summary.FatG,
	})
}

// getEarliestMealDate returns the earliest date the user logged a meal, used
// by clients to compute an "All Time" range start.
// GET /api/meals/earliest-date. Returns { "date": "YYYY-MM-DD" } or { "date": null }.
func (h *Handler) getEarliestMealDate(c *gin.Context) {
	var date *string
	err := h.db.QueryRow(c,
		`SELECT TO_CHAR(MIN(date), 'YYYY-MM-DD') FROM meal_entries WHERE user_id = @userID`,
		pgx.NamedArgs{"userID": currentUserID(c)}).Scan(&date)
	if err != nil {
		writeError(c, "getEarliestMealDate", err, writeMessages{failure: "failed to fetch earliest date"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"date": date})
}

// createMeal inserts a meal entry. Defaults date to today if omitted.
// POST /api/meals.
func (h *Handler) createMeal(c *gin.Context) {
	var body mealRequest
	if !bindJSON(c, &body) {
		return
	}
	if badRequest(c, body.validate(h.today())) {
		return
	}
	if body.Date == "" {
		body.Date = formatDate(h.today())
	}

	item, err := queryOne[mealEntry](h.db, c,
		`INSERT INTO meal_entries (user_id, date, meal_type, name, calories, protein_g, carbs_g, fat_g)
		 VALUES (@userID, @date, @mealType, @name, @calories, @proteinG, @carbsG, @fatG)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": currentUserID(c), "date": body.Date, "mealType": body.MealType,
			"name": strings.TrimSpace(body.Name), "calories": body.Calories,
			"proteinG": body.ProteinG, "carbsG": body.CarbsG, "fatG": body.FatG,
		})
	if err != nil {
		writeError(c, "createMeal", err, writeMessages{failure: "failed to create meal"})
		return
	}

	c.JSON(http.StatusCreated, item)
}

// updateMeal partially updates a meal entry.
// PUT /api/meals/:id. Uses COALESCE so omitted fields keep their current value.
func (h *Handler) updateMeal(c *gin.Context) {
	var body mealPatch
	if !bindJSON(c, &body) {
		return
	}
	if badRequest(c, body.validate(h.today())) {
		return
	}

	item, err := queryOne[mealEntry](h.db, c,
		`UPDATE meal_entries SET
			date      = COALESCE(@date, date),
			meal_type = COALESCE(@mealType, meal_type),
			name      = COALESCE(@name, name),
			calories  = COALESCE(@calories, calories),
			protein_g = COALESCE(@proteinG, protein_g),
			carbs_g   = COALESCE(@carbsG, carbs_g),
			fat_g     = COALESCE(@fatG, fat_g),
			updated_at = now()
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{
			"id": c.Param("id"), "userID": currentUserID(c),
			"date": body.Date, "mealType": body.MealType, "name": body.Name,
			"calories": body.Calories, "proteinG": body.ProteinG,
			"carbsG": body.CarbsG, "fatG": body.FatG,
		})
	if err != nil {
		writeError(c, "updateMeal", err, writeMessages{
			notFound: "meal not found",
			failure:  "failed to update meal",
		})
		return
	}

	c.JSON(http.StatusOK, item)
}

// deleteMeal removes a meal entry. Returns 204 on success.
// DELETE /api/meals/:id.
func (h *Handler) deleteMeal(c *gin.Context) {
	h.deleteOwned(c, "meal_entries", "meal not found")
}

// deleteOwned deletes the row with :id from table if it belongs to the user.
// table is always a constant from this package, never client input.
func (h *Handler) deleteOwned(c *gin.Context, table, notFound string) {
	result, err := h.db.Exec(c,
		"DELETE FROM "+table+" WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": c.Param("id"), "userID": currentUserID(c)})
	if err != nil {
		writeError(c, "delete "+table, err, writeMessages{failure: "failed to delete"})
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, notFound)
		return
	}

	c.Status(http.StatusNoContent)
}
