package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"
)

/* ─── Page loading ───────────────────────────────────────────────────── */

// pageQuery selects which record sets a page needs for [start, end].
type pageQuery struct {
	start, end time.Time
	meals      bool
	workouts   bool
	weights    bool // also pulls the latest entry before start, for carry-forward
	habits     bool // active habits and all of their logs
}

// pageData is the snapshot a page computes over. Nothing in it is mutated.
type pageData struct {
	profile   profile
	meals     []mealEntry
	workouts  []workoutEntry
	weights   []weightEntry
	habits    []habit
	habitLogs []habitLog
}

// loadPage issues the page's independent reads concurrently and waits for all
// of them. The first failure cancels the rest.
func (h *Handler) loadPage(ctx context.Context, userID int, q pageQuery) (pageData, error) {
	var data pageData
	g, ctx := errgroup.WithContext(ctx)
	rng := pgx.NamedArgs{"userID": userID, "start": formatDate(q.start), "end": formatDate(q.end)}

	g.Go(func() error {
		p, err := h.loadProfile(ctx, userID)
		data.profile = p
		return err
	})
	if q.meals {
		g.Go(func() (err error) {
			data.meals, err = queryMany[mealEntry](h.db, ctx,
				`SELECT * FROM meal_entries
				 WHERE user_id = @userID AND date >= @start AND date <= @end
				 ORDER BY date, created_at`, rng)
			return err
		})
	}
	if q.workouts {
		g.Go(func() (err error) {
			data.workouts, err = queryMany[workoutEntry](h.db, ctx,
				`SELECT * FROM workout_entries
				 WHERE user_id = @userID AND date >= @start AND date <= @end
				 ORDER BY date, created_at`, rng)
			return err
		})
	}
	if q.weights {
		g.Go(func() (err error) {
			data.weights, err = queryMany[weightEntry](h.db, ctx,
				`SELECT * FROM weight_entries
				 WHERE user_id = @userID AND date <= @end
				   AND date >= COALESCE(
				     (SELECT MAX(date) FROM weight_entries WHERE user_id = @userID AND date < @start),
				     @start::date)
				 ORDER BY date`, rng)
			return err
		})
	}
	if q.habits {
		g.Go(func() (err error) {
			data.habits, err = queryMany[habit](h.db, ctx,
				"SELECT * FROM habits WHERE user_id = @userID AND is_active ORDER BY created_at",
				pgx.NamedArgs{"userID": userID})
			return err
		})
		g.Go(func() (err error) {
			data.habitLogs, err = queryMany[habitLog](h.db, ctx,
				"SELECT * FROM habit_logs WHERE user_id = @userID AND date <= @end ORDER BY date",
				pgx.NamedArgs{"userID": userID, "end": formatDate(q.end)})
			return err
		})
	}

	err := g.Wait()
	return data, err
}

// weightsWithin drops the carried-forward entry that precedes start.
func weightsWithin(entries []weightEntry, start time.Time) []weightEntry {
	first := civilDay(start)
	out := []weightEntry{}
	for _, e := range entries {
		if !civilDay(e.Date.Time).Before(first) {
			out = append(out, e)
		}
	}
	return out
}

/* ─── Dashboard ──────────────────────────────────────────────────────── */

// dashboardDisplay holds preformatted strings in the user's language.
type dashboardDisplay struct {
	CaloriesConsumed string `json:"calories_consumed"`
	CaloriesBurned   string `json:"calories_burned"`
	NetCalories      string `json:"net_calories"`
	Remaining        string `json:"remaining"`
	Target           string `json:"target"`
	WorkoutDuration  string `json:"workout_duration"`
	Weight           string `json:"weight,omitempty"`
	BMI              string `json:"bmi,omitempty"`
	HabitsDone       string `json:"habits_done"`
}

// dashboardResponse is the shape of GET /api/dashboard.
type dashboardResponse struct {
	Date        string           `json:"date"`
	Summary     dailySummary     `json:"summary"`
	Energy      energy           `json:"energy"`
	BodyStats   bodyStats        `json:"body_stats"`
	Remaining   int              `json:"remaining_calories"`
	Weight      *weightEntry     `json:"latest_weight"`
	BMI         float64          `json:"bmi"`
	BMICategory string           `json:"bmi_category"`
	Habits      []habitWithStats `json:"habits"`
	HabitsDone  float64          `json:"habits_done_pct"`
	Display     dashboardDisplay `json:"display"`
}

// buildDashboard computes every dashboard figure from one page snapshot.
// Habit streaks are measured as of date, so past days show the streak they had then.
func buildDashboard(date time.Time, data pageData, rule streakRule, f unitFormatter) dashboardResponse {
	summary := summarizeDay(date, data.meals, data.workouts)
	latest := latestWeight(data.weights)
	stats := resolveBodyStats(data.profile, latest, date)
	e := energyFor(stats, data.profile)

	resp := dashboardResponse{
		Date:      formatDate(date),
		Summary:   summary,
		Energy:    e,
		BodyStats: stats,
		Remaining: e.Target - summary.NetCalories,
		Weight:    latest,
		Habits:    attachStats(data.habits, data.habitLogs, date, rule),
	}
	if latest != nil {
		resp.BMI = calculateBMI(latest.WeightKG, stats.HeightCM)
		resp.BMICategory = bmiCategory(resp.BMI)
		resp.Display.Weight = f.formatWeight(latest.WeightKG)
		resp.Display.BMI = f.formatBMI(resp.BMI)
	}

	done := 0
	for _, hb := range resp.Habits {
		if hb.Stats.DoneToday {
			done++
		}
	}
	if len(resp.Habits) > 0 {
		resp.HabitsDone = round1(float64(done) / float64(len(resp.Habits)) * 100)
	}

	resp.Display.CaloriesConsumed = f.formatCalories(summary.CaloriesConsumed)
	resp.Display.CaloriesBurned = f.formatCalories(summary.CaloriesBurned)
	resp.Display.NetCalories = f.formatCalories(summary.NetCalories)
	resp.Display.Remaining = f.formatCalories(resp.Remaining)
	resp.Display.Target = f.formatCalories(e.Target)
	resp.Display.WorkoutDuration = f.formatDuration(summary.WorkoutMinutes)
	resp.Display.HabitsDone = f.formatPercentage(resp.HabitsDone)
	return resp
}

// getDashboard returns the day's energy balance, targets, weight, and habits.
// GET /api/dashboard?date=YYYY-MM-DD (defaults to today; future dates rejected).
func (h *Handler) getDashboard(c *gin.Context) {
	today := h.today()
	date := truncateDay(today)
	if s := c.Query("date"); s != "" {
		d, err := validateDate(s, today)
		if badRequest(c, err) {
			return
		}
		date = d
	}

	data, err := h.loadPage(c, currentUserID(c), pageQuery{
		start: date, end: date,
		meals: true, workouts: true, weights: true, habits: true,
	})
	if err != nil {
		writeError(c, "getDashboard", err, writeMessages{failure: "failed to load dashboard"})
		return
	}

	c.JSON(http.StatusOK, buildDashboard(date, data, parseStreakRule(c.Query("rule")), h.formatter(c)))
}

/* ─── Charts ─────────────────────────────────────────────────────────── */

// getWeeklyTrend returns calories in/out for the 7 days ending today.
// GET /api/analytics/weekly.
func (h *Handler) getWeeklyTrend(c *gin.Context) {
	today := truncateDay(h.today())
	data, err := h.loadPage(c, currentUserID(c), pageQuery{
		start: today.AddDate(0, 0, -6), end: today, meals: true, workouts: true,
	})
	if err != nil {
		writeError(c, "getWeeklyTrend", err, writeMessages{failure: "failed to load weekly trend"})
		return
	}

	c.JSON(http.StatusOK, weeklyTrend(today, data.meals, data.workouts))
}

const maxOverlayDays = 365

// getOverlay returns the calorie/weight overlay series ending today.
// GET /api/analytics/overlay?days=30.
func (h *Handler) getOverlay(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days < 1 || days > maxOverlayDays {
		apiError(c, http.StatusBadRequest, "days must be between 1 and 365")
		return
	}
	today := truncateDay(h.today())
	data, err := h.loadPage(c, currentUserID(c), pageQuery{
		start: today.AddDate(0, 0, -(days - 1)), end: today,
		meals: true, workouts: true, weights: true,
	})
	if err != nil {
		writeError(c, "getOverlay", err, writeMessages{failure: "failed to load overlay"})
		return
	}

	c.JSON(http.StatusOK, calorieWeightOverlay(today, days, data.meals, data.workouts, data.weights, data.profile))
}

// getMacros returns the macro split for a range (default last 7 days).
// GET /api/analytics/macros?start=&end=.
func (h *Handler) getMacros(c *gin.Context) {
	start, end, err := h.rangeOrDefault(c, 7)
	if badRequest(c, err) {
		return
	}
	data, err := h.loadPage(c, currentUserID(c), pageQuery{start: start, end: end, meals: true})
	if err != nil {
		writeError(c, "getMacros", err, writeMessages{failure: "failed to load macros"})
		return
	}

	split := macroDistribution(data.meals)
	f := h.formatter(c)
	c.JSON(http.StatusOK, gin.H{
		"start":  formatDate(start),
		"end":    formatDate(end),
		"macros": split,
		"display": gin.H{
			"protein": f.formatPercentage(split.ProteinPct),
			"carbs":   f.formatPercentage(split.CarbsPct),
			"fat":     f.formatPercentage(split.FatPct),
		},
	})
}

// weightAnalytics is the shape of GET /api/analytics/weight.
type weightAnalytics struct {
	Entries     []weightEntry `json:"entries"`
	Trend       weightTrend   `json:"trend"`
	BMI         float64       `json:"bmi"`
	BMICategory string        `json:"bmi_category"`
	Display     gin.H         `json:"display"`
}

// getWeightAnalytics returns the window's entries, trend, and current BMI.
// GET /api/analytics/weight?start=&end= (default last 30 days).
func (h *Handler) getWeightAnalytics(c *gin.Context) {
	start, end, err := h.rangeOrDefault(c, 30)
	if badRequest(c, err) {
		return
	}
	data, err := h.loadPage(c, currentUserID(c), pageQuery{start: start, end: end, weights: true})
	if err != nil {
		writeError(c, "getWeightAnalytics", err, writeMessages{failure: "failed to load weight analytics"})
		return
	}

	entries := weightsWithin(data.weights, start)
	resp := weightAnalytics{Entries: entries, Trend: weightTrendFor(entries), Display: gin.H{}}
	f := h.formatter(c)
	if latest := latestWeight(entries); latest != nil {
		stats := resolveBodyStats(data.profile, latest, end)
		resp.BMI = calculateBMI(latest.WeightKG, stats.HeightCM)
		resp.BMICategory = bmiCategory(resp.BMI)
		resp.Display["weight"] = f.formatWeight(latest.WeightKG)
		resp.Display["bmi"] = f.formatBMI(resp.BMI)
		resp.Display["delta"] = f.formatWeight(resp.Trend.DeltaKG)
	}

	c.JSON(http.StatusOK, resp)
}

// getWorkoutAnalytics returns weekly volume and a per-type breakdown.
// GET /api/analytics/workouts?start=&end= (default last 28 days).
func (h *Handler) getWorkoutAnalytics(c *gin.Context) {
	start, end, err := h.rangeOrDefault(c, 28)
	if badRequest(c, err) {
		return
	}
	data, err := h.loadPage(c, currentUserID(c), pageQuery{start: start, end: end, meals: true, workouts: true})
	if err != nil {
		writeError(c, "getWorkoutAnalytics", err, writeMessages{failure: "failed to load workout analytics"})
		return
	}

	var minutes int
	var distance float64
	for _, w := range data.workouts {
		minutes += w.DurationMinutes
		distance += deref(w.DistanceKM)
	}
	f := h.formatter(c)
	c.JSON(http.StatusOK, gin.H{
		"weeks":   weeklyRollup(start, end, data.meals, data.workouts),
		"by_type": workoutBreakdown(data.workouts),
		"display": gin.H{
			"total_duration": f.formatDuration(minutes),
			"total_distance": f.formatDistance(distance),
		},
	})
}

// progressResponse is the shape of GET /api/analytics/progress.
type progressResponse struct {
	Target int            `json:"target"`
	Days   []dailySummary `json:"days"`
	Stats  progressStats  `json:"stats"`
}

// getProgress returns logged days and budget adherence for a range. Only days
// with entries are returned; clients fill gaps themselves.
// GET /api/analytics/progress?start=&end= (default last 30 days).
func (h *Handler) getProgress(c *gin.Context) {
	start, end, err := h.rangeOrDefault(c, 30)
	if badRequest(c, err) {
		return
	}
	data, err := h.loadPage(c, currentUserID(c), pageQuery{
		start: start, end: end, meals: true, workouts: true, weights: true,
	})
	if err != nil {
		writeError(c, "getProgress", err, writeMessages{failure: "failed to fetch progress data"})
		return
	}

	stats := resolveBodyStats(data.profile, latestWeight(data.weights), end)
	target := energyFor(stats, data.profile).Target
	days := dailySeries(start, end, data.meals, data.workouts, true)

	c.JSON(http.StatusOK, progressResponse{Target: target, Days: days, Stats: computeProgress(days, target)})
}
