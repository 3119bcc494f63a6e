package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Handler holds shared dependencies (db pool, config, clock) for all route handlers.
type Handler struct {
	db  *pgxpool.Pool
	cfg appConfig
	now func() time.Time // overridable for tests
}

func newHandler(db *pgxpool.Pool, cfg appConfig) *Handler {
	return &Handler{db: db, cfg: cfg, now: time.Now}
}

// today returns the current time in the configured timezone. Every "not in the
// future" and "ending today" comparison goes through here.
func (h *Handler) today() time.Time {
	now := time.Now
	if h.now != nil {
		now = h.now
	}
	loc := h.cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

func (h *Handler) location() *time.Location {
	return h.today().Location()
}

/* ─── Database helpers ────────────────────────────────────────────────── */

// queryOne runs a query and scans the first row into T using RowToStructByName.
// Logs query and scan errors for debugging (e.g. struct/column mismatches).
func queryOne[T any](pool *pgxpool.Pool, ctx context.Context, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := pool.Query(ctx, sql, args)
	if err != nil {
		log.Printf("[queryOne] Query error: %v", err)
		var zero T
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("[queryOne] Scan error: %v", err)
	}
	return result, err
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
// The result is never nil so JSON encodes an empty array, not null.
func queryMany[T any](pool *pgxpool.Pool, ctx context.Context, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := pool.Query(ctx, sql, args)
	if err != nil {
		log.Printf("[queryMany] Query error: %v", err)
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Printf("[queryMany] Scan error: %v", err)
		return nil, err
	}
	if results == nil {
		results = []T{}
	}
	return results, nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint failure.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

/* ─── Response helpers ────────────────────────────────────────────────── */

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// writeMessages are the client-facing texts for one write operation.
type writeMessages struct {
	notFound string // pgx.ErrNoRows
	conflict string // unique violation
	failure  string // anything else
}

// writeError maps validation, missing-row, conflict, and storage errors to
// 400/404/409/500. Storage failures are logged with op for diagnosis.
func writeError(c *gin.Context, op string, err error, msgs writeMessages) {
	switch {
	case errors.Is(err, errValidation):
		apiError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, pgx.ErrNoRows) && msgs.notFound != "":
		apiError(c, http.StatusNotFound, msgs.notFound)
	case isUniqueViolation(err) && msgs.conflict != "":
		apiError(c, http.StatusConflict, msgs.conflict)
	default:
		log.Printf("[%s] %v", op, err)
		apiError(c, http.StatusInternalServerError, msgs.failure)
	}
}

// bindJSON decodes and validates the request body and writes a 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	v := bodyValidator()
	err := c.ShouldBindJSON(dst)
	if err == nil {
		err = v.StructCtx(c.Request.Context(), dst)
	}
	if err != nil {
		apiError(c, http.StatusBadRequest, bindingErrorMessage(err))
		return false
	}
	return true
}

// badRequest writes err's message as a 400 and reports whether it did.
func badRequest(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	apiError(c, http.StatusBadRequest, err.Error())
	return true
}

// dateOrToday resolves an optional YYYY-MM-DD value, defaulting to today.
func (h *Handler) dateOrToday(s string) (time.Time, error) {
	if s == "" {
		return truncateDay(h.today()), nil
	}
	return parseDate(s, h.location())
}

// rangeOrDefault resolves optional start/end query params. Missing values
// default to the trailing `days` days ending today.
func (h *Handler) rangeOrDefault(c *gin.Context, days int) (time.Time, time.Time, error) {
	start, end := c.Query("start"), c.Query("end")
	if start == "" && end == "" {
		today := truncateDay(h.today())
		return today.AddDate(0, 0, -(days - 1)), today, nil
	}
	return validateDateRange(start, end, h.location())
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// getDBPool creates a connection pool; the hosted database closes idle
// connections, so a pool is used rather than a single conn.
func getDBPool(dbURL string) *pgxpool.Pool {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to parse DB URL: %v\n", err)
		os.Exit(1)
	}
	// Use simple query protocol to avoid "cached plan must not change result type"
	// errors from server-side prepared statement caches after schema changes.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("DB pool ready!")
	return pool
}

// newRouter builds the gin engine with routes installed.
func (h *Handler) newRouter() (*gin.Engine, error) {
	router := gin.Default()
	if err := router.SetTrustedProxies(nil); err != nil {
		return nil, err
	}
	h.registerRoutes(router)
	return router, nil
}

// clockMiddleware puts the handler's clock on the request context so body
// validation judges "today" the same way the handlers do.
func (h *Handler) clockMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(withClock(c.Request.Context(), h.today))
		c.Next()
	}
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	// Public routes
	router.POST("/api/login", h.login)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware(), h.preferencesMiddleware())
	h.registerAPIRoutes(api)
}

// registerAPIRoutes registers the routes that require an authenticated user.
func (h *Handler) registerAPIRoutes(api *gin.RouterGroup) {
	api.Use(h.clockMiddleware())

	api.GET("/profile", h.getProfile)
	api.PATCH("/profile", h.patchProfile)
	api.GET("/preferences", h.getPreferences)
	api.PUT("/preferences", h.putPreferences)

	api.GET("/meals", h.getMeals)
	api.GET("/meals/earliest-date", h.getEarliestMealDate)
	api.POST("/meals", h.createMeal)
	api.PUT("/meals/:id", h.updateMeal)
	api.DELETE("/meals/:id", h.deleteMeal)

	api.GET("/workouts", h.getWorkouts)
	api.POST("/workouts", h.createWorkout)
	api.PUT("/workouts/:id", h.updateWorkout)
	api.DELETE("/workouts/:id", h.deleteWorkout)

	api.GET("/weights", h.getWeights)
	api.POST("/weights", h.createWeightEntry)
	api.PUT("/weights/:id", h.updateWeightEntry)
	api.DELETE("/weights/:id", h.deleteWeightEntry)

	api.GET("/habits", h.getHabits)
	api.POST("/habits", h.createHabit)
	api.PUT("/habits/:id", h.updateHabit)
	api.DELETE("/habits/:id", h.deleteHabit)
	api.GET("/habits/:id/logs", h.getHabitLogs)
	api.POST("/habits/:id/logs", h.createHabitLog)
	api.GET("/habits/:id/stats", h.getHabitStats)
	api.PUT("/habit-logs/:id", h.updateHabitLog)
	api.DELETE("/habit-logs/:id", h.deleteHabitLog)

	api.GET("/journal", h.getJournalEntries)
	api.GET("/journal/:date", h.getJournalEntry)
	api.POST("/journal", h.createJournalEntry)
	api.PUT("/journal/:id", h.updateJournalEntry)
	api.DELETE("/journal/:id", h.deleteJournalEntry)

	api.GET("/dashboard", h.getDashboard)
	api.GET("/analytics/weekly", h.getWeeklyTrend)
	api.GET("/analytics/overlay", h.getOverlay)
	api.GET("/analytics/macros", h.getMacros)
	api.GET("/analytics/weight", h.getWeightAnalytics)
	api.GET("/analytics/workouts", h.getWorkoutAnalytics)
	api.GET("/analytics/progress", h.getProgress)
}
