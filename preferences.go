package main

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

const prefsKey = "prefs"

// defaultPreferences comes from config at startup. When the user has no saved
// row, the Accept-Language header picks the language instead.
func (h *Handler) defaultPreferences(acceptLanguage string) preferences {
	p := preferences{Language: h.cfg.DefaultLanguage, Theme: h.cfg.DefaultTheme}
	if p.Language == "" {
		p.Language = "en"
	}
	if p.Theme == "" {
		p.Theme = "system"
	}
	if acceptLanguage != "" {
		p.Language = matchLanguage(acceptLanguage).String()
	}
	return p
}

// preferencesMiddleware loads the user's saved preferences once per request and
// exposes them read-only on the context. Lookup failures fall back to defaults.
func (h *Handler) preferencesMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		prefs := h.defaultPreferences(c.GetHeader("Accept-Language"))
		if h.db != nil {
			saved, err := queryOne[preferences](h.db, c,
				"SELECT * FROM user_preferences WHERE user_id = @userID",
				pgx.NamedArgs{"userID": currentUserID(c)})
			switch {
			case err == nil:
				prefs = saved
			case !errors.Is(err, pgx.ErrNoRows):
				log.Printf("[preferencesMiddleware] falling back to defaults: %v", err)
			}
		}
		c.Set(prefsKey, prefs)
		c.Next()
	}
}

// prefs returns the request's preferences, or defaults if the middleware did not run.
func (h *Handler) prefs(c *gin.Context) preferences {
	if v, ok := c.Get(prefsKey); ok {
		if p, ok := v.(preferences); ok {
			return p
		}
	}
	return h.defaultPreferences(c.GetHeader("Accept-Language"))
}

// formatter returns a unit formatter for the request's language.
func (h *Handler) formatter(c *gin.Context) unitFormatter {
	return newUnitFormatter(h.prefs(c).Language)
}

// getPreferences returns the effective language and theme.
// GET /api/preferences.
func (h *Handler) getPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, h.prefs(c))
}

// putPreferences is the only way preferences change: it validates, persists,
// and returns the stored values.
// PUT /api/preferences. Body: { "language": "de", "theme": "dark" }.
func (h *Handler) putPreferences(c *gin.Context) {
	var body struct {
		Language string `json:"language" binding:"required"`
		Theme    string `json:"theme" binding:"required"`
	}
	if !bindJSON(c, &body) {
		return
	}
	theme := strings.ToLower(strings.TrimSpace(body.Theme))
	if badRequest(c, validateTheme(theme)) {
		return
	}
	lang := matchLanguage(body.Language).String()

	saved, err := queryOne[preferences](h.db, c,
		`INSERT INTO user_preferences (user_id, language, theme)
		 VALUES (@userID, @language, @theme)
		 ON CONFLICT (user_id) DO UPDATE SET language = EXCLUDED.language, theme = EXCLUDED.theme
		 RETURNING *`,
		pgx.NamedArgs{"userID": currentUserID(c), "language": lang, "theme": theme})
	if err != nil {
		writeError(c, "putPreferences", err, writeMessages{failure: "failed to save preferences"})
		return
	}

	c.JSON(http.StatusOK, saved)
}
