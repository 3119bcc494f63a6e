package main

import (
	"bytes"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	journalSanitizer = bluemonday.UGCPolicy()
)

// renderJournal converts markdown content to sanitized HTML. A render failure
// falls back to the escaped source so an entry is never lost from view.
func renderJournal(content string) string {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		log.Printf("[renderJournal] markdown render failed: %v", err)
		return journalSanitizer.Sanitize(content)
	}
	return string(journalSanitizer.SanitizeBytes(buf.Bytes()))
}

func withHTML(entries ...journalEntry) []journalEntry {
	for i := range entries {
		entries[i].ContentHTML = renderJournal(entries[i].Content)
	}
	return entries
}

// journalRequest is the body for POST /api/journal.
type journalRequest struct {
	Date        string `json:"date" binding:"omitempty,notfuture"`
	Mood        string `json:"mood" binding:"required"`
	EnergyLevel int    `json:"energy_level" binding:"required"`
	Content     string `json:"content"`
}

func (r journalRequest) validate(now time.Time) error {
	if r.Date != "" {
		if _, err := validateDate(r.Date, now); err != nil {
			return err
		}
	}
	return firstError(validateMood(r.Mood), validateEnergyLevel(r.EnergyLevel))
}

// journalPatch is the body for PUT /api/journal/:id.
type journalPatch struct {
	Mood        *string `json:"mood"`
	EnergyLevel *int    `json:"energy_level"`
	Content     *string `json:"content"`
}

func (r journalPatch) validate() error {
	if r.Mood != nil {
		if err := validateMood(*r.Mood); err != nil {
			return err
		}
	}
	if r.EnergyLevel != nil {
		return validateEnergyLevel(*r.EnergyLevel)
	}
	return nil
}

var journalMessages = writeMessages{
	notFound: "journal entry not found",
	conflict: "a journal entry already exists for that date",
	failure:  "failed to save journal entry",
}

// getJournalEntries returns entries within [start, end], newest first
// (default last 30 days). GET /api/journal?start=&end=.
func (h *Handler) getJournalEntries(c *gin.Context) {
	start, end, err := h.rangeOrDefault(c, 30)
	if badRequest(c, err) {
		return
	}

	entries, err := queryMany[journalEntry](h.db, c,
		`SELECT * FROM journal_entries
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date DESC`,
		pgx.NamedArgs{"userID": currentUserID(c), "start": formatDate(start), "end": formatDate(end)})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch journal")
		return
	}

	c.JSON(http.StatusOK, withHTML(entries...))
}

// getJournalEntry returns the entry for one date. GET /api/journal/:date.
func (h *Handler) getJournalEntry(c *gin.Context) {
	date, err := parseDate(c.Param("date"), h.location())
	if badRequest(c, err) {
		return
	}

	entry, err := queryOne[journalEntry](h.db, c,
		"SELECT * FROM journal_entries WHERE user_id = @userID AND date = @date",
		pgx.NamedArgs{"userID": currentUserID(c), "date": formatDate(date)})
	if err != nil {
		writeError(c, "getJournalEntry", err, journalMessages)
		return
	}

	c.JSON(http.StatusOK, withHTML(entry)[0])
}

// createJournalEntry inserts the entry for a date (default today). One entry
// per date; a second is a 409.
// POST /api/journal.
func (h *Handler) createJournalEntry(c *gin.Context) {
	var body journalRequest
	if !bindJSON(c, &body) {
		return
	}
	if badRequest(c, body.validate(h.today())) {
		return
	}
	if body.Date == "" {
		body.Date = formatDate(h.today())
	}

	entry, err := queryOne[journalEntry](h.db, c,
		`INSERT INTO journal_entries (user_id, date, mood, energy_level, content)
		 VALUES (@userID, @date, @mood, @energy, @content)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": currentUserID(c), "date": body.Date, "mood": body.Mood,
			"energy": body.EnergyLevel, "content": body.Content,
		})
	if err != nil {
		writeError(c, "createJournalEntry", err, journalMessages)
		return
	}

	c.JSON(http.StatusCreated, withHTML(entry)[0])
}

// updateJournalEntry partially updates an entry. PUT /api/journal/:id.
func (h *Handler) updateJournalEntry(c *gin.Context) {
	var body journalPatch
	if !bindJSON(c, &body) {
		return
	}
	if badRequest(c, body.validate()) {
		return
	}

	entry, err := queryOne[journalEntry](h.db, c,
		`UPDATE journal_entries SET
			mood         = COALESCE(@mood, mood),
			energy_level = COALESCE(@energy, energy_level),
			content      = COALESCE(@content, content),
			updated_at   = now()
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{
			"id": c.Param("id"), "userID": currentUserID(c),
			"mood": body.Mood, "energy": body.EnergyLevel, "content": body.Content,
		})
	if err != nil {
		writeError(c, "updateJournalEntry", err, journalMessages)
		return
	}

	c.JSON(http.StatusOK, withHTML(entry)[0])
}

// deleteJournalEntry removes an entry. DELETE /api/journal/:id.
func (h *Handler) deleteJournalEntry(c *gin.Context) {
	h.deleteOwned(c, "journal_entries", "journal entry not found")
}
