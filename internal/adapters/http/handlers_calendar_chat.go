package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"rohis/internal/application/orchestrators"
	"rohis/internal/application/projections"
	"rohis/internal/domain/chat"
)

// weekdayLabels heads the calendar grid, Sunday first.
var weekdayLabels = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// parseMonth reads year and month from the query, falling back to now's month.
func parseMonth(r *http.Request, now time.Time) (int, time.Month) {
	year, month := now.Year(), now.Month()
	q := r.URL.Query()
	if y, err := strconv.Atoi(q.Get("year")); err == nil && y >= 1 && y <= 9999 {
		year = y
	}
	if m, err := strconv.Atoi(q.Get("month")); err == nil && m >= 1 && m <= 12 {
		month = time.Month(m)
	}
	return year, month
}

// handleCalendar handles GET /calendar?year=&month=
func handleCalendar(w http.ResponseWriter, r *http.Request) {
	year, month := parseMonth(r, timeNow())
	result, err := projections.QueryGetCalendarMonth(r.Context(),
		projections.GetCalendarMonthQuery{Year: year, Month: month},
		projections.GetCalendarMonthDeps{CalendarStore: stores.Calendar})
	if err != nil && loadAbandoned(r, "calendar", err) {
		return
	}
	renderTemplate(w, r, "calendar.html", map[string]any{
		"Result":   result,
		"Weekdays": weekdayLabels,
		"Failed":   err != nil,
	})
}

// handleChat handles GET /chat. Every visit starts an empty transcript.
func handleChat(w http.ResponseWriter, r *http.Request) {
	renderChat(w, r, nil, "")
}

// handleSendChat handles POST /chat. The transcript travels in the form, never in storage.
func handleSendChat(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	transcript, err := chat.DecodeTranscript(r.FormValue("transcript"))
	if err != nil {
		slog.Warn("chat_transcript_dropped", "error", err)
		transcript = nil
	}

	updated, err := orchestrators.ExecuteSendChat(r.Context(), orchestrators.SendChatInput{
		Transcript: transcript,
		Message:    r.FormValue("message"),
	}, orchestrators.SendChatDeps{ChatStore: stores.Chat, Now: timeNow})
	if r.Context().Err() != nil {
		return
	}
	if err != nil {
		renderChat(w, r, updated, userMessage(err))
		return
	}
	renderChat(w, r, updated, "")
}

func renderChat(w http.ResponseWriter, r *http.Request, transcript chat.Transcript, problem string) {
	encoded, err := transcript.Encode()
	if err != nil {
		internalError(w, err)
		return
	}
	renderTemplate(w, r, "chat.html", map[string]any{
		"Messages":   transcript,
		"Transcript": encoded,
		"Error":      problem,
		"MaxLength":  chat.MaxMessageLength,
	})
}
