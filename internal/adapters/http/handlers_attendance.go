package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"rohis/internal/application/listutil"
	"rohis/internal/application/orchestrators"
	"rohis/internal/application/projections"
	"rohis/internal/domain/account"
	"rohis/internal/domain/attendance"
	"rohis/internal/domain/session"
)

// handleMembers handles GET /members?q=&role=&sort=&dir=&page=&per_page=
func handleMembers(w http.ResponseWriter, r *http.Request) {
	params := listutil.ParseListParams(r.URL.Query(), projections.MemberSortColumns, projections.MemberFilterKeys)
	deps := projections.GetMemberListDeps{
		UserStore:     stores.Users,
		DivisionStore: stores.Divisions,
	}
	result, err := projections.QueryGetMemberList(r.Context(), projections.GetMemberListQuery{Params: params}, deps)
	if err != nil && loadAbandoned(r, "members", err) {
		return
	}
	renderTemplate(w, r, "members.html", map[string]any{
		"Result":  result,
		"Params":  params,
		"Roles":   account.ValidRoles,
		"Role":    params.Filters["role"],
		"PerPage": listutil.PerPageOptions,
	})
}

// handleAttendance handles GET /attendance[?session_id=]
func handleAttendance(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r)
	deps := projections.GetAttendancePageDeps{
		SessionStore:    stores.Sessions,
		AttendanceStore: stores.Attendance,
	}
	result, err := projections.QueryGetAttendancePage(r.Context(), projections.GetAttendancePageQuery{User: user}, deps)
	if err != nil && loadAbandoned(r, "attendance", err) {
		return
	}

	data := map[string]any{
		"Result": result,
		"Today":  timeNow().Format(session.DateLayout),
	}
	if result.CanMark {
		if id, perr := strconv.ParseInt(r.URL.Query().Get("session_id"), 10, 64); perr == nil && id > 0 {
			roster, err := projections.QueryGetSessionRoster(r.Context(),
				projections.GetSessionRosterQuery{SessionID: id},
				projections.GetSessionRosterDeps{AttendanceStore: stores.Attendance})
			if err != nil {
				if loadAbandoned(r, "attendance_roster", err) {
					return
				}
			} else {
				data["Roster"] = roster
			}
			if s, ok := session.Find(result.Sessions, id); ok {
				data["Selected"] = s
			}
			data["SelectedID"] = id
		}
	}
	renderTemplate(w, r, "attendance.html", data)
}

// handleCreateSession handles POST /attendance/sessions
func handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	user, _ := currentUser(r)
	input := orchestrators.CreateSessionInput{
		Name:      r.FormValue("name"),
		Date:      r.FormValue("date"),
		CreatedBy: user.ID,
	}
	err := orchestrators.ExecuteCreateSession(r.Context(), input,
		orchestrators.CreateSessionDeps{SessionStore: stores.Sessions})
	mutationResult(w, r, "/attendance", err, "Session created")
}

// handleDeleteSession handles POST /attendance/sessions/{id}/delete
func handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	err := orchestrators.ExecuteDeleteSession(r.Context(), orchestrators.DeleteSessionInput{ID: id},
		orchestrators.DeleteSessionDeps{SessionStore: stores.Sessions})
	mutationResult(w, r, "/attendance", err, "Session deleted")
}

// handleMarkAttendance handles POST /attendance/mark
// Form: session_id, seeded (id:status per record when rendered, in record order),
// member (every roster row in display order), status_<id> per row.
func handleMarkAttendance(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := orchestrators.MarkAttendanceInput{
		SessionID: formID(r, "session_id"),
		Seeded:    parseSeeded(r.Form["seeded"]),
		Members:   parseIDs(r.Form["member"]),
		Statuses:  make(map[int64]string),
	}
	ids := append([]int64(nil), input.Members...)
	for _, e := range input.Seeded {
		ids = append(ids, e.UserID)
	}
	for _, id := range ids {
		if status := strings.TrimSpace(r.FormValue("status_" + strconv.FormatInt(id, 10))); status != "" {
			input.Statuses[id] = status
		}
	}

	back := "/attendance"
	if input.SessionID > 0 {
		back += "?session_id=" + strconv.FormatInt(input.SessionID, 10)
	}
	err := orchestrators.ExecuteMarkAttendance(r.Context(), input,
		orchestrators.MarkAttendanceDeps{AttendanceStore: stores.Attendance})
	mutationResult(w, r, back, err, "Attendance saved")
}

// parseSeeded reads "id:status" pairs in order; malformed values and repeated ids are dropped.
func parseSeeded(values []string) []attendance.Entry {
	seen := make(map[int64]bool, len(values))
	out := make([]attendance.Entry, 0, len(values))
	for _, v := range values {
		idPart, status, _ := strings.Cut(strings.TrimSpace(v), ":")
		id, err := strconv.ParseInt(idPart, 10, 64)
		if err != nil || id <= 0 || seen[id] {
			slog.Debug("form_seeded_skipped", "value", v)
			continue
		}
		seen[id] = true
		out = append(out, attendance.Entry{UserID: id, Status: status})
	}
	return out
}

// parseIDs keeps the positive numeric values in order; duplicates after the first are dropped.
func parseIDs(values []string) []int64 {
	seen := make(map[int64]bool, len(values))
	out := make([]int64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil || id <= 0 {
			slog.Debug("form_id_skipped", "value", v)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
