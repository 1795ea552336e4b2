package web

import (
	"net/http"

	"rohis/internal/adapters/storage/websession"
	"rohis/internal/application/orchestrators"
	"rohis/internal/application/projections"
)

func divisionDeps() orchestrators.DivisionDeps {
	return orchestrators.DivisionDeps{DivisionStore: stores.Divisions}
}

// handleDivisions handles GET /divisions
func handleDivisions(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetDivisionsPage(r.Context(), projections.GetDivisionsPageDeps{
		DivisionStore: stores.Divisions,
		UserStore:     stores.Users,
	})
	if err != nil && loadAbandoned(r, "divisions", err) {
		return
	}
	renderTemplate(w, r, "divisions.html", result)
}

// handleCreateDivision handles POST /divisions
func handleCreateDivision(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	err := orchestrators.ExecuteCreateDivision(r.Context(),
		orchestrators.CreateDivisionInput{Name: r.FormValue("name")}, divisionDeps())
	mutationResult(w, r, "/divisions", err, "Division created")
}

// handleDeleteDivision handles POST /divisions/{id}/delete
func handleDeleteDivision(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	if r.FormValue("confirm") != "yes" {
		flashRedirect(w, r, "/divisions", websession.FlashError, "Tick the confirmation box to delete a division")
		return
	}
	err := orchestrators.ExecuteDeleteDivision(r.Context(), orchestrators.DivisionRef{ID: id}, divisionDeps())
	mutationResult(w, r, "/divisions", err, "Division deleted")
}

// handleDivisionPermission handles POST /divisions/{id}/permission
// The form posts the desired value of can_mark_attendance.
func handleDivisionPermission(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	canMark := r.FormValue("can_mark_attendance") == "true"
	err := orchestrators.ExecuteSetDivisionPermission(r.Context(),
		orchestrators.SetDivisionPermissionInput{ID: id, CanMark: canMark}, divisionDeps())
	msg := "Attendance permission revoked"
	if canMark {
		msg = "Attendance permission granted"
	}
	mutationResult(w, r, "/divisions", err, msg)
}

// handleAssignDivisionMember handles POST /divisions/{id}/members
func handleAssignDivisionMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	err := orchestrators.ExecuteAssignDivisionMember(r.Context(),
		orchestrators.DivisionMemberInput{ID: id, UserID: formID(r, "user_id")}, divisionDeps())
	mutationResult(w, r, "/divisions", err, "Member assigned")
}

// handleRemoveDivisionMember handles POST /divisions/{id}/members/{userID}/delete
func handleRemoveDivisionMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	userID, uok := pathID(r, "userID")
	if !ok || !uok {
		http.NotFound(w, r)
		return
	}
	err := orchestrators.ExecuteRemoveDivisionMember(r.Context(),
		orchestrators.DivisionMemberInput{ID: id, UserID: userID}, divisionDeps())
	mutationResult(w, r, "/divisions", err, "Member removed")
}
