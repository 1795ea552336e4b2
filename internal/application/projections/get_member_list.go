package projections

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"rohis/internal/application/listutil"
	domainAccount "rohis/internal/domain/account"
	domainDivision "rohis/internal/domain/division"
)

// MemberSortColumns are the columns the member list can be sorted by.
var MemberSortColumns = []string{"username", "email", "role"}

// MemberFilterKeys are the exact-match filters the member list accepts.
var MemberFilterKeys = []string{"role"}

// GetMemberListQuery carries query parameters.
type GetMemberListQuery struct {
	Params listutil.ListParams
}

// MemberRow is one row of the member table.
type MemberRow struct {
	User     domainAccount.User
	Division string // resolved name, "Division <id>" or "No division"
}

// GetMemberListResult carries the query result.
type GetMemberListResult struct {
	Members []MemberRow // current page only
	Total   int         // all users before filtering
	Page    listutil.PageInfo
}

// GetMemberListDeps holds dependencies for GetMemberList.
type GetMemberListDeps struct {
	UserStore     UserStore
	DivisionStore DivisionStore
}

// QueryGetMemberList lists users with search, role filter, sort and pagination.
// PRE: query.Params was parsed with MemberSortColumns and MemberFilterKeys
// POST: Members holds at most Page.PerPage rows
// INVARIANT: the division list only labels rows; its failure is logged, not returned
func QueryGetMemberList(ctx context.Context, query GetMemberListQuery, deps GetMemberListDeps) (GetMemberListResult, error) {
	var (
		users     []domainAccount.User
		divisions []domainDivision.Division
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = deps.UserStore.List(gctx)
		return err
	})
	g.Go(func() error {
		list, err := deps.DivisionStore.List(gctx)
		if err != nil {
			slog.Warn("division_labels_unavailable", "error", err)
			return nil
		}
		divisions = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return GetMemberListResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return GetMemberListResult{}, err
	}

	filtered := FilterMembers(users, query.Params.Search, query.Params.Filters["role"])
	SortMembers(filtered, query.Params.Sort, query.Params.Dir)

	info := listutil.NewPageInfo(query.Params.Page, query.Params.PerPage, len(filtered))
	names := domainDivision.NameIndex(divisions)
	page := listutil.Slice(filtered, info)
	rows := make([]MemberRow, 0, len(page))
	for _, u := range page {
		rows = append(rows, MemberRow{User: u, Division: DivisionLabel(u, names)})
	}
	return GetMemberListResult{Members: rows, Total: len(users), Page: info}, nil
}

// FilterMembers keeps users whose username or email contains search (case-insensitive)
// and, when role is set, whose canonical role equals it.
// PRE: none
// POST: returns a new slice in input order
func FilterMembers(users []domainAccount.User, search, role string) []domainAccount.User {
	out := make([]domainAccount.User, 0, len(users))
	for _, u := range users {
		if !listutil.ContainsFold(search, u.Username, u.Email) {
			continue
		}
		if role != "" && !u.HasRole(role) {
			continue
		}
		out = append(out, u)
	}
	return out
}

// SortMembers sorts in place by column; an empty column keeps backend order.
func SortMembers(users []domainAccount.User, column, dir string) {
	var key func(u domainAccount.User) string
	switch column {
	case "username":
		key = func(u domainAccount.User) string { return strings.ToLower(u.Username) }
	case "email":
		key = func(u domainAccount.User) string { return strings.ToLower(u.Email) }
	case "role":
		key = func(u domainAccount.User) string { return u.DisplayRole() }
	default:
		return
	}
	sort.SliceStable(users, func(i, j int) bool {
		if dir == "desc" {
			return key(users[i]) > key(users[j])
		}
		return key(users[i]) < key(users[j])
	})
}

// DivisionLabel names the user's division for display.
func DivisionLabel(u domainAccount.User, names map[int64]string) string {
	if u.DivisionID == nil {
		return "No division"
	}
	if name, ok := names[*u.DivisionID]; ok {
		return name
	}
	return fmt.Sprintf("Division %d", *u.DivisionID)
}
