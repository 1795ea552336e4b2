package projections

import (
	"context"

	"golang.org/x/sync/errgroup"

	domainAccount "rohis/internal/domain/account"
	domainDivision "rohis/internal/domain/division"
)

// DivisionCard is one division with its resolved members.
type DivisionCard struct {
	Division domainDivision.Division
	Members  []domainAccount.User
}

// GetDivisionsPageResult carries the query result.
type GetDivisionsPageResult struct {
	Divisions  []DivisionCard
	Unassigned []domainAccount.User // offered by the assign form
}

// GetDivisionsPageDeps holds dependencies for GetDivisionsPage.
type GetDivisionsPageDeps struct {
	DivisionStore DivisionStore
	UserStore     UserStore
}

// QueryGetDivisionsPage loads divisions and users in parallel.
// PRE: none
// POST: a division without embedded members lists the users whose division_id points at it
func QueryGetDivisionsPage(ctx context.Context, deps GetDivisionsPageDeps) (GetDivisionsPageResult, error) {
	var (
		divisions []domainDivision.Division
		users     []domainAccount.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		divisions, err = deps.DivisionStore.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = deps.UserStore.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return GetDivisionsPageResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return GetDivisionsPageResult{}, err
	}

	byDivision := make(map[int64][]domainAccount.User)
	for _, u := range users {
		if u.DivisionID != nil {
			byDivision[*u.DivisionID] = append(byDivision[*u.DivisionID], u)
		}
	}
	cards := make([]DivisionCard, 0, len(divisions))
	for _, d := range divisions {
		members := d.Members
		if members == nil {
			members = byDivision[d.ID]
		}
		cards = append(cards, DivisionCard{Division: d, Members: members})
	}
	return GetDivisionsPageResult{Divisions: cards, Unassigned: domainDivision.Unassigned(users)}, nil
}
