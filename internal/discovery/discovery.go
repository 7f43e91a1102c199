// Package discovery lists the team ids of a league season from the paginated
// ESPN core API.
package discovery

import (
	"context"
	"fmt"

	"sosratings/internal/metrics"
	"sosratings/internal/models"

	"github.com/rs/zerolog/log"
)

// PageSource fetches one page (1-indexed) of the teams listing
type PageSource interface {
	FetchTeamPage(ctx context.Context, q models.SeasonQuery, page int) (*models.TeamPage, error)
}

// Error is returned when discovery cannot complete. It is fatal for a run.
type Error struct {
	Page int
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("team discovery failed on page %d: %v", e.Page, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// DiscoverTeamIDs walks the listing from page 1 until the provider reports
// the last page and returns every team id found, without duplicates and in
// order of first appearance. References without a team id are dropped.
func DiscoverTeamIDs(ctx context.Context, pages PageSource, q models.SeasonQuery) ([]models.TeamID, error) {
	seen := make(map[models.TeamID]struct{})
	var ids []models.TeamID

	for pageIndex := 1; ; pageIndex++ {
		if err := ctx.Err(); err != nil {
			return nil, &Error{Page: pageIndex, Err: err}
		}

		page, err := pages.FetchTeamPage(ctx, q, pageIndex)
		if err != nil {
			return nil, &Error{Page: pageIndex, Err: err}
		}

		dropped := 0
		for _, ref := range page.Items {
			id, ok := ref.ID()
			if !ok {
				dropped++
				log.Debug().
					Str("ref", ref.URL).
					Int("page", pageIndex).
					Msg("Dropping team reference without an id")
				continue
			}

			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
		metrics.RecordDiscoveryPage(dropped)

		log.Debug().
			Int("page_index", page.PageIndex).
			Int("page_count", page.PageCount).
			Int("items", len(page.Items)).
			Int("dropped", dropped).
			Msg("Teams page processed")

		// The provider's own page index decides termination, not the item count.
		if page.IsLast() {
			break
		}
	}

	return ids, nil
}
