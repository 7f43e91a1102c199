package repository

const schema = `
CREATE TABLE IF NOT EXISTS rating_runs (
	run_id           UUID PRIMARY KEY,
	sport            TEXT NOT NULL,
	league           TEXT NOT NULL,
	season           INTEGER NOT NULL,
	group_id         INTEGER NOT NULL DEFAULT 0,
	teams_discovered INTEGER NOT NULL,
	teams_fetched    INTEGER NOT NULL,
	teams_rated      INTEGER NOT NULL,
	computed_at      TIMESTAMPTZ NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_rating_runs_query
	ON rating_runs (sport, league, season, group_id, computed_at DESC);

CREATE TABLE IF NOT EXISTS team_ratings (
	run_id         UUID NOT NULL REFERENCES rating_runs (run_id) ON DELETE CASCADE,
	team_id        TEXT NOT NULL,
	location       TEXT NOT NULL,
	display_name   TEXT NOT NULL DEFAULT '',
	abbreviation   TEXT NOT NULL DEFAULT '',
	defense_rating DOUBLE PRECISION NOT NULL,
	offense_rating DOUBLE PRECISION NOT NULL,
	overall_rating DOUBLE PRECISION NOT NULL,
	games          INTEGER NOT NULL,
	PRIMARY KEY (run_id, team_id)
);
`
