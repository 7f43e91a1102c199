package models

import (
	"strconv"
	"strings"
)

// TeamID identifies a team within a league season. ESPN serves ids as
// strings on the site API and embeds them as integers in core API refs;
// both are normalised to the decimal string form.
type TeamID string

// Team represents a team as returned on a schedule document
type Team struct {
	ID           TeamID `json:"id"`
	Location     string `json:"location"`
	DisplayName  string `json:"displayName,omitempty"`
	Abbreviation string `json:"abbreviation,omitempty"`
}

// Name returns the label shown in ranked tables
func (t Team) Name() string {
	if t.Location != "" {
		return t.Location
	}
	return t.DisplayName
}

// TeamRef is a single item of a paginated core API listing
type TeamRef struct {
	URL string `json:"$ref"`
}

// ID extracts the team id from the reference URL. The id is the last path
// segment and must be followed by a query string, e.g.
// ".../seasons/2024/teams/333?lang=en&region=us".
func (r TeamRef) ID() (TeamID, bool) {
	idx := strings.LastIndexByte(r.URL, '/')
	if idx < 0 {
		return "", false
	}

	segment, _, found := strings.Cut(r.URL[idx+1:], "?")
	if !found {
		return "", false
	}

	id, err := strconv.ParseUint(segment, 10, 32)
	if err != nil {
		return "", false
	}

	return TeamID(strconv.FormatUint(id, 10)), true
}

// TeamPage is one page of the core API teams listing
type TeamPage struct {
	Count     int       `json:"count"`
	PageIndex int       `json:"pageIndex"`
	PageSize  int       `json:"pageSize"`
	PageCount int       `json:"pageCount"`
	Items     []TeamRef `json:"items"`
}

// IsLast reports whether no further pages follow this one
func (p *TeamPage) IsLast() bool {
	return p.PageIndex >= p.PageCount
}
