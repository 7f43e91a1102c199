// Package table ranks team ratings and renders them for display or export.
package table

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"sosratings/internal/models"
)

// SortBy selects the column rows are ordered by after ranking
type SortBy int

const (
	SortOverall SortBy = iota
	SortDefense
	SortOffense
)

// Format is an output format
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

// ParseFormat validates an output format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// Options controls ordering and truncation of the table
type Options struct {
	SortBy  SortBy
	Reverse bool
	Top     int // 0 keeps every row
}

// Build turns ratings into ranked rows.
//
// Rows are ranked by overall rating, highest first. A defense or offense
// ordering is applied after ranking, so rows keep their overall rank. The
// reversal and the top-N cut are applied last, in that order.
func Build(ratings []models.TeamRating, opts Options) []models.TableRow {
	rows := make([]models.TableRow, 0, len(ratings))
	for _, r := range ratings {
		rows = append(rows, models.TableRow{
			Team:          r.Team.Name(),
			TeamID:        r.Team.ID,
			OverallRating: r.OverallRating(),
			DefenseRating: r.DefenseRating,
			OffenseRating: r.OffenseRating,
			Games:         r.Games,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].OverallRating > rows[j].OverallRating
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}

	switch opts.SortBy {
	case SortDefense:
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].DefenseRating > rows[j].DefenseRating
		})
	case SortOffense:
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].OffenseRating > rows[j].OffenseRating
		})
	}

	if opts.Reverse {
		slices.Reverse(rows)
	}

	if opts.Top > 0 && opts.Top < len(rows) {
		rows = rows[:opts.Top]
	}

	return rows
}

// Write renders rows to w in the given format
func Write(w io.Writer, rows []models.TableRow, format Format) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatJSON:
		return WriteJSON(w, rows)
	default:
		return Render(w, rows)
	}
}

// Render writes rows as an aligned text table with two decimal ratings
func Render(w io.Writer, rows []models.TableRow) error {
	headers := []string{"#", "Team", "OVR", "DEF", "OFF"}

	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = []string{
			strconv.Itoa(row.Rank),
			row.Team,
			formatRating(row.OverallRating),
			formatRating(row.DefenseRating),
			formatRating(row.OffenseRating),
		}
	}

	widths := make([]int, len(headers))
	for c, h := range headers {
		widths[c] = utf8.RuneCountInString(h)
	}
	for _, row := range cells {
		for c, cell := range row {
			widths[c] = max(widths[c], utf8.RuneCountInString(cell))
		}
	}

	var b strings.Builder

	header := make([]string, len(headers))
	for c, h := range headers {
		header[c] = center(h, widths[c])
	}
	writeLine(&b, header)

	sep := make([]string, len(widths))
	for c, width := range widths {
		sep[c] = strings.Repeat("-", width+2)
	}
	b.WriteString(strings.Join(sep, "+"))
	b.WriteByte('\n')

	for _, row := range cells {
		line := make([]string, len(row))
		for c, cell := range row {
			// team names are left aligned, numbers right aligned
			if c == 1 {
				line[c] = fmt.Sprintf("%-*s", widths[c], cell)
			} else {
				line[c] = fmt.Sprintf("%*s", widths[c], cell)
			}
		}
		writeLine(&b, line)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteCSV writes rows as CSV with a header line
func WriteCSV(w io.Writer, rows []models.TableRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"rank", "team", "team_id", "overall", "defense", "offense", "games"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.Rank),
			row.Team,
			string(row.TeamID),
			strconv.FormatFloat(row.OverallRating, 'f', -1, 64),
			strconv.FormatFloat(row.DefenseRating, 'f', -1, 64),
			strconv.FormatFloat(row.OffenseRating, 'f', -1, 64),
			strconv.Itoa(row.Games),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes rows as an indented JSON array
func WriteJSON(w io.Writer, rows []models.TableRow) error {
	if rows == nil {
		rows = []models.TableRow{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("failed to encode rows: %w", err)
	}
	return nil
}

func formatRating(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func center(s string, width int) string {
	pad := width - utf8.RuneCountInString(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}

func writeLine(b *strings.Builder, cells []string) {
	line := " " + strings.Join(cells, " | ")
	b.WriteString(strings.TrimRight(line, " "))
	b.WriteByte('\n')
}
