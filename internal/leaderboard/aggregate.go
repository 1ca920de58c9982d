// Package leaderboard turns the backend's raw first counts into the
// display-ready grouping shown on the panel.
package leaderboard

import (
	"fmt"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// Entry is a single user's first count, in the order the backend listed it.
type Entry struct {
	User  string
	Count int
}

// Row groups every user sharing the same first count. Rows are ordered by
// count descending; users keep the order they were listed in.
type Row struct {
	Count int
	Users []string
}

// ParseFirsts decodes a firsts response body into ordered entries. The JSON
// object's key order is preserved, which is what makes the grouping and its
// tie-breaks deterministic. Counts must be non-negative integers; anything
// else is rejected.
func ParseFirsts(body string) ([]Entry, error) {
	iter := jsoniter.ParseString(jsoniter.ConfigFastest, body)

	var entries []Entry
	ok := iter.ReadObjectCB(func(it *jsoniter.Iterator, user string) bool {
		count := it.ReadInt()
		entries = append(entries, Entry{User: user, Count: count})
		return true
	})
	if !ok || iter.Error != nil {
		return nil, fmt.Errorf("malformed firsts response: %v", iter.Error)
	}
	for _, e := range entries {
		if e.Count < 0 {
			return nil, fmt.Errorf("malformed firsts response: negative count %d for %q", e.Count, e.User)
		}
	}
	return entries, nil
}

// Group buckets entries by count and returns one row per distinct count,
// sorted by count descending. Counts are compared numerically and the sort
// is stable, so rows with equal counts keep their first-seen order and users
// within a row keep the input order. An empty input yields no rows.
func Group(entries []Entry) []Row {
	users := make(map[int][]string)
	var seen []int
	for _, e := range entries {
		if _, ok := users[e.Count]; !ok {
			seen = append(seen, e.Count)
		}
		users[e.Count] = append(users[e.Count], e.User)
	}

	rows := make([]Row, 0, len(seen))
	for _, count := range seen {
		rows = append(rows, Row{Count: count, Users: users[count]})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Count > rows[j].Count
	})
	return rows
}

// FormatRow renders a row the way the panel displays it, e.g.
// "5x | user1, user2".
func FormatRow(r Row) string {
	return fmt.Sprintf("%dx | %s", r.Count, strings.Join(r.Users, ", "))
}
