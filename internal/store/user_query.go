package store

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// UserQueryMode selects one of the mutually exclusive user listings.
type UserQueryMode int

const (
	// UserQueryAll lists every visible user with associations; used when no
	// query parameters are given.
	UserQueryAll UserQueryMode = iota
	UserQueryAdminSearch
	UserQueryAdmin
	UserQueryDisabled
	UserQuerySearch
	UserQueryMinNotes
	// UserQueryUnmatched means parameters were given but fit no listing.
	UserQueryUnmatched
)

func (m UserQueryMode) String() string {
	switch m {
	case UserQueryAll:
		return "all"
	case UserQueryAdminSearch:
		return "admin+search"
	case UserQueryAdmin:
		return "admin"
	case UserQueryDisabled:
		return "disabled"
	case UserQuerySearch:
		return "search"
	case UserQueryMinNotes:
		return "minnotes"
	case UserQueryUnmatched:
		return "unmatched"
	}
	return "unknown"
}

// UserQuery is a resolved user listing request.
type UserQuery struct {
	Mode     UserQueryMode
	Search   string // name substring, case-insensitive
	MinNotes int
}

// ResolveUserQuery picks the listing for the given query parameters. The
// precedence is admin+search, admin, disabled, search, minnotes. A flag
// counts as set when it has a non-empty value.
func ResolveUserQuery(v url.Values) UserQuery {
	if len(v) == 0 {
		return UserQuery{Mode: UserQueryAll}
	}

	admin := v.Get("admin") != ""
	search := v.Get("search")

	switch {
	case admin && search != "":
		return UserQuery{Mode: UserQueryAdminSearch, Search: search}
	case admin:
		return UserQuery{Mode: UserQueryAdmin}
	case v.Get("disabled") != "":
		return UserQuery{Mode: UserQueryDisabled}
	case search != "":
		return UserQuery{Mode: UserQuerySearch, Search: search}
	}

	if v.Has("minnotes") {
		if n, ok := parseMinNotes(v.Get("minnotes")); ok {
			return UserQuery{Mode: UserQueryMinNotes, MinNotes: n}
		}
	}
	return UserQuery{Mode: UserQueryUnmatched}
}

// parseMinNotes accepts any finite number; an empty value counts as zero.
// Fractions round up since note counts are whole.
func parseMinNotes(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(math.Ceil(f)), true
}
