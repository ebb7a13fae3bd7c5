package store

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveUserQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  UserQuery
	}{
		{"no params", "", UserQuery{Mode: UserQueryAll}},
		{"admin and search", "admin=true&search=ann", UserQuery{Mode: UserQueryAdminSearch, Search: "ann"}},
		{"admin alone", "admin=true", UserQuery{Mode: UserQueryAdmin}},
		{"admin with empty search", "admin=true&search=", UserQuery{Mode: UserQueryAdmin}},
		{"admin beats disabled", "admin=1&disabled=true", UserQuery{Mode: UserQueryAdmin}},
		{"disabled", "disabled=true", UserQuery{Mode: UserQueryDisabled}},
		{"disabled beats search", "disabled=true&search=ann", UserQuery{Mode: UserQueryDisabled}},
		{"search", "search=ann", UserQuery{Mode: UserQuerySearch, Search: "ann"}},
		{"search beats minnotes", "search=ann&minnotes=2", UserQuery{Mode: UserQuerySearch, Search: "ann"}},
		{"minnotes", "minnotes=2", UserQuery{Mode: UserQueryMinNotes, MinNotes: 2}},
		{"minnotes empty is zero", "minnotes=", UserQuery{Mode: UserQueryMinNotes, MinNotes: 0}},
		{"minnotes fraction rounds up", "minnotes=1.5", UserQuery{Mode: UserQueryMinNotes, MinNotes: 2}},
		{"minnotes not a number", "minnotes=lots", UserQuery{Mode: UserQueryUnmatched}},
		{"unknown param", "foo=bar", UserQuery{Mode: UserQueryUnmatched}},
		{"empty admin flag", "admin=", UserQuery{Mode: UserQueryUnmatched}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, ResolveUserQuery(v))
		})
	}
}

func TestUserQueryMode_String(t *testing.T) {
	assert.Equal(t, "admin+search", UserQueryAdminSearch.String())
	assert.Equal(t, "unmatched", UserQueryUnmatched.String())
	assert.Equal(t, "unknown", UserQueryMode(99).String())
}
