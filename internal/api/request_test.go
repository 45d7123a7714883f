package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPage(t *testing.T) {
	cases := []struct {
		query       string
		page, count int
	}{
		{"", 0, 10},
		{"page=2&count=20", 2, 20},
		{"page=-1&count=0", 0, 10},
		{"count=500", 0, 100},
		{"page=abc&count=xyz", 0, 10},
		{"page=9223372036854775807&count=100", MaxPage, 100},
		{"page=99999999", MaxPage, 10},
	}
	for _, c := range cases {
		r := httptest.NewRequest(http.MethodGet, "/cms/log/?"+c.query, nil)
		page, count := Page(r)
		if page != c.page || count != c.count {
			t.Errorf("Page(%q) = (%d, %d), want (%d, %d)", c.query, page, count, c.page, c.count)
		}
	}
}
