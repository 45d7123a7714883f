package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// maxBody caps JSON bodies read by Payload.
const maxBody = 1 << 20

// Payload reads the request input as the raw map the form pipeline consumes.
// Query parameters are always included, repeated keys becoming lists.  A JSON
// body, when present, overrides keys it shares with the query.
func Payload(r *http.Request) (map[string]any, error) {
	p := make(map[string]any)
	for k, vs := range r.URL.Query() {
		switch len(vs) {
		case 0:
		case 1:
			p[k] = vs[0]
		default:
			items := make([]any, len(vs))
			for i, s := range vs {
				items[i] = s
			}
			p[k] = items
		}
	}
	if r.Body == nil || r.ContentLength == 0 {
		return p, nil
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return p, nil
		}
		return nil, &BadRequest{Field: "body", Message: "请求体不是有效的JSON"}
	}
	for k, v := range body {
		p[k] = v
	}
	return p, nil
}

// IDParam parses the {id} URL parameter.  ok is false for anything that is
// not a positive integer.
func IDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// MaxPage bounds page so page*count stays far from overflow.
const MaxPage = 10000

// Page reads page (0-based) and count from the query with defaults 0 and 10.
// count is capped at 100 and page at MaxPage.
func Page(r *http.Request) (page, count int) {
	q := r.URL.Query()
	page, _ = strconv.Atoi(q.Get("page"))
	count, _ = strconv.Atoi(q.Get("count"))
	if page < 0 {
		page = 0
	}
	if page > MaxPage {
		page = MaxPage
	}
	if count <= 0 {
		count = 10
	}
	if count > 100 {
		count = 100
	}
	return page, count
}
