package member

import "time"

// Member mirrors one row in the `member` table.  Rows are never removed:
// DeleteTime marks a soft delete, and every read path filters on it, so a
// deleted member's number and phone may be reused.
type Member struct {
	ID         int64      `db:"id"          json:"id"`
	NumberID   string     `db:"number_id"   json:"number_id"`
	Name       string     `db:"name"        json:"name"`
	Number     string     `db:"number"      json:"number"`
	Phone      string     `db:"phone"       json:"phone"`
	Address    string     `db:"address"     json:"address"`
	Nation     string     `db:"nation"      json:"nation"`
	Birthday   string     `db:"birthday"    json:"birthday"`
	Remarks    string     `db:"remarks"     json:"remarks"`
	Lnput      string     `db:"lnput"       json:"lnput"`
	CreateTime time.Time  `db:"create_time" json:"create_time"`
	UpdateTime time.Time  `db:"update_time" json:"update_time"`
	DeleteTime *time.Time `db:"delete_time" json:"-"`
}

// Filter narrows Search and CountByLnput.  Zero fields do not constrain.
type Filter struct {
	Keyword string     // matches name, number_id, or phone
	Lnput   string     // exact input clerk
	Start   *time.Time // create_time lower bound, inclusive
	End     *time.Time // create_time upper bound, inclusive
	Page    int        // 0-based
	Count   int        // page size; 0 means no limit
}

// LnputCount is one row of CountByLnput.
type LnputCount struct {
	Lnput string `db:"lnput" json:"lnput"`
	Total int64  `db:"total" json:"total"`
}
