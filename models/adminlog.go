package models

import "time"

// AdminLog is one append-only audit entry recorded on mutating actions.
type AdminLog struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"userId"`
	Action    string    `db:"action" json:"action"`
	Detail    string    `db:"detail" json:"detail"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// AdminLogPage is one page of the paginated admin log listing.
type AdminLogPage struct {
	Logs    []AdminLog `json:"logs"`
	Page    int        `json:"page"`
	Limit   int        `json:"limit"`
	Total   int64      `json:"total"`
	HasMore bool       `json:"hasMore"`
}
