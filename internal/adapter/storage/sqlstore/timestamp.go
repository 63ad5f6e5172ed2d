package sqlstore

import (
	"database/sql"
	"time"
)

// Timestamps are stored as BIGINT Unix milliseconds in UTC in every
// dialect. These helpers are the only place that conversion happens.

func toStoreTime(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromStoreTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func toNullStoreTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toStoreTime(*t), Valid: true}
}

func fromNullStoreTime(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromStoreTime(v.Int64)
	return &t
}
