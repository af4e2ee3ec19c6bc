package services

import "database/sql"

// nullInt64 scans like sql.NullInt64 and converts to the pointer fields the
// domain models use.
type nullInt64 struct {
	sql.NullInt64
}

func (n nullInt64) ptr() *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
