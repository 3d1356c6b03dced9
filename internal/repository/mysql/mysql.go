// Package mysql implements the repository interfaces on top of a
// MySQL database accessed through database/sql.  All timestamp
// columns are stored in UTC.  The one constraint this package must
// hold at all costs lives in the parking_records table: a stored
// generated column flags open rows and participates in a unique key
// over (floor_number, slot_number), so the database itself rejects a
// second open record for the same physical slot.
package mysql

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// mysqlDuplicateEntry is the server error number raised when an
// insert or update violates a unique key.
const mysqlDuplicateEntry = 1062

// isDuplicate reports whether err is a unique-key violation.  The
// repositories translate these into their domain sentinels instead
// of leaking driver errors upward.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// nullString converts an optional string to its driver representation.
func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// stringPtr converts a scanned nullable string back to an optional.
func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
