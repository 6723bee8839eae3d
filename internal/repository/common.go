package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

const mysqlErrDuplicateEntry = 1062

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrTokenNotFound     = errors.New("token not found")
)

// duplicateKey reports the unique key named in a MySQL duplicate entry error.
func duplicateKey(err error) (string, bool) {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) || mysqlErr.Number != mysqlErrDuplicateEntry {
		return "", false
	}
	// Duplicate entry 'x' for key 'users.users_email_unique'
	_, key, _ := strings.Cut(mysqlErr.Message, " for key ")
	return strings.Trim(key, "'"), true
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
