package utils

import (
	"context"
	"errors"

	mysqlDriver "github.com/go-sql-driver/mysql"
)

// check if id exists, return RecordNotFound Error
func ValidateResourceId[T any](ctx context.Context, id interface{}) error {

	count, err := ResourceCountWhere[T](ctx, "id = ?", id)
	if err != nil {
		return err
	}
	if count <= 0 {
		return ErrorRecordNotFound
	}

	return nil
}

func ValidateUnique[T any](ctx context.Context, column string, value interface{}) error {
	count, err := ResourceCountWhere[T](ctx, column+" = ?", value)
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New("duplicate " + column)
	}
	return nil
}

// IsDuplicateKeyError reports whether err is a MySQL duplicate-entry error
// (1062). ValidateUnique is check-then-insert; the unique index is the real
// guard, and this lets callers turn the race loser into a clean message.
func IsDuplicateKeyError(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}
