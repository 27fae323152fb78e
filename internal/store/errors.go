package store

import (
	"errors"
	"fmt"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("row was modified concurrently")
	ErrNoValidLines     = errors.New("at least one valid order detail is required")
	ErrInvalidReference = errors.New("referenced row does not exist or is still in use")
	ErrDuplicate        = errors.New("duplicate value")
)

// classify maps driver and gorm errors onto the store's sentinel errors.
func classify(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrInvalidReference, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503":
			return fmt.Errorf("%w: %v", ErrInvalidReference, err)
		case "23505":
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
	}

	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1451, 1452:
			return fmt.Errorf("%w: %v", ErrInvalidReference, err)
		case 1062:
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
	}

	// SQLite surfaces constraint failures only through the message text.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %v", ErrInvalidReference, err)
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
