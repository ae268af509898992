package apperror

import (
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var (
	pgKeyDetail     = regexp.MustCompile(`Key \(([^)]+)\)`)
	sqliteUniqueMsg = regexp.MustCompile(`UNIQUE constraint failed: ([\w.]+(?:, [\w.]+)*)`)
)

// FromDB translates a persistence error for the named entity. Not-found, duplicate
// key and foreign key failures become domain errors; anything else is a masked
// DATABASE_ERROR.
func FromDB(err error, entity string) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound("id", entity)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			field := firstMatch(pgKeyDetail, pgErr.Detail)
			return Integrity(field, uniqueMessage(entity, field))
		case pgForeignKeyViolation:
			return Integrity(firstMatch(pgKeyDetail, pgErr.Detail), entity+" is still referenced or references a missing record")
		}
		return Database(err)
	}

	msg := err.Error()
	if m := sqliteUniqueMsg.FindStringSubmatch(msg); m != nil {
		field := columnsOf(m[1])
		return Integrity(field, uniqueMessage(entity, field))
	}
	if strings.Contains(msg, "FOREIGN KEY constraint failed") || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return Integrity("", entity+" is still referenced or references a missing record")
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return Integrity("", entity+" already exists")
	}
	return Database(err)
}

// IsNotFound reports whether err is a gorm not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func uniqueMessage(entity, field string) string {
	if field == "" {
		return entity + " already exists"
	}
	return entity + " with this " + strings.ReplaceAll(field, ", ", " and ") + " already exists"
}

func firstMatch(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return strings.ReplaceAll(m[1], "_id", "")
	}
	return ""
}

// columnsOf turns "localities.name, localities.year" into "name, year".
func columnsOf(list string) string {
	cols := strings.Split(list, ", ")
	for i, c := range cols {
		if dot := strings.LastIndex(c, "."); dot >= 0 {
			c = c[dot+1:]
		}
		cols[i] = strings.TrimSuffix(c, "_id")
	}
	return strings.Join(cols, ", ")
}
