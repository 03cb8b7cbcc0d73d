package supabase

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

const (
	// undefined_table
	pgCodeUndefinedTable = "42P01"
	// PostgREST "no rows / unknown relation" code surfaced through the REST gateway.
	postgrestCodeMissing = "PGRST116"
)

// isTableNotFoundError reports whether err means the backing table is absent.
func isTableNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if string(pqErr.Code) == pgCodeUndefinedTable {
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, strings.ToLower(postgrestCodeMissing)) || strings.Contains(msg, "schema cache") {
		return true
	}
	return strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist")
}
