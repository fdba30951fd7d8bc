package validators

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/Alishanbouraa/quicktech-pos/pkg/errors"
)

const dateLayout = "2006-01-02"

// ParseQueryDate reads an optional YYYY-MM-DD query parameter. A missing
// parameter yields the fallback.
func ParseQueryDate(r *http.Request, key string, fallback time.Time) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a date (YYYY-MM-DD)").
			WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

// ParseQueryDatePtr reads an optional date parameter, returning nil when it
// is absent.
func ParseQueryDatePtr(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a date (YYYY-MM-DD)").
			WithDetails(map[string]any{"field": key})
	}
	return &value, nil
}

// ParseURLUUID parses a URL path segment as a UUID.
func ParseURLUUID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "identifier must be a UUID").
			WithDetails(map[string]any{"field": field})
	}
	return id, nil
}
