package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ekpono/booking-platform/pkg/config"
	apperrors "github.com/ekpono/booking-platform/pkg/errors"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = int64(v)
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// ExtractWeekAnchor parses the optional "week" query parameter. Any
// calendar date inside the desired Monday–Sunday week selects it; a
// missing parameter returns nil.
func ExtractWeekAnchor(r *http.Request) (*time.Time, error) {
	s := r.URL.Query().Get("week")
	if s == "" {
		return nil, nil
	}

	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if parsed, err := time.Parse(layout, s); err == nil {
			return &parsed, nil
		}
	}

	return nil, apperrors.InvalidInput("invalid week parameter, must be a YYYY-MM-DD date: " + s)
}
