package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Pesokrava/storefront_reviews/internal/domain"
	pkgvalidator "github.com/Pesokrava/storefront_reviews/internal/pkg/validator"
)

// Review comments are capped well below this, so 1MB leaves room for JSON escaping.
const maxRequestBodySize = 1 << 20

const (
	defaultLimit = 20
	maxLimit     = 100
)

// ErrEmptyBody is returned when a request that needs a JSON body has none
var ErrEmptyBody = errors.New("request body is empty")

// DecodeJSON decodes a single JSON document from the request body into v.
// Trailing data after the document is rejected.
func DecodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()

	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodySize))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return fmt.Errorf("failed to decode JSON: %w", err)
	}
	if dec.More() {
		return errors.New("failed to decode JSON: unexpected data after body")
	}
	return nil
}

// Validate checks the validate tags of v; failures wrap domain.ErrInvalidInput
func Validate(v interface{}) error {
	return pkgvalidator.Struct(v)
}

// GetUUIDParam extracts a UUID parameter from the URL
func GetUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	param := chi.URLParam(r, key)
	if param == "" {
		return uuid.Nil, fmt.Errorf("%w: missing parameter %s", domain.ErrInvalidInput, key)
	}

	id, err := uuid.Parse(param)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s is not a UUID", domain.ErrInvalidInput, key)
	}

	return id, nil
}

// GetIntQuery extracts an integer query parameter with a default value
func GetIntQuery(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// GetPaginationParams extracts limit and offset, clamping limit to (0, maxLimit]
func GetPaginationParams(r *http.Request) (limit, offset int) {
	limit = GetIntQuery(r, "limit", defaultLimit)
	offset = GetIntQuery(r, "offset", 0)

	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
