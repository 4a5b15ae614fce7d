package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sukhpreet-s/travel-planner-api/internal/types"
)

// DBPool is the subset of *pgxpool.Pool the repositories use. pgxmock's
// pool satisfies it too, which is what the repository tests run against.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// ErrorResponse writes the standard JSON error envelope.
func ErrorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	WriteJSONResponse(w, r, status, map[string]string{"error": message})
}

// HandleError maps domain error kinds to HTTP statuses. Unexpected errors
// become a generic 500 with the detail only in the log.
func HandleError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, types.ErrValidation), errors.Is(err, types.ErrConflict):
		ErrorResponse(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, types.ErrUnauthenticated):
		ErrorResponse(w, r, http.StatusUnauthorized, err.Error())
	case errors.Is(err, types.ErrForbidden):
		ErrorResponse(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, types.ErrNotFound):
		ErrorResponse(w, r, http.StatusNotFound, err.Error())
	default:
		logger.ErrorContext(r.Context(), "Unhandled error",
			slog.Any("error", err),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		ErrorResponse(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// WriteJSONResponse encodes the data to JSON and writes the response header and body.
func WriteJSONResponse(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}

	js, err := json.Marshal(data)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to marshal JSON response",
			slog.Any("error", err),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = w.Write(js); err != nil {
		slog.ErrorContext(r.Context(), "Failed to write response body",
			slog.Any("error", err),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	}
}

// DecodeJSONBody reads and decodes a JSON request body safely.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("%w: body contains badly-formed JSON (at character %d)", types.ErrValidation, syntaxError.Offset)

		case errors.Is(err, io.ErrUnexpectedEOF):
			return fmt.Errorf("%w: body contains badly-formed JSON", types.ErrValidation)

		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("%w: body contains incorrect JSON type for field %q", types.ErrValidation, unmarshalTypeError.Field)
			}
			return fmt.Errorf("%w: body contains incorrect JSON type (at character %d)", types.ErrValidation, unmarshalTypeError.Offset)

		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: body must not be empty", types.ErrValidation)

		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
			return fmt.Errorf("%w: body contains unknown key %q", types.ErrValidation, fieldName)

		case errors.As(err, &maxBytesError):
			return fmt.Errorf("%w: body must not be larger than %d bytes", types.ErrValidation, maxBytesError.Limit)

		case errors.As(err, &invalidUnmarshalError):
			panic(fmt.Errorf("developer error: invalid argument passed to json.Unmarshal: %w", err))

		default:
			return fmt.Errorf("%w: error decoding JSON body: %s", types.ErrValidation, err)
		}
	}

	if err = dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: body must only contain a single JSON value", types.ErrValidation)
	}

	return nil
}
