package postgres

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastygo/droptracker/domain"
)

const uniqueViolation = "23505"

// classify maps driver errors onto domain errors. A nil target leaves that
// class of error untouched.
func classify(err error, notFound, conflict *domain.Error) error {
	if err == nil {
		return nil
	}
	if notFound != nil && errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	var pgErr *pgconn.PgError
	if conflict != nil && errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return conflict
	}
	return err
}

func marshalMap(data map[string]string) []byte {
	if len(data) == 0 {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	return b
}

func marshalInts(values []int) []byte {
	if len(values) == 0 {
		return nil
	}
	b, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	return b
}

// decodeInts reads a JSONB integer list. A stored value that does not decode
// is reported as INTERNAL rather than read as empty.
func decodeInts(raw []byte) ([]int, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var values []int
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "corrupt stored list", err)
	}
	return values, nil
}

func decodeMap(raw []byte) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var data map[string]string
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "corrupt stored map", err)
	}
	return data, nil
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
