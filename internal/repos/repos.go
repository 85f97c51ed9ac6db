package repos

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// batchSize bounds IN-list sizes on batched reads so a user following many
// courses never produces an unbounded query.
const batchSize = 500

func chunkUUIDs(ids []uuid.UUID, size int) [][]uuid.UUID {
	if size <= 0 {
		size = batchSize
	}
	var chunks [][]uuid.UUID
	for len(ids) > size {
		chunks = append(chunks, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}

// IsUniqueViolation reports whether err is a unique-constraint failure,
// either as gorm's translated error or as the raw postgres 23505 code.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
