package document

import (
	"database/sql"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, mongo.ErrNoDocuments)
}
