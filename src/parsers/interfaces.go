package parsers

import (
	"io"

	"github.com/username/dividendtax/backend/src/models"
)

// StatementParser converts one broker statement file into raw cash-operation
// rows. The second return value is the currency the statement is denominated
// in, as declared by the file itself; empty when the file does not declare
// one.
type StatementParser interface {
	Parse(file io.Reader) ([]models.RawTransaction, string, error)
}
