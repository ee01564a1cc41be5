package parsers

import (
	"fmt"

	"github.com/username/dividendtax/backend/src/parsers/xtb"
)

func GetParser(source string) (StatementParser, error) {
	switch source {
	case "xtb":
		return xtb.NewParser(), nil
	default:
		return nil, fmt.Errorf("no parser available for source: %s", source)
	}
}
