package ability

import (
	"fmt"
	"net/url"
	"strings"

	dnderr "github.com/KirkDiggler/sheet-bot/internal/errors"
)

// DefaultBaseURL is the spreadsheet root the visualization endpoint hangs off
const DefaultBaseURL = "https://docs.google.com/spreadsheets/d"

const (
	nameColumn  = "A"
	valueColumn = "G"
)

// buildQueryURL selects the name and value columns of the character's sheet, keeping
// rows whose lowercased name starts with the lowercased prefix
func buildQueryURL(baseURL, spreadsheetID, characterName, prefix string, limit int) (string, error) {
	literal, err := quoteLiteral(strings.ToLower(prefix))
	if err != nil {
		return "", err
	}

	query := fmt.Sprintf("select %s, %s where lower(%s) starts with %s limit %d",
		nameColumn, valueColumn, nameColumn, literal, limit)

	params := url.Values{}
	params.Set("tq", query)
	params.Set("sheet", characterName)
	params.Set("tqx", "out:csv")

	return fmt.Sprintf("%s/%s/gviz/tq?%s",
		strings.TrimRight(baseURL, "/"), url.PathEscape(spreadsheetID), params.Encode()), nil
}

// quoteLiteral wraps s in whichever quote character it does not contain.
// The query language has no escape sequence inside string literals.
func quoteLiteral(s string) (string, error) {
	switch {
	case !strings.Contains(s, "'"):
		return "'" + s + "'", nil
	case !strings.Contains(s, `"`):
		return `"` + s + `"`, nil
	default:
		return "", dnderr.InvalidArgument("ability name cannot contain both ' and \"").
			WithMeta("ability", s)
	}
}
