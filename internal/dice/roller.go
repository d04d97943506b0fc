package dice

//go:generate mockgen -destination=mock/mock_roller.go -package=mockdice -source=roller.go

import (
	"fmt"
	"strconv"
	"strings"
)

// RollResult is the outcome of one Roll call
type RollResult struct {
	Total int
	Rolls []int
	Bonus int
	Count int
	Sides int
}

// String renders the result as the compact form used in chat, e.g. "**17** : [8,9]"
func (r *RollResult) String() string {
	faces := make([]string, len(r.Rolls))
	for i, roll := range r.Rolls {
		faces[i] = strconv.Itoa(roll)
	}
	return fmt.Sprintf("**%d** : [%s]", r.Total, strings.Join(faces, ","))
}

// Roller provides an interface for rolling dice
// This allows us to inject different implementations for testing
type Roller interface {
	// Roll rolls count dice with the given sides and adds a bonus
	Roll(count, sides, bonus int) (*RollResult, error)
}
