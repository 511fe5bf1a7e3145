package postgres

import (
	"fmt"
	"strings"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns a user search term into an ILIKE pattern matching
// any value that contains it literally.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// whereBuilder accumulates AND-ed conditions with numbered placeholders.
type whereBuilder struct {
	conds []string
	args  []interface{}
}

// add appends cond, replacing each "?" with the next $n placeholder.
func (w *whereBuilder) add(cond string, args ...interface{}) {
	for _, arg := range args {
		w.args = append(w.args, arg)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(w.args)), 1)
	}
	w.conds = append(w.conds, cond)
}

func (w *whereBuilder) clause() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// next returns the placeholder following the accumulated arguments.
func (w *whereBuilder) next(offset int) string {
	return fmt.Sprintf("$%d", len(w.args)+offset)
}
