package repository

import (
	"strings"

	"backend/internal/rpc"

	"gorm.io/gorm"
)

// applySearch narrows a query with a free-text search over the
// caller-specified fields. Fields outside the aggregate's allow-list are
// ignored rather than rejected.
func applySearch(db *gorm.DB, s rpc.Search, allowed map[string]bool) *gorm.DB {
	if s.Term == "" || len(s.Fields) == 0 {
		return db
	}

	conds := make([]string, 0, len(s.Fields))
	args := make([]interface{}, 0, len(s.Fields))
	for _, f := range s.Fields {
		if !allowed[f] {
			continue
		}
		conds = append(conds, f+" LIKE ?")
		args = append(args, "%"+s.Term+"%")
	}
	if len(conds) == 0 {
		return db
	}
	return db.Where(strings.Join(conds, " OR "), args...)
}

// applySort orders a query by a single allow-listed field, falling back to
// newest-first.
func applySort(db *gorm.DB, s rpc.Sort, allowed map[string]bool) *gorm.DB {
	if s.Field != "" && allowed[s.Field] {
		dir := "asc"
		if strings.EqualFold(s.Order, "desc") {
			dir = "desc"
		}
		return db.Order(s.Field + " " + dir)
	}
	return db.Order("created_at desc")
}
