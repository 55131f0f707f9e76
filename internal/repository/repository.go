// Package repository reads and writes the shop collections in ScyllaDB.
//
// Scylla only filters efficiently on keys, so equality filters on other
// columns are sent with ALLOW FILTERING, and ordering by a named column
// happens in Go after the read.
package repository

import (
	"errors"
	"fmt"
	"math/big"
	"slices"
	"strings"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/inf.v0"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// Filter is an equality condition on one column.
type Filter struct {
	Column string
	Value  any
}

func Eq(column string, value any) Filter {
	return Filter{Column: column, Value: value}
}

// selectCQL builds SELECT <columns> FROM <table> [WHERE a = ? AND ...].
func selectCQL(table string, columns []string, filters []Filter) (string, []any) {
	stmt := "SELECT " + strings.Join(columns, ", ") + " FROM " + table
	where, args := whereClause(filters)
	return stmt + where, args
}

// countCQL builds SELECT COUNT(*) FROM <table> [WHERE ...].
func countCQL(table string, filters []Filter) (string, []any) {
	where, args := whereClause(filters)
	return "SELECT COUNT(*) FROM " + table + where, args
}

func whereClause(filters []Filter) (string, []any) {
	if len(filters) == 0 {
		return "", nil
	}
	conds := make([]string, 0, len(filters))
	args := make([]any, 0, len(filters))
	for _, f := range filters {
		conds = append(conds, f.Column+" = ?")
		args = append(args, f.Value)
	}
	return " WHERE " + strings.Join(conds, " AND ") + " ALLOW FILTERING", args
}

// insertCQL builds INSERT INTO <table> (<columns>) VALUES (?, ...).
func insertCQL(table string, columns []string) string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return "INSERT INTO " + table + " (" + strings.Join(columns, ", ") + ") VALUES (" + marks + ")"
}

// SortDirection of an in-Go ordering.
type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

// sortStable orders items by key with ties kept in read order.
func sortStable[T any, K int | int64 | string](items []T, key func(T) K, dir SortDirection) {
	slices.SortStableFunc(items, func(a, b T) int {
		ka, kb := key(a), key(b)
		c := 0
		switch {
		case ka < kb:
			c = -1
		case ka > kb:
			c = 1
		}
		if dir == Descending {
			c = -c
		}
		return c
	})
}

func notFound(err error, what, id string) error {
	if errors.Is(err, gocql.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("%s %s: %w", what, id, err)
}

// checkID rejects keys that can never match a uuid primary key, so a
// malformed id in a URL reads as missing instead of a driver error.
func checkID(what, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%s %q: %w", what, id, ErrNotFound)
	}
	return nil
}

func toDec(d decimal.Decimal) *inf.Dec {
	return inf.NewDecBig(d.Coefficient(), inf.Scale(-d.Exponent()))
}

func toDecPtr(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return toDec(*d)
}

func fromDec(d *inf.Dec) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(new(big.Int).Set(d.UnscaledBig()), -int32(d.Scale()))
}

func fromDecPtr(d *inf.Dec) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := fromDec(d)
	return &v
}
