// Package sqlbuilder composes read-only SELECT statements from typed clauses.
// Values are always bound as parameters; only validated identifiers are ever
// written into the statement text.
package sqlbuilder

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Dialect selects the placeholder syntax.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case SQLite:
		return "sqlite"
	default:
		return "dialect(" + strconv.Itoa(int(d)) + ")"
	}
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ErrInvalidIdentifier is returned when a table or column name is not a plain
// (optionally qualified) SQL identifier.
var ErrInvalidIdentifier = errors.New("sqlbuilder: invalid identifier")

// ValidIdentifier reports whether name may be written into statement text.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

func checkIdentifier(name string) error {
	if !ValidIdentifier(name) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return nil
}

// Clause is a single boolean condition. Clauses are joined with AND.
type Clause interface {
	render(b *binder) (string, error)
}

type binder struct {
	dialect Dialect
	args    []any
}

func (b *binder) bind(v any) string {
	b.args = append(b.args, v)
	if b.dialect == Postgres {
		return "$" + strconv.Itoa(len(b.args))
	}
	return "?"
}

type comparison struct {
	column string
	op     string
	value  any
}

func (c comparison) render(b *binder) (string, error) {
	if err := checkIdentifier(c.column); err != nil {
		return "", err
	}
	return c.column + " " + c.op + " " + b.bind(c.value), nil
}

func Eq(column string, value any) Clause  { return comparison{column, "=", value} }
func Gte(column string, value any) Clause { return comparison{column, ">=", value} }
func Lt(column string, value any) Clause  { return comparison{column, "<", value} }

type caseInsensitiveEq struct {
	column string
	value  string
}

// IEq matches column against value ignoring case and surrounding whitespace.
func IEq(column, value string) Clause {
	return caseInsensitiveEq{column: column, value: value}
}

func (c caseInsensitiveEq) render(b *binder) (string, error) {
	if err := checkIdentifier(c.column); err != nil {
		return "", err
	}
	return "LOWER(TRIM(" + c.column + ")) = LOWER(" + b.bind(strings.TrimSpace(c.value)) + ")", nil
}

type inList struct {
	column string
	values []any
}

// In matches any of values. An empty list matches nothing.
func In(column string, values ...any) Clause {
	return inList{column: column, values: values}
}

func (c inList) render(b *binder) (string, error) {
	if err := checkIdentifier(c.column); err != nil {
		return "", err
	}
	if len(c.values) == 0 {
		return "1 = 0", nil
	}
	marks := make([]string, len(c.values))
	for i, v := range c.values {
		marks[i] = b.bind(v)
	}
	return c.column + " IN (" + strings.Join(marks, ", ") + ")", nil
}

type caseInsensitiveIn struct {
	column string
	values []string
}

// IIn matches any of values ignoring case and surrounding whitespace. An
// empty list matches nothing.
func IIn(column string, values ...string) Clause {
	return caseInsensitiveIn{column: column, values: values}
}

func (c caseInsensitiveIn) render(b *binder) (string, error) {
	if err := checkIdentifier(c.column); err != nil {
		return "", err
	}
	if len(c.values) == 0 {
		return "1 = 0", nil
	}
	marks := make([]string, len(c.values))
	for i, v := range c.values {
		marks[i] = b.bind(strings.ToLower(strings.TrimSpace(v)))
	}
	return "LOWER(TRIM(" + c.column + ")) IN (" + strings.Join(marks, ", ") + ")", nil
}

type inSelect struct {
	column string
	sub    *SelectBuilder
}

// InSelect matches column against the single-column result of sub. Parameter
// numbering continues across the subquery.
func InSelect(column string, sub *SelectBuilder) Clause {
	return inSelect{column: column, sub: sub}
}

func (c inSelect) render(b *binder) (string, error) {
	if err := checkIdentifier(c.column); err != nil {
		return "", err
	}
	if c.sub == nil || len(c.sub.columns) != 1 {
		return "", errors.New("sqlbuilder: subquery must select exactly one column")
	}
	text, err := c.sub.render(b)
	if err != nil {
		return "", err
	}
	return c.column + " IN (" + text + ")", nil
}

// SelectBuilder renders SELECT <columns> FROM <table> [WHERE ...] [ORDER BY ...].
type SelectBuilder struct {
	table   string
	columns []string
	where   []Clause
	orderBy []string
}

// Select starts a statement over table.
func Select(table string, columns ...string) *SelectBuilder {
	return &SelectBuilder{table: table, columns: columns}
}

// Where appends clauses. Nil clauses are skipped.
func (s *SelectBuilder) Where(clauses ...Clause) *SelectBuilder {
	for _, c := range clauses {
		if c != nil {
			s.where = append(s.where, c)
		}
	}
	return s
}

// OrderBy appends ascending sort columns.
func (s *SelectBuilder) OrderBy(columns ...string) *SelectBuilder {
	s.orderBy = append(s.orderBy, columns...)
	return s
}

// Build renders the statement and its bound arguments for dialect d.
func (s *SelectBuilder) Build(d Dialect) (string, []any, error) {
	b := &binder{dialect: d}
	text, err := s.render(b)
	if err != nil {
		return "", nil, err
	}
	return text, b.args, nil
}

func (s *SelectBuilder) render(b *binder) (string, error) {
	if err := checkIdentifier(s.table); err != nil {
		return "", err
	}
	if len(s.columns) == 0 {
		return "", errors.New("sqlbuilder: no columns selected")
	}
	for _, col := range s.columns {
		if err := checkIdentifier(col); err != nil {
			return "", err
		}
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(s.columns, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(s.table)

	if len(s.where) > 0 {
		parts := make([]string, 0, len(s.where))
		for _, c := range s.where {
			text, err := c.render(b)
			if err != nil {
				return "", err
			}
			parts = append(parts, text)
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(parts, " AND "))
	}

	if len(s.orderBy) > 0 {
		for _, col := range s.orderBy {
			if err := checkIdentifier(col); err != nil {
				return "", err
			}
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(s.orderBy, ", "))
	}
	return sb.String(), nil
}
