package scanner

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v4"
)

type Queryer interface {
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
}

// type-safe scanner for pgx.Rows
//
// # example
//
//	type termRow struct {
//		TermId string `sql:"term_id"`
//		Name   string
//	}
//
//	func Terms(ctx context.Context, conn scanner.Queryer) ([]termRow, error) {
//		return scanner.New[termRow]().QueryAll(
//			ctx, conn, `select "term_id", "name" from "term"`,
//		)
//	}
//
// # mapping rule
//
// When T is a struct, each column is mapped into
//
//  1. the field with tag `sql:"column_name"`,
//  2. or, the field named as same as the column,
//  3. or, the field named in CamelCase of the column ("vocabulary_id" -> "VocabularyId").
//
// Otherwise, the query should have exactly one column and it is scanned into T.
type Scanner[T any] interface {
	// scan all rows in pgx.Rows and convert to []T
	ScanAll(pgx.Rows) ([]T, error)

	// scan all rows in response of query.
	QueryAll(context.Context, Queryer, string, ...interface{}) ([]T, error)
}

func New[T any]() Scanner[T] {
	typ := reflect.TypeOf(*new(T))
	if typ.Kind() != reflect.Struct {
		return singleColumn[T]{}
	}

	byName := map[string]int{}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !f.IsExported() {
			continue
		}
		byName[f.Name] = i
	}
	// tags take priority over field names
	for i := 0; i < typ.NumField(); i++ {
		if tag, ok := typ.Field(i).Tag.Lookup("sql"); ok {
			byName["sql:"+tag] = i
		}
	}

	return &structScanner[T]{fields: byName}
}

type structScanner[T any] struct {
	fields map[string]int
}

func camel(s string) string {
	b := &strings.Builder{}
	for _, ss := range strings.Split(s, "_") {
		if len(ss) == 0 {
			continue
		}
		b.WriteString(strings.ToUpper(ss[0:1]))
		b.WriteString(ss[1:])
	}
	return b.String()
}

func (s *structScanner[T]) fieldFor(column string) (int, bool) {
	for _, key := range []string{"sql:" + column, column, camel(column)} {
		if idx, ok := s.fields[key]; ok {
			return idx, true
		}
	}
	return -1, false
}

func (s *structScanner[T]) ScanAll(rows pgx.Rows) ([]T, error) {
	columns := rows.FieldDescriptions()
	indice := make([]int, 0, len(columns))
	for _, fd := range columns {
		idx, ok := s.fieldFor(string(fd.Name))
		if !ok {
			return nil, fmt.Errorf(
				`field for column "%s" is not found in type "%T"`, fd.Name, *new(T),
			)
		}
		indice = append(indice, idx)
	}

	ret := []T{}
	for rows.Next() {
		elem := new(T)
		ev := reflect.ValueOf(elem).Elem()
		dest := make([]interface{}, len(indice))
		for nth, idx := range indice {
			dest[nth] = ev.Field(idx).Addr().Interface()
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		ret = append(ret, *elem)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *structScanner[T]) QueryAll(ctx context.Context, conn Queryer, q string, params ...interface{}) ([]T, error) {
	rows, err := conn.Query(ctx, q, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.ScanAll(rows)
}

type singleColumn[T any] struct{}

func (singleColumn[T]) ScanAll(rows pgx.Rows) ([]T, error) {
	if n := len(rows.FieldDescriptions()); n != 1 {
		return nil, fmt.Errorf("%d columns are queried, but %T takes only one", n, *new(T))
	}

	ret := []T{}
	for rows.Next() {
		elem := new(T)
		if err := rows.Scan(elem); err != nil {
			return nil, err
		}
		ret = append(ret, *elem)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s singleColumn[T]) QueryAll(ctx context.Context, conn Queryer, q string, params ...interface{}) ([]T, error) {
	rows, err := conn.Query(ctx, q, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.ScanAll(rows)
}
