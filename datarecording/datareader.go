package datarecording

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// QueryParams narrows down and orders a query.
type QueryParams struct {
	// Where is an SQL condition with ? placeholders, such as
	// "Event = ? AND Src = ?".
	Where string
	Args  []any

	// Limit caps the number of returned rows, 0 returns all. Offset is only
	// used together with a limit.
	Limit  int
	Offset int

	// OrderBy lists the sort columns, such as "Time, SendTime DESC".
	OrderBy string
}

// DataReader reads back what a DataRecorder stored.
type DataReader interface {
	// MapTable tells the reader which struct the rows of a table decode
	// into. A table must be mapped before it is queried.
	MapTable(tableName string, sampleEntry any)

	// ListTables returns the names of the mapped tables.
	ListTables() []string

	// Query returns pointers to the decoded rows that match the params, and
	// how many rows match the condition regardless of limit and offset.
	Query(ctx context.Context, tableName string, params QueryParams) (
		results []any,
		totalCount int,
		err error,
	)

	// Close releases the database.
	Close() error
}

type sqliteReader struct {
	db     *sql.DB
	tables map[string]reflect.Type
}

// NewReader opens a recorded file read-only.
func NewReader(dbFilename string) (DataReader, error) {
	db, err := sql.Open("sqlite3", "file:"+dbFilename+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", dbFilename, err)
	}

	return NewReaderWithDB(db), nil
}

// NewReaderWithDB reads from an already opened database.
func NewReaderWithDB(db *sql.DB) DataReader {
	return &sqliteReader{
		db:     db,
		tables: make(map[string]reflect.Type),
	}
}

func (r *sqliteReader) MapTable(tableName string, sampleEntry any) {
	t := reflect.TypeOf(sampleEntry)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	r.tables[tableName] = t
}

func (r *sqliteReader) ListTables() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func (r *sqliteReader) Query(
	ctx context.Context,
	tableName string,
	params QueryParams,
) ([]any, int, error) {
	entryType, found := r.tables[tableName]
	if !found {
		return nil, 0, fmt.Errorf("table %s is not mapped", tableName)
	}

	var total int

	err := r.db.QueryRowContext(ctx,
		buildQuery("COUNT(*)", tableName, QueryParams{Where: params.Where}),
		params.Args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting %s: %w", tableName, err)
	}

	rows, err := r.db.QueryContext(ctx,
		buildQuery("*", tableName, params), params.Args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying %s: %w", tableName, err)
	}
	defer rows.Close()

	entries, err := decodeRows(rows, entryType)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *sqliteReader) Close() error {
	return r.db.Close()
}

func buildQuery(what, table string, p QueryParams) string {
	var b strings.Builder

	fmt.Fprintf(&b, "SELECT %s FROM %s", what, table)

	if p.Where != "" {
		b.WriteString(" WHERE " + p.Where)
	}

	if p.OrderBy != "" {
		b.WriteString(" ORDER BY " + p.OrderBy)
	}

	if p.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d OFFSET %d", p.Limit, max(p.Offset, 0))
	}

	return b.String()
}

// decodeRows scans every row into a new entry. Columns without a field of
// the same name are read and dropped.
func decodeRows(rows *sql.Rows, entryType reflect.Type) ([]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	fieldOf := make([]int, len(columns))
	for i, c := range columns {
		fieldOf[i] = -1

		if f, ok := entryType.FieldByName(c); ok && len(f.Index) == 1 {
			fieldOf[i] = f.Index[0]
		}
	}

	var entries []any

	for rows.Next() {
		entry := reflect.New(entryType)
		targets := make([]any, len(columns))

		for i, field := range fieldOf {
			if field < 0 {
				targets[i] = new(any)
				continue
			}

			targets[i] = entry.Elem().Field(field).Addr().Interface()
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}

		entries = append(entries, entry.Interface())
	}

	return entries, rows.Err()
}
