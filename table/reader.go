package table

import (
	"github.com/hupe1980/dtable/column"
)

// ColumnReader is the read-only view of one column.
type ColumnReader interface {
	Name() string
	Type() column.Type
	Len() int
	Get(i int) column.Value
	IsMissing(i int) bool
}

// Reader is the narrow read-only tabular interface. Consumers that only
// display or export data should accept a Reader rather than *Table.
type Reader interface {
	Names() []string
	NumRows() int
	Col(name string) (ColumnReader, error)
}

var _ Reader = (*Table)(nil)

// Col returns a read-only view of the named column.
func (t *Table) Col(name string) (ColumnReader, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	return c, nil
}
