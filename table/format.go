package table

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// previewRows is the number of rows String renders.
const previewRows = 10

// String renders the schema and the first rows as an aligned text grid.
func (t *Table) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Table[%d x %d]", t.n, len(t.cols))
	if len(t.key) > 0 {
		fmt.Fprintf(&b, " key=(%s)", strings.Join(t.key, ", "))
	}
	b.WriteByte('\n')

	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	for i, c := range t.cols {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprintf(tw, "%s<%s>", c.Name(), c.Type())
	}
	fmt.Fprintln(tw)
	for r := 0; r < min(t.n, previewRows); r++ {
		for i, c := range t.cols {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, c.Get(r).String())
		}
		fmt.Fprintln(tw)
	}
	_ = tw.Flush()
	if t.n > previewRows {
		fmt.Fprintf(&b, "... %d more rows\n", t.n-previewRows)
	}
	return b.String()
}
