package dtable

import (
	"github.com/hupe1980/dtable/core"
	"github.com/hupe1980/dtable/resource"
)

// Error kinds. Use errors.Is with these to test the kind of an error returned
// by any package, and errors.As with the detail types below for the fields.
var (
	ErrShape       = core.ErrShape
	ErrType        = core.ErrType
	ErrKey         = core.ErrKey
	ErrReducer     = core.ErrReducer
	ErrJoin        = core.ErrJoin
	ErrMemoryLimit = resource.ErrMemoryLimit
)

type (
	// ShapeError reports a column length mismatch or an out-of-range row.
	ShapeError = core.ShapeError
	// TypeError reports an operation applied to an incompatible column type.
	TypeError = core.TypeError
	// KeyError reports an absent column or a key operation on an unkeyed table.
	KeyError = core.KeyError
	// ReducerError reports a reducer failure for one group.
	ReducerError = core.ReducerError
	// JoinError reports absent or mismatched join columns.
	JoinError = core.JoinError
)
