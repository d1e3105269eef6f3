package core

// MaxRows is the largest row count a table may hold.
// Row ids are stored in 32-bit bitmaps on the selection path.
const MaxRows = 1<<32 - 1
