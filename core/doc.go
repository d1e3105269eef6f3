// Package core holds leaf types shared by every dtable package.
//
// Error kinds are typed structs that match a package sentinel through errors.Is:
//
//	var ke *core.KeyError
//	if errors.As(err, &ke) {
//	    fmt.Println("missing column", ke.Column)
//	}
//	if errors.Is(err, core.ErrKey) { ... }
package core
