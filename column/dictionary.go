package column

// Dictionary maps categorical levels to dense uint32 codes.
// Codes are assigned in first-seen order and never change once assigned.
type Dictionary struct {
	levels []string
	index  map[string]uint32
}

// NewDictionary creates an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{index: make(map[string]uint32)}
}

// Code returns the code for level, adding it if absent.
func (d *Dictionary) Code(level string) uint32 {
	if code, ok := d.index[level]; ok {
		return code
	}
	code := uint32(len(d.levels))
	d.levels = append(d.levels, level)
	d.index[level] = code
	return code
}

// Lookup returns the code for level without adding it.
func (d *Dictionary) Lookup(level string) (uint32, bool) {
	code, ok := d.index[level]
	return code, ok
}

// Level returns the string for code.
func (d *Dictionary) Level(code uint32) string {
	return d.levels[code]
}

// Levels returns all levels in code order.
func (d *Dictionary) Levels() []string {
	return d.levels
}

// Len returns the number of levels.
func (d *Dictionary) Len() int {
	return len(d.levels)
}

// Clone returns a deep copy.
func (d *Dictionary) Clone() *Dictionary {
	out := &Dictionary{
		levels: append([]string(nil), d.levels...),
		index:  make(map[string]uint32, len(d.index)),
	}
	for k, v := range d.index {
		out.index[k] = v
	}
	return out
}
