package models

// Clone returns a deep copy of d. Mutating the copy never affects d.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{CurrentLibrary: d.CurrentLibrary, Libraries: NewLibraries()}
	if d.Libraries == nil {
		return out
	}
	for p := d.Libraries.Oldest(); p != nil; p = p.Next() {
		out.Libraries.Set(p.Key, p.Value.Clone())
	}
	return out
}

// Clone returns a deep copy of l.
func (l *Library) Clone() *Library {
	if l == nil {
		return nil
	}
	out := NewLibrary(l.Name, l.Icon)
	if l.Categories == nil {
		return out
	}
	for p := l.Categories.Oldest(); p != nil; p = p.Next() {
		out.Categories.Set(p.Key, p.Value.Clone())
	}
	return out
}

// Clone returns a deep copy of c. Links is never nil on the copy.
func (c *Category) Clone() *Category {
	if c == nil {
		return nil
	}
	out := *c
	out.Links = make([]Link, len(c.Links))
	copy(out.Links, c.Links)
	return &out
}
