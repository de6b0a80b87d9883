package grid

// Path is an ordered list of vertices from start to goal.
type Path []Position

// Equal reports whether two paths visit the same vertices in the same order.
// Length matters: a repeated vertex makes a different path.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy; nil stays nil.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Contains reports whether the path visits pos.
func (p Path) Contains(pos Position) bool {
	for _, v := range p {
		if v == pos {
			return true
		}
	}
	return false
}
