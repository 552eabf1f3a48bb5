package pointer

func FromAny[T any](v T) *T {
	return &v
}

// ValueOr dereferences p, falling back to def when p is nil.
func ValueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

func ToString(p *string) string {
	return ValueOr(p, "")
}

// NonZero returns nil for the zero value of T.
func NonZero[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}
