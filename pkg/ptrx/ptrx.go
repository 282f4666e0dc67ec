package ptrx

// Of returns a pointer to v.
func Of[T any](v T) *T {
	return &v
}

func String(s string) *string    { return &s }
func Int(i int) *int             { return &i }
func Float64(f float64) *float64 { return &f }
func Bool(b bool) *bool          { return &b }

// Value dereferences p, returning the zero value for nil.
func Value[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// ValueOr dereferences p, returning def for nil.
func ValueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// NonEmpty returns nil for the empty string and a pointer otherwise.
func NonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
