package tool

// Assemble combines built-in and discovered tools into one list: base in its
// order, then discovered in theirs. Neither input is modified. A name that
// appears twice aborts assembly with *ErrToolAlreadyRegistered.
func Assemble(base, discovered []Registration) ([]Registration, error) {
	out := make([]Registration, 0, len(base)+len(discovered))
	seen := make(map[string]struct{}, cap(out))

	for _, group := range [][]Registration{base, discovered} {
		for _, reg := range group {
			if _, dup := seen[reg.Tool.Name]; dup {
				return nil, &ErrToolAlreadyRegistered{Name: reg.Tool.Name}
			}
			seen[reg.Tool.Name] = struct{}{}
			out = append(out, reg)
		}
	}
	return out, nil
}
