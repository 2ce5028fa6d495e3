package model

// ArrayMove returns a copy of ids with the element at from moved to index
// to. Out-of-range indexes are clamped.
func ArrayMove(ids []string, from, to int) []string {
	out := cloneIDs(ids)
	if out == nil {
		out = []string{}
	}
	if from < 0 || from >= len(out) {
		return out
	}
	id := out[from]
	out = append(out[:from], out[from+1:]...)
	return Insert(out, to, id)
}

// Insert returns a copy of ids with id inserted at index i, clamped to
// [0, len(ids)].
func Insert(ids []string, i int, id string) []string {
	if i < 0 {
		i = 0
	}
	if i > len(ids) {
		i = len(ids)
	}
	out := make([]string, 0, len(ids)+1)
	out = append(out, ids[:i]...)
	out = append(out, id)
	return append(out, ids[i:]...)
}

// Remove returns a copy of ids without any occurrence of id.
func Remove(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
