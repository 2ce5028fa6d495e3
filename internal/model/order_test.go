package model

import (
	"reflect"
	"testing"
)

func TestArrayMove(t *testing.T) {
	tests := []struct {
		name     string
		ids      []string
		from, to int
		want     []string
	}{
		{name: "last to first", ids: []string{"c1", "c2", "c3"}, from: 2, to: 0, want: []string{"c3", "c1", "c2"}},
		{name: "first to last", ids: []string{"c1", "c2", "c3"}, from: 0, to: 2, want: []string{"c2", "c3", "c1"}},
		{name: "same index", ids: []string{"c1", "c2"}, from: 1, to: 1, want: []string{"c1", "c2"}},
		{name: "target clamped", ids: []string{"c1", "c2"}, from: 0, to: 9, want: []string{"c2", "c1"}},
		{name: "source out of range", ids: []string{"c1"}, from: 4, to: 0, want: []string{"c1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := append([]string(nil), tt.ids...)
			got := ArrayMove(tt.ids, tt.from, tt.to)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ArrayMove() = %v, want %v", got, tt.want)
			}
			if !reflect.DeepEqual(tt.ids, orig) {
				t.Errorf("ArrayMove() modified its input: %v", tt.ids)
			}
		})
	}
}

func TestInsertAndRemove(t *testing.T) {
	ids := []string{"a", "b"}
	if got := Insert(ids, 1, "x"); !reflect.DeepEqual(got, []string{"a", "x", "b"}) {
		t.Errorf("Insert() = %v", got)
	}
	if got := Insert(ids, -3, "x"); !reflect.DeepEqual(got, []string{"x", "a", "b"}) {
		t.Errorf("Insert() negative = %v", got)
	}
	if got := Insert(nil, 0, "x"); !reflect.DeepEqual(got, []string{"x"}) {
		t.Errorf("Insert() into nil = %v", got)
	}
	if got := Remove([]string{"a", "b", "a"}, "a"); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("Remove() = %v", got)
	}
}
