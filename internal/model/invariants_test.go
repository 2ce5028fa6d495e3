package model

import (
	"reflect"
	"testing"
)

func sampleProject() Project {
	return Project{
		ID: "p1",
		Columns: map[string]Column{
			"a": {ID: "a", TaskIDs: []string{"t1"}},
			"b": {ID: "b", TaskIDs: []string{"t2"}},
		},
		ColumnOrder: []string{"a", "b"},
		Tasks: map[string]Task{
			"t1": {ID: "t1"},
			"t2": {ID: "t2"},
		},
	}
}

func TestCheckProject(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Project)
		wantErr bool
	}{
		{name: "valid", mutate: func(p *Project) {}},
		{name: "empty project", mutate: func(p *Project) {
			*p = Project{ID: "p1"}
		}},
		{name: "missing column in order", wantErr: true, mutate: func(p *Project) {
			p.ColumnOrder = []string{"a"}
		}},
		{name: "unknown column in order", wantErr: true, mutate: func(p *Project) {
			p.ColumnOrder = []string{"a", "z"}
		}},
		{name: "duplicate column in order", wantErr: true, mutate: func(p *Project) {
			p.ColumnOrder = []string{"a", "a"}
		}},
		{name: "task listed twice", wantErr: true, mutate: func(p *Project) {
			b := p.Columns["b"]
			b.TaskIDs = append(b.TaskIDs, "t1")
			p.Columns["b"] = b
		}},
		{name: "unknown task", wantErr: true, mutate: func(p *Project) {
			b := p.Columns["b"]
			b.TaskIDs = append(b.TaskIDs, "ghost")
			p.Columns["b"] = b
		}},
		{name: "orphan task", wantErr: true, mutate: func(p *Project) {
			p.Tasks["t3"] = Task{ID: "t3"}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := sampleProject()
			tt.mutate(&p)
			err := CheckProject(p)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckProject() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckFolders(t *testing.T) {
	ok := map[string]Folder{
		"f1": {ID: "f1", ProjectIDs: []string{"p1", "p2"}},
		"f2": {ID: "f2", ProjectIDs: []string{"p3"}},
	}
	if err := CheckFolders(ok); err != nil {
		t.Errorf("CheckFolders() error = %v", err)
	}

	dup := map[string]Folder{
		"f1": {ID: "f1", ProjectIDs: []string{"p1"}},
		"f2": {ID: "f2", ProjectIDs: []string{"p1"}},
	}
	if err := CheckFolders(dup); err == nil {
		t.Error("CheckFolders() accepted a project in two folders")
	}

	twice := map[string]Folder{"f1": {ID: "f1", ProjectIDs: []string{"p1", "p1"}}}
	if err := CheckFolders(twice); err == nil {
		t.Error("CheckFolders() accepted a project listed twice in one folder")
	}
}

func TestNormalizeProject(t *testing.T) {
	p := sampleProject()
	if NormalizeProject(&p) {
		t.Error("NormalizeProject() reported a change on a valid project")
	}

	p.Tasks["t3"] = Task{ID: "t3"}
	p.ColumnOrder = []string{"b", "b", "ghost"}
	if !NormalizeProject(&p) {
		t.Fatal("NormalizeProject() reported no change on an invalid project")
	}
	if err := CheckProject(p); err != nil {
		t.Fatalf("project invalid after normalize: %v", err)
	}
	if !reflect.DeepEqual(p.ColumnOrder, []string{"b", "a"}) {
		t.Errorf("ColumnOrder = %v, want [b a]", p.ColumnOrder)
	}
	if got := p.Columns["b"].TaskIDs; !reflect.DeepEqual(got, []string{"t2", "t3"}) {
		t.Errorf("first column tasks = %v, want [t2 t3]", got)
	}

	noColumns := Project{ID: "p2", Tasks: map[string]Task{"t1": {ID: "t1"}}}
	NormalizeProject(&noColumns)
	if len(noColumns.Tasks) != 0 {
		t.Errorf("tasks = %v, want none when the project has no columns", noColumns.Tasks)
	}
}

func TestProjectCloneIsDeep(t *testing.T) {
	p := sampleProject()
	c := p.Clone()
	c.ColumnOrder[0] = "x"
	col := c.Columns["a"]
	col.TaskIDs[0] = "x"
	c.Tasks["t1"] = Task{ID: "x"}

	if p.ColumnOrder[0] != "a" || p.Columns["a"].TaskIDs[0] != "t1" || p.Tasks["t1"].ID != "t1" {
		t.Error("Clone() shares memory with the original")
	}
}

func TestColumnOf(t *testing.T) {
	p := sampleProject()
	if col, ok := p.ColumnOf("t2"); !ok || col != "b" {
		t.Errorf("ColumnOf(t2) = %q, %v; want b, true", col, ok)
	}
	if _, ok := p.ColumnOf("ghost"); ok {
		t.Error("ColumnOf(ghost) found a column")
	}
}
