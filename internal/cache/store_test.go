package cache

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nhle/boardsync/internal/logging"
	"github.com/nhle/boardsync/internal/model"
)

func init() {
	logging.Discard()
}

func board(id string) model.Project {
	return model.Project{
		ID:   id,
		Name: "Board " + id,
		Columns: map[string]model.Column{
			"todo": {ID: "todo", Title: "To do", TaskIDs: []string{"t1", "t2"}},
			"done": {ID: "done", Title: "Done", TaskIDs: []string{"t3"}},
		},
		ColumnOrder: []string{"todo", "done"},
		Tasks: map[string]model.Task{
			"t1": {ID: "t1", ProjectID: id, Title: "one"},
			"t2": {ID: "t2", ProjectID: id, Title: "two"},
			"t3": {ID: "t3", ProjectID: id, Title: "three"},
		},
	}
}

func seeded(t *testing.T) *Store {
	t.Helper()
	s := New()
	var p Patch
	p.PutProject(board("p1"))
	p.PutProject(board("p2"))
	p.PutFolder(model.Folder{ID: "f1", Name: "Work", ProjectIDs: []string{"p1"}})
	p.PutFolder(model.Folder{ID: "f2", Name: "Home"})
	p.PutTeam(model.Team{ID: "team1", Name: "Core", ProjectIDs: []string{"p1", "p2"}})
	if err := s.ApplyPatch(p); err != nil {
		t.Fatalf("seeding store: %v", err)
	}
	return s
}

func TestApplyPatchReplacesWholesale(t *testing.T) {
	s := seeded(t)

	p, _ := s.Project("p1")
	p.Name = "Renamed"
	p.Description = ""
	delete(p.Tasks, "t3")
	done := p.Columns["done"]
	done.TaskIDs = nil
	p.Columns["done"] = done

	var patch Patch
	patch.PutProject(p)
	if err := s.ApplyPatch(patch); err != nil {
		t.Fatalf("ApplyPatch() error = %v", err)
	}

	got, ok := s.Project("p1")
	if !ok {
		t.Fatal("project p1 missing after patch")
	}
	if got.Name != "Renamed" {
		t.Errorf("Name = %q, want Renamed", got.Name)
	}
	if _, ok := got.Tasks["t3"]; ok {
		t.Error("task t3 survived a wholesale replace")
	}
}

func TestApplyPatchRejectsInvariantViolations(t *testing.T) {
	tests := []struct {
		name  string
		patch func(s *Store) Patch
	}{
		{
			name: "column order not a permutation",
			patch: func(s *Store) Patch {
				p, _ := s.Project("p1")
				p.ColumnOrder = []string{"todo"}
				var patch Patch
				return *patch.PutProject(p)
			},
		},
		{
			name: "task in two columns",
			patch: func(s *Store) Patch {
				p, _ := s.Project("p1")
				done := p.Columns["done"]
				done.TaskIDs = append(done.TaskIDs, "t1")
				p.Columns["done"] = done
				var patch Patch
				return *patch.PutProject(p)
			},
		},
		{
			name: "task in no column",
			patch: func(s *Store) Patch {
				p, _ := s.Project("p1")
				p.Tasks["t9"] = model.Task{ID: "t9"}
				var patch Patch
				return *patch.PutProject(p)
			},
		},
		{
			name: "project in two folders",
			patch: func(s *Store) Patch {
				var patch Patch
				return *patch.PutFolder(model.Folder{ID: "f2", ProjectIDs: []string{"p1"}})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seeded(t)
			before := s.Snapshot()
			version := s.Version()

			err := s.ApplyPatch(tt.patch(s))
			if !errors.Is(err, ErrInvariant) {
				t.Fatalf("ApplyPatch() error = %v, want ErrInvariant", err)
			}
			if !reflect.DeepEqual(s.Snapshot(), before) {
				t.Error("store changed after a rejected patch")
			}
			if s.Version() != version {
				t.Errorf("Version() = %d, want %d", s.Version(), version)
			}
		})
	}
}

func TestReadsReturnCopies(t *testing.T) {
	s := seeded(t)

	p, _ := s.Project("p1")
	p.ColumnOrder[0] = "mutated"
	todo := p.Columns["todo"]
	todo.TaskIDs[0] = "mutated"

	f, _ := s.Folder("f1")
	f.ProjectIDs[0] = "mutated"

	again, _ := s.Project("p1")
	if again.ColumnOrder[0] != "todo" || again.Columns["todo"].TaskIDs[0] != "t1" {
		t.Error("caller mutation leaked into the stored project")
	}
	f2, _ := s.Folder("f1")
	if f2.ProjectIDs[0] != "p1" {
		t.Error("caller mutation leaked into the stored folder")
	}
}

func TestCaptureRestore(t *testing.T) {
	s := seeded(t)
	keys := NewKeySet(ProjectKey("p1"), ProjectKey("p-new"), FolderKey("f1"))
	before := s.Snapshot()
	saved := s.Capture(keys)

	var patch Patch
	p, _ := s.Project("p1")
	p.Name = "changed"
	patch.PutProject(p)
	patch.PutProject(model.Project{ID: "p-new", Name: "new", Columns: map[string]model.Column{}, Tasks: map[string]model.Task{}})
	patch.PutFolder(model.Folder{ID: "f1", Name: "Work"})
	if err := s.ApplyPatch(patch); err != nil {
		t.Fatalf("ApplyPatch() error = %v", err)
	}

	s.Restore(saved)

	if got := s.Snapshot(); !reflect.DeepEqual(got, before) {
		t.Errorf("Restore() did not revert\n got: %+v\nwant: %+v", got, before)
	}
}

func TestRestoreRepairsFolderConflicts(t *testing.T) {
	s := seeded(t)
	saved := s.Capture(NewKeySet(FolderKey("f1")))

	// A refresh moved p1 into f2 meanwhile.
	s.ReplaceAll(model.Snapshot{
		Projects: map[string]model.Project{"p1": board("p1"), "p2": board("p2")},
		Folders: map[string]model.Folder{
			"f1": {ID: "f1", Name: "Work"},
			"f2": {ID: "f2", Name: "Home", ProjectIDs: []string{"p1"}},
		},
	}, nil)

	s.Restore(saved)

	folders := s.Folders()
	if err := model.CheckFolders(folders); err != nil {
		t.Fatalf("folders violate membership after restore: %v", err)
	}
	if model.FolderOf(folders, "p1") != "f1" {
		t.Errorf("p1 in folder %q, want f1", model.FolderOf(folders, "p1"))
	}
}

func TestReplaceAllKeepsTrackedKeys(t *testing.T) {
	s := seeded(t)

	local, _ := s.Project("p1")
	local.Name = "local edit"
	var patch Patch
	patch.PutProject(local)
	if err := s.ApplyPatch(patch); err != nil {
		t.Fatalf("ApplyPatch() error = %v", err)
	}

	server := board("p1")
	server.Name = "server value"
	res := s.ReplaceAll(model.Snapshot{
		Projects: map[string]model.Project{"p1": server, "p3": board("p3")},
	}, NewKeySet(ProjectKey("p1"), ProjectKey("p-placeholder")))

	got, _ := s.Project("p1")
	if got.Name != "local edit" {
		t.Errorf("kept project Name = %q, want local edit", got.Name)
	}
	if _, ok := s.Project("p2"); ok {
		t.Error("p2 should be gone: absent from snapshot and not kept")
	}
	if _, ok := s.Project("p3"); !ok {
		t.Error("p3 from snapshot missing")
	}
	if _, ok := s.Project("p-placeholder"); ok {
		t.Error("kept key absent locally must stay absent")
	}
	if len(res.Kept) != 2 {
		t.Errorf("Kept = %v, want 2 keys", res.Kept)
	}
}

func TestReplaceAllWithoutFoldersKeepsLocalFolders(t *testing.T) {
	s := seeded(t)

	s.ReplaceAll(model.Snapshot{
		Projects: map[string]model.Project{"p1": board("p1")},
	}, nil)

	if _, ok := s.Folder("f1"); !ok {
		t.Error("local folders dropped by a snapshot that omitted folders")
	}

	s.ReplaceAll(model.Snapshot{
		Projects: map[string]model.Project{"p1": board("p1")},
		Folders:  map[string]model.Folder{},
	}, nil)
	if len(s.Folders()) != 0 {
		t.Errorf("Folders() = %v, want empty after snapshot with empty folders", s.Folders())
	}
}

func TestReplaceAllRepairsInvalidProjects(t *testing.T) {
	s := New()
	broken := board("p1")
	broken.ColumnOrder = []string{"done", "ghost"}
	todo := broken.Columns["todo"]
	todo.TaskIDs = []string{"t1", "t1", "missing"}
	broken.Columns["todo"] = todo

	res := s.ReplaceAll(model.Snapshot{
		Projects: map[string]model.Project{"p1": broken},
		Notifications: []model.Notification{
			{ID: "n1", Message: "hi"},
		},
	}, nil)

	if !reflect.DeepEqual(res.Repaired, []string{"p1"}) {
		t.Errorf("Repaired = %v, want [p1]", res.Repaired)
	}
	got, _ := s.Project("p1")
	if err := model.CheckProject(got); err != nil {
		t.Errorf("repaired project still invalid: %v", err)
	}
	if !reflect.DeepEqual(got.ColumnOrder, []string{"done", "todo"}) {
		t.Errorf("ColumnOrder = %v, want [done todo]", got.ColumnOrder)
	}
	if s.UnreadCount() != 1 {
		t.Errorf("UnreadCount() = %d, want 1", s.UnreadCount())
	}
}

func TestReplaceAllDropsDuplicateFolderMembership(t *testing.T) {
	s := New()
	s.ReplaceAll(model.Snapshot{
		Projects: map[string]model.Project{"p1": board("p1")},
		Folders: map[string]model.Folder{
			"a": {ID: "a", ProjectIDs: []string{"p1"}},
			"b": {ID: "b", ProjectIDs: []string{"p1"}},
		},
	}, nil)

	if err := model.CheckFolders(s.Folders()); err != nil {
		t.Errorf("folders still violate membership: %v", err)
	}
}

func TestSubscribeCoalesces(t *testing.T) {
	s := New()
	for i := 0; i < 3; i++ {
		var p Patch
		p.PutUser(model.User{ID: "u1", Name: "Ann"})
		if err := s.ApplyPatch(p); err != nil {
			t.Fatalf("ApplyPatch() error = %v", err)
		}
	}

	select {
	case <-s.Subscribe():
	default:
		t.Fatal("no change signal after writes")
	}
	select {
	case <-s.Subscribe():
		t.Fatal("signals were not coalesced")
	default:
	}
	if s.Version() != 3 {
		t.Errorf("Version() = %d, want 3", s.Version())
	}
}

func TestClear(t *testing.T) {
	s := seeded(t)
	s.Clear()
	if n := s.Snapshot().EntityCount(); n != 0 {
		t.Errorf("EntityCount() = %d after Clear, want 0", n)
	}
}
