package form

import (
	"testing"
	"time"

	"github.com/nhle/boardsync/internal/model"
)

func TestValidateOptionalDate(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"", false},
		{"  ", false},
		{"2026-10-16", false},
		{"16/10/2026", true},
		{"tomorrow", true},
	}
	for _, tt := range tests {
		if err := validateOptionalDate(tt.in); (err != nil) != tt.wantErr {
			t.Errorf("validateOptionalDate(%q) = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestValidateRequired(t *testing.T) {
	v := validateRequired("Name")
	if err := v(" \t"); err == nil {
		t.Error("blank name accepted")
	}
	if err := v("Backlog"); err != nil {
		t.Errorf("valid name rejected: %v", err)
	}
}

func TestEditTaskSubmitKeepsOtherFields(t *testing.T) {
	due := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	m := New(80, 24)
	m.StartTask("c1", model.Task{
		ID:       "t1",
		Title:    "Old",
		Priority: model.PriorityLow,
		DueDate:  &due,
		Tags:     []string{"infra"},
	})
	if m.purpose != EditTask {
		t.Fatalf("purpose = %v, want EditTask", m.purpose)
	}
	if m.fb.dueDate != "2026-01-02" {
		t.Errorf("due date field = %q", m.fb.dueDate)
	}

	m.fb.name = "  New title "
	m.fb.dueDate = ""
	msg, ok := m.handleSubmit()().(SubmittedMsg)
	if !ok {
		t.Fatal("submit did not produce a SubmittedMsg")
	}
	if msg.Target != "c1" || msg.Task.ID != "t1" || msg.Task.Title != "New title" {
		t.Errorf("submitted %+v", msg)
	}
	if msg.Task.DueDate != nil {
		t.Errorf("cleared due date came back as %v", msg.Task.DueDate)
	}
	if len(msg.Task.Tags) != 1 || msg.Task.Priority != model.PriorityLow {
		t.Errorf("untouched fields changed: %+v", msg.Task)
	}
}

func TestNewTaskDefaults(t *testing.T) {
	m := New(80, 24)
	m.StartTask("c2", model.Task{})
	if m.purpose != NewTask || m.fb.priority != model.PriorityMedium {
		t.Errorf("purpose %v priority %q", m.purpose, m.fb.priority)
	}
	if !m.Active() {
		t.Error("form not active after StartTask")
	}
	m.Close()
	if m.Active() {
		t.Error("form still active after Close")
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"ana@example.com", false},
		{"  bob@example.org ", false},
		{"", true},
		{"bob", true},
		{"bob@", true},
	}
	for _, tt := range tests {
		if err := validateEmail(tt.in); (err != nil) != tt.wantErr {
			t.Errorf("validateEmail(%q) = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestTeamSubmit(t *testing.T) {
	m := New(80, 24)
	m.StartTeam(model.Team{ID: "tm1", Name: "Core", Description: "platform"})
	if m.purpose != EditTeam || m.target != "tm1" {
		t.Fatalf("purpose %v target %q", m.purpose, m.target)
	}

	m.fb.name = " Core team "
	m.fb.description = " platform and infra\n"
	msg := m.handleSubmit()().(SubmittedMsg)
	if msg.Name != "Core team" || msg.Description != "platform and infra" || msg.Target != "tm1" {
		t.Errorf("submitted %+v", msg)
	}

	m.StartTeam(model.Team{})
	if m.purpose != NewTeam || m.fb.name != "" || m.fb.description != "" {
		t.Errorf("new team form not reset: purpose %v fb %+v", m.purpose, *m.fb)
	}
}
