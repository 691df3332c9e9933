package store

import (
	"testing"

	"github.com/mjholt/crewdeck/internal/database"
	"github.com/mjholt/crewdeck/internal/model"
)

func setupProjectTestDB(t *testing.T) *ProjectStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewProjectStore(db)
}

func TestProjectCreateWithMembers(t *testing.T) {
	ps := setupProjectTestDB(t)

	start := "2026-01-15"
	p, err := ps.Create("Main St Office", "100 Main St", "C-100", model.ProjectActive, &start, nil, []int64{1, 2})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if p.Name != "Main St Office" || p.Status != model.ProjectActive {
		t.Fatalf("got %+v", p)
	}
	if p.StartDate == nil || *p.StartDate != start {
		t.Fatalf("start_date = %v", p.StartDate)
	}
	if p.EndDate != nil {
		t.Fatalf("end_date = %v", p.EndDate)
	}
	if len(p.MemberIDs) != 2 {
		t.Fatalf("members = %v", p.MemberIDs)
	}
}

func TestProjectListForUser(t *testing.T) {
	ps := setupProjectTestDB(t)

	if _, err := ps.Create("Alpha", "", "", model.ProjectActive, nil, nil, []int64{1}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := ps.Create("Beta", "", "", model.ProjectActive, nil, nil, []int64{2}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := ps.Create("Gamma", "", "", model.ProjectOnHold, nil, nil, []int64{1, 2}); err != nil {
		t.Fatalf("create: %v", err)
	}

	projects, err := ps.ListForUser(1)
	if err != nil {
		t.Fatalf("list for user: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected 2 projects for user 1, got %d", len(projects))
	}
	if projects[0].Name != "Alpha" || projects[1].Name != "Gamma" {
		t.Fatalf("got %q, %q", projects[0].Name, projects[1].Name)
	}

	ids, err := ps.ListIDsForUser(2)
	if err != nil {
		t.Fatalf("list ids: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids for user 2, got %v", ids)
	}
}

func TestProjectUpdate(t *testing.T) {
	ps := setupProjectTestDB(t)

	p, err := ps.Create("Main St Office", "", "", model.ProjectActive, nil, nil, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	end := "2026-12-01"
	updated, err := ps.Update(p.ID, "Main St Office", "100 Main St", "C-100", model.ProjectCompleted, nil, &end)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != model.ProjectCompleted {
		t.Errorf("status = %s", updated.Status)
	}
	if updated.EndDate == nil || *updated.EndDate != end {
		t.Errorf("end_date = %v", updated.EndDate)
	}

	missing, err := ps.Update(999, "X", "", "", model.ProjectActive, nil, nil)
	if err != nil {
		t.Fatalf("update missing: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil for missing project")
	}
}

func TestProjectSetMembers(t *testing.T) {
	ps := setupProjectTestDB(t)

	p, err := ps.Create("Main St Office", "", "", model.ProjectActive, nil, nil, []int64{1, 2})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := ps.SetMembers(p.ID, []int64{3}); err != nil {
		t.Fatalf("set members: %v", err)
	}
	got, err := ps.GetByID(p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.MemberIDs) != 1 || got.MemberIDs[0] != 3 {
		t.Fatalf("members = %v", got.MemberIDs)
	}
}
