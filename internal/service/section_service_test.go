package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"snaproll/backend/internal/dto"
	"snaproll/backend/internal/model"
)

// ── 测试辅助 ──

func setupSectionService() (SectionService, *testRepos) {
	repos := newTestRepos()
	svc := NewSectionService(repos.toRepository(), zap.NewNop())
	repos.user.users["teacher-1"] = &model.User{
		UserID: "teacher-1", Role: model.RoleTeacher,
		Email: "t@example.edu", FirstName: "Ada", LastName: "Teacher",
	}
	return svc, repos
}

// ════════════════════════════════════════════════════════════
// CRUD 测试
// ════════════════════════════════════════════════════════════

func TestSection_CreateAndGet(t *testing.T) {
	svc, _ := setupSectionService()
	ctx := context.Background()

	created, err := svc.Create(ctx, &dto.CreateSectionRequest{Title: "Algorithms 101"}, "teacher-1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Theme != "default" {
		t.Errorf("未指定主题应回落 default, got %s", created.Theme)
	}

	got, err := svc.GetByID(ctx, created.ID, "teacher-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "Algorithms 101" || got.TeacherID != "teacher-1" {
		t.Errorf("班级信息不符: %+v", got)
	}
}

func TestSection_UpdatePartial(t *testing.T) {
	svc, _ := setupSectionService()
	ctx := context.Background()

	created, _ := svc.Create(ctx, &dto.CreateSectionRequest{Title: "Old", Theme: "dark"}, "teacher-1")

	newTitle := "New Title"
	updated, err := svc.Update(ctx, created.ID, "teacher-1", &dto.UpdateSectionRequest{Title: &newTitle})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "New Title" {
		t.Errorf("标题未更新: %s", updated.Title)
	}
	if updated.Theme != "dark" {
		t.Errorf("未传的字段不应被改动: %s", updated.Theme)
	}
}

func TestSection_OwnershipEnforced(t *testing.T) {
	svc, repos := setupSectionService()
	repos.user.users["teacher-2"] = &model.User{UserID: "teacher-2", Role: model.RoleTeacher}
	ctx := context.Background()

	created, _ := svc.Create(ctx, &dto.CreateSectionRequest{Title: "Mine"}, "teacher-1")

	if _, err := svc.GetByID(ctx, created.ID, "teacher-2"); !errors.Is(err, ErrNotSectionOwner) {
		t.Errorf("他人查看: got %v", err)
	}
	if err := svc.Delete(ctx, created.ID, "teacher-2"); !errors.Is(err, ErrNotSectionOwner) {
		t.Errorf("他人删除: got %v", err)
	}
	if _, err := svc.GetByID(ctx, "no-such", "teacher-1"); !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("不存在: got %v", err)
	}
}

// ════════════════════════════════════════════════════════════
// 花名册测试
// ════════════════════════════════════════════════════════════

func TestEnroll_ByEmailWithRoleCheck(t *testing.T) {
	svc, repos := setupSectionService()
	ctx := context.Background()

	created, _ := svc.Create(ctx, &dto.CreateSectionRequest{Title: "Algo"}, "teacher-1")
	repos.user.users["student-1"] = &model.User{
		UserID: "student-1", Role: model.RoleStudent,
		Email: "sam@example.edu", FirstName: "Sam", LastName: "Wu",
	}

	// 邮箱大小写不敏感
	entry, err := svc.Enroll(ctx, created.ID, "teacher-1", "SAM@Example.EDU")
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if entry.StudentID != "student-1" {
		t.Errorf("名册条目 = %+v", entry)
	}

	// 重复加入
	if _, err := svc.Enroll(ctx, created.ID, "teacher-1", "sam@example.edu"); !errors.Is(err, ErrAlreadyEnrolled) {
		t.Errorf("重复加入: got %v", err)
	}
	// 不存在的邮箱
	if _, err := svc.Enroll(ctx, created.ID, "teacher-1", "ghost@example.edu"); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("不存在邮箱: got %v", err)
	}
	// 教师账号不能作为学生加入
	if _, err := svc.Enroll(ctx, created.ID, "teacher-1", "t@example.edu"); !errors.Is(err, ErrNotAStudent) {
		t.Errorf("教师账号: got %v", err)
	}
}

func TestEnroll_RecordsEnrollmentInstant(t *testing.T) {
	svc, repos := setupSectionService()
	ctx := context.Background()

	created, _ := svc.Create(ctx, &dto.CreateSectionRequest{Title: "Algo"}, "teacher-1")
	repos.user.users["student-1"] = &model.User{
		UserID: "student-1", Role: model.RoleStudent, Email: "sam@example.edu",
	}

	before := time.Now()
	if _, err := svc.Enroll(ctx, created.ID, "teacher-1", "sam@example.edu"); err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	e, err := repos.enrollment.Get(ctx, created.ID, "student-1")
	if err != nil {
		t.Fatalf("选课关系未落库: %v", err)
	}
	// 入班时刻此后是"当日是否在班"的权威判据，不得为零值
	if e.CreatedAt.Before(before.Add(-time.Minute)) {
		t.Errorf("入班时刻异常: %v", e.CreatedAt)
	}
}

func TestUnenrollAndRoster(t *testing.T) {
	svc, repos := setupSectionService()
	ctx := context.Background()

	created, _ := svc.Create(ctx, &dto.CreateSectionRequest{Title: "Algo"}, "teacher-1")
	for _, u := range []struct{ id, email string }{
		{"student-1", "a@example.edu"},
		{"student-2", "b@example.edu"},
	} {
		repos.user.users[u.id] = &model.User{UserID: u.id, Role: model.RoleStudent, Email: u.email}
		if _, err := svc.Enroll(ctx, created.ID, "teacher-1", u.email); err != nil {
			t.Fatalf("Enroll %s: %v", u.id, err)
		}
	}

	if err := svc.Unenroll(ctx, created.ID, "teacher-1", "student-1"); err != nil {
		t.Fatalf("Unenroll: %v", err)
	}

	roster, err := svc.Roster(ctx, created.ID, "teacher-1")
	if err != nil {
		t.Fatalf("Roster: %v", err)
	}
	if len(roster) != 1 || roster[0].StudentID != "student-2" {
		t.Errorf("名册 = %+v", roster)
	}
}
