package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"snaproll/backend/internal/model"
)

// ── 测试辅助 ──

func setupCalendarService() (*calendarService, *testRepos) {
	repos := newTestRepos()
	svc := NewCalendarService(repos.toRepository(), zap.NewNop()).(*calendarService)
	return svc, repos
}

func seedCalendarSection(repos *testRepos) {
	repos.user.users["teacher-1"] = &model.User{UserID: "teacher-1", Role: model.RoleTeacher}
	repos.section.sections["sec-1"] = &model.Section{SectionID: "sec-1", TeacherID: "teacher-1", Title: "Algorithms 101"}
}

// icsFixture 拼一份最小可解析的日历（RFC 5545 要求 CRLF 行尾）
func icsFixture(events ...string) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//snaproll test//EN",
	}
	for i, dtstart := range events {
		lines = append(lines,
			"BEGIN:VEVENT",
			"UID:evt-"+string(rune('a'+i)),
			"DTSTART:"+dtstart,
			"SUMMARY:Lecture",
			"END:VEVENT",
		)
	}
	lines = append(lines, "END:VCALENDAR", "")
	return strings.Join(lines, "\r\n")
}

// ════════════════════════════════════════════════════════════
// ImportSectionCalendar 测试
// ════════════════════════════════════════════════════════════

func TestImportCalendar_CreatesOneDayPerLocalDay(t *testing.T) {
	svc, repos := setupCalendarService()
	seedCalendarSection(repos)

	// 三个事件分布在两个本地日（偏移 0）：6/15 两节课，6/16 一节
	data := icsFixture(
		"20250615T090000Z",
		"20250615T140000Z",
		"20250616T090000Z",
	)

	resp, err := svc.ImportSectionCalendar(context.Background(), "sec-1", "teacher-1", strings.NewReader(data), 0)
	if err != nil {
		t.Fatalf("ImportSectionCalendar: %v", err)
	}
	if resp.Created != 2 || resp.Skipped != 0 {
		t.Errorf("Created=%d Skipped=%d, want 2/0", resp.Created, resp.Skipped)
	}

	// 预建的日：码为空、日期为本地午夜
	days, _ := repos.classDay.ListBySection(context.Background(), "sec-1")
	if len(days) != 2 {
		t.Fatalf("上课日 = %d, want 2", len(days))
	}
	for _, d := range days {
		if d.ActiveCode != nil {
			t.Errorf("预建日不应带签到码")
		}
	}
	want := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	if _, err := repos.classDay.GetBySectionAndDate(context.Background(), "sec-1", want); err != nil {
		t.Errorf("应存在 6/15 的上课日: %v", err)
	}
}

func TestImportCalendar_OffsetShiftsLocalDay(t *testing.T) {
	svc, repos := setupCalendarService()
	seedCalendarSection(repos)

	// UTC 6/15 23:00 在 UTC+8 已是 6/16
	data := icsFixture("20250615T230000Z")

	if _, err := svc.ImportSectionCalendar(context.Background(), "sec-1", "teacher-1", strings.NewReader(data), 480); err != nil {
		t.Fatalf("ImportSectionCalendar: %v", err)
	}

	want := LocalMidnightUTC(time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC), 480)
	if _, err := repos.classDay.GetBySectionAndDate(context.Background(), "sec-1", want); err != nil {
		t.Errorf("上课日应落在 UTC+8 的 6/16: %v", err)
	}
}

func TestImportCalendar_ExistingDaySkipped(t *testing.T) {
	svc, repos := setupCalendarService()
	seedCalendarSection(repos)
	repos.classDay.days["day-1"] = &model.ClassDay{
		ClassDayID: "day-1", SectionID: "sec-1",
		Date: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	}

	data := icsFixture("20250615T090000Z", "20250617T090000Z")

	resp, err := svc.ImportSectionCalendar(context.Background(), "sec-1", "teacher-1", strings.NewReader(data), 0)
	if err != nil {
		t.Fatalf("ImportSectionCalendar: %v", err)
	}
	if resp.Created != 1 || resp.Skipped != 1 {
		t.Errorf("Created=%d Skipped=%d, want 1/1", resp.Created, resp.Skipped)
	}

	// 重复导入幂等：全部跳过
	resp, err = svc.ImportSectionCalendar(context.Background(), "sec-1", "teacher-1", strings.NewReader(data), 0)
	if err != nil {
		t.Fatalf("重复导入: %v", err)
	}
	if resp.Created != 0 || resp.Skipped != 2 {
		t.Errorf("重复导入 Created=%d Skipped=%d, want 0/2", resp.Created, resp.Skipped)
	}
}

func TestImportCalendar_ParseFailure(t *testing.T) {
	svc, repos := setupCalendarService()
	seedCalendarSection(repos)

	_, err := svc.ImportSectionCalendar(context.Background(), "sec-1", "teacher-1", strings.NewReader("this is not a calendar"), 0)
	if !errors.Is(err, ErrCalendarParseFail) {
		t.Errorf("非 ICS 内容应报解析失败, got %v", err)
	}
}

func TestImportCalendar_AuthorizationGuards(t *testing.T) {
	svc, repos := setupCalendarService()
	seedCalendarSection(repos)
	data := icsFixture("20250615T090000Z")

	if _, err := svc.ImportSectionCalendar(context.Background(), "sec-x", "teacher-1", strings.NewReader(data), 0); !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("不存在的班级, got %v", err)
	}
	if _, err := svc.ImportSectionCalendar(context.Background(), "sec-1", "stranger", strings.NewReader(data), 0); !errors.Is(err, ErrNotSectionOwner) {
		t.Errorf("他人班级应拒绝, got %v", err)
	}
}
