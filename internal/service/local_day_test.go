package service

import (
	"testing"
	"time"

	"snaproll/backend/internal/model"
)

// ════════════════════════════════════════════════════════════
// LocalDayKey / LocalMidnightUTC 测试
// ════════════════════════════════════════════════════════════

func TestLocalDayKey_OffsetShiftsDay(t *testing.T) {
	// UTC 2025-03-10 23:30
	instant := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)

	cases := []struct {
		name   string
		offset int
		want   string
	}{
		{"UTC", 0, "2025-03-10"},
		{"东八区跨入次日", 8 * 60, "2025-03-11"},
		{"西五区仍是当日", -5 * 60, "2025-03-10"},
		{"半小时偏移", 330, "2025-03-11"}, // UTC+5:30
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := LocalDayKey(instant, tc.offset); got != tc.want {
				t.Errorf("LocalDayKey(offset=%d) = %s, want %s", tc.offset, got, tc.want)
			}
		})
	}
}

func TestLocalDayKey_SameLocalDayAgrees(t *testing.T) {
	offset := -7 * 60 // UTC-7
	// 本地日 2025-05-01 的起点与终点前一刻
	start := time.Date(2025, 5, 1, 7, 0, 0, 0, time.UTC)
	end := time.Date(2025, 5, 2, 6, 59, 59, 0, time.UTC)

	if LocalDayKey(start, offset) != LocalDayKey(end, offset) {
		t.Errorf("同一本地日的首尾瞬时值应得到相同日键: %s vs %s",
			LocalDayKey(start, offset), LocalDayKey(end, offset))
	}
	if LocalDayKey(start, offset) != "2025-05-01" {
		t.Errorf("日键 = %s, want 2025-05-01", LocalDayKey(start, offset))
	}

	// 跨过本地午夜则进入下一键
	next := end.Add(time.Second)
	if LocalDayKey(next, offset) != "2025-05-02" {
		t.Errorf("跨本地午夜后日键 = %s, want 2025-05-02", LocalDayKey(next, offset))
	}
}

func TestLocalMidnightUTC_CanonicalInstant(t *testing.T) {
	offset := 8 * 60 // UTC+8
	instant := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)

	got := LocalMidnightUTC(instant, offset)
	// 东八区本地日 2025-03-11 的 00:00 = UTC 2025-03-10 16:00
	want := time.Date(2025, 3, 10, 16, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("LocalMidnightUTC = %v, want %v", got, want)
	}

	// 规范值自身折算回同一本地日
	if LocalDayKey(got, offset) != "2025-03-11" {
		t.Errorf("规范存储值应落回同一本地日, got %s", LocalDayKey(got, offset))
	}
}

func TestLocalMidnightUTC_Idempotent(t *testing.T) {
	offset := -300 // UTC-5
	instant := time.Date(2025, 11, 20, 14, 45, 0, 0, time.UTC)

	once := LocalMidnightUTC(instant, offset)
	twice := LocalMidnightUTC(once, offset)
	if !once.Equal(twice) {
		t.Errorf("对规范值再折算应不动点: %v vs %v", once, twice)
	}
}

// ════════════════════════════════════════════════════════════
// DedupeClassDaysByLocalKey 测试
// ════════════════════════════════════════════════════════════

func TestDedupeClassDays_KeepsNewestPerKey(t *testing.T) {
	offset := 0
	base := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	// 同一本地日被不同偏移建出两行：老行先建，新行后建
	older := model.ClassDay{ClassDayID: "day-old", Date: base}
	older.CreatedAt = base.Add(9 * time.Hour)
	newer := model.ClassDay{ClassDayID: "day-new", Date: base.Add(2 * time.Hour)}
	newer.CreatedAt = base.Add(10 * time.Hour)
	other := model.ClassDay{ClassDayID: "day-other", Date: base.AddDate(0, 0, -1)}
	other.CreatedAt = base

	deduped := DedupeClassDaysByLocalKey([]model.ClassDay{newer, older, other}, offset)

	if len(deduped) != 2 {
		t.Fatalf("去重后应剩 2 天, got %d", len(deduped))
	}
	if deduped[0].ClassDayID != "day-new" {
		t.Errorf("同键应保留创建更晚的一行, got %s", deduped[0].ClassDayID)
	}
	if deduped[1].ClassDayID != "day-other" {
		t.Errorf("不同键的行不受影响, got %s", deduped[1].ClassDayID)
	}
}

func TestDedupeClassDays_NewestWinsRegardlessOfOrder(t *testing.T) {
	offset := 0
	base := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	older := model.ClassDay{ClassDayID: "day-old", Date: base.Add(3 * time.Hour)}
	older.CreatedAt = base.Add(time.Hour)
	newer := model.ClassDay{ClassDayID: "day-new", Date: base}
	newer.CreatedAt = base.Add(5 * time.Hour)

	// 老行排在前面（date DESC 序不保证 created DESC）
	deduped := DedupeClassDaysByLocalKey([]model.ClassDay{older, newer}, offset)

	if len(deduped) != 1 {
		t.Fatalf("去重后应剩 1 天, got %d", len(deduped))
	}
	if deduped[0].ClassDayID != "day-new" {
		t.Errorf("无论输入顺序都应保留最新创建行, got %s", deduped[0].ClassDayID)
	}
}

func TestDedupeClassDays_NoDuplicatesPassThrough(t *testing.T) {
	offset := 60
	days := []model.ClassDay{
		{ClassDayID: "d3", Date: time.Date(2025, 4, 3, 23, 0, 0, 0, time.UTC)},
		{ClassDayID: "d2", Date: time.Date(2025, 4, 2, 23, 0, 0, 0, time.UTC)},
		{ClassDayID: "d1", Date: time.Date(2025, 4, 1, 23, 0, 0, 0, time.UTC)},
	}

	deduped := DedupeClassDaysByLocalKey(days, offset)
	if len(deduped) != 3 {
		t.Fatalf("无重复时应原样保留, got %d", len(deduped))
	}
	for i := range days {
		if deduped[i].ClassDayID != days[i].ClassDayID {
			t.Errorf("顺序应保持不变, pos %d got %s", i, deduped[i].ClassDayID)
		}
	}
}
