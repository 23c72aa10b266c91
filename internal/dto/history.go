package dto

// ── 历史视图 DTO ──
//
// 班级视图与学生视图是同一合成规则的两种迭代方向，单元格结构完全一致。

// StatusCell 单元格：有效状态 + 原始事实 + 是否人工更正
type StatusCell struct {
	Status         string `json:"status"`
	OriginalStatus string `json:"original_status"`
	IsManual       bool   `json:"is_manual"`
}

// HistoryDay 历史视图中的一个本地日列
type HistoryDay struct {
	ClassDayID string `json:"class_day_id"`
	Date       string `json:"date"` // 本地日键 YYYY-MM-DD
}

// SectionHistoryRow 班级视图中的一行（一位学生 × 本页全部日）
type SectionHistoryRow struct {
	StudentID string       `json:"student_id"`
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
	Cells     []StatusCell `json:"cells"` // 与 Days 同序
}

// SectionHistoryResponse 班级历史视图响应（日倒序分页）
type SectionHistoryResponse struct {
	Days      []HistoryDay        `json:"days"`
	Rows      []SectionHistoryRow `json:"rows"`
	TotalDays int                 `json:"total_days"` // 去重后的本地日总数，供分页用
}

// StudentSectionHistory 学生视图中一个班级的近期网格
type StudentSectionHistory struct {
	SectionID    string       `json:"section_id"`
	SectionTitle string       `json:"section_title"`
	Days         []HistoryDay `json:"days"`
	Cells        []StatusCell `json:"cells"` // 与 Days 同序
}

// StudentHistoryResponse 学生跨班级历史视图响应
type StudentHistoryResponse struct {
	Sections []StudentSectionHistory `json:"sections"`
}
