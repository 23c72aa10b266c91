package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"snaproll/backend/internal/model"
	"snaproll/backend/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("user-%d", len(m.users)+1)
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByIDs(_ context.Context, ids []string) ([]model.User, error) {
	var result []model.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

// ── Mock SectionRepository ──

type mockSectionRepo struct {
	sections map[string]*model.Section
}

func newMockSectionRepo() *mockSectionRepo {
	return &mockSectionRepo{sections: make(map[string]*model.Section)}
}

func (m *mockSectionRepo) Create(_ context.Context, section *model.Section) error {
	if section.SectionID == "" {
		section.SectionID = fmt.Sprintf("sec-%d", len(m.sections)+1)
	}
	m.sections[section.SectionID] = section
	return nil
}

func (m *mockSectionRepo) GetByID(_ context.Context, id string) (*model.Section, error) {
	if s, ok := m.sections[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSectionRepo) ListByTeacher(_ context.Context, teacherID string) ([]model.Section, error) {
	var result []model.Section
	for _, s := range m.sections {
		if s.TeacherID == teacherID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSectionRepo) Update(_ context.Context, section *model.Section) error {
	m.sections[section.SectionID] = section
	return nil
}

func (m *mockSectionRepo) Delete(_ context.Context, id string) error {
	delete(m.sections, id)
	return nil
}

// ── Mock EnrollmentRepository ──

type mockEnrollmentRepo struct {
	enrollments []model.Enrollment
}

func newMockEnrollmentRepo() *mockEnrollmentRepo {
	return &mockEnrollmentRepo{}
}

func (m *mockEnrollmentRepo) Create(_ context.Context, enrollment *model.Enrollment) error {
	for _, e := range m.enrollments {
		if e.SectionID == enrollment.SectionID && e.StudentID == enrollment.StudentID {
			return gorm.ErrDuplicatedKey
		}
	}
	if enrollment.EnrollmentID == "" {
		enrollment.EnrollmentID = fmt.Sprintf("enr-%d", len(m.enrollments)+1)
	}
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = time.Now()
	}
	m.enrollments = append(m.enrollments, *enrollment)
	return nil
}

func (m *mockEnrollmentRepo) Get(_ context.Context, sectionID, studentID string) (*model.Enrollment, error) {
	for i := range m.enrollments {
		if m.enrollments[i].SectionID == sectionID && m.enrollments[i].StudentID == studentID {
			return &m.enrollments[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) ListBySection(_ context.Context, sectionID string) ([]model.Enrollment, error) {
	var result []model.Enrollment
	for _, e := range m.enrollments {
		if e.SectionID == sectionID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockEnrollmentRepo) ListByStudent(_ context.Context, studentID string) ([]model.Enrollment, error) {
	var result []model.Enrollment
	for _, e := range m.enrollments {
		if e.StudentID == studentID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockEnrollmentRepo) CountBySection(_ context.Context, sectionID string) (int64, error) {
	var n int64
	for _, e := range m.enrollments {
		if e.SectionID == sectionID {
			n++
		}
	}
	return n, nil
}

func (m *mockEnrollmentRepo) Delete(_ context.Context, sectionID, studentID string) error {
	for i, e := range m.enrollments {
		if e.SectionID == sectionID && e.StudentID == studentID {
			m.enrollments = append(m.enrollments[:i], m.enrollments[i+1:]...)
			return nil
		}
	}
	return nil
}

// ── Mock ClassDayRepository ──

type mockClassDayRepo struct {
	days map[string]*model.ClassDay
}

func newMockClassDayRepo() *mockClassDayRepo {
	return &mockClassDayRepo{days: make(map[string]*model.ClassDay)}
}

func (m *mockClassDayRepo) Create(_ context.Context, day *model.ClassDay) error {
	for _, d := range m.days {
		if d.SectionID == day.SectionID && d.Date.Equal(day.Date) {
			return gorm.ErrDuplicatedKey
		}
	}
	if day.ClassDayID == "" {
		day.ClassDayID = fmt.Sprintf("day-%d", len(m.days)+1)
	}
	if day.CreatedAt.IsZero() {
		day.CreatedAt = time.Now()
	}
	m.days[day.ClassDayID] = day
	return nil
}

func (m *mockClassDayRepo) GetByID(_ context.Context, id string) (*model.ClassDay, error) {
	if d, ok := m.days[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassDayRepo) GetBySectionAndDate(_ context.Context, sectionID string, date time.Time) (*model.ClassDay, error) {
	for _, d := range m.days {
		if d.SectionID == sectionID && d.Date.Equal(date) {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassDayRepo) FindByActiveCode(_ context.Context, code string, now time.Time) (*model.ClassDay, error) {
	for _, d := range m.days {
		if d.ActiveCode != nil && *d.ActiveCode == code && d.CodeExpiresAt != nil && d.CodeExpiresAt.After(now) {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassDayRepo) UpdateCode(_ context.Context, classDayID string, code *string, expiresAt *time.Time) error {
	d, ok := m.days[classDayID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	d.ActiveCode = code
	d.CodeExpiresAt = expiresAt
	return nil
}

func (m *mockClassDayRepo) ListBySection(_ context.Context, sectionID string) ([]model.ClassDay, error) {
	var result []model.ClassDay
	for _, d := range m.days {
		if d.SectionID == sectionID {
			result = append(result, *d)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *mockClassDayRepo) LatestBefore(_ context.Context, sectionID string, cutoff time.Time) (*model.ClassDay, error) {
	var latest *model.ClassDay
	for _, d := range m.days {
		if d.SectionID != sectionID || !d.Date.Before(cutoff) {
			continue
		}
		if latest == nil || d.Date.After(latest.Date) {
			latest = d
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

// ── Mock AttendanceRecordRepository ──

type mockAttendanceRecordRepo struct {
	records map[string]*model.AttendanceRecord // key: classDayID|studentID
}

func newMockAttendanceRecordRepo() *mockAttendanceRecordRepo {
	return &mockAttendanceRecordRepo{records: make(map[string]*model.AttendanceRecord)}
}

func recordKey(classDayID, studentID string) string {
	return classDayID + "|" + studentID
}

func (m *mockAttendanceRecordRepo) CreateIfAbsent(_ context.Context, record *model.AttendanceRecord) (bool, error) {
	key := recordKey(record.ClassDayID, record.StudentID)
	if _, ok := m.records[key]; ok {
		return false, nil
	}
	if record.AttendanceRecordID == "" {
		record.AttendanceRecordID = fmt.Sprintf("rec-%d", len(m.records)+1)
	}
	m.records[key] = record
	return true, nil
}

func (m *mockAttendanceRecordRepo) BatchCreateIfAbsent(ctx context.Context, records []model.AttendanceRecord) (int64, error) {
	var created int64
	for i := range records {
		ok, err := m.CreateIfAbsent(ctx, &records[i])
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}

func (m *mockAttendanceRecordRepo) Get(_ context.Context, classDayID, studentID string) (*model.AttendanceRecord, error) {
	if r, ok := m.records[recordKey(classDayID, studentID)]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRecordRepo) ListByClassDayIDs(_ context.Context, classDayIDs []string) ([]model.AttendanceRecord, error) {
	wanted := make(map[string]bool, len(classDayIDs))
	for _, id := range classDayIDs {
		wanted[id] = true
	}
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if wanted[r.ClassDayID] {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockAttendanceRecordRepo) ListByStudentAndClassDayIDs(_ context.Context, studentID string, classDayIDs []string) ([]model.AttendanceRecord, error) {
	wanted := make(map[string]bool, len(classDayIDs))
	for _, id := range classDayIDs {
		wanted[id] = true
	}
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if r.StudentID == studentID && wanted[r.ClassDayID] {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockAttendanceRecordRepo) CountByClassDayAndStatus(_ context.Context, classDayID, status string) (int64, error) {
	var n int64
	for _, r := range m.records {
		if r.ClassDayID == classDayID && r.Status == status {
			n++
		}
	}
	return n, nil
}

// ── Mock ManualStatusRepository ──

type mockManualStatusRepo struct {
	changes map[string]*model.ManualStatusChange // key: classDayID|studentID
}

func newMockManualStatusRepo() *mockManualStatusRepo {
	return &mockManualStatusRepo{changes: make(map[string]*model.ManualStatusChange)}
}

func (m *mockManualStatusRepo) Upsert(_ context.Context, change *model.ManualStatusChange) error {
	if change.ManualStatusChangeID == "" {
		change.ManualStatusChangeID = fmt.Sprintf("msc-%d", len(m.changes)+1)
	}
	m.changes[recordKey(change.ClassDayID, change.StudentID)] = change
	return nil
}

func (m *mockManualStatusRepo) Get(_ context.Context, classDayID, studentID string) (*model.ManualStatusChange, error) {
	if c, ok := m.changes[recordKey(classDayID, studentID)]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockManualStatusRepo) ListByClassDayIDs(_ context.Context, classDayIDs []string) ([]model.ManualStatusChange, error) {
	wanted := make(map[string]bool, len(classDayIDs))
	for _, id := range classDayIDs {
		wanted[id] = true
	}
	var result []model.ManualStatusChange
	for _, c := range m.changes {
		if wanted[c.ClassDayID] {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockManualStatusRepo) ListByStudentAndClassDayIDs(_ context.Context, studentID string, classDayIDs []string) ([]model.ManualStatusChange, error) {
	wanted := make(map[string]bool, len(classDayIDs))
	for _, id := range classDayIDs {
		wanted[id] = true
	}
	var result []model.ManualStatusChange
	for _, c := range m.changes {
		if c.StudentID == studentID && wanted[c.ClassDayID] {
			result = append(result, *c)
		}
	}
	return result, nil
}

// ── Mock CodeReservationRepository ──

type mockCodeReservationRepo struct {
	reservations map[string]*model.CodeReservation // key: code
}

func newMockCodeReservationRepo() *mockCodeReservationRepo {
	return &mockCodeReservationRepo{reservations: make(map[string]*model.CodeReservation)}
}

func (m *mockCodeReservationRepo) Acquire(_ context.Context, code, classDayID string, expiresAt, now time.Time) (bool, error) {
	if r, ok := m.reservations[code]; ok && r.ExpiresAt.After(now) {
		return false, nil
	}
	m.reservations[code] = &model.CodeReservation{Code: code, ClassDayID: classDayID, ExpiresAt: expiresAt}
	return true, nil
}

func (m *mockCodeReservationRepo) ReleaseByClassDay(_ context.Context, classDayID string) error {
	for code, r := range m.reservations {
		if r.ClassDayID == classDayID {
			delete(m.reservations, code)
		}
	}
	return nil
}

// ── 测试辅助：聚合所有 mock repo 便于 seed 数据 ──

type testRepos struct {
	user        *mockUserRepo
	section     *mockSectionRepo
	enrollment  *mockEnrollmentRepo
	classDay    *mockClassDayRepo
	record      *mockAttendanceRecordRepo
	manual      *mockManualStatusRepo
	reservation *mockCodeReservationRepo
}

func newTestRepos() *testRepos {
	return &testRepos{
		user:        newMockUserRepo(),
		section:     newMockSectionRepo(),
		enrollment:  newMockEnrollmentRepo(),
		classDay:    newMockClassDayRepo(),
		record:      newMockAttendanceRecordRepo(),
		manual:      newMockManualStatusRepo(),
		reservation: newMockCodeReservationRepo(),
	}
}

func (r *testRepos) toRepository() *repository.Repository {
	return &repository.Repository{
		User:             r.user,
		Section:          r.section,
		Enrollment:       r.enrollment,
		ClassDay:         r.classDay,
		AttendanceRecord: r.record,
		ManualStatus:     r.manual,
		CodeReservation:  r.reservation,
	}
}
