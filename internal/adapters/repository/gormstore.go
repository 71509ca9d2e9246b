package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/model"
	"github.com/vishalyl/GlassBoxAI-sub000/pkg/logger"
	"github.com/vishalyl/GlassBoxAI-sub000/pkg/metrics"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

const insertBatchSize = 200

// GormStore implements Store on a SQL database through gorm.
type GormStore struct {
	db          *gorm.DB
	log         logger.Logger
	sqlLogging  bool
	autoMigrate bool
}

// OpenStore returns the Store for driver. The memory driver ignores dsn and
// opts and starts empty.
func OpenStore(ctx context.Context, driver, dsn string, opts ...Option) (Store, error) {
	if driver == DriverMemory {
		return NewMemoryStore(), nil
	}
	return Open(ctx, driver, dsn, opts...)
}

// Open connects to driver/dsn and, unless disabled, migrates the schema.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*GormStore, error) {
	s := &GormStore{log: logger.Nop(), autoMigrate: true}
	for _, opt := range opts {
		opt(s)
	}

	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	mode := gormlogger.Silent
	if s.sqlLogging {
		mode = gormlogger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(mode),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// One connection keeps an in-memory database alive and serializes writers.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	s.db = db
	if s.autoMigrate {
		if err := db.WithContext(ctx).AutoMigrate(allTables()...); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	s.log.Info(ctx, "store opened", logger.String("driver", driver))
	return s, nil
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func observe(query string, start time.Time) {
	metrics.RecordStoreQueryLatency(query, float64(time.Since(start).Microseconds())/1000)
}

func (s *GormStore) FetchEmployee(ctx context.Context, id string) (model.Employee, error) {
	defer observe("fetch_employee", time.Now())

	var row employeeRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Employee{}, fmt.Errorf("employee %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Employee{}, err
	}
	return row.toModel(), nil
}

func (s *GormStore) FetchEmployees(ctx context.Context, filter model.CohortFilter) ([]model.Employee, error) {
	defer observe("fetch_employees", time.Now())

	q := s.db.WithContext(ctx).Order("id")
	if len(filter.DepartmentIDs) > 0 {
		q = q.Where("department_id IN ?", filter.DepartmentIDs)
	}
	if len(filter.EmployeeIDs) > 0 {
		q = q.Where("id IN ?", filter.EmployeeIDs)
	}
	var rows []employeeRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.Employee, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

func (s *GormStore) FetchProjects(ctx context.Context) ([]model.Project, error) {
	defer observe("fetch_projects", time.Now())

	var rows []projectRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.Project, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

func (s *GormStore) FetchTasks(ctx context.Context, projectIDs []string) ([]model.Task, error) {
	defer observe("fetch_tasks", time.Now())

	if len(projectIDs) == 0 {
		return []model.Task{}, nil
	}
	db := s.db.WithContext(ctx)

	var rows []taskRow
	if err := db.Where("project_id IN ?", projectIDs).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []model.Task{}, nil
	}

	taskIDs := make([]string, len(rows))
	for i, r := range rows {
		taskIDs[i] = r.ID
	}
	var links []taskAssigneeRow
	if err := db.Where("task_id IN ?", taskIDs).Order("task_id, employee_id").Find(&links).Error; err != nil {
		return nil, err
	}
	assignees := make(map[string][]string, len(rows))
	for _, l := range links {
		assignees[l.TaskID] = append(assignees[l.TaskID], l.EmployeeID)
	}

	out := make([]model.Task, len(rows))
	for i, r := range rows {
		out[i] = model.Task{
			ID:               r.ID,
			ProjectID:        r.ProjectID,
			Weightage:        r.Weightage,
			AssigneeIDs:      assignees[r.ID],
			LegacyAssigneeID: r.AssigneeID,
		}
	}
	return out, nil
}

func (s *GormStore) FetchRatings(ctx context.Context, projectIDs []string) (model.RatingSet, error) {
	defer observe("fetch_ratings", time.Now())

	set := model.RatingSet{Manager: []model.Rating{}, Peer: []model.Rating{}, KPI: []model.KPIRecord{}}
	if len(projectIDs) == 0 {
		return set, nil
	}
	db := s.db.WithContext(ctx)

	var managers []managerRatingRow
	if err := db.Where("project_id IN ?", projectIDs).Order("id").Find(&managers).Error; err != nil {
		return model.RatingSet{}, err
	}
	var peers []peerRatingRow
	if err := db.Where("project_id IN ?", projectIDs).Order("id").Find(&peers).Error; err != nil {
		return model.RatingSet{}, err
	}
	var kpis []kpiRow
	if err := db.Where("project_id IN ?", projectIDs).Order("id").Find(&kpis).Error; err != nil {
		return model.RatingSet{}, err
	}

	for _, r := range managers {
		set.Manager = append(set.Manager, r.toModel())
	}
	for _, r := range peers {
		set.Peer = append(set.Peer, r.toModel())
	}
	for _, r := range kpis {
		set.KPI = append(set.KPI, model.KPIRecord{EmployeeID: r.EmployeeID, ProjectID: r.ProjectID, Metric: r.Metric, Value: r.Value})
	}
	return set, nil
}

// Import replaces every input table with ds in one transaction. Audit tables are untouched.
func (s *GormStore) Import(ctx context.Context, ds model.Dataset) error {
	defer observe("import", time.Now())

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []any{&employeeRow{}, &projectRow{}, &taskRow{}, &taskAssigneeRow{}, &managerRatingRow{}, &peerRatingRow{}, &kpiRow{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
				return err
			}
		}

		employees := make([]employeeRow, 0, len(ds.Employees))
		for _, e := range lastByID(ds.Employees, func(e model.Employee) string { return e.ID }) {
			employees = append(employees, employeeRow{ID: e.ID, Name: e.Name, Role: e.Role, DepartmentID: e.DepartmentID})
		}
		projects := make([]projectRow, 0, len(ds.Projects))
		for _, p := range lastByID(ds.Projects, func(p model.Project) string { return p.ID }) {
			projects = append(projects, projectRow{ID: p.ID, Name: p.Name, Weightage: p.Weightage, DepartmentID: p.DepartmentID})
		}
		tasks := make([]taskRow, 0, len(ds.Tasks))
		var links []taskAssigneeRow
		for _, t := range lastByID(ds.Tasks, func(t model.Task) string { return t.ID }) {
			tasks = append(tasks, taskRow{ID: t.ID, ProjectID: t.ProjectID, Weightage: t.Weightage, AssigneeID: t.LegacyAssigneeID})
			for _, a := range t.AssigneeIDs {
				links = append(links, taskAssigneeRow{TaskID: t.ID, EmployeeID: a})
			}
		}
		managers := make([]managerRatingRow, len(ds.ManagerRatings))
		for i, r := range ds.ManagerRatings {
			managers[i] = managerRatingRow{ratingColumnsFrom(r)}
		}
		peers := make([]peerRatingRow, len(ds.PeerRatings))
		for i, r := range ds.PeerRatings {
			peers[i] = peerRatingRow{ratingColumnsFrom(r)}
		}
		kpis := make([]kpiRow, len(ds.KPIs))
		for i, k := range ds.KPIs {
			kpis[i] = kpiRow{EmployeeID: k.EmployeeID, ProjectID: k.ProjectID, Metric: k.Metric, Value: k.Value}
		}

		if err := createAll(tx, employees); err != nil {
			return err
		}
		if err := createAll(tx, projects); err != nil {
			return err
		}
		if err := createAll(tx, tasks); err != nil {
			return err
		}
		// A task may list the same assignee twice.
		if len(links) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(links, insertBatchSize).Error; err != nil {
				return err
			}
		}
		if err := createAll(tx, managers); err != nil {
			return err
		}
		if err := createAll(tx, peers); err != nil {
			return err
		}
		return createAll(tx, kpis)
	})
	if err != nil {
		return fmt.Errorf("import dataset: %w", err)
	}

	s.log.Info(ctx, "dataset imported",
		logger.Int("employees", len(ds.Employees)),
		logger.Int("projects", len(ds.Projects)),
		logger.Int("tasks", len(ds.Tasks)),
	)
	return nil
}

func createAll[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(rows, insertBatchSize).Error
}

// lastByID keeps the last item for each id, in order of first appearance.
func lastByID[T any](items []T, id func(T) string) []T {
	pos := make(map[string]int, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		if i, ok := pos[id(it)]; ok {
			out[i] = it
			continue
		}
		pos[id(it)] = len(out)
		out = append(out, it)
	}
	return out
}

func (s *GormStore) SaveRecord(ctx context.Context, rec model.AuditRecord) error {
	defer observe("save_record", time.Now())

	row := recordRowFrom(rec)
	entries := make([]auditEntryRow, len(rec.Entries))
	for i, e := range rec.Entries {
		entries[i] = entryRowFrom(rec.ID, i, e)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&auditRecordRow{}).Where("id = ?", rec.ID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("record %s: %w", rec.ID, ErrDuplicateRecord)
		}
		if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
			return err
		}
		return createAll(tx, entries)
	})
}

func (s *GormStore) GetRecord(ctx context.Context, id string) (model.AuditRecord, error) {
	defer observe("get_record", time.Now())

	db := s.db.WithContext(ctx)
	var row auditRecordRow
	err := db.First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.AuditRecord{}, fmt.Errorf("audit record %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.AuditRecord{}, err
	}

	var entries []auditEntryRow
	if err := db.Where("record_id = ?", id).Order("position").Find(&entries).Error; err != nil {
		return model.AuditRecord{}, err
	}
	rec := row.toModel()
	rec.Entries = make([]model.AuditEntry, len(entries))
	for i, e := range entries {
		rec.Entries[i] = e.toModel()
	}
	return rec, nil
}

func (s *GormStore) ListRecords(ctx context.Context, limit int) ([]model.AuditRecord, error) {
	defer observe("list_records", time.Now())

	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	var rows []auditRecordRow
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.AuditRecord, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// SetFlag only ever writes is_flagged=true, and only over a false value.
func (s *GormStore) SetFlag(ctx context.Context, entryID string) (model.AuditEntry, bool, error) {
	defer observe("set_flag", time.Now())

	var (
		row     auditEntryRow
		changed bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&row, "id = ?", entryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("audit entry %s: %w", entryID, ErrNotFound)
			}
			return err
		}
		if row.IsFlagged {
			return nil
		}
		res := tx.Model(&auditEntryRow{}).
			Where("id = ? AND is_flagged = ?", entryID, false).
			Update("is_flagged", true)
		if res.Error != nil {
			return res.Error
		}
		changed = res.RowsAffected == 1
		row.IsFlagged = true
		return nil
	})
	if err != nil {
		return model.AuditEntry{}, false, err
	}
	return row.toModel(), changed, nil
}

func (s *GormStore) CountRecords(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&auditRecordRow{}).Count(&n).Error
	return n, err
}
