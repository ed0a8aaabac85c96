package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/obraguard/obraguard/internal/models"
)

func setupTestDB(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()

	// Create temp directory for test database
	tmpDir, err := os.MkdirTemp("", "obraguard-test-*")
	if err != nil {
		t.Fatalf("create temp dir: %v", err)
	}

	dbPath := filepath.Join(tmpDir, "test.db")

	store := NewSQLiteStorage(dbPath)
	if err := store.Open(); err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("open database: %v", err)
	}

	if err := store.Migrate(); err != nil {
		store.Close()
		os.RemoveAll(tmpDir)
		t.Fatalf("migrate database: %v", err)
	}

	cleanup := func() {
		store.Close()
		os.RemoveAll(tmpDir)
	}

	return store, cleanup
}

func createTestProject(t *testing.T, store *SQLiteStorage, tenantID string) *models.Project {
	t.Helper()

	now := time.Now()
	project := &models.Project{
		ID:        uuid.New().String(),
		Name:      "Residencial Aurora",
		TenantID:  tenantID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.Projects().Create(context.Background(), project); err != nil {
		t.Fatalf("create project: %v", err)
	}
	return project
}

func addBudget(t *testing.T, store *SQLiteStorage, projectID, category, stage string, amount float64) {
	t.Helper()
	err := store.Projects().AddBudgetLine(context.Background(), &models.BudgetLine{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Category:  category,
		Stage:     stage,
		Amount:    amount,
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("add budget line: %v", err)
	}
}

func addExpense(t *testing.T, store *SQLiteStorage, projectID, category, stage string, amount float64) {
	t.Helper()
	err := store.Projects().AddExpense(context.Background(), &models.Expense{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Category:  category,
		Stage:     stage,
		Amount:    amount,
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("add expense: %v", err)
	}
}

func createTestAlert(t *testing.T, store *SQLiteStorage, projectID, category string) *models.Alert {
	t.Helper()

	alert := &models.Alert{
		ProjectID:       projectID,
		Severity:        models.SeverityMedium,
		DeviationPct:    20,
		Budgeted:        10000,
		Realized:        12000,
		DeviationAmount: 2000,
		Category:        category,
		Description:     "deviation of 20.00% in " + category,
		Status:          models.AlertStatusActive,
	}
	if err := store.Alerts().CreateWithHistory(context.Background(), alert); err != nil {
		t.Fatalf("create alert: %v", err)
	}
	return alert
}

func TestSQLiteStorage_Migrate(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	// Verify tables exist by querying them
	tables := []string{"projects", "budget_lines", "expenses", "alert_configs", "alerts", "alert_history", "notifications", "schema_migrations"}
	for _, table := range tables {
		var count int
		err := store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count)
		if err != nil {
			t.Errorf("table %s should exist: %v", table, err)
		}
	}
}

func TestProjectRepository_TenantIsolation(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	project := createTestProject(t, store, "tenant-a")

	if _, err := store.Projects().GetByID(ctx, project.ID, "tenant-a"); err != nil {
		t.Fatalf("owner tenant should see project: %v", err)
	}
	if _, err := store.Projects().GetByID(ctx, project.ID, ""); err != nil {
		t.Fatalf("tenantless lookup should see project: %v", err)
	}
	if _, err := store.Projects().GetByID(ctx, project.ID, "tenant-b"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign tenant lookup: want ErrNotFound, got %v", err)
	}
}

func TestProjectRepository_CostByCategory(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	project := createTestProject(t, store, "")

	addBudget(t, store, project.ID, "MATERIAL", "", 6000)
	addBudget(t, store, project.ID, "MATERIAL", "", 4000)
	addBudget(t, store, project.ID, "MAO_DE_OBRA", "", 5000)
	addBudget(t, store, project.ID, "EQUIPAMENTO", "", 0) // excluded, no budget base
	addExpense(t, store, project.ID, "MATERIAL", "", 12000)
	addExpense(t, store, project.ID, "EQUIPAMENTO", "", 300)

	costs, err := store.Projects().CostByCategory(ctx, project.ID)
	if err != nil {
		t.Fatalf("cost by category: %v", err)
	}

	if len(costs) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(costs))
	}

	byCategory := map[string]*models.CategoryCost{}
	for _, c := range costs {
		byCategory[c.Category] = c
	}

	material := byCategory["MATERIAL"]
	if material == nil {
		t.Fatal("MATERIAL category missing")
	}
	if material.Budgeted != 10000 || material.Realized != 12000 {
		t.Errorf("MATERIAL: got budgeted=%v realized=%v, want 10000/12000", material.Budgeted, material.Realized)
	}

	labor := byCategory["MAO_DE_OBRA"]
	if labor == nil {
		t.Fatal("MAO_DE_OBRA category missing")
	}
	if labor.Budgeted != 5000 || labor.Realized != 0 {
		t.Errorf("MAO_DE_OBRA: got budgeted=%v realized=%v, want 5000/0", labor.Budgeted, labor.Realized)
	}

	if _, ok := byCategory["EQUIPAMENTO"]; ok {
		t.Error("zero-budget category should be excluded")
	}
}

func TestConfigRepository_SaveUpsert(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	project := createTestProject(t, store, "")

	cfg := models.DefaultAlertConfig(project.ID, "user-1")
	cfg.ID = uuid.New().String()
	if err := store.Configs().Save(ctx, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}

	// Saving again for the same (project, user) replaces, not duplicates
	updated := models.DefaultAlertConfig(project.ID, "user-1")
	updated.ID = uuid.New().String()
	updated.ThresholdCritical = 50
	if err := store.Configs().Save(ctx, updated); err != nil {
		t.Fatalf("re-save config: %v", err)
	}

	got, err := store.Configs().GetForProjectUser(ctx, project.ID, "user-1")
	if err != nil {
		t.Fatalf("get config: %v", err)
	}
	if got.ThresholdCritical != 50 {
		t.Errorf("expected upserted critical threshold 50, got %v", got.ThresholdCritical)
	}

	active, err := store.Configs().ListActive(ctx, project.ID)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 {
		t.Errorf("expected 1 active config after upsert, got %d", len(active))
	}
}

func TestConfigRepository_Deactivate(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	project := createTestProject(t, store, "")

	cfg := models.DefaultAlertConfig(project.ID, "user-1")
	cfg.ID = uuid.New().String()
	if err := store.Configs().Save(ctx, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}

	if err := store.Configs().Deactivate(ctx, project.ID, "user-1"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	active, err := store.Configs().ListActive(ctx, project.ID)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("expected no active configs, got %d", len(active))
	}

	if err := store.Configs().Deactivate(ctx, project.ID, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deactivate missing config: want ErrNotFound, got %v", err)
	}
}

func TestAlertRepository_DuplicateActiveConflict(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	project := createTestProject(t, store, "")
	createTestAlert(t, store, project.ID, "MATERIAL")

	dup := &models.Alert{
		ProjectID:       project.ID,
		Severity:        models.SeverityHigh,
		DeviationPct:    30,
		Budgeted:        10000,
		Realized:        13000,
		DeviationAmount: 3000,
		Category:        "MATERIAL",
		Status:          models.AlertStatusActive,
	}
	if err := store.Alerts().CreateWithHistory(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate active alert: want ErrConflict, got %v", err)
	}

	// A different category is a different scope
	other := &models.Alert{
		ProjectID:       project.ID,
		Severity:        models.SeverityLow,
		DeviationPct:    7,
		Budgeted:        5000,
		Realized:        5350,
		DeviationAmount: 350,
		Category:        "MAO_DE_OBRA",
		Status:          models.AlertStatusActive,
	}
	if err := store.Alerts().CreateWithHistory(ctx, other); err != nil {
		t.Fatalf("alert for other category: %v", err)
	}
}

func TestAlertRepository_CreateAppendsHistory(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	project := createTestProject(t, store, "")
	alert := createTestAlert(t, store, project.ID, "MATERIAL")

	entries, err := store.History().ListByAlert(ctx, alert.ID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(entries))
	}
	if entries[0].Action != models.HistoryActionCreated {
		t.Errorf("expected CREATED action, got %s", entries[0].Action)
	}
	if entries[0].DeviationPct != alert.DeviationPct {
		t.Errorf("history should snapshot deviation: got %v, want %v", entries[0].DeviationPct, alert.DeviationPct)
	}
}

func TestAlertRepository_Transition(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	project := createTestProject(t, store, "")
	alert := createTestAlert(t, store, project.ID, "MATERIAL")

	if err := store.Alerts().Transition(ctx, alert.ID, models.AlertStatusResolved, "fixed supplier pricing"); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	got, err := store.Alerts().GetByID(ctx, alert.ID)
	if err != nil {
		t.Fatalf("get alert: %v", err)
	}
	if got.Status != models.AlertStatusResolved {
		t.Errorf("expected RESOLVED, got %s", got.Status)
	}

	// Double resolution is a conflict
	if err := store.Alerts().Transition(ctx, alert.ID, models.AlertStatusResolved, ""); !errors.Is(err, ErrConflict) {
		t.Errorf("double resolve: want ErrConflict, got %v", err)
	}

	// Terminal alerts may be reactivated
	if err := store.Alerts().Transition(ctx, alert.ID, models.AlertStatusActive, "regressed"); err != nil {
		t.Fatalf("reactivate: %v", err)
	}

	entries, err := store.History().ListByAlert(ctx, alert.ID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	// CREATED, RESOLVED, REACTIVATED
	if len(entries) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(entries))
	}
	if entries[1].Action != models.HistoryActionResolved {
		t.Errorf("expected RESOLVED action, got %s", entries[1].Action)
	}
	if entries[1].Note != "fixed supplier pricing" {
		t.Errorf("expected note on resolution, got %q", entries[1].Note)
	}
	if entries[2].Action != models.HistoryActionReactivated {
		t.Errorf("expected REACTIVATED action, got %s", entries[2].Action)
	}
}

func TestAlertRepository_TransitionNotFound(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	err := store.Alerts().Transition(context.Background(), uuid.New().String(), models.AlertStatusResolved, "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestAlertRepository_MarkVisualized(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	project := createTestProject(t, store, "")
	alert := createTestAlert(t, store, project.ID, "MATERIAL")

	if err := store.Alerts().MarkVisualized(ctx, alert.ID, "seen in dashboard"); err != nil {
		t.Fatalf("mark visualized: %v", err)
	}

	// Status is unchanged, only the audit trail grows
	got, err := store.Alerts().GetByID(ctx, alert.ID)
	if err != nil {
		t.Fatalf("get alert: %v", err)
	}
	if got.Status != models.AlertStatusActive {
		t.Errorf("visualize must not change status, got %s", got.Status)
	}

	entries, err := store.History().ListByAlert(ctx, alert.ID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(entries) != 2 || entries[1].Action != models.HistoryActionVisualized {
		t.Fatalf("expected VISUALIZED entry appended, got %d entries", len(entries))
	}
}

func TestAlertRepository_ListFilters(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	project := createTestProject(t, store, "tenant-a")
	createTestAlert(t, store, project.ID, "MATERIAL")
	second := createTestAlert(t, store, project.ID, "MAO_DE_OBRA")
	if err := store.Alerts().Transition(ctx, second.ID, models.AlertStatusIgnored, ""); err != nil {
		t.Fatalf("ignore: %v", err)
	}

	active, err := store.Alerts().List(ctx, AlertFilter{ProjectID: project.ID, Status: models.AlertStatusActive})
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].Category != "MATERIAL" {
		t.Errorf("expected only the MATERIAL alert active, got %d", len(active))
	}

	bySeverity, err := store.Alerts().List(ctx, AlertFilter{Severity: models.SeverityCritical})
	if err != nil {
		t.Fatalf("list by severity: %v", err)
	}
	if len(bySeverity) != 0 {
		t.Errorf("expected no critical alerts, got %d", len(bySeverity))
	}
}

func TestAlertRepository_Stats(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	project := createTestProject(t, store, "")
	createTestAlert(t, store, project.ID, "MATERIAL")
	createTestAlert(t, store, project.ID, "MAO_DE_OBRA")

	stats, err := store.Alerts().Stats(ctx, project.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 2 {
		t.Errorf("expected 2 alerts, got %d", stats.Total)
	}
	if stats.BySeverity[models.SeverityMedium] != 2 {
		t.Errorf("expected 2 MEDIUM alerts, got %d", stats.BySeverity[models.SeverityMedium])
	}
	if stats.ByStatus[models.AlertStatusActive] != 2 {
		t.Errorf("expected 2 ACTIVE alerts, got %d", stats.ByStatus[models.AlertStatusActive])
	}
	if stats.MeanDeviation != 20 || stats.MaxDeviation != 20 {
		t.Errorf("expected mean/max deviation 20, got %v/%v", stats.MeanDeviation, stats.MaxDeviation)
	}
}

func TestAlertRepository_DeleteResolvedBefore(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	project := createTestProject(t, store, "")
	old := &models.Alert{
		ProjectID:    project.ID,
		Severity:     models.SeverityLow,
		DeviationPct: 6,
		Budgeted:     1000,
		Realized:     1060,
		Category:     "MATERIAL",
		Status:       models.AlertStatusActive,
		CreatedAt:    time.Now().AddDate(0, 0, -120),
	}
	if err := store.Alerts().CreateWithHistory(ctx, old); err != nil {
		t.Fatalf("create old alert: %v", err)
	}
	if err := store.Alerts().Transition(ctx, old.ID, models.AlertStatusResolved, ""); err != nil {
		t.Fatalf("resolve old alert: %v", err)
	}

	fresh := createTestAlert(t, store, project.ID, "MAO_DE_OBRA")

	deleted, err := store.Alerts().DeleteResolvedBefore(ctx, time.Now().AddDate(0, 0, -90))
	if err != nil {
		t.Fatalf("delete resolved: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", deleted)
	}

	// Active alerts are never purged regardless of age
	if _, err := store.Alerts().GetByID(ctx, fresh.ID); err != nil {
		t.Errorf("active alert should survive purge: %v", err)
	}
}

func testNotification(alertID, userID string) *models.Notification {
	return &models.Notification{
		AlertID:     alertID,
		UserID:      userID,
		Channel:     models.ChannelDashboard,
		Status:      models.NotificationPending,
		Title:       "MEDIUM budget deviation alert",
		Body:        "Deviation of 20.00% detected on the project",
		Payload:     models.Payload{Dashboard: &models.DashboardPayload{ProjectID: "p", DeviationAmount: 2000}},
		MaxAttempts: models.DefaultMaxAttempts,
	}
}

func TestNotificationRepository_CreateBatchAndListPending(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	project := createTestProject(t, store, "")
	alert := createTestAlert(t, store, project.ID, "MATERIAL")

	batch := []*models.Notification{
		testNotification(alert.ID, "user-1"),
		testNotification(alert.ID, "user-2"),
	}
	if err := store.Notifications().CreateBatch(ctx, batch); err != nil {
		t.Fatalf("create batch: %v", err)
	}

	pending, err := store.Notifications().ListPending(ctx, "")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}

	scoped, err := store.Notifications().ListPending(ctx, alert.ID)
	if err != nil {
		t.Fatalf("list pending by alert: %v", err)
	}
	if len(scoped) != 2 {
		t.Fatalf("expected 2 pending for alert, got %d", len(scoped))
	}
}

func TestNotificationRepository_CreateBatchRejectsInvalid(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	project := createTestProject(t, store, "")
	alert := createTestAlert(t, store, project.ID, "MATERIAL")

	bad := testNotification(alert.ID, "user-1")
	bad.Payload.Dashboard = nil // channel/payload mismatch

	err := store.Notifications().CreateBatch(ctx, []*models.Notification{
		testNotification(alert.ID, "user-2"),
		bad,
	})
	if err == nil {
		t.Fatal("expected validation error")
	}

	// The whole batch rolls back
	pending, listErr := store.Notifications().ListPending(ctx, "")
	if listErr != nil {
		t.Fatalf("list pending: %v", listErr)
	}
	if len(pending) != 0 {
		t.Errorf("expected empty store after failed batch, got %d", len(pending))
	}
}

func TestNotificationRepository_MarkSent(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	project := createTestProject(t, store, "")
	alert := createTestAlert(t, store, project.ID, "MATERIAL")

	n := testNotification(alert.ID, "user-1")
	if err := store.Notifications().CreateBatch(ctx, []*models.Notification{n}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.Notifications().MarkSent(ctx, n.ID); err != nil {
		t.Fatalf("mark sent: %v", err)
	}

	got, err := store.Notifications().GetByID(ctx, n.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.NotificationSent {
		t.Errorf("expected SENT, got %s", got.Status)
	}
	if got.SentAt == nil {
		t.Error("expected sent timestamp")
	}

	// SENT is terminal for delivery: a second MarkSent is a conflict
	if err := store.Notifications().MarkSent(ctx, n.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("double mark sent: want ErrConflict, got %v", err)
	}
}

func TestNotificationRepository_MarkFailedRetryBound(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	project := createTestProject(t, store, "")
	alert := createTestAlert(t, store, project.ID, "MATERIAL")

	n := testNotification(alert.ID, "user-1")
	if err := store.Notifications().CreateBatch(ctx, []*models.Notification{n}); err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 1; i <= models.DefaultMaxAttempts; i++ {
		if err := store.Notifications().MarkFailed(ctx, n.ID, "connection refused"); err != nil {
			t.Fatalf("mark failed attempt %d: %v", i, err)
		}
		got, err := store.Notifications().GetByID(ctx, n.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Attempts != i {
			t.Fatalf("attempt %d: counter is %d", i, got.Attempts)
		}
		if got.Status != models.NotificationError {
			t.Fatalf("attempt %d: status is %s", i, got.Status)
		}
		if got.Payload.LastError != "connection refused" {
			t.Fatalf("attempt %d: last error not recorded: %q", i, got.Payload.LastError)
		}
	}

	// Exhausted notifications refuse further attempts and leave dispatch
	if err := store.Notifications().MarkFailed(ctx, n.ID, "again"); !errors.Is(err, ErrConflict) {
		t.Fatalf("mark failed beyond bound: want ErrConflict, got %v", err)
	}

	pending, err := store.Notifications().ListPending(ctx, "")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("exhausted notification must not be pending, got %d", len(pending))
	}
}

func TestNotificationRepository_ErrorIsRetriedUntilExhausted(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	project := createTestProject(t, store, "")
	alert := createTestAlert(t, store, project.ID, "MATERIAL")

	n := testNotification(alert.ID, "user-1")
	if err := store.Notifications().CreateBatch(ctx, []*models.Notification{n}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Notifications().MarkFailed(ctx, n.ID, "timeout"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	// One failure leaves two attempts; still deliverable
	pending, err := store.Notifications().ListPending(ctx, "")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("errored notification below bound should be pending, got %d", len(pending))
	}

	// A later success is allowed from ERROR state
	if err := store.Notifications().MarkSent(ctx, n.ID); err != nil {
		t.Fatalf("mark sent after error: %v", err)
	}
}

func TestNotificationRepository_MarkRead(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	project := createTestProject(t, store, "")
	alert := createTestAlert(t, store, project.ID, "MATERIAL")

	n := testNotification(alert.ID, "user-1")
	if err := store.Notifications().CreateBatch(ctx, []*models.Notification{n}); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Read receipt requires SENT first
	updated, err := store.Notifications().MarkRead(ctx, alert.ID, "user-1")
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if updated != 0 {
		t.Fatalf("pending notification must not be readable, updated %d", updated)
	}

	if err := store.Notifications().MarkSent(ctx, n.ID); err != nil {
		t.Fatalf("mark sent: %v", err)
	}

	updated, err = store.Notifications().MarkRead(ctx, alert.ID, "user-1")
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if updated != 1 {
		t.Fatalf("expected 1 read receipt, got %d", updated)
	}

	got, err := store.Notifications().GetByID(ctx, n.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.NotificationRead {
		t.Errorf("expected READ, got %s", got.Status)
	}
	if got.ReadAt == nil {
		t.Error("expected read timestamp")
	}
}
