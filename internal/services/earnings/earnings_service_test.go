package earnings

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/workhive/workhive_be/internal/apperr"
	"github.com/workhive/workhive_be/internal/models"
)

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gdb, mock
}

func completedProject(freelancerID uuid.UUID, amount int64) *models.Project {
	fid := freelancerID
	amt := amount
	return &models.Project{
		ID:                   uuid.New(),
		ClientID:             uuid.New(),
		Status:               models.ProjectCompleted,
		SelectedFreelancerID: &fid,
		FinalBidAmount:       &amt,
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, models.EarningCompleted, statusFor(&models.Project{Status: models.ProjectCompleted}))
	assert.Equal(t, models.EarningPending, statusFor(&models.Project{Status: models.ProjectInProgress, Progress: 100}))
	assert.Equal(t, models.EarningPending, statusFor(&models.Project{Status: models.ProjectOpen}))
}

func TestEnsurePendingRequiresSelection(t *testing.T) {
	gdb, _ := newTestDB(t)
	svc := NewService(gdb)

	created, err := svc.EnsurePending(gdb, &models.Project{ID: uuid.New()})
	assert.False(t, created)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
}

func TestEnsurePendingCreates(t *testing.T) {
	gdb, mock := newTestDB(t)
	svc := NewService(gdb)
	p := completedProject(uuid.New(), 1200)

	mock.ExpectQuery(`SELECT .* FROM "earnings" WHERE project_id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(`INSERT INTO "earnings"`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := svc.EnsurePending(gdb, p)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsurePendingExistingRowIsNoop(t *testing.T) {
	gdb, mock := newTestDB(t)
	svc := NewService(gdb)
	p := completedProject(uuid.New(), 1200)

	mock.ExpectQuery(`SELECT .* FROM "earnings" WHERE project_id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).
			AddRow(uuid.NewString(), string(models.EarningPending)))

	created, err := svc.EnsurePending(gdb, p)
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileCompletionFlipsPending(t *testing.T) {
	gdb, mock := newTestDB(t)
	svc := NewService(gdb)
	p := completedProject(uuid.New(), 900)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "earnings" WHERE project_id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "amount"}).
			AddRow(uuid.NewString(), string(models.EarningPending), 900))
	mock.ExpectExec(`UPDATE "earnings" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.ReconcileCompletion(p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileCompletionCreatesWhenMissing(t *testing.T) {
	gdb, mock := newTestDB(t)
	svc := NewService(gdb)
	p := completedProject(uuid.New(), 900)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "earnings" WHERE project_id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(`INSERT INTO "earnings"`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.ReconcileCompletion(p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileCompletionAlreadyCompletedIsNoop(t *testing.T) {
	gdb, mock := newTestDB(t)
	svc := NewService(gdb)
	p := completedProject(uuid.New(), 900)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "earnings" WHERE project_id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).
			AddRow(uuid.NewString(), string(models.EarningCompleted)))
	mock.ExpectCommit()

	require.NoError(t, svc.ReconcileCompletion(p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileCompletionRequiresSelection(t *testing.T) {
	gdb, _ := newTestDB(t)
	svc := NewService(gdb)

	err := svc.ReconcileCompletion(&models.Project{ID: uuid.New(), Status: models.ProjectCompleted})
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
}

func TestReconcileCompletionPersistenceFailure(t *testing.T) {
	gdb, mock := newTestDB(t)
	svc := NewService(gdb)
	p := completedProject(uuid.New(), 900)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "earnings" WHERE project_id`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := svc.ReconcileCompletion(p)
	assert.Equal(t, apperr.KindPersistence, apperr.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncMissingBackfills(t *testing.T) {
	gdb, mock := newTestDB(t)
	svc := NewService(gdb)
	freelancerID := uuid.New()

	withAmount := uuid.NewString()
	noAmount := uuid.NewString()
	mock.ExpectQuery(`SELECT .* FROM "projects" WHERE selected_freelancer_id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "client_id", "status", "progress", "final_bid_amount"}).
			AddRow(withAmount, uuid.NewString(), string(models.ProjectCompleted), 100, 2500).
			AddRow(noAmount, uuid.NewString(), string(models.ProjectCompleted), 100, nil))

	// Only the project with a final amount gets a ledger row.
	mock.ExpectQuery(`SELECT .* FROM "earnings" WHERE project_id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(`INSERT INTO "earnings"`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := svc.SyncMissing(freelancerID)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncMissingIsIdempotent(t *testing.T) {
	gdb, mock := newTestDB(t)
	svc := NewService(gdb)
	freelancerID := uuid.New()
	projectID := uuid.NewString()

	mock.ExpectQuery(`SELECT .* FROM "projects" WHERE selected_freelancer_id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "client_id", "status", "progress", "final_bid_amount"}).
			AddRow(projectID, uuid.NewString(), string(models.ProjectCompleted), 100, 2500))
	mock.ExpectQuery(`SELECT .* FROM "earnings" WHERE project_id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).
			AddRow(uuid.NewString(), string(models.EarningCompleted)))

	created, err := svc.SyncMissing(freelancerID)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummarize(t *testing.T) {
	gdb, mock := newTestDB(t)
	svc := NewService(gdb)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM "earnings"`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(1500))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM "earnings"`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(4200))

	out, err := svc.Summarize(uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(1500), out.Pending)
	assert.Equal(t, int64(4200), out.Completed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
