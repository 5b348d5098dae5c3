package orders

import (
	"context"
	"testing"
	"time"

	"github.com/batcom-app/batcom-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  user_name TEXT NOT NULL,
  order_date TEXT NOT NULL,
  item_name TEXT NOT NULL,
  unit_price INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  amount INTEGER NOT NULL,
  is_paid INTEGER NOT NULL DEFAULT 0,
  paid_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	require.NoError(t, db.Exec(`DELETE FROM orders`).Error)
	return db
}

func newOrder(userID, userName, date string, amount int64) *models.Order {
	return &models.Order{
		ID:        uuid.New(),
		UserID:    userID,
		UserName:  userName,
		OrderDate: date,
		ItemName:  "com suon",
		UnitPrice: amount,
		Quantity:  1,
		Amount:    amount,
	}
}

func TestRepositoryCreateAndFindByIDs(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	first := newOrder("u1", "An", "2025-08-28", 50000)
	second := newOrder("u2", "Binh", "2025-08-28", 45000)
	require.NoError(t, repo.CreateBatch(ctx, []*models.Order{first, second}))

	rows, err := repo.FindByIDs(ctx, []uuid.UUID{first.ID, second.ID})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	rows, err = repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRepositoryMarkPaidIdempotent(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := newOrder("u1", "An", "2025-08-28", 50000)
	require.NoError(t, repo.CreateBatch(ctx, []*models.Order{order}))

	paidAt := time.Now().UTC().Truncate(time.Second)
	updated, err := repo.MarkPaid(ctx, order.ID, paidAt)
	require.NoError(t, err)
	assert.True(t, updated)

	updated, err = repo.MarkPaid(ctx, order.ID, paidAt.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, updated, "second mark must be a no-op")

	var stored models.Order
	require.NoError(t, db.First(&stored, "id = ?", order.ID).Error)
	assert.True(t, stored.IsPaid)
	require.NotNil(t, stored.PaidAt)
	assert.WithinDuration(t, paidAt, *stored.PaidAt, time.Second)
}

func TestRepositoryMarkPaidUnknownOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	updated, err := repo.MarkPaid(context.Background(), uuid.New(), time.Now())
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestRepositoryListUnpaid(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	paid := newOrder("u1", "An", "2025-08-27", 40000)
	open1 := newOrder("u1", "An", "2025-08-28", 50000)
	open2 := newOrder("u2", "Binh", "2025-08-28", 45000)
	require.NoError(t, repo.CreateBatch(ctx, []*models.Order{paid, open1, open2}))

	_, err := repo.MarkPaid(ctx, paid.ID, time.Now())
	require.NoError(t, err)

	unpaid, err := repo.ListUnpaid(ctx)
	require.NoError(t, err)
	require.Len(t, unpaid, 2)

	mine, err := repo.ListUnpaidByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, open1.ID, mine[0].ID)
}

func TestBuildUnpaidSummary(t *testing.T) {
	rows := []models.Order{
		{UserID: "u1", UserName: "An", OrderDate: "2025-08-27", Amount: 40000},
		{UserID: "u1", UserName: "An", OrderDate: "2025-08-28", Amount: 50000},
		{UserID: "u2", UserName: "Binh", OrderDate: "2025-08-28", Amount: 120000},
	}

	summary := BuildUnpaidSummary(rows)
	require.Len(t, summary, 2)

	assert.Equal(t, "u2", summary[0].UserID)
	assert.Equal(t, int64(120000), summary[0].Total)
	assert.Equal(t, "u1", summary[1].UserID)
	assert.Equal(t, int64(90000), summary[1].Total)
	assert.Equal(t, []string{"2025-08-27", "2025-08-28"}, summary[1].Dates)
	assert.Equal(t, 2, summary[1].OrderCount)
}

func TestBuildUnpaidSummaryEmpty(t *testing.T) {
	assert.Empty(t, BuildUnpaidSummary(nil))
}
