package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles inventory persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context) ([]models.Item, error)
	Find(ctx context.Context, id int64) (*models.Item, error)
	FindMany(ctx context.Context, ids []int64) ([]models.Item, error)
	Availability(ctx context.Context, ids []int64) (map[int64]int, error)
	Decrement(ctx context.Context, wants map[int64]int) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Find(ctx context.Context, id int64) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindMany(ctx context.Context, ids []int64) ([]models.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.Item
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Availability returns available counts keyed by item ID. Items that do not
// exist are simply absent from the result.
func (r *repository) Availability(ctx context.Context, ids []int64) (map[int64]int, error) {
	result := map[int64]int{}
	if len(ids) == 0 {
		return result, nil
	}

	var rows []models.Item
	if err := r.db.WithContext(ctx).
		Select("id", "available").
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.ID] = row.Available
	}
	return result, nil
}

// Decrement subtracts the wanted quantities from available stock in a single
// statement. Returns the number of rows touched; callers compare it against
// len(wants) to detect unknown items. The available >= 0 check constraint
// rejects the whole statement when any line oversells.
func (r *repository) Decrement(ctx context.Context, wants map[int64]int) (int64, error) {
	if len(wants) == 0 {
		return 0, nil
	}

	values := make([]string, 0, len(wants))
	for _, id := range sortedIDs(wants) {
		values = append(values, fmt.Sprintf("(%d, %d)", id, wants[id]))
	}

	stmt := fmt.Sprintf(`
		WITH batch (item_id, quantity) AS (VALUES %s)
		UPDATE inventory
		SET available = inventory.available - batch.quantity
		FROM batch
		WHERE inventory.id = batch.item_id`, strings.Join(values, ", "))

	res := r.db.WithContext(ctx).Exec(stmt)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func sortedIDs(wants map[int64]int) []int64 {
	ids := make([]int64, 0, len(wants))
	for id := range wants {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
