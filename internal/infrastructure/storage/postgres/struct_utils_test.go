package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Senanu-web/bskal-enterprise/internal/core/types"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/catalog"
)

type timestamps struct {
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type mockRow struct {
	timestamps
	ID      int64  `db:"id"`
	Name    string `db:"name"`
	Ignored string `db:"-"`
	NoTag   string
}

func TestExtractDBColumns_EmbeddedAndSkipped(t *testing.T) {
	cols := ExtractDBColumns[mockRow]()

	for _, expected := range []string{"id", "name", "created_at", "updated_at"} {
		assert.Contains(t, cols, expected)
	}
	assert.NotContains(t, cols, "-")
	assert.NotContains(t, cols, "Ignored")
	assert.NotContains(t, cols, "NoTag")
}

func TestExtractDBColumns_Product(t *testing.T) {
	cols := ExtractDBColumns[catalog.Product]()

	for _, expected := range []string{
		"id", "name", "category", "price", "cost", "stock",
		"barcode", "image_url", "created_at", "updated_at",
	} {
		assert.Contains(t, cols, expected)
	}
}

func TestStructToMap(t *testing.T) {
	now := time.Now().UTC()
	row := mockRow{
		timestamps: timestamps{CreatedAt: now, UpdatedAt: now},
		ID:         7,
		Name:       "Sugar 1kg",
		Ignored:    "never stored",
		NoTag:      "never stored",
	}

	m := StructToMap(row)

	assert.Equal(t, int64(7), m["id"])
	assert.Equal(t, "Sugar 1kg", m["name"])
	assert.Equal(t, now, m["created_at"])
	assert.Equal(t, now, m["updated_at"])
	assert.NotContains(t, m, "-")
	assert.Len(t, m, 4)
}

func TestStructToMap_Product(t *testing.T) {
	p := catalog.NewProduct("Rice 5kg", types.NewMoney(80), types.NewMoney(60))
	p.ID = 3
	p.Stock = types.NewQuantityFromInt(40)

	m := StructToMap(p)

	assert.Equal(t, int64(3), m["id"])
	assert.Equal(t, "Rice 5kg", m["name"])
	assert.Equal(t, types.NewQuantityFromInt(40), m["stock"])
	assert.Nil(t, m["barcode"])
}
