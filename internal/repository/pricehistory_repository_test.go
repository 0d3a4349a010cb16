package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/carmarket/internal/model"
)

func TestPriceHistoryInsertAndFindSeries(t *testing.T) {
	db := setupAnalyticsDB(t)
	repo := NewPriceHistoryRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	// 乱序插入，读取时按日期升序
	require.NoError(t, repo.Insert(ctx, []*model.PriceHistory{
		{Make: "Toyota", Model: "Camry", Date: base.AddDate(0, 2, 0), AveragePrice: 25500, MinPrice: 22000, MaxPrice: 29000, SampleSize: 4},
		{Make: "Toyota", Model: "Camry", Date: base, AveragePrice: 25000, MinPrice: 21000, MaxPrice: 28000, SampleSize: 4},
		{Make: "Toyota", Model: "Camry", Date: base.AddDate(0, 1, 0), AveragePrice: 25200, MinPrice: 21500, MaxPrice: 28500, SampleSize: 4},
		{Make: "Honda", Model: "Civic", Date: base, AveragePrice: 22000, MinPrice: 19000, MaxPrice: 24000, SampleSize: 2},
	}))

	rows, err := repo.FindSeries(ctx, "Toyota", "Camry")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 25000, rows[0].AveragePrice)
	assert.Equal(t, 25200, rows[1].AveragePrice)
	assert.Equal(t, 25500, rows[2].AveragePrice)

	rows, err = repo.FindSeries(ctx, "Honda", "Civic")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].SampleSize)

	rows, err = repo.FindSeries(ctx, "Yugo", "GV")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestPriceHistoryInsertEmptyIsNoop(t *testing.T) {
	db := setupAnalyticsDB(t)
	repo := NewPriceHistoryRepository(db)

	assert.NoError(t, repo.Insert(context.Background(), nil))
}
