package exporter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesforecast/pkg/contracts/domain"
)

func TestSalesExporter_ExportCleaned(t *testing.T) {
	_, paths := setupTestEnv(t)
	e := NewSalesExporter(paths, nil)

	table := &domain.SalesTable{
		Columns: []string{"Row ID", "Order ID", "Date", "City", "Sales", "Quantity", "Store", "Region", "Category"},
		Records: []domain.SaleRecord{
			{
				Date: time.Date(2016, 11, 8, 0, 0, 0, 0, time.UTC), Sales: 261.96, Quantity: 2,
				OrderID: "CA-1", Store: "Henderson", City: "Henderson", Region: "South", Category: "Furniture",
				Extra: map[string]string{"Row ID": "1"},
			},
			{
				Date: time.Date(2016, 11, 8, 14, 5, 0, 0, time.UTC), Sales: 14.62,
				OrderID: "CA-2", Store: "Los Angeles", City: "Los Angeles", Region: "West", Category: "Office Supplies",
				Extra: map[string]string{"Row ID": "2"},
			},
		},
	}

	written, err := e.ExportCleaned(context.Background(), table)
	require.NoError(t, err)
	assert.Equal(t, []string{paths.HistoricalCSV, paths.CleanedCSV}, written)

	want := []string{
		"Row ID,Order ID,Date,City,Sales,Quantity,Store,Region,Category",
		"1,CA-1,2016-11-08,Henderson,261.96,2,Henderson,South,Furniture",
		"2,CA-2,2016-11-08 14:05:00,Los Angeles,14.62,0,Los Angeles,West,Office Supplies",
	}
	assert.Equal(t, want, readLines(t, paths.HistoricalCSV))
	assert.Equal(t, want, readLines(t, paths.CleanedCSV))
	assert.Empty(t, tempFiles(t, paths.DataDir))
}

func TestSalesExporter_ExportDailyAndMonthly(t *testing.T) {
	_, paths := setupTestEnv(t)
	e := NewSalesExporter(paths, nil)
	ctx := context.Background()

	qty := 5.0
	count := int64(2)
	series := domain.DailySeries{
		{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), TotalSales: 10.5, TotalQuantity: &qty, TransactionCount: &count},
		{Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), TotalSales: 7},
	}

	path, err := e.ExportDaily(ctx, series)
	require.NoError(t, err)
	assert.Equal(t, paths.DailyCSV, path)
	assert.Equal(t, []string{
		"Date,Total_Sales,Total_Quantity,Transactions",
		"2024-03-01,10.5,5,2",
		"2024-03-02,7,,",
	}, readLines(t, paths.DailyCSV))

	path, err = e.ExportMonthly(ctx, []domain.MonthlySales{{YearMonth: "2024-03", MonthlySales: 17.5, MonthlyQuantity: 5}})
	require.NoError(t, err)
	assert.Equal(t, paths.MonthlyCSV, path)
	assert.Equal(t, []string{
		"YearMonth,Monthly_Sales,Monthly_Quantity",
		"2024-03,17.5,5",
	}, readLines(t, paths.MonthlyCSV))
}
