package http

import (
	"time"

	"purchase-order-service/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	monthlySheet = "Monthly"
	ordersSheet  = "Orders"
)

var (
	monthlyHeaders = []string{"Month", "Profit"}
	ordersHeaders  = []string{"Month", "Order ID", "Item ID", "Service", "Product", "Total Cost", "Total Price", "Profit", "Created"}
)

// profitWorkbook renders the monthly totals and the per-item rows behind them.
func profitWorkbook(rows []domain.OrderProfit, totals []domain.TotalProfit) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", monthlySheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(ordersSheet); err != nil {
		f.Close()
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := writeHeader(f, monthlySheet, monthlyHeaders, bold); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeHeader(f, ordersSheet, ordersHeaders, bold); err != nil {
		f.Close()
		return nil, err
	}

	for i, t := range totals {
		if err := writeRow(f, monthlySheet, i+2, time.Month(t.Month).String(), t.Profit.InexactFloat64()); err != nil {
			f.Close()
			return nil, err
		}
	}
	for i, p := range rows {
		err := writeRow(f, ordersSheet, i+2,
			p.CreatedDate.Month().String(),
			p.OrderID.String(),
			p.ID.String(),
			p.ServiceName,
			p.ProductName,
			p.TotalCost.InexactFloat64(),
			p.TotalPrice.InexactFloat64(),
			p.Profit.InexactFloat64(),
			p.CreatedDate.UTC().Format(time.RFC3339),
		)
		if err != nil {
			f.Close()
			return nil, err
		}
	}

	if err := f.SetColWidth(ordersSheet, "B", "C", 38); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}
