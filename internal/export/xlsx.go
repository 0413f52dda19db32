package export

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/xuri/excelize/v2"

	"github.com/mtlprog/catprice/internal/domain"
)

const defaultSheet = "Sheet1"

// XLSXWriter writes reports to a local .xlsx workbook. Sheets not owned by a call are left intact.
type XLSXWriter struct {
	path string
}

// NewXLSXWriter creates a writer for the workbook at path. The file is created on first write.
func NewXLSXWriter(path string) *XLSXWriter {
	return &XLSXWriter{path: path}
}

// WritePrices replaces the PRICES sheet.
func (w *XLSXWriter) WritePrices(_ context.Context, report domain.PriceReport) error {
	return w.write(priceTables(report))
}

// WriteTreasury replaces the TREASURY, TOKENS and NFTS sheets.
func (w *XLSXWriter) WriteTreasury(_ context.Context, records []domain.WalletRecord) error {
	return w.write(treasuryTables(records))
}

func (w *XLSXWriter) write(tables []table) error {
	f, fresh, err := w.open()
	if err != nil {
		return err
	}
	defer f.Close()

	for _, t := range tables {
		if err := replaceSheet(f, t); err != nil {
			return err
		}
	}

	if fresh {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return fmt.Errorf("removing default sheet: %w", err)
		}
	}
	if idx, err := f.GetSheetIndex(tables[0].name); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("saving %s: %w", w.path, err)
	}
	return nil
}

func (w *XLSXWriter) open() (*excelize.File, bool, error) {
	f, err := excelize.OpenFile(w.path)
	if err == nil {
		return f, false, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return excelize.NewFile(), true, nil
	}
	return nil, false, fmt.Errorf("opening %s: %w", w.path, err)
}

func replaceSheet(f *excelize.File, t table) error {
	// NewSheet returns the existing index when the sheet is already there.
	if _, err := f.NewSheet(t.name); err != nil {
		return fmt.Errorf("creating sheet %s: %w", t.name, err)
	}
	old, err := f.GetRows(t.name)
	if err != nil {
		return fmt.Errorf("reading sheet %s: %w", t.name, err)
	}
	for i := len(old); i >= 1; i-- {
		if err := f.RemoveRow(t.name, i); err != nil {
			return fmt.Errorf("clearing sheet %s: %w", t.name, err)
		}
	}

	for i, row := range t.rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("sheet %s row %d: %w", t.name, i+1, err)
		}
		if err := f.SetSheetRow(t.name, cell, &row); err != nil {
			return fmt.Errorf("writing sheet %s row %d: %w", t.name, i+1, err)
		}
	}
	return nil
}
