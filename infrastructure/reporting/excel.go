package reporting

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"renewtrack.com/renewtrack/core"
	"renewtrack.com/renewtrack/utils"
)

// BuildReportWorkbook renders the report as an .xlsx workbook, one sheet per
// section. The caller owns the returned file and should Close it.
func BuildReportWorkbook(report *core.Report) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := writeSummarySheet(f, report); err != nil {
		return nil, err
	}
	if err := writePeriodSheet(f, "Monthly", report.Monthly); err != nil {
		return nil, err
	}
	if err := writePeriodSheet(f, "Yearly", report.Yearly); err != nil {
		return nil, err
	}
	if err := writeCustomerSheet(f, report.TopCustomers); err != nil {
		return nil, err
	}
	if err := writeServiceSheet(f, report.ServiceBreakdown); err != nil {
		return nil, err
	}
	if err := writeRenewalSheet(f, report.RecentRenewals); err != nil {
		return nil, err
	}

	// The default sheet was repurposed as Summary; make it the landing tab.
	index, err := f.GetSheetIndex("Summary")
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	return f, nil
}

func writeSummarySheet(f *excelize.File, report *core.Report) error {
	const sheet = "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Report year", report.CurrentYear},
		{"Total customers", report.Summary.TotalCustomers},
		{"Total subscriptions", report.Summary.TotalSubscriptions},
		{"Active subscriptions", report.Summary.ActiveSubscriptions},
		{"Due soon", report.Summary.DueSoon},
		{"Expired", report.Summary.Expired},
		{"Total revenue", report.Summary.TotalRevenue.StringFixed(2)},
		{"Active revenue", report.Summary.ActiveRevenue.StringFixed(2)},
	}
	return writeRows(f, sheet, rows)
}

func writePeriodSheet(f *excelize.File, sheet string, breakdown []core.PeriodBreakdown) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	rows := [][]interface{}{{"Period", "Count", "Revenue"}}
	for _, row := range breakdown {
		rows = append(rows, []interface{}{row.Period, row.Count, row.Revenue.StringFixed(2)})
	}
	return writeRows(f, sheet, rows)
}

func writeCustomerSheet(f *excelize.File, customers []core.CustomerRevenue) error {
	const sheet = "Top Customers"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	rows := [][]interface{}{{"Customer", "Subscriptions", "Revenue"}}
	for _, row := range customers {
		rows = append(rows, []interface{}{row.Name, row.SubCount, row.TotalRevenue.StringFixed(2)})
	}
	return writeRows(f, sheet, rows)
}

func writeServiceSheet(f *excelize.File, services []core.ServiceBreakdown) error {
	const sheet = "Services"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	rows := [][]interface{}{{"Service", "Count", "Revenue"}}
	for _, row := range services {
		rows = append(rows, []interface{}{row.Name, row.Count, row.Revenue.StringFixed(2)})
	}
	return writeRows(f, sheet, rows)
}

func writeRenewalSheet(f *excelize.File, renewals []core.RenewalEntry) error {
	const sheet = "Renewals"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	rows := [][]interface{}{{"Customer", "Service", "Domain", "Old End", "New End", "Renewed By", "Renewed At"}}
	for _, row := range renewals {
		rows = append(rows, []interface{}{
			row.CustomerName,
			row.ServiceName,
			row.DomainOrService,
			utils.FormatDate(row.OldEndDate),
			utils.FormatDate(row.NewEndDate),
			row.RenewedBy,
			row.RenewedAt.UTC().Format("2006-01-02 15:04:05"),
		})
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d of %s: %w", i+1, sheet, err)
		}
	}
	return nil
}
