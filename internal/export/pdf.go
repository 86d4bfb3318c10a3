package export

import (
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/MrJamesThe3rd/finsight/internal/analytics"
	"github.com/MrJamesThe3rd/finsight/internal/money"
)

const (
	pdfFont   = "Helvetica"
	rowHeight = 7
)

// WritePDF lays out the report on A4 pages. Sections follow the analytics
// operations, then the transaction list.
func WritePDF(w io.Writer, report *Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Finsight financial report", false)
	pdf.SetMargins(14, 14, 14)
	pdf.SetAutoPageBreak(true, 14)
	pdf.AddPage()

	// Core fonts are cp1252; the translator keeps accented descriptions legible.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(pdfFont, "B", 18)
	pdf.Cell(0, 10, "Financial Report")
	pdf.Ln(10)

	pdf.SetFont(pdfFont, "", 11)
	pdf.Cell(0, 6, tr(fmt.Sprintf("%s <%s>", report.UserName, report.UserEmail)))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s to %s",
		report.Range.Start.Format(time.DateOnly), report.Range.End.Format(time.DateOnly)))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Generated: "+report.GeneratedAt.Format("2006-01-02 15:04"))
	pdf.Ln(10)

	section(pdf, "Overview")

	ov := report.Overview
	for _, line := range [][2]string{
		{"Total income", money.Format(ov.TotalIncome)},
		{"Total expenses", money.Format(ov.TotalExpenses)},
		{"Net savings", money.Format(ov.NetSavings)},
		{"Savings rate", fmt.Sprintf("%.2f%%", ov.SavingsRate)},
		{"Transactions", fmt.Sprintf("%d", ov.TransactionCount)},
	} {
		pdf.Cell(60, rowHeight, line[0])
		pdf.CellFormat(40, rowHeight, line[1], "", 0, "R", false, 0, "")
		pdf.Ln(rowHeight)
	}

	pdf.Ln(4)

	breakdown(pdf, tr, "Expenses by category", report.Expenses)
	breakdown(pdf, tr, "Income by category", report.Income)
	budgets(pdf, tr, report.Budgets)
	goals(pdf, tr, report.Goals)
	insights(pdf, tr, report.Insights)
	monthly(pdf, report.MonthlyTrend)
	daily(pdf, report.DailyTrend)

	section(pdf, "Transactions")

	widths := []float64{24, 18, 36, 72, 32}

	pdf.SetFont(pdfFont, "B", 10)

	for i, h := range []string{"Date", "Type", "Category", "Description", "Amount"} {
		align := "L"
		if i == len(widths)-1 {
			align = "R"
		}

		pdf.CellFormat(widths[i], rowHeight, h, "B", 0, align, false, 0, "")
	}

	pdf.Ln(rowHeight)
	pdf.SetFont(pdfFont, "", 9)

	for _, r := range report.Transactions {
		pdf.CellFormat(widths[0], rowHeight, r.Date.Format(time.DateOnly), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], rowHeight, string(r.Type), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], rowHeight, tr(truncate(r.Category, 20)), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], rowHeight, tr(truncate(r.Description, 42)), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[4], rowHeight, money.Format(r.Amount), "", 0, "R", false, 0, "")
		pdf.Ln(rowHeight)
	}

	if err := pdf.Error(); err != nil {
		return err
	}

	return pdf.Output(w)
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont(pdfFont, "B", 13)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)
	pdf.SetFont(pdfFont, "", 11)
}

func breakdown(pdf *gofpdf.Fpdf, tr func(string) string, title string, totals []analytics.CategoryTotal) {
	if len(totals) == 0 {
		return
	}

	section(pdf, title)

	pdf.SetFont(pdfFont, "B", 10)
	pdf.Cell(70, rowHeight, "Category")
	pdf.CellFormat(40, rowHeight, "Amount", "", 0, "R", false, 0, "")
	pdf.CellFormat(20, rowHeight, "Count", "", 0, "R", false, 0, "")
	pdf.CellFormat(30, rowHeight, "%", "", 0, "R", false, 0, "")
	pdf.Ln(rowHeight)

	pdf.SetFont(pdfFont, "", 10)

	for _, ct := range totals {
		pdf.Cell(70, rowHeight, tr(ct.Category))
		pdf.CellFormat(40, rowHeight, money.Format(ct.Total), "", 0, "R", false, 0, "")
		pdf.CellFormat(20, rowHeight, fmt.Sprintf("%d", ct.Count), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, rowHeight, fmt.Sprintf("%.2f", ct.Percentage), "", 0, "R", false, 0, "")
		pdf.Ln(rowHeight)
	}

	pdf.Ln(4)
}

// table writes a bold header row and then rows; the first column is left
// aligned, the rest right aligned.
func table(pdf *gofpdf.Fpdf, widths []float64, header []string, rows [][]string) {
	line := func(cells []string) {
		for i, c := range cells {
			align := "R"
			if i == 0 {
				align = "L"
			}

			pdf.CellFormat(widths[i], rowHeight, c, "", 0, align, false, 0, "")
		}

		pdf.Ln(rowHeight)
	}

	pdf.SetFont(pdfFont, "B", 10)
	line(header)
	pdf.SetFont(pdfFont, "", 10)

	for _, r := range rows {
		line(r)
	}

	pdf.Ln(4)
}

func budgets(pdf *gofpdf.Fpdf, tr func(string) string, perf []analytics.BudgetPerformance) {
	if len(perf) == 0 {
		return
	}

	section(pdf, "Budget performance")

	rows := make([][]string, 0, len(perf))
	for _, b := range perf {
		rows = append(rows, []string{
			tr(truncate(b.Category, 24)),
			money.Format(b.BudgetAmount),
			money.Format(b.Spent),
			money.Format(b.Remaining),
			fmt.Sprintf("%.2f", b.PercentUsed),
			string(b.Status),
		})
	}

	table(pdf, []float64{50, 30, 30, 30, 20, 22},
		[]string{"Category", "Budget", "Spent", "Remaining", "%", "Status"}, rows)
}

func goals(pdf *gofpdf.Fpdf, tr func(string) string, report analytics.GoalReport) {
	if report.Summary.TotalGoals == 0 {
		return
	}

	section(pdf, "Goal progress")

	sum := report.Summary
	pdf.Cell(0, rowHeight, fmt.Sprintf("%d active, %d completed. Saved %s of %s (%.2f%%).",
		sum.Active, sum.Completed, money.Format(sum.TotalSaved), money.Format(sum.TotalTarget), sum.OverallProgress))
	pdf.Ln(rowHeight + 2)

	rows := make([][]string, 0, len(report.Goals))
	for _, g := range report.Goals {
		rows = append(rows, []string{
			tr(truncate(g.Name, 24)),
			money.Format(g.CurrentAmount),
			money.Format(g.TargetAmount),
			fmt.Sprintf("%.2f", g.Progress),
			g.TargetDate.Format(time.DateOnly),
			string(g.Status),
		})
	}

	table(pdf, []float64{50, 30, 30, 20, 30, 22},
		[]string{"Goal", "Saved", "Target", "%", "Target date", "Status"}, rows)
}

func insights(pdf *gofpdf.Fpdf, tr func(string) string, list []analytics.Insight) {
	if len(list) == 0 {
		return
	}

	section(pdf, "Insights")

	for _, in := range list {
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("[%s] %s", in.Priority, in.Message)), "", "L", false)
	}

	pdf.Ln(4)
}

func monthly(pdf *gofpdf.Fpdf, points []analytics.MonthlyPoint) {
	if len(points) == 0 {
		return
	}

	section(pdf, "Monthly trend")

	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{p.Month, money.Format(p.Income), money.Format(p.Expenses), money.Format(p.Savings)})
	}

	table(pdf, []float64{40, 40, 40, 40}, []string{"Month", "Income", "Expenses", "Savings"}, rows)
}

// daily lists only days with activity; the JSON report carries every day.
func daily(pdf *gofpdf.Fpdf, points []analytics.DailyPoint) {
	var rows [][]string

	for _, p := range points {
		if p.Income == 0 && p.Expenses == 0 {
			continue
		}

		rows = append(rows, []string{p.Date, money.Format(p.Income), money.Format(p.Expenses), money.Format(p.Net)})
	}

	if len(rows) == 0 {
		return
	}

	section(pdf, "Daily activity")
	table(pdf, []float64{40, 40, 40, 40}, []string{"Date", "Income", "Expenses", "Net"}, rows)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n-1]) + "…"
}
