package report

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
)

var ErrNothingToChart = errors.New("no transactions in period")

// ExpensePieChart renders the period's expense breakdown as a PNG.
func ExpensePieChart(summary *Summary) ([]byte, error) {
	values := make([]chart.Value, 0, len(summary.Expenses))
	for _, ct := range summary.Expenses {
		v, _ := ct.Total.Float64()
		if v <= 0 {
			continue
		}
		values = append(values, chart.Value{Value: v, Label: ct.CategoryName})
	}
	if len(values) == 0 {
		return nil, ErrNothingToChart
	}

	pie := chart.PieChart{
		Width:  512,
		Height: 512,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render pie chart: %w", err)
	}
	return buf.Bytes(), nil
}

// IncomeExpenseBarChart renders period totals side by side as a PNG.
func IncomeExpenseBarChart(summary *Summary) ([]byte, error) {
	income, _ := summary.TotalIncome.Float64()
	expense, _ := summary.TotalExpense.Float64()
	if income == 0 && expense == 0 {
		return nil, ErrNothingToChart
	}

	bar := chart.BarChart{
		Width:    512,
		Height:   512,
		BarWidth: 80,
		Bars: []chart.Value{
			{Value: income, Label: "Income"},
			{Value: expense, Label: "Expenses"},
		},
	}

	var buf bytes.Buffer
	if err := bar.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render bar chart: %w", err)
	}
	return buf.Bytes(), nil
}
