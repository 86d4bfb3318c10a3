package export

import (
	"encoding/csv"
	"io"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/finsight/internal/money"
)

var csvHeader = []string{"date", "type", "category", "description", "amount", "payment_method", "tags", "notes"}

// WriteCSV writes one row per transaction with amounts as decimal text.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range rows {
		record := []string{
			r.Date.Format(time.DateOnly),
			string(r.Type),
			r.Category,
			r.Description,
			money.Format(r.Amount),
			string(r.PaymentMethod),
			strings.Join(r.Tags, ";"),
			r.Notes,
		}

		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}
