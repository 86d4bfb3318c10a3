// Package importer turns bank CSV statements into transaction params.
package importer

import (
	"strings"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/money"
	"github.com/MrJamesThe3rd/finsight/internal/transaction"
)

type Format string

const (
	FormatGeneric Format = "generic"
	FormatCGD     Format = "cgd"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatGeneric, FormatCGD:
		return f, nil
	case "":
		return FormatGeneric, nil
	default:
		return "", apperr.Validation("unknown import format %q", s)
	}
}

// amountMode determines how amounts are extracted from a row.
type amountMode int

const (
	// amountSingle means one signed column (e.g. "Montante" with value "-10,00").
	amountSingle amountMode = iota
	// amountSplit means separate debit and credit columns (e.g. "Débito"/"Crédito").
	amountSplit
)

// Dialect is how a bank writes its CSV files.
type Dialect struct {
	Comma       rune
	DateLayouts []string
	ParseAmount func(string) (int64, error)
}

// Profile describes the column layout of one export format. Column names
// are matched case-insensitively after trimming.
type Profile struct {
	Name       string
	DateCol    string
	DescCol    string
	AmountMode amountMode
	AmountCol  string
	DebitCol   string
	CreditCol  string

	// Optional columns; a missing one leaves the field to defaults.
	CategoryCol string
	TypeCol     string
	MethodCol   string
	NotesCol    string

	PaymentMethod transaction.PaymentMethod
}

func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	switch p.AmountMode {
	case amountSingle:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

type formatSpec struct {
	dialect  Dialect
	profiles []Profile
}

// formats lists, per format, the profiles tried during header detection.
// More specific profiles come first to avoid false matches.
var formats = map[Format]formatSpec{
	FormatGeneric: {
		dialect: Dialect{
			Comma:       ',',
			DateLayouts: []string{"2006-01-02", "02/01/2006", "2006/01/02"},
			ParseAmount: money.Parse,
		},
		profiles: []Profile{
			{
				Name:        "generic",
				DateCol:     "date",
				DescCol:     "description",
				AmountMode:  amountSingle,
				AmountCol:   "amount",
				CategoryCol: "category",
				TypeCol:     "type",
				MethodCol:   "payment_method",
				NotesCol:    "notes",
			},
		},
	},
	FormatCGD: {
		dialect: Dialect{
			Comma:       ';',
			DateLayouts: []string{"02-01-2006"},
			ParseAmount: money.ParseEuropean,
		},
		profiles: []Profile{
			{
				Name:          "cartão",
				DateCol:       "Data",
				DescCol:       "Descrição",
				AmountMode:    amountSplit,
				DebitCol:      "Débito",
				CreditCol:     "Crédito",
				PaymentMethod: transaction.PaymentCard,
			},
			{
				Name:          "extrato",
				DateCol:       "Data mov.",
				DescCol:       "Descrição",
				AmountMode:    amountSingle,
				AmountCol:     "Movimento",
				PaymentMethod: transaction.PaymentBankTransfer,
			},
			{
				Name:          "conta",
				DateCol:       "Data mov.",
				DescCol:       "Descrição",
				AmountMode:    amountSingle,
				AmountCol:     "Montante",
				PaymentMethod: transaction.PaymentBankTransfer,
			},
		},
	},
}
