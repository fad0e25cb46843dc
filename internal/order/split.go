package order

import (
	"strings"
	"time"
)

// Columns lists the spreadsheet columns in the order they appear in the
// target worksheet. Row serialization follows this list - the column order
// is load-bearing, not cosmetic.
var Columns = []string{
	"first",
	"last",
	"nametag",
	"email",
	"phone",
	"address",
	"city",
	"state",
	"zip",
	"country",
	"volunteer",
	"share",
	"comments",
	"admissionQuantity",
	"admissionCost",
	"donation",
	"total",
	"deposit",
	"owed",
	"purchaser",
	"createdAt",
	"paypalEmail",
}

// Row is one flattened record destined for a single spreadsheet line.
type Row struct {
	cells map[string]any
}

// Cell returns the named cell value and whether it is set.
func (r Row) Cell(name string) (any, bool) {
	v, ok := r.cells[name]
	return v, ok
}

// Values returns the row's cells in Columns order. Cells the row does not
// carry render as empty strings so every row spans the full column range.
func (r Row) Values() []any {
	values := make([]any, len(Columns))
	for i, name := range Columns {
		if v, ok := r.cells[name]; ok {
			values[i] = v
		} else {
			values[i] = ""
		}
	}

	return values
}

// Split flattens an order into one row per attendee, in the same order as
// the order's people. The purchaser's row carries the shared purchase-level
// fields plus the derived owed amount and created-at date; every other row
// carries only the personal fields plus the purchaser's name.
func Split(o Order) ([]Row, error) {
	purchaser, err := o.Purchaser()
	if err != nil {
		return nil, err
	}

	owed := o.Total - o.Deposit
	createdAt := time.UnixMilli(o.Timestamp).Format("1/2/2006")

	rows := make([]Row, 0, len(o.People))
	for _, p := range o.People {
		cells := map[string]any{
			"first":   p.First,
			"last":    p.Last,
			"nametag": p.Nametag,
			"email":   p.Email,
			"phone":   p.Phone,
			"address": p.Address,
			"city":    p.City,
			"state":   p.State,
			"zip":     p.Zip,
			"country": p.Country,
		}

		if p.Index == 0 {
			cells["volunteer"] = strings.Join(o.Volunteer, ", ")
			cells["share"] = strings.Join(o.Share, ", ")
			cells["comments"] = o.Comments
			cells["admissionQuantity"] = o.AdmissionQuantity
			cells["admissionCost"] = o.AdmissionCost
			cells["donation"] = o.Donation
			cells["total"] = o.Total
			cells["deposit"] = o.Deposit
			cells["owed"] = owed
			cells["createdAt"] = createdAt
			cells["paypalEmail"] = o.PayPalEmail
		} else {
			cells["purchaser"] = purchaser.FullName()
		}

		rows = append(rows, Row{cells: cells})
	}

	return rows, nil
}
