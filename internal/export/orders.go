// Package export renders orders as spreadsheets.
package export

import (
	"io"

	"github.com/tealeg/xlsx"

	"github.com/Skotchmaster/storefront/internal/models"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var headers = []string{
	"OrderID", "UserID", "StatusID", "TotalPrice", "CreatedAt",
	"ItemID", "ProductID", "ProductName", "Quantity", "UnitPrice",
}

// WriteOrders writes one row per order item. Orders without items still
// get a row with the item columns left empty.
func WriteOrders(w io.Writer, orders []models.Order) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return err
	}

	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetString(h)
	}

	for _, o := range orders {
		if len(o.Items) == 0 {
			orderCells(sheet.AddRow(), o)
			continue
		}
		for _, it := range o.Items {
			row := sheet.AddRow()
			orderCells(row, o)
			row.AddCell().SetInt(int(it.ID))
			row.AddCell().SetInt(int(it.ProductID))
			if it.Product != nil {
				row.AddCell().SetString(it.Product.Name)
			} else {
				row.AddCell().SetString("")
			}
			row.AddCell().SetInt(it.Quantity)
			price, _ := it.Price.Float64()
			row.AddCell().SetFloat(price)
		}
	}

	return file.Write(w)
}

func orderCells(row *xlsx.Row, o models.Order) {
	row.AddCell().SetInt(int(o.ID))
	row.AddCell().SetInt(int(o.UserID))
	if o.StatusID != nil {
		row.AddCell().SetInt(int(*o.StatusID))
	} else {
		row.AddCell().SetString("")
	}
	total, _ := o.TotalPrice.Float64()
	row.AddCell().SetFloat(total)
	row.AddCell().SetString(o.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
}
