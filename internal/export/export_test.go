package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/ikkim/bookcity-backend/internal/app/model"
	"github.com/ikkim/bookcity-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleReport() *Report {
	return &Report{
		Title:   "Stock Level Report",
		Columns: []string{"publication_id", "title", "category", "quantity"},
		Rows: [][]interface{}{
			{int64(1), "Daily Mirror", "Newspaper", int64(40)},
			{int64(2), "Vogue, Spring", "Magazine", nil},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatCSV},
		{in: "csv", want: FormatCSV},
		{in: " XLSX ", want: FormatXLSX},
		{in: "pdf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileName(t *testing.T) {
	date := time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "Sales_Report_2024-03-09.csv", FileName("Sales Report", date, FormatCSV))
	assert.Equal(t, "Customer_Statement_2024-03-09.xlsx", FileName("Customer Statement", date, FormatXLSX))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "12.50", FormatValue(12.5))
	assert.Equal(t, "7", FormatValue(int64(7)))
	assert.Equal(t, "2024-03-09", FormatValue(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-03-09", FormatValue(util.NewDateOnly(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC))))
	assert.Equal(t, "Paid", FormatValue(model.BillPaid))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), FormatCSV))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "publication_id,title,category,quantity", lines[0])
	assert.Equal(t, "1,Daily Mirror,Newspaper,40", lines[1])
	assert.Equal(t, `2,"Vogue, Spring",Magazine,`, lines[2])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), FormatXLSX))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Stock Level Report"}, f.GetSheetList())
	rows, err := f.GetRows("Stock Level Report")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"publication_id", "title", "category", "quantity"}, rows[0])
	assert.Equal(t, []string{"1", "Daily Mirror", "Newspaper", "40"}, rows[1])
	assert.Equal(t, "Vogue, Spring", rows[2][1])
}

func TestWrite_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, sampleReport(), Format("pdf")))
}

func TestSheetName_Truncates(t *testing.T) {
	assert.Equal(t, "Report", sheetName(""))
	assert.Len(t, sheetName(strings.Repeat("x", 40)), maxSheetName)
}

func TestRenderInvoice(t *testing.T) {
	order := &model.Order{
		ID:             42,
		CustomerID:     5,
		OrderDate:      util.NewDateOnly(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)),
		TotalAmount:    130,
		DeliveryStatus: model.DeliveryPending,
		PaymentStatus:  model.PaymentUnpaid,
		Customer:       &model.Customer{ID: 5, Name: "Perera Stores", Address: "12 Galle Rd"},
		OrderItems: []model.OrderItem{
			{PublicationID: 1, Quantity: 2, PricePerUnit: 50, Publication: &model.Publication{Title: "Daily Mirror"}},
			{PublicationID: 9, Quantity: 1, PricePerUnit: 30},
		},
	}

	text := RenderInvoice(order)

	assert.Contains(t, text, "INVOICE #42")
	assert.Contains(t, text, "Date: 2024-03-09")
	assert.Contains(t, text, "Customer: Perera Stores (#5)")
	assert.Contains(t, text, "Address: 12 Galle Rd")
	assert.Contains(t, text, "Daily Mirror")
	assert.Contains(t, text, "100.00")
	assert.Contains(t, text, "Publication #9")
	assert.Contains(t, text, "130.00")
	assert.Contains(t, text, "Payment: Unpaid")
}

func TestReport_Records(t *testing.T) {
	records := sampleReport().Records()
	require.Len(t, records, 2)
	assert.Equal(t, "Daily Mirror", records[0]["title"])
	assert.Nil(t, records[1]["quantity"])
}
