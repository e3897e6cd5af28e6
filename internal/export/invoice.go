package export

import (
	"fmt"
	"strings"

	"github.com/ikkim/bookcity-backend/internal/app/model"
)

const invoiceWidth = 64

// RenderInvoice formats an order with its customer and lines as plain text.
// Items should have Publication preloaded; a missing title falls back to the id.
func RenderInvoice(order *model.Order) string {
	var b strings.Builder
	rule := strings.Repeat("-", invoiceWidth)

	fmt.Fprintf(&b, "INVOICE #%d\n", order.ID)
	fmt.Fprintf(&b, "Date: %s\n", order.OrderDate.String())
	if order.Customer != nil {
		fmt.Fprintf(&b, "Customer: %s (#%d)\n", order.Customer.Name, order.CustomerID)
		if order.Customer.Address != "" {
			fmt.Fprintf(&b, "Address: %s\n", order.Customer.Address)
		}
	} else {
		fmt.Fprintf(&b, "Customer: #%d\n", order.CustomerID)
	}
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "%-30s %6s %12s %12s\n", "Item", "Qty", "Unit", "Subtotal")
	b.WriteString(rule + "\n")

	for _, item := range order.OrderItems {
		var title string
		if item.Publication != nil {
			title = item.Publication.Title
		}
		if title == "" {
			title = fmt.Sprintf("Publication #%d", item.PublicationID)
		}
		if len(title) > 30 {
			title = title[:27] + "..."
		}
		fmt.Fprintf(&b, "%-30s %6d %12.2f %12.2f\n", title, item.Quantity, item.PricePerUnit, item.Subtotal())
	}

	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "%-50s %12.2f\n", "TOTAL", order.TotalAmount)
	fmt.Fprintf(&b, "Delivery: %s   Payment: %s\n", order.DeliveryStatus, order.PaymentStatus)
	return b.String()
}
