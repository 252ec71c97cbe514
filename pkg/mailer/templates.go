package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// ReceiptLine is one purchased item in an email body.
type ReceiptLine struct {
	Description string
	Price       string
}

// PurchaseReceipt is the data for the buyer's confirmation email.
type PurchaseReceipt struct {
	Name    string
	OrderID uint
	Total   string
	Lines   []ReceiptLine
}

// SaleNotice is the data for a seller's "you made a sale" email.
type SaleNotice struct {
	Name     string
	OrderID  uint
	LabelURL string
	Lines    []ReceiptLine
}

var (
	receiptTmpl = template.Must(template.New("receipt").Parse(`<h2>Thanks for your order, {{.Name}}!</h2>
<p>Order #{{.OrderID}}</p>
<ul>{{range .Lines}}<li>{{.Description}}: ${{.Price}}</li>{{end}}</ul>
<p><strong>Total: ${{.Total}}</strong></p>`))

	saleTmpl = template.Must(template.New("sale").Parse(`<h2>You made a sale, {{.Name}}!</h2>
<p>Order #{{.OrderID}}</p>
<ul>{{range .Lines}}<li>{{.Description}}: ${{.Price}}</li>{{end}}</ul>
{{if .LabelURL}}<p><a href="{{.LabelURL}}">Print your shipping label</a></p>{{end}}`))
)

// RenderPurchaseReceipt builds the buyer confirmation message.
func RenderPurchaseReceipt(to string, data PurchaseReceipt) (Message, error) {
	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("mailer: render receipt: %w", err)
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Your Sprift order #%d", data.OrderID),
		HTML:    buf.String(),
	}, nil
}

// RenderSaleNotice builds the seller notification message.
func RenderSaleNotice(to string, data SaleNotice) (Message, error) {
	var buf bytes.Buffer
	if err := saleTmpl.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("mailer: render sale notice: %w", err)
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf("You sold an item on Sprift (order #%d)", data.OrderID),
		HTML:    buf.String(),
	}, nil
}
