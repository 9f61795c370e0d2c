package notify

import (
	"bytes"
	htmltemplate "html/template"
	"text/template"

	domain "github.com/Jaysins/yoghurt-backend/internal/entity"
	"github.com/shopspring/decimal"
)

// Attachment is a file carried inline with a message.
type Attachment struct {
	Filename string
	Content  []byte
}

// Message is one rendered notification: subject plus text and HTML bodies,
// optionally with the proof-of-payment attached.
type Message struct {
	Subject    string
	Text       string
	HTML       string
	Attachment *Attachment
}

type itemRow struct {
	Name     string
	Amount   string
	Quantity int
	Total    string
}

type messageData struct {
	Name           string
	Email          string
	PhoneNumber    string
	Street         string
	City           string
	State          string
	Country        string
	ReferenceCode  string
	PaymentCode    string
	ProofOfPayment string
	CreatedAt      string
	Items          []itemRow
	Total          string
}

func naira(d decimal.Decimal) string { return "₦" + d.StringFixed(2) }

func buildData(snap domain.Snapshot) messageData {
	rows := make([]itemRow, 0, len(snap.Items))
	for _, it := range snap.Items {
		rows = append(rows, itemRow{
			Name:     it.Name,
			Amount:   naira(it.Amount),
			Quantity: it.Quantity,
			Total:    naira(it.Total()),
		})
	}
	return messageData{
		Name:           snap.Name,
		Email:          snap.Email,
		PhoneNumber:    snap.PhoneNumber,
		Street:         snap.Street,
		City:           snap.City,
		State:          snap.State,
		Country:        snap.Country,
		ReferenceCode:  snap.ReferenceCode,
		PaymentCode:    snap.PaymentCode,
		ProofOfPayment: snap.ProofOfPayment,
		CreatedAt:      snap.CreatedAt.Format("2006-01-02 15:04:05"),
		Items:          rows,
		Total:          naira(snap.Total()),
	}
}

func attachment(snap domain.Snapshot, proof []byte) *Attachment {
	if len(proof) == 0 || snap.ProofOfPayment == "" {
		return nil
	}
	return &Attachment{Filename: snap.ProofOfPayment, Content: proof}
}

// ComposeCustomer renders the thank-you message. Pure: it touches nothing
// but the snapshot and the proof bytes handed to it, and it never fails.
func ComposeCustomer(snap domain.Snapshot, proof []byte) Message {
	data := buildData(snap)
	return Message{
		Subject:    "Thank You for Your Order!",
		Text:       renderText(customerText, data),
		HTML:       renderHTML(customerHTML, data),
		Attachment: attachment(snap, proof),
	}
}

// ComposeAdmin renders the new-order alert for the administrator.
func ComposeAdmin(snap domain.Snapshot, proof []byte) Message {
	data := buildData(snap)
	return Message{
		Subject:    "New Order Created - " + snap.ReferenceCode,
		Text:       renderText(adminText, data),
		HTML:       renderHTML(adminHTML, data),
		Attachment: attachment(snap, proof),
	}
}

func renderText(t *template.Template, data messageData) string {
	var buf bytes.Buffer
	_ = t.Execute(&buf, data)
	return buf.String()
}

func renderHTML(t *htmltemplate.Template, data messageData) string {
	var buf bytes.Buffer
	_ = t.Execute(&buf, data)
	return buf.String()
}

var customerText = template.Must(template.New("customer_text").Parse(`Dear {{.Name}},

Thank you for your order!

We have received your order with the following details:
- Order Reference: {{.ReferenceCode}}
- Payment Code: {{.PaymentCode}}

Your order details:
- Name: {{.Name}}
- Email: {{.Email}}
- Phone: {{.PhoneNumber}}
- Shipping Address: {{.Street}}, {{.City}}, {{.State}}, {{.Country}}

Order Items:
{{range .Items}}- {{.Name}}: {{.Amount}} x {{.Quantity}} = {{.Total}}
{{end}}Total: {{.Total}}

When making your payment, please include the code {{.PaymentCode}} in your
payment narration so we can match the payment to your order.

Best regards,
The Team
`))

var customerHTML = htmltemplate.Must(htmltemplate.New("customer_html").Parse(`<html>
<body>
    <h2>Dear {{.Name}},</h2>
    <p>Thank you for your order!</p>

    <div style="background-color: #f0f8ff; padding: 15px; border-radius: 5px; margin: 20px 0;">
        <p style="margin: 5px 0;"><strong>Order Reference:</strong> {{.ReferenceCode}}</p>
        <p style="margin: 5px 0;"><strong>Payment Code:</strong> <span style="font-size: 20px; color: #d9534f; font-weight: bold;">{{.PaymentCode}}</span></p>
    </div>

    <h3>Your order details:</h3>
    <ul>
        <li><strong>Name:</strong> {{.Name}}</li>
        <li><strong>Email:</strong> {{.Email}}</li>
        <li><strong>Phone:</strong> {{.PhoneNumber}}</li>
        <li><strong>Shipping Address:</strong> {{.Street}}, {{.City}}, {{.State}}, {{.Country}}</li>
    </ul>

    <h3>Order Items:</h3>
    <table border="1" cellpadding="8" cellspacing="0" style="border-collapse: collapse;">
        <thead>
            <tr style="background-color: #f2f2f2;">
                <th>Item</th>
                <th>Price</th>
                <th>Quantity</th>
                <th>Total</th>
            </tr>
        </thead>
        <tbody>
        {{range .Items}}<tr>
                <td>{{.Name}}</td>
                <td>{{.Amount}}</td>
                <td>{{.Quantity}}</td>
                <td>{{.Total}}</td>
            </tr>
        {{end}}</tbody>
        <tfoot>
            <tr style="font-weight: bold; background-color: #f2f2f2;">
                <td colspan="3" style="text-align: right;">Total:</td>
                <td>{{.Total}}</td>
            </tr>
        </tfoot>
    </table>

    <div style="background-color: #fff3cd; padding: 15px; border-left: 4px solid #ffc107; margin: 20px 0;">
        <h3 style="margin-top: 0;">PAYMENT INSTRUCTIONS</h3>
        <p>When making your payment, please include the following code in your payment narration/description:</p>
        <p style="font-size: 24px; font-weight: bold; color: #d9534f; text-align: center; margin: 15px 0;">{{.PaymentCode}}</p>
        <p>This payment code helps us quickly identify and process your payment.</p>
    </div>

    <p>Best regards,<br>The Team</p>
</body>
</html>
`))

var adminText = template.Must(template.New("admin_text").Parse(`New Order Alert!

A new order has been finalized with the following details:

Reference Code: {{.ReferenceCode}}
Payment Code: {{.PaymentCode}}
Name: {{.Name}}
Email: {{.Email}}
Phone: {{.PhoneNumber}}
Street: {{.Street}}
City: {{.City}}
State: {{.State}}
Country: {{.Country}}
Proof of Payment: {{.ProofOfPayment}}
Created At: {{.CreatedAt}}

Order Items:
{{range .Items}}- {{.Name}}: {{.Amount}} x {{.Quantity}} = {{.Total}}
{{end}}Total Amount: {{.Total}}

The customer has been instructed to include the payment code "{{.PaymentCode}}" in their payment narration.

Please review and process this order.
`))

var adminHTML = htmltemplate.Must(htmltemplate.New("admin_html").Parse(`<html>
<body>
    <h2>New Order Alert!</h2>
    <p>A new order has been finalized with the following details:</p>

    <table border="1" cellpadding="10" cellspacing="0" style="border-collapse: collapse;">
        <tr><td><strong>Reference Code</strong></td><td>{{.ReferenceCode}}</td></tr>
        <tr style="background-color: #fff3cd;"><td><strong>Payment Code</strong></td><td><strong style="color: #d9534f; font-size: 16px;">{{.PaymentCode}}</strong></td></tr>
        <tr><td><strong>Name</strong></td><td>{{.Name}}</td></tr>
        <tr><td><strong>Email</strong></td><td>{{.Email}}</td></tr>
        <tr><td><strong>Phone</strong></td><td>{{.PhoneNumber}}</td></tr>
        <tr><td><strong>Street</strong></td><td>{{.Street}}</td></tr>
        <tr><td><strong>City</strong></td><td>{{.City}}</td></tr>
        <tr><td><strong>State</strong></td><td>{{.State}}</td></tr>
        <tr><td><strong>Country</strong></td><td>{{.Country}}</td></tr>
        <tr><td><strong>Proof of Payment</strong></td><td>{{.ProofOfPayment}}</td></tr>
        <tr><td><strong>Created At</strong></td><td>{{.CreatedAt}}</td></tr>
    </table>

    <h3>Order Items:</h3>
    <table border="1" cellpadding="8" cellspacing="0" style="border-collapse: collapse;">
        <thead>
            <tr style="background-color: #f2f2f2;">
                <th>Item</th>
                <th>Price</th>
                <th>Quantity</th>
                <th>Total</th>
            </tr>
        </thead>
        <tbody>
        {{range .Items}}<tr>
                <td>{{.Name}}</td>
                <td>{{.Amount}}</td>
                <td>{{.Quantity}}</td>
                <td>{{.Total}}</td>
            </tr>
        {{end}}</tbody>
        <tfoot>
            <tr style="font-weight: bold; background-color: #f2f2f2;">
                <td colspan="3" style="text-align: right;">Total Amount:</td>
                <td>{{.Total}}</td>
            </tr>
        </tfoot>
    </table>

    <p>Please review and process this order.</p>
</body>
</html>
`))
