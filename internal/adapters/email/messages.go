package email

import (
	"bytes"
	"fmt"
	"html/template"

	"communityhub/internal/domain/donation"
)

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<p>Hi {{.Name}},</p>
<p>Thanks for registering as a volunteer. You can now log in and book weekly slots.</p>`))

var receiptTmpl = template.Must(template.New("receipt").Parse(`<p>Thank you{{with .DonorName}}, {{.}}{{end}}!</p>
<p>Transaction <strong>{{.TransactionID}}</strong></p>
<table>
{{range .Items}}<tr><td>{{.Name}} &times; {{.Quantity}}</td><td>{{.Subtotal.StringFixed 2}}</td></tr>
{{end}}<tr><td><strong>Total</strong></td><td><strong>{{.Total.StringFixed 2}}</strong></td></tr>
</table>
{{with .Payment.CardLast4}}<p>Charged to card ending {{.}}</p>{{end}}`))

// WelcomeMessage builds the registration confirmation for a new volunteer.
func WelcomeMessage(to, name string) (SendRequest, error) {
	var buf bytes.Buffer
	if err := welcomeTmpl.Execute(&buf, struct{ Name string }{name}); err != nil {
		return SendRequest{}, fmt.Errorf("render welcome: %w", err)
	}
	return SendRequest{To: []string{to}, Subject: "Welcome to Community Hub", HTML: buf.String()}, nil
}

// ReceiptMessage builds the donation receipt sent to the donor.
// PRE: d has at least one item
func ReceiptMessage(d donation.Donation) (SendRequest, error) {
	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, d); err != nil {
		return SendRequest{}, fmt.Errorf("render receipt: %w", err)
	}
	return SendRequest{
		To:      []string{d.DonorEmail},
		Subject: "Your donation receipt " + d.TransactionID,
		HTML:    buf.String(),
	}, nil
}
