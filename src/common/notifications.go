package common

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/Vittorix99/mcp-website-sub001/src/lib"
	"github.com/Vittorix99/mcp-website-sub001/src/models"
	"github.com/Vittorix99/mcp-website-sub001/src/purchase"
)

type MailQueue interface {
	Enqueue(ctx context.Context, input *lib.SendMailInput) error
}

// MailNotifier sends the purchase confirmation with one QR code per ticket.
type MailNotifier struct {
	queue    MailQueue
	from     string
	fromName string
	qrDir    string
	qrcode   func(dir, name, text string) (string, error)
}

func NewMailNotifier(queue MailQueue, from, fromName, qrDir string) *MailNotifier {
	return &MailNotifier{
		queue:    queue,
		from:     from,
		fromName: fromName,
		qrDir:    qrDir,
		qrcode:   lib.GenerateQRCode,
	}
}

func (n *MailNotifier) OrderCaptured(ctx context.Context, order *models.Order, ev *models.Event) error {
	var attachments []string
	for i := range order.Participants {
		code := ticketCode(order, i)
		path, err := n.qrcode(n.qrDir, code, code)
		if err != nil {
			log.Printf("[mail] could not create qr code %s: %s\n", code, err.Error())
			continue
		}
		attachments = append(attachments, path)
	}
	return n.queue.Enqueue(ctx, &lib.SendMailInput{
		From:        n.from,
		FromName:    n.fromName,
		To:          order.Emails(),
		Subject:     fmt.Sprintf("Your tickets for %s", ev.Title),
		Body:        confirmationBody(order, ev),
		Html:        true,
		Attachments: attachments,
	})
}

func ticketCode(order *models.Order, i int) string {
	ref := order.Reference
	if ref == "" {
		ref = order.ID
	}
	return fmt.Sprintf("%s-%d", ref, i+1)
}

func confirmationBody(order *models.Order, ev *models.Event) string {
	var b strings.Builder
	b.WriteString("<p>Thank you for your purchase.</p>")
	fmt.Fprintf(&b, "<p><strong>%s</strong><br>%s %s<br>%s</p>", html.EscapeString(ev.Title), ev.Date, ev.StartTime, html.EscapeString(ev.Location))
	b.WriteString("<ul>")
	for i, p := range order.Participants {
		fmt.Fprintf(&b, "<li>%s %s: ticket %s</li>", html.EscapeString(p.Name), html.EscapeString(p.Surname), ticketCode(order, i))
	}
	b.WriteString("</ul>")
	fmt.Fprintf(&b, "<p>Total paid: %.2f %s</p>", order.AmountTotal, strings.ToUpper(order.Currency))
	fmt.Fprintf(&b, "<p>%s</p>", purchase.SuccessMessage(order.PurchaseMode))
	return b.String()
}
