package utils

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"time"

	"giftbox_back_end/internal/models"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/skip2/go-qrcode"
)

// GenerateUPIQR génère un QR de paiement UPI en base64 prêt à mettre
// dans <img src="...">. Utilisé sur la facture pour un éventuel solde.
func GenerateUPIQR(vpa, payeeName, ref string, amount float64) (string, error) {
	q := url.Values{}
	q.Set("pa", vpa)
	q.Set("pn", payeeName)
	q.Set("am", fmt.Sprintf("%.2f", amount))
	q.Set("cu", "INR")
	q.Set("tn", ref)

	png, err := qrcode.Encode("upi://pay?"+q.Encode(), qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// GenerateInvoicePDF rend la facture d'une commande en PDF via Chrome
// headless. Le HTML est embarqué en data URL, aucune page front requise.
func GenerateInvoicePDF(order models.Order, items []models.OrderItem, userEmail string) ([]byte, error) {
	vpa := os.Getenv("COMPANY_UPI_VPA")
	if vpa == "" {
		vpa = "giftbox@upi"
	}
	companyName := os.Getenv("COMPANY_NAME")
	if companyName == "" {
		companyName = "Giftbox"
	}

	qr, err := GenerateUPIQR(vpa, companyName, order.GatewayOrderID, order.TotalAmount)
	if err != nil {
		qr = "" // facture sans QR plutôt que pas de facture
	}

	html := invoiceHTML(order, items, userEmail, companyName, qr)
	return renderHTMLToPDF(html)
}

func renderHTMLToPDF(html string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(html))

	var pdfBuf []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate(dataURL),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuf, nil
}

func invoiceHTML(order models.Order, items []models.OrderItem, userEmail, companyName, qrDataURL string) string {
	rows := ""
	for _, item := range items {
		rows += fmt.Sprintf(`<tr><td>%s</td><td>%d</td><td>₹%.2f</td><td>₹%.2f</td></tr>`,
			item.Name, item.Quantity, item.Price, item.Subtotal())
	}

	qrImg := ""
	if qrDataURL != "" {
		qrImg = fmt.Sprintf(`<img src="%s" width="128" height="128" alt="QR UPI">`, qrDataURL)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head><meta charset="UTF-8"><title>Facture</title></head>
<body style="font-family: Arial, sans-serif; padding: 30px;">
	<h1>%s — Facture</h1>
	<p>Commande : %s<br>Référence passerelle : %s<br>Client : %s<br>Date : %s</p>
	<table border="1" cellpadding="8" cellspacing="0" style="border-collapse: collapse; width: 100%%;">
		<thead><tr><th>Produit</th><th>Quantité</th><th>Prix unitaire</th><th>Total</th></tr></thead>
		<tbody>%s</tbody>
		<tfoot><tr><td colspan="3" align="right"><b>Total</b></td><td><b>₹%.2f</b></td></tr></tfoot>
	</table>
	<p>Adresse de livraison : %s</p>
	%s
</body>
</html>`, companyName, order.ID, order.GatewayOrderID, userEmail,
		order.OrderDate.Format("02/01/2006"), rows, order.TotalAmount, order.ShippingAddress, qrImg)
}
