package utils

import (
	"bytes"
	"html/template"

	"techshop_back_end/internal/models"

	"github.com/shopspring/decimal"
)

var emailFuncs = template.FuncMap{
	"brl": func(d decimal.Decimal) string { return "R$ " + d.StringFixed(2) },
}

var orderConfirmationTmpl = template.Must(template.New("order_confirmation").Funcs(emailFuncs).Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head><meta charset="UTF-8"><title>Pedido {{.Order.OrderNumber}}</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f5f5f5; padding: 20px;">
  <div style="max-width: 600px; margin: auto; background-color: #ffffff; padding: 24px; border-radius: 12px;">
    <h2 style="color: #2563eb;">Pedido {{.Order.OrderNumber}} recebido!</h2>
    <p>Olá {{.Order.CustomerName}},</p>
    <p>Recebemos o seu pedido e ele já está sendo processado.</p>
    <table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
      <thead>
        <tr style="background-color: #f0f0f0;">
          <th style="padding: 8px; text-align: left;">Produto</th>
          <th style="padding: 8px; text-align: left;">Qtd.</th>
          <th style="padding: 8px; text-align: left;">Preço</th>
          <th style="padding: 8px; text-align: left;">Subtotal</th>
        </tr>
      </thead>
      <tbody>
        {{range .Items}}<tr>
          <td style="padding: 8px;">{{.ProductName}}</td>
          <td style="padding: 8px;">{{.Quantity}}</td>
          <td style="padding: 8px;">{{brl .ProductPrice}}</td>
          <td style="padding: 8px;">{{brl .Subtotal}}</td>
        </tr>{{end}}
      </tbody>
      <tfoot>
        <tr>
          <td colspan="3" style="padding: 8px; text-align: right; font-weight: bold;">Total:</td>
          <td style="padding: 8px; font-weight: bold;">{{brl .Order.TotalAmount}}</td>
        </tr>
      </tfoot>
    </table>
    <p>Entrega em: {{.Order.CustomerAddress}}</p>
    {{if .PixCode}}<p>Pague com PIX copia e cola:</p>
    <p style="font-family: monospace; word-break: break-all;">{{.PixCode}}</p>{{end}}
    <p style="margin-top: 30px; color: #555;">Obrigado por comprar na <strong>TechShop</strong>!</p>
  </div>
</body>
</html>`))

var statusUpdateTmpl = template.Must(template.New("status_update").Funcs(emailFuncs).Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head><meta charset="UTF-8"><title>Atualização do pedido {{.Order.OrderNumber}}</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f5f5f5; padding: 20px;">
  <div style="max-width: 600px; margin: auto; background-color: #ffffff; padding: 24px; border-radius: 12px;">
    <div style="display: inline-block; padding: 10px 20px; background-color: {{.Color}}; color: #ffffff; border-radius: 20px; font-weight: bold;">
      {{.Icon}} {{.Label}}
    </div>
    <p>Olá {{.Order.CustomerName}},</p>
    <p>{{.Message}}</p>
    <p>Pedido: <strong>{{.Order.OrderNumber}}</strong><br>Total: {{brl .Order.TotalAmount}}</p>
    {{if .Order.TrackingCode}}<p>Código de rastreamento: <strong>{{.Order.TrackingCode}}</strong></p>{{end}}
    <p style="margin-top: 30px; color: #555;">Equipe <strong>TechShop</strong></p>
  </div>
</body>
</html>`))

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head><meta charset="UTF-8"><title>Bem-vindo à TechShop</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f5f5f5; padding: 20px;">
  <div style="max-width: 600px; margin: auto; background-color: #ffffff; padding: 24px; border-radius: 12px;">
    <h2 style="color: #2563eb;">🎉 Bem-vindo à TechShop!</h2>
    <p>Olá {{.Name}}, sua conta foi criada com sucesso.</p>
    <p><a href="{{.ShopURL}}" style="color: #2563eb;">Comece a comprar</a></p>
  </div>
</body>
</html>`))

// OrderConfirmationHTML renders the e-mail sent after checkout.
func OrderConfirmationHTML(order models.Order, items []models.OrderItem, pixCode string) (string, error) {
	var buf bytes.Buffer
	err := orderConfirmationTmpl.Execute(&buf, map[string]any{
		"Order":   order,
		"Items":   items,
		"PixCode": pixCode,
	})
	return buf.String(), err
}

// StatusUpdateHTML renders the e-mail sent when an admin changes the status.
func StatusUpdateHTML(order models.Order, status models.OrderStatus) (string, error) {
	var buf bytes.Buffer
	err := statusUpdateTmpl.Execute(&buf, map[string]any{
		"Order":   order,
		"Label":   StatusLabel(status),
		"Message": statusMessage(status),
		"Icon":    statusIcon(status),
		"Color":   template.CSS(statusColor(status)),
	})
	return buf.String(), err
}

func WelcomeHTML(name, shopURL string) (string, error) {
	var buf bytes.Buffer
	err := welcomeTmpl.Execute(&buf, map[string]string{"Name": name, "ShopURL": shopURL})
	return buf.String(), err
}
