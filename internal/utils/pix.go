package utils

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"

	"techshop_back_end/internal/config"
	"techshop_back_end/internal/models"

	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// PixCharge describes a static PIX BR Code for one order.
type PixCharge struct {
	Key          string // PIX key of the merchant (CNPJ, e-mail, phone or random key)
	MerchantName string
	MerchantCity string
	Amount       decimal.Decimal
	TxID         string // order reference shown on the bank statement
}

// BRCode renders the EMV "copia e cola" payload, CRC included.
func (p PixCharge) BRCode() (string, error) {
	if p.Key == "" {
		return "", fmt.Errorf("pix key not configured")
	}
	if p.Amount.IsNegative() {
		return "", fmt.Errorf("pix amount must not be negative")
	}

	account := emvField("00", "br.gov.bcb.pix") + emvField("01", p.Key)
	txid := pixText(p.TxID, 25, true)
	if txid == "" {
		txid = "***"
	}

	var b strings.Builder
	b.WriteString(emvField("00", "01"))
	b.WriteString(emvField("26", account))
	b.WriteString(emvField("52", "0000"))
	b.WriteString(emvField("53", "986"))
	if p.Amount.IsPositive() {
		b.WriteString(emvField("54", p.Amount.StringFixed(2)))
	}
	b.WriteString(emvField("58", "BR"))
	b.WriteString(emvField("59", pixText(p.MerchantName, 25, false)))
	b.WriteString(emvField("60", pixText(p.MerchantCity, 15, false)))
	b.WriteString(emvField("62", emvField("05", txid)))
	b.WriteString("6304")

	payload := b.String()
	return payload + fmt.Sprintf("%04X", CRC16CCITT([]byte(payload))), nil
}

// QRCodeDataURI renders the payload as a PNG data URI for <img src>.
func (p PixCharge) QRCodeDataURI(size int) (string, string, error) {
	code, err := p.BRCode()
	if err != nil {
		return "", "", err
	}
	png, err := qrcode.Encode(code, qrcode.Medium, size)
	if err != nil {
		return "", "", err
	}
	return code, "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// PixIssuer builds charges for the merchant configured in the environment.
type PixIssuer struct {
	key  string
	name string
	city string
}

// NewPixIssuer returns nil when no PIX key is configured.
func NewPixIssuer(cfg *config.Config) *PixIssuer {
	if cfg.PixKey == "" {
		return nil
	}
	return &PixIssuer{key: cfg.PixKey, name: cfg.PixMerchantName, city: cfg.PixMerchantCity}
}

// Charge is the BR Code charge of one order, referenced by its number.
func (i *PixIssuer) Charge(order models.Order) PixCharge {
	return PixCharge{
		Key:          i.key,
		MerchantName: i.name,
		MerchantCity: i.city,
		Amount:       order.TotalAmount,
		TxID:         order.OrderNumber,
	}
}

func emvField(id, value string) string {
	return fmt.Sprintf("%s%02d%s", id, len(value), value)
}

// pixText strips accents, upper-cases and truncates free text. With
// alnumOnly everything but ASCII letters and digits is dropped (txid rules).
func pixText(s string, max int, alnumOnly bool) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}

	var b strings.Builder
	for _, r := range strings.ToUpper(plain) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case !alnumOnly && r < unicode.MaxASCII && unicode.IsPrint(r):
			b.WriteRune(r)
		}
		if b.Len() == max {
			break
		}
	}
	return strings.TrimSpace(b.String())
}

// CRC16CCITT is CRC-16/CCITT-FALSE (poly 0x1021, init 0xFFFF), as required by the BR Code checksum.
func CRC16CCITT(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, c := range data {
		crc ^= uint16(c) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
