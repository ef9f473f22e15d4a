package payment

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMethodUnsupported is returned for payment methods that cannot be settled yet.
var ErrMethodUnsupported = errors.New("payment: method not supported")

// Method identifies how a sale is paid.
type Method string

const (
	MethodCash Method = "cash"
	MethodCard Method = "card"
	MethodQRIS Method = "qris"
)

var methodLabels = map[Method]string{
	MethodCash: "Tunai",
	MethodCard: "Kartu Debit/Kredit",
	MethodQRIS: "QRIS",
}

// Methods lists the methods offered on the payment screen, in display order.
func Methods() []Method {
	return []Method{MethodCash, MethodCard, MethodQRIS}
}

// Label returns the display name of m.
func (m Method) Label() string {
	if label, ok := methodLabels[m]; ok {
		return label
	}
	return string(m)
}

// Supported reports whether sales can be completed with m.
func (m Method) Supported() bool {
	return m == MethodCash
}

// ParseMethod accepts a method code or its display label. Blank input means cash.
func ParseMethod(raw string) (Method, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return MethodCash, nil
	}
	for m, label := range methodLabels {
		if strings.EqualFold(value, string(m)) || strings.EqualFold(value, label) {
			return m, nil
		}
	}
	return "", fmt.Errorf("method %q: %w", raw, ErrInvalidInput)
}

// RequireSupported returns ErrMethodUnsupported unless m can be settled.
func RequireSupported(m Method) error {
	if !m.Supported() {
		return fmt.Errorf("%s: %w", m.Label(), ErrMethodUnsupported)
	}
	return nil
}
