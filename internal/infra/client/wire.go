package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tecnomaub/rupia-wallet-bfa/internal/domain"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/money"
)

// ============================================================
// Upstream wire format (pt-BR field names)
// ============================================================

// flexID decodes an identifier sent either as a JSON number or a string.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

// idValue encodes an ID back as a number when it is numeric, as the upstream
// stores integer keys.
func idValue(id string) any {
	if id == "" {
		return nil
	}
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}

// wireAmount decodes "valor". JSON numbers are read as plain decimals; strings
// go through the pt-BR aware parser.
type wireAmount struct {
	value decimal.Decimal
	raw   string
	err   error
}

func (a *wireAmount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	a.raw = string(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		a.err = money.ErrInvalidAmount
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		a.raw = s
		a.value, a.err = money.Parse(s)
	default:
		d, err := decimal.NewFromString(string(b))
		switch {
		case err != nil:
			a.err = err
		case d.IsNegative():
			a.err = money.ErrInvalidAmount
		default:
			a.value = d.Round(2)
		}
	}
	return nil
}

type wireCategoryRef struct {
	ID   flexID `json:"id"`
	Nome string `json:"nome"`
}

type wireTransaction struct {
	ID             flexID           `json:"id"`
	Data           string           `json:"data"`
	Valor          *wireAmount      `json:"valor"`
	Tipo           string           `json:"tipo"`
	FormaPagamento string           `json:"formaPagamento"`
	CategoriaID    flexID           `json:"categoriaId"`
	Categoria      *wireCategoryRef `json:"categoria,omitempty"`
	Descricao      string           `json:"descricao"`
}

type wireTransactionOut struct {
	Data           string      `json:"data"`
	Valor          json.Number `json:"valor"`
	Tipo           string      `json:"tipo"`
	FormaPagamento string      `json:"formaPagamento"`
	CategoriaID    any         `json:"categoriaId"`
	Descricao      string      `json:"descricao"`
}

type wireCategory struct {
	ID    flexID `json:"id"`
	Nome  string `json:"nome"`
	Tipo  string `json:"tipo"`
	Cor   string `json:"cor"`
	Icone string `json:"icone"`
}

type wireCategoryOut struct {
	Nome  string `json:"nome"`
	Tipo  string `json:"tipo"`
	Cor   string `json:"cor"`
	Icone string `json:"icone,omitempty"`
}

type wireUser struct {
	ID    flexID `json:"id"`
	Nome  string `json:"nome"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// wireLogin accepts {token, user{...}} as well as the flat {token, id, nome, email}.
type wireLogin struct {
	Token   string    `json:"token"`
	User    *wireUser `json:"user"`
	Usuario *wireUser `json:"usuario"`
	wireUser
}

// ============================================================
// Mapping
// ============================================================

var errRecord = errors.New("invalid upstream record")

func recordError(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", errRecord, field, fmt.Sprintf(format, args...))
}

func kindFromWire(tipo string) (domain.Kind, bool) {
	switch strings.ToUpper(strings.TrimSpace(tipo)) {
	case "ENTRADA", "GANHO":
		return domain.KindIncome, true
	case "SAIDA", "SAÍDA", "GASTO":
		return domain.KindExpense, true
	}
	return "", false
}

func kindToWire(k domain.Kind) string {
	if k == domain.KindIncome {
		return "ENTRADA"
	}
	return "SAIDA"
}

func paymentFromWire(forma string) (domain.PaymentMethod, bool) {
	switch strings.ToUpper(strings.TrimSpace(forma)) {
	case "DINHEIRO":
		return domain.PaymentCash, true
	case "PIX":
		return domain.PaymentPix, true
	case "CREDITO", "CRÉDITO":
		return domain.PaymentCreditCard, true
	case "DEBITO", "DÉBITO":
		return domain.PaymentDebitCard, true
	}
	return "", false
}

func paymentToWire(p domain.PaymentMethod) string {
	switch p {
	case domain.PaymentCash:
		return "DINHEIRO"
	case domain.PaymentCreditCard:
		return "CREDITO"
	case domain.PaymentDebitCard:
		return "DEBITO"
	}
	return "PIX"
}

func categoryKindFromWire(tipo string) (domain.CategoryKind, bool) {
	switch strings.ToLower(strings.TrimSpace(tipo)) {
	case "gasto", "", "saida":
		return domain.CategoryExpense, true
	case "ganho", "entrada":
		return domain.CategoryIncome, true
	}
	return "", false
}

func categoryKindToWire(k domain.CategoryKind) string {
	if k == domain.CategoryIncome {
		return "ganho"
	}
	return "gasto"
}

// toDomain validates an upstream transaction. The date may carry a time part,
// which is dropped.
func (w wireTransaction) toDomain() (domain.Transaction, error) {
	if w.ID == "" {
		return domain.Transaction{}, recordError("id", "missing")
	}

	raw := strings.TrimSpace(w.Data)
	if len(raw) > len(domain.DateLayout) {
		raw = raw[:len(domain.DateLayout)]
	}
	date, err := domain.ParseDate(raw)
	if err != nil {
		return domain.Transaction{}, recordError("data", "%q is not a date", w.Data)
	}

	if w.Valor == nil {
		return domain.Transaction{}, recordError("valor", "missing")
	}
	if w.Valor.err != nil {
		return domain.Transaction{}, recordError("valor", "%q is not a non-negative amount", w.Valor.raw)
	}
	amount := w.Valor.value

	kind, ok := kindFromWire(w.Tipo)
	if !ok {
		return domain.Transaction{}, recordError("tipo", "unknown kind %q", w.Tipo)
	}

	method, ok := paymentFromWire(w.FormaPagamento)
	if !ok {
		return domain.Transaction{}, recordError("formaPagamento", "unknown payment method %q", w.FormaPagamento)
	}

	categoryID := string(w.CategoriaID)
	if categoryID == "" && w.Categoria != nil {
		categoryID = string(w.Categoria.ID)
	}

	return domain.Transaction{
		ID:            string(w.ID),
		Date:          date,
		Amount:        amount,
		Kind:          kind,
		PaymentMethod: method,
		CategoryID:    categoryID,
		Description:   strings.TrimSpace(w.Descricao),
	}, nil
}

func transactionToWire(tx domain.Transaction) wireTransactionOut {
	return wireTransactionOut{
		Data:           tx.Date.Format(domain.DateLayout),
		Valor:          json.Number(tx.Amount.StringFixed(2)),
		Tipo:           kindToWire(tx.Kind),
		FormaPagamento: paymentToWire(tx.PaymentMethod),
		CategoriaID:    idValue(tx.CategoryID),
		Descricao:      tx.Description,
	}
}

func (w wireCategory) toDomain() (domain.Category, error) {
	if w.ID == "" {
		return domain.Category{}, recordError("id", "missing")
	}
	name := strings.TrimSpace(w.Nome)
	if name == "" {
		return domain.Category{}, recordError("nome", "missing")
	}
	kind, ok := categoryKindFromWire(w.Tipo)
	if !ok {
		return domain.Category{}, recordError("tipo", "unknown category kind %q", w.Tipo)
	}
	return domain.Category{
		ID:    string(w.ID),
		Name:  name,
		Kind:  kind,
		Color: w.Cor,
		Icon:  w.Icone,
	}, nil
}

func categoryToWire(c domain.Category) wireCategoryOut {
	return wireCategoryOut{
		Nome:  c.Name,
		Tipo:  categoryKindToWire(c.Kind),
		Cor:   c.Color,
		Icone: c.Icon,
	}
}

func (w wireLogin) toDomain() (*domain.UpstreamLogin, error) {
	if w.Token == "" {
		return nil, recordError("token", "missing")
	}
	u := w.wireUser
	switch {
	case w.User != nil:
		u = *w.User
	case w.Usuario != nil:
		u = *w.Usuario
	}
	name := u.Nome
	if name == "" {
		name = u.Name
	}
	return &domain.UpstreamLogin{
		Token: w.Token,
		User:  domain.User{ID: string(u.ID), Name: name, Email: u.Email},
	}, nil
}
