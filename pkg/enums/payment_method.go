package enums

// PaymentMethod records how money moved for a ledger entry. The drawer core
// only handles physical cash today; the enum exists so card/transfer flows can
// join the same table later.
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
)

// IsValid reports whether the value matches the canonical payment method enum.
func (p PaymentMethod) IsValid() bool {
	return p == PaymentMethodCash
}
