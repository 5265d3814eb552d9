package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorRendering(t *testing.T) {
	err := &Error{
		Kind:     KindTypeMismatch,
		Path:     "order.customer.age",
		Line:     3,
		Col:      14,
		Expected: "an int32 number",
		Actual:   `string "41"`,
		Hint:     "remove the quotes around the numeric value",
	}
	msg := err.Error()
	assert.Equal(t, `strictjson: TypeMismatch at order.customer.age (line 3, col 14): expected an int32 number, got string "41" (remove the quotes around the numeric value)`, msg)
}

func TestErrorRenderingMinimal(t *testing.T) {
	err := &Error{Kind: KindPayloadTooLarge, Expected: "a payload of at most 10,485,760 bytes", Actual: "12,000,000 bytes"}
	assert.Equal(t, "strictjson: PayloadTooLarge: expected a payload of at most 10,485,760 bytes, got 12,000,000 bytes", err.Error())
}

func TestPrinterGroupsDigits(t *testing.T) {
	assert.Equal(t, "10,000 elements", Printer.Sprintf("%d elements", 10_000))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindSyntax, KindOf(&Error{Kind: KindSyntax}))
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, KindUnknown, KindOf(errors.New("other")))
}

func TestKindNames(t *testing.T) {
	assert.Equal(t, "MissingRequiredField", KindMissingRequiredField.String())
	assert.Equal(t, "Cancelled", KindCancelled.String())
	assert.Equal(t, "ErrorKind(99)", ErrorKind(99).String())
}
