package netaxept

import "strings"

// Operation names a gateway call. The values match the operation names the
// gateway reports back in error payloads.
type Operation string

const (
	OpRegister Operation = "Register"
	OpAuth     Operation = "Auth"
	OpSale     Operation = "Sale"
	OpCapture  Operation = "Capture"
	OpCredit   Operation = "Credit"
	OpAnnul    Operation = "Annul"
	OpQuery    Operation = "Query"
)

var operations = []Operation{OpRegister, OpAuth, OpSale, OpCapture, OpCredit, OpAnnul, OpQuery}

const (
	registerPath = "/Netaxept/Register.aspx"
	processPath  = "/Netaxept/Process.aspx"
	queryPath    = "/Netaxept/Query.aspx"
	terminalPath = "/Terminal/default.aspx"
)

func (o Operation) String() string { return string(o) }

func (o Operation) Valid() bool {
	for _, known := range operations {
		if o == known {
			return true
		}
	}
	return false
}

// IsProcess reports whether the operation goes through Process.aspx.
func (o Operation) IsProcess() bool {
	switch o {
	case OpAuth, OpSale, OpCapture, OpCredit, OpAnnul:
		return true
	}
	return false
}

// RequiresAmount reports whether the operation carries an amount.
func (o Operation) RequiresAmount() bool {
	switch o {
	case OpRegister, OpAuth, OpSale, OpCapture, OpCredit:
		return true
	}
	return false
}

func (o Operation) RequiresTransactionID() bool {
	return o != OpRegister
}

func (o Operation) path() string {
	switch {
	case o == OpRegister:
		return registerPath
	case o == OpQuery:
		return queryPath
	default:
		return processPath
	}
}

// wireName is the value of the "operation" parameter on Process.aspx.
func (o Operation) wireName() string {
	return strings.ToUpper(string(o))
}

// rootElement is the XML root of a non-exception response.
func (o Operation) rootElement() string {
	switch {
	case o == OpRegister:
		return "RegisterResponse"
	case o == OpQuery:
		return "PaymentInfo"
	default:
		return "ProcessResponse"
	}
}

// ParseOperation accepts any casing of an operation name.
func ParseOperation(s string) (Operation, error) {
	for _, op := range operations {
		if strings.EqualFold(s, string(op)) {
			return op, nil
		}
	}
	return "", &InvalidOperationError{Operation: Operation(s)}
}
