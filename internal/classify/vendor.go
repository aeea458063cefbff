package classify

import (
	"regexp"
	"strings"

	"github.com/MrJamesThe3rd/cashbook/internal/ledger"
)

// vendorClass groups counterparties that are booked the same way.
type vendorClass struct {
	Label    string
	Category string
	Kind     ledger.Kind
}

var (
	classInsurance = vendorClass{Label: "Health insurance", Category: "Insurance", Kind: ledger.KindExpense}
	classUtilities = vendorClass{Label: "Utilities", Category: "Utilities", Kind: ledger.KindExpense}
	classTelecom   = vendorClass{Label: "Telecom", Category: "Telecom", Kind: ledger.KindExpense}
	classTax       = vendorClass{Label: "Tax office", Category: "Taxes", Kind: ledger.KindExpense}
	classDelivery  = vendorClass{Label: "Delivery platform", Category: "Delivery", Kind: ledger.KindIncome}
)

type vendor struct {
	Name    string
	pattern *regexp.Regexp
	class   vendorClass
}

func newVendor(name string, class vendorClass) vendor {
	return vendor{
		Name:    name,
		pattern: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`),
		class:   class,
	}
}

var vendors = []vendor{
	newVendor("Stadtwerke", classUtilities),
	newVendor("E.ON", classUtilities),
	newVendor("Vattenfall", classUtilities),
	newVendor("Telekom", classTelecom),
	newVendor("Vodafone", classTelecom),
	newVendor("O2", classTelecom),
	newVendor("Finanzamt", classTax),
	newVendor("Lieferando", classDelivery),
	newVendor("Wolt", classDelivery),
	newVendor("Uber Eats", classDelivery),
}

// Health insurers are not listed by name; their debits carry the employer's
// operating number.
var insuranceMarker = regexp.MustCompile(`(?i)betriebsnummer|operating number`)

// Vendor claims rows from known counterparties.
func Vendor(in Input) (Result, bool) {
	if insuranceMarker.MatchString(in.Purpose) || insuranceMarker.MatchString(in.Name) {
		return vendorResult(in, "", classInsurance), true
	}

	for _, v := range vendors {
		if v.pattern.MatchString(in.Name) || v.pattern.MatchString(in.Purpose) {
			return vendorResult(in, v.Name, v.class), true
		}
	}

	return Result{}, false
}

func vendorResult(in Input, fallbackName string, class vendorClass) Result {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = fallbackName
	}

	usage := class.Label
	if name != "" {
		usage = name + " - " + class.Label
	}

	return Result{Usage: usage, Category: class.Category, Kind: class.Kind}
}
