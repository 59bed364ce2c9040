package stub

import (
	"fmt"
	"regexp"
)

// product is one entry in the canned catalog.
type product struct {
	name  string
	price string
}

var catalog = map[string]product{
	"1": {name: "Nimbus X1", price: "$499"},
	"2": {name: "Nimbus X1 Pro", price: "$799"},
	"3": {name: "Vista Tab 10", price: "$329"},
	"9": {name: "Aero Buds", price: "$10"},
}

// idPattern matches an explicit product reference: "#3", "id: 3",
// "product 3".
var idPattern = regexp.MustCompile(`(?i)(?:^|\s)(?:#|id\s*[:#]?\s*|product\s+)(\d+)\b`)

// respond produces the canned assistant reply for a user message, plus the
// product id when the message referenced one from the catalog.
func respond(message string) (reply, productID string) {
	if m := idPattern.FindStringSubmatch(message); m != nil {
		if p, ok := catalog[m[1]]; ok {
			return fmt.Sprintf("%s is priced at %s.", p.name, p.price), m[1]
		}
		return fmt.Sprintf("I could not find product #%s in the catalog.", m[1]), ""
	}
	return "I can help with product questions. Mention a product id like #3 to get details.", ""
}
