package sms

import "strings"

// Provider is a financial institution whose notification SMS we understand.
// Its rules are tried in registration order; keep the more specific patterns
// first.
type Provider struct {
	Name      string
	fragments []string
	rules     []rule
}

// registry is a priority list, not an alphabetic one: the first provider with
// a matching sender fragment wins. DBBL, EBL and BRAC are recognized bank
// senders that carry no extraction rules yet, so their messages classify but
// never parse.
var registry = []*Provider{
	bkash,
	cityBank,
	dbbl,
	ebl,
	brac,
}

var (
	dbbl = &Provider{Name: "DBBL", fragments: []string{"DBBL", "Dutch-Bangla"}}
	ebl  = &Provider{Name: "EBL", fragments: []string{"EBL"}}
	brac = &Provider{Name: "BRAC", fragments: []string{"BRAC"}}
)

// Classify resolves an SMS sender id to a provider by case-insensitive
// substring match. Unknown senders return false; they are dropped upstream
// without error.
func Classify(sender string) (*Provider, bool) {
	up := strings.ToUpper(sender)
	for _, p := range registry {
		for _, f := range p.fragments {
			if strings.Contains(up, strings.ToUpper(f)) {
				return p, true
			}
		}
	}
	return nil, false
}
