// Package patterns holds the immutable, named rule sets used to recognise
// scam language and suspicious contact attributes.
package patterns

import (
	"regexp"
	"strings"
)

// Version identifies the current rule set revision. Bump it whenever a
// matcher is added, removed or changed.
const Version = "2025.1"

// Category names a group of matchers that describe one scam family
type Category string

const (
	Romance             Category = "romance"
	Crypto              Category = "crypto"
	Phishing            Category = "phishing"
	GenericScam         Category = "generic_scam"
	SuspiciousQuestions Category = "suspicious_questions"
	BusinessScam        Category = "business_scam"
	FakeDelivery        Category = "fake_delivery"
	Impersonation       Category = "impersonation"
	BankScam            Category = "bank_scam"
	DeliveryScam        Category = "delivery_scam"
	TaxScam             Category = "tax_scam"
	PrizeScam           Category = "prize_scam"
)

// Set is an ordered, read-only list of case-insensitive matchers.
type Set struct {
	category Category
	matchers []*regexp.Regexp
}

// Category returns the set's name.
func (s Set) Category() Category { return s.category }

// Len returns the number of matchers in the set.
func (s Set) Len() int { return len(s.matchers) }

// Count returns how many distinct matchers in the set hit text. A matcher
// counts once no matter how often it occurs.
func (s Set) Count(text string) int {
	n := 0
	for _, m := range s.matchers {
		if m.MatchString(text) {
			n++
		}
	}
	return n
}

// Matched returns the source of each matcher that hit text, in set order.
func (s Set) Matched(text string) []string {
	var out []string
	for _, m := range s.matchers {
		if m.MatchString(text) {
			out = append(out, m.String())
		}
	}
	return out
}

// words matches any of the alternatives as whole words.
func words(alts ...string) *regexp.Regexp {
	quoted := make([]string, len(alts))
	for i, a := range alts {
		quoted[i] = regexp.QuoteMeta(a)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}

// phrase matches a literal anywhere in the text.
func phrase(p string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(p))
}

func newSet(c Category, matchers ...*regexp.Regexp) Set {
	return Set{category: c, matchers: matchers}
}

var library = map[Category]Set{
	Romance: newSet(Romance,
		words("love", "dear", "honey", "sweetheart", "darling"),
		words("lonely", "alone", "single"),
		words("marry", "marriage", "relationship"),
		words("trust me", "believe me"),
	),
	Crypto: newSet(Crypto,
		words("bitcoin", "btc", "ethereum", "eth", "crypto", "nft", "trading"),
		words("investment", "profit", "earn", "passive income"),
		words("guaranteed", "risk-free", "100%"),
		words("wallet", "exchange", "binance", "coinbase"),
	),
	Phishing: newSet(Phishing,
		words("verify", "confirm", "update", "suspended", "locked"),
		words("account", "password", "security", "urgent"),
		words("click here", "link", "download"),
		words("expire", "limited time", "act now"),
	),
	GenericScam: newSet(GenericScam,
		words("money", "cash", "payment", "transfer", "send"),
		words("prize", "winner", "won", "lottery", "gift"),
		words("urgent", "immediately", "asap", "hurry"),
		words("congratulations", "selected", "chosen"),
	),
	SuspiciousQuestions: newSet(SuspiciousQuestions,
		phrase("are you from"),
		phrase("do you live in"),
		phrase("what do you do"),
		phrase("are you single"),
		phrase("how old are you"),
	),

	BusinessScam: newSet(BusinessScam,
		words("official", "verified", "customer service", "support team"),
		words("account suspended", "verify now", "update payment"),
		words("claim your prize", "you've won", "congratulations"),
	),
	FakeDelivery: newSet(FakeDelivery,
		words("package", "delivery", "shipment", "parcel"),
		words("failed delivery", "rescheduled", "customs fee"),
		words("track your order", "confirm address"),
	),
	Impersonation: newSet(Impersonation,
		words("whatsapp", "meta", "facebook"),
		words("security code", "verification code", "otp"),
		words("account will be deleted", "suspended"),
	),

	BankScam: newSet(BankScam,
		words("bank", "card", "account"),
		words("suspended", "locked", "blocked", "frozen"),
		words("verify", "confirm", "update"),
		words("click", "tap", "visit"),
	),
	DeliveryScam: newSet(DeliveryScam,
		words("usps", "fedex", "ups", "dhl", "amazon"),
		words("delivery", "package", "shipment"),
		words("failed", "attempted", "rescheduled"),
		words("click here", "track", "confirm"),
	),
	TaxScam: newSet(TaxScam,
		words("irs", "tax", "refund", "revenue"),
		words("claim", "owed", "entitled"),
		words("urgent", "immediate", "expires"),
	),
	PrizeScam: newSet(PrizeScam,
		words("winner", "won", "prize", "reward", "gift"),
		words("claim", "collect", "redeem"),
		words("congratulations", "selected", "chosen"),
	),
}

// Lookup returns the named set. The boolean is false for unknown names.
func Lookup(c Category) (Set, bool) {
	s, ok := library[c]
	return s, ok
}

// MustLookup is Lookup for names known at compile time.
func MustLookup(c Category) Set {
	s, ok := library[c]
	if !ok {
		panic("patterns: unknown category " + string(c))
	}
	return s
}

// Categories lists every category in the library.
func Categories() []Category {
	return []Category{
		Romance, Crypto, Phishing, GenericScam, SuspiciousQuestions,
		BusinessScam, FakeDelivery, Impersonation,
		BankScam, DeliveryScam, TaxScam, PrizeScam,
	}
}
