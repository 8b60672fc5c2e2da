// Package sms turns provider notification messages into transaction drafts.
//
// Each provider owns an ordered list of regex rules, one per transaction
// shape. The first rule whose pattern matches wins, so generic patterns must
// be registered after the specific ones they overlap with.
package sms

import (
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/masudbs-23/hisab-app/internal/core"
)

// RawMessage is one inbox entry as delivered by the message source.
type RawMessage struct {
	Sender string
	Body   string
	Date   time.Time
}

type rule struct {
	name    string
	pattern *regexp.Regexp
	build   func(m []string, body string, ingestedAt time.Time) (core.Draft, error)
}

// Parse runs the provider's rules in registration order against the message
// body. It returns false when nothing matched or when a matched rule carried
// an unparsable numeric field; either way the message is simply not a
// transaction.
func (p *Provider) Parse(body string, ingestedAt time.Time) (core.Draft, bool) {
	for _, r := range p.rules {
		m := r.pattern.FindStringSubmatch(body)
		if m == nil {
			continue
		}
		draft, err := r.build(m, body, ingestedAt)
		if err != nil {
			slog.Debug("dropping message with unparsable numeric field",
				"provider", p.Name, "rule", r.name, "error", err)
			return core.Draft{}, false
		}
		draft.Provider = p.Name
		draft.SMSBody = body
		return draft, true
	}
	return core.Draft{}, false
}

// optionalAmount extracts an auxiliary amount (fee, stated balance) from the
// body, defaulting to zero when the pattern is absent.
func optionalAmount(re *regexp.Regexp, body string) core.Money {
	if m := re.FindStringSubmatch(body); m != nil {
		if v, err := core.ParseAmount(m[1]); err == nil {
			return v
		}
	}
	return core.Money{}
}

// synthTrxID mints a dedup key for message formats that carry no transaction
// id. Two such messages ingested within the same millisecond would collide.
func synthTrxID(prefix string, ingestedAt time.Time) string {
	return prefix + strconv.FormatInt(ingestedAt.UnixMilli(), 10)
}
