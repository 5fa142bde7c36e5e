package catapi

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Query is a single call against the catalog API.
type Query struct {
	Action string
	Params map[string]string
}

// NewQuery creates a query for action with optional key/value pairs.
func NewQuery(action string, kv ...string) Query {
	q := Query{Action: action, Params: make(map[string]string, len(kv)/2)}
	for i := 0; i+1 < len(kv); i += 2 {
		q.Params[kv[i]] = kv[i+1]
	}
	return q
}

// Values returns the form parameters of q, including action.
func (q Query) Values() url.Values {
	v := make(url.Values, len(q.Params)+1)
	for k, val := range q.Params {
		v.Set(k, val)
	}
	v.Set("action", q.Action)
	return v
}

// Encode serializes q deterministically, keys in sorted order.
func (q Query) Encode() string {
	return q.Values().Encode()
}

// CacheKey derives the cache key for q as sent to base with lang and accept.
func CacheKey(q Query, base, lang, accept string) string {
	h := xxhash.New()
	for _, part := range []string{q.Encode(), base, lang, accept} {
		_, _ = h.WriteString(part)
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// entryFields are embedded in entry names, in this order, to ease debugging.
var entryFields = []string{"federation", "idp", "profile", "device"}

// EntryName returns the store name for q under key: the action and the
// federation/idp/profile/device values followed by the key.
func EntryName(q Query, key string) string {
	var b strings.Builder
	if q.Action != "" {
		b.WriteString(sanitize(q.Action))
		b.WriteByte('-')
	}
	for _, f := range entryFields {
		if v, ok := q.Params[f]; ok && v != "" {
			b.WriteString(sanitize(v))
			b.WriteByte('-')
		}
	}
	b.WriteString(key)
	return b.String()
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
			return r
		}
		return '_'
	}, s)
}
