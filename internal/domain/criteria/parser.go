package criteria

import "strings"

// Parser classifies query tokens using its keyword tables. A Parser is
// immutable after construction and safe for concurrent use.
type Parser struct {
	options        map[string]Key
	styles         map[string]string
	addressMarkers []string
}

// Option configures a Parser.
type Option func(*Parser)

// WithStyle registers an extra cuisine keyword and its canonical style.
func WithStyle(keyword, canonical string) Option {
	return func(p *Parser) {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword != "" && canonical != "" {
			p.styles[keyword] = canonical
		}
	}
}

// WithAddressMarker registers an extra substring that starts an address.
func WithAddressMarker(marker string) Option {
	return func(p *Parser) {
		marker = strings.ToLower(strings.TrimSpace(marker))
		if marker != "" {
			p.addressMarkers = append(p.addressMarkers, marker)
		}
	}
}

// NewParser returns a Parser loaded with the built-in keyword tables.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		options: map[string]Key{
			"glutenfree": KeyGlutenFree,
			"vegetarian": KeyVegetarian,
			"vegan":      KeyVegan,
			"dairyfree":  KeyDairyFree,
		},
		styles: map[string]string{
			"mexican":       "Mexican",
			"italian":       "Italian",
			"mediterranean": "Mediterranean",
			"chinese":       "Chinese",
		},
		addressMarkers: []string{"street", "avenue", "boulevard"},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = NewParser()

// Parse parses query with the built-in keyword tables.
func Parse(query string) *Criteria {
	return defaultParser.Parse(query)
}

// Parse scans the lower-cased tokens of query once, left to right. Each
// token is classified in this order: dietary option, cuisine style,
// "delivery", "open"/"close" followed by a time token, address marker.
// Unrecognized tokens are ignored. Repeated keys keep the last value.
//
// The time token after "open"/"close" is inspected again on the next
// iteration. An address runs from its marker token to the end of the
// query, so a later marker re-captures a shorter suffix.
func (p *Parser) Parse(query string) *Criteria {
	c := New()
	tokens := strings.Fields(strings.ToLower(query))

	for i, tok := range tokens {
		if key, ok := p.options[tok]; ok {
			c.Set(key, FlagValue(true))
			continue
		}
		if style, ok := p.styles[tok]; ok {
			c.Set(KeyStyle, TextValue(style))
			continue
		}
		switch tok {
		case "delivery":
			c.Set(KeyDelivery, FlagValue(true))
			continue
		case "open":
			if t, ok := timeAfter(tokens, i); ok {
				c.Set(KeyOpenHour, TextValue(t))
			}
			continue
		case "close":
			if t, ok := timeAfter(tokens, i); ok {
				c.Set(KeyCloseHour, TextValue(t))
			}
			continue
		}
		if p.isAddressMarker(tok) {
			c.Set(KeyAddress, TextValue(strings.Join(tokens[i:], " ")))
		}
	}
	return c
}

// timeAfter returns the token following i when it looks like a time.
func timeAfter(tokens []string, i int) (string, bool) {
	if i+1 >= len(tokens) {
		return "", false
	}
	next := tokens[i+1]
	if !strings.Contains(next, ":") {
		return "", false
	}
	return next, true
}

func (p *Parser) isAddressMarker(tok string) bool {
	for _, m := range p.addressMarkers {
		if strings.Contains(tok, m) {
			return true
		}
	}
	return false
}
