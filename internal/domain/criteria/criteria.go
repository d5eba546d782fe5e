// Package criteria turns free-text recommendation queries into structured
// filter criteria.
package criteria

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Key names a filterable restaurant field.
type Key string

// Filter keys produced by the parser. The string form is the stored field name.
const (
	KeyStyle      Key = "style"
	KeyGlutenFree Key = "glutenFree"
	KeyVegetarian Key = "vegetarian"
	KeyVegan      Key = "vegan"
	KeyDairyFree  Key = "dairyFree"
	KeyDelivery   Key = "delivery"
	KeyOpenHour   Key = "openHour"
	KeyCloseHour  Key = "closeHour"
	KeyAddress    Key = "address"
)

// Value is either a boolean flag or a text value.
type Value struct {
	text   string
	flag   bool
	isFlag bool
}

// FlagValue returns a boolean Value.
func FlagValue(b bool) Value { return Value{flag: b, isFlag: true} }

// TextValue returns a text Value.
func TextValue(s string) Value { return Value{text: s} }

// IsFlag reports whether v holds a boolean.
func (v Value) IsFlag() bool { return v.isFlag }

// Bool returns the flag; false for text values.
func (v Value) Bool() bool { return v.isFlag && v.flag }

// String returns the canonical form compared against stored fields:
// "true"/"false" for flags, the text otherwise.
func (v Value) String() string {
	if v.isFlag {
		return strconv.FormatBool(v.flag)
	}
	return v.text
}

// MarshalJSON encodes flags as JSON booleans and text as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.isFlag {
		return json.Marshal(v.flag)
	}
	return json.Marshal(v.text)
}

// Criteria is an ordered key/value mapping. Setting an existing key replaces
// its value and keeps its original position.
type Criteria struct {
	keys   []Key
	values map[Key]Value
}

// New returns an empty Criteria.
func New() *Criteria {
	return &Criteria{values: make(map[Key]Value)}
}

// Set assigns v to k; the last assignment wins.
func (c *Criteria) Set(k Key, v Value) {
	if c.values == nil {
		c.values = make(map[Key]Value)
	}
	if _, ok := c.values[k]; !ok {
		c.keys = append(c.keys, k)
	}
	c.values[k] = v
}

// Get returns the value stored for k.
func (c *Criteria) Get(k Key) (Value, bool) {
	if c == nil {
		return Value{}, false
	}
	v, ok := c.values[k]
	return v, ok
}

// Len returns the number of keys.
func (c *Criteria) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// IsEmpty reports whether no key is set.
func (c *Criteria) IsEmpty() bool { return c.Len() == 0 }

// Keys returns the keys in first-assignment order.
func (c *Criteria) Keys() []Key {
	if c == nil {
		return nil
	}
	out := make([]Key, len(c.keys))
	copy(out, c.keys)
	return out
}

// Each calls fn for every pair in key order.
func (c *Criteria) Each(fn func(Key, Value)) {
	if c == nil {
		return
	}
	for _, k := range c.keys {
		fn(k, c.values[k])
	}
}

// Strings returns the canonical string form of every pair.
func (c *Criteria) Strings() map[string]string {
	out := make(map[string]string, c.Len())
	c.Each(func(k Key, v Value) {
		out[string(k)] = v.String()
	})
	return out
}

// MarshalJSON encodes the criteria as an object in key order.
func (c *Criteria) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	var err error
	c.Each(func(k Key, v Value) {
		if err != nil {
			return
		}
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		var kb, vb []byte
		if kb, err = json.Marshal(string(k)); err != nil {
			return
		}
		if vb, err = v.MarshalJSON(); err != nil {
			return
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
