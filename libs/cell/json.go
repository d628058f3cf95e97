package cell

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// JSONKind is the kind of a JSON value.
type JSONKind uint8

const (
	JSONNull JSONKind = iota
	JSONBool
	JSONNumber
	JSONString
	JSONArray
	JSONObject
)

var jsonKindNames = [...]string{"null", "bool", "number", "string", "array", "object"}

func (k JSONKind) String() string {
	if int(k) < len(jsonKindNames) {
		return jsonKindNames[k]
	}
	return fmt.Sprintf("JSONKind(%d)", uint8(k))
}

// JSON is a JSON value. Numbers keep their literal text and objects the
// order of their fields, so a value encodes the same way on every run.
type JSON struct {
	Kind   JSONKind
	Bool   bool
	Number json.Number
	String string
	Items  []JSON
	Fields []JSONField
}

// JSONField is a member of an object.
type JSONField struct {
	Key   string
	Value JSON
}

// ParseJSON parses a single JSON document.
func ParseJSON(data []byte) (JSON, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := parseValue(dec)
	if err != nil {
		return JSON{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return JSON{}, errors.New("unexpected data after the JSON value")
	}
	return v, nil
}

func parseValue(dec *json.Decoder) (JSON, error) {
	tok, err := dec.Token()
	if err != nil {
		return JSON{}, err
	}
	switch t := tok.(type) {
	case nil:
		return JSON{Kind: JSONNull}, nil
	case bool:
		return JSON{Kind: JSONBool, Bool: t}, nil
	case json.Number:
		return JSON{Kind: JSONNumber, Number: t}, nil
	case string:
		return JSON{Kind: JSONString, String: t}, nil
	case json.Delim:
		switch t {
		case '[':
			v := JSON{Kind: JSONArray}
			for dec.More() {
				item, err := parseValue(dec)
				if err != nil {
					return JSON{}, err
				}
				v.Items = append(v.Items, item)
			}
			_, err := dec.Token()
			return v, err
		case '{':
			v := JSON{Kind: JSONObject}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return JSON{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return JSON{}, fmt.Errorf("unexpected object key %v", keyTok)
				}
				value, err := parseValue(dec)
				if err != nil {
					return JSON{}, err
				}
				v.Fields = append(v.Fields, JSONField{Key: key, Value: value})
			}
			_, err := dec.Token()
			return v, err
		}
	}
	return JSON{}, fmt.Errorf("unexpected token %v", tok)
}

func (v JSON) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case JSONNull:
		return []byte("null"), nil
	case JSONBool:
		return json.Marshal(v.Bool)
	case JSONNumber:
		return json.Marshal(v.Number)
	case JSONString:
		return json.Marshal(v.String)
	case JSONArray:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			bz, err := item.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(bz)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case JSONObject:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, f := range v.Fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(f.Key)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			bz, err := f.Value.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(bz)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown JSON kind %v", v.Kind)
	}
}

// EncodeJSON lays v out as a tree of cells. Every value is a cell starting
// with its kind byte:
//
//	null     kind
//	bool     kind, 0 or 1
//	number   kind, ref to the chunked literal
//	string   kind, ref to the chunked UTF-8 text
//	array    kind, ref to the list of item cells
//	object   kind, ref to the list of fields; a field refers to the chunked
//	         key and to the value cell
func EncodeJSON(v JSON) (*Cell, error) {
	b := NewBuilder().StoreUint8(uint8(v.Kind))
	switch v.Kind {
	case JSONNull:
	case JSONBool:
		var bit uint8
		if v.Bool {
			bit = 1
		}
		b.StoreUint8(bit)
	case JSONNumber:
		if v.Number == "" {
			return nil, errors.New("empty number")
		}
		b.StoreRef(Chunk([]byte(v.Number)))
	case JSONString:
		b.StoreRef(Chunk([]byte(v.String)))
	case JSONArray:
		items := make([]*Cell, len(v.Items))
		for i, item := range v.Items {
			c, err := EncodeJSON(item)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			items[i] = c
		}
		list, err := List(items)
		if err != nil {
			return nil, err
		}
		b.StoreRef(list)
	case JSONObject:
		fields := make([]*Cell, len(v.Fields))
		for i, f := range v.Fields {
			value, err := EncodeJSON(f.Value)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", f.Key, err)
			}
			fields[i], err = NewBuilder().StoreRef(Chunk([]byte(f.Key))).StoreRef(value).Build()
			if err != nil {
				return nil, err
			}
		}
		list, err := List(fields)
		if err != nil {
			return nil, err
		}
		b.StoreRef(list)
	default:
		return nil, fmt.Errorf("unknown JSON kind %v", v.Kind)
	}
	return b.Build()
}

// DecodeJSON reads a value laid out by EncodeJSON.
func DecodeJSON(c *Cell) (JSON, error) {
	s := c.BeginParse()
	v := JSON{Kind: JSONKind(s.LoadUint8())}
	if err := s.Err(); err != nil {
		return JSON{}, err
	}

	switch v.Kind {
	case JSONNull:
	case JSONBool:
		switch s.LoadUint8() {
		case 0:
		case 1:
			v.Bool = true
		default:
			return JSON{}, errors.New("bool must be 0 or 1")
		}
	case JSONNumber:
		text, err := Unchunk(s.LoadRef())
		if err != nil {
			return JSON{}, err
		}
		v.Number = json.Number(text)
		if _, err := json.Marshal(v.Number); err != nil || v.Number == "" {
			return JSON{}, fmt.Errorf("invalid number %q", text)
		}
	case JSONString:
		text, err := Unchunk(s.LoadRef())
		if err != nil {
			return JSON{}, err
		}
		if !utf8.Valid(text) {
			return JSON{}, errors.New("string is not valid UTF-8")
		}
		v.String = string(text)
	case JSONArray:
		items, err := ListItems(s.LoadRef())
		if err != nil {
			return JSON{}, err
		}
		for i, item := range items {
			iv, err := DecodeJSON(item)
			if err != nil {
				return JSON{}, fmt.Errorf("item %d: %w", i, err)
			}
			v.Items = append(v.Items, iv)
		}
	case JSONObject:
		fields, err := ListItems(s.LoadRef())
		if err != nil {
			return JSON{}, err
		}
		for i, f := range fields {
			fs := f.BeginParse()
			key, err := Unchunk(fs.LoadRef())
			if err != nil {
				return JSON{}, fmt.Errorf("field %d key: %w", i, err)
			}
			valueCell := fs.LoadRef()
			if err := fs.End(); err != nil {
				return JSON{}, fmt.Errorf("field %d: %w", i, err)
			}
			value, err := DecodeJSON(valueCell)
			if err != nil {
				return JSON{}, fmt.Errorf("field %q: %w", key, err)
			}
			v.Fields = append(v.Fields, JSONField{Key: string(key), Value: value})
		}
	default:
		return JSON{}, fmt.Errorf("unknown JSON kind %v", v.Kind)
	}

	if err := s.End(); err != nil {
		return JSON{}, err
	}
	return v, nil
}
