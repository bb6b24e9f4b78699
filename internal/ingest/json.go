package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	orderedmap "github.com/elliotchance/orderedmap/v2"

	"datastudio/pkg/contracts/domain"
)

// jsonRow is one flattened record: dotted column names in first-seen
// order mapped to decoded leaf values.
type jsonRow = *orderedmap.OrderedMap[string, any]

// readJSON decodes a JSON document into a Table. A top-level array
// yields one row per element and a top-level object a single row; bare
// scalars land in a column named "value". Nested objects flatten into
// dotted column names, arrays and booleans ingest as text, and null
// becomes a missing cell.
func readJSON(raw []byte) (domain.Table, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	value, err := decodeJSONValue(dec)
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to parse JSON: %w", err)
	}

	var rows []jsonRow
	switch v := value.(type) {
	case *orderedmap.OrderedMap[string, any]:
		rows = append(rows, flattenObject(v))
	case []any:
		for _, element := range v {
			if obj, ok := element.(*orderedmap.OrderedMap[string, any]); ok {
				rows = append(rows, flattenObject(obj))
				continue
			}
			row := orderedmap.NewOrderedMap[string, any]()
			row.Set("value", element)
			rows = append(rows, row)
		}
	case nil:
		return domain.NewTable(), nil
	default:
		row := orderedmap.NewOrderedMap[string, any]()
		row.Set("value", v)
		rows = append(rows, row)
	}

	return tableFromJSONRows(rows), nil
}

// decodeJSONValue parses one JSON value off the decoder, preserving
// object key order. Scalars come back as string, json.Number, bool or
// nil; composites as *orderedmap.OrderedMap and []any.
func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		obj := orderedmap.NewOrderedMap[string, any]()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := keyTok.(string)
			val, err := decodeJSONValue(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(key, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		var arr []any
		for dec.More() {
			val, err := decodeJSONValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func flattenObject(obj *orderedmap.OrderedMap[string, any]) jsonRow {
	out := orderedmap.NewOrderedMap[string, any]()
	flattenInto(out, obj, "")
	return out
}

func flattenInto(out jsonRow, obj *orderedmap.OrderedMap[string, any], prefix string) {
	for el := obj.Front(); el != nil; el = el.Next() {
		name := el.Key
		if prefix != "" {
			name = prefix + "." + name
		}
		if child, ok := el.Value.(*orderedmap.OrderedMap[string, any]); ok {
			flattenInto(out, child, name)
			continue
		}
		out.Set(name, el.Value)
	}
}

// tableFromJSONRows unions the flattened rows into columns, keeping
// first-seen name order. A cell is missing when its row lacks the key
// or carries an explicit null.
func tableFromJSONRows(rows []jsonRow) domain.Table {
	var names []string
	seen := make(map[string]bool)
	for _, row := range rows {
		for el := row.Front(); el != nil; el = el.Next() {
			if !seen[el.Key] {
				seen[el.Key] = true
				names = append(names, el.Key)
			}
		}
	}

	columns := make([]domain.Column, 0, len(names))
	for _, name := range names {
		cells := make([]any, len(rows))
		for i, row := range rows {
			if v, ok := row.Get(name); ok {
				cells[i] = v
			}
		}
		columns = append(columns, jsonColumn(name, cells))
	}
	return domain.NewTable(columns...)
}

func jsonColumn(name string, cells []any) domain.Column {
	numeric := true
	for _, cell := range cells {
		if cell == nil {
			continue
		}
		n, ok := cell.(json.Number)
		if !ok {
			numeric = false
			break
		}
		if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
			numeric = false
			break
		}
	}

	values := make([]domain.Value, len(cells))
	for i, cell := range cells {
		switch {
		case cell == nil:
			values[i] = domain.Missing()
		case numeric:
			f, _ := strconv.ParseFloat(cell.(json.Number).String(), 64)
			values[i] = domain.Number(f)
		default:
			values[i] = domain.Text(jsonText(cell))
		}
	}

	kind := domain.KindText
	if numeric {
		kind = domain.KindNumeric
	}
	return domain.Column{Name: name, Kind: kind, Values: values}
}

func jsonText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		var b strings.Builder
		writeCompactJSON(&b, v)
		return b.String()
	}
}

// writeCompactJSON re-renders a decoded value as compact JSON without
// disturbing object key order.
func writeCompactJSON(b *strings.Builder, v any) {
	switch x := v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		b.WriteString(strconv.FormatBool(x))
	case json.Number:
		b.WriteString(x.String())
	case string:
		quoted, _ := json.Marshal(x)
		b.Write(quoted)
	case []any:
		b.WriteByte('[')
		for i, el := range x {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCompactJSON(b, el)
		}
		b.WriteByte(']')
	case *orderedmap.OrderedMap[string, any]:
		b.WriteByte('{')
		first := true
		for el := x.Front(); el != nil; el = el.Next() {
			if !first {
				b.WriteByte(',')
			}
			first = false
			quoted, _ := json.Marshal(el.Key)
			b.Write(quoted)
			b.WriteByte(':')
			writeCompactJSON(b, el.Value)
		}
		b.WriteByte('}')
	}
}
