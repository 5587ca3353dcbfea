package model

import (
	"math/big"

	"github.com/zclconf/go-cty/cty"
)

// FromCty converts an evaluated cty value into a plain Go value. Numbers
// become int64 when whole and float64 otherwise; collections convert
// recursively.
func FromCty(v cty.Value) any {
	if v.IsNull() {
		return nil
	}

	t := v.Type()
	switch {
	case t == cty.String:
		return v.AsString()
	case t == cty.Bool:
		return v.True()
	case t == cty.Number:
		return numberFromCty(v)
	case t.IsListType() || t.IsSetType() || t.IsTupleType():
		var out []any
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			out = append(out, FromCty(ev))
		}
		return out
	case t.IsMapType() || t.IsObjectType():
		out := make(map[string]any)
		for it := v.ElementIterator(); it.Next(); {
			kv, ev := it.Element()
			out[kv.AsString()] = FromCty(ev)
		}
		return out
	default:
		return v.GoString()
	}
}

func numberFromCty(v cty.Value) any {
	bf := v.AsBigFloat()
	if i, acc := bf.Int64(); acc == big.Exact {
		return i
	}
	f, _ := bf.Float64()
	return f
}
