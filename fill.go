package mongoh

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fill normalizes a caller-supplied partial input against the node tree by
// applying declared defaults bottom-up. A nil input stands for an absent
// value. Fill never fails on mistyped input: a non-sequence reaching an array
// node, or a non-mapping reaching an object node, passes through unchanged and
// validation is left to the store. Producer panics propagate to the caller
// unmodified.
func (n *Node) Fill(v any) any {
	out, _ := n.fill(v, v != nil)
	return out
}

// fill carries an explicit presence bit so a missing key and an explicit null
// stay distinguishable; defaults apply only to the former.
func (n *Node) fill(v any, present bool) (any, bool) {
	switch n.kind {
	case KindDefault:
		if !present {
			resolved := n.defValue
			if n.defFn != nil {
				resolved = n.defFn()
			}
			return n.inner.fill(resolved, true)
		}
		return n.inner.fill(v, true)

	case KindOptional:
		if !present {
			return nil, false
		}
		return n.inner.fill(v, true)

	case KindArray:
		arr, ok := asSlice(v)
		if !ok {
			return v, present
		}
		out := make([]any, len(arr))
		for i, e := range arr {
			out[i], _ = n.items.fill(e, true)
		}
		return out, true

	case KindObject, KindCollection:
		m, ok := asMap(v)
		if !ok {
			return v, present
		}
		out := make(map[string]any, len(m))
		for k, vv := range m {
			out[k] = vv
		}
		for _, p := range n.props {
			raw, had := m[p.Name]
			res, keep := p.Node.fill(raw, had)
			if keep {
				out[p.Name] = res
			} else {
				delete(out, p.Name)
			}
		}
		return out, true

	case KindRecord:
		m, ok := asMap(v)
		if !ok {
			return v, present
		}
		out := make(map[string]any, len(m))
		for k, vv := range m {
			out[k], _ = n.value.fill(vv, true)
		}
		return out, true

	default:
		// Primitives, refs, enums, unions and intersections carry no defaults
		// of their own; the input passes through untouched.
		return v, present
	}
}

// asMap widens the mapping shapes fill accepts: plain maps from JSON decoding
// and bson.M/primitive.M from driver decoding.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case primitive.M:
		return map[string]any(m), true
	default:
		return nil, false
	}
}

// asSlice widens the sequence shapes fill accepts.
func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case primitive.A:
		return []any(s), true
	default:
		return nil, false
	}
}
