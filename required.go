package mongoh

// Required reports whether the node's absence from its enclosing mapping is
// disallowed. It is a pure function of the kind and children:
//
//   - optional nodes are never required
//   - an enum is required unless it lists Absent
//   - a union is required only when every member is
//   - an intersection is required when any member is
//   - default nodes keep the base rule (true): Fill guarantees the value is
//     present before a write, so the validator may still demand it
//   - every other kind is required
func (n *Node) Required() bool {
	switch n.kind {
	case KindOptional:
		return false
	case KindEnum:
		for _, v := range n.values {
			if _, ok := v.(absentValue); ok {
				return false
			}
		}
		return true
	case KindUnion:
		for _, m := range n.members {
			if !m.Required() {
				return false
			}
		}
		return true
	case KindIntersection:
		for _, m := range n.members {
			if m.Required() {
				return true
			}
		}
		return false
	default:
		return true
	}
}
