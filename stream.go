package catga

import "strings"

// StreamID builds a stream identifier following the "<AggregateName>-<Id>"
// convention (§6).
func StreamID(aggregateName, id string) string {
	return aggregateName + "-" + id
}

// MatchStreamPattern reports whether streamID matches a subscription glob
// pattern where "*" matches any character sequence (including none); no
// other wildcard syntax is required (§6). A pattern with no "*" must
// match exactly.
func MatchStreamPattern(pattern, streamID string) bool {
	if pattern == "*" {
		return true
	}
	segments := strings.Split(pattern, "*")
	if len(segments) == 1 {
		return pattern == streamID
	}

	rest := streamID
	for i, seg := range segments {
		switch {
		case i == 0:
			if !strings.HasPrefix(rest, seg) {
				return false
			}
			rest = rest[len(seg):]
		case i == len(segments)-1:
			return strings.HasSuffix(rest, seg)
		case seg == "":
			// consecutive "*": nothing to anchor on, continue.
		default:
			idx := strings.Index(rest, seg)
			if idx < 0 {
				return false
			}
			rest = rest[idx+len(seg):]
		}
	}
	return true
}
