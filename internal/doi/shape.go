package doi

import (
	"fmt"

	"github.com/rdswitchboard/doinorm/internal/prop"
)

// Kind tags the shape of a stored "doi" property.
type Kind int

const (
	// KindAbsent means the node has no usable "doi" property (missing or null).
	KindAbsent Kind = iota
	// KindScalar is a single string.
	KindScalar
	// KindStrings is an array whose elements are all strings.
	KindStrings
	// KindOther is any other value; it is never rewritten.
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindScalar:
		return "scalar"
	case KindStrings:
		return "strings"
	case KindOther:
		return "other"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Shape is a classified "doi" property value. Exactly one of Scalar or
// Strings is meaningful, selected by Kind.
type Shape struct {
	Kind    Kind
	Scalar  string
	Strings []string
	// Raw is the value as read, kept for KindOther diagnostics.
	Raw prop.Value
}

// Classify inspects a property value read from a node. present reports
// whether the node carries the property at all.
func Classify(v prop.Value, present bool) Shape {
	if !present {
		return Shape{Kind: KindAbsent}
	}

	switch val := v.(type) {
	case nil, prop.Null:
		return Shape{Kind: KindAbsent, Raw: v}
	case prop.String:
		return Shape{Kind: KindScalar, Scalar: string(val), Raw: v}
	case prop.Array:
		ss := make([]string, len(val))
		for i, elem := range val {
			s, ok := elem.(prop.String)
			if !ok {
				return Shape{Kind: KindOther, Raw: v}
			}
			ss[i] = string(s)
		}
		return Shape{Kind: KindStrings, Strings: ss, Raw: v}
	default:
		return Shape{Kind: KindOther, Raw: v}
	}
}
