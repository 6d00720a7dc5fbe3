package compile

import (
	"strings"

	"github.com/dekarrin/neotoma"
	"github.com/dekarrin/neotoma/grammar"
)

// CaptureKind discriminates the shapes a capture can take.
type CaptureKind int

const (
	// CapSilent matches contribute no value.
	CapSilent CaptureKind = iota

	// CapLoud matches contribute an opaque value.
	CapLoud

	// CapNamed binds the inner capture's value to a host pattern.
	CapNamed

	// CapTuple pairs the captures of two sequenced loud matches.
	CapTuple

	// CapTupleVec is the tuple of named bindings produced by a pattern
	// terminal. It is loud.
	CapTupleVec
)

// Capture describes the shape of the value a parse step yields and
// drives how the eventual destructuring pattern binds it for the
// action expression.
type Capture struct {
	Kind CaptureKind

	// Pat and Inner are set for CapNamed.
	Pat   grammar.Pattern
	Inner *Capture

	// Left and Right are set for CapTuple.
	Left  *Capture
	Right *Capture

	// Binds is set for CapTupleVec: the ordered binding identifiers of
	// the pattern terminal.
	Binds []string
}

// SilentCapture returns a fresh silent capture.
func SilentCapture() *Capture {
	return &Capture{Kind: CapSilent}
}

// LoudCapture returns a fresh loud capture.
func LoudCapture() *Capture {
	return &Capture{Kind: CapLoud}
}

// NamedCapture returns a capture binding inner to the given pattern.
func NamedCapture(pat grammar.Pattern, inner *Capture) *Capture {
	return &Capture{Kind: CapNamed, Pat: pat, Inner: inner}
}

// TupleCapture returns the pair of two captures.
func TupleCapture(left, right *Capture) *Capture {
	return &Capture{Kind: CapTuple, Left: left, Right: right}
}

// TupleVecCapture returns the capture of a pattern terminal with the
// given ordered bindings.
func TupleVecCapture(binds []string) *Capture {
	return &Capture{Kind: CapTupleVec, Binds: binds}
}

// IsLoud returns whether a match with this capture contributes a
// value. A tuple is as loud as its newest (right) element.
func (c *Capture) IsLoud() bool {
	switch c.Kind {
	case CapSilent:
		return false
	case CapTuple:
		return c.Right.IsLoud()
	default:
		return true
	}
}

// Anonymous collapses the capture to plain Loud or Silent, forgetting
// structure. Repetition and optional wrapping use it: their element
// shape is not destructurable from outside the loop.
func (c *Capture) Anonymous() *Capture {
	if c.IsLoud() {
		return LoudCapture()
	}
	return SilentCapture()
}

// Equal returns whether two captures have the same shape, with
// patterns compared by token equality.
func (c *Capture) Equal(o *Capture) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.Kind != o.Kind {
		return false
	}
	switch c.Kind {
	case CapNamed:
		return c.Pat.Equal(o.Pat.Expr) && c.Inner.Equal(o.Inner)
	case CapTuple:
		return c.Left.Equal(o.Left) && c.Right.Equal(o.Right)
	case CapTupleVec:
		if len(c.Binds) != len(o.Binds) {
			return false
		}
		for i := range c.Binds {
			if c.Binds[i] != o.Binds[i] {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Unify merges the capture shapes of two choice alternatives into one
// shape a single consumer can destructure. Loud absorbs anything, and
// a tuple-vec paired with any shape other than a matching tuple-vec
// degrades to Loud the same way (it is a loud capture whose structure
// only one side has); silent unifies only with silent; named captures
// unify when their patterns are token-equal (falling back to Loud when
// their inners cannot unify); tuples unify pointwise. Any other
// combination is a structural error. A pattern mismatch carries the
// span of a's pattern; shape mismatches (CodeCaptureMismatch) carry the
// zero Span.
func Unify(a, b *Capture) (*Capture, error) {
	switch {
	case a.Kind == CapNamed && b.Kind == CapNamed:
		if !a.Pat.Equal(b.Pat.Expr) {
			return nil, errorf(CodePatternMismatch, a.Pat.Span,
				"pattern %s does not match %s across alternatives", a.Pat, b.Pat)
		}
		inner, err := Unify(a.Inner, b.Inner)
		if err != nil {
			inner = LoudCapture()
		}
		return NamedCapture(a.Pat, inner), nil

	case a.Kind == CapTuple && b.Kind == CapTuple:
		left, err := Unify(a.Left, b.Left)
		if err != nil {
			return nil, err
		}
		right, err := Unify(a.Right, b.Right)
		if err != nil {
			return nil, err
		}
		return TupleCapture(left, right), nil

	case a.Kind == CapTupleVec && b.Kind == CapTupleVec:
		if len(a.Binds) == len(b.Binds) {
			same := true
			for i := range a.Binds {
				if a.Binds[i] != b.Binds[i] {
					same = false
					break
				}
			}
			if same {
				return TupleVecCapture(a.Binds), nil
			}
		}
		return nil, errorf(CodeCaptureMismatch, neotoma.Span{},
			"pattern bindings (%s) do not match (%s) across alternatives",
			strings.Join(a.Binds, ", "), strings.Join(b.Binds, ", "))

	case a.Kind == CapLoud || b.Kind == CapLoud ||
		a.Kind == CapTupleVec || b.Kind == CapTupleVec:
		return LoudCapture(), nil

	case a.Kind == CapSilent && b.Kind == CapSilent:
		return SilentCapture(), nil

	default:
		return nil, errorf(CodeCaptureMismatch, neotoma.Span{},
			"capture shapes %s and %s cannot be unified", a, b)
	}
}

// Pattern renders the destructuring pattern for the capture, as a code
// emitter would bind it ahead of evaluating an action. It fails when a
// named capture's pattern is not a single identifier in a position
// that requires one (a structured inner shape can only be re-bound
// through an identifier).
func (c *Capture) Pattern() (string, error) {
	switch c.Kind {
	case CapSilent, CapLoud:
		return "_", nil
	case CapNamed:
		if c.Pat.IsIdent() {
			inner, err := c.Inner.Pattern()
			if err != nil {
				return "", err
			}
			return c.Pat.String() + " @ " + inner, nil
		}
		switch c.Inner.Kind {
		case CapSilent, CapLoud:
			return c.Pat.String(), nil
		default:
			return "", errorf(CodeBadCapturePattern, c.Pat.Span,
				"pattern %s must be a single identifier here", c.Pat)
		}
	case CapTuple:
		left, err := c.Left.Pattern()
		if err != nil {
			return "", err
		}
		right, err := c.Right.Pattern()
		if err != nil {
			return "", err
		}
		return "(" + left + ", " + right + ")", nil
	case CapTupleVec:
		return "(" + strings.Join(c.Binds, ", ") + ")", nil
	default:
		return "_", nil
	}
}

func (c *Capture) String() string {
	switch c.Kind {
	case CapSilent:
		return "Silent"
	case CapLoud:
		return "Loud"
	case CapNamed:
		return "Named(" + c.Pat.String() + ", " + c.Inner.String() + ")"
	case CapTuple:
		return "Tuple(" + c.Left.String() + ", " + c.Right.String() + ")"
	case CapTupleVec:
		return "TupleVec(" + strings.Join(c.Binds, ", ") + ")"
	default:
		return "<invalid capture>"
	}
}
