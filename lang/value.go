package lang

import (
	"fmt"
	"hash/fnv"
	"math"
	"strconv"
)

// Value is the common interface over every heap-allocated JAPL runtime
// object. There is no class hierarchy underneath it -- each variant named in
// the data model is a distinct concrete type, and all polymorphism is
// variant dispatch through this interface and the free functions below, not
// inheritance.
type Value interface {
	Type() string
	String() string
	IsFalsey() bool
	Hash() uint32
}

// Hashable-ness is universal (every variant below implements Hash), so no
// separate marker interface is needed the way pyle needed one for its
// richer, partially-hashable object set.

// StringVal is an interned, immutable byte string. The hash is computed once
// at construction (FNV-1a) and cached, satisfying spec.md's invariant that a
// string's hash is stable for its lifetime.
type StringVal struct {
	Data []byte
	hash uint32
}

func NewString(data []byte) *StringVal {
	return &StringVal{Data: data, hash: fnv1a(data)}
}

func fnv1a(data []byte) uint32 {
	h := fnv.New32a()
	h.Write(data)
	return h.Sum32()
}

func (s *StringVal) Type() string    { return "string" }
func (s *StringVal) String() string  { return string(s.Data) }
func (s *StringVal) IsFalsey() bool  { return len(s.Data) == 0 }
func (s *StringVal) Hash() uint32    { return s.hash }

// IntegerVal is a signed 64-bit integer.
type IntegerVal struct{ Val int64 }

func (i IntegerVal) Type() string   { return "int" }
func (i IntegerVal) String() string { return strconv.FormatInt(i.Val, 10) }
func (i IntegerVal) IsFalsey() bool { return i.Val == 0 }
func (i IntegerVal) Hash() uint32   { return uint32(i.Val) ^ uint32(i.Val>>32) }

// FloatVal is an IEEE-754 double. NaN and +-Inf are represented by the
// dedicated NaNVal/InfinityVal variants, not by FloatVal, so a FloatVal is
// always finite.
type FloatVal struct{ Val float64 }

func (f FloatVal) Type() string   { return "float" }
func (f FloatVal) String() string { return strconv.FormatFloat(f.Val, 'g', -1, 64) }
func (f FloatVal) IsFalsey() bool { return f.Val == 0 }
func (f FloatVal) Hash() uint32   { return uint32(math.Float64bits(f.Val)) ^ uint32(math.Float64bits(f.Val)>>32) }

type BoolVal struct{ Val bool }

func (b BoolVal) Type() string   { return "bool" }
func (b BoolVal) String() string { return strconv.FormatBool(b.Val) }
func (b BoolVal) IsFalsey() bool { return !b.Val }
func (b BoolVal) Hash() uint32 {
	if b.Val {
		return 1
	}
	return 0
}

type NilVal struct{}

func (NilVal) Type() string   { return "nil" }
func (NilVal) String() string { return "nil" }
func (NilVal) IsFalsey() bool { return true }
func (NilVal) Hash() uint32   { return 0 }

// InfinityVal is signed +-infinity, reserved as its own variant (rather than
// folded into FloatVal) because `inf` is lexed as a dedicated literal; `-inf`
// is unary minus applied to it.
type InfinityVal struct{ Negative bool }

func (i InfinityVal) Type() string { return "float" }
func (i InfinityVal) String() string {
	if i.Negative {
		return "-inf"
	}
	return "inf"
}
func (i InfinityVal) IsFalsey() bool { return false }
func (i InfinityVal) Hash() uint32 {
	if i.Negative {
		return 0xfffffffe
	}
	return 0xffffffff
}

// NaNVal is never equal to itself; Eq special-cases it below.
type NaNVal struct{}

func (NaNVal) Type() string   { return "float" }
func (NaNVal) String() string { return "nan" }
func (NaNVal) IsFalsey() bool { return false }
func (NaNVal) Hash() uint32   { return 0x7fc00000 }

// FunctionVal represents both the top-level script and user-defined
// functions; Name is nil for the top-level script.
type FunctionVal struct {
	Name     *StringVal
	Arity    int
	Defaults []Value
	Chunk    *Chunk
}

func (f *FunctionVal) Type() string { return "function" }
func (f *FunctionVal) String() string {
	if f.Name != nil {
		return fmt.Sprintf("<function %s>", f.Name.String())
	}
	return "<code object>"
}
func (f *FunctionVal) IsFalsey() bool { return false }
func (f *FunctionVal) Hash() uint32   { return fnv1a([]byte(fmt.Sprintf("%p", f.Chunk))) }

// ExceptionVal is the runtime error object the VM constructs when unwinding.
type ExceptionVal struct {
	Name    string
	Message string
}

func (e *ExceptionVal) Type() string   { return "exception" }
func (e *ExceptionVal) String() string { return fmt.Sprintf("%s: %s", e.Name, e.Message) }
func (e *ExceptionVal) IsFalsey() bool { return false }
func (e *ExceptionVal) Hash() uint32   { return fnv1a([]byte(e.Name + ": " + e.Message)) }

// BaseVal is the sentinel variant; it carries no payload.
type BaseVal struct{}

func (BaseVal) Type() string   { return "object" }
func (BaseVal) String() string { return "<object>" }
func (BaseVal) IsFalsey() bool { return false }
func (BaseVal) Hash() uint32   { return 0 }

// IsFalsey implements spec.md's falsey law: nil, false, numeric zero and the
// empty string are falsey; everything else is truthy.
func IsFalsey(v Value) bool { return v.IsFalsey() }

// Stringify renders v the way PRINT and stack traces do.
func Stringify(v Value) string { return v.String() }

// Eq implements variant-aware equality: numeric comparisons cross
// integer/float, NaN is never equal (even to itself), strings compare by
// length/hash/bytes, functions compare by name, nil equals nil, and any
// other pairing of distinct variants compares unequal.
func Eq(a, b Value) bool {
	if _, ok := a.(NaNVal); ok {
		return false
	}
	if _, ok := b.(NaNVal); ok {
		return false
	}

	an, aIsNum := numericOf(a)
	bn, bIsNum := numericOf(b)
	if aIsNum && bIsNum {
		return an == bn
	}

	switch av := a.(type) {
	case *StringVal:
		bv, ok := b.(*StringVal)
		if !ok {
			return false
		}
		if len(av.Data) != len(bv.Data) || av.hash != bv.hash {
			return false
		}
		for i := range av.Data {
			if av.Data[i] != bv.Data[i] {
				return false
			}
		}
		return true
	case BoolVal:
		bv, ok := b.(BoolVal)
		return ok && av.Val == bv.Val
	case NilVal:
		_, ok := b.(NilVal)
		return ok
	case InfinityVal:
		bv, ok := b.(InfinityVal)
		return ok && av.Negative == bv.Negative
	case *FunctionVal:
		bv, ok := b.(*FunctionVal)
		if !ok {
			return false
		}
		if av.Name == nil || bv.Name == nil {
			return av.Name == bv.Name
		}
		return Eq(av.Name, bv.Name)
	case *ExceptionVal:
		bv, ok := b.(*ExceptionVal)
		return ok && av.Name == bv.Name && av.Message == bv.Message
	default:
		return a.Type() == b.Type()
	}
}

// numericOf collapses IntegerVal/FloatVal/InfinityVal into a comparable
// float64 so numeric equality and arithmetic can cross integer/float without
// per-pair-of-types branching everywhere they're used.
func numericOf(v Value) (float64, bool) {
	switch n := v.(type) {
	case IntegerVal:
		return float64(n.Val), true
	case FloatVal:
		return n.Val, true
	case InfinityVal:
		if n.Negative {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	default:
		return 0, false
	}
}

func isNaN(v Value) bool { _, ok := v.(NaNVal); return ok }

func wrapFloat(f float64) Value {
	switch {
	case math.IsNaN(f):
		return NaNVal{}
	case math.IsInf(f, 1):
		return InfinityVal{Negative: false}
	case math.IsInf(f, -1):
		return InfinityVal{Negative: true}
	default:
		return FloatVal{Val: f}
	}
}

// Add implements `+`: numeric addition with the promotion rules of spec.md
// §4.2, plus string concatenation. A nil, nil result signals "unsupported on
// these operand types"; a non-nil error signals integer overflow.
func Add(a, b Value) (Value, *JaplError) {
	if as, ok := a.(*StringVal); ok {
		if bs, ok := b.(*StringVal); ok {
			out := make([]byte, 0, len(as.Data)+len(bs.Data))
			out = append(out, as.Data...)
			out = append(out, bs.Data...)
			return NewString(out), nil
		}
		return nil, nil
	}
	if ai, aok := a.(IntegerVal); aok {
		if bi, bok := b.(IntegerVal); bok {
			sum := ai.Val + bi.Val
			if (bi.Val > 0 && sum < ai.Val) || (bi.Val < 0 && sum > ai.Val) {
				return nil, NewRuntimeError(ErrType, "integer overflow", Loc{})
			}
			return IntegerVal{Val: sum}, nil
		}
	}
	if isNaN(a) || isNaN(b) {
		return NaNVal{}, nil
	}
	an, aok := numericOf(a)
	bn, bok := numericOf(b)
	if !aok || !bok {
		return nil, nil
	}
	return wrapFloat(an + bn), nil
}

// Sub implements `-`.
func Sub(a, b Value) (Value, *JaplError) {
	if ai, aok := a.(IntegerVal); aok {
		if bi, bok := b.(IntegerVal); bok {
			diff := ai.Val - bi.Val
			if (bi.Val < 0 && diff < ai.Val) || (bi.Val > 0 && diff > ai.Val) {
				return nil, NewRuntimeError(ErrType, "integer overflow", Loc{})
			}
			return IntegerVal{Val: diff}, nil
		}
	}
	if isNaN(a) || isNaN(b) {
		return NaNVal{}, nil
	}
	an, aok := numericOf(a)
	bn, bok := numericOf(b)
	if !aok || !bok {
		return nil, nil
	}
	return wrapFloat(an - bn), nil
}

// Mul implements `*`, including string replication (`"ab" * 3`).
func Mul(a, b Value) (Value, *JaplError) {
	if as, ok := a.(*StringVal); ok {
		if bi, ok := b.(IntegerVal); ok {
			return repeatString(as, bi.Val)
		}
	}
	if bs, ok := b.(*StringVal); ok {
		if ai, ok := a.(IntegerVal); ok {
			return repeatString(bs, ai.Val)
		}
	}
	if ai, aok := a.(IntegerVal); aok {
		if bi, bok := b.(IntegerVal); bok {
			if ai.Val != 0 && bi.Val != 0 {
				prod := ai.Val * bi.Val
				if prod/bi.Val != ai.Val || (ai.Val == math.MinInt64 && bi.Val == -1) {
					return nil, NewRuntimeError(ErrType, "integer overflow", Loc{})
				}
				return IntegerVal{Val: prod}, nil
			}
			return IntegerVal{Val: 0}, nil
		}
	}
	if isNaN(a) || isNaN(b) {
		return NaNVal{}, nil
	}
	an, aok := numericOf(a)
	bn, bok := numericOf(b)
	if !aok || !bok {
		return nil, nil
	}
	return wrapFloat(an * bn), nil
}

func repeatString(s *StringVal, n int64) (Value, *JaplError) {
	if n < 0 {
		return nil, NewRuntimeError(ErrType, "cannot repeat a string a negative number of times", Loc{})
	}
	out := make([]byte, 0, len(s.Data)*int(n))
	for i := int64(0); i < n; i++ {
		out = append(out, s.Data...)
	}
	return NewString(out), nil
}

// Div implements `/`. Integer division by zero is a runtime error; float
// division by zero yields +-inf or NaN per IEEE-754.
func Div(a, b Value) (Value, *JaplError) {
	if ai, aok := a.(IntegerVal); aok {
		if bi, bok := b.(IntegerVal); bok {
			if bi.Val == 0 {
				return nil, NewRuntimeError(ErrType, "division by zero", Loc{})
			}
			if ai.Val%bi.Val == 0 {
				return IntegerVal{Val: ai.Val / bi.Val}, nil
			}
			return wrapFloat(float64(ai.Val) / float64(bi.Val)), nil
		}
	}
	if isNaN(a) || isNaN(b) {
		return NaNVal{}, nil
	}
	an, aok := numericOf(a)
	bn, bok := numericOf(b)
	if !aok || !bok {
		return nil, nil
	}
	return wrapFloat(an / bn), nil
}

// Mod implements `%`.
func Mod(a, b Value) (Value, *JaplError) {
	if ai, aok := a.(IntegerVal); aok {
		if bi, bok := b.(IntegerVal); bok {
			if bi.Val == 0 {
				return nil, NewRuntimeError(ErrType, "modulo by zero", Loc{})
			}
			return IntegerVal{Val: ai.Val % bi.Val}, nil
		}
	}
	if isNaN(a) || isNaN(b) {
		return NaNVal{}, nil
	}
	an, aok := numericOf(a)
	bn, bok := numericOf(b)
	if !aok || !bok {
		return nil, nil
	}
	return wrapFloat(math.Mod(an, bn)), nil
}

// Pow implements `**`, right-associative exponentiation.
func Pow(a, b Value) (Value, *JaplError) {
	if ai, aok := a.(IntegerVal); aok {
		if bi, bok := b.(IntegerVal); bok && bi.Val >= 0 {
			result := int64(1)
			base := ai.Val
			exp := bi.Val
			for exp > 0 {
				if exp&1 == 1 {
					next := result * base
					if base != 0 && next/base != result {
						return nil, NewRuntimeError(ErrType, "integer overflow", Loc{})
					}
					result = next
				}
				exp >>= 1
				if exp > 0 {
					next := base * base
					if base != 0 && next/base != base {
						return nil, NewRuntimeError(ErrType, "integer overflow", Loc{})
					}
					base = next
				}
			}
			return IntegerVal{Val: result}, nil
		}
	}
	if isNaN(a) || isNaN(b) {
		return NaNVal{}, nil
	}
	an, aok := numericOf(a)
	bn, bok := numericOf(b)
	if !aok || !bok {
		return nil, nil
	}
	return wrapFloat(math.Pow(an, bn)), nil
}

// intBits extracts an int64 for bitwise operators; ok is false for anything
// that isn't an integer or bool.
func intBits(v Value) (int64, bool) {
	switch n := v.(type) {
	case IntegerVal:
		return n.Val, true
	case BoolVal:
		if n.Val {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// BitAnd and BitOr are unreachable from the VM: chunk.go's opcode table has
// no OpAnd/OpOr since `&`/`|` have no lexical path (see DESIGN.md). They are
// kept as object-model API surface -- spec.md §4.2 lists AND/OR alongside
// XOR/SHL/SHR as operations the model supports, and a caller embedding this
// package's Value/arithmetic layer without the bytecode VM (e.g. driving
// Value operations directly) can still reach them.
func BitAnd(a, b Value) (Value, *JaplError) {
	ai, aok := intBits(a)
	bi, bok := intBits(b)
	if !aok || !bok {
		return nil, nil
	}
	return IntegerVal{Val: ai & bi}, nil
}

func BitOr(a, b Value) (Value, *JaplError) {
	ai, aok := intBits(a)
	bi, bok := intBits(b)
	if !aok || !bok {
		return nil, nil
	}
	return IntegerVal{Val: ai | bi}, nil
}

func BitXor(a, b Value) (Value, *JaplError) {
	ai, aok := intBits(a)
	bi, bok := intBits(b)
	if !aok || !bok {
		return nil, nil
	}
	return IntegerVal{Val: ai ^ bi}, nil
}

func BitNot(a Value) (Value, *JaplError) {
	ai, ok := intBits(a)
	if !ok {
		return nil, nil
	}
	return IntegerVal{Val: ^ai}, nil
}

func Shl(a, b Value) (Value, *JaplError) {
	ai, aok := intBits(a)
	bi, bok := intBits(b)
	if !aok || !bok {
		return nil, nil
	}
	if bi < 0 || bi >= 64 {
		return nil, NewRuntimeError(ErrType, "shift amount out of range", Loc{})
	}
	return IntegerVal{Val: ai << uint(bi)}, nil
}

func Shr(a, b Value) (Value, *JaplError) {
	ai, aok := intBits(a)
	bi, bok := intBits(b)
	if !aok || !bok {
		return nil, nil
	}
	if bi < 0 || bi >= 64 {
		return nil, NewRuntimeError(ErrType, "shift amount out of range", Loc{})
	}
	return IntegerVal{Val: ai >> uint(bi)}, nil
}

// Negate implements unary `-`.
func Negate(a Value) (Value, *JaplError) {
	switch n := a.(type) {
	case IntegerVal:
		if n.Val == math.MinInt64 {
			return nil, NewRuntimeError(ErrType, "integer overflow", Loc{})
		}
		return IntegerVal{Val: -n.Val}, nil
	case FloatVal:
		return FloatVal{Val: -n.Val}, nil
	case InfinityVal:
		return InfinityVal{Negative: !n.Negative}, nil
	case NaNVal:
		return NaNVal{}, nil
	default:
		return nil, nil
	}
}

// Compare orders two values for `< <= > >=`. ok is false when the operands
// aren't numeric or aren't comparable strings.
func Compare(a, b Value) (int, bool) {
	if as, ok := a.(*StringVal); ok {
		if bs, ok := b.(*StringVal); ok {
			return compareBytes(as.Data, bs.Data), true
		}
		return 0, false
	}
	an, aok := numericOf(a)
	bn, bok := numericOf(b)
	if !aok || !bok || isNaN(a) || isNaN(b) {
		return 0, false
	}
	switch {
	case an < bn:
		return -1, true
	case an > bn:
		return 1, true
	default:
		return 0, true
	}
}

func compareBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
