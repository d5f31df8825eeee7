package expr

import (
	"strconv"

	"github.com/blackwell-systems/opsem/pg"
	"github.com/cockroachdb/errors"
)

// Value is a tagged union for evaluation results.
type Value struct {
	IsInt  bool
	IsBool bool
	Int    int
	Bool   bool
}

// Any returns the plain Go value stored in an environment.
func (v Value) Any() any {
	if v.IsBool {
		return v.Bool
	}
	return v.Int
}

func (v Value) String() string {
	if v.IsBool {
		if v.Bool {
			return "true"
		}
		return "false"
	}
	return strconv.Itoa(v.Int)
}

// valueOf converts an environment binding. Undefined variables read as 0.
func valueOf(name string, raw any, ok bool) (Value, error) {
	if !ok || raw == nil {
		return Value{IsInt: true}, nil
	}
	switch x := raw.(type) {
	case int:
		return Value{IsInt: true, Int: x}, nil
	case int64:
		return Value{IsInt: true, Int: int(x)}, nil
	case float64:
		return Value{IsInt: true, Int: int(x)}, nil
	case bool:
		return Value{IsBool: true, Bool: x}, nil
	case []any:
		return Value{}, errors.Newf("channel %q used as a value", name)
	default:
		return Value{}, errors.Newf("variable %q has unsupported type %T", name, raw)
	}
}

// Eval evaluates an expression node in env.
func Eval(node *Node, env pg.Vars) (Value, error) {
	switch node.Type {
	case NodeLitInt:
		return intValue(node.IntVal), nil

	case NodeLitBool:
		return boolValue(node.BoolVal), nil

	case NodeVar:
		raw, ok := env[node.Name]
		return valueOf(node.Name, raw, ok)

	case NodeNot:
		v, err := Eval(node.Children[0], env)
		if err != nil {
			return Value{}, err
		}
		if !v.IsBool {
			return Value{}, errors.New("'!' requires bool operand")
		}
		return boolValue(!v.Bool), nil

	case NodeAnd, NodeOr:
		left, err := Eval(node.Children[0], env)
		if err != nil {
			return Value{}, err
		}
		if !left.IsBool {
			return Value{}, errors.Newf("'%s' requires bool operands", opText[node.Type])
		}
		// Short-circuit.
		if node.Type == NodeAnd && !left.Bool {
			return left, nil
		}
		if node.Type == NodeOr && left.Bool {
			return left, nil
		}
		right, err := Eval(node.Children[1], env)
		if err != nil {
			return Value{}, err
		}
		if !right.IsBool {
			return Value{}, errors.Newf("'%s' requires bool operands", opText[node.Type])
		}
		return right, nil

	case NodeEq, NodeNeq:
		left, right, err := evalPair(node, env)
		if err != nil {
			return Value{}, err
		}
		var eq bool
		switch {
		case left.IsBool && right.IsBool:
			eq = left.Bool == right.Bool
		case left.IsInt && right.IsInt:
			eq = left.Int == right.Int
		default:
			return Value{}, errors.New("type mismatch in equality comparison")
		}
		return boolValue(eq != (node.Type == NodeNeq)), nil

	case NodeLt, NodeLe, NodeGt, NodeGe, NodeAdd, NodeSub, NodeMul, NodeDiv, NodeMod:
		left, right, err := evalPair(node, env)
		if err != nil {
			return Value{}, err
		}
		if !left.IsInt || !right.IsInt {
			return Value{}, errors.Newf("'%s' requires int operands", opText[node.Type])
		}
		return intOp(node.Type, left.Int, right.Int)

	case NodeCall:
		return evalCall(node, env)

	default:
		return Value{}, errors.Newf("%s is a statement, not an expression", node)
	}
}

func intOp(op NodeType, a, b int) (Value, error) {
	switch op {
	case NodeLt:
		return boolValue(a < b), nil
	case NodeLe:
		return boolValue(a <= b), nil
	case NodeGt:
		return boolValue(a > b), nil
	case NodeGe:
		return boolValue(a >= b), nil
	case NodeAdd:
		return intValue(a + b), nil
	case NodeSub:
		return intValue(a - b), nil
	case NodeMul:
		return intValue(a * b), nil
	}
	if b == 0 {
		return Value{}, errors.New("division by zero")
	}
	if op == NodeDiv {
		return intValue(a / b), nil
	}
	return intValue(a % b), nil
}

func intValue(n int) Value {
	return Value{IsInt: true, Int: n}
}

func boolValue(b bool) Value {
	return Value{IsBool: true, Bool: b}
}

func evalPair(node *Node, env pg.Vars) (Value, Value, error) {
	left, err := Eval(node.Children[0], env)
	if err != nil {
		return Value{}, Value{}, err
	}
	right, err := Eval(node.Children[1], env)
	if err != nil {
		return Value{}, Value{}, err
	}
	return left, right, nil
}

func evalCall(node *Node, env pg.Vars) (Value, error) {
	if node.Name == "len" {
		q, _ := env[node.Children[0].Name].([]any)
		return intValue(len(q)), nil
	}
	args := make([]int, len(node.Children))
	for i, c := range node.Children {
		v, err := Eval(c, env)
		if err != nil {
			return Value{}, err
		}
		if !v.IsInt {
			return Value{}, errors.Newf("%s requires int arguments", node.Name)
		}
		args[i] = v.Int
	}
	switch node.Name {
	case "min":
		return intValue(min(args[0], args[1])), nil
	case "max":
		return intValue(max(args[0], args[1])), nil
	case "clamp":
		return intValue(min(max(args[1], args[0]), args[2])), nil
	default:
		return Value{}, errors.Newf("unknown function %q", node.Name)
	}
}

// EvalBool evaluates a guard.
func EvalBool(node *Node, env pg.Vars) (bool, error) {
	v, err := Eval(node, env)
	if err != nil {
		return false, err
	}
	if !v.IsBool {
		return false, errors.New("expected bool expression, got int")
	}
	return v.Bool, nil
}
