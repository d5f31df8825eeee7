package expr

import (
	"sync"

	"github.com/blackwell-systems/opsem/pg"
)

type parsed struct {
	node *Node
	err  error
}

var (
	actionCache sync.Map // string -> parsed
	guardCache  sync.Map // string -> parsed
)

func cachedAction(s string) (*Node, error) {
	if v, ok := actionCache.Load(s); ok {
		p := v.(parsed)
		return p.node, p.err
	}
	n, err := ParseAction(s)
	actionCache.Store(s, parsed{n, err})
	return n, err
}

func cachedGuard(s string) (*Node, error) {
	if v, ok := guardCache.Load(s); ok {
		p := v.(parsed)
		return p.node, p.err
	}
	n, err := Parse(s)
	guardCache.Store(s, parsed{n, err})
	return n, err
}

// ActionDef is the standard evaluator for every action the language can
// parse except handshakes. Capacity bounds buffered channels when positive.
type ActionDef struct {
	Capacity int
}

var _ pg.ActionDef = ActionDef{}

func (d ActionDef) Matches(action string) bool {
	n, err := cachedAction(action)
	return err == nil && n.Type != NodeHandshake
}

func (d ActionDef) Effect(env pg.Vars, action string) (pg.Vars, error) {
	n, err := cachedAction(action)
	if err != nil {
		return nil, err
	}
	return Exec(n, env, d.Capacity)
}

// HandshakeActionDef evaluates combined "c!e | c?x" actions produced by
// channel-system composition.
type HandshakeActionDef struct{}

var _ pg.ActionDef = HandshakeActionDef{}

func (HandshakeActionDef) Matches(action string) bool {
	n, err := cachedAction(action)
	return err == nil && n.Type == NodeHandshake
}

func (HandshakeActionDef) Effect(env pg.Vars, action string) (pg.Vars, error) {
	n, err := cachedAction(action)
	if err != nil {
		return nil, err
	}
	return Exec(n, env, 0)
}

// ConditionDef is the standard guard evaluator. The empty guard holds.
type ConditionDef struct{}

var _ pg.ConditionDef = ConditionDef{}

func (ConditionDef) Recognizes(cond string) bool {
	if cond == "" {
		return true
	}
	_, err := cachedGuard(cond)
	return err == nil
}

func (ConditionDef) Evaluate(env pg.Vars, cond string) (bool, error) {
	if cond == "" {
		return true, nil
	}
	n, err := cachedGuard(cond)
	if err != nil {
		return false, err
	}
	return EvalBool(n, env)
}

// StandardActions returns the default action registry.
func StandardActions() pg.ActionDefs {
	return pg.ActionDefs{HandshakeActionDef{}, ActionDef{}}
}

// StandardConditions returns the default condition registry.
func StandardConditions() pg.ConditionDefs {
	return pg.ConditionDefs{ConditionDef{}}
}

// ChannelOp describes a lone send or receive action.
type ChannelOp struct {
	Channel string
	Send    bool
}

// ClassifyChannelOp reports the channel operation performed by action, if
// the action is a single send or receive.
func ClassifyChannelOp(action string) (ChannelOp, bool) {
	n, err := cachedAction(action)
	if err != nil || !n.IsChannelOp() {
		return ChannelOp{}, false
	}
	return ChannelOp{Channel: n.Name, Send: n.Type == NodeSend}, true
}
