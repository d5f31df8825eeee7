package expr

import (
	"strings"

	"github.com/blackwell-systems/opsem/pg"
	"github.com/cockroachdb/errors"
)

// IsRendezvous reports whether ch names a rendezvous channel. Such channels
// carry no buffer: their operations only fire as part of a handshake.
func IsRendezvous(ch string) bool {
	return strings.HasPrefix(ch, "_")
}

// Exec runs the statement node against a copy of env and returns the
// result. Channels are FIFO queues stored in the environment under their
// name; capacity bounds every buffered channel when positive. A blocked
// statement returns pg.ErrNotApplicable.
func Exec(node *Node, env pg.Vars, capacity int) (pg.Vars, error) {
	out := env.Clone()
	if err := exec(node, out, capacity); err != nil {
		return nil, err
	}
	return out, nil
}

func exec(node *Node, env pg.Vars, capacity int) error {
	switch node.Type {
	case NodeSkip:
		return nil

	case NodeAssign:
		v, err := Eval(node.Children[0], env)
		if err != nil {
			return errors.Wrapf(err, "evaluating %s", node)
		}
		if _, ok := env[node.Name].([]any); ok {
			return errors.Newf("cannot assign to channel %q", node.Name)
		}
		env[node.Name] = v.Any()
		return nil

	case NodeSend:
		if IsRendezvous(node.Name) {
			return blocked(node)
		}
		q, err := queue(env, node.Name)
		if err != nil {
			return err
		}
		if capacity > 0 && len(q) >= capacity {
			return blocked(node)
		}
		v, err := Eval(node.Children[0], env)
		if err != nil {
			return errors.Wrapf(err, "evaluating %s", node)
		}
		env[node.Name] = append(q, v.Any())
		return nil

	case NodeRecv:
		if IsRendezvous(node.Name) {
			return blocked(node)
		}
		q, err := queue(env, node.Name)
		if err != nil {
			return err
		}
		if len(q) == 0 {
			return blocked(node)
		}
		if len(q) == 1 {
			delete(env, node.Name)
		} else {
			env[node.Name] = q[1:]
		}
		env[node.Target] = q[0]
		return nil

	case NodeAtomic:
		for _, s := range node.Children {
			if err := exec(s, env, capacity); err != nil {
				return err
			}
		}
		return nil

	case NodeHandshake:
		send, recv := node.Children[0], node.Children[1]
		if send.Type == NodeRecv {
			send, recv = recv, send
		}
		if send.Type != NodeSend || recv.Type != NodeRecv {
			return errors.Newf("handshake %s needs one send and one receive", node)
		}
		if send.Name != recv.Name {
			return errors.Newf("handshake %s joins different channels", node)
		}
		v, err := Eval(send.Children[0], env)
		if err != nil {
			return errors.Wrapf(err, "evaluating %s", node)
		}
		env[recv.Target] = v.Any()
		return nil

	default:
		return errors.Newf("%s is an expression, not a statement", node)
	}
}

func blocked(node *Node) error {
	return errors.Mark(errors.Newf("%s cannot fire", node), pg.ErrNotApplicable)
}

func queue(env pg.Vars, ch string) ([]any, error) {
	raw, ok := env[ch]
	if !ok || raw == nil {
		return nil, nil
	}
	q, ok := raw.([]any)
	if !ok {
		return nil, errors.Newf("%q is a variable, not a channel", ch)
	}
	return q, nil
}
