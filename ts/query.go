package ts

// Post returns the direct successors of s.
func (t *TransitionSystem[S, A, P]) Post(s S) (Set[S], error) {
	if !t.states.has(s) {
		return nil, stateNotFound(s)
	}
	out := NewSet[S]()
	for _, tr := range t.out[s] {
		out.Add(tr.To)
	}
	return out, nil
}

// PostAction returns the successors of s reached through action a.
func (t *TransitionSystem[S, A, P]) PostAction(s S, a A) (Set[S], error) {
	if !t.states.has(s) {
		return nil, stateNotFound(s)
	}
	if !t.actions.has(a) {
		return nil, actionNotFound(a)
	}
	out := NewSet[S]()
	for _, tr := range t.out[s] {
		if tr.Action == a {
			out.Add(tr.To)
		}
	}
	return out, nil
}

// PostSet returns the union of Post over c.
func (t *TransitionSystem[S, A, P]) PostSet(c Set[S]) (Set[S], error) {
	out := NewSet[S]()
	for s := range c {
		post, err := t.Post(s)
		if err != nil {
			return nil, err
		}
		out.AddAll(post)
	}
	return out, nil
}

func (t *TransitionSystem[S, A, P]) PostSetAction(c Set[S], a A) (Set[S], error) {
	out := NewSet[S]()
	for s := range c {
		post, err := t.PostAction(s, a)
		if err != nil {
			return nil, err
		}
		out.AddAll(post)
	}
	return out, nil
}

// Pre returns the direct predecessors of s.
func (t *TransitionSystem[S, A, P]) Pre(s S) (Set[S], error) {
	if !t.states.has(s) {
		return nil, stateNotFound(s)
	}
	out := NewSet[S]()
	for _, tr := range t.in[s] {
		out.Add(tr.From)
	}
	return out, nil
}

func (t *TransitionSystem[S, A, P]) PreAction(s S, a A) (Set[S], error) {
	if !t.states.has(s) {
		return nil, stateNotFound(s)
	}
	if !t.actions.has(a) {
		return nil, actionNotFound(a)
	}
	out := NewSet[S]()
	for _, tr := range t.in[s] {
		if tr.Action == a {
			out.Add(tr.From)
		}
	}
	return out, nil
}

func (t *TransitionSystem[S, A, P]) PreSet(c Set[S]) (Set[S], error) {
	out := NewSet[S]()
	for s := range c {
		pre, err := t.Pre(s)
		if err != nil {
			return nil, err
		}
		out.AddAll(pre)
	}
	return out, nil
}

func (t *TransitionSystem[S, A, P]) PreSetAction(c Set[S], a A) (Set[S], error) {
	out := NewSet[S]()
	for s := range c {
		pre, err := t.PreAction(s, a)
		if err != nil {
			return nil, err
		}
		out.AddAll(pre)
	}
	return out, nil
}

// IsStateTerminal reports whether s has no successors.
func (t *TransitionSystem[S, A, P]) IsStateTerminal(s S) (bool, error) {
	if !t.states.has(s) {
		return false, stateNotFound(s)
	}
	return len(t.out[s]) == 0, nil
}

// Reach returns every state reachable from an initial state.
func (t *TransitionSystem[S, A, P]) Reach() Set[S] {
	seen := NewSet[S]()
	queue := make([]S, 0, len(t.initial.items))
	for _, s := range t.initial.items {
		if !seen.Has(s) {
			seen.Add(s)
			queue = append(queue, s)
		}
	}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, tr := range t.out[s] {
			if !seen.Has(tr.To) {
				seen.Add(tr.To)
				queue = append(queue, tr.To)
			}
		}
	}
	return seen
}

// IsActionDeterministic reports whether there is at most one initial state
// and no state has two transitions with the same action.
func (t *TransitionSystem[S, A, P]) IsActionDeterministic() bool {
	if len(t.initial.items) > 1 {
		return false
	}
	for _, s := range t.states.items {
		used := NewSet[A]()
		for _, tr := range t.out[s] {
			if used.Has(tr.Action) {
				return false
			}
			used.Add(tr.Action)
		}
	}
	return true
}

// IsAPDeterministic reports whether there is at most one initial state and,
// for every state and action, distinct successors carry distinct labels.
func (t *TransitionSystem[S, A, P]) IsAPDeterministic() bool {
	if len(t.initial.items) > 1 {
		return false
	}
	for _, s := range t.states.items {
		byAction := make(map[A][]S)
		for _, tr := range t.out[s] {
			byAction[tr.Action] = append(byAction[tr.Action], tr.To)
		}
		for _, succ := range byAction {
			for i := 0; i < len(succ); i++ {
				for j := i + 1; j < len(succ); j++ {
					if succ[i] == succ[j] {
						continue
					}
					if t.Label(succ[i]).Equal(t.Label(succ[j])) {
						return false
					}
				}
			}
		}
	}
	return true
}
