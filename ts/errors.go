package ts

import "github.com/cockroachdb/errors"

// Sentinels for classifying failures with errors.Is.
var (
	ErrStateNotFound       = errors.New("state not found")
	ErrActionNotFound      = errors.New("action not found")
	ErrPropositionNotFound = errors.New("atomic proposition not found")
	ErrAttachedEntity      = errors.New("entity is still attached")
)

func stateNotFound(s any) error {
	return errors.Mark(errors.Newf("state %v is not a state of the transition system", s), ErrStateNotFound)
}

func actionNotFound(a any) error {
	return errors.Mark(errors.Newf("action %v is not an action of the transition system", a), ErrActionNotFound)
}

func propositionNotFound(p any) error {
	return errors.Mark(errors.Newf("atomic proposition %v is not registered", p), ErrPropositionNotFound)
}

func attached(kind string, v any, by string) error {
	return errors.Mark(errors.Newf("cannot remove %s %v: still referenced by %s", kind, v, by), ErrAttachedEntity)
}
