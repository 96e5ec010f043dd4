package scene

import (
	"fmt"
	"sort"

	"github.com/ivlev/picturebox/internal/actor"
	"github.com/ivlev/picturebox/internal/cast"
	"github.com/ivlev/picturebox/internal/param"
	"github.com/ivlev/picturebox/internal/source"
)

// Build creates the actors in declaration order, which is also their
// drawing order.
func (s *Scene) Build() ([]*actor.Actor, error) {
	return s.BuildWith(source.NewCache())
}

// BuildWith is Build sharing a picture cache across scenes.
func (s *Scene) BuildWith(cache *source.Cache) ([]*actor.Actor, error) {
	b := &builder{dir: s.dir, cache: cache}
	actors := make([]*actor.Actor, 0, len(s.Actors))
	for i := range s.Actors {
		a, err := b.actor(&s.Actors[i])
		if err != nil {
			return nil, err
		}
		actors = append(actors, a)
	}
	return actors, nil
}

func (b *builder) actor(spec *ActorSpec) (*actor.Actor, error) {
	behavior, err := cast.New(spec.Kind)
	if err != nil {
		return nil, fmt.Errorf("actor %s: %w", spec.Name, err)
	}

	names := make([]string, 0, len(spec.Params))
	for k := range spec.Params {
		names = append(names, k)
	}
	sort.Strings(names)
	args := make(param.Args, len(spec.Params))
	for _, k := range names {
		n := spec.Params[k]
		v, err := b.value(spec.Kind, k, &n)
		if err != nil {
			return nil, fmt.Errorf("actor %s: param %s: %w", spec.Name, k, err)
		}
		args[k] = v
	}

	hasShadow, err := b.shadow(spec.HasShadow)
	if err != nil {
		return nil, fmt.Errorf("actor %s: has_shadow: %w", spec.Name, err)
	}
	return actor.New(spec.Name, marks(spec.TS), behavior,
		actor.WithParams(args),
		actor.WithShadow(hasShadow),
	)
}
