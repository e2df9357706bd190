package scenepipeline

import (
	"fmt"

	"github.com/spaghettifunk/forge/internal/assetkind"
	"github.com/spaghettifunk/forge/internal/corelog"
	"github.com/spaghettifunk/forge/internal/scene"
)

// BuildAnimations runs the Animation Pipeline (spec.md §4.5): every
// animation in the scene becomes one asset named after the animation.
// An animation with duration or tick-rate <= 0, or any channel with an
// empty bone name, is rejected outright rather than silently dropped,
// since either signals a malformed import rather than an empty scene.
func BuildAnimations(graph *scene.Graph) ([]*assetkind.Animation, error) {
	out := make([]*assetkind.Animation, 0, len(graph.Animations))
	for _, src := range graph.Animations {
		anim, err := buildOneAnimation(src)
		if err != nil {
			return nil, err
		}
		out = append(out, anim)
	}
	return out, nil
}

func buildOneAnimation(src *scene.Animation) (*assetkind.Animation, error) {
	if src.Duration <= 0 {
		return nil, fmt.Errorf("%w: animation %q has non-positive duration %v", corelog.ErrInvalidCommand, src.Name, src.Duration)
	}
	if src.TicksPerSecond <= 0 {
		return nil, fmt.Errorf("%w: animation %q has non-positive tick rate %v", corelog.ErrInvalidCommand, src.Name, src.TicksPerSecond)
	}

	out := &assetkind.Animation{
		Name:           assetkind.Name(src.Name).Clamp(),
		ID:             assetkind.HashName(assetkind.Name(src.Name)),
		Duration:       src.Duration,
		TicksPerSecond: src.TicksPerSecond,
	}
	for _, ch := range src.Channels {
		if ch.BoneName == "" {
			return nil, fmt.Errorf("%w: animation %q has a channel with an empty bone name", corelog.ErrInvalidCommand, src.Name)
		}
		out.Channels = append(out.Channels, convertChannel(ch))
	}
	return out, nil
}

func convertChannel(ch *scene.AnimationChannel) *assetkind.AnimationChannel {
	out := &assetkind.AnimationChannel{BoneName: ch.BoneName}
	for i, t := range ch.PositionTimes {
		out.PositionKeys = append(out.PositionKeys, assetkind.PositionKey{Time: t, Value: ch.Positions[i]})
	}
	for i, t := range ch.RotationTimes {
		out.RotationKeys = append(out.RotationKeys, assetkind.RotationKey{Time: t, Value: ch.Rotations[i]})
	}
	for i, t := range ch.ScaleTimes {
		out.ScaleKeys = append(out.ScaleKeys, assetkind.ScaleKey{Time: t, Value: ch.Scales[i]})
	}
	return out
}
