package scenepipeline

import (
	"testing"

	"github.com/spaghettifunk/forge/internal/mathutil"
	"github.com/spaghettifunk/forge/internal/scene"
)

func TestBuildAnimationsConvertsChannels(t *testing.T) {
	graph := &scene.Graph{
		Animations: []*scene.Animation{
			{
				Name:           "walk",
				Duration:       1.5,
				TicksPerSecond: 24,
				Channels: []*scene.AnimationChannel{
					{
						BoneName:      "spine",
						PositionTimes: []float32{0, 1},
						Positions:     []mathutil.Vec3{mathutil.NewVec3Zero(), mathutil.NewVec3One()},
					},
				},
			},
		},
	}

	anims, err := BuildAnimations(graph)
	if err != nil {
		t.Fatalf("BuildAnimations: %v", err)
	}
	if len(anims) != 1 {
		t.Fatalf("got %d animations, want 1", len(anims))
	}
	anim := anims[0]
	if anim.Duration != 1.5 || anim.TicksPerSecond != 24 {
		t.Fatalf("duration/tick mismatch: %+v", anim)
	}
	if len(anim.Channels) != 1 || anim.Channels[0].BoneName != "spine" {
		t.Fatalf("channel conversion mismatch: %+v", anim.Channels)
	}
	if len(anim.Channels[0].PositionKeys) != 2 {
		t.Fatalf("expected 2 position keys, got %d", len(anim.Channels[0].PositionKeys))
	}
}

func TestBuildAnimationsRejectsNonPositiveDuration(t *testing.T) {
	graph := &scene.Graph{
		Animations: []*scene.Animation{{Name: "broken", Duration: 0, TicksPerSecond: 24}},
	}
	if _, err := BuildAnimations(graph); err == nil {
		t.Fatalf("expected an error for a zero-duration animation")
	}
}

func TestBuildAnimationsRejectsEmptyBoneName(t *testing.T) {
	graph := &scene.Graph{
		Animations: []*scene.Animation{{
			Name: "broken", Duration: 1, TicksPerSecond: 24,
			Channels: []*scene.AnimationChannel{{BoneName: ""}},
		}},
	}
	if _, err := BuildAnimations(graph); err == nil {
		t.Fatalf("expected an error for a channel with an empty bone name")
	}
}
