package assetkind

import (
	"testing"

	"github.com/spaghettifunk/forge/internal/binarycodec"
	"github.com/spaghettifunk/forge/internal/mathutil"
)

func TestAnimationCodecRoundTrips(t *testing.T) {
	original := &Animation{
		Name:           "walk",
		ID:             HashName("walk"),
		Duration:       1.25,
		TicksPerSecond: 30,
		Channels: []*AnimationChannel{
			{
				BoneName:     "spine",
				PositionKeys: []PositionKey{{Time: 0, Value: mathutil.NewVec3Zero()}, {Time: 1, Value: mathutil.NewVec3One()}},
				RotationKeys: []RotationKey{{Time: 0, Value: mathutil.Quaternion(mathutil.NewVec4Create(0, 0, 0, 1))}},
			},
		},
	}

	w := binarycodec.NewWriter()
	original.WriteTo(w)

	decoded := &Animation{}
	decoded.ReadFrom(binarycodec.NewReader(w.Bytes()))

	if decoded.Name != original.Name || decoded.ID != original.ID {
		t.Fatalf("identity mismatch: got %+v", decoded)
	}
	if decoded.Duration != original.Duration || decoded.TicksPerSecond != original.TicksPerSecond {
		t.Fatalf("timing mismatch: got %+v", decoded)
	}
	if len(decoded.Channels) != 1 || decoded.Channels[0].BoneName != "spine" {
		t.Fatalf("channel mismatch: got %+v", decoded.Channels)
	}
	if len(decoded.Channels[0].PositionKeys) != 2 || len(decoded.Channels[0].RotationKeys) != 1 {
		t.Fatalf("key count mismatch: got %+v", decoded.Channels[0])
	}
	if decoded.Channels[0].PositionKeys[1].Value != original.Channels[0].PositionKeys[1].Value {
		t.Fatalf("position value mismatch: got %+v want %+v",
			decoded.Channels[0].PositionKeys[1].Value, original.Channels[0].PositionKeys[1].Value)
	}
}

func TestHashNameSameInputSameOutput(t *testing.T) {
	if HashName("foo") != HashName("foo") {
		t.Fatalf("HashName is not pure")
	}
	if HashName("foo") == HashName("bar") {
		t.Fatalf("different names unexpectedly hashed to the same id")
	}
}

func TestNameClampTruncatesToMaxLength(t *testing.T) {
	long := Name(make([]byte, MaxNameLength+10))
	if len(long.Clamp()) != MaxNameLength {
		t.Fatalf("got clamped length %d, want %d", len(long.Clamp()), MaxNameLength)
	}
	short := Name("short_name")
	if short.Clamp() != short {
		t.Fatalf("Clamp should be a no-op under the limit")
	}
}
