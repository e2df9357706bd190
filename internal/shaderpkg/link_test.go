package shaderpkg

import (
	"testing"

	"github.com/spaghettifunk/forge/internal/assetkind"
)

func ref(binding, descSet uint32, name string, baseType assetkind.ResourceBaseType, size uint32) *assetkind.ShaderResource {
	return &assetkind.ShaderResource{
		Name: name, Binding: binding, DescSet: descSet, BaseType: baseType, Size: size,
	}
}

func TestCompatibleNoOverlapIsCompatible(t *testing.T) {
	a := ref(0, 0, "camera", assetkind.ResourceBaseUniformBuffer, 64)
	b := ref(1, 0, "light", assetkind.ResourceBaseUniformBuffer, 32)
	if !Compatible(a, b) {
		t.Fatalf("expected disjoint bindings to be compatible")
	}
}

func TestCompatibleIdenticalSharedBindingIsCompatible(t *testing.T) {
	a := ref(0, 0, "camera", assetkind.ResourceBaseUniformBuffer, 64)
	b := ref(0, 0, "camera", assetkind.ResourceBaseUniformBuffer, 64)
	if !Compatible(a, b) {
		t.Fatalf("expected identical shared-binding resources to be compatible")
	}
}

func TestCompatibleSameBindingDifferentSizeIsIncompatible(t *testing.T) {
	a := ref(0, 0, "camera", assetkind.ResourceBaseUniformBuffer, 64)
	b := ref(0, 0, "camera", assetkind.ResourceBaseUniformBuffer, 32)
	if Compatible(a, b) {
		t.Fatalf("expected a size mismatch on the same binding to be incompatible")
	}
}

func TestCheckStageLinkReportsFirstOffendingPair(t *testing.T) {
	lhs := []*assetkind.ShaderResource{ref(0, 0, "camera", assetkind.ResourceBaseUniformBuffer, 64)}
	rhs := []*assetkind.ShaderResource{ref(0, 0, "camera", assetkind.ResourceBaseUniformBuffer, 32)}

	ok, a, b := CheckStageLink(lhs, rhs)
	if ok {
		t.Fatalf("expected link check to fail")
	}
	if a == nil || b == nil {
		t.Fatalf("expected the offending pair to be reported")
	}
}
