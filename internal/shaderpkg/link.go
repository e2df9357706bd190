package shaderpkg

import "github.com/spaghettifunk/forge/internal/assetkind"

// Compatible implements the linker-compatibility check spec.md §4.4 defines
// for use by the Material Pipeline: two resources from different stages are
// compatible iff, whenever they share either binding or name, they share
// all of {binding, desc_set, name, array_size, base_type, concrete_type,
// size}. Any partial overlap is a link error.
func Compatible(a, b *assetkind.ShaderResource) bool {
	sharesBinding := a.Binding == b.Binding
	sharesName := a.Name != "" && a.Name == b.Name
	if !sharesBinding && !sharesName {
		return true // no overlap claimed, nothing to reconcile
	}
	if a.Binding != b.Binding {
		return false
	}
	if a.DescSet != b.DescSet {
		return false
	}
	if a.Name != b.Name {
		return false
	}
	if len(a.ArraySize) != len(b.ArraySize) {
		return false
	}
	for i := range a.ArraySize {
		if a.ArraySize[i] != b.ArraySize[i] {
			return false
		}
	}
	if a.BaseType != b.BaseType {
		return false
	}
	if a.ConcreteType != b.ConcreteType {
		return false
	}
	return a.Size == b.Size
}

// CheckStageLink runs Compatible over every pair across two stage resource
// lists, returning the first incompatible pair found, if any.
func CheckStageLink(lhs, rhs []*assetkind.ShaderResource) (ok bool, offendingA, offendingB *assetkind.ShaderResource) {
	for _, a := range lhs {
		for _, b := range rhs {
			if !Compatible(a, b) {
				return false, a, b
			}
		}
	}
	return true, nil, nil
}
