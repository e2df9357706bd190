package store

import (
	"testing"

	"github.com/spaghettifunk/forge/internal/assetkind"
	"github.com/spaghettifunk/forge/internal/binarycodec"
	"github.com/spaghettifunk/forge/internal/pathutil"
)

// fakeAsset is the minimal PackageableAsset used to exercise Store without
// pulling in a real asset kind.
type fakeAsset struct {
	Name    string
	Payload uint32
}

func (f *fakeAsset) WriteTo(w *binarycodec.Writer) {
	w.WriteString(f.Name)
	w.WriteU32(f.Payload)
}
func (f *fakeAsset) ReadFrom(r *binarycodec.Reader) {
	f.Name = r.ReadString()
	f.Payload = r.ReadU32()
}
func (f *fakeAsset) AssetName() assetkind.Name     { return assetkind.Name(f.Name) }
func (f *fakeAsset) AssetID() assetkind.ID         { return assetkind.HashName(assetkind.Name(f.Name)) }
func (f *fakeAsset) DefaultFileExtension() string  { return "fake" }
func (f *fakeAsset) CacheName() string             { return "fakes" }

func newTestStore(t *testing.T) *Store[*fakeAsset] {
	t.Helper()
	root := pathutil.Normalize(t.TempDir())
	s := New[*fakeAsset](root, "fakes", "fakes", "fake",
		func() *fakeAsset { return &fakeAsset{} },
		func() []*fakeAsset { return nil },
	)
	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return s
}

func TestHashNameIsDeterministic(t *testing.T) {
	a := assetkind.HashName("rock_diffuse")
	b := assetkind.HashName("rock_diffuse")
	if a != b {
		t.Fatalf("HashName not deterministic: %v != %v", a, b)
	}
}

func TestPackageThenLoadRoundTrips(t *testing.T) {
	s := newTestStore(t)
	asset := &fakeAsset{Name: "brick01", Payload: 42}

	id, ok := s.Package(assetkind.OriginUser, asset)
	if !ok {
		t.Fatalf("Package failed")
	}
	if id != assetkind.HashName("brick01") {
		t.Fatalf("id mismatch: got %v want %v", id, assetkind.HashName("brick01"))
	}

	loaded, ok := s.LoadAssetFromPackage(id)
	if !ok {
		t.Fatalf("LoadAssetFromPackage failed")
	}
	if loaded.Name != "brick01" || loaded.Payload != 42 {
		t.Fatalf("round trip mismatch: got %+v", loaded)
	}
}

func TestRegisterAssetResolvesCollisionBySuffix(t *testing.T) {
	s := newTestStore(t)

	path1, id1, ok := s.RegisterAsset("pluginA", "shared_name", true)
	if !ok {
		t.Fatalf("first RegisterAsset failed")
	}
	path2, id2, ok := s.RegisterAsset("pluginB", "shared_name", true)
	if !ok {
		t.Fatalf("second RegisterAsset failed")
	}
	if id1 == id2 {
		t.Fatalf("expected distinct ids after suffix resolution, got the same id %v", id1)
	}
	if path1 == path2 {
		t.Fatalf("expected distinct package paths, got %q twice", path1)
	}
}

func TestRegisterAssetShortCircuitsSameNonUserOrigin(t *testing.T) {
	s := newTestStore(t)

	_, id1, ok := s.RegisterAsset("pluginA", "shared_name", true)
	if !ok {
		t.Fatalf("first RegisterAsset failed")
	}
	_, id2, ok := s.RegisterAsset("pluginA", "shared_name", true)
	if !ok {
		t.Fatalf("re-registration under the same origin failed")
	}
	if id1 != id2 {
		t.Fatalf("expected the same id when re-registering under the same non-user origin, got %v and %v", id1, id2)
	}
}

func TestRegisterAssetUserOriginNeverShortCircuits(t *testing.T) {
	s := newTestStore(t)

	_, id1, ok := s.RegisterAsset(assetkind.OriginUser, "shared_name", true)
	if !ok {
		t.Fatalf("first RegisterAsset failed")
	}
	_, id2, ok := s.RegisterAsset(assetkind.OriginUser, "shared_name", true)
	if !ok {
		t.Fatalf("second RegisterAsset failed")
	}
	if id1 == id2 {
		t.Fatalf("expected OriginUser re-registration to always suffix, got the same id %v twice", id1)
	}
}

func TestDeleteAssetRemovesEntry(t *testing.T) {
	s := newTestStore(t)
	asset := &fakeAsset{Name: "temp01"}
	id, ok := s.Package(assetkind.OriginUser, asset)
	if !ok {
		t.Fatalf("Package failed")
	}
	if !s.AssetExists(id) {
		t.Fatalf("expected asset to exist before delete")
	}
	if !s.DeleteAsset(id) {
		t.Fatalf("DeleteAsset reported failure")
	}
	if s.AssetExists(id) {
		t.Fatalf("expected asset to be gone after delete")
	}
}

func TestRefreshCacheEvictsOrphans(t *testing.T) {
	s := newTestStore(t)
	asset := &fakeAsset{Name: "orphan01"}
	id, ok := s.Package(assetkind.OriginUser, asset)
	if !ok {
		t.Fatalf("Package failed")
	}

	// Simulate the blob disappearing out from under the cache.
	s.DeleteAsset(id)
	if _, _, ok := s.RegisterAsset(assetkind.OriginUser, "orphan01", false); !ok {
		t.Fatalf("re-register after delete should succeed")
	}
	id2, _ := s.resolveID("orphan01")

	s.RefreshCache()
	if s.AssetExists(id2) {
		t.Fatalf("expected RefreshCache to evict an entry whose blob was never written")
	}
}
