package diskcache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStore_SaveLoad(t *testing.T) {
	store, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDir failed: %v", err)
	}

	key := Fingerprint("<{ip}|{country_iso}>", "maxmind", "/usr/share/GeoIP")
	entries := map[string]string{
		"8.8.8.8":     "<8.8.8.8|US>",
		"2001:db8::1": "<2001:db8::1|>",
	}

	if err := store.Save(key, entries); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, ok, err := store.Load(key)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !ok {
		t.Fatal("Load reported no snapshot after Save")
	}
	if len(got) != len(entries) {
		t.Fatalf("loaded %d entries, want %d", len(got), len(entries))
	}
	for k, v := range entries {
		if got[k] != v {
			t.Errorf("entry %q = %q, want %q", k, got[k], v)
		}
	}
}

func TestStore_LoadMissing(t *testing.T) {
	store, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	_, ok, err := store.Load(Fingerprint("nothing"))
	if err != nil {
		t.Fatalf("Load of missing snapshot failed: %v", err)
	}
	if ok {
		t.Error("Load reported a snapshot that was never saved")
	}
}

func TestStore_SchemaMismatchIsAMiss(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	key := Fingerprint("schema-test")
	if err := store.Save(key, map[string]string{"1.1.1.1": "x"}); err != nil {
		t.Fatal(err)
	}

	// Corrupt the schema by rewriting the snapshot with a bumped version.
	// Encoded as a struct, the schema field is the first element; simplest
	// is to overwrite the file with garbage and expect a decode error, and
	// separately verify the version gate via a handcrafted snapshot.
	path := filepath.Join(dir, "decorations", key+".mp")
	if err := os.WriteFile(path, []byte{0xc0}, 0o644); err != nil { // msgpack nil
		t.Fatal(err)
	}

	if _, ok, _ := store.Load(key); ok {
		t.Error("Load reported ok for an invalid snapshot")
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("tmpl", "maxmind")
	b := Fingerprint("tmpl", "maxmind")
	if a != b {
		t.Error("identical inputs produced different fingerprints")
	}

	if Fingerprint("tmpl", "maxmind") == Fingerprint("tmpl", "other") {
		t.Error("different inputs produced the same fingerprint")
	}

	// Length prefixing keeps part boundaries significant.
	if Fingerprint("ab", "c") == Fingerprint("a", "bc") {
		t.Error("shifted part boundaries produced the same fingerprint")
	}

	if len(a) != 64 {
		t.Errorf("fingerprint length = %d, want 64 hex chars", len(a))
	}
}

func TestStore_DropAll(t *testing.T) {
	store, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	key := Fingerprint("drop-test")
	if err := store.Save(key, map[string]string{"1.1.1.1": "x"}); err != nil {
		t.Fatal(err)
	}
	if err := store.DropAll(); err != nil {
		t.Fatalf("DropAll failed: %v", err)
	}

	if _, ok, err := store.Load(key); err != nil || ok {
		t.Errorf("after DropAll: ok = %v, err = %v, want miss", ok, err)
	}

	// The store stays usable after invalidation.
	if err := store.Save(key, map[string]string{"2.2.2.2": "y"}); err != nil {
		t.Errorf("Save after DropAll failed: %v", err)
	}
}

func TestOpen_UsesXDGCacheHome(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", base)

	store, err := Open("ipmark-test")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if store.dir != filepath.Join(base, "ipmark-test") {
		t.Errorf("store dir = %q, want under %q", store.dir, base)
	}
}
