// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package registry

import "testing"

type fakeResource struct{ destroyed bool }

func (f *fakeResource) Destroy() { f.destroyed = true }

func TestInsertGetRemove(t *testing.T) {
	r := New()
	res := &fakeResource{}
	key := r.Insert(KindBuffer, "vertex_pool", res)

	got, ok := r.Get(KindBuffer, key)
	if !ok || got != res {
		t.Fatalf("Get() = %v, %v; want %v, true", got, ok, res)
	}

	k2, ok := r.ByName(KindBuffer, "vertex_pool")
	if !ok || k2 != key {
		t.Fatalf("ByName() = %v, %v; want %v, true", k2, ok, key)
	}

	r.Remove(KindBuffer, key)
	if _, ok := r.Get(KindBuffer, key); ok {
		t.Fatal("Get() after Remove should report not found")
	}
	if _, ok := r.ByName(KindBuffer, "vertex_pool"); ok {
		t.Fatal("ByName() after Remove should report not found")
	}
}

func TestKeysNeverReused(t *testing.T) {
	r := New()
	first := r.Insert(KindTexture, "", &fakeResource{})
	r.Remove(KindTexture, first)
	second := r.Insert(KindTexture, "", &fakeResource{})
	if second == first {
		t.Fatalf("key %v reused after removal, want distinct key", first)
	}
}

func TestStats(t *testing.T) {
	r := New()
	a := r.Insert(KindShader, "", &fakeResource{})
	_ = r.Insert(KindShader, "", &fakeResource{})
	r.Remove(KindShader, a)

	st := r.Stats(KindShader)
	if st.Live != 1 {
		t.Fatalf("Stats().Live = %d, want 1", st.Live)
	}
	if st.Ever != 2 {
		t.Fatalf("Stats().Ever = %d, want 2", st.Ever)
	}
}

func TestKeysListsOnlyLive(t *testing.T) {
	r := New()
	a := r.Insert(KindPipeline, "", &fakeResource{})
	b := r.Insert(KindPipeline, "", &fakeResource{})
	r.Remove(KindPipeline, a)

	keys := r.Keys(KindPipeline)
	if len(keys) != 1 || keys[0] != b {
		t.Fatalf("Keys() = %v, want [%v]", keys, b)
	}
}

func TestKindString(t *testing.T) {
	if KindRenderTarget.String() != "render_target" {
		t.Fatalf("Kind.String() = %q", KindRenderTarget.String())
	}
	if Kind(99).String() != "unknown" {
		t.Fatal("Kind(99).String() should fall back to unknown")
	}
}
