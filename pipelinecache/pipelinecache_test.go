// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package pipelinecache

import (
	"errors"
	"testing"

	"github.com/novaengine/gbal/driver"
)

type fakeShader struct{ stage driver.Stage }

func (f *fakeShader) Destroy()                          {}
func (f *fakeShader) Stage() driver.Stage               { return f.stage }
func (f *fakeShader) SourceKind() driver.SourceKind      { return driver.SourceGLSL }
func (f *fakeShader) EntryPoint() string                { return "main" }
func (f *fakeShader) Reflection() *driver.ReflectionInfo { return nil }

type fakePipeline struct{ n int }

func (f *fakePipeline) Destroy()        {}
func (f *fakePipeline) IsCompute() bool { return false }

func TestHashGraphStateDeterministic(t *testing.T) {
	vs := &fakeShader{stage: driver.StageVertex}
	fs := &fakeShader{stage: driver.StageFragment}
	state := &driver.GraphState{VertexShader: vs, FragmentShader: fs, Topology: driver.TTriangle}

	k1 := HashGraphState(state)
	k2 := HashGraphState(state)
	if k1 != k2 {
		t.Fatalf("hash not deterministic: %v != %v", k1, k2)
	}

	other := &driver.GraphState{VertexShader: vs, FragmentShader: fs, Topology: driver.TLine}
	if HashGraphState(other) == k1 {
		t.Fatal("distinct topologies hashed to the same key")
	}
}

func TestHashDistinguishesShaderIdentity(t *testing.T) {
	vs1 := &fakeShader{stage: driver.StageVertex}
	vs2 := &fakeShader{stage: driver.StageVertex}
	fs := &fakeShader{stage: driver.StageFragment}

	k1 := HashGraphState(&driver.GraphState{VertexShader: vs1, FragmentShader: fs})
	k2 := HashGraphState(&driver.GraphState{VertexShader: vs2, FragmentShader: fs})
	if k1 == k2 {
		t.Fatal("distinct shader objects hashed to the same key")
	}
}

func TestGetOrCreateReturnsSameObjectOnHit(t *testing.T) {
	c := New()
	key := Key(42)
	calls := 0
	create := func() (driver.Pipeline, error) {
		calls++
		return &fakePipeline{n: calls}, nil
	}

	p1, hit1, err := c.GetOrCreate(key, create)
	if err != nil || hit1 {
		t.Fatalf("first GetOrCreate() = %v, %v, %v; want miss", p1, hit1, err)
	}
	p2, hit2, err := c.GetOrCreate(key, create)
	if err != nil || !hit2 {
		t.Fatalf("second GetOrCreate() = %v, %v, %v; want hit", p2, hit2, err)
	}
	if p1 != p2 {
		t.Fatal("cache hit returned a different pipeline object")
	}
	if calls != 1 {
		t.Fatalf("create called %d times, want 1", calls)
	}
}

func TestGetOrCreatePropagatesCreateError(t *testing.T) {
	c := New()
	wantErr := errors.New("compile failed")
	_, _, err := c.GetOrCreate(Key(1), func() (driver.Pipeline, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("GetOrCreate() error = %v, want %v", err, wantErr)
	}
	if c.Len() != 0 {
		t.Fatal("failed create should not populate the cache")
	}
}

func TestInvalidateClearsAndReturnsEntries(t *testing.T) {
	c := New()
	p := &fakePipeline{}
	c.GetOrCreate(Key(1), func() (driver.Pipeline, error) { return p, nil })

	removed := c.Invalidate()
	if len(removed) != 1 || removed[0] != p {
		t.Fatalf("Invalidate() = %v, want [%v]", removed, p)
	}
	if c.Len() != 0 {
		t.Fatal("cache should be empty after Invalidate")
	}
}
