// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package srs

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/rtss/backend"
	"github.com/gogpu/rtss/ir"
	"github.com/gogpu/rtss/script"
)

type testPass struct {
	units    []TextureUnit
	caster   string
	receiver string
}

func (p *testPass) Name() string                            { return "test" }
func (p *testPass) LightingEnabled() bool                   { return true }
func (p *testPass) Lights() []LightType                     { return []LightType{LightDirectional} }
func (p *testPass) SpecularEnabled() bool                   { return false }
func (p *testPass) VertexColourTracking() TrackVertexColour { return TrackNone }
func (p *testPass) Fog() FogMode                            { return FogNone }
func (p *testPass) TextureUnits() []TextureUnit             { return p.units }
func (p *testPass) SetShadowCasterMaterial(name string)     { p.caster = name }
func (p *testPass) SetShadowReceiverMaterial(name string)   { p.receiver = name }
func (p *testPass) AddTextureUnit(u TextureUnit) int {
	p.units = append(p.units, u)
	return len(p.units) - 1
}

// testState adds one vertex function writing a local named after its type.
// failAt selects the phase whose method returns an error.
type testState struct {
	typ     string
	order   int
	failAt  Phase
	uniform bool
	calls   []Phase
}

var errTestState = errors.New("test state failure")

func (s *testState) Type() string        { return s.typ }
func (s *testState) ExecutionOrder() int { return s.order }

func (s *testState) step(phase Phase) error {
	s.calls = append(s.calls, phase)
	if s.failAt == phase {
		return errTestState
	}
	return nil
}

func (s *testState) PreAddToRenderState(*Context, Pass) error { return s.step(PhasePreAdd) }

func (s *testState) ResolveParameters(_ *Context, set *ir.ProgramSet) error {
	if _, err := set.Vertex.ResolveNamedLocal(s.typ, ir.TypeFloat4); err != nil {
		return err
	}
	if s.uniform {
		if _, err := set.Vertex.ResolveUniform(s.typ+"Param", ir.TypeFloat4); err != nil {
			return err
		}
	}
	return s.step(PhaseResolveParameters)
}

func (s *testState) ResolveDependencies(_ *Context, set *ir.ProgramSet) error {
	set.Vertex.AddDependency(s.typ + "Lib")
	return s.step(PhaseResolveDependencies)
}

func (s *testState) AddFunctionInvocations(_ *Context, set *ir.ProgramSet) error {
	local, err := set.Vertex.ResolveNamedLocal(s.typ, ir.TypeFloat4)
	if err != nil {
		return err
	}
	f := ir.NewFunction(s.typ, s.order)
	f.AddInvocation(ir.OpAssign, ir.NewIn(ir.NewConstant(0, 0, 0, 1)), ir.NewOut(local))
	set.Vertex.AddFunction(f)
	return s.step(PhaseAddFunctionInvocations)
}

// testFactory handles "<typ> on".
type testFactory struct {
	typ   string
	order int
	multi bool
}

func (f *testFactory) Type() string                  { return f.typ }
func (f *testFactory) New() SubRenderState           { return &testState{typ: f.typ, order: f.order} }
func (f *testFactory) AllowsMultipleInstances() bool { return f.multi }

func (f *testFactory) CreateInstance(prop *script.Property, _ Pass, tr *Translator) SubRenderState {
	if prop.Name != f.typ {
		return nil
	}
	if len(prop.Values) != 1 || prop.Value(0).String() != "on" {
		tr.Reportf(prop, "expected on")
		return nil
	}
	return CreateOrRetrieveInstance(tr, f)
}

func (f *testFactory) WriteInstance(w *script.Writer, _ SubRenderState, _, _ Pass) {
	w.WriteProperty(f.typ, "on")
}

// recordingWriter keeps the program set it was asked to write.
type recordingWriter struct {
	set *ir.ProgramSet
	err error
}

func (w *recordingWriter) TargetLanguage() string { return "test" }

func (w *recordingWriter) Write(set *ir.ProgramSet) (backend.Result, error) {
	w.set = set
	return backend.Result{}, w.err
}

func newTestRegistry(t *testing.T, factories ...Factory) *Registry {
	t.Helper()
	reg, err := NewRegistry(factories...)
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func functionNames(p *ir.Program) []string {
	var names []string
	for _, f := range p.Functions() {
		names = append(names, f.Name)
	}
	return names
}

func TestRegistry(t *testing.T) {
	reg := newTestRegistry(t, &testFactory{typ: "a"}, &testFactory{typ: "b", multi: true})
	if got := strings.Join(reg.Types(), ","); got != "a,b" {
		t.Errorf("Types() = %q", got)
	}
	if !reg.AllowsMultiple("b") || reg.AllowsMultiple("a") || reg.AllowsMultiple("missing") {
		t.Error("AllowsMultiple mismatch")
	}
	if _, err := reg.Lookup("missing"); !IsKind(err, ErrUnknownType) {
		t.Errorf("Lookup(missing) error = %v", err)
	}
	if _, err := NewRegistry(&testFactory{typ: "a"}, &testFactory{typ: "a"}); !IsKind(err, ErrDuplicateFactory) {
		t.Errorf("duplicate registration error = %v", err)
	}
}

func TestCreateOrRetrieveInstance(t *testing.T) {
	f := &testFactory{typ: "a"}
	target := NewTargetRenderState(newTestRegistry(t, f))
	tr := NewTranslator(nil, target, &testPass{})

	first := CreateOrRetrieveInstance(tr, f)
	second := CreateOrRetrieveInstance(tr, f)
	if first != second {
		t.Fatal("CreateOrRetrieveInstance returned two different states")
	}
	if n := len(target.States()); n != 1 {
		t.Errorf("collected %d states, want 1", n)
	}
	if target.Phase() != PhaseCollecting {
		t.Errorf("phase = %v, want Collecting", target.Phase())
	}
}

func TestTranslator(t *testing.T) {
	target := NewTargetRenderState(newTestRegistry(t, &testFactory{typ: "a"}, &testFactory{typ: "b"}))
	tr := NewTranslator(nil, target, &testPass{})
	props, err := script.Parse("rtshader_system\n{\n\ta on\n\tb off\n\tc on\n\ta on\n}\n")
	if err != nil {
		t.Fatal(err)
	}

	if n := tr.Translate(props); n != 2 {
		t.Errorf("Translate accepted %d properties, want 2", n)
	}
	if n := len(target.States()); n != 1 {
		t.Errorf("collected %d states, want 1", n)
	}
	diags := tr.Diagnostics()
	if len(diags) != 2 {
		t.Fatalf("diagnostics = %v, want 2", diags)
	}
	if diags[0].Property != "b" || diags[0].Line != 4 || diags[0].Message != "expected on" {
		t.Errorf("diagnostic = %+v", diags[0])
	}
	if !strings.Contains(diags[1].Error(), "no factory accepts") {
		t.Errorf("diagnostic = %v", diags[1])
	}
}

func TestTargetRenderState_SingleInstance(t *testing.T) {
	reg := newTestRegistry(t, &testFactory{typ: "single"}, &testFactory{typ: "multi", multi: true})
	target := NewTargetRenderState(reg)

	if err := target.Add(&testState{typ: "single"}); err != nil {
		t.Fatal(err)
	}
	if err := target.Add(&testState{typ: "single"}); !IsKind(err, ErrDuplicateState) {
		t.Errorf("second single state error = %v", err)
	}
	for range 2 {
		if err := target.Add(&testState{typ: "multi"}); err != nil {
			t.Errorf("multi-instance state rejected: %v", err)
		}
	}
	if n := len(target.States()); n != 3 {
		t.Errorf("collected %d states, want 3", n)
	}
}

func TestTargetRenderState_ExecutionOrder(t *testing.T) {
	target := NewTargetRenderState(newTestRegistry(t))
	for _, s := range []*testState{
		{typ: "Texturing", order: OrderTexturing},
		{typ: "Transform", order: OrderTransform},
		{typ: "Fog", order: OrderFog},
		{typ: "Lighting", order: OrderLighting},
	} {
		if err := target.Add(s); err != nil {
			t.Fatal(err)
		}
	}

	w := &recordingWriter{}
	if _, err := target.Generate(nil, &testPass{}, w); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got := strings.Join(functionNames(w.set.Vertex), ","); got != "Transform,Lighting,Texturing,Fog" {
		t.Errorf("functions = %s", got)
	}
	if got := strings.Join(w.set.Vertex.Dependencies(), ","); got != "TransformLib,LightingLib,TexturingLib,FogLib" {
		t.Errorf("dependencies = %s", got)
	}
	if target.Phase() != PhaseDone {
		t.Errorf("phase = %v, want Done", target.Phase())
	}
	if _, err := target.Generate(nil, &testPass{}, w); !IsKind(err, ErrInvalidPhase) {
		t.Errorf("second Generate error = %v", err)
	}
}

func TestTargetRenderState_DropRollsBack(t *testing.T) {
	tests := []struct {
		name   string
		failAt Phase
	}{
		{"pre add", PhasePreAdd},
		{"resolve parameters", PhaseResolveParameters},
		{"resolve dependencies", PhaseResolveDependencies},
		{"add function invocations", PhaseAddFunctionInvocations},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := NewTargetRenderState(newTestRegistry(t))
			keep := &testState{typ: "Keep", order: OrderTransform, uniform: true}
			bad := &testState{typ: "Bad", order: OrderLighting, uniform: true, failAt: tt.failAt}
			late := &testState{typ: "Late", order: OrderFog}
			for _, s := range []SubRenderState{keep, bad, late} {
				if err := target.Add(s); err != nil {
					t.Fatal(err)
				}
			}

			w := &recordingWriter{}
			if _, err := target.Generate(nil, &testPass{}, w); err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if got := strings.Join(functionNames(w.set.Vertex), ","); got != "Keep,Late" {
				t.Errorf("functions = %s", got)
			}
			for _, u := range w.set.Vertex.Uniforms() {
				if u.Name == "BadParam" {
					t.Error("dropped state's uniform survived")
				}
			}
			for _, l := range w.set.Vertex.Locals() {
				if l.Name == "Bad" {
					t.Error("dropped state's local survived")
				}
			}
			if got := strings.Join(w.set.Vertex.Dependencies(), ","); got != "KeepLib,LateLib" {
				t.Errorf("dependencies = %s", got)
			}
			dropped := target.Dropped()
			if len(dropped) != 1 || dropped[0].Type != "Bad" || dropped[0].Phase != tt.failAt ||
				!errors.Is(dropped[0].Err, errTestState) {
				t.Errorf("dropped = %+v", dropped)
			}
			if len(target.States()) != 2 {
				t.Errorf("states = %d, want 2", len(target.States()))
			}
		})
	}
}

// editingState registers a texture unit and a receiver material on the pass.
type editingState struct {
	testState
	unit int
}

func (s *editingState) PreAddToRenderState(_ *Context, pass Pass) error {
	s.unit = pass.AddTextureUnit(TextureUnit{Name: s.typ})
	pass.SetShadowReceiverMaterial(s.typ)
	return s.step(PhasePreAdd)
}

func TestTargetRenderState_PassEditsOfDroppedStates(t *testing.T) {
	tests := []struct {
		name   string
		failAt Phase
	}{
		{"pre add", PhasePreAdd},
		{"resolve parameters", PhaseResolveParameters},
		{"add function invocations", PhaseAddFunctionInvocations},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := NewTargetRenderState(newTestRegistry(t))
			bad := &editingState{testState: testState{typ: "Bad", order: OrderTransform, failAt: tt.failAt}}
			good := &editingState{testState: testState{typ: "Good", order: OrderTexturing}}
			for _, s := range []SubRenderState{bad, good} {
				if err := target.Add(s); err != nil {
					t.Fatal(err)
				}
			}

			pass := &testPass{units: []TextureUnit{{Name: "albedo"}}}
			w := &recordingWriter{}
			if _, err := target.Generate(nil, pass, w); err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if got := strings.Join(functionNames(w.set.Vertex), ","); got != "Good" {
				t.Errorf("functions = %s", got)
			}
			if len(pass.units) != 2 || pass.units[1].Name != "Good" {
				t.Errorf("pass units = %+v, want albedo and Good", pass.units)
			}
			if good.unit != 1 {
				t.Errorf("kept state got unit %d, want 1", good.unit)
			}
			if pass.receiver != "Good" {
				t.Errorf("receiver = %q, want Good", pass.receiver)
			}
			dropped := target.Dropped()
			if len(dropped) != 1 || dropped[0].Type != "Bad" || dropped[0].Phase != tt.failAt {
				t.Errorf("dropped = %+v", dropped)
			}
		})
	}
}

func TestTargetRenderState_PassEditsOfFailedGeneration(t *testing.T) {
	target := NewTargetRenderState(newTestRegistry(t))
	if err := target.Add(&editingState{testState: testState{typ: "A"}}); err != nil {
		t.Fatal(err)
	}
	pass := &testPass{}
	if _, err := target.Generate(nil, pass, &recordingWriter{err: errors.New("writer failure")}); err == nil {
		t.Fatal("Generate succeeded with a failing writer")
	}
	if len(pass.units) != 0 || pass.receiver != "" {
		t.Errorf("failed generation edited the pass: units %+v, receiver %q", pass.units, pass.receiver)
	}
}

func TestTargetRenderState_MergeFailure(t *testing.T) {
	target := NewTargetRenderState(newTestRegistry(t))
	if err := target.Add(&unlinkedState{}); err != nil {
		t.Fatal(err)
	}
	_, err := target.Generate(nil, &testPass{}, &recordingWriter{})
	if !ir.IsKind(err, ir.ErrUnlinkedVarying) {
		t.Fatalf("Generate error = %v, want unlinked varying", err)
	}
	if target.Phase() != PhaseFailed {
		t.Errorf("phase = %v, want Failed", target.Phase())
	}

	target.Invalidate()
	if target.Phase() != PhaseIdle || target.ProgramSet() != nil || len(target.States()) != 0 {
		t.Error("Invalidate did not return to an empty Idle state")
	}
}

func TestTargetRenderState_WriterFailure(t *testing.T) {
	target := NewTargetRenderState(newTestRegistry(t))
	if err := target.Add(&testState{typ: "A"}); err != nil {
		t.Fatal(err)
	}
	wantErr := errors.New("writer failure")
	_, err := target.Generate(nil, &testPass{}, &recordingWriter{err: wantErr})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Generate error = %v", err)
	}
	if target.Phase() != PhaseFailed {
		t.Errorf("phase = %v, want Failed", target.Phase())
	}
}

// unlinkedState reads a fragment texture coordinate no vertex output provides.
type unlinkedState struct{}

func (unlinkedState) Type() string                             { return "Unlinked" }
func (unlinkedState) ExecutionOrder() int                      { return OrderTexturing }
func (unlinkedState) PreAddToRenderState(*Context, Pass) error { return nil }
func (unlinkedState) ResolveDependencies(*Context, *ir.ProgramSet) error {
	return nil
}
func (unlinkedState) AddFunctionInvocations(*Context, *ir.ProgramSet) error { return nil }
func (unlinkedState) ResolveParameters(_ *Context, set *ir.ProgramSet) error {
	_, err := set.Fragment.ResolveInput(ir.SemanticTexCoord, -1, ir.TexCoordContent(3), ir.TypeFloat2)
	return err
}

func TestWriteRenderState(t *testing.T) {
	reg := newTestRegistry(t, &testFactory{typ: "a"}, &testFactory{typ: "b"})
	w := script.NewWriter()
	states := []SubRenderState{&testState{typ: "b"}, &testState{typ: "a"}}
	if err := WriteRenderState(w, reg, states, nil, nil); err != nil {
		t.Fatal(err)
	}
	want := "rtshader_system\n{\n\tb on\n\ta on\n}\n"
	if w.String() != want {
		t.Errorf("WriteRenderState =\n%s\nwant\n%s", w.String(), want)
	}

	if err := WriteRenderState(script.NewWriter(), reg, []SubRenderState{&testState{typ: "c"}}, nil, nil); !IsKind(err, ErrUnknownType) {
		t.Errorf("unknown type error = %v", err)
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer SetLogger(nil)

	target := NewTargetRenderState(newTestRegistry(t))
	if err := target.Add(&testState{typ: "Bad", failAt: PhasePreAdd}); err != nil {
		t.Fatal(err)
	}
	if _, err := target.Generate(nil, &testPass{}, &recordingWriter{}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"level=WARN", "sub render state dropped", "type=Bad", "to=PreAdd"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}

	SetLogger(nil)
	if Logger().Enabled(t.Context(), slog.LevelError) {
		t.Error("default logger is enabled")
	}
}

func TestContext_Log(t *testing.T) {
	var nilCtx *Context
	if nilCtx.Log() != Logger() {
		t.Error("nil context does not fall back to the package logger")
	}
	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	if (&Context{Logger: l}).Log() != l {
		t.Error("context logger ignored")
	}
}

func TestResolver(t *testing.T) {
	prog := ir.NewProgram(ir.StageVertex)
	r := NewResolver(prog)
	pos := r.Input(ir.SemanticPosition, 0, ir.ContentPositionObjectSpace, ir.TypeFloat4)
	if pos == nil || r.Err() != nil {
		t.Fatalf("Input = %v, err %v", pos, r.Err())
	}
	if again := r.Input(ir.SemanticPosition, 0, ir.ContentPositionObjectSpace, ir.TypeFloat4); again != pos {
		t.Error("second resolution returned a new parameter")
	}

	if p := r.Input(ir.SemanticPosition, 0, ir.ContentPositionObjectSpace, ir.TypeFloat3); p != nil {
		t.Error("type mismatch resolved a parameter")
	}
	if !ir.IsKind(r.Err(), ir.ErrTypeMismatch) {
		t.Fatalf("Err() = %v", r.Err())
	}
	if p := r.Uniform("later", ir.TypeFloat4); p != nil {
		t.Error("resolution continued after an error")
	}
	if len(prog.Uniforms()) != 0 {
		t.Error("uniform declared after an error")
	}
}
