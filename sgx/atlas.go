// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package sgx

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/gogpu/rtss/ffp"
	"github.com/gogpu/rtss/ir"
	"github.com/gogpu/rtss/script"
	"github.com/gogpu/rtss/shaderlib"
	"github.com/gogpu/rtss/srs"
)

// TypeTextureAtlasSampler is the type of the TextureAtlasSampler state.
const TypeTextureAtlasSampler = "SGX_TextureAtlasSampler"

const (
	// MaxAtlasTextures is the number of texture units that may be atlases;
	// each reads one component of the index coordinate.
	MaxAtlasTextures = 4

	// MaxSafeAtlasEntries is the table size above which some devices fail
	// to compile the vertex program.
	MaxSafeAtlasEntries = 250
)

// contentAtlasData tags the varying carrying the table entry of unit i at
// contentAtlasData + i.
const contentAtlasData = ir.ContentCustomBegin + 100

// AtlasRecord places one texture inside an atlas. Offsets and sizes are
// fractions of the atlas.
type AtlasRecord struct {
	Original      string
	Atlas         string
	U, V          float64
	Width, Height float64
}

// AtlasTable lists the textures of one atlas. A texture's position in
// Records is the index vertices select it with.
type AtlasTable struct {
	Records []AtlasRecord
	// Width and Height are the atlas size in texels, zero when the render
	// system binds it.
	Width, Height int
}

// ParseAtlasDefinition reads a texture atlas definition (.tai) file. Each
// line maps a texture to its place in an atlas:
//
//	<texture>\t\t<atlas>, <atlas index>, 2D, <u>, <v>, <depth>, <width>, <height>
//
// Blank lines and lines starting with # are ignored.
func ParseAtlasDefinition(r io.Reader) ([]AtlasRecord, error) {
	var records []AtlasRecord
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		rec, err := parseAtlasLine(text)
		if err != nil {
			return nil, fmt.Errorf("sgx: atlas definition line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("sgx: atlas definition: %w", err)
	}
	return records, nil
}

func parseAtlasLine(text string) (AtlasRecord, error) {
	name, rest, ok := strings.Cut(text, "\t")
	if !ok {
		return AtlasRecord{}, fmt.Errorf("missing tab after texture name")
	}
	fields := strings.Split(rest, ",")
	if len(fields) != 8 {
		return AtlasRecord{}, fmt.Errorf("expected 8 comma separated fields, got %d", len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if fields[2] != "2D" {
		return AtlasRecord{}, fmt.Errorf("unsupported atlas type %q", fields[2])
	}
	var v [4]float64
	for i, f := range []string{fields[3], fields[4], fields[6], fields[7]} {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil || x < 0 || x > 1 {
			return AtlasRecord{}, fmt.Errorf("invalid atlas coordinate %q", f)
		}
		v[i] = x
	}
	return AtlasRecord{
		Original: strings.TrimSpace(name),
		Atlas:    fields[0],
		U:        v[0],
		V:        v[1],
		Width:    v[2],
		Height:   v[3],
	}, nil
}

// AtlasIndexPosition tells how the index coordinate set is located.
type AtlasIndexPosition uint8

const (
	// AtlasIndexRelative places the index set after the texture units of
	// the pass, moved by the offset.
	AtlasIndexRelative AtlasIndexPosition = iota
	// AtlasIndexAbsolute uses the offset as the set.
	AtlasIndexAbsolute
)

func (p AtlasIndexPosition) String() string {
	if p == AtlasIndexAbsolute {
		return "absolute"
	}
	return "relative"
}

// atlasUnit is one texture unit bound to an atlas.
type atlasUnit struct {
	unit       int
	table      AtlasTable
	addressing srs.TextureAddressing

	data, vsOut              *ir.Parameter
	fsIn, size               *ir.Parameter
	texcoord, sampler, texel *ir.Parameter
}

// TextureAtlasSampler samples colour texture units that are atlases. The
// vertex selects the texture of each atlas through one component of an
// index coordinate set; the fragment program remaps the texture coordinate
// into that texture and replaces the texel texturing sampled.
type TextureAtlasSampler struct {
	factory *TextureAtlasSamplerFactory

	position   AtlasIndexPosition
	offset     int
	autoBorder bool

	indexSet int
	units    []*atlasUnit
	index    *ir.Parameter
	coord    *ir.Parameter
}

// SetParams sets how the index coordinate set is found and whether lookups
// keep half a texel away from the edges of the atlased texture.
func (s *TextureAtlasSampler) SetParams(position AtlasIndexPosition, offset int, autoBorder bool) {
	s.position, s.offset, s.autoBorder = position, offset, autoBorder
}

func (s *TextureAtlasSampler) Type() string        { return TypeTextureAtlasSampler }
func (s *TextureAtlasSampler) ExecutionOrder() int { return srs.OrderTexturing + 25 }

func (s *TextureAtlasSampler) PreAddToRenderState(ctx *srs.Context, pass srs.Pass) error {
	s.units = s.units[:0]
	units := pass.TextureUnits()
	for i, u := range units {
		if u.Kind != srs.TextureColour {
			continue
		}
		table, ok := s.factory.AtlasTable(u.Name)
		if !ok || len(table.Records) == 0 {
			continue
		}
		if i >= MaxAtlasTextures {
			return srs.Errorf(TypeTextureAtlasSampler, "unit %d: at most %d texture units may be atlases", i, MaxAtlasTextures)
		}
		if u.Type != srs.Texture2D || u.EnvMap != srs.EnvMapNone || u.Projective {
			return srs.Errorf(TypeTextureAtlasSampler, "unit %d: atlases must be plain 2D textures", i)
		}
		if len(table.Records) > MaxSafeAtlasEntries {
			ctx.Log().Warn("sgx: atlas table may not compile", "pass", pass.Name(), "atlas", u.Name, "entries", len(table.Records))
		}
		s.units = append(s.units, &atlasUnit{unit: i, table: table, addressing: u.Addressing})
	}
	if len(s.units) == 0 {
		return srs.Errorf(TypeTextureAtlasSampler, "pass %q has no atlas textures", pass.Name())
	}
	s.indexSet = s.offset
	if s.position == AtlasIndexRelative {
		s.indexSet += len(units) - 1
	}
	if s.indexSet < 0 || s.indexSet >= ir.MaxIndexedContents {
		return srs.Errorf(TypeTextureAtlasSampler, "index texture coordinate set %d out of range", s.indexSet)
	}
	return nil
}

func (s *TextureAtlasSampler) ResolveParameters(_ *srs.Context, set *ir.ProgramSet) error {
	vs := srs.NewResolver(set.Vertex)
	s.index = vs.Input(ir.SemanticTexCoord, s.indexSet, ir.TexCoordContent(s.indexSet), ir.TypeFloat4)
	for _, u := range s.units {
		values := make([]float64, 0, 4*len(u.table.Records))
		for _, r := range u.table.Records {
			values = append(values, r.U, r.V, r.Width, r.Height)
		}
		n := strconv.Itoa(u.unit)
		u.data = vs.UniformArray("atlasData"+n, ir.TypeFloat4, len(u.table.Records), values...)
		u.vsOut = vs.Output(ir.SemanticTexCoord, -1, contentAtlasData+ir.Content(u.unit), ir.TypeFloat4)
	}
	if err := vs.Err(); err != nil {
		return err
	}

	fs := srs.NewResolver(set.Fragment)
	for _, u := range s.units {
		u.texcoord = set.Fragment.InputByContent(ir.TexCoordContent(u.unit))
		if u.texcoord == nil || u.texcoord.Type != ir.TypeFloat2 {
			return srs.Errorf(TypeTextureAtlasSampler, "unit %d is not sampled by %s", u.unit, ffp.TypeTexturing)
		}
		n := strconv.Itoa(u.unit)
		u.sampler = fs.Sampler(ir.TypeSampler2D, u.unit)
		u.texel = fs.NamedLocal(ffp.TexelName(u.unit), ir.TypeFloat4)
		u.fsIn = fs.Input(ir.SemanticTexCoord, -1, contentAtlasData+ir.Content(u.unit), ir.TypeFloat4)
		if s.autoBorder {
			var size []float64
			if u.table.Width > 0 && u.table.Height > 0 {
				size = []float64{float64(u.table.Width), float64(u.table.Height)}
			}
			u.size = fs.Uniform("atlasSize"+n, ir.TypeFloat2, size...)
		}
	}
	s.coord = fs.NamedLocal("atlasCoord", ir.TypeFloat2)
	return fs.Err()
}

func (s *TextureAtlasSampler) ResolveDependencies(_ *srs.Context, set *ir.ProgramSet) error {
	set.Fragment.AddDependency(shaderlib.TextureAtlas)
	return nil
}

var indexMasks = [MaxAtlasTextures]ir.Mask{ir.MaskX, ir.MaskY, ir.MaskZ, ir.MaskW}

// addressFunc returns the helper applying addressing mode a to one
// coordinate. Atlases have no border colour, so border addressing clamps.
func addressFunc(a srs.TextureAddressing) string {
	switch a {
	case srs.AddressMirror:
		return shaderlib.FuncAtlasMirror
	case srs.AddressClamp, srs.AddressBorder:
		return shaderlib.FuncAtlasClamp
	default:
		return shaderlib.FuncAtlasWrap
	}
}

func (s *TextureAtlasSampler) AddFunctionInvocations(_ *srs.Context, set *ir.ProgramSet) error {
	vf := ir.NewFunction(TypeTextureAtlasSampler, s.ExecutionOrder())
	for _, u := range s.units {
		entry := ir.NewIn(u.data).WithIndex(ir.NewIn(s.index).WithMask(indexMasks[u.unit]))
		vf.AddInvocation(ir.OpAssign, entry, ir.NewOut(u.vsOut))
	}
	set.Vertex.AddFunction(vf)

	// Texturing samples at OrderTextureSampling and blends at
	// OrderTexturing; the atlas texel replaces its sample in between.
	ff := ir.NewFunction(TypeTextureAtlasSampler, srs.OrderTextureSampling+25)
	for _, u := range s.units {
		address := addressFunc(u.addressing)
		ff.AddInvocation(address, ir.NewIn(u.texcoord).WithMask(ir.MaskX), ir.NewOut(s.coord).WithMask(ir.MaskX))
		ff.AddInvocation(address, ir.NewIn(u.texcoord).WithMask(ir.MaskY), ir.NewOut(s.coord).WithMask(ir.MaskY))
		if s.autoBorder {
			ff.AddInvocation(shaderlib.FuncAtlasCoordAutoAdjust,
				ir.NewIn(s.coord), ir.NewIn(u.fsIn), ir.NewIn(u.size), ir.NewOut(s.coord))
		} else {
			ff.AddInvocation(shaderlib.FuncAtlasCoordNormal, ir.NewIn(s.coord), ir.NewIn(u.fsIn), ir.NewOut(s.coord))
		}
		ff.AddInvocation(ir.OpSampleTexture, ir.NewIn(u.sampler), ir.NewIn(s.coord), ir.NewOut(u.texel))
	}
	set.Fragment.AddFunction(ff)
	return nil
}

// TextureAtlasSamplerFactory creates texture atlas samplers and holds the
// atlas tables they look texture units up in. Tables are keyed by the name
// of the atlas texture. It is safe for concurrent use.
type TextureAtlasSamplerFactory struct {
	mu     sync.RWMutex
	tables map[string]AtlasTable
}

// NewTextureAtlasSamplerFactory returns a factory without atlas tables.
func NewTextureAtlasSamplerFactory() *TextureAtlasSamplerFactory {
	return &TextureAtlasSamplerFactory{tables: make(map[string]AtlasTable)}
}

// AddAtlasDefinition parses a .tai file and appends its records to the
// tables of their atlases.
func (f *TextureAtlasSamplerFactory) AddAtlasDefinition(r io.Reader) error {
	records, err := ParseAtlasDefinition(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range records {
		t := f.tables[rec.Atlas]
		t.Records = append(t.Records, rec)
		f.tables[rec.Atlas] = t
	}
	return nil
}

// SetAtlasTable replaces the table of atlas.
func (f *TextureAtlasSamplerFactory) SetAtlasTable(atlas string, t AtlasTable) {
	t.Records = slices.Clone(t.Records)
	f.mu.Lock()
	f.tables[atlas] = t
	f.mu.Unlock()
}

// SetAtlasSize records the texel size of atlas for auto border adjustment.
func (f *TextureAtlasSamplerFactory) SetAtlasSize(atlas string, width, height int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.tables[atlas]
	t.Width, t.Height = width, height
	f.tables[atlas] = t
}

// AtlasTable returns a copy of the table of atlas.
func (f *TextureAtlasSamplerFactory) AtlasTable(atlas string) (AtlasTable, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	t, ok := f.tables[atlas]
	t.Records = slices.Clone(t.Records)
	return t, ok
}

// Atlases returns the names of the known atlases in sorted order.
func (f *TextureAtlasSamplerFactory) Atlases() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Sorted(maps.Keys(f.tables))
}

func (f *TextureAtlasSamplerFactory) Type() string { return TypeTextureAtlasSampler }

func (f *TextureAtlasSamplerFactory) New() srs.SubRenderState {
	return &TextureAtlasSampler{factory: f, offset: 1, autoBorder: true}
}

// CreateInstance handles
// "texture_atlas [relative|absolute] [<offset>] [auto_border|no_border]".
func (f *TextureAtlasSamplerFactory) CreateInstance(prop *script.Property, _ srs.Pass, tr *srs.Translator) srs.SubRenderState {
	if prop.Name != "texture_atlas" {
		return nil
	}
	if len(prop.Values) > 3 {
		tr.Reportf(prop, "expected at most 3 values, got %d", len(prop.Values))
		return nil
	}
	position, offset, autoBorder := AtlasIndexRelative, 1, true
	for i := range prop.Values {
		v := prop.Value(i)
		switch v.String() {
		case "relative":
			position = AtlasIndexRelative
		case "absolute":
			position = AtlasIndexAbsolute
		case "auto_border":
			autoBorder = true
		case "no_border":
			autoBorder = false
		default:
			n, ok := v.Int()
			if !ok {
				tr.Reportf(prop, "unknown atlas option %q", v)
				return nil
			}
			offset = n
		}
	}
	s := srs.CreateOrRetrieveInstance(tr, f).(*TextureAtlasSampler)
	s.SetParams(position, offset, autoBorder)
	return s
}

func (f *TextureAtlasSamplerFactory) WriteInstance(w *script.Writer, state srs.SubRenderState, _, _ srs.Pass) {
	s := state.(*TextureAtlasSampler)
	border := "no_border"
	if s.autoBorder {
		border = "auto_border"
	}
	w.WriteProperty("texture_atlas", s.position.String(), strconv.Itoa(s.offset), border)
}
