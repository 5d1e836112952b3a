package mapview

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saha-map/internal/regionindex"
	"saha-map/internal/svgmap"
)

type fakeSurface struct {
	fills   map[svgmap.ElementID]string
	cursors map[svgmap.ElementID]string
}

func newSurface(n int) *fakeSurface {
	s := &fakeSurface{fills: map[svgmap.ElementID]string{}, cursors: map[svgmap.ElementID]string{}}
	for i := 1; i <= n; i++ {
		s.fills[svgmap.ElementID(i)] = "#d3d3d3"
	}
	return s
}

func (s *fakeSurface) InlineFill(id svgmap.ElementID) string   { return s.fills[id] }
func (s *fakeSurface) SetFill(id svgmap.ElementID, f string)   { s.fills[id] = f }
func (s *fakeSurface) SetCursor(id svgmap.ElementID, c string) { s.cursors[id] = c }
func (s *fakeSurface) original(id svgmap.ElementID) bool       { return s.fills[id] == "#d3d3d3" }

type fakeSource struct{ calls int }

func (f *fakeSource) MembersForRegion(r regionindex.Region) []regionindex.MemberRecord {
	f.calls++
	return []regionindex.MemberRecord{{Name: r.Name, Role: regionindex.RoleMember}}
}

func province(t *testing.T, code string, ids ...svgmap.ElementID) Target {
	t.Helper()
	r, ok := regionindex.ResolveProvince(code, "")
	require.True(t, ok)
	return Target{Region: r, Elements: ids}
}

func district(key string, ids ...svgmap.ElementID) Target {
	return Target{Region: regionindex.Region{Kind: regionindex.KindDistrict, Key: key, Name: key}, Elements: ids}
}

type fixture struct {
	m        *Machine
	prov     *fakeSurface
	dist     *fakeSurface
	src      *fakeSource
	levels   []Level
	ankara   Target
	izmir    Target
	istanbul Target
	fatih    Target
	kadikoy  Target
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{prov: newSurface(10), dist: newSurface(10), src: &fakeSource{}}
	f.m = New(Config{
		Province:      f.prov,
		District:      f.dist,
		Source:        f.src,
		OnLevelChange: func(l Level) { f.levels = append(f.levels, l) },
	})
	f.ankara = province(t, "06", 1, 2)
	f.izmir = province(t, "35", 3)
	f.istanbul = province(t, "34", 4, 5)
	f.fatih = district("fatih", 1, 2, 3)
	f.kadikoy = district("kadikoy", 4)
	return f
}

func TestHoverAndUnhover(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, TransitionHover, f.m.Hover(f.ankara))
	assert.Equal(t, DefaultColors.Hover, f.prov.fills[1])
	assert.Equal(t, DefaultColors.Hover, f.prov.fills[2])
	assert.Equal(t, TransitionNone, f.m.Hover(f.ankara))

	assert.Equal(t, TransitionUnhover, f.m.Unhover(f.ankara))
	assert.True(t, f.prov.original(1))
	assert.True(t, f.prov.original(2))
	assert.Nil(t, f.m.State().Hovered)

	assert.Equal(t, TransitionNone, f.m.Unhover(f.izmir))
	assert.True(t, f.prov.original(3))
}

func TestHoverMovesBetweenRegions(t *testing.T) {
	f := newFixture(t)
	f.m.Hover(f.ankara)
	f.m.Hover(f.izmir)
	assert.True(t, f.prov.original(1))
	assert.Equal(t, DefaultColors.Hover, f.prov.fills[3])
	require.NotNil(t, f.m.State().Hovered)
	assert.Equal(t, "izmir", f.m.State().Hovered.Key)
}

func TestSelectionWinsOverHover(t *testing.T) {
	f := newFixture(t)
	f.m.Hover(f.ankara)
	assert.Equal(t, TransitionSelect, f.m.SelectProvince(f.ankara))
	assert.Equal(t, DefaultColors.Selected, f.prov.fills[1])

	f.m.Unhover(f.ankara)
	assert.Equal(t, DefaultColors.Selected, f.prov.fills[1])
	assert.Equal(t, TransitionNone, f.m.Hover(f.ankara))
	assert.Equal(t, VisualSelected, f.m.Visual(LevelProvince, 2))
}

func TestSelectReplacesPreviousGroupFirst(t *testing.T) {
	f := newFixture(t)
	f.m.SelectProvince(f.ankara)
	f.m.Drain()
	assert.Equal(t, TransitionSelect, f.m.SelectProvince(f.izmir))

	paints := f.m.Drain()
	require.Len(t, paints, 3)
	assert.Equal(t, svgmap.ElementID(1), paints[0].Element)
	assert.Equal(t, "#d3d3d3", paints[0].Value)
	assert.Equal(t, svgmap.ElementID(2), paints[1].Element)
	assert.Equal(t, svgmap.ElementID(3), paints[2].Element)
	assert.Equal(t, DefaultColors.Selected, paints[2].Value)

	assert.True(t, f.prov.original(1))
	assert.Equal(t, 2, f.src.calls)
	require.Len(t, f.m.Members(), 1)
	assert.Equal(t, "İzmir", f.m.Members()[0].Name)
}

func TestSelectToggles(t *testing.T) {
	f := newFixture(t)
	f.m.SelectProvince(f.ankara)
	assert.Equal(t, TransitionDeselect, f.m.SelectProvince(f.ankara))
	assert.Nil(t, f.m.State().Selected)
	assert.Empty(t, f.m.Members())
	assert.True(t, f.prov.original(1))
	assert.True(t, f.prov.original(2))
}

func TestIstanbulSwitchesLevel(t *testing.T) {
	f := newFixture(t)
	f.m.Hover(f.istanbul)
	f.m.Pointer(f.istanbul, "pointer")
	f.m.SelectProvince(f.ankara)

	assert.Equal(t, TransitionLevel, f.m.SelectProvince(f.istanbul))
	assert.Equal(t, LevelDistrict, f.m.Level())
	assert.Equal(t, []Level{LevelDistrict}, f.levels)
	st := f.m.State()
	assert.Nil(t, st.Hovered)
	assert.Nil(t, st.Selected)
	assert.Empty(t, f.m.Members())
	assert.Equal(t, 1, f.src.calls)
	for i := 1; i <= 5; i++ {
		assert.True(t, f.prov.original(svgmap.ElementID(i)), "element %d", i)
	}
	assert.Equal(t, "", f.prov.cursors[4])

	assert.Equal(t, TransitionNone, f.m.SelectProvince(f.ankara))
}

func TestDistrictGroupToggleResetsEveryMember(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, TransitionNone, f.m.SelectDistrict(f.fatih))
	f.m.SelectProvince(f.istanbul)
	require.Equal(t, LevelDistrict, f.m.Level())

	assert.Equal(t, TransitionSelect, f.m.SelectDistrict(f.fatih))
	for _, e := range f.fatih.Elements {
		assert.Equal(t, DefaultColors.Selected, f.dist.fills[e])
	}
	representative := district("fatih", 3)
	assert.Equal(t, TransitionDeselect, f.m.SelectDistrict(representative))
	for _, e := range f.fatih.Elements {
		assert.True(t, f.dist.original(e))
	}
}

func TestBack(t *testing.T) {
	f := newFixture(t)
	f.m.SelectProvince(f.istanbul)
	f.m.SelectDistrict(f.kadikoy)
	f.m.Hover(f.fatih)

	assert.Equal(t, TransitionBack, f.m.Back())
	assert.Equal(t, LevelProvince, f.m.Level())
	assert.Equal(t, []Level{LevelDistrict, LevelProvince}, f.levels)
	for i := 1; i <= 4; i++ {
		assert.True(t, f.dist.original(svgmap.ElementID(i)))
	}
	assert.Nil(t, f.m.State().Selected)
	assert.Empty(t, f.m.Members())

	f.m.SelectProvince(f.ankara)
	assert.Equal(t, TransitionClear, f.m.Back())
	assert.True(t, f.prov.original(1))
	assert.Equal(t, LevelProvince, f.m.Level())
}

func TestSnapshotCapturedOnFirstTouch(t *testing.T) {
	f := newFixture(t)
	f.prov.fills[3] = "#abcabc"
	_, ok := f.m.Snapshot(LevelProvince, 3)
	assert.False(t, ok)
	f.m.Hover(f.izmir)
	snap, ok := f.m.Snapshot(LevelProvince, 3)
	require.True(t, ok)
	assert.Equal(t, "#abcabc", snap)
	f.m.Unhover(f.izmir)
	assert.Equal(t, "#abcabc", f.prov.fills[3])
}

func TestCustomColors(t *testing.T) {
	s := newSurface(2)
	m := New(Config{Province: s, Colors: Colors{Hover: "red"}})
	r, _ := regionindex.ResolveProvince("01", "")
	m.Hover(Target{Region: r, Elements: []svgmap.ElementID{1}})
	assert.Equal(t, "red", s.fills[1])
	m.SelectProvince(Target{Region: r, Elements: []svgmap.ElementID{1}})
	assert.Equal(t, DefaultColors.Selected, s.fills[1])
	assert.Empty(t, m.Members())
}

func TestMachineLaws(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	run := func(f *fixture, ops []int) {
		provTargets := []Target{f.ankara, f.izmir, f.istanbul}
		distTargets := []Target{f.fatih, f.kadikoy}
		for _, op := range ops {
			targets := provTargets
			if f.m.Level() == LevelDistrict {
				targets = distTargets
			}
			tg := targets[(op/4)%len(targets)]
			switch op % 4 {
			case 0:
				f.m.Hover(tg)
			case 1:
				f.m.Unhover(tg)
			case 2:
				if f.m.Level() == LevelDistrict {
					f.m.SelectDistrict(tg)
				} else {
					f.m.SelectProvince(tg)
				}
			case 3:
				if op%8 == 7 {
					f.m.Back()
				}
			}
		}
	}

	properties.Property("back restores every original fill", prop.ForAll(
		func(ops []int) bool {
			f := newFixture(t)
			run(f, ops)
			f.m.Back()
			st := f.m.State()
			if st.Level != LevelProvince || st.Hovered != nil || st.Selected != nil || len(f.m.Members()) != 0 {
				return false
			}
			for i := 1; i <= 10; i++ {
				if !f.prov.original(svgmap.ElementID(i)) || !f.dist.original(svgmap.ElementID(i)) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 23)),
	))

	properties.Property("selecting the same non-Istanbul region twice leaves it unselected", prop.ForAll(
		func(ops []int, pick int) bool {
			f := newFixture(t)
			run(f, ops)
			var tg Target
			if f.m.Level() == LevelDistrict {
				tg = []Target{f.fatih, f.kadikoy}[pick%2]
				if sel, ok := f.m.Selected(); ok && sel.Region.Same(tg.Region) {
					f.m.SelectDistrict(tg)
				}
				f.m.SelectDistrict(tg)
				f.m.SelectDistrict(tg)
			} else {
				tg = []Target{f.ankara, f.izmir}[pick%2]
				if sel, ok := f.m.Selected(); ok && sel.Region.Same(tg.Region) {
					f.m.SelectProvince(tg)
				}
				f.m.SelectProvince(tg)
				f.m.SelectProvince(tg)
			}
			if f.m.State().Selected != nil || len(f.m.Members()) != 0 {
				return false
			}
			for _, e := range tg.Elements {
				if f.m.Visual(f.m.Level(), e) == VisualSelected {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 23)),
		gen.IntRange(0, 1),
	))

	properties.TestingRun(t)
}

func TestLevelJSONRoundTrip(t *testing.T) {
	kadikoy := regionindex.Region{Kind: regionindex.KindDistrict, Key: "kadikoy", Name: "Kadıköy"}
	in := State{Level: LevelDistrict, Selected: &kadikoy}
	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"level":"district"`)

	var out State
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, LevelDistrict, out.Level)
	require.NotNil(t, out.Selected)
	assert.True(t, out.Selected.Same(kadikoy))

	var p Paint
	require.NoError(t, json.Unmarshal([]byte(`{"level":"province","el":3,"prop":"fill","value":"#fff"}`), &p))
	assert.Equal(t, LevelProvince, p.Level)

	assert.Error(t, json.Unmarshal([]byte(`{"level":"city"}`), &out))
}

func TestRestoreKeepsNonInlineFills(t *testing.T) {
	const src = `<svg><g data-plakakodu="06"><path class="land" fill="#abcdef"/><path style="stroke:#000;fill:#111111"/></g></svg>`
	prov, err := svgmap.Parse("province", strings.NewReader(src))
	require.NoError(t, err)
	dist, err := svgmap.Parse("district", strings.NewReader(`<svg/>`))
	require.NoError(t, err)
	m := New(Config{Province: prov, District: dist, Source: &fakeSource{}})
	ankara := province(t, "06", 2, 3)

	m.Hover(ankara)
	m.SelectProvince(ankara)
	m.Unhover(ankara)
	m.SelectProvince(ankara)

	attrFill, _ := prov.Element(2)
	_, hasStyle := attrFill.Attr("style")
	assert.False(t, hasStyle, "fill from attribute or class must not become inline")
	assert.Equal(t, "#abcdef", prov.Fill(2))

	inline, _ := prov.Element(3)
	style, _ := inline.Attr("style")
	assert.Equal(t, "stroke:#000;fill:#111111", style)
}
