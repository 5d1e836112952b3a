package interaction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saha-map/internal/mapview"
	"saha-map/internal/regionindex"
	"saha-map/internal/svgmap"
)

const provinceSVG = `<svg>
 <g data-plakakodu="06" data-iladi="Ankara"><path d="M0 0"/></g>
 <path d="M1 1" data-plate="35" data-name="İzmir"/>
 <g data-plakakodu="34" data-iladi="İstanbul"><path d="M2 2"/><path d="M3 3"/></g>
 <path d="M4 4"/>
 <g><path d="M5 5"/></g>
 <g data-plakakodu="10"><g><path d="M6 6"/></g></g>
</svg>`

const districtSVG = `<svg>
 <g id="kadikoy" data-district="Kadıköy"><path d="M0 0"/></g>
 <g id="fatih" data-district="Fatih"><path d="M1 1"/></g>
 <g id="eminonu" data-district="Eminönü"><g><path d="M2 2"/></g></g>
 <g id="adalar_1"><path d="M3 3"/></g>
 <g id="adalar_2"><path d="M4 4"/></g>
 <path d="M5 5"/>
</svg>`

type harness struct {
	stage   *svgmap.Stage
	prov    *svgmap.Document
	dist    *svgmap.Document
	machine *mapview.Machine
	ctrl    *Controller
	release func()
}

func parse(t *testing.T, name, src string) *svgmap.Document {
	t.Helper()
	d, err := svgmap.Parse(name, strings.NewReader(src))
	require.NoError(t, err)
	return d
}

func newHarness(t *testing.T) *harness {
	h := &harness{
		stage: svgmap.NewStage(),
		prov:  parse(t, "province", provinceSVG),
		dist:  parse(t, "district", districtSVG),
	}
	holder := regionindex.NewHolder(regionindex.New(regionindex.NewCityMemberIndex([]regionindex.Entry{
		{Key: "Ankara", Members: []regionindex.MemberRecord{{Name: "Ali", Role: regionindex.RoleAdmin}}},
		{Key: "Fatih", Members: []regionindex.MemberRecord{{Name: "Ayşe"}}},
		{Key: "Eminönü", Members: []regionindex.MemberRecord{{Name: "Can"}}},
	}), nil))
	h.machine = mapview.New(mapview.Config{
		Province: h.prov,
		District: h.dist,
		Source:   holder,
		OnLevelChange: func(l mapview.Level) {
			if l == mapview.LevelDistrict {
				h.stage.Mount(h.dist)
			} else {
				h.stage.Mount(h.prov)
			}
		},
	})
	h.ctrl = New(h.machine, holder.Load)
	h.release = h.ctrl.Attach(h.stage)
	h.stage.Mount(h.prov)
	return h
}

func (h *harness) send(t *testing.T, typ EventType, id int) (mapview.Transition, error) {
	t.Helper()
	return h.ctrl.Handle(Event{Type: typ, Target: svgmap.ElementID(id)})
}

func style(d *svgmap.Document, id int) (string, bool) {
	n, _ := d.Element(svgmap.ElementID(id))
	return n.Attr("style")
}

func TestEventsBeforeMountAreDropped(t *testing.T) {
	m := mapview.New(mapview.Config{})
	c := New(m, nil)
	c.Attach(svgmap.NewStage())
	tr, err := c.Handle(Event{Type: Click, Target: 1})
	assert.ErrorIs(t, err, ErrNotMounted)
	assert.Equal(t, mapview.TransitionNone, tr)
}

func TestHoverSetsFillAndCursor(t *testing.T) {
	h := newHarness(t)
	tr, err := h.send(t, PointerEnter, 2)
	require.NoError(t, err)
	assert.Equal(t, mapview.TransitionHover, tr)
	s, _ := style(h.prov, 2)
	assert.Equal(t, "fill:"+mapview.DefaultColors.Hover+";cursor:pointer", s)

	tr, err = h.send(t, PointerLeave, 2)
	require.NoError(t, err)
	assert.Equal(t, mapview.TransitionUnhover, tr)
	_, ok := style(h.prov, 2)
	assert.False(t, ok)
}

func TestPointerMoveIsNoop(t *testing.T) {
	h := newHarness(t)
	tr, err := h.send(t, PointerMove, 2)
	assert.NoError(t, err)
	assert.Equal(t, mapview.TransitionNone, tr)
	assert.Empty(t, h.machine.Drain())
}

func TestUnknownEvent(t *testing.T) {
	h := newHarness(t)
	_, err := h.send(t, EventType("dblclick"), 2)
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestUnresolvableTargets(t *testing.T) {
	h := newHarness(t)
	for _, id := range []int{0, 1, 7, 9, 12, 99} {
		tr, err := h.send(t, Click, id)
		assert.ErrorIs(t, err, ErrUnresolvable, "element %d", id)
		assert.Equal(t, mapview.TransitionNone, tr)
	}
	assert.Nil(t, h.machine.State().Selected)
	assert.Empty(t, h.machine.Drain())
}

func TestProvinceAttributesOnTarget(t *testing.T) {
	h := newHarness(t)
	tr, err := h.send(t, Click, 3)
	require.NoError(t, err)
	assert.Equal(t, mapview.TransitionSelect, tr)
	sel := h.machine.State().Selected
	require.NotNil(t, sel)
	assert.Equal(t, "35", sel.Code)
	assert.Empty(t, h.machine.Members())
}

func TestProvinceSelectFetchesMembers(t *testing.T) {
	h := newHarness(t)
	_, err := h.send(t, Click, 2)
	require.NoError(t, err)
	require.Len(t, h.machine.Members(), 1)
	assert.Equal(t, "Ali", h.machine.Members()[0].Name)
	assert.Equal(t, mapview.DefaultColors.Selected, h.prov.Fill(2))
}

func TestIstanbulClickSwitchesMap(t *testing.T) {
	h := newHarness(t)
	h.send(t, PointerEnter, 5)
	assert.Equal(t, mapview.DefaultColors.Hover, h.prov.Fill(6))

	tr, err := h.send(t, Click, 5)
	require.NoError(t, err)
	assert.Equal(t, mapview.TransitionLevel, tr)
	assert.Same(t, h.dist, h.stage.Current())
	assert.Same(t, h.dist, h.ctrl.Mounted())
	assert.Nil(t, h.machine.State().Selected)
	_, ok := style(h.prov, 5)
	assert.False(t, ok)
	_, ok = style(h.prov, 6)
	assert.False(t, ok)

	_, err = h.ctrl.Handle(Event{Type: PointerLeave, Target: 5, Map: "province"})
	assert.ErrorIs(t, err, ErrNotMounted)
}

func TestDistrictGroupsExpand(t *testing.T) {
	h := newHarness(t)
	_, err := h.send(t, Click, 5)
	require.NoError(t, err)

	tr, err := h.send(t, Click, 7)
	require.NoError(t, err)
	assert.Equal(t, mapview.TransitionSelect, tr)
	sel, ok := h.machine.Selected()
	require.True(t, ok)
	assert.Equal(t, "fatih", sel.Region.Key)
	assert.Equal(t, []svgmap.ElementID{4, 7}, sel.Elements)
	assert.Equal(t, mapview.DefaultColors.Selected, h.dist.Fill(4))
	assert.Equal(t, mapview.DefaultColors.Selected, h.dist.Fill(7))
	assert.Len(t, h.machine.Members(), 2)

	tr, err = h.send(t, Click, 4)
	require.NoError(t, err)
	assert.Equal(t, mapview.TransitionDeselect, tr)
	assert.Equal(t, "", h.dist.Fill(4))
	assert.Equal(t, "", h.dist.Fill(7))
}

func TestIslandClusterByID(t *testing.T) {
	h := newHarness(t)
	h.send(t, Click, 5)
	target, err := h.ctrl.Resolve(h.dist, mapview.LevelDistrict, 11)
	require.NoError(t, err)
	assert.Equal(t, "adalar", target.Region.Key)
	assert.Equal(t, []svgmap.ElementID{9, 11}, target.Elements)

	_, err = h.send(t, PointerEnter, 12)
	assert.ErrorIs(t, err, ErrUnresolvable)
}

func TestReleaseDetaches(t *testing.T) {
	h := newHarness(t)
	h.release()
	_, err := h.send(t, Click, 2)
	assert.ErrorIs(t, err, ErrNotMounted)
	h.stage.Mount(h.dist)
	assert.Nil(t, h.ctrl.Mounted())
}
