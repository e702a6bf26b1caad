package body

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/echoflaresat/spaceview/colors"
	"github.com/echoflaresat/spaceview/ephemeris"
	"github.com/echoflaresat/spaceview/vectors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider places body id at (id, jd, 0) with radius id*10.
type fakeProvider struct {
	fail map[int]error

	mu    sync.Mutex
	calls []int
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) State(_ context.Context, id int, date ephemeris.Date) (ephemeris.State, error) {
	p.mu.Lock()
	p.calls = append(p.calls, id)
	p.mu.Unlock()
	if err := p.fail[id]; err != nil {
		return ephemeris.State{}, err
	}
	r := float64(id) * 10
	if id < 0 {
		r = 0
	}
	return ephemeris.State{Position: vectors.New(float64(id), date.JD, 0), Radius: r}, nil
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func testCatalog() []Spec {
	return []Spec{
		{Name: "Sun", Index: 10, Color: colors.White(), Radius: 1},
		{Name: "Earth", Index: 399, Color: colors.RGB(0, 0, 1), Radius: 2},
		{Name: "JWST", Index: -170, Color: colors.White(), Radius: 0.02},
	}
}

func TestNewRegistryLoadsBodies(t *testing.T) {
	p := &fakeProvider{}
	r, err := NewRegistry(context.Background(), p, testCatalog(), "2023-03-08")
	require.NoError(t, err)

	assert.Equal(t, []string{"Sun", "Earth", "JWST"}, r.Names())
	assert.Equal(t, "2023-03-08", r.Date())

	earth, err := r.Get("Earth")
	require.NoError(t, err)
	assert.Equal(t, 399, earth.Index)
	assert.InDelta(t, 2460011.5, earth.Position.Y, 1e-9)
	assert.Equal(t, 3990.0, earth.Radius)
	assert.Equal(t, "2023-03-08", earth.DataDate)

	// The provider knows no radius for JWST, so the catalog one stays.
	jwst, err := r.Get("JWST")
	require.NoError(t, err)
	assert.Equal(t, 0.02, jwst.Radius)

	bodies := r.Bodies()
	require.Len(t, bodies, 3)
	assert.Equal(t, "Sun", bodies[0].Name)
}

func TestRegistryGetReturnsCopy(t *testing.T) {
	r, err := NewRegistry(context.Background(), &fakeProvider{}, testCatalog(), "2023-03-08")
	require.NoError(t, err)

	b, err := r.Get("Sun")
	require.NoError(t, err)
	b.Position = vectors.New(1e9, 0, 0)

	again, err := r.Get("Sun")
	require.NoError(t, err)
	assert.NotEqual(t, b.Position, again.Position)
}

func TestRegistryGetUnknown(t *testing.T) {
	r, err := NewRegistry(context.Background(), &fakeProvider{}, testCatalog(), "2023-03-08")
	require.NoError(t, err)

	_, err = r.Get("Pluto")
	assert.ErrorIs(t, err, ErrBodyNotFound)
	assert.Contains(t, err.Error(), "Pluto")
}

func TestRegistrySetDate(t *testing.T) {
	p := &fakeProvider{}
	r, err := NewRegistry(context.Background(), p, testCatalog(), "2023-03-08")
	require.NoError(t, err)
	assert.Equal(t, 3, p.callCount())

	require.NoError(t, r.SetDate(context.Background(), "2023-03-08"))
	assert.Equal(t, 3, p.callCount(), "same date needs no fetch")

	require.NoError(t, r.SetDate(context.Background(), "2023-03-09"))
	assert.Equal(t, 6, p.callCount())
	earth, err := r.Get("Earth")
	require.NoError(t, err)
	assert.InDelta(t, 2460012.5, earth.Position.Y, 1e-9)
	assert.Equal(t, "2023-03-09", r.Date())
}

func TestRegistrySetDateAllOrNothing(t *testing.T) {
	p := &fakeProvider{}
	r, err := NewRegistry(context.Background(), p, testCatalog(), "2023-03-08", WithConcurrency(1))
	require.NoError(t, err)

	boom := errors.New("boom")
	p.fail = map[int]error{-170: boom}
	err = r.SetDate(context.Background(), "2023-03-09")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "JWST")

	assert.Equal(t, "2023-03-08", r.Date())
	for _, b := range r.Bodies() {
		assert.Equal(t, "2023-03-08", b.DataDate, b.Name)
		assert.InDelta(t, 2460011.5, b.Position.Y, 1e-9, b.Name)
	}
}

func TestRegistryRejectsBadInput(t *testing.T) {
	_, err := NewRegistry(context.Background(), &fakeProvider{}, testCatalog(), "someday")
	assert.Error(t, err)

	dup := append(testCatalog(), Spec{Name: "Sun", Index: 10})
	_, err = NewRegistry(context.Background(), &fakeProvider{}, dup, "2023-03-08")
	assert.Error(t, err)
}

func TestWithColors(t *testing.T) {
	out, err := WithColors(DefaultCatalog(), map[string]string{"mars": "#ff0000", "JWST": "00ff00"})
	require.NoError(t, err)

	byName := map[string]Spec{}
	for _, s := range out {
		byName[s.Name] = s
	}
	assert.Equal(t, "#ff0000", byName["Mars"].Color.Hex())
	assert.Equal(t, "#00ff00", byName["JWST"].Color.Hex())
	assert.Equal(t, DefaultCatalog()[0].Color, byName["Sun"].Color)

	_, err = WithColors(DefaultCatalog(), map[string]string{"Vulcan": "#ffffff"})
	assert.ErrorIs(t, err, ErrBodyNotFound)

	_, err = WithColors(DefaultCatalog(), map[string]string{"Mars": "red"})
	assert.Error(t, err)
}

func TestDefaultCatalogIsUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range DefaultCatalog() {
		assert.False(t, seen[s.Name], s.Name)
		seen[s.Name] = true
		assert.Positive(t, s.Radius, s.Name)
	}
	assert.True(t, seen["JWST"])
}
