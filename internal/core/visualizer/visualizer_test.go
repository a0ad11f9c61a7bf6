package visualizer

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/particleviz/internal/core/events/bus"
	"github.com/zeusync/particleviz/internal/core/geom"
	"github.com/zeusync/particleviz/internal/core/models"
	"github.com/zeusync/particleviz/internal/core/property"
	"github.com/zeusync/particleviz/internal/core/scene"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	epoch   = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	equator = r3.Vec{X: 6378137}
	raised  = r3.Vec{X: 6378137, Z: 10}
)

type fixture struct {
	collection *models.Collection
	primitives *scene.Primitives
	visualizer *Visualizer
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		collection: models.NewCollection("test", nil),
		primitives: scene.NewPrimitives(nil),
	}
	v, err := New(f.primitives, f.collection, opts...)
	require.NoError(t, err)
	f.visualizer = v
	return f
}

func (f *fixture) update(t *testing.T, at time.Time) {
	t.Helper()
	ok, err := f.visualizer.Update(at)
	require.NoError(t, err)
	require.True(t, ok)
}

func emitting(id models.EntityID, position r3.Vec) *models.Entity {
	e := models.NewEntity(id)
	e.SetPosition(property.NewConstant(position))
	e.SetParticleSystem(&models.ParticleSystemGraphics{})
	return e
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(nil, models.NewCollection("", nil))
	require.ErrorIs(t, err, ErrPrimitivesRequired)

	_, err = New(scene.NewPrimitives(nil), nil)
	require.ErrorIs(t, err, ErrCollectionRequired)
}

func TestNewPicksUpExistingEntities(t *testing.T) {
	c := models.NewCollection("existing", nil)
	require.NoError(t, c.Add(emitting("a", equator)))
	require.NoError(t, c.Add(models.NewEntity("plain")))

	v, err := New(scene.NewPrimitives(nil), c)
	require.NoError(t, err)
	assert.Equal(t, []models.EntityID{"a"}, v.Tracked())
}

func TestEntityNeverAddedHasNoResource(t *testing.T) {
	f := newFixture(t)
	stray := emitting("stray", equator)

	f.update(t, epoch)

	_, ok := f.visualizer.Resource(stray.ID())
	assert.False(t, ok)
	assert.Zero(t, f.primitives.Len())

	var bs geom.BoundingSphere
	state, err := f.visualizer.BoundingSphere(stray, &bs)
	require.NoError(t, err)
	assert.Equal(t, BoundingSphereFailed, state)
}

func TestAddedEntityGetsResourceOnUpdate(t *testing.T) {
	f := newFixture(t)
	e := emitting("a", equator)
	require.NoError(t, f.collection.Add(e))

	_, ok := f.visualizer.Resource("a")
	require.False(t, ok, "resources are created lazily by Update")

	f.update(t, epoch)

	p, ok := f.visualizer.Resource("a")
	require.True(t, ok)
	assert.True(t, f.primitives.Contains(p))
	assert.Equal(t, "a", p.ID)
	assert.Same(t, e, p.Owner)
	assert.True(t, p.Show)
	require.NotNil(t, p.ModelMatrix)
	assert.Equal(t, equator, p.ModelMatrix.Translation())
}

func TestEntitiesWithoutDescriptionOrPositionAreIgnored(t *testing.T) {
	f := newFixture(t)

	noPosition := models.NewEntity("no-position")
	noPosition.SetParticleSystem(&models.ParticleSystemGraphics{})
	noGraphics := models.NewEntity("no-graphics")
	noGraphics.SetPosition(property.NewConstant(equator))

	require.NoError(t, f.collection.Add(noPosition))
	require.NoError(t, f.collection.Add(noGraphics))
	f.update(t, epoch)

	assert.Empty(t, f.visualizer.Tracked())
	assert.Zero(t, f.primitives.Len())
}

func TestRemovedEntityIsReleasedImmediately(t *testing.T) {
	f := newFixture(t)
	e := emitting("a", equator)
	require.NoError(t, f.collection.Add(e))
	f.update(t, epoch)

	p, ok := f.visualizer.Resource("a")
	require.True(t, ok)

	removed, err := f.collection.Remove(e)
	require.NoError(t, err)
	require.True(t, removed)

	_, ok = f.visualizer.Resource("a")
	assert.False(t, ok)
	assert.True(t, p.IsDestroyed())
	assert.Zero(t, f.primitives.Len())
	assert.Empty(t, f.visualizer.Tracked())
}

func TestChangeThatLosesPositionActsAsRemoval(t *testing.T) {
	f := newFixture(t)
	e := emitting("a", equator)
	require.NoError(t, f.collection.Add(e))
	f.update(t, epoch)

	p, _ := f.visualizer.Resource("a")
	e.SetPosition(nil)

	_, ok := f.visualizer.Resource("a")
	assert.False(t, ok)
	assert.True(t, p.IsDestroyed())
	assert.Empty(t, f.visualizer.Tracked())

	e.SetPosition(property.NewConstant(equator))
	assert.Equal(t, []models.EntityID{"a"}, f.visualizer.Tracked())
	f.update(t, epoch)
	_, ok = f.visualizer.Resource("a")
	assert.True(t, ok)
}

func TestChangeThatDropsDescriptionActsAsRemoval(t *testing.T) {
	f := newFixture(t)
	e := emitting("a", equator)
	require.NoError(t, f.collection.Add(e))
	f.update(t, epoch)

	e.SetParticleSystem(nil)

	_, ok := f.visualizer.Resource("a")
	assert.False(t, ok)
	assert.Zero(t, f.primitives.Len())
}

func TestBatchAppliesRemovalsBeforeAdditions(t *testing.T) {
	f := newFixture(t)
	e := emitting("a", equator)
	require.NoError(t, f.collection.Add(e))
	f.update(t, epoch)
	old, _ := f.visualizer.Resource("a")

	replacement := emitting("a", raised)
	f.visualizer.OnCollectionChanged([]*models.Entity{replacement}, []*models.Entity{e}, nil)

	assert.True(t, old.IsDestroyed())
	assert.Equal(t, []models.EntityID{"a"}, f.visualizer.Tracked())

	f.update(t, epoch)
	p, ok := f.visualizer.Resource("a")
	require.True(t, ok)
	assert.NotSame(t, old, p)
	assert.Same(t, replacement, p.Owner)
	assert.Equal(t, raised, p.ModelMatrix.Translation())
}

func TestOnCollectionChangedSkipsNilEntities(t *testing.T) {
	f := newFixture(t)
	require.NotPanics(t, func() {
		f.visualizer.OnCollectionChanged([]*models.Entity{nil}, []*models.Entity{nil}, []*models.Entity{nil})
	})
	assert.Empty(t, f.visualizer.Tracked())
}

func TestRepeatedUpdatesAreIdempotent(t *testing.T) {
	f := newFixture(t)
	e := emitting("a", equator)
	e.ParticleSystem().Rate = property.NewConstant(12.0)
	e.ParticleSystem().Bursts = property.NewConstant([]scene.Burst{{Time: 1, Minimum: 2, Maximum: 3}})
	require.NoError(t, f.collection.Add(e))

	f.update(t, epoch)
	p, _ := f.visualizer.Resource("a")
	first := *p
	firstMatrix := *p.ModelMatrix
	fingerprint := p.Fingerprint()

	f.update(t, epoch)
	again, _ := f.visualizer.Resource("a")
	require.Same(t, p, again)

	assert.Equal(t, fingerprint, p.Fingerprint())
	assert.Equal(t, firstMatrix, *p.ModelMatrix)
	first.ModelMatrix = p.ModelMatrix
	assert.Equal(t, first, *p)
	assert.Equal(t, 1, f.primitives.Len())
}

func TestAbsentFieldsResolveToDefaults(t *testing.T) {
	f := newFixture(t)
	e := emitting("a", equator)
	e.ParticleSystem().Rate = property.NewConstant(42.0)
	require.NoError(t, f.collection.Add(e))

	f.update(t, epoch)
	p, _ := f.visualizer.Resource("a")

	assert.Equal(t, 42.0, p.Rate)
	assert.Equal(t, scene.CircleEmitter{Radius: 0.5}, p.Emitter)
	assert.Equal(t, 1.0, p.StartScale)
	assert.Equal(t, 1.0, p.EndScale)
	assert.Equal(t, geom.White, p.StartColor)
	assert.Equal(t, geom.White, p.EndColor)
	assert.Equal(t, 16.0, p.MinWidth)
	assert.Equal(t, 16.0, p.MaxWidth)
	assert.Equal(t, 16.0, p.MinHeight)
	assert.Equal(t, 16.0, p.MaxHeight)
	assert.Equal(t, 5.0, p.MinSpeed)
	assert.Equal(t, 5.0, p.MaxSpeed)
	assert.Equal(t, 5.0, p.MinLife)
	assert.Equal(t, 5.0, p.MaxLife)
	assert.Equal(t, math.MaxFloat64, p.LifeTime)
	assert.True(t, p.Loop)
	assert.Equal(t, geom.Identity, p.EmitterModelMatrix)
	assert.Empty(t, p.Image)
	assert.Nil(t, p.Bursts)
}

func TestCustomDefaults(t *testing.T) {
	d := DefaultTable()
	d.Rate = 1
	d.Emitter = scene.SphereEmitter{Radius: 2}

	f := newFixture(t, WithDefaults(d))
	require.NoError(t, f.collection.Add(emitting("a", equator)))
	f.update(t, epoch)

	p, _ := f.visualizer.Resource("a")
	assert.Equal(t, 1.0, p.Rate)
	assert.Equal(t, scene.SphereEmitter{Radius: 2}, p.Emitter)
	assert.Equal(t, 5.0, DefaultTable().Rate)
}

func TestTimeVaryingParametersAreResampled(t *testing.T) {
	f := newFixture(t)
	e := emitting("a", equator)
	e.ParticleSystem().Rate = property.NewSampled(
		property.Sample[float64]{Time: epoch, Value: 10},
		property.Sample[float64]{Time: epoch.Add(time.Second), Value: 20},
	)
	e.ParticleSystem().Image = property.NewConstant("smoke.png")
	require.NoError(t, f.collection.Add(e))

	f.update(t, epoch)
	p, _ := f.visualizer.Resource("a")
	assert.Equal(t, 10.0, p.Rate)
	assert.Equal(t, "smoke.png", p.Image)

	f.update(t, epoch.Add(2*time.Second))
	assert.Equal(t, 20.0, p.Rate)

	f.update(t, epoch.Add(-time.Second))
	assert.Equal(t, 5.0, p.Rate, "before the first sample the default applies")
}

func TestBurstScheduleIsCopied(t *testing.T) {
	f := newFixture(t)
	bursts := []scene.Burst{{Time: 1, Minimum: 5, Maximum: 10}}
	e := emitting("a", equator)
	e.ParticleSystem().Bursts = property.NewConstant(bursts)
	require.NoError(t, f.collection.Add(e))

	f.update(t, epoch)
	bursts[0].Maximum = 99

	p, _ := f.visualizer.Resource("a")
	assert.Equal(t, 10.0, p.Bursts[0].Maximum)
}

func TestHiddenEntityStaysVisibleWithoutPose(t *testing.T) {
	f := newFixture(t)
	e := emitting("a", equator)
	e.SetShow(false)
	require.NoError(t, f.collection.Add(e))

	f.update(t, epoch)

	p, ok := f.visualizer.Resource("a")
	require.True(t, ok, "resources are created regardless of visibility")
	assert.True(t, p.Show)
	assert.Nil(t, p.ModelMatrix)
	assert.Equal(t, 5.0, p.Rate)

	var bs geom.BoundingSphere
	state, err := f.visualizer.BoundingSphere(e, &bs)
	require.NoError(t, err)
	assert.Equal(t, BoundingSphereFailed, state)
	assert.Zero(t, f.visualizer.Stats().Visible)
}

func TestHideWhenNotShown(t *testing.T) {
	f := newFixture(t, WithHideWhenNotShown(true))
	e := emitting("a", equator)
	e.SetShow(false)
	require.NoError(t, f.collection.Add(e))

	f.update(t, epoch)
	_, ok := f.visualizer.Resource("a")
	require.False(t, ok)

	e.SetShow(true)
	f.update(t, epoch)
	p, ok := f.visualizer.Resource("a")
	require.True(t, ok)
	assert.True(t, p.Show)

	e.ParticleSystem().Rate = property.NewConstant(9.0)
	e.ParticleSystem().Show = property.NewConstant(false)
	f.update(t, epoch)
	assert.False(t, p.Show)
	assert.Nil(t, p.ModelMatrix)
	assert.Equal(t, 5.0, p.Rate, "hidden systems are not resampled")
}

func TestNotShownConditions(t *testing.T) {
	cases := []struct {
		name  string
		setup func(e *models.Entity)
	}{
		{"graphics hidden", func(e *models.Entity) {
			e.ParticleSystem().Show = property.NewConstant(false)
		}},
		{"parent hidden", func(e *models.Entity) {
			parent := models.NewEntity("parent")
			parent.SetShow(false)
			require.NoError(t, e.SetParent(parent))
		}},
		{"not available", func(e *models.Entity) {
			e.SetAvailability(models.Availability{{Start: epoch.Add(time.Hour), Stop: epoch.Add(2 * time.Hour)}})
		}},
		{"no position yet", func(e *models.Entity) {
			e.SetPosition(property.NewSampled(property.Sample[r3.Vec]{Time: epoch.Add(time.Minute), Value: equator}))
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			e := emitting("a", equator)
			tc.setup(e)
			require.NoError(t, f.collection.Add(e))

			f.update(t, epoch)

			p, ok := f.visualizer.Resource("a")
			require.True(t, ok)
			assert.Nil(t, p.ModelMatrix)
		})
	}
}

func TestBoundingSphere(t *testing.T) {
	f := newFixture(t)
	e := emitting("a", equator)
	require.NoError(t, f.collection.Add(e))

	var bs geom.BoundingSphere
	state, err := f.visualizer.BoundingSphere(e, &bs)
	require.NoError(t, err)
	assert.Equal(t, BoundingSphereFailed, state)

	f.update(t, epoch)

	bs.Radius = 7
	state, err = f.visualizer.BoundingSphere(e, &bs)
	require.NoError(t, err)
	assert.Equal(t, BoundingSphereDone, state)
	assert.Equal(t, equator, bs.Center)
	assert.Zero(t, bs.Radius)

	_, err = f.visualizer.BoundingSphere(nil, &bs)
	require.ErrorIs(t, err, ErrEntityRequired)
	_, err = f.visualizer.BoundingSphere(e, nil)
	require.ErrorIs(t, err, ErrResultRequired)

	assert.Equal(t, "done", BoundingSphereDone.String())
	assert.Equal(t, "pending", BoundingSpherePending.String())
	assert.Equal(t, "failed", BoundingSphereFailed.String())
}

func TestUpdateRequiresTime(t *testing.T) {
	f := newFixture(t)
	ok, err := f.visualizer.Update(time.Time{})
	require.ErrorIs(t, err, ErrTimeRequired)
	assert.False(t, ok)
}

func TestChurnDoesNotLeak(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 100; i++ {
		e := emitting("churn", equator)
		require.NoError(t, f.collection.Add(e))
		f.update(t, epoch.Add(time.Duration(i)*time.Second))
		_, err := f.collection.Remove(e)
		require.NoError(t, err)
	}

	stats := f.visualizer.Stats()
	assert.Equal(t, uint64(100), stats.Created)
	assert.Equal(t, uint64(100), stats.Destroyed)
	assert.Equal(t, uint64(100), stats.Frames)
	assert.Zero(t, stats.Resources)
	assert.Zero(t, f.primitives.Len())
}

type fakeSubscription struct {
	cancels int
}

func (s *fakeSubscription) ID() string        { return "fake" }
func (s *fakeSubscription) Topic() string     { return "" }
func (s *fakeSubscription) EventType() string { return models.ChangedEventType }
func (s *fakeSubscription) IsActive() bool    { return s.cancels == 0 }
func (s *fakeSubscription) Cancel() error {
	s.cancels++
	return nil
}

type fakeCollection struct {
	entities []*models.Entity
	handler  func(models.ChangeSet) error
	sub      *fakeSubscription
}

func (c *fakeCollection) Values() []*models.Entity { return c.entities }

func (c *fakeCollection) Subscribe(handler func(models.ChangeSet) error) (bus.Subscription, error) {
	c.handler = handler
	c.sub = &fakeSubscription{}
	return c.sub, nil
}

func TestDestroyReleasesEverything(t *testing.T) {
	a, b := emitting("a", equator), emitting("b", raised)
	source := &fakeCollection{entities: []*models.Entity{a, b}}
	primitives := scene.NewPrimitives(nil)

	v, err := New(primitives, source)
	require.NoError(t, err)
	_, err = v.Update(epoch)
	require.NoError(t, err)
	require.Equal(t, 2, primitives.Len())

	v.Destroy()

	assert.True(t, v.IsDestroyed())
	assert.Equal(t, 1, source.sub.cancels)
	assert.Zero(t, primitives.Len())
	assert.Empty(t, v.Tracked())
	assert.Zero(t, v.Stats().Resources)

	require.NoError(t, source.handler(models.ChangeSet{Added: []*models.Entity{emitting("c", equator)}}))
	assert.Empty(t, v.Tracked())

	_, err = v.Update(epoch)
	require.ErrorIs(t, err, ErrDestroyed)

	v.Destroy()
	assert.Equal(t, 1, source.sub.cancels)
}

func TestDestroyCancelsBusSubscription(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.collection.Add(emitting("a", equator)))
	f.update(t, epoch)

	f.visualizer.Destroy()
	require.NoError(t, f.collection.Add(emitting("b", equator)))

	assert.Empty(t, f.visualizer.Tracked())
	assert.Zero(t, f.primitives.Len())
}

func TestTypedNilPositionIsNotEligible(t *testing.T) {
	f := newFixture(t)
	e := models.NewEntity("a")
	e.SetParticleSystem(&models.ParticleSystemGraphics{})
	e.SetPosition((*property.Constant[r3.Vec])(nil))
	require.NoError(t, f.collection.Add(e))

	f.update(t, epoch)

	assert.Empty(t, f.visualizer.Tracked())
	_, ok := f.visualizer.Resource("a")
	assert.False(t, ok)
	assert.Zero(t, f.primitives.Len())
}
