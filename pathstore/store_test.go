package pathstore

import (
	"bytes"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.viam.com/test"

	"github.com/treadline/pathfollow/kinematics"
	"github.com/treadline/pathfollow/trajectory"
	"github.com/treadline/pathfollow/utils"
)

var testConstraints = trajectory.Constraints{
	MaxVelocity:     1,
	MaxAcceleration: 2,
	MaxJerk:         10,
	TrackWidth:      utils.InchesToMeters(10.5),
}

func makePair(t *testing.T, x, y, headingDeg float64) trajectory.Pair {
	t.Helper()
	pair, err := kinematics.GeneratePair([]trajectory.Waypoint{
		trajectory.NewWaypoint(0, 0, 0),
		trajectory.NewWaypoint(x, y, headingDeg),
	}, testConstraints)
	test.That(t, err, test.ShouldBeNil)
	return pair
}

func TestStorePutGetRemove(t *testing.T) {
	store := NewStore("")
	test.That(t, store.Root(), test.ShouldEqual, DefaultRoot)
	test.That(t, store.Len(), test.ShouldEqual, 0)
	test.That(t, store.Keys(), test.ShouldBeEmpty)

	_, err := store.Get("A")
	test.That(t, IsNotFoundError(err), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"A"`)

	pair := makePair(t, 1, 0, 0)
	test.That(t, store.Put("A", pair), test.ShouldBeNil)
	got, err := store.Get("A")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got, test.ShouldResemble, pair)
	test.That(t, store.Has("A"), test.ShouldBeTrue)

	store.Remove("missing")
	test.That(t, store.Len(), test.ShouldEqual, 1)

	store.Remove("A")
	test.That(t, store.Len(), test.ShouldEqual, 0)
	test.That(t, store.Has("A"), test.ShouldBeFalse)
	_, err = store.Get("A")
	test.That(t, IsNotFoundError(err), test.ShouldBeTrue)
}

func TestStorePutRejectsMalformedPair(t *testing.T) {
	store := NewStore("")
	pair := makePair(t, 1, 0, 0)
	test.That(t, store.Put("A", pair), test.ShouldBeNil)

	for _, bad := range []trajectory.Pair{
		{},
		{Left: pair.Left, Right: pair.Right[:pair.Len()/2]},
		{Left: pair.Left, Right: nil},
	} {
		err := store.Put("A", bad)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, `cannot store path "A"`)
		err = store.Put("B", bad)
		test.That(t, err, test.ShouldNotBeNil)
	}
	test.That(t, store.Keys(), test.ShouldResemble, []string{"A"})
	got, err := store.Get("A")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got, test.ShouldResemble, pair)
}

func TestStoreTwoPathsOverwriteEachOther(t *testing.T) {
	store := NewStore("")
	first := makePair(t, 1, 0, 0)
	second := makePair(t, 1, 0.5, 45)

	test.That(t, store.Put("A", first), test.ShouldBeNil)
	test.That(t, store.Put("A", second), test.ShouldBeNil)
	test.That(t, store.Keys(), test.ShouldResemble, []string{"A"})
	got, err := store.Get("A")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got, test.ShouldResemble, second)
}

func TestStoreKeysOrder(t *testing.T) {
	store := NewStore("")
	pair := makePair(t, 1, 0, 0)
	for _, id := range []string{"c", "a", "b"} {
		test.That(t, store.Put(id, pair), test.ShouldBeNil)
	}
	test.That(t, store.Put("a", makePair(t, 0.5, 0, 0)), test.ShouldBeNil)
	test.That(t, store.Keys(), test.ShouldResemble, []string{"c", "a", "b"})

	store.Remove("a")
	test.That(t, store.Put("a", pair), test.ShouldBeNil)
	test.That(t, store.Keys(), test.ShouldResemble, []string{"c", "b", "a"})

	// Callers cannot mutate the store through the returned slice.
	keys := store.Keys()
	keys[0] = "z"
	test.That(t, store.Keys()[0], test.ShouldEqual, "c")
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore("")
	pair := makePair(t, 1, 0, 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i))
			for j := 0; j < 100; j++ {
				test.That(t, store.Put(id, pair), test.ShouldBeNil)
				_, err := store.Get(id)
				test.That(t, err, test.ShouldBeNil)
				store.Keys()
				if j%2 == 0 {
					store.Remove(id)
				}
			}
		}(i)
	}
	wg.Wait()
	test.That(t, store.Len(), test.ShouldEqual, 8)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := NewStore("")
	pair := makePair(t, utils.FeetToMeters(3), 0, 45)
	test.That(t, store.Put("A", pair), test.ShouldBeNil)

	var left, right bytes.Buffer
	test.That(t, store.Save("A", &left, &right), test.ShouldBeNil)
	test.That(t, left.Len(), test.ShouldEqual, pair.Len()*RecordSize)
	test.That(t, right.Len(), test.ShouldEqual, left.Len())

	loaded := NewStore("")
	test.That(t, loaded.Load("A", &left, &right), test.ShouldBeNil)
	got, err := loaded.Get("A")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got.Len(), test.ShouldEqual, pair.Len())
	float32Precision := cmpopts.EquateApprox(1e-6, 1e-6)
	test.That(t, cmp.Diff(pair.Left.Velocities(), got.Left.Velocities(), float32Precision), test.ShouldBeEmpty)
	test.That(t, cmp.Diff(pair.Right.Velocities(), got.Right.Velocities(), float32Precision), test.ShouldBeEmpty)
	for i := range pair.Left {
		test.That(t, got.Left[i].Position, test.ShouldAlmostEqual, pair.Left[i].Position, 1e-6)
		test.That(t, got.Left[i].Dt, test.ShouldEqual, pair.Left[i].Dt)
		test.That(t, got.Left[i].Time, test.ShouldEqual, pair.Left[i].Time)
		test.That(t, got.Right[i].Acceleration, test.ShouldAlmostEqual, pair.Right[i].Acceleration, 1e-3)
	}
}

func TestSaveMissing(t *testing.T) {
	store := NewStore("")
	var left, right bytes.Buffer
	err := store.Save("nope", &left, &right)
	test.That(t, IsNotFoundError(err), test.ShouldBeTrue)
	test.That(t, left.Len(), test.ShouldEqual, 0)
}
