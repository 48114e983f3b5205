package gics

import (
	"math"
	"testing"

	"github.com/gicsdb/gics/engine"
	"github.com/gicsdb/gics/errs"
	"github.com/gicsdb/gics/schema"
	"github.com/gicsdb/gics/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stableTrendSnapshots(n int) []snapshot.Snapshot {
	out := make([]snapshot.Snapshot, n)
	for i := range n {
		out[i] = snapshot.Snapshot{
			Timestamp: int64(1_700_000_000 + i),
			Items: map[snapshot.ItemID]snapshot.Fields{
				snapshot.NumericID(1): {"price": 100 + float64(i), "quantity": 10},
				snapshot.NumericID(2): {"price": 200 - float64(i), "quantity": 20},
			},
		}
	}
	return out
}

func TestPackUnpackRoundTripStableTrend(t *testing.T) {
	snaps := stableTrendSnapshots(50)
	data, err := Pack(snaps)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	assert.True(t, Verify(data))

	got, err := Unpack(data)
	require.NoError(t, err)
	require.Equal(t, len(snaps), len(got))
	for i := range snaps {
		assert.Equal(t, snaps[i].Timestamp, got[i].Timestamp)
		assert.Equal(t, snaps[i].Items, got[i].Items)
	}
}

func TestPackUnpackDeterministic(t *testing.T) {
	snaps := stableTrendSnapshots(30)
	a, err := Pack(snaps)
	require.NoError(t, err)
	b, err := Pack(snaps)
	require.NoError(t, err)
	assert.Equal(t, a, b, "identical input and config must produce byte-identical output")
}

func TestPackUnpackRegimeSwitch(t *testing.T) {
	snaps := make([]snapshot.Snapshot, 0, 40)
	for i := range 20 {
		snaps = append(snaps, snapshot.Snapshot{
			Timestamp: int64(i),
			Items: map[snapshot.ItemID]snapshot.Fields{
				snapshot.NumericID(1): {"price": 10, "quantity": 1},
			},
		})
	}
	for i := range 20 {
		snaps = append(snaps, snapshot.Snapshot{
			Timestamp: int64(20 + i),
			Items: map[snapshot.ItemID]snapshot.Fields{
				snapshot.NumericID(1): {"price": float64((i*7919 + 13) % 1000), "quantity": float64(i % 5)},
			},
		})
	}

	data, err := Pack(snaps, engine.WithBlockSize(8))
	require.NoError(t, err)

	got, err := Unpack(data)
	require.NoError(t, err)
	require.Equal(t, len(snaps), len(got))
	for i := range snaps {
		assert.Equal(t, snaps[i].Items, got[i].Items)
	}
}

func TestPackUnpackIEEESpecialValues(t *testing.T) {
	snaps := []snapshot.Snapshot{{
		Timestamp: 1,
		Items: map[snapshot.ItemID]snapshot.Fields{
			snapshot.NumericID(1): {"price": math.NaN(), "quantity": 1},
			snapshot.NumericID(2): {"price": math.Inf(1), "quantity": 1},
			snapshot.NumericID(3): {"price": math.Inf(-1), "quantity": 1},
			snapshot.NumericID(4): {"price": math.Copysign(0, -1), "quantity": 1},
			snapshot.NumericID(5): {"price": 0, "quantity": 1},
		},
	}}

	data, err := Pack(snaps)
	require.NoError(t, err)

	got, err := Unpack(data)
	require.NoError(t, err)
	require.Len(t, got, 1)

	price := func(id uint64) float64 {
		return got[0].Items[snapshot.NumericID(id)]["price"]
	}
	assert.True(t, math.IsNaN(price(1)))
	assert.True(t, math.IsInf(price(2), 1))
	assert.True(t, math.IsInf(price(3), -1))
	assert.True(t, math.Signbit(price(4)), "-0 sign must survive exactly")
	assert.False(t, math.Signbit(price(5)), "+0 sign must survive exactly")
}

func TestUnpackTruncatedFileIsIncompleteData(t *testing.T) {
	data, err := Pack(stableTrendSnapshots(10))
	require.NoError(t, err)

	_, err = Unpack(data[:len(data)-5])
	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.KindIncompleteData, e.Kind)
}

func TestUnpackBitFlipIsIntegrityError(t *testing.T) {
	data, err := Pack(stableTrendSnapshots(10))
	require.NoError(t, err)

	flipped := append([]byte(nil), data...)
	flipped[len(flipped)/2] ^= 0x01

	assert.False(t, Verify(flipped))

	_, err = Unpack(flipped)
	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.KindIntegrity, e.Kind)
}

func TestEncryptedRoundTripAndWrongPasswordRejected(t *testing.T) {
	snaps := stableTrendSnapshots(20)
	data, err := Pack(snaps, engine.WithPassword("correct horse"), engine.WithKDFIterations(100))
	require.NoError(t, err)

	got, err := Unpack(data, engine.WithDecodePassword("correct horse"))
	require.NoError(t, err)
	require.Equal(t, len(snaps), len(got))

	_, err = Unpack(data, engine.WithDecodePassword("wrong password"))
	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.KindIntegrity, e.Kind)

	// The EOS trailer covers the whole file, encrypted sections included,
	// so Verify works without ever supplying a password.
	assert.True(t, Verify(data))
}

func TestFinishTwiceIsUsageError(t *testing.T) {
	enc, err := engine.NewEncoder()
	require.NoError(t, err)
	require.NoError(t, enc.AddSnapshot(stableTrendSnapshots(1)[0]))

	_, err = enc.Finish()
	require.NoError(t, err)

	_, err = enc.Finish()
	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.KindUsage, e.Kind)
}

func TestAddSnapshotAfterFinishIsUsageError(t *testing.T) {
	enc, err := engine.NewEncoder()
	require.NoError(t, err)
	require.NoError(t, enc.AddSnapshot(stableTrendSnapshots(1)[0]))
	_, err = enc.Finish()
	require.NoError(t, err)

	err = enc.AddSnapshot(stableTrendSnapshots(1)[0])
	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.KindUsage, e.Kind)
}

func TestStringItemIDRoundTrip(t *testing.T) {
	snaps := []snapshot.Snapshot{
		{Timestamp: 1, Items: map[snapshot.ItemID]snapshot.Fields{
			snapshot.StringID("AAPL"): {"price": 190.5, "quantity": 100},
			snapshot.StringID("MSFT"): {"price": 410.2, "quantity": 50},
		}},
		{Timestamp: 2, Items: map[snapshot.ItemID]snapshot.Fields{
			snapshot.StringID("AAPL"): {"price": 191.0, "quantity": 80},
			snapshot.StringID("GOOG"): {"price": 150.0, "quantity": 30},
		}},
	}

	sch := schema.Profile{
		ID: "equities", Version: 1, ItemIDKind: schema.ItemIDString,
		Fields: []schema.Field{
			{Name: "price", Type: schema.FieldNumeric, CodecHint: schema.HintValue},
			{Name: "quantity", Type: schema.FieldNumeric, CodecHint: schema.HintValue},
		},
	}

	data, err := Pack(snaps, engine.WithSchema(sch))
	require.NoError(t, err)

	got, err := Unpack(data)
	require.NoError(t, err)
	require.Equal(t, len(snaps), len(got))
	for i := range snaps {
		assert.Equal(t, snaps[i].Items, got[i].Items)
	}
}

func TestCHMRecoveryAfterAnomalySegment(t *testing.T) {
	snaps := make([]snapshot.Snapshot, 0, 200)
	for i := range 60 {
		snaps = append(snaps, snapshot.Snapshot{
			Timestamp: int64(i),
			Items: map[snapshot.ItemID]snapshot.Fields{
				snapshot.NumericID(1): {"price": float64(1000 + i), "quantity": 5},
			},
		})
	}
	for i := range 40 {
		snaps = append(snaps, snapshot.Snapshot{
			Timestamp: int64(60 + i),
			Items: map[snapshot.ItemID]snapshot.Fields{
				snapshot.NumericID(1): {"price": float64((i*104729 + 7) % 100000), "quantity": 5},
			},
		})
	}
	for i := range 60 {
		snaps = append(snaps, snapshot.Snapshot{
			Timestamp: int64(100 + i),
			Items: map[snapshot.ItemID]snapshot.Fields{
				snapshot.NumericID(1): {"price": float64(2000 + i), "quantity": 5},
			},
		})
	}

	data, telemetry, err := Telemetry(snaps, engine.WithBlockSize(4))
	require.NoError(t, err)

	got, err := Unpack(data)
	require.NoError(t, err)
	require.Equal(t, len(snaps), len(got))
	for i := range snaps {
		assert.Equal(t, snaps[i].Items, got[i].Items)
	}

	foundClosedAnomaly := false
	for _, r := range telemetry {
		for _, seg := range r.AnomalySegments {
			if seg.End > seg.Start {
				foundClosedAnomaly = true
			}
		}
	}
	assert.True(t, foundClosedAnomaly, "the chaotic block run should open and then close an anomaly segment")
}
