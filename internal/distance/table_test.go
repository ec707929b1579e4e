package distance

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTable(t *testing.T, e *Engine, corr []int, metric Metric) *Table {
	t.Helper()

	table, ok, err := Build(context.Background(), e, corr, metric, Options{})
	require.NoError(t, err)
	require.True(t, ok)
	return table
}

func TestBuild_Shape(t *testing.T) {
	e, err := NewEngine(grid(t, 4, 3), []int{0})
	require.NoError(t, err)

	corr := []int{0, 5, 11}
	table := buildTable(t, e, corr, Euclidean)

	assert.Equal(t, Euclidean, table.Metric())
	assert.Equal(t, 12, table.Vertices())
	assert.Equal(t, 3, table.Markers())
	assert.Equal(t, corr, table.Correspondence())
	assert.Len(t, table.Values(), 36)
	assert.Len(t, table.Row(7), 3)

	for v := 0; v < 12; v++ {
		for m, target := range corr {
			assert.InDelta(t, e.Euclidean(v, target), table.At(v, m), 1e-12)
		}
	}
}

func TestBuild_MarkerRowsSymmetric(t *testing.T) {
	e, err := NewEngine(grid(t, 5, 2), []int{0, 1})
	require.NoError(t, err)

	corr := []int{0, 3, 9, 3}
	for _, metric := range Metrics {
		t.Run(metric.String(), func(t *testing.T) {
			table := buildTable(t, e, corr, metric)
			for i := range corr {
				assert.Zero(t, table.MarkerDistance(i, i))
				for j := range corr {
					assert.Equal(t, table.MarkerDistance(i, j), table.MarkerDistance(j, i),
						"markers %d and %d", i, j)
				}
			}
		})
	}
}

func TestBuild_Errors(t *testing.T) {
	e, err := NewEngine(grid(t, 2, 2), nil)
	require.NoError(t, err)

	_, _, err = Build(context.Background(), e, []int{0}, Metric(5), Options{})
	assert.ErrorIs(t, err, ErrUnknownMetric)

	_, _, err = Build(context.Background(), e, nil, Euclidean, Options{})
	assert.ErrorIs(t, err, ErrPrecondition)

	_, _, err = Build(context.Background(), e, []int{4}, Euclidean, Options{})
	assert.ErrorIs(t, err, ErrPrecondition)

	islandEngine, err := NewEngine(islands(t), nil)
	require.NoError(t, err)
	_, _, err = Build(context.Background(), islandEngine, []int{0, 4}, Geodesic, Options{})
	assert.ErrorIs(t, err, ErrUnreachable)
	_, _, err = Build(context.Background(), islandEngine, []int{0, 4}, Geodesic, Options{Workers: 4})
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestBuild_WorkersMatchSerial(t *testing.T) {
	e, err := NewEngine(grid(t, 6, 5), []int{7, 8})
	require.NoError(t, err)

	corr := []int{0, 7, 14, 29, 7}
	for _, metric := range Metrics {
		serial := buildTable(t, e, corr, metric)
		parallel, ok, err := Build(context.Background(), e, corr, metric, Options{Workers: 4})
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, serial.Values(), parallel.Values(), metric.String())
	}
}

func TestBuildAll_MatchesBuild(t *testing.T) {
	e, err := NewEngine(grid(t, 4, 4), []int{5})
	require.NoError(t, err)

	corr := []int{0, 5, 15}
	tables, ok, err := BuildAll(context.Background(), e, corr, Options{Workers: 2})
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, tables, 3)

	for _, metric := range Metrics {
		single := buildTable(t, e, corr, metric)
		assert.Equal(t, metric, tables[metric].Metric())
		assert.InDeltaSlice(t, single.Values(), tables[metric].Values(), 1e-12, metric.String())
	}
}

func TestBuild_Cancelled(t *testing.T) {
	e, err := NewEngine(grid(t, 4, 4), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{0, 3} {
		table, ok, err := Build(ctx, e, []int{0, 15}, Geodesic, Options{Workers: workers})
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, table)

		tables, ok, err := BuildAll(ctx, e, []int{0, 15}, Options{Workers: workers})
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, tables)
	}
}

func TestTable_SaveLoad(t *testing.T) {
	e, err := NewEngine(grid(t, 5, 3), []int{2})
	require.NoError(t, err)

	corr := []int{1, 7, 13, 7}
	for _, metric := range Metrics {
		t.Run(metric.String(), func(t *testing.T) {
			table := buildTable(t, e, corr, metric)

			var buf bytes.Buffer
			require.NoError(t, table.Save(&buf))
			assert.Equal(t, 15*4, strings.Count(buf.String(), "\n"))

			loaded, err := Load(&buf, metric, 15, corr)
			require.NoError(t, err)
			assert.Equal(t, table.Values(), loaded.Values())
		})
	}
}

func TestLoad_ShapeMismatch(t *testing.T) {
	e, err := NewEngine(grid(t, 3, 3), nil)
	require.NoError(t, err)

	table := buildTable(t, e, []int{0, 8}, Euclidean)
	var buf bytes.Buffer
	require.NoError(t, table.Save(&buf))
	data := buf.Bytes()

	// Mesh grew by one vertex.
	_, err = Load(bytes.NewReader(data), Euclidean, 10, []int{0, 8})
	var se *ShapeError
	require.True(t, errors.As(err, &se), "expected ShapeError, got %v", err)
	assert.Equal(t, 10, se.Vertices)
	assert.Equal(t, 2, se.Markers)
	assert.ErrorIs(t, err, ErrPrecondition)

	// One marker fewer leaves trailing values.
	_, err = Load(bytes.NewReader(data), Euclidean, 9, []int{0})
	assert.True(t, errors.As(err, &se), "expected ShapeError, got %v", err)

	_, err = Load(bytes.NewReader(data), Metric(3), 9, []int{0, 8})
	assert.ErrorIs(t, err, ErrUnknownMetric)
}

func TestCache_SaveLoadFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")

	e, err := NewEngine(grid(t, 3, 3), []int{4})
	require.NoError(t, err)
	corr := []int{0, 4, 8}

	tables, ok, err := BuildAll(context.Background(), e, corr, Options{})
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, SaveFiles(dir, tables))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	assert.ElementsMatch(t, []string{"eucMatrix.mtx", "geoMatrix.mtx", "hybMatrix.mtx"}, names)

	for _, metric := range Metrics {
		loaded, err := LoadFile(dir, metric, 9, corr)
		require.NoError(t, err)
		assert.Equal(t, tables[metric].Values(), loaded.Values())
	}

	// Overwriting keeps a single file per metric.
	require.NoError(t, SaveFile(dir, tables[Hybrid]))
	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestCache_Missing(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(dir, Geodesic, 9, []int{0})
	assert.ErrorIs(t, err, ErrCacheNotFound)
	assert.NotErrorIs(t, err, ErrPrecondition)

	require.NoError(t, os.WriteFile(CachePath(dir, Geodesic), []byte("1\n2\n"), 0644))
	_, err = LoadFile(dir, Geodesic, 9, []int{0})
	assert.ErrorIs(t, err, ErrPrecondition)
	assert.NotErrorIs(t, err, ErrCacheNotFound)
}
