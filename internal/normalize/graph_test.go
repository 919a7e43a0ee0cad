package normalize

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdswitchboard/doinorm/internal/graph"
	"github.com/rdswitchboard/doinorm/internal/prop"
)

func openTestGraph(t *testing.T) (*graph.Store, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "neo4j")
	_, err := graph.Init(dir)
	require.NoError(t, err)

	s, err := graph.Open(dir, graph.ReadWrite)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, dir
}

// snapshot returns every node's properties keyed by id. Nodes whose
// properties cannot be decoded map to nil.
func snapshot(t *testing.T, s *graph.Store) map[int64]prop.Object {
	t.Helper()
	out := map[int64]prop.Object{}
	require.NoError(t, s.AllNodes(context.Background(), func(n *graph.Node) error {
		props, err := n.Properties()
		if err != nil {
			props = nil
		}
		out[n.ID()] = props
		return nil
	}))
	return out
}

func seed(t *testing.T, s *graph.Store, props ...prop.Object) []int64 {
	t.Helper()
	ids := make([]int64, len(props))
	for i, p := range props {
		id, err := s.CreateNode(context.Background(), []string{"Dataset"}, p)
		require.NoError(t, err)
		ids[i] = id
	}
	return ids
}

func TestGraphPassCommits(t *testing.T) {
	s, _ := openTestGraph(t)
	ids := seed(t, s,
		prop.Object{"doi": prop.String("doi:10.4225/03/5781F7B5E9F3A"), "title": prop.String("Ocean temperatures")},
		prop.Object{"doi": prop.Strings("doi:10.1/ab", "10.2/cd")},
		prop.Object{"doi": prop.Strings("10.1/ab", "10.2/cd")},
		prop.Object{"title": prop.String("no identifier")},
		prop.Object{"doi": prop.String("http://dx.doi.org/10.5555/12345678"), "year": prop.Int(2016)},
	)

	report, err := New(quietOptions()).Run(context.Background(), FromGraph(s))
	require.NoError(t, err)

	assert.Equal(t, 5, report.Scanned)
	assert.Equal(t, 4, report.WithDOI)
	assert.Equal(t, 3, report.Updated)
	assert.Equal(t, Committed, report.State)

	want := map[int64]prop.Object{
		ids[0]: {"doi": prop.String("10.4225/03/5781F7B5E9F3A"), "title": prop.String("Ocean temperatures")},
		ids[1]: {"doi": prop.Strings("10.1/ab", "10.2/cd")},
		ids[2]: {"doi": prop.Strings("10.1/ab", "10.2/cd")},
		ids[3]: {"title": prop.String("no identifier")},
		ids[4]: {"doi": prop.String("10.5555/12345678"), "year": prop.Int(2016)},
	}
	if diff := cmp.Diff(want, snapshot(t, s)); diff != "" {
		t.Errorf("store mismatch (-want +got):\n%s", diff)
	}
}

func TestGraphPassSecondRunIsNoop(t *testing.T) {
	s, _ := openTestGraph(t)
	seed(t, s,
		prop.Object{"doi": prop.String("doi:dx.doi.org/10.1000/xyz123")},
		prop.Object{"doi": prop.Strings("https://dx.doi.org/10.1/a", "unknown")},
	)

	first, err := New(quietOptions()).Run(context.Background(), FromGraph(s))
	require.NoError(t, err)
	assert.Equal(t, 2, first.Updated)
	assert.Equal(t, 1, first.Unmatched)

	before := snapshot(t, s)

	second, err := New(quietOptions()).Run(context.Background(), FromGraph(s))
	require.NoError(t, err)
	assert.Zero(t, second.Updated)

	if diff := cmp.Diff(before, snapshot(t, s)); diff != "" {
		t.Errorf("second pass changed the store (-before +after):\n%s", diff)
	}
}

func TestGraphPassFaultRollsBackEarlierWrites(t *testing.T) {
	s, _ := openTestGraph(t)
	seed(t, s,
		prop.Object{"doi": prop.String("doi:10.1/a")},
		prop.Object{"doi": prop.String("doi:10.1/b")},
	)
	// Third node: a truncated property map.
	_, err := s.DB().Exec(`INSERT INTO nodes (labels, properties) VALUES ('[]', '{"doi": "doi:10.1/c"')`)
	require.NoError(t, err)
	seed(t, s, prop.Object{"doi": prop.String("doi:10.1/d")})

	before := snapshot(t, s)

	p := New(quietOptions())
	report, err := p.Run(context.Background(), FromGraph(s))

	var fault *ScanFault
	require.True(t, errors.As(err, &fault))
	assert.EqualValues(t, 3, fault.NodeID)
	assert.Equal(t, 2, report.Updated, "writes issued before the fault")
	assert.Equal(t, RolledBack, p.State())

	if diff := cmp.Diff(before, snapshot(t, s)); diff != "" {
		t.Errorf("rolled back pass left changes (-before +after):\n%s", diff)
	}
}

func TestGraphPassFaultNamesNodeOnce(t *testing.T) {
	s, _ := openTestGraph(t)
	_, err := s.DB().Exec(`INSERT INTO nodes (labels, properties) VALUES ('[]', 'not json')`)
	require.NoError(t, err)

	_, err = New(quietOptions()).Run(context.Background(), FromGraph(s))

	var fault *ScanFault
	require.True(t, errors.As(err, &fault))
	assert.True(t, strings.HasPrefix(fault.Error(), "node 1: decode properties: "), fault.Error())
	assert.Equal(t, 1, strings.Count(err.Error(), "node 1"), err.Error())
}

func insertRaw(t *testing.T, s *graph.Store, props string) int64 {
	t.Helper()
	res, err := s.DB().Exec(`INSERT INTO nodes (labels, properties) VALUES ('[]', ?)`, props)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func storedText(t *testing.T, s *graph.Store, id int64) string {
	t.Helper()
	var text string
	require.NoError(t, s.DB().QueryRow(`SELECT properties FROM nodes WHERE id = ?`, id).Scan(&text))
	return text
}

func TestGraphPassRewritesOnlyTheDOIBytes(t *testing.T) {
	s, _ := openTestGraph(t)
	id := insertRaw(t, s, `{"title": "Cafe`+"\u0301"+`", "doi" : "doi:10.1/a", "score": 1.50}`)

	report, err := New(quietOptions()).Run(context.Background(), FromGraph(s))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)

	assert.Equal(t,
		`{"title": "Cafe`+"\u0301"+`", "doi" : "10.1/a", "score": 1.50}`,
		storedText(t, s, id))
}

func TestGraphPassToleratesNonIntegerNumbers(t *testing.T) {
	s, _ := openTestGraph(t)
	sibling := insertRaw(t, s, `{"doi":"doi:10.1/a","score":1.5}`)
	floatOnly := insertRaw(t, s, `{"name":"x","score":1.5,"big":1e400}`)
	floatDOI := insertRaw(t, s, `{"doi":2.5}`)

	p := New(quietOptions())
	report, err := p.Run(context.Background(), FromGraph(s))
	require.NoError(t, err)

	assert.Equal(t, Committed, p.State())
	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 2, report.WithDOI)
	assert.Equal(t, 1, report.Other)
	assert.Equal(t, 1, report.Updated)

	assert.Equal(t, `{"doi":"10.1/a","score":1.5}`, storedText(t, s, sibling))
	assert.Equal(t, `{"name":"x","score":1.5,"big":1e400}`, storedText(t, s, floatOnly))
	assert.Equal(t, `{"doi":2.5}`, storedText(t, s, floatDOI))
}

func TestGraphPassDryRunLeavesStore(t *testing.T) {
	s, _ := openTestGraph(t)
	seed(t, s, prop.Object{"doi": prop.String("doi:10.1/a")})
	before := snapshot(t, s)

	opts := quietOptions()
	opts.DryRun = true
	report, err := New(opts).Run(context.Background(), FromGraph(s))
	require.NoError(t, err)

	assert.Equal(t, 1, report.Updated)
	if diff := cmp.Diff(before, snapshot(t, s)); diff != "" {
		t.Errorf("dry run changed the store (-before +after):\n%s", diff)
	}
}

func TestGraphPassReadOnlyStore(t *testing.T) {
	s, dir := openTestGraph(t)
	seed(t, s, prop.Object{"doi": prop.String("doi:10.1/a")})
	require.NoError(t, s.Close())

	ro, err := graph.Open(dir, graph.ReadOnly)
	require.NoError(t, err)
	defer ro.Close()

	_, err = New(quietOptions()).Run(context.Background(), FromGraph(ro))

	var fault *ScanFault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, prop.Object{"doi": prop.String("doi:10.1/a")}, snapshot(t, ro)[1])
}

func TestGraphPassCanceledContext(t *testing.T) {
	s, _ := openTestGraph(t)
	seed(t, s, prop.Object{"doi": prop.String("doi:10.1/a")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(quietOptions())
	_, err := p.Run(ctx, FromGraph(s))

	require.Error(t, err)
	assert.Equal(t, RolledBack, p.State())
	assert.Equal(t, prop.String("doi:10.1/a"), snapshot(t, s)[1]["doi"])
}
