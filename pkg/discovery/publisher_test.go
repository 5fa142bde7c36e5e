package discovery

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geteduroam/discogen/pkg/catalog/catalogtest"
	"github.com/geteduroam/discogen/pkg/seq"
)

type publishEnv struct {
	fs      afero.Fs
	counter *seq.Counter
	writer  *Writer
}

func newPublishEnv(t *testing.T) *publishEnv {
	t.Helper()
	fs := afero.NewMemMapFs()
	return &publishEnv{
		fs:      fs,
		counter: seq.New(filepath.Join(t.TempDir(), "seq.txt")),
		writer:  NewWriter(fs, "/disco"),
	}
}

// run publishes with a fresh graph, as a new process would.
func (e *publishEnv) run(t *testing.T, cat *catalogtest.Catalog, opts ...PublisherOption) Result {
	t.Helper()
	p := NewPublisher(e.counter, e.writer, []Strategy{newTestV1(cat, testOverrides())}, opts...)
	res, err := p.Publish(context.Background())
	require.NoError(t, err)
	return res
}

func (e *publishEnv) exists(t *testing.T, name string) bool {
	t.Helper()
	ok, err := afero.Exists(e.fs, filepath.Join("/disco", name))
	require.NoError(t, err)
	return ok
}

func TestPublishFirstRun(t *testing.T) {
	env := newPublishEnv(t)
	res := env.run(t, newTestCatalog())

	assert.Equal(t, 0, res.PreviousSeq)
	assert.Equal(t, 1, res.Seq)
	assert.True(t, res.Changed)
	assert.Equal(t, 3, res.Instances)
	assert.True(t, env.exists(t, "v1/discovery-1.json"))
	assert.True(t, env.exists(t, "v1/discovery-1.json.gz"))
}

func TestPublishUnchangedKeepsSeq(t *testing.T) {
	env := newPublishEnv(t)
	env.run(t, newTestCatalog())

	res := env.run(t, newTestCatalog())
	assert.False(t, res.Changed)
	assert.False(t, res.Published())
	assert.Equal(t, 1, res.Seq)
	assert.Empty(t, res.Files)
	assert.False(t, env.exists(t, "v1/discovery-2.json"), "redundant candidate is removed")
	assert.True(t, env.exists(t, "v1/discovery-1.json"))

	current, err := env.counter.Current()
	require.NoError(t, err)
	assert.Equal(t, 1, current)
}

func TestPublishChangeAdvancesByOne(t *testing.T) {
	env := newPublishEnv(t)
	env.run(t, newTestCatalog())
	env.run(t, newTestCatalog())

	cat := newTestCatalog()
	cat.AddProfile(2, 21, "Visitors", catalogtest.AvailableDevice("eap-config", "EAP config"))
	res := env.run(t, cat)

	assert.True(t, res.Changed)
	assert.Equal(t, 1, res.PreviousSeq)
	assert.Equal(t, 2, res.Seq)
	assert.True(t, env.exists(t, "v1/discovery-2.json"))

	data, err := env.writer.Read(File{Dir: "v1", Base: "discovery"}, 2)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"seq": 2`)
}

func TestPublishForce(t *testing.T) {
	env := newPublishEnv(t)
	env.run(t, newTestCatalog())

	res := env.run(t, newTestCatalog(), WithForce(true))
	assert.False(t, res.Changed)
	assert.True(t, res.Forced)
	assert.Equal(t, 2, res.Seq)
	assert.True(t, env.exists(t, "v1/discovery-2.json"))
}

type failingStrategy struct{}

func (failingStrategy) Version() int { return 9 }

func (failingStrategy) Generate(context.Context, int) ([]File, error) {
	return nil, errors.New("catalog down")
}

func TestPublishFailureLeavesNoCandidate(t *testing.T) {
	env := newPublishEnv(t)
	p := NewPublisher(env.counter, env.writer, []Strategy{newTestV1(newTestCatalog(), testOverrides()), failingStrategy{}})

	_, err := p.Publish(context.Background())
	require.Error(t, err)
	assert.False(t, env.exists(t, "v1/discovery-1.json"))

	current, err := env.counter.Current()
	require.NoError(t, err)
	assert.Equal(t, 0, current)
}
