package lookup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
)

type countingSource struct {
	mu    sync.Mutex
	calls map[string]int
	err   error
}

func (s *countingSource) hit(name string) ([]apiclient.Record, error) {
	s.mu.Lock()
	if s.calls == nil {
		s.calls = map[string]int{}
	}
	s.calls[name]++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	switch name {
	case Banks:
		return []apiclient.Record{
			apiclient.NewRecord("BankId", 1, "BankName", "State Bank"),
			apiclient.NewRecord("BankId", 2, "BankName", "Axis"),
			apiclient.NewRecord("BankId", 2, "BankName", "Axis duplicate"),
		}, nil
	case MajorGroups:
		return []apiclient.Record{apiclient.NewRecord("Code", "MG1", "Description", "")}, nil
	}
	return nil, nil
}

func (s *countingSource) Banks(context.Context) ([]apiclient.Record, error) { return s.hit(Banks) }
func (s *countingSource) Lenders(context.Context) ([]apiclient.Record, error) {
	return s.hit(Lenders)
}
func (s *countingSource) MajorGroups(context.Context) ([]apiclient.Record, error) {
	return s.hit(MajorGroups)
}
func (s *countingSource) ItemCategories(context.Context) ([]apiclient.Record, error) {
	return s.hit(ItemCategories)
}
func (s *countingSource) AssetCategories(context.Context) ([]apiclient.Record, error) {
	return s.hit(AssetCategories)
}

func newTestService(t *testing.T, src Source) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(src, NewCache(client, time.Minute), nil), mr
}

func TestOptionsAreCachedUntilBump(t *testing.T) {
	src := &countingSource{}
	svc, mr := newTestService(t, src)
	ctx := context.Background()

	opts, err := svc.Options(ctx, Banks)
	require.NoError(t, err)
	assert.Equal(t, []Option{{Value: "1", Label: "State Bank"}, {Value: "2", Label: "Axis"}}, opts)

	_, err = svc.Options(ctx, Banks)
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls[Banks])
	assert.True(t, mr.Exists("lookup:banks:1"))

	require.NoError(t, svc.Invalidate(ctx))
	_, err = svc.Options(ctx, Banks)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls[Banks])
	assert.True(t, mr.Exists("lookup:banks:2"))
}

func TestOptionsLabelFallsBackToValue(t *testing.T) {
	svc, _ := newTestService(t, &countingSource{})
	opts, err := svc.Options(context.Background(), MajorGroups)
	require.NoError(t, err)
	assert.Equal(t, []Option{{Value: "MG1", Label: "MG1"}}, opts)
}

func TestUnknownListAndSourceErrors(t *testing.T) {
	svc, _ := newTestService(t, &countingSource{err: errors.New("backend down")})
	_, err := svc.Options(context.Background(), "planets")
	require.Error(t, err)

	_, err = svc.Many(context.Background(), Banks, Lenders)
	require.ErrorContains(t, err, "backend down")
}

func TestWarmLoadsEveryList(t *testing.T) {
	src := &countingSource{}
	svc, _ := newTestService(t, src)
	n, err := svc.Warm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(Names()), n)
	for _, name := range Names() {
		assert.Equal(t, 1, src.calls[name], name)
	}
}

func TestNilCacheAlwaysLoads(t *testing.T) {
	src := &countingSource{}
	svc := NewService(src, nil, nil)
	for i := 0; i < 2; i++ {
		_, err := svc.Options(context.Background(), Banks)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, src.calls[Banks])
}
