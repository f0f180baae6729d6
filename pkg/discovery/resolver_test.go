package discovery

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igd-protocol/igd-go/internal/testharness"
)

func TestResolverHappyPath(t *testing.T) {
	rt := testharness.NewRouter(t, testharness.RouterConfig{})

	gw, err := ParseDiscoveryResponse(rt.DiscoveryResponse())
	require.NoError(t, err)

	var notified atomic.Int32
	r := NewResolver(ResolverConfig{
		OnResolved: func(g *Gateway) {
			notified.Add(1)
			assert.Equal(t, gw, g)
		},
	})

	require.True(t, r.Resolve(context.Background(), gw))

	path, ok := gw.ControlPath()
	require.True(t, ok)
	assert.Equal(t, rt.ControlPath(), path)
	assert.True(t, gw.Resolved())
	assert.Equal(t, int32(1), notified.Load())
}

func TestResolverNotifiesOnce(t *testing.T) {
	rt := testharness.NewRouter(t, testharness.RouterConfig{})

	gw, err := ParseLocation(rt.Location())
	require.NoError(t, err)

	var notified atomic.Int32
	r := NewResolver(ResolverConfig{
		OnResolved: func(*Gateway) { notified.Add(1) },
	})

	// The same gateway resolved twice announces once.
	require.True(t, r.Resolve(context.Background(), gw))
	require.True(t, r.Resolve(context.Background(), gw))
	assert.Equal(t, int32(1), notified.Load())
}

func TestResolverNoWANIPService(t *testing.T) {
	rt := testharness.NewRouter(t, testharness.RouterConfig{OmitWANIPService: true})

	gw, err := ParseLocation(rt.Location())
	require.NoError(t, err)

	r := NewResolver(ResolverConfig{
		OnResolved: func(*Gateway) { t.Error("notified for a device without WANIPConnection") },
	})

	assert.False(t, r.Resolve(context.Background(), gw))
	assert.False(t, gw.Resolved())
}

func TestResolverUnreachableGateway(t *testing.T) {
	// Port from the discard range, nothing listening.
	gw, err := ParseLocation("http://127.0.0.1:9/desc.xml")
	require.NoError(t, err)

	r := NewResolver(ResolverConfig{
		OnResolved: func(*Gateway) { t.Error("notified for an unreachable gateway") },
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.False(t, r.Resolve(ctx, gw))
}

func TestResolverTrickledDescription(t *testing.T) {
	// A router that dribbles the description out in chunked pieces with
	// no Content-Length: the resolver must accumulate until the document
	// parses whole.
	rt := testharness.NewRouter(t, testharness.RouterConfig{
		TrickleChunkSize: 64,
		TrickleDelay:     2 * time.Millisecond,
	})

	gw, err := ParseLocation(rt.Location())
	require.NoError(t, err)

	r := NewResolver(ResolverConfig{
		Read: ReadConfig{Interval: time.Millisecond},
	})

	require.True(t, r.Resolve(context.Background(), gw))
	path, ok := gw.ControlPath()
	require.True(t, ok)
	assert.Equal(t, rt.ControlPath(), path)
}
