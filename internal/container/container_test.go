package container

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phewasview/adapters/exphewas"
	"phewasview/domain/core"
	"phewasview/domain/phewas"
	"phewasview/internal/config"
	"phewasview/internal/testkit"
)

func testConfig(baseURL string) *config.Config {
	client := exphewas.DefaultClientConfig()
	client.BaseURL = baseURL
	client.RateLimitPerSecond = 1000
	return &config.Config{
		Server:   config.ServerConfig{Port: "0", SessionTTL: time.Hour},
		ExPheWAS: *client,
		Load:     config.LoadConfig{MaxConcurrentGenes: 2},
		Explore:  config.ExploreConfig{DefaultLimit: 3, DefaultMetric: phewas.MetricQ, DefaultThreshold: 0.01},
	}
}

func TestNew_RejectsNilAndInvalidConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	cfg := testConfig("")
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestNew_WiresServices(t *testing.T) {
	fake := testkit.NewFakeExPheWAS()
	defer fake.Close()

	c, err := New(testConfig(fake.URL()))
	require.NoError(t, err)
	defer c.Shutdown(context.Background())

	defaults := c.ExploreService.Defaults()
	assert.Equal(t, 3, defaults.Limit)
	assert.Equal(t, phewas.MetricQ, defaults.Metric)

	sid := core.NewSessionID()
	rs, _ := c.ExploreService.Load(context.Background(), sid, []string{"PCSK9"}, phewas.SubsetBoth)
	assert.Len(t, rs.Rows, 5)
	assert.Equal(t, 1, c.Store.Len())
}

func TestSessionJanitor(t *testing.T) {
	fake := testkit.NewFakeExPheWAS()
	defer fake.Close()

	c, err := New(testConfig(fake.URL()))
	require.NoError(t, err)

	c.Store.Put(core.NewSessionID(), phewas.NewResultSet(phewas.SubsetBoth), &phewas.LoadReport{})
	c.StartSessionJanitor(time.Nanosecond, 5*time.Millisecond)

	assert.Eventually(t, func() bool { return c.Store.Len() == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Shutdown(context.Background()))
}
