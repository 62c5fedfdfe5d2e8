package keyvalue_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"github.com/rentora/gatekeeper/pkg/infra/keyvalue"
)

func TestSelector_DisabledUsesMemory(t *testing.T) {
	logger, hook := test.NewNullLogger()
	selector := keyvalue.NewSelector(keyvalue.Config{Enabled: false}, logger)

	store := selector.Store()
	assert.Equal(t, "memory", store.Name())
	assert.Same(t, selector.Memory(), store)
	// disabled is a configuration choice, not a misconfiguration: no warning
	assert.Empty(t, hook.Entries)
}

func TestSelector_MissingCredentialsWarnsOnce(t *testing.T) {
	logger, hook := test.NewNullLogger()
	selector := keyvalue.NewSelector(keyvalue.Config{
		Enabled: true,
		URL:     "redis://localhost:6379",
	}, logger)

	assert.Equal(t, "memory", selector.Store().Name())
	assert.Equal(t, "memory", selector.Store().Name())

	warnings := 0
	for _, entry := range hook.Entries {
		if entry.Level == logrus.WarnLevel {
			warnings++
		}
	}
	assert.Equal(t, 1, warnings)
}

func TestSelector_MalformedURLWarnsOnce(t *testing.T) {
	logger, hook := test.NewNullLogger()
	selector := keyvalue.NewSelector(keyvalue.Config{
		Enabled: true,
		URL:     "://not-a-url",
		Token:   "secret",
	}, logger)

	assert.Equal(t, "memory", selector.Store().Name())
	assert.Equal(t, "memory", selector.Store().Name())

	warnings := 0
	for _, entry := range hook.Entries {
		if entry.Level == logrus.WarnLevel {
			warnings++
		}
	}
	assert.Equal(t, 1, warnings)
}

func TestSelector_EnabledAndConfiguredUsesRedis(t *testing.T) {
	logger, _ := test.NewNullLogger()
	selector := keyvalue.NewSelector(keyvalue.Config{
		Enabled: true,
		URL:     "redis://localhost:6379",
		Token:   "secret",
	}, logger)

	first := selector.Store()
	second := selector.Store()

	assert.Equal(t, "redis", first.Name())
	// the handle is a process-wide singleton, resolved again per call
	assert.Same(t, first, second)
}

func TestStaticResolver(t *testing.T) {
	store := keyvalue.NewMemoryStore()
	resolver := keyvalue.StaticResolver{Backend: store}

	assert.Same(t, store, resolver.Store())
}
