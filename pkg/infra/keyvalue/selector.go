package keyvalue

import (
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	infraPrometheus "github.com/rentora/gatekeeper/pkg/infra/prometheus"
)

// Config enables the durable backend. Enabled must be true and both URL and
// Token must be present and well-formed, otherwise every resolution falls
// back to the in-process store.
type Config struct {
	Enabled bool
	URL     string
	Token   string
}

// Selector resolves the active backend on every call. The Redis handle is
// constructed lazily exactly once per process; availability is judged per
// operation through the circuit breaker rather than with a startup ping, so
// an outage that begins mid-flight is detected without a restart.
type Selector struct {
	cfg    Config
	logger *logrus.Logger

	memory  *MemoryStore
	breaker *gobreaker.CircuitBreaker

	initOnce sync.Once
	warnOnce sync.Once
	durable  *RedisStore
}

func NewSelector(cfg Config, logger *logrus.Logger) *Selector {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "redis",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("durable backend breaker state changed")
		},
	})

	return &Selector{
		cfg:     cfg,
		logger:  logger,
		memory:  NewMemoryStore(),
		breaker: breaker,
	}
}

// Store returns the backend to use for the next operation: the durable store
// when it is enabled, configured, and its breaker is not open; the in-process
// fallback otherwise.
func (s *Selector) Store() Store {
	durable, ok := s.resolveDurable()
	if !ok {
		return s.memory
	}
	if s.breaker.State() == gobreaker.StateOpen {
		infraPrometheus.BackendFailoverTotal.Inc()
		return s.memory
	}
	return durable
}

// Memory exposes the fallback store directly, used by tests and maintenance
// paths that must not touch the network.
func (s *Selector) Memory() *MemoryStore {
	return s.memory
}

func (s *Selector) resolveDurable() (*RedisStore, bool) {
	if !s.cfg.Enabled {
		return nil, false
	}

	if s.cfg.URL == "" || s.cfg.Token == "" {
		s.warnOnce.Do(func() {
			s.logger.Warn("durable backend enabled but credentials are missing, using in-process store")
		})
		return nil, false
	}

	s.initOnce.Do(func() {
		options, err := redis.ParseURL(s.cfg.URL)
		if err != nil {
			s.warnOnce.Do(func() {
				s.logger.WithError(err).Warn("durable backend enabled but URL is malformed, using in-process store")
			})
			return
		}
		options.Password = s.cfg.Token
		s.durable = NewRedisStore(redis.NewClient(options), s.breaker)
	})

	if s.durable == nil {
		return nil, false
	}
	return s.durable, true
}
