package engine

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/catalog"
	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/logging"
	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/random"
	"github.com/JackJJClark/LifeMaxxing-2.0-sub000/internal/storage"
)

// Service is the progression engine. It is meant to be driven by one
// session at a time: random draws happen inside store transactions, which
// both store implementations serialize.
type Service struct {
	store   storage.Store
	catalog *catalog.Catalog
	rng     random.Source
	now     func() time.Time
	loc     *time.Location
	log     *slog.Logger
	efforts *effortResolver
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRandom injects the source used for chest generation and combat.
func WithRandom(src random.Source) Option {
	return func(s *Service) { s.rng = src }
}

// WithLocation sets the device-local timezone used for calendar days.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.log = logger }
}

func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) { s.catalog = c }
}

func NewService(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.catalog == nil {
		s.catalog = catalog.Default()
	}
	if s.rng == nil {
		src, err := random.New(0)
		if err != nil {
			src = random.NewSeeded(uint64(time.Now().UnixNano()))
		}
		s.rng = src
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	s.log = logging.OrDiscard(s.log)
	s.efforts = newEffortResolver(s.catalog)
	return s
}

func (s *Service) Store() storage.Store      { return s.store }
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

func newID() string {
	return uuid.NewString()
}

func normalizeName(name string) (string, error) {
	n := strings.TrimSpace(name)
	if n == "" {
		return "", ValidationError{Field: "name", Reason: "is required"}
	}
	return n, nil
}
