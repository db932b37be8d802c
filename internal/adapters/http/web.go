package web

import (
	"context"
	"math"
	"net/http"
	"time"

	"communityhub/internal/adapters/http/middleware"
	"communityhub/internal/adapters/http/perf"
	"communityhub/internal/adapters/storage"
	donationStore "communityhub/internal/adapters/storage/donation"
	eventStore "communityhub/internal/adapters/storage/event"
	scheduleStore "communityhub/internal/adapters/storage/schedule"
	slotStore "communityhub/internal/adapters/storage/slot"
	unavailableStore "communityhub/internal/adapters/storage/unavailable"
	volunteerStore "communityhub/internal/adapters/storage/volunteer"
	"communityhub/internal/config"
	"communityhub/internal/domain/donation"
)

// Stores holds all storage dependencies.
type Stores struct {
	Volunteers  volunteerStore.Store
	Slots       slotStore.Store
	Schedules   scheduleStore.Store
	Unavailable unavailableStore.Store
	Packages    donationStore.PackageStore
	Donations   donationStore.Store
	Events      eventStore.Store
}

// NewStores builds the SQLite implementation of every store over db.
func NewStores(db storage.SQLDB) *Stores {
	return &Stores{
		Volunteers:  volunteerStore.NewSQLiteStore(db),
		Slots:       slotStore.NewSQLiteStore(db),
		Schedules:   scheduleStore.NewSQLiteStore(db),
		Unavailable: unavailableStore.NewSQLiteStore(db),
		Packages:    donationStore.NewSQLitePackageStore(db),
		Donations:   donationStore.NewSQLiteStore(db),
		Events:      eventStore.NewSQLiteStore(db),
	}
}

// Notifier sends the best-effort transactional emails.
type Notifier interface {
	Welcome(ctx context.Context, to, name string)
	Receipt(ctx context.Context, d donation.Donation)
}

// Options configures a Server.
type Options struct {
	Config    *config.Config
	Stores    *Stores
	DB        middleware.Readiness
	Collector *perf.Collector
	Notifier  Notifier         // optional
	Now       func() time.Time // optional
}

// Server serves the JSON API.
type Server struct {
	cfg       *config.Config
	stores    *Stores
	db        middleware.Readiness
	collector *perf.Collector
	notifier  Notifier
	now       func() time.Time
	sessions  *middleware.SessionStore
	cookies   *middleware.Cookies
	limiter   *middleware.RateLimiter
}

// NewServer wires a Server from opts.
// PRE: opts.Config, opts.Stores and opts.DB are set
// POST: sessions live in memory and are lost on restart
func NewServer(opts Options) *Server {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	cfg := opts.Config
	return &Server{
		cfg:       cfg,
		stores:    opts.Stores,
		db:        opts.DB,
		collector: opts.Collector,
		notifier:  opts.Notifier,
		now:       now,
		sessions:  middleware.NewSessionStore(cfg.Session.TTL),
		cookies:   middleware.NewCookies(cfg.SessionKey(), cfg.Session.TTL, cfg.IsProduction()),
		limiter:   middleware.NewRateLimiter(cfg.RateLimit, int(math.Ceil(cfg.RateLimit*2))),
	}
}

// RunJanitors sweeps expired sessions and idle rate-limit entries until ctx is done.
func (s *Server) RunJanitors(ctx context.Context) {
	go s.sessions.Run(ctx, time.Minute)
	go s.limiter.Run(ctx)
}

// Handler returns the routed API with the full middleware stack.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	// Request flow: Timing -> Recover -> SecurityHeaders -> CORS -> RateLimit -> RequireDB -> CSRF -> Auth -> Mux
	return middleware.Chain(mux,
		middleware.Auth(s.sessions, s.cookies),
		middleware.CSRF(s.cfg.CSRFKey(), s.cfg.TrustedOrigins(), s.cfg.IsProduction()),
		middleware.RequireDB(s.db, "/health"),
		middleware.RateLimit(s.limiter),
		middleware.CORS(s.cfg.AllowedOrigins),
		middleware.SecurityHeaders,
		middleware.Recover,
		middleware.Timing(s.collector, s.cfg.SlowRequestMs),
	)
}
