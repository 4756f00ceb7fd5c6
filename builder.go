package goSession

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MrEthical07/goSession/credential"
	"github.com/MrEthical07/goSession/dispatch"
	"github.com/MrEthical07/goSession/guard"
	internalaudit "github.com/MrEthical07/goSession/internal/audit"
	"github.com/MrEthical07/goSession/internal/flows"
	"github.com/MrEthical07/goSession/internal/stores"
	"github.com/MrEthical07/goSession/verification"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. Chain the With* methods and finish with
// [Builder.Build]. A Builder is single use: Build fails on the second call.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	backing    credential.Backing
	httpClient *http.Client
	auditSink  AuditSink

	built bool
}

// New starts a Builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration. The config is copied, so later
// mutation of cfg by the caller does not reach the engine.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the Redis client used for the credential backing and,
// when pending persistence is enabled, the pending-verification records.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithCredentialBacking supplies an explicit durable backing for the
// credential store, overriding the Redis-derived default. Use it for the
// SQLite backing on single-node deployments or the in-memory one in tests.
func (b *Builder) WithCredentialBacking(backing credential.Backing) *Builder {
	b.backing = backing
	return b
}

// WithHTTPClient supplies the HTTP client the dispatcher sends platform
// requests with. Supply one with a cookie jar when same-origin platform
// cookies should ride along with the bearer credential.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithAuditSink supplies the sink audit events are dispatched to. Without one,
// an enabled audit config falls back to [NoOpSink].
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles counters without replacing the whole config.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles dispatch latency buckets. Has no effect
// unless metrics are also enabled.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, wires the credential store, dispatcher,
// verification stores, audit dispatcher and metrics, and returns the Engine.
// At least one of WithRedis or WithCredentialBacking must have been called.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// -------- CREDENTIAL BACKING --------
	backing := b.backing
	if backing == nil {
		if b.redis == nil {
			return nil, errors.New("credential backing or redis client required")
		}
		backing = credential.NewRedisBacking(
			b.redis,
			cfg.Credential.RedisPrefix,
			cfg.Credential.StorageName,
			cfg.Credential.TTL,
			cfg.Credential.SlidingExpiration,
		)
	}

	// -------- PENDING VERIFICATION STORE --------
	var pending *stores.PendingVerificationStore
	if cfg.Verification.PersistPending {
		if b.redis == nil {
			return nil, errors.New("Verification PersistPending requires redis client")
		}
		pending = stores.NewPendingVerificationStore(b.redis, cfg.Verification.RedisPrefix)
	}

	engine := &Engine{
		config:      cfg,
		policy:      routePolicy(cfg.Routes),
		credentials: credential.NewStore(backing),
		pending:     pending,
		machines:    make(map[string]*verification.Machine),
		sessions:    make(map[string]sessionCacheEntry),
		pendingMem:  make(map[string]pendingChallenge),
		touched:     make(map[string]time.Time),
		now:         time.Now,
	}

	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	// -------- DISPATCHER --------
	httpClient := b.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Platform.RequestTimeout}
	}
	dispatcher, err := dispatch.NewDispatcher(dispatch.Config{
		BaseURL: cfg.Platform.BaseURL,
		Credential: func(ctx context.Context) (string, error) {
			return engine.credentials.Get(ctx, sessionKeyFromContext(ctx))
		},
		AuthFailed: engine.onAuthFailed,
		Decorate: func(ctx context.Context, req *http.Request) {
			if id := requestIDFromContext(ctx); id != "" {
				req.Header.Set("X-Request-Id", id)
			}
		},
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, err
	}
	engine.dispatcher = dispatcher

	// -------- FLOW SERVICE --------
	engine.flows = flows.New(buildFlowDeps(engine))

	b.built = true

	return engine, nil
}

func routePolicy(routes RoutesConfig) guard.Policy {
	return guard.Policy{
		LoginPath: routes.Login,
		Homes: map[guard.Role]string{
			guard.RoleJobSeeker: routes.JobSeekerHome,
			guard.RoleEmployer:  routes.EmployerHome,
			guard.RoleAdmin:     routes.AdminHome,
		},
		FallbackHome: routes.FallbackHome,
		LandingHome:  routes.DefaultLanding,
	}
}

func buildFlowDeps(engine *Engine) flows.Deps {
	metricInc := func(id int) {
		engine.metrics.Inc(MetricID(id))
	}
	installCredential := func(ctx context.Context, token string) error {
		return engine.credentials.Set(ctx, sessionKeyFromContext(ctx), token)
	}
	clearCredential := func(ctx context.Context) error {
		return engine.credentials.Clear(ctx, sessionKeyFromContext(ctx))
	}

	return flows.Deps{
		Login: flows.LoginDeps{
			Login:             engine.platformLogin,
			Register:          engine.platformRegister,
			InstallCredential: installCredential,
			SavePending:       engine.savePending,
			CacheUser: func(ctx context.Context, user flows.SessionUser) {
				engine.cacheResolution(ctx, user, true)
			},
			MapPlatformError: mapLoginError,
			MetricInc:        metricInc,
			EmitAudit:        engine.emitAudit,
			Metrics: flows.LoginMetrics{
				LoginSuccess:       int(MetricLoginSuccess),
				LoginFailure:       int(MetricLoginFailure),
				LoginPendingVerify: int(MetricLoginPendingVerification),
				RegisterSuccess:    int(MetricRegisterSuccess),
				RegisterFailure:    int(MetricRegisterFailure),
			},
			Events: flows.LoginEvents{
				Login:    auditEventLogin,
				Register: auditEventRegister,
			},
			Errors: flows.LoginErrors{
				EngineNotReady:      ErrEngineNotReady,
				InvalidCredentials:  ErrInvalidCredentials,
				PlatformUnavailable: ErrPlatformUnavailable,
			},
		},
		Logout: flows.LogoutDeps{
			ClearCredential: clearCredential,
			DropPending:     engine.dropPending,
			CacheAbsent:     engine.cacheAbsent,
			MetricInc:       metricInc,
			EmitAudit:       engine.emitAudit,
			Metrics: flows.LogoutMetrics{
				LogoutSuccess: int(MetricLogoutSuccess),
				LogoutFailure: int(MetricLogoutFailure),
			},
			Events: flows.LogoutEvents{
				Logout: auditEventLogout,
			},
			Errors: flows.LogoutErrors{
				EngineNotReady: ErrEngineNotReady,
			},
		},
		Session: flows.SessionDeps{
			CachedUser:       engine.cachedUser,
			FetchUser:        engine.platformFetchUser,
			CacheResolution:  engine.cacheResolution,
			MapPlatformError: mapSessionError,
			MetricInc:        metricInc,
			EmitAudit:        engine.emitAudit,
			Metrics: flows.SessionMetrics{
				ResolveHit:     int(MetricResolveHit),
				ResolveMiss:    int(MetricResolveMiss),
				ResolveAbsent:  int(MetricResolveAbsent),
				ResolveFailure: int(MetricResolveFailure),
			},
			Events: flows.SessionEvents{
				Resolve: auditEventSessionResolve,
			},
			Errors: flows.SessionErrors{
				EngineNotReady: ErrEngineNotReady,
			},
		},
		Verification: flows.VerificationDeps{
			SubmitCode:       engine.platformVerify,
			ResendCode:       engine.platformResend,
			MapPlatformError: mapVerificationError,
			MetricInc:        metricInc,
			EmitAudit:        engine.emitAudit,
			Metrics: flows.VerificationMetrics{
				SubmitSuccess: int(MetricVerifySubmitSuccess),
				SubmitFailure: int(MetricVerifySubmitFailure),
				ResendSuccess: int(MetricVerifyResendSuccess),
				ResendFailure: int(MetricVerifyResendFailure),
			},
			Events: flows.VerificationEvents{
				Submit: auditEventVerifySubmit,
				Resend: auditEventVerifyResend,
			},
			Errors: flows.VerificationErrors{
				EngineNotReady: ErrEngineNotReady,
				InvalidCode:    ErrInvalidCode,
				NoPending:      ErrNoPendingVerification,
			},
		},
		Introspection: flows.IntrospectionDeps{
			ReadCredential: engine.Credential,
			ParseClaims:    parseClaims,
			MetricInc:      metricInc,
			Metrics: flows.IntrospectionMetrics{
				IntrospectSuccess: int(MetricIntrospectSuccess),
				IntrospectFailure: int(MetricIntrospectFailure),
			},
			Errors: flows.IntrospectionErrors{
				EngineNotReady: ErrEngineNotReady,
				NoCredential:   ErrAuthRequired,
				MalformedToken: ErrMalformedCredential,
			},
		},
	}
}
