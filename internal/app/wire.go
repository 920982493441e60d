package app

import (
	"log/slog"

	"github.com/attaboy/puzzlequest/internal/auth"
	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/attaboy/puzzlequest/internal/guard"
	"github.com/attaboy/puzzlequest/internal/handler"
	adminhandler "github.com/attaboy/puzzlequest/internal/handler/admin"
	"github.com/attaboy/puzzlequest/internal/service"
	"github.com/go-chi/chi/v5"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Platform    *service.Platform
	JWTMgr      *auth.JWTManager
	Logger      *slog.Logger
	RateLimiter *guard.RateLimiter
	Idempotency *guard.IdempotencyGuard
	CORSOrigins string
	// Initialize options used when POST /admin/initialize has no body
	InitDefaults domain.InitOptions
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	platform := deps.Platform
	jwtMgr := deps.JWTMgr
	logger := deps.Logger

	// Handlers
	puzzleHandler := handler.NewPuzzleHandler(platform)
	walletHandler := handler.NewWalletHandler(platform)
	achievementHandler := handler.NewAchievementHandler(platform)
	eventHandler := handler.NewEventHandler(platform)

	// Admin handlers
	platformAdmin := adminhandler.NewPlatformAdminHandler(platform, deps.InitDefaults)
	puzzleAdmin := adminhandler.NewPuzzleAdminHandler(platform)
	eventAdmin := adminhandler.NewEventAdminHandler(platform)

	origins := deps.CORSOrigins
	if origins == "" {
		origins = "*"
	}

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORSWithOrigins(origins))
	r.Use(handler.JSONContentType)

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(platform))

	// guarded applies the per-caller guards; it must run after authentication.
	guarded := func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(handler.RateLimit(deps.RateLimiter))
		}
		if deps.Idempotency != nil {
			r.Use(handler.Idempotency(deps.Idempotency))
		}
	}

	// Player-authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.AuthenticatePlayer(jwtMgr))
		guarded(r)

		r.Post("/puzzles/{id}/submit", puzzleHandler.Submit)
		r.Post("/puzzles/{id}/reward", puzzleHandler.Reward)
		r.Post("/puzzles/{id}/complete", puzzleHandler.Complete)
		r.Get("/puzzles/{id}/status", puzzleHandler.Status)

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/balance", walletHandler.GetBalance)
			r.Post("/spend", walletHandler.Spend)
		})

		r.Route("/achievements", func(r chi.Router) {
			r.Post("/", achievementHandler.Mint)
			r.Get("/me", achievementHandler.Mine)
			r.Get("/{tokenID}", achievementHandler.Get)
			r.Post("/{tokenID}/transfer", achievementHandler.Transfer)
			r.Delete("/{tokenID}", achievementHandler.Burn)
		})

		// flat paths: /events/{id}/completions lives in the verifier group
		r.Get("/events/{id}", eventHandler.Get)
		r.Get("/events/{id}/access", eventHandler.Access)
		r.Get("/events/{id}/score", eventHandler.Score)
		r.Post("/events/{id}/claim", eventHandler.Claim)
		r.Post("/events/{id}/nft", eventHandler.MintNft)
	})

	// Verifier-authenticated routes (verifier or admin realm)
	r.Group(func(r chi.Router) {
		r.Use(auth.AuthenticateVerifier(jwtMgr))
		guarded(r)

		r.Post("/events/{id}/completions", eventHandler.RecordCompletion)
	})

	// Admin-authenticated routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.AuthenticateAdmin(jwtMgr))
		guarded(r)

		// Read-only for every admin role
		r.Get("/config", platformAdmin.GetConfig)
		r.Get("/audit/{addr}", platformAdmin.Audit)
		r.Get("/puzzles/{id}", puzzleAdmin.GetPuzzle)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.WriteRoles()...))

			r.Post("/initialize", platformAdmin.Initialize)
			r.Post("/rewards", platformAdmin.DistributeReward)

			r.Patch("/config/pause", platformAdmin.SetPause)
			r.Patch("/config/leaderboard", platformAdmin.SetLeaderboard)
			r.Patch("/config/cooldown", platformAdmin.SetCooldown)

			r.Post("/verifiers/{addr}", platformAdmin.AddVerifier)
			r.Delete("/verifiers/{addr}", platformAdmin.RemoveVerifier)

			r.Put("/puzzles/{id}", puzzleAdmin.UpsertPuzzle)

			r.Post("/events", eventAdmin.CreateEvent)
			r.Patch("/events/{id}/times", eventAdmin.UpdateTimes)
			r.Patch("/events/{id}/rewards", eventAdmin.UpdateRewards)
			r.Patch("/events/{id}/puzzles", eventAdmin.UpdatePuzzles)
			r.Patch("/events/{id}/pause", eventAdmin.SetPaused)
		})
	})

	return r
}
