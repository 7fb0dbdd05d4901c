// Package server wires the realtime core together: the token store, the
// connection registry, presence tracking, and the WebSocket protocol, all
// behind one HTTP server.
package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/cottons-kr/appplechat-api/internal/presence"
	"github.com/cottons-kr/appplechat-api/internal/registry"
	"github.com/cottons-kr/appplechat-api/internal/server/middleware"
	"github.com/cottons-kr/appplechat-api/internal/store"
	"github.com/cottons-kr/appplechat-api/internal/ws"
	"github.com/cottons-kr/appplechat-api/pkg/config"
	"github.com/cottons-kr/appplechat-api/pkg/token"
	"github.com/cottons-kr/appplechat-api/pkg/transport"
)

type App struct {
	logger     *slog.Logger
	config     *config.Config
	tokens     *token.Store
	registry   *registry.Registry
	presence   *presence.Tracker
	dispatcher *ws.Dispatcher
	router     *ws.Router
	members    store.MemberStore

	wg   sync.WaitGroup
	http *http.Server
	ctx  context.Context
}

func NewApp(logger *slog.Logger, rootCtx context.Context, cfg *config.Config, tokens *token.Store, members store.MemberStore, rooms store.RoomStore) *App {
	reg := registry.New(logger)
	dispatcher := ws.NewDispatcher(logger, reg)

	app := &App{
		logger:     logger,
		config:     cfg,
		tokens:     tokens,
		registry:   reg,
		presence:   presence.NewTracker(logger, members),
		dispatcher: dispatcher,
		router:     ws.NewRouter(logger, rooms, dispatcher),
		members:    members,
		ctx:        rootCtx,
	}

	authed := []middleware.Middleware{
		middleware.RequestMetadataMiddleware(),
		middleware.NewRequestLogger(logger),
		middleware.NewAuthMiddleware(logger, tokens),
	}
	open := []middleware.Middleware{
		middleware.RequestMetadataMiddleware(),
		middleware.NewRequestLogger(logger),
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", middleware.Chain(http.HandlerFunc(app.upgradeHandler), authed...))
	mux.Handle("POST /auth/token", middleware.Chain(http.HandlerFunc(app.createTokenHandler), open...))
	mux.Handle("GET /auth/me", middleware.Chain(http.HandlerFunc(app.meHandler), authed...))

	app.http = &http.Server{
		Addr:    cfg.Server.Address,
		Handler: mux,
		BaseContext: func(net.Listener) context.Context {
			return app.ctx
		},
	}
	return app
}

// Handler exposes the HTTP handler, used by tests.
func (a *App) Handler() http.Handler {
	return a.http.Handler
}

// Broadcast is the outward surface for the CRUD layer: it pushes a domain
// event to every currently connected member of the target set.
func (a *App) Broadcast(event ws.Event, data any, targetUUIDs []string) error {
	return a.dispatcher.Dispatch(event, data, targetUUIDs)
}

func (a *App) Run() error {
	go func() {
		a.logger.Info("Server starting", slog.String("addr", a.http.Addr))
		if err := a.http.ListenAndServe(); err != http.ErrServerClosed {
			a.logger.Error("HTTP server failed", slog.Any("error", err))
		}
	}()

	<-a.ctx.Done()
	return a.Shutdown()
}

// upgradeHandler runs after the auth middleware, so the handshake credential
// is already validated and the member resolved by the time we accept.
func (a *App) upgradeHandler(w http.ResponseWriter, r *http.Request) {
	reqMeta, ok := middleware.ReqMetadataFrom(r.Context())
	if !ok {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	member := reqMeta.Member
	connLogger := a.logger.With(
		slog.String("remoteAddr", reqMeta.IP),
		slog.String("memberUUID", member.UUID),
	)

	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		a.logger.Error("Failed to accept websocket connection", slog.Any("error", err))
		return
	}

	conn := transport.NewConnection(
		r.Context(),
		&a.wg,
		wsConn,
		transport.ConnectionConfig(a.config.Transport),
		nil,
		nil,
		a.logger,
	)
	conn.SetOnMessageHandler(func(ctx context.Context, connID uuid.UUID, frame []byte) {
		if !a.registry.IsAuthorized(connID) {
			connLogger.Warn("Dropping frame from unauthorized connection",
				slog.String("connID", connID.String()))
			return
		}
		a.router.HandleMessage(ctx, connID, frame)
	})
	conn.SetOnCloseHandler(func(connID uuid.UUID, err error) {
		memberUUID, cleaned := a.registry.Unregister(connID)
		if cleaned {
			a.presence.OnDisconnect(a.ctx, memberUUID)
		}
		connLogger.Info("Member disconnected", slog.String("connID", connID.String()))
	})

	a.registry.Register(conn.ID(), member.UUID, conn)
	a.registry.MarkAuthorized(conn.ID())
	a.presence.OnConnect(r.Context(), member.UUID)

	connLogger.Info("Member connected", slog.String("connID", conn.ID().String()))
	conn.Run()
	<-conn.Done()
}

// Shutdown runs the graceful shutdown sequence. Cancelling the root context
// already closes every live connection through its own context; here we stop
// the listener and wait for the connection goroutines to finish cleanup.
func (a *App) Shutdown() error {
	a.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.http.Shutdown(shutdownCtx); err != nil {
		return err
	}

	a.wg.Wait()
	if err := a.tokens.Persist(); err != nil {
		a.logger.Error("Failed to persist tokens on shutdown", slog.Any("error", err))
	}
	a.logger.Info("Server shut down gracefully.")
	return nil
}
