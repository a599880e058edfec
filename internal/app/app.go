package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/abrezinsky/luckydraw/internal/auth"
	"github.com/abrezinsky/luckydraw/internal/handlers"
	"github.com/abrezinsky/luckydraw/internal/logger"
	"github.com/abrezinsky/luckydraw/internal/picker"
	"github.com/abrezinsky/luckydraw/internal/repository"
	"github.com/abrezinsky/luckydraw/internal/services"
	"github.com/abrezinsky/luckydraw/internal/websocket"
)

const shutdownTimeout = 10 * time.Second

// Config holds the settings needed to assemble the application
type Config struct {
	DBPath          string
	BaseURL         string
	CORSOrigins     []string
	FingerprintSalt string
	Auth            *auth.Auth
	// Source overrides the winner picker's randomness. Nil uses crypto/rand.
	Source picker.Source
}

// App holds all application dependencies
type App struct {
	log      logger.Logger
	handlers *handlers.Handlers
	repo     *repository.Repository
	hub      *websocket.Hub
}

// New creates and initializes a new application instance
func New(log logger.Logger, cfg Config) (*App, error) {
	if cfg.Auth == nil {
		return nil, errors.New("app: auth is required")
	}
	repo, err := repository.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	src := cfg.Source
	if src == nil {
		src = picker.CryptoSource{}
	}

	// Initialize services
	eventService := services.NewEventService(log, repo)
	configService := services.NewConfigService(log, repo)
	entryService := services.NewEntryService(log, repo)
	drawService := services.NewDrawService(log, repo, src)

	hub := websocket.New(log, services.NewDrawSnapshot(configService, drawService))

	h := handlers.New(handlers.Deps{
		Events:       eventService,
		Config:       configService,
		Entries:      entryService,
		Draw:         drawService,
		Announcer:    services.NewDrawAnnouncer(hub),
		Auth:         cfg.Auth,
		Fingerprints: auth.NewFingerprinter(cfg.FingerprintSalt),
		Hub:          hub,
		Health:       repo,
	}, handlers.Options{
		BaseURL:     cfg.BaseURL,
		CORSOrigins: cfg.CORSOrigins,
	}, log)

	return &App{
		log:      log,
		handlers: h,
		repo:     repo,
		hub:      hub,
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Close releases the database
func (a *App) Close() error {
	return a.repo.Close()
}

// Run serves HTTP on addr and the viewer hub until ctx is cancelled,
// then shuts both down.
func (a *App) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run over an existing listener
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	a.setDefaultBaseURL(ln.Addr())

	srv := &http.Server{
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.hub.Run(gctx)
	})
	g.Go(func() error {
		a.log.Info("Server starting", "addr", ln.Addr().String(), "base_url", a.handlers.BaseURL())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.log.Info("Server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// setDefaultBaseURL derives the entry QR base URL from the LAN address when
// none is configured or the configured one points at localhost
func (a *App) setDefaultBaseURL(addr net.Addr) {
	existing := a.handlers.BaseURL()
	if existing != "" && !strings.Contains(existing, "localhost") {
		return
	}
	port := ""
	if tcp, ok := addr.(*net.TCPAddr); ok {
		port = fmt.Sprintf(":%d", tcp.Port)
	}
	baseURL := fmt.Sprintf("http://%s%s", getPreferredIP(realNetworkProvider{}), port)
	a.handlers.SetBaseURL(baseURL)
	a.log.Info("Default base URL set", "url", baseURL)
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the best IPv4 address for guests on the venue LAN,
// preferring private ranges and falling back to localhost.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP
	for _, iface := range ifaces {
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.To4() == nil || ip.IsLoopback() {
				continue
			}
			candidates = append(candidates, ip)
		}
	}

	for _, ip := range candidates {
		s := ip.String()
		if strings.HasPrefix(s, "192.168.") || strings.HasPrefix(s, "10.") || isPrivate172(ip) {
			return s
		}
	}
	if len(candidates) > 0 {
		return candidates[0].String()
	}
	return "localhost"
}

// isPrivate172 checks if IP is in 172.16.0.0/12 range
func isPrivate172(ip net.IP) bool {
	if ip4 := ip.To4(); ip4 != nil {
		return ip4[0] == 172 && ip4[1] >= 16 && ip4[1] <= 31
	}
	return false
}
