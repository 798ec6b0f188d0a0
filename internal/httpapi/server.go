package httpapi

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/example/venue-discovery/internal/chat"
	"github.com/example/venue-discovery/internal/config"
	"github.com/example/venue-discovery/internal/geo"
	"github.com/example/venue-discovery/internal/ingest"
	"github.com/example/venue-discovery/internal/media"
	"github.com/example/venue-discovery/internal/models"
	"github.com/example/venue-discovery/internal/orders"
	"github.com/example/venue-discovery/internal/payments"
	"github.com/example/venue-discovery/internal/places"
	"github.com/example/venue-discovery/internal/presence"
	"github.com/example/venue-discovery/internal/rank"
	"github.com/example/venue-discovery/internal/reconcile"
	"github.com/example/venue-discovery/internal/reservations"
	"github.com/example/venue-discovery/internal/session"
	"github.com/example/venue-discovery/internal/store"
)

type Server struct {
	cfg    config.ServerConfig
	logger *slog.Logger

	Geo          geo.Geo
	Places       places.Provider
	Ranker       rank.Ranker
	Sessions     *session.Manager
	Layers       map[models.Collection]*reconcile.Layer
	Orders       *orders.Service
	Reservations *reservations.Service
	PresenceReg  *presence.Registry
	Presence     *presence.Notifier
	Chat         *chat.Registry
	Photos       *media.PhotoStore
	Kafka        *ingest.KafkaProducer

	mux *mux.Router
}

// NewServer wires the API process from config, falling back to
// in-process implementations when an external dependency is not
// configured, so the binary runs locally without setup.
func NewServer(cfg config.ServerConfig, logger *slog.Logger) *Server {
	var g geo.Geo
	if cfg.RedisAddr != "" {
		g = geo.NewRedisGeo(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisGeoKey)
	} else {
		g = geo.NewIndex()
	}

	var provider places.Provider
	if cfg.PlacesEndpoint != "" {
		provider = places.NewHTTPProvider(cfg.PlacesEndpoint)
	} else {
		provider = &places.GeoProvider{Geo: g, Limit: cfg.NearbyLimit}
	}
	if cfg.PlacesCacheTTL > 0 {
		provider = places.NewCache(provider, cfg.PlacesCacheTTL)
	}

	var remote store.RemoteStore
	var orderStore orders.Store
	if cfg.PGDSN != "" {
		if ps, err := store.NewPostgresStore(cfg.PGDSN); err == nil {
			remote = ps
			orderStore = ps
		} else {
			logger.Error("postgres unavailable, using in-memory stores", "error", err)
		}
	}
	if remote == nil {
		remote = store.NewMemoryRemote()
	}
	if orderStore == nil {
		orderStore = orders.NewMemoryStore()
	}

	sessions := session.NewManager()
	layers := make(map[models.Collection]*reconcile.Layer)
	for _, col := range []models.Collection{models.Favorites, models.Cart, models.Reservations} {
		layer := reconcile.NewLayer(col, store.NewMemoryLocal(), remote, logger)
		sessions.Subscribe(layer.SessionChanged)
		layers[col] = layer
	}

	var kp *ingest.KafkaProducer
	if len(cfg.KafkaBrokers) > 0 {
		kp = ingest.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	}

	var photos *media.PhotoStore
	if cfg.MinioEndpoint != "" {
		ps, err := media.NewPhotoStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			logger.Error("photo storage unavailable", "error", err)
		} else {
			if err := ps.EnsureBucket(context.Background()); err != nil {
				logger.Warn("photo bucket check failed", "bucket", cfg.MinioBucket, "error", err)
			}
			photos = ps
		}
	}

	ranker := rank.Ranker{Policy: rank.Exclude}
	if cfg.RankMissingLast {
		ranker.Policy = rank.RankLast
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		Geo:      g,
		Places:   provider,
		Ranker:   ranker,
		Sessions: sessions,
		Layers:   layers,
		Orders: &orders.Service{
			Store:    orderStore,
			Payments: payments.NewStripeGateway(),
			Currency: cfg.DefaultCurrency,
			Logger:   logger,
		},
		Reservations: &reservations.Service{Records: layers[models.Reservations]},
		Chat:         chat.NewRegistry(),
		Photos:       photos,
		Kafka:        kp,
		mux:          mux.NewRouter(),
	}
	s.PresenceReg = presence.NewRegistry()
	var publisher presence.Publisher
	if kp != nil {
		publisher = kp
	}
	s.Presence = &presence.Notifier{Registry: s.PresenceReg, Publisher: publisher, Logger: logger}
	s.registerMiddleware()
	s.routes()
	return s
}

var upgrader = websocket.Upgrader{}

func newID() string { b := make([]byte, 8); _, _ = rand.Read(b); return hex.EncodeToString(b) }
