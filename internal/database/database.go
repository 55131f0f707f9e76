package database

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"techshop_back_end/internal/config"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
)

// Keyspace roles. Each maps to a keyspace and a Scylla role of its own.
const (
	RoleCatalog   = "catalog"
	RoleCustomers = "customers"
	RoleOrders    = "orders"
)

// --- ScyllaDB configuration ---
type ScyllaKeyspaceConfig struct {
	Hosts       []string
	Keyspace    string
	Username    string
	Password    string
	SSLEnabled  bool
	CACertPath  string
	Timeout     time.Duration
	NumConns    int
	Consistency gocql.Consistency
}

type ScyllaManager struct {
	sessions map[string]*gocql.Session // role → session
	configs  map[string]ScyllaKeyspaceConfig
	mu       sync.Mutex
}

// --- Globals ---
var (
	Scylla  *ScyllaManager
	Redis   *redis.Client
	Elastic *elasticsearch.Client
	MinIO   *minio.Client
)

// ConnectDatabases opens every backend. Scylla and Redis are required;
// Elasticsearch and MinIO are skipped when not configured.
func ConnectDatabases(cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 1. ScyllaDB (one session per keyspace)
	manager, err := NewScyllaManager(cfg)
	if err != nil {
		log.Fatalf("❌ ScyllaDB init failed: %v", err)
	}
	Scylla = manager

	if cfg.ScyllaAutoMigrate {
		if err := Scylla.EnsureSchema(ctx); err != nil {
			log.Fatalf("❌ Schema migration failed: %v", err)
		}
	}

	// 2. Redis
	client, err := ConnectRedis(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Redis connection failed: %v", err)
	}
	Redis = client

	// 3. Elasticsearch
	if cfg.ElasticURL != "" {
		if Elastic, err = connectElastic(cfg); err != nil {
			log.Printf("⚠️ Elasticsearch unavailable, search disabled: %v", err)
			Elastic = nil
		}
	} else {
		log.Println("⚠️ ELASTIC_URL not set, search disabled")
	}

	// 4. MinIO
	if cfg.MinIOEndpoint != "" {
		if MinIO, err = connectMinIO(ctx, cfg); err != nil {
			log.Printf("⚠️ MinIO unavailable, uploads disabled: %v", err)
			MinIO = nil
		}
	} else {
		log.Println("⚠️ MINIO_ENDPOINT not set, uploads disabled")
	}

	log.Println("✅ Databases connected")
}

// =============================================
// SCYLLA DB
// =============================================

func NewScyllaManager(cfg *config.Config) (*ScyllaManager, error) {
	sm := &ScyllaManager{
		sessions: make(map[string]*gocql.Session),
		configs:  KeyspaceConfigs(cfg),
	}
	for role := range sm.configs {
		if _, err := sm.Session(role); err != nil {
			return nil, fmt.Errorf("keyspace %s: %w", role, err)
		}
	}
	return sm, nil
}

// KeyspaceConfigs derives the per-role cluster settings from cfg.
func KeyspaceConfigs(cfg *config.Config) map[string]ScyllaKeyspaceConfig {
	base := ScyllaKeyspaceConfig{
		Hosts:       cfg.ScyllaHosts,
		SSLEnabled:  cfg.ScyllaSSLEnabled,
		CACertPath:  cfg.ScyllaCAPath,
		Timeout:     5 * time.Second,
		NumConns:    20,
		Consistency: gocql.Quorum,
	}

	configs := make(map[string]ScyllaKeyspaceConfig, 3)
	for role, ks := range map[string]config.Keyspace{
		RoleCatalog:   cfg.CatalogKeyspace,
		RoleCustomers: cfg.CustomersKeyspace,
		RoleOrders:    cfg.OrdersKeyspace,
	} {
		c := base
		c.Keyspace = ks.Name
		c.Username = ks.Username
		c.Password = ks.Password
		configs[role] = c
	}
	return configs
}

func createScyllaCluster(config ScyllaKeyspaceConfig) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(config.Hosts...)
	cluster.Keyspace = config.Keyspace
	cluster.Consistency = config.Consistency
	cluster.Timeout = config.Timeout
	cluster.NumConns = config.NumConns
	cluster.MaxWaitSchemaAgreement = 30 * time.Second
	cluster.ReconnectInterval = 1 * time.Second

	if config.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: config.Username,
			Password: config.Password,
		}
	}

	if config.SSLEnabled {
		cluster.SslOpts = &gocql.SslOptions{
			CaPath:                 config.CACertPath,
			EnableHostVerification: config.CACertPath != "",
		}
	}

	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())
	return cluster
}

// Session returns the session of a keyspace role, reconnecting if the
// cached one no longer answers.
func (sm *ScyllaManager) Session(role string) (*gocql.Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	config, exists := sm.configs[role]
	if !exists {
		return nil, fmt.Errorf("keyspace role '%s' not configured", role)
	}

	if session, exists := sm.sessions[role]; exists {
		if !session.Closed() {
			return session, nil
		}
		delete(sm.sessions, role)
	}

	session, err := createScyllaCluster(config).CreateSession()
	if err != nil {
		return nil, fmt.Errorf("create session for %s: %w", config.Keyspace, err)
	}

	sm.sessions[role] = session
	log.Printf("✅ ScyllaDB session for keyspace '%s' (role: %s, user: %s)", config.Keyspace, role, config.Username)
	return session, nil
}

// MustSession is Session for start-up wiring, where a missing keyspace is fatal.
func (sm *ScyllaManager) MustSession(role string) *gocql.Session {
	session, err := sm.Session(role)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	return session
}

func (sm *ScyllaManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for role, session := range sm.sessions {
		session.Close()
		log.Printf("🔌 ScyllaDB session closed for '%s'", role)
	}
	sm.sessions = make(map[string]*gocql.Session)
}

// =============================================
// REDIS
// =============================================

func ConnectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisHost,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	log.Println("✅ Connected to Redis")
	return client, nil
}

// =============================================
// ELASTICSEARCH
// =============================================

func connectElastic(cfg *config.Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ElasticURL},
		Username:  cfg.ElasticUser,
		Password:  cfg.ElasticPassword,
	})
	if err != nil {
		return nil, err
	}

	res, err := client.Info()
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch info: %s", res.Status())
	}

	log.Println("✅ Connected to Elasticsearch")
	return client, nil
}

// =============================================
// MINIO
// =============================================

func connectMinIO(ctx context.Context, cfg *config.Config) (*minio.Client, error) {
	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, cfg.MinIOBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.MinIOBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinIOBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.MinIOBucket, err)
		}
		log.Println("🪣 Bucket created:", cfg.MinIOBucket)
	} else {
		log.Println("🪣 MinIO bucket present:", cfg.MinIOBucket)
	}

	log.Println("✅ Connected to MinIO:", cfg.MinIOEndpoint)
	return client, nil
}

// Close releases every connection opened by ConnectDatabases.
func Close() {
	if Scylla != nil {
		Scylla.Close()
	}
	if Redis != nil {
		if err := Redis.Close(); err != nil {
			log.Printf("⚠️ Redis close: %v", err)
		}
	}
}
