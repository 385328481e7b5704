package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ikarus3d/go-backend/pkg/e"
	"github.com/ikarus3d/go-backend/pkg/logger"
	"github.com/jimlawless/whereami"
)

// Бэкенды индекса сходства
const (
	IndexBackendMemory = "memory"
	IndexBackendQdrant = "qdrant"
)

type Config struct {
	Http      *HTTPConfig
	Dataset   *DatasetCfg
	Embedder  *EmbedderCfg
	GenAI     *GenAICfg
	Qdrant    *QdrantCfg
	Redis     *RedisCfg
	Kafka     *KafkaCfg
	Recommend *RecommendCfg
}

type HTTPConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string // источники браузерного фронтенда (CORS)
}

// DatasetCfg описывает источник каталога продуктов.
type DatasetCfg struct {
	Path       string // путь к CSV-файлу с каталогом
	SampleSize int    // размер выборки для /products/sample
}

// EmbedderCfg — настройки клиента сервиса эмбеддингов.
type EmbedderCfg struct {
	BaseURL       string
	Model         string
	Timeout       time.Duration
	MaxRetries    int // общее число попыток, включая первую
	MaxConcurrent int
	BatchSize     int
}

// GenAICfg — настройки клиента генеративно-текстового API.
type GenAICfg struct {
	BaseURL   string
	Model     string
	ApiKey    string
	Timeout   time.Duration
	MaxTokens int
}

type QdrantCfg struct {
	Port                 int
	Host                 string
	ApiKey               string
	QdrantCollectionName string // имя коллекции в Qdrant
	UseTLS               bool
	VectorSize           uint64
}

type RedisCfg struct {
	Addr           string
	Password       string
	User           string
	DB             int
	MaxRetries     int
	DialTimeout    time.Duration
	Timeout        time.Duration
	DescriptionTTL time.Duration
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

// RecommendCfg — параметры конвейера рекомендаций.
type RecommendCfg struct {
	IndexBackend     string // memory | qdrant
	OversampleFactor int    // множитель количества кандидатов до фильтрации
	DefaultLimit     int
	MaxLimit         int
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	embedder, err := loadEmbedderCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	genai, err := loadGenAICfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	qdrant, err := loadQdrantCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	recommend, err := loadRecommendCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Http:      http,
		Dataset:   loadDatasetCfg(),
		Embedder:  embedder,
		GenAI:     genai,
		Qdrant:    qdrant,
		Redis:     redis,
		Kafka:     kafka,
		Recommend: recommend,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 10 * time.Second
		defaultIdleTimeout  = 60 * time.Second
		defaultOrigins      = "http://localhost:3000,http://localhost:8080"
	)

	port := getEnvOrDefault("HTTP_PORT", defaultPort)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	origins := strings.Split(getEnvOrDefault("CORS_ORIGINS", defaultOrigins), ",")

	return &HTTPConfig{
		Port:           port,
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		IdleTimeout:    idleTimeout,
		AllowedOrigins: origins,
	}, nil
}

func loadDatasetCfg() *DatasetCfg {
	const (
		defaultPath       = "./data/raw/intern_data_ikarus.csv"
		defaultSampleSize = 5
	)

	sampleSize, err := parseIntEnv("DATASET_SAMPLE_SIZE", defaultSampleSize)
	if err != nil {
		sampleSize = defaultSampleSize
	}

	return &DatasetCfg{
		Path:       getEnvOrDefault("DATASET_PATH", defaultPath),
		SampleSize: sampleSize,
	}
}

func loadEmbedderCfg(log logger.Logger) (*EmbedderCfg, error) {
	const (
		defaultModel         = "sentence-transformers/all-MiniLM-L6-v2"
		defaultTimeout       = 5 * time.Second
		defaultMaxRetries    = 2 // одна повторная попытка при транзиентной ошибке
		defaultMaxConcurrent = 8
		defaultBatchSize     = 32
	)

	baseURL := getEnv("EMBEDDER_URL")
	if baseURL == "" {
		err := fmt.Errorf("EMBEDDER_URL is required")
		log.Errorf(err, "missing EMBEDDER_URL")
		return nil, err
	}

	timeout, err := parseDurationEnv("EMBEDDER_TIMEOUT", defaultTimeout)
	if err != nil {
		log.Errorf(err, "invalid EMBEDDER_TIMEOUT")
		return nil, err
	}

	maxRetries, err := parseIntEnv("EMBEDDER_MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		return nil, e.Wrap("EMBEDDER_MAX_RETRIES", err)
	}
	if maxRetries < 1 {
		return nil, fmt.Errorf("EMBEDDER_MAX_RETRIES must be positive")
	}

	maxConcurrent, err := parseIntEnv("EMBEDDER_MAX_CONCURRENT", defaultMaxConcurrent)
	if err != nil {
		return nil, e.Wrap("EMBEDDER_MAX_CONCURRENT", err)
	}

	batchSize, err := parseIntEnv("EMBEDDER_BATCH_SIZE", defaultBatchSize)
	if err != nil {
		return nil, e.Wrap("EMBEDDER_BATCH_SIZE", err)
	}

	return &EmbedderCfg{
		BaseURL:       baseURL,
		Model:         getEnvOrDefault("EMBEDDING_MODEL", defaultModel),
		Timeout:       timeout,
		MaxRetries:    maxRetries,
		MaxConcurrent: maxConcurrent,
		BatchSize:     batchSize,
	}, nil
}

func loadGenAICfg(log logger.Logger) (*GenAICfg, error) {
	const (
		defaultModel     = "gpt-4"
		defaultTimeout   = 15 * time.Second
		defaultMaxTokens = 256
	)

	baseURL := getEnv("GENAI_URL")
	if baseURL == "" {
		err := fmt.Errorf("GENAI_URL is required")
		log.Errorf(err, "missing GENAI_URL")
		return nil, err
	}

	timeout, err := parseDurationEnv("GENAI_TIMEOUT", defaultTimeout)
	if err != nil {
		log.Errorf(err, "invalid GENAI_TIMEOUT")
		return nil, err
	}

	maxTokens, err := parseIntEnv("GENAI_MAX_TOKENS", defaultMaxTokens)
	if err != nil {
		return nil, e.Wrap("GENAI_MAX_TOKENS", err)
	}

	return &GenAICfg{
		BaseURL:   baseURL,
		Model:     getEnvOrDefault("GENAI_MODEL", defaultModel),
		ApiKey:    getEnv("GENAI_API_KEY"),
		Timeout:   timeout,
		MaxTokens: maxTokens,
	}, nil
}

func loadQdrantCfg(logger logger.Logger) (*QdrantCfg, error) {
	const (
		defaultQdrantGRPCPort = "6334"
		defaultUseTLS         = false
		defaultVectorSize     = "384"
	)

	strPort := getEnvOrDefault("QDRANT_GRPC_PORT", defaultQdrantGRPCPort)
	port, err := strconv.Atoi(strPort)
	if err != nil {
		logger.Errorf(err, "invalid QDRANT_GRPC_PORT")
		return nil, err
	}

	useTLS, err := strconv.ParseBool(getEnvOrDefault("QDRANT_USE_TLS", strconv.FormatBool(defaultUseTLS)))
	if err != nil {
		logger.Errorf(err, "invalid QDRANT_USE_TLS")
		return nil, err
	}

	strVectorSize := getEnvOrDefault("VECTOR_SIZE", defaultVectorSize)
	vectorSize, err := strconv.ParseUint(strVectorSize, 10, 64)
	if err != nil {
		logger.Errorf(err, "invalid VECTOR_SIZE")
		return nil, err
	}

	return &QdrantCfg{
		Host:                 getEnv("QDRANT_HOST"),
		Port:                 port,
		ApiKey:               getEnv("QDRANT__SERVICE__API_KEY"),
		QdrantCollectionName: getEnvOrDefault("COLLECTION_NAME", "ikarus-products"),
		UseTLS:               useTLS,
		VectorSize:           vectorSize,
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr           = "localhost:6379"
		defaultDB             = 0
		defaultMaxRetries     = 3
		defaultDialTimeout    = 5 * time.Second
		defaultReadTimeout    = 3 * time.Second
		defaultWriteTimeout   = 3 * time.Second
		defaultDescriptionTTL = 24 * time.Hour
	)

	addr := getEnvOrDefault("REDIS_ADDR", defaultAddr)
	password := getEnv("REDIS_PASSWORD")
	user := getEnv("REDIS_USER")

	dbStr := getEnvOrDefault("REDIS_DB_ID", strconv.Itoa(defaultDB))
	db, err := strconv.Atoi(dbStr)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	descriptionTTL, err := parseDurationEnv("DESCRIPTION_TTL", defaultDescriptionTTL)
	if err != nil {
		log.Errorf(err, "invalid DESCRIPTION_TTL")
		return nil, err
	}

	timeout := readTimeout
	if writeTimeout > timeout {
		timeout = writeTimeout
	}

	return &RedisCfg{
		Addr:           addr,
		Password:       password,
		User:           user,
		DB:             db,
		MaxRetries:     maxRetries,
		DialTimeout:    dialTimeout,
		Timeout:        timeout,
		DescriptionTTL: descriptionTTL,
	}, nil
}

// loadKafkaCfg загружает настройки Kafka.
// Если KAFKA_BROKERS не задан, Kafka считается отключённой и возвращается nil.
func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
		defaultTopic             = "catalog-index-events"
	)

	brokerStr := os.Getenv("KAFKA_BROKERS")
	if brokerStr == "" {
		return nil, nil
	}
	brokers := strings.Split(brokerStr, ",")

	topic := getEnvOrDefault("KAFKA_TOPIC", defaultTopic)

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	networkMode := getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode)

	return &KafkaCfg{
		Brokers:           brokers,
		Topic:             topic,
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       networkMode,
	}, nil
}

func loadRecommendCfg() (*RecommendCfg, error) {
	const (
		defaultBackend          = IndexBackendMemory
		defaultOversampleFactor = 4
		defaultLimit            = 10
		defaultMaxLimit         = 50
	)

	backend := getEnvOrDefault("INDEX_BACKEND", defaultBackend)
	if backend != IndexBackendMemory && backend != IndexBackendQdrant {
		return nil, fmt.Errorf("unknown INDEX_BACKEND: %s", backend)
	}

	oversample, err := parseIntEnv("OVERSAMPLE_FACTOR", defaultOversampleFactor)
	if err != nil {
		return nil, e.Wrap("OVERSAMPLE_FACTOR", err)
	}
	if oversample < 1 {
		return nil, fmt.Errorf("OVERSAMPLE_FACTOR must be positive")
	}

	limit, err := parseIntEnv("DEFAULT_LIMIT", defaultLimit)
	if err != nil {
		return nil, e.Wrap("DEFAULT_LIMIT", err)
	}

	maxLimit, err := parseIntEnv("MAX_LIMIT", defaultMaxLimit)
	if err != nil {
		return nil, e.Wrap("MAX_LIMIT", err)
	}

	return &RecommendCfg{
		IndexBackend:     backend,
		OversampleFactor: oversample,
		DefaultLimit:     limit,
		MaxLimit:         maxLimit,
	}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}
