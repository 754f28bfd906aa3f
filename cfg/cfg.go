// Package cfg
package cfg

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ModeDev        = "dev"
	ModeProduction = "prod"
)

type Config struct {
	ServerMode string
	Port       string
	LogLevel   string
	SentryDSN  string

	DefaultAPITimeout time.Duration

	ChainURLs       []string
	GovernorAddress string
	TokenAddress    string

	// AvgBlockTime is used to extrapolate wall-clock deadlines for blocks
	// that have not been mined yet.
	AvgBlockTime time.Duration

	SyncWorkers  int
	SyncInterval time.Duration

	RetryAttempts     int
	RetryInitialDelay time.Duration
	RetryMaxDelay     time.Duration

	CacheURL         string
	CacheDB          int
	CacheIsFlush     bool
	CacheExpiredTime time.Duration

	StorageURI     string
	StorageDB      string
	StorageMinConn int
	StorageMaxConn int
}

func New() (Config, error) {
	apiTimeoutStr := os.Getenv("DEFAULT_API_TIMEOUT")
	apiTimeout, err := strconv.Atoi(apiTimeoutStr)
	if err != nil {
		apiTimeout = 5
	}

	var chainURLs []string
	chainURLsStr := os.Getenv("CHAIN_URL")
	if chainURLsStr != "" {
		chainURLs = strings.Split(chainURLsStr, ",")
	} else {
		panic("missing RPC URLs in config")
	}

	governorAddress := os.Getenv("GOVERNOR_ADDRESS")
	if governorAddress == "" {
		panic("missing governor contract address in config")
	}
	tokenAddress := os.Getenv("TOKEN_ADDRESS")
	if tokenAddress == "" {
		panic("missing token contract address in config")
	}

	avgBlockTimeStr := os.Getenv("AVG_BLOCK_TIME")
	avgBlockTime, err := time.ParseDuration(avgBlockTimeStr)
	if err != nil {
		avgBlockTime = 12 * time.Second
	}

	syncWorkersStr := os.Getenv("SYNC_WORKERS")
	syncWorkers, err := strconv.Atoi(syncWorkersStr)
	if err != nil {
		syncWorkers = 8
	}

	syncIntervalStr := os.Getenv("SYNC_INTERVAL")
	syncInterval, err := time.ParseDuration(syncIntervalStr)
	if err != nil {
		syncInterval = 15 * time.Second
	}

	retryAttemptsStr := os.Getenv("RETRY_ATTEMPTS")
	retryAttempts, err := strconv.Atoi(retryAttemptsStr)
	if err != nil {
		retryAttempts = 5
	}

	retryInitialDelayStr := os.Getenv("RETRY_INITIAL_DELAY")
	retryInitialDelay, err := time.ParseDuration(retryInitialDelayStr)
	if err != nil {
		retryInitialDelay = 2 * time.Second
	}

	retryMaxDelayStr := os.Getenv("RETRY_MAX_DELAY")
	retryMaxDelay, err := time.ParseDuration(retryMaxDelayStr)
	if err != nil {
		retryMaxDelay = 30 * time.Second
	}

	cacheDBStr := os.Getenv("CACHE_DB")
	cacheDB, err := strconv.Atoi(cacheDBStr)
	if err != nil {
		cacheDB = 0
	}

	cacheIsFlushStr := os.Getenv("CACHE_IS_FLUSH")
	cacheIsFlush, err := strconv.ParseBool(cacheIsFlushStr)
	if err != nil {
		cacheIsFlush = false
	}

	cacheExpiredTimeStr := os.Getenv("CACHE_EXPIRED_TIME")
	cacheExpiredTime, err := strconv.Atoi(cacheExpiredTimeStr)
	if err != nil {
		cacheExpiredTime = 12
	}

	storageMinConnStr := os.Getenv("STORAGE_MIN_CONN")
	storageMinConn, err := strconv.Atoi(storageMinConnStr)
	if err != nil {
		storageMinConn = 4
	}

	storageMaxConnStr := os.Getenv("STORAGE_MAX_CONN")
	storageMaxConn, err := strconv.Atoi(storageMaxConnStr)
	if err != nil {
		storageMaxConn = 16
	}

	cfg := Config{
		ServerMode: os.Getenv("SERVER_MODE"),
		Port:       os.Getenv("PORT"),
		LogLevel:   os.Getenv("LOG_LEVEL"),
		SentryDSN:  os.Getenv("SENTRY_DSN"),

		DefaultAPITimeout: time.Duration(apiTimeout) * time.Second,

		ChainURLs:       chainURLs,
		GovernorAddress: governorAddress,
		TokenAddress:    tokenAddress,

		AvgBlockTime: avgBlockTime,

		SyncWorkers:  syncWorkers,
		SyncInterval: syncInterval,

		RetryAttempts:     retryAttempts,
		RetryInitialDelay: retryInitialDelay,
		RetryMaxDelay:     retryMaxDelay,

		CacheURL:         os.Getenv("CACHE_URI"),
		CacheDB:          cacheDB,
		CacheIsFlush:     cacheIsFlush,
		CacheExpiredTime: time.Duration(cacheExpiredTime) * time.Hour,

		StorageURI:     os.Getenv("STORAGE_URI"),
		StorageDB:      os.Getenv("STORAGE_DB"),
		StorageMinConn: storageMinConn,
		StorageMaxConn: storageMaxConn,
	}

	return cfg, nil
}
