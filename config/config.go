package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every tunable named in the external-interfaces contract,
// loaded from environment variables.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	EmbeddingDim      int `envconfig:"EMBEDDING_DIM" default:"768"`
	IngestConcurrency int `envconfig:"INGEST_CONCURRENCY" default:"8"`
	MaxResultsCap     int `envconfig:"MAX_RESULTS_CAP" default:"100"`

	BibliographicTimeoutSeconds int `envconfig:"BIBLIOGRAPHIC_TIMEOUT_SECONDS" default:"30"`
	CitationTimeoutSeconds      int `envconfig:"CITATION_TIMEOUT_SECONDS" default:"15"`
	VocabularyTimeoutSeconds    int `envconfig:"VOCABULARY_TIMEOUT_SECONDS" default:"10"`
	EmbedderTimeoutSeconds      int `envconfig:"EMBEDDER_TIMEOUT_SECONDS" default:"5"`

	RecencyTauYears      float64 `envconfig:"RECENCY_TAU_YEARS" default:"5"`
	ScoreWeightNovelty   float64 `envconfig:"SCORE_WEIGHT_NOVELTY" default:"0.4"`
	ScoreWeightVelocity  float64 `envconfig:"SCORE_WEIGHT_VELOCITY" default:"0.4"`
	ScoreWeightRecency   float64 `envconfig:"SCORE_WEIGHT_RECENCY" default:"0.2"`

	ClusterMinSize     int   `envconfig:"CLUSTER_MIN_SIZE" default:"5"`
	ClusterRandomSeed  int64 `envconfig:"CLUSTER_RANDOM_SEED" default:"42"`
	ClusterReconcileCron string `envconfig:"CLUSTER_RECONCILE_CRON" default:"0 */6 * * *"`

	ScoringWorkerPoolSize       int `envconfig:"SCORING_WORKER_POOL_SIZE" default:"4"`
	ScoringQueueSize            int `envconfig:"SCORING_QUEUE_SIZE" default:"64"`
	ScoringShutdownGraceSeconds int `envconfig:"SCORING_SHUTDOWN_GRACE_SECONDS" default:"30"`

	PubMedBaseURL  string `envconfig:"PUBMED_BASE_URL" default:"https://eutils.ncbi.nlm.nih.gov/entrez/eutils"`
	PubMedAPIKey   string `envconfig:"PUBMED_API_KEY"`
	PubMedEmail    string `envconfig:"PUBMED_EMAIL"`
	PubMedTool     string `envconfig:"PUBMED_TOOL" default:"primetime-fetcher"`
	PubMedPageSize int    `envconfig:"PUBMED_PAGE_SIZE" default:"50"`

	EnabledProviders string `envconfig:"ENABLED_PROVIDERS" default:"pubmed,europepmc"`

	EuropePMCBaseURL string `envconfig:"EUROPEPMC_BASE_URL" default:"https://www.ebi.ac.uk/europepmc/webservices/rest/search"`

	CrossrefBaseURL string `envconfig:"CROSSREF_BASE_URL" default:"https://api.crossref.org"`
	CrossrefUserAgent string `envconfig:"CROSSREF_USER_AGENT" default:"primetime/1.0"`
	OpenAlexBaseURL string `envconfig:"OPENALEX_BASE_URL" default:"https://api.openalex.org"`
	OpenAlexEmail   string `envconfig:"OPENALEX_EMAIL"`

	MeshEmail string `envconfig:"MESH_EMAIL"`

	EmbedderBaseURL    string `envconfig:"EMBEDDER_BASE_URL" default:"http://localhost:11434"`
	EmbedderModel      string `envconfig:"EMBEDDER_MODEL" default:"all-minilm:l6-v2"`

	UnpaywallBaseURL string `envconfig:"UNPAYWALL_BASE_URL" default:"https://api.unpaywall.org/v2"`
	UnpaywallEmail   string `envconfig:"UNPAYWALL_EMAIL"`

	BackupS3Bucket    string `envconfig:"BACKUP_S3_BUCKET"`
	BackupS3Endpoint  string `envconfig:"BACKUP_S3_ENDPOINT"`
	BackupS3AccessKey string `envconfig:"BACKUP_S3_ACCESS_KEY"`
	BackupS3SecretKey string `envconfig:"BACKUP_S3_SECRET_KEY"`
	BackupS3Region    string `envconfig:"BACKUP_S3_REGION"`
	KeepBackups       int    `envconfig:"KEEP_BACKUPS" default:"4"`
}

// DSN returns the PostgreSQL data source name for the store connection.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Load reads configuration from the environment, optionally populated from a .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	return &c, nil
}
