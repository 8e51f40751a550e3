package types

// AppConfig represents the complete application configuration.
type AppConfig struct {
	Verbose   bool            `mapstructure:"verbose"`
	Config    string          `mapstructure:"config"`
	Engine    EngineConfig    `mapstructure:"engine" validate:"required"`
	Storage   StorageConfig   `mapstructure:"storage" validate:"required"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// EngineConfig holds the tunable constants of the synthesis engine. The
// production values of decayRate, epsilon and signatureTopK were never
// pinned down; these defaults are validated by the convergence and
// diversity tests rather than by parity with any reference deployment.
type EngineConfig struct {
	// DecayRate discounts feedback by age: decay(d) = DecayRate^d.
	DecayRate float64 `mapstructure:"decayRate" validate:"required,gt=0,lte=1"`
	// Epsilon is the base probability of ignoring the posterior and
	// exploring uniformly. It grows with creativity temperature.
	Epsilon float64 `mapstructure:"epsilon" validate:"gte=0,lte=1"`
	// SignatureTopK is how many values per category make the brand DNA
	// signature.
	SignatureTopK int `mapstructure:"signatureTopK" validate:"required,min=1,max=10"`
	// MinCreativity and MaxCreativity bound the creativity temperature
	// derived (inversely) from the specificity score.
	MinCreativity float64 `mapstructure:"minCreativity" validate:"required,gt=0"`
	MaxCreativity float64 `mapstructure:"maxCreativity" validate:"required,gtefield=MinCreativity"`
	// MaxBatchSize caps how many prompt specs one command may request.
	MaxBatchSize int `mapstructure:"maxBatchSize" validate:"required,min=1"`
	// Seed fixes the pseudorandom source when non-zero; zero seeds from
	// the clock.
	Seed int64 `mapstructure:"seed"`
	// RespectUserIntent makes explicitly requested attribute values
	// bypass sampling with a fixed emphasis weight.
	RespectUserIntent bool `mapstructure:"respectUserIntent"`
	// VocabularyPath optionally points at a YAML file merged over the
	// embedded default vocabulary.
	VocabularyPath string `mapstructure:"vocabularyPath"`
}

// StorageConfig selects the persistence backend for attribute
// distributions and processed feedback events.
type StorageConfig struct {
	Backend   string `mapstructure:"backend" validate:"required,oneof=memory sqlite redis"`
	Path      string `mapstructure:"path" validate:"required_if=Backend sqlite"`
	RedisAddr string `mapstructure:"redisAddr" validate:"required_if=Backend redis"`
	RedisDB   int    `mapstructure:"redisDB" validate:"gte=0"`
}

// TelemetryConfig controls optional, consent-gated product telemetry.
// With an empty APIKey the client is a no-op.
type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	APIKey   string `mapstructure:"apiKey"`
	Endpoint string `mapstructure:"endpoint"`
}
