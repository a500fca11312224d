package types

import "errors"

// Config holds backend selection and parameters for Store.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MongoURI and MongoDatabase select the server and database of the
	// mongo backend. Other backends ignore them.
	MongoURI      string `json:"mongo_uri,omitempty" yaml:"mongo_uri,omitempty"`
	MongoDatabase string `json:"mongo_database,omitempty" yaml:"mongo_database,omitempty"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrMongoURIEmpty  = errors.New("mongo backend requires a URI")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
	BackendMongo:  true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Backend == BackendMongo && c.MongoURI == "" {
		return ErrMongoURIEmpty
	}
	return nil
}
