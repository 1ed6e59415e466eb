package conventions

import (
	"path/filepath"

	"k8s.io/client-go/util/homedir"
)

const (
	// DefaultDataDir is the default mmgen data directory name (relative to home).
	DefaultDataDir = ".mmgen"
	// DBFile is the SQLite database filename.
	DBFile = "mmgen.db"
	// DownloadsDir is the subdirectory where exported PDFs are stored.
	DownloadsDir = "downloads"
	// ConfigFile is the server configuration filename.
	ConfigFile = "config.yaml"

	// EnvPrefix is the prefix of the environment variables bound to flags.
	EnvPrefix = "MMGEN_"

	// DefaultListenAddress is the address the server listens on.
	DefaultListenAddress = "127.0.0.1:8080"
	// DefaultServerURL is the URL clients use to reach a local server.
	DefaultServerURL = "http://127.0.0.1:8080"
)

// DataDir returns the mmgen data directory of the current user.
func DataDir() string {
	return filepath.Join(homedir.HomeDir(), DefaultDataDir)
}

// DBPath returns the database path inside a data directory.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DBFile)
}

// DownloadsPath returns the downloads directory inside a data directory.
func DownloadsPath(dataDir string) string {
	return filepath.Join(dataDir, DownloadsDir)
}

// ConfigPath returns the configuration file path inside a data directory.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, ConfigFile)
}
