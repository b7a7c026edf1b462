package config

const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

type StorageConfig struct {
	StorageMode  string `yaml:"mode"`
	DataFilePath string `yaml:"file-path"`
}

func (s *StorageConfig) Mode() string {
	if s.StorageMode == "" {
		return StorageMemory
	}
	return s.StorageMode
}

func (s *StorageConfig) FilePath() string {
	if s.DataFilePath == "" {
		return "data/fintrack.json"
	}
	return s.DataFilePath
}
