package config

type Storage struct {
	Database Database   `envPrefix:"DATABASE_"`
	Bleve    BleveIndex `envPrefix:"BLEVE_"`
	Backup   Backup     `envPrefix:"BACKUP_"`
}

type Database struct {
	DSN string `env:"DSN" envDefault:"data.sqlite"`
}

type BleveIndex struct {
	DSN string `env:"DSN" envDefault:"index.bleve"`
}

type Backup struct {
	// Dir overrides the per-user local data directory used for pending
	// change backups.
	Dir string `env:"DIR"`
}
