package migration

// getAllMigrations retorna todas as migrações disponíveis
func getAllMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_analyses_table",
			Up: `
				-- Histórico de análises geradas
				CREATE TABLE analyses (
					id UUID PRIMARY KEY,
					description TEXT NOT NULL,
					project_type VARCHAR(32) NOT NULL,
					quiz_answers JSONB,
					fingerprint VARCHAR(64) NOT NULL,
					result JSONB NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`,
			Down: `
				DROP TABLE IF EXISTS analyses;
			`,
		},
		{
			Version: 2,
			Name:    "create_analyses_indexes",
			Up: `
				CREATE INDEX idx_analyses_created_at ON analyses (created_at DESC);
				CREATE INDEX idx_analyses_project_type ON analyses (project_type);
				CREATE INDEX idx_analyses_fingerprint ON analyses (fingerprint);
			`,
			Down: `
				DROP INDEX IF EXISTS idx_analyses_fingerprint;
				DROP INDEX IF EXISTS idx_analyses_project_type;
				DROP INDEX IF EXISTS idx_analyses_created_at;
			`,
		},
	}
}
