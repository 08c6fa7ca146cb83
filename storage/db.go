package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"
	_ "modernc.org/sqlite"

	"github.com/ferreirogomes/contatos/logger"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

var (
	ErrContactNotFound  = errors.New("contato não encontrado")
	ErrTemplateNotFound = errors.New("template não encontrado")
	ErrInvalidTemplate  = errors.New("template inválido")
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// DB é o banco local de contatos, perfil, configurações e templates.
type DB struct {
	*sqlx.DB
	// Clock permite fixar o relógio nos testes.
	Clock func() time.Time
}

// NewDB conecta ao banco ("postgres" ou "sqlite") e executa as migrações.
func NewDB(driver, dataSourceName string) (*DB, error) {
	dialect := "postgres"
	switch driver {
	case "postgres":
	case "sqlite":
		dialect = "sqlite3"
	default:
		return nil, fmt.Errorf("driver de banco não suportado: %q", driver)
	}

	db, err := sqlx.Connect(driver, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar ao banco de dados: %w", err)
	}

	if driver == "sqlite" {
		// Uma conexão só: evita SQLITE_BUSY e mantém o PRAGMA válido.
		db.SetMaxOpenConns(1)
		if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
			db.Close()
			return nil, fmt.Errorf("falha ao habilitar foreign keys: %w", err)
		}
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("falha ao pingar o banco de dados: %w", err)
	}
	logger.GetLogger().Info().Str("driver", driver).Msg("Conexão com o banco de dados estabelecida")

	if err := runMigrations(db.DB, dialect); err != nil {
		db.Close()
		return nil, fmt.Errorf("falha ao executar migrações: %w", err)
	}

	return &DB{DB: db, Clock: time.Now}, nil
}

// runMigrations aplica as migrações embutidas no binário usando sql-migrate.
func runMigrations(db *sql.DB, dialect string) error {
	migrations := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFiles,
		Root:       "migrations",
	}

	n, err := migrate.Exec(db, dialect, migrations, migrate.Up)
	if err != nil {
		return fmt.Errorf("erro ao aplicar migrações: %w", err)
	}
	if n > 0 {
		logger.GetLogger().Info().Int("count", n).Msg("Migrações aplicadas ao banco de dados")
	} else {
		logger.GetLogger().Debug().Msg("Nenhuma migração nova para aplicar")
	}
	return nil
}

// nowMillis devolve o instante atual em milissegundos (epoch).
func (d *DB) nowMillis() int64 {
	if d.Clock == nil {
		return time.Now().UnixMilli()
	}
	return d.Clock().UnixMilli()
}
