package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/yourusername/debate-tab/internal/config"
)

func main() {
	var (
		configPath string
		source     string
	)

	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Управление схемой БД турнира",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", envOr("CONFIG_PATH", "config/config.yaml"), "путь к файлу конфигурации")
	root.PersistentFlags().StringVar(&source, "source", "file://migrations", "источник миграций")

	withMigrator := func(run func(m *migrate.Migrate) error) error {
		m, closeDB, err := open(configPath, source)
		if err != nil {
			return err
		}
		defer closeDB()
		return run(m)
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Применить все миграции",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(func(m *migrate.Migrate) error {
					return ignoreNoChange(m.Up())
				})
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Откатить миграции (по умолчанию одну)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil || n < 1 {
						return fmt.Errorf("steps must be a positive number, got %q", args[0])
					}
					steps = n
				}
				return withMigrator(func(m *migrate.Migrate) error {
					return ignoreNoChange(m.Steps(-steps))
				})
			},
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Сбросить dirty-состояние, выставив версию",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("version must be a number, got %q", args[0])
				}
				return withMigrator(func(m *migrate.Migrate) error {
					return m.Force(version)
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Показать текущую версию схемы",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(func(m *migrate.Migrate) error {
					version, dirty, err := m.Version()
					if errors.Is(err, migrate.ErrNilVersion) {
						fmt.Println("Миграции ещё не применялись")
						return nil
					}
					if err != nil {
						return err
					}
					fmt.Printf("version=%d dirty=%t\n", version, dirty)
					return nil
				})
			},
		},
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func open(configPath, source string) (*migrate.Migrate, func(), error) {
	dbCfg, err := config.LoadDatabase(configPath)
	if err != nil {
		return nil, nil, err
	}

	db, err := sql.Open("postgres", dbCfg.PostgresConnectionString())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to create migrate driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance(source, "postgres", driver)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Printf("Ошибка закрытия migrate: source=%v db=%v", srcErr, dbErr)
		}
	}, nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		log.Println("Изменений в миграциях не найдено, база данных уже актуальна.")
		return nil
	}
	if err == nil {
		log.Println("Миграции успешно применены.")
	}
	return err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
