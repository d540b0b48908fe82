package main

import (
	"errors"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Applies the migrations in migrations/ to the embedded database.
//
// Usage:
//
//	DB_PATH=./commerce.db go run ./cmd/migrate        # up
//	DB_PATH=./commerce.db go run ./cmd/migrate down   # down
func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./commerce.db"
	}

	m, err := migrate.New("file://migrations", "sqlite://"+dbPath)
	if err != nil {
		log.Fatalf("migrate.New: %v", err)
	}
	defer m.Close()

	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	default:
		log.Fatalf("unknown direction %q (want up or down)", direction)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("migrate %s: %v", direction, err)
	}
	log.Printf("migrations applied (%s): %s", direction, dbPath)
}
