// Command forumctl runs moderation and maintenance tasks against the forum
// database without going through the HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/database"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()

	root := newRootCmd(func() (*gorm.DB, error) {
		if err := database.Connect(config.Load()); err != nil {
			return nil, err
		}
		return database.DB, nil
	})
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
