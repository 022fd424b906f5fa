package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"gorm.io/gorm"
	"renewtrack.com/renewtrack/core"
	"renewtrack.com/renewtrack/security"
)

// Creates the admin user, or resets its password when it already exists.
// Replaces any in-band bootstrap endpoint: user provisioning never rides on
// the public API.
func main() {
	username := flag.String("username", "admin", "username to create or reset")
	password := flag.String("password", "", "password to set (required)")
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "-password is required")
		os.Exit(1)
	}
	if len(*password) < 4 {
		fmt.Fprintln(os.Stderr, "password must be at least 4 characters")
		os.Exit(1)
	}

	dsn := os.Getenv("DSN")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "DSN is not set")
		os.Exit(1)
	}

	db, err := core.Connect(dsn)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := core.Migrate(db); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	hash, err := security.HashPassword(*password)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var user core.User
	err = db.Where("username = ?", *username).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = core.User{Username: *username, PasswordHash: hash}
		if err := db.Create(&user).Error; err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("created user %q\n", *username)
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	default:
		if err := db.Model(&user).Update("password_hash", hash).Error; err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("reset password for %q\n", *username)
	}
}
