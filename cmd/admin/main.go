package main

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gorm.io/gorm"

	"agencycms/internal/auth"
	"agencycms/internal/config"
	"agencycms/internal/database"
)

// Bootstraps the first admin account. Prints a one-time password to
// stdout; the user changes it after first login.
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	email := flag.String("email", "", "email address of the admin account")
	firstName := flag.String("first-name", "", "first name")
	lastName := flag.String("last-name", "", "last name")
	flag.Parse()

	normalized := strings.ToLower(strings.TrimSpace(*email))
	if normalized == "" {
		fmt.Fprintln(os.Stderr, "usage: admin -email admin@example.com [-first-name ...] [-last-name ...]")
		os.Exit(2)
	}

	cfg := config.MustLoad()
	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		logger.Error("init database failed", slog.Any("error", err))
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		logger.Error("migrate database failed", slog.Any("error", err))
		os.Exit(1)
	}

	var existing database.User
	err = db.Where("email = ?", normalized).First(&existing).Error
	switch {
	case err == nil:
		logger.Error("account already exists", slog.String("email", normalized))
		os.Exit(1)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		logger.Error("lookup failed", slog.Any("error", err))
		os.Exit(1)
	}

	password, err := randomPassword()
	if err != nil {
		logger.Error("generate password failed", slog.Any("error", err))
		os.Exit(1)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		logger.Error("hash password failed", slog.Any("error", err))
		os.Exit(1)
	}

	user := database.User{
		Email:        normalized,
		Username:     normalized,
		PasswordHash: hash,
		FirstName:    *firstName,
		LastName:     *lastName,
		Role:         database.RoleAdmin,
		IsVerified:   true,
	}
	if err := db.Create(&user).Error; err != nil {
		logger.Error("create admin failed", slog.Any("error", err))
		os.Exit(1)
	}

	fmt.Printf("admin account created\nemail:    %s\npassword: %s\n", normalized, password)
}

func randomPassword() (string, error) {
	buf := make([]byte, 18)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
