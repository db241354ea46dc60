package store

import (
	"fmt"

	"github.com/wordsync/api/internal/config"
	"github.com/wordsync/api/internal/conflict"
	"github.com/wordsync/api/internal/database"
)

// Open builds the store selected by cfg.DatabaseDriver, migrating SQL
// backends before returning.
func Open(cfg *config.Config) (Store, error) {
	if cfg.DatabaseDriver == database.DriverMemory {
		return NewMemoryStore(conflict.Default), nil
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.DatabaseDriver, err)
	}
	if err := database.Migrate(db); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return NewGormStore(db, conflict.Default), nil
}
