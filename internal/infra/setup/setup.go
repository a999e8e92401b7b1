// Package setup initializes the external infrastructure: MySQL via GORM
// and the Redis client shared by the rate limiter and the task queue.
package setup

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/superherotang/clip/internal/domain"
)

// InitDB opens the MySQL connection and configures the pool.
func InitDB(user, password, host, port, name string) (*gorm.DB, error) {
	if user == "" || password == "" {
		return nil, fmt.Errorf("database credentials must be set")
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, name)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// MigrateDB migrates the model schema.
func MigrateDB(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.User{},
		&domain.Room{},
		&domain.RoomMember{},
		&domain.ClipboardItem{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// InitRedis creates the Redis client and verifies connectivity.
func InitRedis(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     20,
		MinIdleConns: 5,
		MaxConnAge:   30 * time.Minute,
	})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}
