package session

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SessionRecord is the GORM model backing the MySQL session store
type SessionRecord struct {
	SessionID string    `gorm:"type:varchar(64);primaryKey"`
	Token     string    `gorm:"type:text;not null"`
	ExpiresAt time.Time `gorm:"type:datetime;not null;index"`
	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:datetime;not null;autoUpdateTime"`
}

func (SessionRecord) TableName() string {
	return "console_sessions"
}

// MySQLStore keeps session tokens in MySQL via GORM
type MySQLStore struct {
	db *gorm.DB
}

func NewMySQLStore(host, port, user, password, dbname string) (*MySQLStore, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, dbname)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&SessionRecord{}); err != nil {
		return nil, err
	}
	return &MySQLStore{db: db}, nil
}

func (s *MySQLStore) Get(sessionID string) (string, error) {
	var record SessionRecord
	err := s.db.Where("session_id = ?", sessionID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if time.Now().After(record.ExpiresAt) {
		s.db.Delete(&record)
		return "", nil
	}
	return record.Token, nil
}

func (s *MySQLStore) Put(sessionID, token string, ttl time.Duration) error {
	record := SessionRecord{
		SessionID: sessionID,
		Token:     token,
		ExpiresAt: time.Now().Add(ttl),
	}
	return s.db.Save(&record).Error
}

func (s *MySQLStore) Delete(sessionID string) error {
	return s.db.Where("session_id = ?", sessionID).Delete(&SessionRecord{}).Error
}

func (s *MySQLStore) DeleteExpired() (int, error) {
	result := s.db.Where("expires_at < ?", time.Now()).Delete(&SessionRecord{})
	return int(result.RowsAffected), result.Error
}

func (s *MySQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
