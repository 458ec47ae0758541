package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"seknuto-api/internal/coupon"
	"seknuto-api/pkg/redis"
)

// couponCacheTTL bounds how stale a cached coupon read may be.
// Redemption counts move on booking submission, so keep it short.
const couponCacheTTL = 10 * time.Minute

type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type PostgresStorage struct {
	db     *sqlx.DB
	redis  *redis.Client
	logger *zap.Logger
}

// Booking is a persisted booking request, status pending until the
// crew confirms it by phone.
type Booking struct {
	ID                 string         `db:"id" json:"id"`
	Service            string         `db:"service" json:"service"`
	PropertySize       int            `db:"property_size" json:"property_size"`
	Condition          string         `db:"condition" json:"condition"`
	AdditionalServices pq.StringArray `db:"additional_services" json:"additional_services"`
	PreferredDate      string         `db:"preferred_date" json:"preferred_date"`
	PreferredTime      string         `db:"preferred_time" json:"preferred_time"`
	AlternativeDate    *string        `db:"alternative_date" json:"alternative_date,omitempty"`
	CustomerName       string         `db:"customer_name" json:"customer_name"`
	CustomerPhone      string         `db:"customer_phone" json:"customer_phone"`
	CustomerEmail      string         `db:"customer_email" json:"customer_email"`
	PropertyAddress    string         `db:"property_address" json:"property_address"`
	Notes              string         `db:"notes" json:"notes"`
	EstimatedPrice     int            `db:"estimated_price" json:"estimated_price"`
	CouponCode         string         `db:"coupon_code" json:"coupon_code,omitempty"`
	GDPRConsent        bool           `db:"gdpr_consent" json:"gdpr_consent"`
	Status             string         `db:"status" json:"status"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
}

// ContactMessage is a submission from the contact form.
type ContactMessage struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	Message   string    `db:"message" json:"message"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func NewPostgresStorage(ctx context.Context, cfg Config, redisClient *redis.Client, logger *zap.Logger) (*PostgresStorage, error) {
	const operation = "storage.NewPostgresStorage"

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
	)

	var db *sqlx.DB
	var err error

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = 2 * time.Minute
	retryPolicy.MaxInterval = 15 * time.Second

	logger.Info("Connecting to PostgreSQL...")

	err = backoff.RetryNotify(
		func() error {
			db, err = sqlx.ConnectContext(ctx, "postgres", connStr)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}

			if err = db.PingContext(ctx); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
			return nil
		},
		retryPolicy,
		func(err error, duration time.Duration) {
			logger.Warn("PostgreSQL connection failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)

	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect after retries: %w", operation, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	logger.Info("Successfully connected to PostgreSQL")
	return &PostgresStorage{
		db:     db,
		redis:  redisClient,
		logger: logger,
	}, nil
}

// DB exposes the underlying handle for migrations.
func (s *PostgresStorage) DB() *sql.DB {
	return s.db.DB
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

// ---- bookings ----

func (s *PostgresStorage) CreateBooking(ctx context.Context, b Booking) error {
	const operation = "storage.CreateBooking"

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", operation, err)
	}
	defer tx.Rollback()

	const query = `
        INSERT INTO bookings (
            id, service, property_size, condition, additional_services,
            preferred_date, preferred_time, alternative_date,
            customer_name, customer_phone, customer_email, property_address,
            notes, estimated_price, coupon_code, gdpr_consent, status, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
    `

	_, err = tx.ExecContext(ctx, query,
		b.ID,
		b.Service,
		b.PropertySize,
		b.Condition,
		b.AdditionalServices,
		b.PreferredDate,
		b.PreferredTime,
		b.AlternativeDate,
		b.CustomerName,
		b.CustomerPhone,
		b.CustomerEmail,
		b.PropertyAddress,
		b.Notes,
		b.EstimatedPrice,
		b.CouponCode,
		b.GDPRConsent,
		b.Status,
		b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: insert booking: %w", operation, err)
	}

	// Consume the coupon in the same transaction so the redemption
	// count can never drift from the bookings that used it.
	if b.CouponCode != "" {
		code := coupon.Normalize(b.CouponCode)
		if _, err := tx.ExecContext(ctx,
			`UPDATE coupons SET redemption_count = redemption_count + 1 WHERE code = $1`,
			code,
		); err != nil {
			return fmt.Errorf("%s: redeem coupon: %w", operation, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", operation, err)
	}

	if b.CouponCode != "" {
		s.invalidateCoupon(ctx, coupon.Normalize(b.CouponCode))
	}
	return nil
}

// GetBooking returns (nil, nil) when the id is unknown.
func (s *PostgresStorage) GetBooking(ctx context.Context, id string) (*Booking, error) {
	const query = `SELECT * FROM bookings WHERE id = $1`

	var b Booking
	if err := s.db.GetContext(ctx, &b, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &b, nil
}

func (s *PostgresStorage) ListBookings(ctx context.Context) ([]Booking, error) {
	const query = `SELECT * FROM bookings ORDER BY created_at DESC`

	var bookings []Booking
	if err := s.db.SelectContext(ctx, &bookings, query); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// ---- coupons ----

func couponCacheKey(code string) string {
	return "coupon:" + code
}

// GetByCode implements coupon.Store with a Redis read-through cache
// in front of Postgres. Returns (nil, nil) for an unknown code.
func (s *PostgresStorage) GetByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	code = coupon.Normalize(code)

	var cached coupon.Coupon
	if err := s.redis.GetJSON(ctx, couponCacheKey(code), &cached); err == nil {
		return &cached, nil
	}

	const query = `
        SELECT code, discount_percent, valid_from, valid_until,
               max_redemptions, redemption_count, created_at
        FROM coupons
        WHERE code = $1
    `

	var c coupon.Coupon
	if err := s.db.GetContext(ctx, &c, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}

	if err := s.redis.SetJSON(ctx, couponCacheKey(code), c, couponCacheTTL); err != nil {
		s.logger.Warn("Failed to cache coupon", zap.String("code", code), zap.Error(err))
	}

	return &c, nil
}

func (s *PostgresStorage) invalidateCoupon(ctx context.Context, code string) {
	if err := s.redis.Del(ctx, couponCacheKey(code)); err != nil {
		s.logger.Warn("Failed to invalidate coupon cache",
			zap.String("code", code), zap.Error(err))
	}
}

// ---- newsletter subscriptions ----

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// SubscribeEmail records a newsletter subscription and issues its
// discount coupon. Subscribing twice with the same address returns
// the previously issued code.
func (s *PostgresStorage) SubscribeEmail(ctx context.Context, email string) (code string, already bool, err error) {
	const operation = "storage.SubscribeEmail"

	var existing string
	err = s.db.GetContext(ctx, &existing,
		`SELECT coupon_code FROM subscribers WHERE email = $1`, email)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", false, fmt.Errorf("%s: lookup subscriber: %w", operation, err)
	}

	code, err = coupon.NewCode()
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", operation, err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", false, fmt.Errorf("%s: begin tx: %w", operation, err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO coupons (code, discount_percent, max_redemptions, redemption_count, created_at)
         VALUES ($1, $2, $3, 0, $4)`,
		code, coupon.DefaultDiscountPercent, 1, now,
	); err != nil {
		return "", false, fmt.Errorf("%s: insert coupon: %w", operation, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO subscribers (email, coupon_code, created_at) VALUES ($1, $2, $3)`,
		email, code, now,
	); err != nil {
		// A concurrent request for the same address can win the insert
		// between our lookup and here. Hand back its coupon instead of
		// failing.
		if isUniqueViolation(err) {
			tx.Rollback()
			if err := s.db.GetContext(ctx, &existing,
				`SELECT coupon_code FROM subscribers WHERE email = $1`, email); err != nil {
				return "", false, fmt.Errorf("%s: reread subscriber: %w", operation, err)
			}
			return existing, true, nil
		}
		return "", false, fmt.Errorf("%s: insert subscriber: %w", operation, err)
	}

	if err := tx.Commit(); err != nil {
		return "", false, fmt.Errorf("%s: commit: %w", operation, err)
	}

	s.logger.Info("New newsletter subscriber",
		zap.String("email", email), zap.String("coupon_code", code))
	return code, false, nil
}

// ---- contact messages ----

func (s *PostgresStorage) CreateContactMessage(ctx context.Context, m ContactMessage) error {
	const query = `
        INSERT INTO contact_messages (id, name, email, phone, message, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `

	_, err := s.db.ExecContext(ctx, query,
		m.ID, m.Name, m.Email, m.Phone, m.Message, m.Status, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save contact message: %w", err)
	}
	return nil
}
