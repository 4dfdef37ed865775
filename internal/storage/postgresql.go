// Package storage реализует хранилище данных на основе PostgreSQL:
// записи использования (user_usage), зеркало подписок платёжного провайдера
// (user_subscriptions) и сохранённый пользователями контент (user_content).
// Все операции над контентом ограничены владельцем через фильтр по user_uid.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/models"
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{DB: db}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func (s *Storage) CheckDatabaseReady(ctx context.Context) error {
	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'user_usage'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table user_usage missing or query error: %w", err)
	}
	return nil
}

// ===== USAGE METHODS =====

// CreateUsage вставляет запись об успешной генерации.
func (s *Storage) CreateUsage(ctx context.Context, rec models.UsageRecord) error {
	const op = "storage.CreateUsage"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO user_usage (user_uid, content_type, created_at)
			  VALUES ($1, $2, $3)`
	if _, err := s.DB.ExecContext(ctx, query, rec.UserUID, rec.ContentType, rec.CreatedAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CountUsage возвращает суммарное число генераций пользователя за всё время.
func (s *Storage) CountUsage(ctx context.Context, userUID string) (int, error) {
	const op = "storage.CountUsage"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*) FROM user_usage WHERE user_uid = $1`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// ===== SUBSCRIPTION METHODS =====

// GetSubscription возвращает зеркальную запись подписки пользователя
// или nil, если подписки нет.
func (s *Storage) GetSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_uid, stripe_customer_id, stripe_subscription_id, status,
				  current_period_start, current_period_end, created_at, updated_at
			  FROM user_subscriptions WHERE user_uid = $1`
	row := s.DB.QueryRowContext(ctx, query, userUID)

	var sub models.Subscription
	err := row.Scan(&sub.UserUID, &sub.StripeCustomerID, &sub.StripeSubscriptionID, &sub.Status,
		&sub.CurrentPeriodStart, &sub.CurrentPeriodEnd, &sub.CreatedAt, &sub.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sub, nil
}

// UpsertSubscription вставляет или обновляет зеркальную запись подписки.
// Вызывается только при обработке webhook-событий платёжного провайдера.
func (s *Storage) UpsertSubscription(ctx context.Context, sub models.Subscription) error {
	const op = "storage.UpsertSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO user_subscriptions (user_uid, stripe_customer_id, stripe_subscription_id,
				  status, current_period_start, current_period_end, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, now(), now())
			  ON CONFLICT (user_uid) DO UPDATE
			  SET stripe_customer_id = EXCLUDED.stripe_customer_id,
			      stripe_subscription_id = EXCLUDED.stripe_subscription_id,
			      status = EXCLUDED.status,
			      current_period_start = EXCLUDED.current_period_start,
			      current_period_end = EXCLUDED.current_period_end,
			      updated_at = now()`
	_, err := s.DB.ExecContext(ctx, query, sub.UserUID, sub.StripeCustomerID,
		sub.StripeSubscriptionID, sub.Status, sub.CurrentPeriodStart, sub.CurrentPeriodEnd)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateSubscriptionByStripeID обновляет статус и оплаченный период подписки,
// найденной по её идентификатору у провайдера, и возвращает user_uid владельца.
func (s *Storage) UpdateSubscriptionByStripeID(ctx context.Context, stripeSubscriptionID, status string, periodStart, periodEnd time.Time) (string, error) {
	const op = "storage.UpdateSubscriptionByStripeID"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE user_subscriptions
			  SET status = $1, current_period_start = $2, current_period_end = $3, updated_at = now()
			  WHERE stripe_subscription_id = $4
			  RETURNING user_uid`
	var userUID string
	err := s.DB.QueryRowContext(ctx, query, status, periodStart, periodEnd, stripeSubscriptionID).Scan(&userUID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return userUID, nil
}

// MarkSubscriptionStatusByCustomer меняет статус подписки по идентификатору
// покупателя у провайдера и возвращает user_uid владельца.
func (s *Storage) MarkSubscriptionStatusByCustomer(ctx context.Context, stripeCustomerID, status string) (string, error) {
	const op = "storage.MarkSubscriptionStatusByCustomer"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE user_subscriptions
			  SET status = $1, updated_at = now()
			  WHERE stripe_customer_id = $2
			  RETURNING user_uid`
	var userUID string
	err := s.DB.QueryRowContext(ctx, query, status, stripeCustomerID).Scan(&userUID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return userUID, nil
}

// GetStripeCustomerID возвращает сохранённый идентификатор покупателя
// пользователя или пустую строку.
func (s *Storage) GetStripeCustomerID(ctx context.Context, userUID string) (string, error) {
	const op = "storage.GetStripeCustomerID"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT stripe_customer_id FROM user_subscriptions WHERE user_uid = $1`
	var customerID string
	err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&customerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return customerID, nil
}

// ===== CONTENT METHODS =====

// CreateContent сохраняет контент пользователя и возвращает его ID.
func (s *Storage) CreateContent(ctx context.Context, content models.Content) (string, error) {
	const op = "storage.CreateContent"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	structured, err := marshalStructured(content.StructuredData)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO user_content (id, user_uid, title, content, content_type,
				  topic, bible_verse, style, structured_data, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
			  RETURNING id`
	var id string
	err = s.DB.QueryRowContext(ctx, query, content.ID, content.UserUID, content.Title,
		content.Body, content.ContentType, content.Topic, content.BibleVerse,
		content.Style, structured).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ReadContent возвращает контент по ID, только если он принадлежит userUID.
func (s *Storage) ReadContent(ctx context.Context, id, userUID string) (*models.Content, error) {
	const op = "storage.ReadContent"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, title, content, content_type, topic, bible_verse,
				  style, structured_data, created_at, updated_at
			  FROM user_content WHERE id = $1 AND user_uid = $2`
	row := s.DB.QueryRowContext(ctx, query, id, userUID)

	content, err := scanContent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return content, nil
}

// ListContent возвращает контент пользователя с пагинацией, новое сверху.
func (s *Storage) ListContent(ctx context.Context, userUID string, limit, offset int) ([]*models.Content, error) {
	const op = "storage.ListContent"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, title, content, content_type, topic, bible_verse,
				  style, structured_data, created_at, updated_at
			  FROM user_content
			  WHERE user_uid = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Content
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, content)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateContent обновляет контент пользователя по ID и возвращает число
// изменённых строк (0 — чужая или несуществующая запись).
func (s *Storage) UpdateContent(ctx context.Context, content models.Content, id, userUID string) (int, error) {
	const op = "storage.UpdateContent"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	structured, err := marshalStructured(content.StructuredData)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE user_content
			  SET title = $1, content = $2, content_type = $3, topic = $4,
			      bible_verse = $5, style = $6, structured_data = $7, updated_at = now()
			  WHERE id = $8 AND user_uid = $9`
	result, err := s.DB.ExecContext(ctx, query, content.Title, content.Body,
		content.ContentType, content.Topic, content.BibleVerse, content.Style,
		structured, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveContent удаляет контент пользователя по ID и возвращает число
// удалённых строк.
func (s *Storage) RemoveContent(ctx context.Context, id, userUID string) (int, error) {
	const op = "storage.RemoveContent"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM user_content WHERE id = $1 AND user_uid = $2`
	result, err := s.DB.ExecContext(ctx, query, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContent(row rowScanner) (*models.Content, error) {
	var content models.Content
	var structured []byte
	err := row.Scan(&content.ID, &content.UserUID, &content.Title, &content.Body,
		&content.ContentType, &content.Topic, &content.BibleVerse, &content.Style,
		&structured, &content.CreatedAt, &content.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(structured) > 0 {
		if err := json.Unmarshal(structured, &content.StructuredData); err != nil {
			return nil, err
		}
	}
	return &content, nil
}

func marshalStructured(data map[string]any) ([]byte, error) {
	if data == nil {
		return nil, nil
	}
	return json.Marshal(data)
}
