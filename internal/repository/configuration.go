package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wristcare/alertband-backend/internal/security"
	"github.com/wristcare/alertband-backend/pkg/model"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a configuration id has no row.
var ErrNotFound = errors.New("configuration not found")

// ConfigurationRepository manages saved device configurations
type ConfigurationRepository struct {
	db        *pgxpool.Pool
	encryptor *security.Encryptor // nil disables at-rest encryption of medical notes
	logger    *zap.Logger
}

// NewConfigurationRepository creates a new ConfigurationRepository
func NewConfigurationRepository(db *pgxpool.Pool, encryptor *security.Encryptor, logger *zap.Logger) *ConfigurationRepository {
	return &ConfigurationRepository{
		db:        db,
		encryptor: encryptor,
		logger:    logger,
	}
}

// Create persists a saved configuration
func (r *ConfigurationRepository) Create(ctx context.Context, cfg *model.SavedConfiguration) error {
	alertsJSON, err := json.Marshal(cfg.Alerts)
	if err != nil {
		return fmt.Errorf("failed to marshal alerts: %w", err)
	}

	medicalInfo, err := r.sealMedicalInfo(cfg.MedicalInfo)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO configurations (
			id, name, phone, email, medical_info,
			device_id, alerts, payload, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.Exec(ctx, query,
		cfg.ID,
		cfg.Contact.Name,
		cfg.Contact.Phone,
		cfg.Contact.Email,
		medicalInfo,
		cfg.DeviceID,
		alertsJSON,
		cfg.Payload,
		cfg.CreatedAt,
	)

	if err != nil {
		r.logger.Error("failed to create configuration",
			zap.Error(err),
			zap.String("configuration_id", cfg.ID),
			zap.Int("device_id", cfg.DeviceID),
		)
		return fmt.Errorf("failed to create configuration: %w", err)
	}

	return nil
}

// FindAll retrieves all saved configurations, most recent first. Rows whose
// stored alert list no longer unmarshals are logged and skipped rather than
// failing the whole listing.
func (r *ConfigurationRepository) FindAll(ctx context.Context) ([]model.SavedConfiguration, error) {
	query := `
		SELECT
			id, name, phone, email, medical_info,
			device_id, alerts, payload, created_at
		FROM configurations
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("failed to find configurations", zap.Error(err))
		return nil, fmt.Errorf("failed to find configurations: %w", err)
	}
	defer rows.Close()

	var configs []model.SavedConfiguration
	for rows.Next() {
		cfg, err := r.scanConfiguration(rows)
		if err != nil {
			r.logger.Warn("skipping malformed configuration row", zap.Error(err))
			continue
		}
		configs = append(configs, *cfg)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating configurations", zap.Error(err))
		return nil, fmt.Errorf("error iterating configurations: %w", err)
	}

	return configs, nil
}

// FindByID retrieves a saved configuration by ID
func (r *ConfigurationRepository) FindByID(ctx context.Context, id string) (*model.SavedConfiguration, error) {
	query := `
		SELECT
			id, name, phone, email, medical_info,
			device_id, alerts, payload, created_at
		FROM configurations
		WHERE id = $1
	`

	row := r.db.QueryRow(ctx, query, id)
	cfg, err := r.scanConfiguration(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		r.logger.Error("failed to find configuration", zap.Error(err), zap.String("configuration_id", id))
		return nil, fmt.Errorf("failed to find configuration: %w", err)
	}

	return cfg, nil
}

// Delete removes a saved configuration
func (r *ConfigurationRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM configurations WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("failed to delete configuration",
			zap.Error(err),
			zap.String("configuration_id", id),
		)
		return fmt.Errorf("failed to delete configuration: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return nil
}

// DeleteAll removes every saved configuration
func (r *ConfigurationRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM configurations`); err != nil {
		r.logger.Error("failed to clear configurations", zap.Error(err))
		return fmt.Errorf("failed to clear configurations: %w", err)
	}

	return nil
}

// scanConfiguration reads one row into a SavedConfiguration
func (r *ConfigurationRepository) scanConfiguration(row pgx.Row) (*model.SavedConfiguration, error) {
	var cfg model.SavedConfiguration
	var alertsJSON []byte
	var medicalInfo string

	err := row.Scan(
		&cfg.ID,
		&cfg.Contact.Name,
		&cfg.Contact.Phone,
		&cfg.Contact.Email,
		&medicalInfo,
		&cfg.DeviceID,
		&alertsJSON,
		&cfg.Payload,
		&cfg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(alertsJSON, &cfg.Alerts); err != nil {
		return nil, fmt.Errorf("malformed alerts for configuration %s: %w", cfg.ID, err)
	}

	cfg.MedicalInfo, err = r.openMedicalInfo(medicalInfo)
	if err != nil {
		return nil, fmt.Errorf("cannot decrypt medical info for configuration %s: %w", cfg.ID, err)
	}

	return &cfg, nil
}

func (r *ConfigurationRepository) sealMedicalInfo(plaintext string) (string, error) {
	if r.encryptor == nil {
		return plaintext, nil
	}
	sealed, err := r.encryptor.Encrypt(plaintext)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt medical info: %w", err)
	}
	return sealed, nil
}

func (r *ConfigurationRepository) openMedicalInfo(stored string) (string, error) {
	if r.encryptor == nil {
		return stored, nil
	}
	return r.encryptor.Decrypt(stored)
}
