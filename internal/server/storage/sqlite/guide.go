package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iudanet/clinicsync/internal/models"
)

// ListGuides возвращает памятки с переводами, упорядоченные по ID
func (s *Storage) ListGuides(ctx context.Context) ([]*models.Guide, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, category, created_at
		FROM guides
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query guides: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var guides []*models.Guide
	byID := make(map[int64]*models.Guide)
	for rows.Next() {
		g := &models.Guide{}
		if err := rows.Scan(&g.ID, &g.Title, &g.Description, &g.Category, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan guide: %w", err)
		}
		guides = append(guides, g)
		byID[g.ID] = g
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	// соединение одно, его нужно освободить до следующего запроса
	_ = rows.Close()
	if len(guides) == 0 {
		return guides, nil
	}

	trRows, err := s.db.QueryContext(ctx, `
		SELECT guide_id, language, title, description
		FROM guide_translations
		ORDER BY guide_id, language
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query guide translations: %w", err)
	}
	defer func() {
		_ = trRows.Close()
	}()

	for trRows.Next() {
		var guideID int64
		var tr models.GuideTranslation
		if err := trRows.Scan(&guideID, &tr.Language, &tr.Title, &tr.Description); err != nil {
			return nil, fmt.Errorf("failed to scan guide translation: %w", err)
		}
		if g, ok := byID[guideID]; ok {
			g.Translations = append(g.Translations, tr)
		}
	}
	if err := trRows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return guides, nil
}

// CreateGuide сохраняет памятку с переводами
func (s *Storage) CreateGuide(ctx context.Context, guide *models.Guide) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO guides (title, description, category, created_at) VALUES (?, ?, ?, ?)`,
			guide.Title, guide.Description, guide.Category, guide.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert guide: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get guide id: %w", err)
		}

		for _, tr := range guide.Translations {
			_, err := tx.ExecContext(ctx,
				`INSERT OR REPLACE INTO guide_translations (guide_id, language, title, description) VALUES (?, ?, ?, ?)`,
				id, tr.Language, tr.Title, tr.Description,
			)
			if err != nil {
				return fmt.Errorf("failed to insert guide translation: %w", err)
			}
		}

		guide.ID = id
		return nil
	})
}
