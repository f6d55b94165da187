package postgres

import (
	"context"
	"fmt"
	"time"

	"brigade/internal/domain"
	"brigade/internal/interfaces"
)

type staffRepository struct {
	db DB
}

func NewStaffRepository(db DB) interfaces.StaffDirectory {
	return &staffRepository{db: db}
}

func (r *staffRepository) ActiveByRole(ctx context.Context, restaurantID string, role domain.Role) ([]*domain.StaffRef, error) {
	query := `
		SELECT id, name, role, active
		FROM staff
		WHERE restaurant_id = $1 AND role = $2 AND active = true
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query, restaurantID, string(role))
	if err != nil {
		return nil, fmt.Errorf("failed to list active staff: %w", err)
	}
	defer rows.Close()

	var staff []*domain.StaffRef
	for rows.Next() {
		var s domain.StaffRef
		var roleStr string
		if err := rows.Scan(&s.ID, &s.Name, &roleStr, &s.Active); err != nil {
			return nil, fmt.Errorf("failed to scan staff member: %w", err)
		}
		s.Role = domain.Role(roleStr)
		staff = append(staff, &s)
	}
	return staff, nil
}

func (r *staffRepository) FindByID(ctx context.Context, id string) (*domain.StaffRef, error) {
	query := `SELECT id, name, role, active FROM staff WHERE id = $1`

	var s domain.StaffRef
	var roleStr string
	err := r.db.QueryRow(ctx, query, id).Scan(&s.ID, &s.Name, &roleStr, &s.Active)
	if err != nil {
		return nil, domain.ErrStaffNotFound
	}
	s.Role = domain.Role(roleStr)
	return &s, nil
}

func (r *staffRepository) Heartbeat(ctx context.Context, id string) error {
	query := `UPDATE staff SET last_seen = $1 WHERE id = $2`
	if _, err := r.db.Exec(ctx, query, time.Now(), id); err != nil {
		return fmt.Errorf("failed to update staff heartbeat: %w", err)
	}
	return nil
}
