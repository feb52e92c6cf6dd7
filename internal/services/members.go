package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"librarydb/internal/models"
)

type MemberInput struct {
	FirstName string     `validate:"required"`
	LastName  string     `validate:"required"`
	Email     string     `validate:"required,email,contains=."`
	Phone     *string    `validate:"omitempty"`
	Address   *string    `validate:"omitempty"`
	JoinDate  *time.Time `validate:"omitempty"`
	Status    string     `validate:"omitempty"`
}

func CreateMember(db *sqlx.DB, in MemberInput) (models.Member, error) {
	if err := checkStruct(in); err != nil {
		return models.Member{}, err
	}
	status := in.Status
	if status == "" {
		status = MemberActive
	}
	if !validMemberStatus(status) {
		return models.Member{}, fmt.Errorf("%w: unknown member status %q", ErrInvalid, status)
	}
	now := time.Now().UTC()
	joined := now
	if in.JoinDate != nil {
		joined = *in.JoinDate
	}
	member := models.Member{
		ID:        uuid.NewString(),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:     in.Phone,
		Address:   in.Address,
		JoinDate:  joined,
		Status:    status,
		CreatedAt: now,
	}
	_, err := db.Exec(`
INSERT INTO members (id, first_name, last_name, email, phone, address, join_date, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`, member.ID, member.FirstName, member.LastName, member.Email, member.Phone, member.Address, member.JoinDate, member.Status, member.CreatedAt)
	if err != nil {
		return models.Member{}, mapError(err)
	}
	return member, nil
}

func GetMember(db *sqlx.DB, id string) (models.Member, error) {
	var member models.Member
	err := db.Get(&member, `
SELECT id, first_name, last_name, email, phone, address, join_date, status, created_at
FROM members
WHERE id = $1
`, id)
	if err != nil {
		return models.Member{}, mapError(err)
	}
	return member, nil
}

func GetMemberByEmail(db *sqlx.DB, email string) (models.Member, error) {
	var member models.Member
	err := db.Get(&member, `
SELECT id, first_name, last_name, email, phone, address, join_date, status, created_at
FROM members
WHERE email = $1
`, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return models.Member{}, mapError(err)
	}
	return member, nil
}

func ListMembers(db *sqlx.DB, status string) ([]models.Member, error) {
	args := []interface{}{}
	where := ""
	if status != "" {
		if !validMemberStatus(status) {
			return nil, fmt.Errorf("%w: unknown member status %q", ErrInvalid, status)
		}
		where = "WHERE status = $1"
		args = append(args, status)
	}
	members := []models.Member{}
	err := db.Select(&members, `
SELECT id, first_name, last_name, email, phone, address, join_date, status, created_at
FROM members
`+where+`
ORDER BY last_name ASC, first_name ASC
`, args...)
	return members, err
}

func UpdateMember(db *sqlx.DB, id string, in MemberInput) error {
	if err := checkStruct(in); err != nil {
		return err
	}
	if in.Status != "" && !validMemberStatus(in.Status) {
		return fmt.Errorf("%w: unknown member status %q", ErrInvalid, in.Status)
	}
	res, err := db.Exec(`
UPDATE members
SET first_name = $2, last_name = $3, email = $4, phone = $5, address = $6,
    join_date = COALESCE($7, join_date), status = COALESCE(NULLIF($8, ''), status)
WHERE id = $1
`, id, strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName),
		strings.ToLower(strings.TrimSpace(in.Email)), in.Phone, in.Address, in.JoinDate, in.Status)
	if err != nil {
		return mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func SetMemberStatus(db *sqlx.DB, id, status string) error {
	if !validMemberStatus(status) {
		return fmt.Errorf("%w: unknown member status %q", ErrInvalid, status)
	}
	res, err := db.Exec(`UPDATE members SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMember removes a member; loan history blocks the delete through
// fk_loans_member.
func DeleteMember(db *sqlx.DB, id string) error {
	res, err := db.Exec(`DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
